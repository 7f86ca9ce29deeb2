package cli

import (
	"context"
	"errors"

	"github.com/roach88/switchblade/internal/schema"
	"github.com/roach88/switchblade/internal/store"
)

// resolveTable registers an existing table for query and delete. Column
// kinds are first inferred from declared types; when a records directory is
// configured, the record definition for the table replaces them, so
// identifier columns decode as identifiers rather than text.
func (o *RootOptions) resolveTable(ctx context.Context, st *store.Store, name string) (*schema.Table, error) {
	tbl, err := st.LoadTable(ctx, st.Registry().TableName(name))
	if err != nil {
		return nil, err
	}

	dir := o.effectiveConfig().Records
	if dir == "" {
		return tbl, nil
	}

	loaded, loadErrors := LoadRecords(dir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		return nil, loadErrors[0]
	}
	for _, desc := range loaded.Records {
		if st.Registry().TableName(desc.Name) != tbl.Name {
			continue
		}
		o.log().Debug("applying record definition", "record", desc.Name, "table", tbl.Name)
		return st.Create(ctx, desc)
	}
	return tbl, nil
}

// errorCode picks the load error's code, or fallback for anything else.
func errorCode(err error, fallback string) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return fallback
}
