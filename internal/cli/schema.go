package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/switchblade/internal/schema"
)

// ColumnSummary describes one derived column.
type ColumnSummary struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Type string `json:"type"`
}

// TableSummary describes one derived table.
type TableSummary struct {
	Record     string          `json:"record"`
	Table      string          `json:"table"`
	PrimaryKey string          `json:"primary_key"`
	Columns    []ColumnSummary `json:"columns"`
	Indexes    []string        `json:"indexes,omitempty"`
}

// SchemaResult is the schema command's payload.
type SchemaResult struct {
	Tables []TableSummary `json:"tables"`
}

func (r SchemaResult) String() string {
	var b strings.Builder
	for i, t := range r.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (record %s, primary key %s)\n", t.Table, t.Record, t.PrimaryKey)
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "  %-20s %-12s %s\n", c.Name, c.Kind, c.Type)
		}
		for _, idx := range t.Indexes {
			fmt.Fprintf(&b, "  index %s\n", idx)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema [records-dir]",
		Short: "Create or update tables for record definitions",
		Long: `Compile CUE record definitions and ensure their tables exist.

Missing tables are created, new fields become new columns, and declared
indexes are created. Existing columns are never dropped or retyped.

Example:
  switchblade schema --db ./app.db ./records`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, recordsDir(rootOpts, args), cmd)
		},
	}

	return cmd
}

func runSchema(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if dir == "" {
		return outputCommandError(formatter, ErrCodeNotFound, "no records directory given and none configured", nil)
	}

	loadResult, loadErrors := LoadRecords(dir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCommandError(formatter, loadErr.Code, loadErr.Error(), nil)
		}
		return outputCommandError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	st, err := opts.openStore()
	if err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, err.Error(), nil)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.log().Error("error closing database", "error", closeErr)
		}
	}()

	ctx := commandContext(cmd)

	var result SchemaResult
	for _, desc := range loadResult.Records {
		formatter.VerboseLog("Ensuring record: %s", desc.Name)
		tbl, err := st.Create(ctx, desc)
		if err != nil {
			return outputCommandError(formatter, ErrCodeDatabase, err.Error(), nil)
		}
		result.Tables = append(result.Tables, summarize(desc, tbl))
	}

	return formatter.Success(result)
}

func summarize(desc *schema.Descriptor, tbl *schema.Table) TableSummary {
	s := TableSummary{
		Record:     desc.Name,
		Table:      tbl.Name,
		PrimaryKey: tbl.PrimaryKey,
	}
	for _, col := range tbl.Columns() {
		kind, _ := tbl.Kind(col)
		s.Columns = append(s.Columns, ColumnSummary{Name: col, Kind: kind.String(), Type: kind.ColumnType()})
	}
	for _, idx := range desc.Indexes {
		s.Indexes = append(s.Indexes, schema.IndexName(tbl.Name, schema.SplitColumns(idx)))
	}
	return s
}
