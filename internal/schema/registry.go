// Package schema derives relational tables from record descriptors and
// keeps them in step with the backend.
//
// Schema growth is append-only. Tables are created with CREATE TABLE IF NOT
// EXISTS, columns are added as descriptors gain fields, and the kind first
// recorded for a column is kept for the life of the Registry. Columns are
// never dropped or retyped.
package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/switchblade/internal/bridge"
	"github.com/roach88/switchblade/internal/ident"
	"github.com/roach88/switchblade/internal/value"
)

var (
	ErrUnknownTable       = errors.New("schema: unknown table")
	ErrPrimaryKeyMismatch = errors.New("schema: primary key mismatch")
	ErrKindMismatch       = errors.New("schema: kind mismatch")
)

// Table is the registry's view of one backend table.
type Table struct {
	Name          string
	PrimaryKey    string
	AutoIncrement bool

	columns  []string
	kinds    map[string]value.Kind
	inferred map[string]bool // kinds guessed from declared types
	existing map[string]string // backend columns and their declared types
	indexes  map[string]bool
}

func newTable(name, pk string, auto bool) *Table {
	return &Table{
		Name:          name,
		PrimaryKey:    pk,
		AutoIncrement: auto,
		kinds:         make(map[string]value.Kind),
		inferred:      make(map[string]bool),
		existing:      make(map[string]string),
		indexes:       make(map[string]bool),
	}
}

// Columns returns column names in first-observed order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Kind returns the recorded kind of a column.
func (t *Table) Kind(column string) (value.Kind, bool) {
	if t == nil {
		return 0, false
	}
	k, ok := t.kinds[column]
	return k, ok
}

// Inferred reports whether a column's kind was guessed from its declared
// type rather than given by a descriptor.
func (t *Table) Inferred(column string) bool {
	if t == nil {
		return false
	}
	return t.inferred[column]
}

func (t *Table) add(column string, kind value.Kind) {
	if _, ok := t.kinds[column]; !ok {
		t.columns = append(t.columns, column)
	}
	t.kinds[column] = kind
	if _, ok := t.existing[column]; !ok {
		t.existing[column] = kind.ColumnType()
	}
}

// fits reports whether kind can be stored in an existing column. Declared
// types outside the four storage classes accept any kind.
func (t *Table) fits(column string, kind value.Kind) error {
	declared, ok := t.existing[column]
	if !ok {
		return nil
	}
	backend := value.KindForColumnType(strings.ToUpper(declared))
	if backend != value.KindInterpreted && backend.ColumnType() != kind.ColumnType() {
		return fmt.Errorf("%w: %s.%s is declared %s, descriptor says %s", ErrKindMismatch, t.Name, column, declared, kind)
	}
	return nil
}

// covers reports whether d needs no further DDL on t.
func (t *Table) covers(d *Descriptor) bool {
	for _, f := range d.Fields {
		if _, ok := t.kinds[f.Name]; !ok || t.inferred[f.Name] {
			return false
		}
	}
	for _, idx := range d.Indexes {
		if !t.indexes[IndexName(t.Name, SplitColumns(idx))] {
			return false
		}
	}
	return true
}

// Registry tracks derived tables and issues DDL for them.
//
// A Registry is not safe for concurrent use. Callers serialize access, as
// they do for the backend connection.
type Registry struct {
	tables  map[string]*Table
	aliases map[string]string
	logger  *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger uses slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tables:  make(map[string]*Table),
		aliases: make(map[string]string),
		logger:  logger,
	}
}

// Alias stores records of typeName in table instead of a table named after
// the type.
func (r *Registry) Alias(typeName, table string) error {
	from, err := ident.Normalize(typeName)
	if err != nil {
		return fmt.Errorf("alias: %w", err)
	}
	to, err := ident.Normalize(table)
	if err != nil {
		return fmt.Errorf("alias: %w", err)
	}
	r.aliases[from] = to
	return nil
}

// TableName derives the table for a record type name.
func (r *Registry) TableName(typeName string) string {
	if alias, ok := r.aliases[typeName]; ok {
		return alias
	}
	return typeName
}

// Reset forgets every registered table but keeps aliases. Tables are
// re-derived from the backend on next use, which is how a rolled-back
// transaction's DDL is forgotten.
func (r *Registry) Reset() {
	r.tables = make(map[string]*Table)
}

// Lookup returns a registered table.
func (r *Registry) Lookup(table string) (*Table, bool) {
	t, ok := r.tables[table]
	return t, ok
}

// Ensure derives the table for d and brings it up to date: table, then
// every field in declaration order, then every index. A descriptor that is
// already fully registered issues no DDL.
func (r *Registry) Ensure(ctx context.Context, ex *bridge.Executor, d *Descriptor) (*Table, error) {
	name := r.TableName(d.Name)
	if t, ok := r.tables[name]; ok && t.covers(d) {
		if err := checkKinds(t, d); err != nil {
			return nil, err
		}
		return t, nil
	}

	pk, ok := d.Field(d.PrimaryKey)
	if !ok {
		return nil, fmt.Errorf("ensure %s: %w", name, ErrMissingKey)
	}

	t, err := r.EnsureTable(ctx, ex, name, pk.Name, pk.Kind, d.AutoIncrement)
	if err != nil {
		return nil, err
	}
	for _, f := range d.Fields {
		if err := r.EnsureColumn(ctx, ex, name, f.Name, f.Kind); err != nil {
			return nil, err
		}
	}
	for _, idx := range d.Indexes {
		if err := r.EnsureIndex(ctx, ex, name, idx); err != nil {
			return nil, err
		}
	}
	if err := checkKinds(t, d); err != nil {
		return nil, err
	}
	return t, nil
}

// checkKinds rejects descriptors whose fields would change a column's
// storage primitive.
func checkKinds(t *Table, d *Descriptor) error {
	for _, f := range d.Fields {
		if k, ok := t.kinds[f.Name]; ok && !k.Compatible(f.Kind) {
			return fmt.Errorf("%w: %s.%s is %s, descriptor says %s", ErrKindMismatch, t.Name, f.Name, k, f.Kind)
		}
	}
	return nil
}

// EnsureTable creates the table if needed. Calling it again with the same
// primary key is a no-op.
func (r *Registry) EnsureTable(ctx context.Context, ex *bridge.Executor, table, pk string, kind value.Kind, auto bool) (*Table, error) {
	name, err := ident.Normalize(table)
	if err != nil {
		return nil, fmt.Errorf("ensure table: %w", err)
	}
	pk, err = ident.Normalize(pk)
	if err != nil {
		return nil, fmt.Errorf("ensure table %s: key: %w", name, err)
	}

	if t, ok := r.tables[name]; ok {
		if t.PrimaryKey != pk {
			return nil, fmt.Errorf("%w: %s has %s, not %s", ErrPrimaryKeyMismatch, name, t.PrimaryKey, pk)
		}
		return t, nil
	}

	var ddl string
	switch kind {
	case value.KindString, value.KindIdentifier:
		ddl = fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY);", name, pk)
	case value.KindInt, value.KindUint:
		autoClause := ""
		if auto {
			autoClause = " AUTOINCREMENT"
		}
		ddl = fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s INTEGER PRIMARY KEY%s);", name, pk, autoClause)
	default:
		return nil, fmt.Errorf("ensure table %s: %w: %s", name, ErrUnsupportedKey, kind)
	}

	if _, err := ex.Execute(ctx, ddl, nil); err != nil {
		return nil, fmt.Errorf("ensure table %s: %w", name, err)
	}

	cols, err := backendColumns(ctx, ex, name)
	if err != nil {
		return nil, fmt.Errorf("ensure table %s: %w", name, err)
	}
	for _, c := range cols {
		if c.pk && c.name != pk {
			return nil, fmt.Errorf("%w: %s has %s, not %s", ErrPrimaryKeyMismatch, name, c.name, pk)
		}
	}

	t := newTable(name, pk, auto)
	for _, c := range cols {
		t.existing[c.name] = c.declared
	}
	if err := t.fits(pk, kind); err != nil {
		return nil, err
	}
	t.add(pk, kind)
	r.tables[name] = t

	r.logger.Debug("table ensured", "table", name, "primary_key", pk, "kind", kind.String())
	return t, nil
}

// EnsureColumn adds a column if the table lacks it. A column that is
// already registered is left untouched, kind included. A column the
// backend already has is recorded without DDL. Otherwise ALTER TABLE runs
// with errors suppressed.
func (r *Registry) EnsureColumn(ctx context.Context, ex *bridge.Executor, table, column string, kind value.Kind) error {
	t, ok := r.tables[table]
	if !ok {
		return fmt.Errorf("ensure column %s.%s: %w", table, column, ErrUnknownTable)
	}
	col, err := ident.Normalize(column)
	if err != nil {
		return fmt.Errorf("ensure column %s: %w", table, err)
	}

	if _, ok := t.kinds[col]; ok {
		if t.inferred[col] {
			if err := t.fits(col, kind); err != nil {
				return err
			}
			t.kinds[col] = kind
			delete(t.inferred, col)
		}
		return nil
	}

	if _, ok := t.existing[col]; ok {
		if err := t.fits(col, kind); err != nil {
			return err
		}
	} else {
		ddl := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", t.Name, col, kind.ColumnType())
		if _, err := ex.Execute(ctx, ddl, nil, bridge.Silent()); err != nil {
			return err
		}
		r.logger.Debug("column added", "table", t.Name, "column", col, "kind", kind.String())
	}
	t.add(col, kind)
	return nil
}

// IndexName is the deterministic name of an index over cols.
func IndexName(table string, cols []string) string {
	return fmt.Sprintf("idx_%s_%s", table, strings.Join(cols, "_"))
}

// EnsureIndex creates an index over a comma-separated column list.
func (r *Registry) EnsureIndex(ctx context.Context, ex *bridge.Executor, table, columns string) error {
	t, ok := r.tables[table]
	if !ok {
		return fmt.Errorf("ensure index on %s: %w", table, ErrUnknownTable)
	}
	cols := SplitColumns(columns)
	if len(cols) == 0 {
		return fmt.Errorf("ensure index on %s: %w: empty column list", table, ident.ErrInvalidIdentifier)
	}
	for _, c := range cols {
		if _, err := ident.Normalize(c); err != nil {
			return fmt.Errorf("ensure index on %s: %w", table, err)
		}
	}

	name := IndexName(t.Name, cols)
	if t.indexes[name] {
		return nil
	}

	ddl := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s);", name, t.Name, strings.Join(cols, ","))
	if _, err := ex.Execute(ctx, ddl, nil); err != nil {
		return fmt.Errorf("ensure index %s: %w", name, err)
	}
	t.indexes[name] = true
	return nil
}

// Load registers an existing backend table from its declared column types.
// Kinds are inferred (identifier columns read back as strings) and are
// replaced by the first descriptor that declares them.
func (r *Registry) Load(ctx context.Context, ex *bridge.Executor, table string) (*Table, error) {
	name, err := ident.Normalize(table)
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	if t, ok := r.tables[name]; ok {
		return t, nil
	}

	cols, err := backendColumns(ctx, ex, name)
	if err != nil {
		return nil, fmt.Errorf("load table %s: %w", name, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("load table %s: %w", name, ErrUnknownTable)
	}

	t := newTable(name, "", false)
	for _, c := range cols {
		if c.pk {
			t.PrimaryKey = c.name
		}
		t.existing[c.name] = c.declared
		t.add(c.name, value.KindForColumnType(strings.ToUpper(c.declared)))
		t.inferred[c.name] = true
	}
	r.tables[name] = t
	return t, nil
}

type columnInfo struct {
	name     string
	declared string
	pk       bool
}

// backendColumns lists the columns the backend has for table, in order.
func backendColumns(ctx context.Context, ex *bridge.Executor, table string) ([]columnInfo, error) {
	rows, err := ex.Query(ctx, "SELECT name, type, pk FROM pragma_table_info(?) ORDER BY cid",
		[]value.Primitive{value.Text(table)})
	if err != nil {
		return nil, err
	}

	cols := make([]columnInfo, 0, len(rows))
	for _, row := range rows {
		name, _ := row["name"].(value.Text)
		declared, _ := row["type"].(value.Text)
		pk, _ := row["pk"].(value.Integer)
		cols = append(cols, columnInfo{name: string(name), declared: string(declared), pk: pk > 0})
	}
	return cols, nil
}
