package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/switchblade/internal/bridge"
	"github.com/roach88/switchblade/internal/query"
	"github.com/roach88/switchblade/internal/schema"
)

// Store persists records in a single SQLite database.
type Store struct {
	db       *sql.DB
	registry *schema.Registry
	logger   *slog.Logger

	// unit is the active Perform, if any. While set, every operation runs
	// on its transaction.
	unit *unit
}

// Option configures a Store.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	aliases map[string]string
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAliases maps record type names to table names.
func WithAliases(aliases map[string]string) Option {
	return func(o *options) {
		if o.aliases == nil {
			o.aliases = make(map[string]string, len(aliases))
		}
		maps.Copy(o.aliases, aliases)
	}
}

// Open creates or opens a SQLite database at the given path.
// Every failure is an INIT database error.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string, opts ...Option) (*Store, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, bridge.NewInitError(fmt.Errorf("open %s: %w", path, err))
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, bridge.NewInitError(fmt.Errorf("connect %s: %w", path, err))
	}

	// SQLite only supports one writer at a time, and an open transaction
	// must see every statement, so keep exactly one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, bridge.NewInitError(err)
	}

	registry := schema.NewRegistry(o.logger)
	for _, typeName := range slices.Sorted(maps.Keys(o.aliases)) {
		if err := registry.Alias(typeName, o.aliases[typeName]); err != nil {
			db.Close()
			return nil, bridge.NewInitError(err)
		}
	}

	o.logger.Debug("store opened", "path", path)
	return &Store{db: db, registry: registry, logger: o.logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Registry exposes the schema registry.
func (s *Store) Registry() *schema.Registry {
	return s.registry
}

// executor routes statements to the active transaction, or to the pool.
func (s *Store) executor() *bridge.Executor {
	if s.unit != nil {
		return bridge.New(s.unit.tx, s.logger)
	}
	return bridge.New(s.db, s.logger)
}

// Create derives the table for d and ensures its columns and indexes.
// Later calls for a fully-ensured descriptor issue no DDL.
func (s *Store) Create(ctx context.Context, d *schema.Descriptor) (*schema.Table, error) {
	if d == nil {
		return nil, fmt.Errorf("create: nil descriptor")
	}
	tbl, err := s.registry.Ensure(ctx, s.executor(), d)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", d.Name, err)
	}
	return tbl, nil
}

// LoadTable registers an existing table from the backend's declared
// column types. Tables already registered are returned as they are.
func (s *Store) LoadTable(ctx context.Context, table string) (*schema.Table, error) {
	if tbl, ok := s.registry.Lookup(table); ok {
		return tbl, nil
	}
	return s.registry.Load(ctx, s.executor(), table)
}

// logWarnings surfaces query validation warnings.
func (s *Store) logWarnings(table string, q query.Query) {
	for _, w := range query.Validate(q).Warnings {
		s.logger.Warn("query warning", "table", table, "warning", w)
	}
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	stmt := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(stmt).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
