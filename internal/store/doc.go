// Package store provides SQLite-backed persistence for arbitrary records.
//
// A record type describes itself once through a schema.Descriptor. The store
// derives one table per record type (or per alias), grows it as the
// descriptor gains fields, and compiles structured queries against it.
//
// # Operations
//
//   - Create: ensure the table, its columns, and its indexes
//   - Put: INSERT OR REPLACE by primary key
//   - Query / Get: compiled SELECT, rows materialized into the record type
//   - Delete / DeleteWhere: by primary key or by predicate
//   - Perform: run a unit of work inside one transaction
//
// # Value Storage
//
// Values pass through internal/value. Identifiers are written as 16-byte
// blobs into TEXT-declared columns, and unsigned integers above MaxInt64
// wrap to negative integers in the backend. Both round-trip through the
// store but compare oddly in raw SQL.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - SHA512(x) aggregate registered on every connection
//
// A Store holds a single connection and is not safe for concurrent use.
package store
