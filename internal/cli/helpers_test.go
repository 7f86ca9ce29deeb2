package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/switchblade/internal/store"
)

const peopleRecords = `
package records

records: Person: {
	primary_key: "id"
	fields: {
		id:     "string"
		name:   "string"
		age:    "int"
		score:  "float"
		avatar: "blob"
	}
	indexes: ["name"]
}
`

// writeRecords writes src as records.cue in a fresh directory.
func writeRecords(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "records.cue"), []byte(src), 0644))
	return dir
}

// executeRoot runs the root command with args and captures both streams.
func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// seedPeople creates the Person table in a new database and inserts rows
// directly with SQL. Returns the database path.
func seedPeople(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "people.db")

	_, _, err := executeRoot(t, "--db", dbPath, "schema", writeRecords(t, peopleRecords))
	require.NoError(t, err)

	st, err := store.Open(dbPath, store.WithLogger(quietTestLogger()))
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	for _, stmt := range []string{
		`INSERT INTO Person (id, name, age, score, avatar) VALUES ('a', 'Ann', 30, 1.5, NULL)`,
		`INSERT INTO Person (id, name, age, score, avatar) VALUES ('b', 'Bob', 17, 2.5, X'0102')`,
		`INSERT INTO Person (id, name, age, score, avatar) VALUES ('c', 'Cal', 45, NULL, NULL)`,
	} {
		_, err := st.DB().ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	return dbPath
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func quietTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const docRecords = `
package records

records: Doc: {
	primary_key: "id"
	fields: {
		id:    "uuid"
		title: "string"
	}
}
`

const docID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

// seedDocs creates the identifier-keyed Doc table and inserts one row whose
// key is stored as a 16-byte blob. Returns the database path and the
// records directory.
func seedDocs(t *testing.T) (string, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "docs.db")
	recordsDir := writeRecords(t, docRecords)

	_, _, err := executeRoot(t, "--db", dbPath, "schema", recordsDir)
	require.NoError(t, err)

	st, err := store.Open(dbPath, store.WithLogger(quietTestLogger()))
	require.NoError(t, err)
	defer st.Close()

	_, err = st.DB().ExecContext(context.Background(),
		`INSERT INTO Doc (id, title) VALUES (X'6ba7b8109dad11d180b400c04fd430c8', 'Spec')`)
	require.NoError(t, err)
	return dbPath, recordsDir
}
