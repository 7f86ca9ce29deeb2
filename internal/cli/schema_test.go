package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCreatesTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "schema.db")
	stdout, _, err := executeRoot(t, "--db", dbPath, "schema", writeRecords(t, peopleRecords))
	require.NoError(t, err)

	assert.Contains(t, stdout, "Person (record Person, primary key id)")
	assert.Regexp(t, `age\s+int\s+INTEGER`, stdout)
	assert.Regexp(t, `avatar\s+blob\s+BLOB`, stdout)
	assert.Contains(t, stdout, "index idx_Person_name")
}

func TestSchemaJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "schema.db")
	stdout, _, err := executeRoot(t, "--format", "json", "--db", dbPath, "schema", writeRecords(t, peopleRecords))
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   SchemaResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Tables, 1)

	tbl := resp.Data.Tables[0]
	assert.Equal(t, "Person", tbl.Table)
	assert.Equal(t, "id", tbl.PrimaryKey)
	assert.Equal(t, []ColumnSummary{
		{Name: "id", Kind: "string", Type: "TEXT"},
		{Name: "name", Kind: "string", Type: "TEXT"},
		{Name: "age", Kind: "int", Type: "INTEGER"},
		{Name: "score", Kind: "float", Type: "REAL"},
		{Name: "avatar", Kind: "blob", Type: "BLOB"},
	}, tbl.Columns)
	assert.Equal(t, []string{"idx_Person_name"}, tbl.Indexes)
}

func TestSchemaGrowsExistingTable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "grow.db")

	_, _, err := executeRoot(t, "--db", dbPath, "schema", writeRecords(t, peopleRecords))
	require.NoError(t, err)

	grown := writeRecords(t, `
package records

records: Person: {
	primary_key: "id"
	fields: {
		id:    "string"
		name:  "string"
		email: "string"
	}
}
`)
	stdout, _, err := executeRoot(t, "--format", "json", "--db", dbPath, "schema", grown)
	require.NoError(t, err)

	var resp struct {
		Data SchemaResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Tables, 1)

	var names []string
	for _, c := range resp.Data.Tables[0].Columns {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "email")
	assert.Contains(t, names, "age", "existing columns are never dropped")
}

func TestSchemaAppliesAliases(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "switchblade.yaml")
	writeFile(t, cfgPath, "database: alias.db\naliases:\n  Person: people\n")

	stdout, _, err := executeRoot(t, "--config", cfgPath, "schema", writeRecords(t, peopleRecords))
	require.NoError(t, err)
	assert.Contains(t, stdout, "people (record Person, primary key id)")
}

func TestSchemaKindConflict(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "conflict.db")

	_, _, err := executeRoot(t, "--db", dbPath, "schema", writeRecords(t, peopleRecords))
	require.NoError(t, err)

	conflicting := writeRecords(t, `
package records

records: Person: {
	primary_key: "id"
	fields: {
		id:  "string"
		age: "blob"
	}
}
`)
	stdout, _, err := executeRoot(t, "--db", dbPath, "schema", conflicting)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E007]")
}

func TestSchemaFailsFastOnBadRecord(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bad.db")
	dir := writeRecords(t, `
package records

records: Broken: {
	fields: { a: "string" }
}
`)
	stdout, _, err := executeRoot(t, "--db", dbPath, "schema", dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "E101")
}
