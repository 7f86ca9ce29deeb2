package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "switchblade", cmd.Use)
	assert.Contains(t, cmd.Long, "without writing a schema")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"validate", "schema", "query", "delete"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("records"))
}

func TestQueryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	queryCmd, _, err := cmd.Find([]string{"query"})
	require.NoError(t, err)

	whereFlag := queryCmd.Flags().Lookup("where")
	require.NotNil(t, whereFlag)
	assert.Equal(t, "w", whereFlag.Shorthand)

	limitFlag := queryCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "-1", limitFlag.DefValue)

	require.NotNil(t, queryCmd.Flags().Lookup("order"))
}

func TestDeleteCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	deleteCmd, _, err := cmd.Find([]string{"delete"})
	require.NoError(t, err)

	allFlag := deleteCmd.Flags().Lookup("all")
	require.NotNil(t, allFlag)
	assert.Equal(t, "false", allFlag.DefValue)
	require.NotNil(t, deleteCmd.Flags().Lookup("where"))
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := executeRoot(t, "--format", "xml", "validate", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestConfigFileSuppliesDatabaseAndRecords(t *testing.T) {
	dir := t.TempDir()
	recordsDir := filepath.Join(dir, "records")
	require.NoError(t, os.Mkdir(recordsDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(recordsDir, "records.cue"), []byte(peopleRecords), 0644))

	cfgPath := filepath.Join(dir, "switchblade.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database: app.db\nrecords: records\n"), 0644))

	stdout, _, err := executeRoot(t, "--config", cfgPath, "schema")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Person (record Person, primary key id)")

	_, err = os.Stat(filepath.Join(dir, "app.db"))
	assert.NoError(t, err, "relative database path resolves against the config file")
}

func TestDBFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "switchblade.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database: from-config.db\n"), 0644))

	override := filepath.Join(dir, "override.db")
	_, _, err := executeRoot(t, "--config", cfgPath, "--db", override, "schema", writeRecords(t, peopleRecords))
	require.NoError(t, err)

	_, err = os.Stat(override)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "from-config.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestBadConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "switchblade.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_level: shouting\n"), 0644))

	_, _, err := executeRoot(t, "--config", cfgPath, "validate", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerboseLogsToStderr(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "v.db")
	stdout, stderr, err := executeRoot(t, "-v", "--format", "json", "--db", dbPath, "schema", writeRecords(t, peopleRecords))
	require.NoError(t, err)

	assert.Contains(t, stderr, "opening database")
	assert.NotContains(t, stdout, "opening database")
}

func TestExecuteLeavesDefaultLoggerAlone(t *testing.T) {
	before := slog.Default()

	dbPath := filepath.Join(t.TempDir(), "quiet.db")
	_, _, err := executeRoot(t, "-v", "--db", dbPath, "schema", writeRecords(t, peopleRecords))
	require.NoError(t, err)

	assert.Same(t, before, slog.Default())
}

func TestRecordsFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "switchblade.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database: app.db\nrecords: nowhere\n"), 0644))

	stdout, _, err := executeRoot(t, "--config", cfgPath, "--records", writeRecords(t, peopleRecords), "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 record(s) valid")
}
