package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/switchblade/internal/config"
	"github.com/roach88/switchblade/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string
	Records    string

	// Config is populated before any subcommand runs.
	Config *config.Config

	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the switchblade CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "switchblade",
		Short: "switchblade - schema-inferring record store",
		Long: `Store structured records in SQLite without writing a schema.

Tables are derived from record definitions and grow as fields appear.
Queries are compiled from simple predicates into parameterized SQL.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Records, "records", "", "directory of CUE record definitions (overrides config)")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))

	return cmd
}

// setup loads configuration and installs the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}
	o.Config = o.applyFlags(cfg)

	level := cfg.Level()
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
	return nil
}

// effectiveConfig returns the configuration, for commands run without
// the root command's pre-run (as in tests).
func (o *RootOptions) effectiveConfig() *config.Config {
	if o.Config == nil {
		o.Config = o.applyFlags(config.Default())
	}
	return o.Config
}

// applyFlags lets --db and --records override the config file.
func (o *RootOptions) applyFlags(cfg *config.Config) *config.Config {
	if o.Database != "" {
		cfg.Database = o.Database
	}
	if o.Records != "" {
		cfg.Records = o.Records
	}
	return cfg
}

func (o *RootOptions) log() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}

// openStore opens the configured database with the configured aliases.
func (o *RootOptions) openStore() (*store.Store, error) {
	cfg := o.effectiveConfig()
	o.log().Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database, store.WithLogger(o.log()), store.WithAliases(cfg.Aliases))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
