package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/switchblade/internal/query"
)

// DeleteResult is the delete command's payload.
type DeleteResult struct {
	Table   string `json:"table"`
	Deleted int64  `json:"deleted"`
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <table>",
		Short: "Delete rows of a table by predicate",
		Long: `Delete every row matching the given predicates.

Without predicates the whole table is cleared, which requires --all.

Example:
  switchblade delete Session --where "expires < 1700000000"
  switchblade delete Session --all`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, `predicate, e.g. "age > 18" (repeatable)`)
	cmd.Flags().BoolVar(&opts.All, "all", false, "allow deleting every row when no predicate is given")

	return cmd
}

func runDelete(opts *QueryOptions, table string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if len(opts.Where) == 0 && !opts.All {
		return outputCommandError(formatter, ErrCodeBadQuery, "no predicates given: pass --all to delete every row", nil)
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
	tbl, err := opts.resolveTable(ctx, st, table)
	if err != nil {
		return outputCommandError(formatter, errorCode(err, ErrCodeDatabase), err.Error(), nil)
	}

	q, err := buildQuery(tbl, opts.Where, "", -1)
	if err != nil {
		return outputCommandError(formatter, ErrCodeBadQuery, err.Error(), nil)
	}
	for _, w := range query.Validate(q).Warnings {
		formatter.Warn("%s", w)
	}

	n, err := st.DeleteRows(ctx, tbl.Name, q)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, err.Error(), nil)
	}

	result := DeleteResult{Table: tbl.Name, Deleted: n}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("deleted %d row(s) from %s", n, tbl.Name))
}
