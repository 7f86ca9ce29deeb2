package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/roach88/switchblade/internal/mapper"
)

// QueryOptions holds flags shared by the query and delete commands.
type QueryOptions struct {
	*RootOptions
	Where []string
	Order string
	Limit int
	All   bool
}

// QueryResult is the query command's payload.
type QueryResult struct {
	Table string            `json:"table"`
	Count int               `json:"count"`
	Rows  []json.RawMessage `json:"rows"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "Query rows of a table",
		Long: `Run a structured query against a table and print matching rows as JSON.

Predicates are AND-combined. Literals are typed by the column's declared
type; prefix with uuid: or blob: (base64) to override, or write null.

Example:
  switchblade query Person --where "age > 18" --where "name = Sam" --order "age DESC" --limit 10
  switchblade query Person --where "email is null"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, `predicate, e.g. "age > 18" (repeatable)`)
	cmd.Flags().StringVar(&opts.Order, "order", "", "order expression, e.g. \"age DESC\"")
	cmd.Flags().IntVar(&opts.Limit, "limit", -1, "maximum rows (negative for no limit)")

	return cmd
}

func runQuery(opts *QueryOptions, table string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
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

	q, err := buildQuery(tbl, opts.Where, opts.Order, opts.Limit)
	if err != nil {
		return outputCommandError(formatter, ErrCodeBadQuery, err.Error(), nil)
	}

	rows, err := st.Rows(ctx, tbl.Name, q)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDatabase, err.Error(), nil)
	}

	docs := make([]json.RawMessage, 0, len(rows))
	for i, row := range rows {
		doc, err := mapper.Render(tbl, row)
		if err != nil {
			formatter.Warn("row %d skipped: %v", i, err)
			continue
		}
		docs = append(docs, doc)
	}
	formatter.VerboseLog("%d row(s) from %s", len(docs), tbl.Name)

	if formatter.Format == "json" {
		return formatter.Success(QueryResult{Table: tbl.Name, Count: len(docs), Rows: docs})
	}
	formatter.Lines(docs)
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
