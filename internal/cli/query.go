package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gandalf/internal/ir"
	"github.com/roach88/gandalf/internal/query"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Schema string
	DB     string
}

// QueryResult is the JSON payload of the query command.
type QueryResult struct {
	Expr    string      `json:"expr"`
	Count   int         `json:"count"`
	Records []ir.Record `json:"records"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <csv> <expr>",
		Short: "Print the inventory records matching a filter expression",
		Long: `Evaluate a filter expression, the same language templates use with
"where", against a CSV inventory and print the matching records in
inventory order.

Example:
  gandalf query hosts.csv 'vlan == 10 and role != db'
  gandalf query --format json hosts.csv 'not mac == null'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "CUE file defining #Record (default: built-in host schema)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "evaluate against a SQLite snapshot at this path")

	return cmd
}

func runQuery(opts *QueryOptions, csvPath, expr string, cmd *cobra.Command) error {
	s := newSession(opts.RootOptions, cmd)

	p, err := query.Parse(expr)
	if err != nil {
		e := WrapExitError(ExitUsage, ErrCodeQuery, "invalid filter expression", err)
		var perr *query.ParseError
		if errors.As(err, &perr) {
			e.Details = map[string]any{"offset": perr.Pos}
		}
		return s.formatter.Fail(e)
	}

	recs, err := loadInventory(csvPath, opts.Schema, s.logger)
	if err != nil {
		return s.formatter.Fail(err)
	}

	st, closeStore, err := openStore(cmd.Context(), opts.DB, recs, s.logger)
	if err != nil {
		return s.formatter.Fail(err)
	}
	defer closeStore()

	matched, err := st.Search(p)
	if err != nil {
		return s.formatter.Fail(WrapExitError(ExitUsage, ErrCodeStore, "query failed", err))
	}
	s.logger.Debug("query evaluated", "expr", expr, "matched", len(matched), "records", len(recs))

	var b strings.Builder
	for _, r := range matched {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%d of %d record(s) matched", len(matched), len(recs))

	return s.formatter.Success(QueryResult{Expr: expr, Count: len(matched), Records: matched}, b.String())
}
