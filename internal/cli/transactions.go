package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tracker/internal/app"
	"tracker/internal/core"
	"tracker/internal/input"
	"tracker/internal/render"
)

func newAddCmd(opts *rootOptions) *cobra.Command {
	var raw input.Raw

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record an income or expense. The date defaults to today and the
type to income.

Example:
  tracker add --name Rent --amount 400 --category housing --type expense`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			t, err := env.Tracker.Add(cmd.Context(), raw)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, render.AddedNotice(t.Type))
			fmt.Fprintf(out, "%d  %s  %s  %s\n", t.ID, render.FormatDate(t.Date), t.Name, render.SignedAmount(t))
			return nil
		},
	}

	cmd.Flags().StringVar(&raw.Name, "name", "", "what the transaction was for (required)")
	cmd.Flags().StringVar(&raw.Amount, "amount", "", "positive amount, e.g. 12.50 (required)")
	cmd.Flags().StringVar(&raw.Category, "category", "", "free-form category label")
	cmd.Flags().StringVar(&raw.Date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&raw.Type, "type", "", "income or expense (default income)")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var period, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions for a period, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := core.ParsePeriod(period)
			if err != nil {
				return err
			}
			env, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			screen := env.Tracker.Query(cmd.Context(), p, search)
			writeList(cmd.OutOrStdout(), screen)
			writeSummary(cmd.OutOrStdout(), screen.Summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", string(core.PeriodAll), "all, day, week, month, year or previous-year")
	cmd.Flags().StringVarP(&search, "search", "s", "", "only show names or categories containing this text")
	return cmd
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income, expenses and balance for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := core.ParsePeriod(period)
			if err != nil {
				return err
			}
			env, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			writeSummary(cmd.OutOrStdout(), env.Tracker.Query(cmd.Context(), p, "").Summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", string(core.PeriodAll), "all, day, week, month, year or previous-year")
	return cmd
}

func newRmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a transaction by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int64
			if _, err := fmt.Sscan(args[0], &id); err != nil {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}
			env, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			if !env.Tracker.Delete(cmd.Context(), id) {
				fmt.Fprintf(cmd.OutOrStdout(), "No transaction with id %d.\n", id)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.DeletedNotice())
			return nil
		},
	}
}

func newPeriodCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "period",
		Short: "List the periods accepted by --period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range core.Periods() {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func writeList(w io.Writer, s app.Screen) {
	if s.Empty != "" {
		fmt.Fprintln(w, s.Empty)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tNAME\tCATEGORY\tAMOUNT")
	for _, t := range s.Transactions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, render.FormatDate(t.Date), t.Name, render.CategoryLabel(t.Category), render.SignedAmount(t))
	}
	tw.Flush()
}

func writeSummary(w io.Writer, s core.Summary) {
	fmt.Fprintf(w, "Income:   %s\n", render.FormatCurrency(s.Income))
	fmt.Fprintf(w, "Expenses: %s\n", render.FormatCurrency(s.Expenses))
	fmt.Fprintf(w, "Balance:  %s\n", render.FormatCurrency(s.Balance))
}
