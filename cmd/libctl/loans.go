package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ai-library/ai-library/client/checkouts"
	"github.com/ai-library/ai-library/client/model"
)

const batchLimit = 4

func newLoansCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "Manage checkouts",
	}
	cmd.AddCommand(
		newLoansListCmd(c),
		newLoansRequestCmd(c),
		newLoansActionCmd(c, "return", "Return a borrowed book", (*checkouts.Service).Return),
		newLoansActionCmd(c, "cancel", "Cancel a pending request", (*checkouts.Service).Cancel),
		newLoansActionCmd(c, "lost", "Report a borrowed book lost", (*checkouts.Service).MarkLost),
		newLoansExtendCmd(c),
		newLoansBatchCmd(c),
	)
	return cmd
}

func newLoansListCmd(c *cli) *cobra.Command {
	var (
		status string
		bookID string
		skip   int
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List my checkouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := checkouts.NewService(c.client, c.log)
			list, err := svc.ListCheckouts(cmd.Context(), checkouts.ListParams{
				Status: model.CheckoutStatus(status),
				BookID: bookID,
				Skip:   skip,
				Limit:  limit,
			})
			if err != nil {
				return err
			}
			if err := printJSON(cmd, list.Items); err != nil {
				return err
			}
			if list.HasMore {
				fmt.Fprintf(cmd.OutOrStdout(), "more results available, rerun with --skip %d\n", skip+len(list.Items))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&bookID, "book", "", "filter by book id")
	cmd.Flags().IntVar(&skip, "skip", 0, "items to skip")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	return cmd
}

func newLoansRequestCmd(c *cli) *cobra.Command {
	var (
		due   string
		notes string
	)
	cmd := &cobra.Command{
		Use:   "request <book-id>",
		Short: "Request a checkout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(due)
			if err != nil {
				return err
			}
			svc := checkouts.NewService(c.client, c.log)
			co, err := svc.Request(cmd.Context(), args[0], "", day, notes)
			if err != nil {
				return err
			}
			return printJSON(cmd, co)
		},
	}
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().StringVar(&notes, "notes", "", "optional notes")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

// newLoansActionCmd builds one guarded transition command; the current
// checkout is fetched first so the guard sees fresh state.
func newLoansActionCmd(c *cli, use, short string,
	action func(*checkouts.Service, context.Context, model.Checkout) (model.Checkout, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <checkout-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := checkouts.NewService(c.client, c.log)
			co, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated, err := action(svc, cmd.Context(), co)
			if err != nil {
				return err
			}
			return printJSON(cmd, updated)
		},
	}
}

func newLoansExtendCmd(c *cli) *cobra.Command {
	var (
		days int
		date string
	)
	cmd := &cobra.Command{
		Use:   "extend <checkout-id>",
		Short: "Extend a loan by days or to a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (days > 0) == (date != "") {
				return errors.New("pass exactly one of --days or --date")
			}
			ext := checkouts.Extension{Days: days}
			if date != "" {
				day, err := parseDay(date)
				if err != nil {
					return err
				}
				ext = checkouts.Extension{NewDueAt: day}
			}

			svc := checkouts.NewService(c.client, c.log)
			co, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated, err := svc.Extend(cmd.Context(), co, ext)
			if err != nil {
				return err
			}
			return printJSON(cmd, updated)
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "extend by N days")
	cmd.Flags().StringVar(&date, "date", "", "extend to date, YYYY-MM-DD")
	return cmd
}

func newLoansBatchCmd(c *cli) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "batch <return|extend> <checkout-id>...",
		Short: "Apply one action to many checkouts",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, ids := args[0], args[1:]
			svc := checkouts.NewService(c.client, c.log)

			items := make([]model.Checkout, 0, len(ids))
			for _, id := range ids {
				co, err := svc.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				items = append(items, co)
			}

			var fn checkouts.UpdateFunc
			switch action {
			case "return":
				fn = svc.Return
			case "extend":
				if days <= 0 {
					return errors.New("--days is required for extend")
				}
				fn = func(ctx context.Context, co model.Checkout) (model.Checkout, error) {
					return svc.Extend(ctx, co, checkouts.Extension{Days: days})
				}
			default:
				return errors.Errorf("unknown batch action %q", action)
			}

			results := checkouts.Batch(cmd.Context(), items, batchLimit, fn)
			failed := 0
			for _, res := range results {
				if res.Err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: FAILED: %v\n", res.ID, res.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", res.ID, res.Checkout.Status)
			}
			if failed > 0 {
				return errors.Errorf("%d of %d items failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "days for the extend action")
	return cmd
}
