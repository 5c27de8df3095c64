package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ai-library/ai-library/client/books"
)

func newBooksCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Browse the catalog",
	}
	cmd.AddCommand(newBooksListCmd(c), newBooksGetCmd(c))
	return cmd
}

func newBooksListCmd(c *cli) *cobra.Command {
	var (
		search   string
		category string
		skip     int
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := books.NewService(c.client, c.log)
			list, err := svc.ListBooks(cmd.Context(), books.ListParams{
				Search:   search,
				Category: category,
				Skip:     skip,
				Limit:    limit,
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
	cmd.Flags().StringVar(&search, "search", "", "search in title and author")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().IntVar(&skip, "skip", 0, "items to skip")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	return cmd
}

func newBooksGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := books.NewService(c.client, c.log)
			book, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, book)
		},
	}
}
