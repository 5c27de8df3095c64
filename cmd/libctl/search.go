package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ai-library/ai-library/client/aisearch"
)

func newSearchCmd(c *cli) *cobra.Command {
	var (
		topK   int
		answer bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Semantic catalog search",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := aisearch.NewService(c.client, c.log)
			resp, err := svc.Search(cmd.Context(), aisearch.Query{
				Q:             strings.Join(args, " "),
				TopK:          topK,
				IncludeAnswer: answer,
			})
			if err != nil {
				return err
			}
			for _, item := range resp.Results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", item.ID, item.Title)
			}
			if resp.Answer != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", resp.Answer.Text)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&topK, "top", 10, "max results")
	cmd.Flags().BoolVar(&answer, "answer", false, "include a generated answer")

	cmd.AddCommand(newSearchRecordsCmd(c))
	return cmd
}

func newSearchRecordsCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List saved searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := aisearch.NewService(c.client, c.log)
			records, err := svc.ListRecords(cmd.Context(), 0, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, records)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := aisearch.NewService(c.client, c.log)
			return svc.DeleteRecord(cmd.Context(), args[0])
		},
	})
	return cmd
}
