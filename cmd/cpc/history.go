package main

import (
	"context"
	"fmt"
	"os"

	"github.com/groblegark/confpub/internal/client"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <product> [<kind>]",
	Short: "List the change history of a product or a single config kind",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")

		opts := client.HistoryOptions{Page: page, Limit: limit}
		if len(args) == 2 {
			opts.ConfigKind = args[1]
		}

		pageResp, err := configClient.History(context.Background(), args[0], opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(pageResp)
		} else {
			printHistoryPage(pageResp)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("page", 1, "page number (1-based)")
	historyCmd.Flags().Int("limit", 20, "entries per page")
}
