package main

import (
	"context"
	"fmt"
	"os"

	"github.com/groblegark/confpub/internal/model"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <product> <kind>",
	Short: "Fetch a config document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		statusFlag, _ := cmd.Flags().GetString("status")

		var status model.Status
		if statusFlag != "" {
			status = model.Status(statusFlag)
			if !status.IsValid() {
				fmt.Fprintf(os.Stderr, "Error: invalid status %q (want draft or published)\n", statusFlag)
				os.Exit(1)
			}
		}

		key := model.OwnerKey{ProductID: args[0], ConfigKind: args[1]}
		rec, err := configClient.Get(context.Background(), key, status)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(rec)
		} else {
			printRecord(rec)
		}
		return nil
	},
}

func init() {
	getCmd.Flags().String("status", "", "which copy to fetch: draft or published (default prefers draft)")
}
