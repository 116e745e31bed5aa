package main

import (
	"context"
	"fmt"
	"os"

	"github.com/groblegark/confpub/internal/model"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish <product> <kind>",
	Short: "Publish the current draft of a config",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := model.OwnerKey{ProductID: args[0], ConfigKind: args[1]}
		rec, err := configClient.Publish(context.Background(), key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(rec)
		} else {
			fmt.Printf("published: %s/%s v%d\n", rec.ProductID, rec.ConfigKind, rec.Version)
		}
		return nil
	},
}
