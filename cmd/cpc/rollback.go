package main

import (
	"context"
	"fmt"
	"os"

	"github.com/groblegark/confpub/internal/model"
	"github.com/spf13/cobra"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback <product> <kind> <history-id>",
	Short: "Seed a new draft from a past history entry",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := model.OwnerKey{ProductID: args[0], ConfigKind: args[1]}
		rec, err := configClient.Rollback(context.Background(), key, args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(rec)
		} else {
			fmt.Printf("rolled back: %s/%s draft is now v%d\n", rec.ProductID, rec.ConfigKind, rec.Version)
		}
		return nil
	},
}
