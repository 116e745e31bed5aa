package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/groblegark/confpub/internal/engine"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <product> <file>",
	Short: "Import a previously exported config bundle into a product",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[1] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[1])
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		var bundle engine.ProductExport
		if err := json.Unmarshal(data, &bundle); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid bundle: %v\n", err)
			os.Exit(1)
		}

		kinds, err := configClient.Import(context.Background(), args[0], &bundle)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(map[string]any{"imported": kinds})
		} else {
			fmt.Printf("imported %d configs: %v\n", len(kinds), kinds)
		}
		return nil
	},
}
