package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <product>",
	Short: "Export all configs of a product as a JSON bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("output")

		bundle, err := configClient.Export(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		data, err := json.MarshalIndent(bundle, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')

		if outPath == "" || outPath == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("exported %d configs to %s\n", len(bundle.Configs), outPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "write the bundle to a file instead of stdout")
}
