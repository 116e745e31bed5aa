package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/groblegark/confpub/internal/model"
	"github.com/spf13/cobra"
)

// readDocument loads the draft body from -f <file>, "-" for stdin, or an
// inline JSON argument.
func readDocument(cmd *cobra.Command, args []string) (json.RawMessage, error) {
	file, _ := cmd.Flags().GetString("file")
	switch {
	case file == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		return data, nil
	case len(args) == 3:
		return json.RawMessage(args[2]), nil
	default:
		return nil, fmt.Errorf("no document: pass inline JSON or use --file")
	}
}

var putCmd = &cobra.Command{
	Use:   "put <product> <kind> [<json>]",
	Short: "Create or update the draft copy of a config",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readDocument(cmd, args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		key := model.OwnerKey{ProductID: args[0], ConfigKind: args[1]}
		rec, err := configClient.PutDraft(context.Background(), key, data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(rec)
		} else {
			fmt.Printf("draft saved: %s/%s v%d\n", rec.ProductID, rec.ConfigKind, rec.Version)
		}
		return nil
	},
}

func init() {
	putCmd.Flags().StringP("file", "f", "", "read the document from a file ('-' for stdin)")
}
