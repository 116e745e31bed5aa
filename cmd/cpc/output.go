package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/groblegark/confpub/internal/client"
	"github.com/groblegark/confpub/internal/model"
	"github.com/groblegark/confpub/internal/ui"
)

const timeFormat = "2006-01-02 15:04:05"

// ANSI color codes, empty when color is disabled.
var (
	colorGreen  = ""
	colorYellow = ""
	colorReset  = ""
)

func init() {
	if ui.ShouldUseColor() {
		colorGreen = "\033[32m"
		colorYellow = "\033[33m"
		colorReset = "\033[0m"
	}
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printRecord(rec *model.ConfigRecord) {
	fmt.Printf("ID:          %s\n", rec.ID)
	fmt.Printf("Product:     %s\n", rec.ProductID)
	fmt.Printf("Kind:        %s\n", rec.ConfigKind)
	fmt.Printf("Status:      %s\n", colorStatus(rec.Status))
	fmt.Printf("Version:     %d\n", rec.Version)
	if rec.Data != nil {
		fmt.Printf("Title:       %s\n", rec.Data.Meta.Title)
		if rec.Data.Meta.Description != "" {
			fmt.Printf("Description: %s\n", rec.Data.Meta.Description)
		}
	}
	fmt.Printf("Created At:  %s\n", rec.CreatedAt.Format(timeFormat))
	fmt.Printf("Updated At:  %s\n", rec.UpdatedAt.Format(timeFormat))
	if rec.Data != nil {
		fmt.Println("Body:")
		body, err := json.MarshalIndent(rec.Data.Body, "", "  ")
		if err == nil {
			fmt.Println(string(body))
		}
	}
}

func colorStatus(s model.Status) string {
	switch s {
	case model.StatusPublished:
		return colorGreen + string(s) + colorReset
	case model.StatusDraft:
		return colorYellow + string(s) + colorReset
	}
	return string(s)
}

func printStatuses(statuses map[string]model.ConfigStatusInfo) {
	kinds := make([]string, 0, len(statuses))
	for kind := range statuses {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tDRAFT\tPUBLISHED")
	for _, kind := range kinds {
		info := statuses[kind]
		draft := "-"
		if info.HasDraft {
			draft = fmt.Sprintf("v%d", info.DraftVersion)
		}
		published := "-"
		if info.HasPublished {
			published = fmt.Sprintf("v%d", info.PublishedVersion)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", kind, draft, published)
	}
	w.Flush()
}

func printHistoryPage(page *client.HistoryPage) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tACTION\tVERSION\tCHANGED BY\tCHANGED AT")
	for _, e := range page.History {
		by := e.ChangedBy
		if e.ChangedByName != "" {
			by = e.ChangedByName
		}
		fmt.Fprintf(w, "%s\t%s\t%s\tv%d\t%s\t%s\n",
			e.ID,
			e.ConfigKind,
			e.Action,
			e.Version,
			by,
			e.ChangedAt.Format(timeFormat),
		)
	}
	w.Flush()
	fmt.Printf("\nPage %d (%d of %d entries)\n", page.Page, len(page.History), page.Total)
}
