package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/groblegark/confpub/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version     string    `json:"version"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	RecordCount int       `json:"record_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes every current config record from the store as JSONL
// to w, sorted by product, kind, and status. History is not part of the
// backup; the product export API is the user-facing bundle format.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	records, err := s.ListAllRecords(ctx)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		if a.ConfigKind != b.ConfigKind {
			return a.ConfigKind < b.ConfigKind
		}
		return a.Status < b.Status
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	// Write header.
	if err := enc.Encode(header{
		Version:     "1",
		Type:        "header",
		Timestamp:   time.Now().UTC(),
		RecordCount: len(records),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	// Write records.
	for _, r := range records {
		if err := enc.Encode(record{Type: "config", Data: r}); err != nil {
			return fmt.Errorf("encode config %s/%s: %w", r.ProductID, r.ConfigKind, err)
		}
	}

	return nil
}
