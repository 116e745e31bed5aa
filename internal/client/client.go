// Package client provides a typed HTTP client for the confpub API, used
// by the cpc CLI and other Go callers.
package client

import (
	"context"
	"encoding/json"

	"github.com/groblegark/confpub/internal/engine"
	"github.com/groblegark/confpub/internal/model"
)

// HistoryPage is one page of history entries.
type HistoryPage struct {
	History []*model.HistoryEntry `json:"history"`
	Total   int                   `json:"total"`
	Page    int                   `json:"page"`
	Limit   int                   `json:"limit"`
}

// HistoryOptions narrow and paginate a history query.
type HistoryOptions struct {
	ConfigKind string // empty = whole-product timeline
	Page       int
	Limit      int
}

// ConfigClient is the interface the CLI programs against.
type ConfigClient interface {
	Statuses(ctx context.Context, productID string) (map[string]model.ConfigStatusInfo, error)
	Get(ctx context.Context, key model.OwnerKey, status model.Status) (*model.ConfigRecord, error)
	PutDraft(ctx context.Context, key model.OwnerKey, data json.RawMessage) (*model.ConfigRecord, error)
	Publish(ctx context.Context, key model.OwnerKey) (*model.ConfigRecord, error)
	Rollback(ctx context.Context, key model.OwnerKey, historyID string) (*model.ConfigRecord, error)
	History(ctx context.Context, productID string, opts HistoryOptions) (*HistoryPage, error)
	Export(ctx context.Context, productID string) (*engine.ProductExport, error)
	Import(ctx context.Context, productID string, bundle *engine.ProductExport) ([]string, error)
	Health(ctx context.Context) (string, error)
	Close() error
}
