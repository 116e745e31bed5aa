package events

import (
	"context"

	"github.com/groblegark/confpub/internal/model"
)

// Event topic constants
const (
	TopicDraftCreated    = "confpub.draft.created"
	TopicDraftUpdated    = "confpub.draft.updated"
	TopicPublished       = "confpub.config.published"
	TopicRolledBack      = "confpub.draft.rolledback"
	TopicProductImported = "confpub.product.imported"
)

// Event types

type DraftCreated struct {
	Record *model.ConfigRecord `json:"record"`
}

type DraftUpdated struct {
	Record *model.ConfigRecord `json:"record"`
}

type Published struct {
	Record *model.ConfigRecord `json:"record"`
}

// RolledBack is emitted when a historical snapshot is restored into a new
// draft version. HistoryID names the snapshot the draft was seeded from.
type RolledBack struct {
	Record    *model.ConfigRecord `json:"record"`
	HistoryID string              `json:"history_id"`
}

type ProductImported struct {
	ProductID string   `json:"product_id"`
	Kinds     []string `json:"kinds"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
