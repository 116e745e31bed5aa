package store

import (
	"context"
	"errors"

	"github.com/groblegark/confpub/internal/model"
)

// ErrConflict is returned when a write loses a race with a concurrent
// writer on the same owner key (unique-constraint violation). Callers may
// retry the whole operation.
var ErrConflict = errors.New("conflicting concurrent write")

// Store defines the persistence interface for config records and history.
// Reads of a missing record or history entry return sql.ErrNoRows.
type Store interface {
	// LockOwner serializes writers on one owner key for the duration of
	// the enclosing transaction. Every mutating engine operation must
	// call it first inside RunInTransaction. Distinct owner keys never
	// contend.
	LockOwner(ctx context.Context, key model.OwnerKey) error

	// Config records (current draft/published state)
	CreateRecord(ctx context.Context, rec *model.ConfigRecord) error
	UpdateRecord(ctx context.Context, rec *model.ConfigRecord) error
	GetRecord(ctx context.Context, key model.OwnerKey, status model.Status) (*model.ConfigRecord, error)
	ListRecords(ctx context.Context, productID string) ([]*model.ConfigRecord, error)
	ListAllRecords(ctx context.Context) ([]*model.ConfigRecord, error)

	// History (append-only)
	AppendHistory(ctx context.Context, entry *model.HistoryEntry) error
	GetHistoryEntry(ctx context.Context, id string) (*model.HistoryEntry, error)
	ListHistory(ctx context.Context, filter model.HistoryFilter) ([]*model.HistoryEntry, int, error) // entries, total, error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
