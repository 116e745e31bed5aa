// Package engine implements the configuration versioning and publication
// state machine: draft create/update, publish promotion, and rollback from
// history snapshots. Every mutation writes its config record and history
// entry in one store transaction under a per-owner-key lock, so partial
// states are never observable and concurrent writers on the same key are
// serialized. Distinct owner keys never contend.
package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/groblegark/confpub/internal/codec"
	"github.com/groblegark/confpub/internal/events"
	"github.com/groblegark/confpub/internal/idgen"
	"github.com/groblegark/confpub/internal/model"
	"github.com/groblegark/confpub/internal/store"
)

// ErrNotFound is returned when a config record or history entry does not
// exist. Terminal: callers should not retry.
var ErrNotFound = errors.New("not found")

// ErrNoDraftToPublish is returned by Publish when the owner key has no
// draft. Terminal: callers should not retry.
var ErrNoDraftToPublish = errors.New("no draft to publish")

// ErrConflict is returned when a concurrent writer won the race on the
// same owner key. Callers may retry the whole operation.
var ErrConflict = store.ErrConflict

// Actor is the authenticated identity performing a mutation, supplied by
// the external identity collaborator.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Engine exposes the versioning, publication, history, and query
// operations over a store.Store.
type Engine struct {
	store     store.Store
	publisher events.Publisher
	logger    *slog.Logger
}

// New returns an Engine backed by the given store and publisher.
func New(s store.Store, p events.Publisher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: s, publisher: p, logger: logger}
}

// publish emits an event after a successful mutation. Best-effort:
// failures are logged but never surface to the caller.
func (e *Engine) publish(ctx context.Context, topic string, event any) {
	if err := e.publisher.Publish(ctx, topic, event); err != nil {
		e.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

// CreateOrUpdateDraft normalizes raw document bytes and writes them as the
// owner key's draft. A missing draft is created at version 1 with a
// "create" history entry; an existing draft is overwritten in place, its
// version incremented by one, with an "update" entry. The record write and
// history append commit atomically.
func (e *Engine) CreateOrUpdateDraft(ctx context.Context, key model.OwnerKey, raw json.RawMessage, actor Actor) (*model.ConfigRecord, error) {
	if err := model.ValidateOwnerKey(key); err != nil {
		return nil, err
	}
	doc, err := codec.Normalize(key.ConfigKind, raw)
	if err != nil {
		return nil, err
	}

	rec, action, err := e.writeDraft(ctx, key, doc, model.ActionUpdate, actor)
	if err != nil {
		return nil, err
	}

	switch action {
	case model.ActionCreate:
		e.publish(ctx, events.TopicDraftCreated, events.DraftCreated{Record: rec})
	default:
		e.publish(ctx, events.TopicDraftUpdated, events.DraftUpdated{Record: rec})
	}
	return rec, nil
}

// writeDraft runs the shared draft-write transaction. When no draft exists
// the recorded action is always "create"; otherwise existingAction
// ("update" or "rollback") is recorded. Returns the resulting record and
// the action that was recorded.
func (e *Engine) writeDraft(ctx context.Context, key model.OwnerKey, doc *model.ConfigDocument, existingAction model.Action, actor Actor) (*model.ConfigRecord, model.Action, error) {
	var (
		rec    *model.ConfigRecord
		action model.Action
	)
	err := e.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.LockOwner(ctx, key); err != nil {
			return err
		}

		draft, err := tx.GetRecord(ctx, key, model.StatusDraft)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// First write for this lineage: version 1.
			id, err := idgen.Generate()
			if err != nil {
				return err
			}
			draft = &model.ConfigRecord{
				ID:         id,
				ProductID:  key.ProductID,
				ConfigKind: key.ConfigKind,
				Status:     model.StatusDraft,
				Version:    1,
				Data:       doc,
			}
			if err := model.ValidateRecord(draft); err != nil {
				return err
			}
			if err := tx.CreateRecord(ctx, draft); err != nil {
				return fmt.Errorf("create draft %s: %w", key, err)
			}
			action = model.ActionCreate
		case err != nil:
			return fmt.Errorf("get draft %s: %w", key, err)
		default:
			// Versions only ever advance; content equality does not
			// short-circuit the increment.
			draft.Version++
			draft.Data = doc
			if err := model.ValidateRecord(draft); err != nil {
				return err
			}
			if err := tx.UpdateRecord(ctx, draft); err != nil {
				return fmt.Errorf("update draft %s: %w", key, err)
			}
			action = existingAction
		}

		entry, err := newHistoryEntry(draft, action, actor)
		if err != nil {
			return err
		}
		if err := tx.AppendHistory(ctx, entry); err != nil {
			return fmt.Errorf("append history %s: %w", key, err)
		}

		rec = draft
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return rec, action, nil
}

// Publish promotes the owner key's draft into the published slot. The
// published record is created or overwritten with the draft's current data
// and version; the draft itself is left untouched so editors can keep
// iterating. Publish never mints a version. Fails with ErrNoDraftToPublish
// when no draft exists and records nothing in history.
func (e *Engine) Publish(ctx context.Context, key model.OwnerKey, actor Actor) (*model.ConfigRecord, error) {
	if err := model.ValidateOwnerKey(key); err != nil {
		return nil, err
	}

	var rec *model.ConfigRecord
	err := e.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.LockOwner(ctx, key); err != nil {
			return err
		}

		draft, err := tx.GetRecord(ctx, key, model.StatusDraft)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrNoDraftToPublish, key)
		}
		if err != nil {
			return fmt.Errorf("get draft %s: %w", key, err)
		}

		published, err := tx.GetRecord(ctx, key, model.StatusPublished)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			id, err := idgen.Generate()
			if err != nil {
				return err
			}
			published = &model.ConfigRecord{
				ID:         id,
				ProductID:  key.ProductID,
				ConfigKind: key.ConfigKind,
				Status:     model.StatusPublished,
				Version:    draft.Version,
				Data:       draft.Data.Clone(),
			}
			if err := tx.CreateRecord(ctx, published); err != nil {
				return fmt.Errorf("create published %s: %w", key, err)
			}
		case err != nil:
			return fmt.Errorf("get published %s: %w", key, err)
		default:
			published.Version = draft.Version
			published.Data = draft.Data.Clone()
			if err := tx.UpdateRecord(ctx, published); err != nil {
				return fmt.Errorf("update published %s: %w", key, err)
			}
		}

		// The publish entry echoes the draft's version; publish never
		// mints one.
		entry, err := newHistoryEntry(published, model.ActionPublish, actor)
		if err != nil {
			return err
		}
		if err := tx.AppendHistory(ctx, entry); err != nil {
			return fmt.Errorf("append history %s: %w", key, err)
		}

		rec = published
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, events.TopicPublished, events.Published{Record: rec})
	return rec, nil
}

// Rollback seeds a new draft from the history entry's snapshot. The entry
// must exist and belong to the owner key, else ErrNotFound. A fresh draft
// version is minted (versions are never reused or decremented) and a
// "rollback" history entry records the restored snapshot. The published
// record is untouched: the restored draft still has to pass the publish
// barrier before it affects the live document.
func (e *Engine) Rollback(ctx context.Context, key model.OwnerKey, historyEntryID string, actor Actor) (*model.ConfigRecord, error) {
	if err := model.ValidateOwnerKey(key); err != nil {
		return nil, err
	}

	var rec *model.ConfigRecord
	err := e.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.LockOwner(ctx, key); err != nil {
			return err
		}

		entry, err := tx.GetHistoryEntry(ctx, historyEntryID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: history entry %s", ErrNotFound, historyEntryID)
		}
		if err != nil {
			return fmt.Errorf("get history entry %s: %w", historyEntryID, err)
		}
		if entry.Key() != key {
			// An entry id from another lineage is indistinguishable from
			// a missing one as far as this owner key is concerned.
			return fmt.Errorf("%w: history entry %s does not belong to %s", ErrNotFound, historyEntryID, key)
		}

		txEngine := &Engine{store: tx, publisher: e.publisher, logger: e.logger}
		r, _, err := txEngine.writeDraft(ctx, key, entry.Data.Clone(), model.ActionRollback, actor)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, events.TopicRolledBack, events.RolledBack{Record: rec, HistoryID: historyEntryID})
	return rec, nil
}

// Current returns the owner key's record for the given status. An empty
// status prefers the draft and falls back to the published record, which
// is what the editor UI wants for the unfiltered read.
func (e *Engine) Current(ctx context.Context, key model.OwnerKey, status model.Status) (*model.ConfigRecord, error) {
	if err := model.ValidateOwnerKey(key); err != nil {
		return nil, err
	}

	if status != "" {
		rec, err := e.store.GetRecord(ctx, key, status)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrNotFound, key, status)
		}
		return rec, err
	}

	rec, err := e.store.GetRecord(ctx, key, model.StatusDraft)
	if errors.Is(err, sql.ErrNoRows) {
		rec, err = e.store.GetRecord(ctx, key, model.StatusPublished)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
	}
	return rec, err
}

// Statuses returns the draft/published summary of every config kind the
// product currently has, derived by scanning current records.
func (e *Engine) Statuses(ctx context.Context, productID string) (map[string]model.ConfigStatusInfo, error) {
	records, err := e.store.ListRecords(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list records for %s: %w", productID, err)
	}

	statuses := make(map[string]model.ConfigStatusInfo)
	for _, r := range records {
		info := statuses[r.ConfigKind]
		switch r.Status {
		case model.StatusDraft:
			info.HasDraft = true
			info.DraftVersion = r.Version
		case model.StatusPublished:
			info.HasPublished = true
			info.PublishedVersion = r.Version
		}
		statuses[r.ConfigKind] = info
	}
	return statuses, nil
}

// History returns one page of history entries, newest first, plus the
// total count for the filter.
func (e *Engine) History(ctx context.Context, filter model.HistoryFilter) ([]*model.HistoryEntry, int, error) {
	return e.store.ListHistory(ctx, filter)
}

// newHistoryEntry builds the audit entry for a record write. ChangedAt is
// assigned by the database on insert.
func newHistoryEntry(rec *model.ConfigRecord, action model.Action, actor Actor) (*model.HistoryEntry, error) {
	id, err := idgen.GenerateWithPrefix(idgen.HistoryPrefix)
	if err != nil {
		return nil, err
	}
	return &model.HistoryEntry{
		ID:            id,
		ProductID:     rec.ProductID,
		ConfigKind:    rec.ConfigKind,
		Version:       rec.Version,
		Action:        action,
		Data:          rec.Data.Clone(),
		ChangedBy:     actor.ID,
		ChangedByName: actor.Name,
		ChangedAt:     time.Now().UTC(),
	}, nil
}
