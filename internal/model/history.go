package model

import (
	"time"
)

// Action identifies the state transition a history entry records.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionPublish  Action = "publish"
	ActionRollback Action = "rollback"
)

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// IsValid checks whether the action is a known value.
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionPublish, ActionRollback:
		return true
	}
	return false
}

// HistoryEntry is an immutable audit record of one state transition. It
// carries a full document snapshot, never a diff, and is written in the
// same transaction as the config record it describes. Entries are never
// updated or deleted after creation.
type HistoryEntry struct {
	ID            string          `json:"id"`
	Seq           int64           `json:"-"`
	ProductID     string          `json:"product_id"`
	ConfigKind    string          `json:"config_kind"`
	Version       int             `json:"version"`
	Action        Action          `json:"action"`
	Data          *ConfigDocument `json:"data"`
	ChangedBy     string          `json:"changed_by"`
	ChangedByName string          `json:"changed_by_name,omitempty"`
	ChangedAt     time.Time       `json:"changed_at"`
}

// Key returns the entry's owner key.
func (e *HistoryEntry) Key() OwnerKey {
	return OwnerKey{ProductID: e.ProductID, ConfigKind: e.ConfigKind}
}
