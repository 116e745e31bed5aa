package model

import (
	"time"
)

// Status represents the lifecycle state of a stored config record.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished:
		return true
	}
	return false
}

// OwnerKey identifies an independent versioning lineage: one product's
// config of one kind. Config kinds are extensible; new kinds are created
// at runtime by end users, so ConfigKind is a validated free-form string
// rather than an enum.
type OwnerKey struct {
	ProductID  string `json:"product_id"`
	ConfigKind string `json:"config_kind"`
}

// String formats the owner key as "productID/configKind".
func (k OwnerKey) String() string {
	return k.ProductID + "/" + k.ConfigKind
}

// ConfigRecord is a stored config instance, either the editable draft or
// the live published snapshot. For a given owner key at most one record
// exists per status.
type ConfigRecord struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	ConfigKind string          `json:"config_kind"`
	Status     Status          `json:"status"`
	Version    int             `json:"version"`
	Data       *ConfigDocument `json:"data"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Key returns the record's owner key.
func (r *ConfigRecord) Key() OwnerKey {
	return OwnerKey{ProductID: r.ProductID, ConfigKind: r.ConfigKind}
}

// ConfigStatusInfo summarizes the draft/published state of one config kind.
// It is derived from current records, never stored.
type ConfigStatusInfo struct {
	HasDraft         bool `json:"has_draft"`
	HasPublished     bool `json:"has_published"`
	DraftVersion     int  `json:"draft_version,omitempty"`
	PublishedVersion int  `json:"published_version,omitempty"`
}
