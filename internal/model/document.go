package model

import (
	"bytes"
	"encoding/json"
)

// DefaultSchemaVersion is assumed when a document carries no explicit
// schema version.
const DefaultSchemaVersion = 1

// Meta is the title-bearing metadata block of a config document.
type Meta struct {
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Category      string `json:"category,omitempty"`
	Icon          string `json:"icon,omitempty"`
	SchemaVersion int    `json:"schemaVersion,omitempty"`
}

// ConfigDocument is the versionable payload: metadata plus an arbitrary
// JSON body (object, array, or scalar).
type ConfigDocument struct {
	Meta Meta            `json:"meta"`
	Body json.RawMessage `json:"body"`
}

// Clone returns a deep copy of the document. Body bytes are copied so the
// clone never aliases the original's buffer.
func (d *ConfigDocument) Clone() *ConfigDocument {
	if d == nil {
		return nil
	}
	c := *d
	if d.Body != nil {
		c.Body = append(json.RawMessage(nil), d.Body...)
	}
	return &c
}

// Equal reports whether two documents have the same metadata and a
// byte-equal body after whitespace-insensitive compaction.
func (d *ConfigDocument) Equal(other *ConfigDocument) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.Meta != other.Meta {
		return false
	}
	return jsonEqual(d.Body, other.Body)
}

func jsonEqual(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if err := json.Compact(&ca, normalizeRaw(a)); err != nil {
		return bytes.Equal(a, b)
	}
	if err := json.Compact(&cb, normalizeRaw(b)); err != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

func normalizeRaw(m json.RawMessage) []byte {
	if len(m) == 0 {
		return []byte("null")
	}
	return m
}
