// Package codec validates and normalizes raw config document payloads
// before they enter the store. Normalization is pure: it never touches
// storage and has no side effects.
package codec

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/groblegark/confpub/internal/model"
)

// rawDocument mirrors the wire shape of a config document with fields
// loose enough to salvage partially valid input.
type rawDocument struct {
	Meta *rawMeta        `json:"meta"`
	Body json.RawMessage `json:"body"`
}

type rawMeta struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Icon          string `json:"icon"`
	SchemaVersion int    `json:"schemaVersion"`
}

// Normalize validates raw document bytes for the given config kind and
// returns a storable ConfigDocument. Non-object input is rejected with a
// *model.ValidationError. A missing meta block or empty title is coerced
// to a default document: the title derives from the config kind, any
// salvageable meta fields are preserved, and the body falls back to {}.
func Normalize(configKind string, raw json.RawMessage) (*model.ConfigDocument, error) {
	if !isJSONObject(raw) {
		ve := &model.ValidationError{}
		ve.Add("data", "document must be a JSON object")
		return nil, ve
	}

	var in rawDocument
	if err := json.Unmarshal(raw, &in); err != nil {
		// The payload is an object but meta/body carry the wrong types.
		ve := &model.ValidationError{}
		ve.Add("data", "malformed document: "+err.Error())
		return nil, ve
	}

	doc := &model.ConfigDocument{}
	if in.Meta != nil {
		doc.Meta = model.Meta{
			Title:         strings.TrimSpace(in.Meta.Title),
			Description:   in.Meta.Description,
			Category:      in.Meta.Category,
			Icon:          in.Meta.Icon,
			SchemaVersion: in.Meta.SchemaVersion,
		}
	}
	if doc.Meta.Title == "" {
		doc.Meta.Title = TitleFromKind(configKind)
	}
	if doc.Meta.SchemaVersion == 0 {
		doc.Meta.SchemaVersion = model.DefaultSchemaVersion
	}

	doc.Body = in.Body
	if len(doc.Body) == 0 || string(doc.Body) == "null" {
		doc.Body = json.RawMessage(`{}`)
	}

	return doc, nil
}

// TitleFromKind derives a human-readable title from a config kind
// identifier: a space is inserted before each capital letter and the
// first character is capitalized ("seoSettings" -> "Seo Settings").
func TitleFromKind(kind string) string {
	if kind == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range kind {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isJSONObject reports whether raw starts with '{' after leading whitespace.
func isJSONObject(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
