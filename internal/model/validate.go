package model

import (
	"regexp"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// kindPattern constrains config kinds: a letter followed by up to 63
// letters, digits, underscores, or hyphens. Kinds are extensible at
// runtime, so this is the only structural constraint.
var kindPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{0,63}$`)

// ValidKind reports whether s is an acceptable config kind identifier.
func ValidKind(s string) bool {
	return kindPattern.MatchString(s)
}

// ValidateOwnerKey checks an owner key for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the key is valid.
func ValidateOwnerKey(key OwnerKey) error {
	var ve ValidationError

	if strings.TrimSpace(key.ProductID) == "" {
		ve.Add("product_id", "is required")
	}
	if key.ConfigKind == "" {
		ve.Add("config_kind", "is required")
	} else if !ValidKind(key.ConfigKind) {
		ve.Add("config_kind", "must start with a letter and contain only letters, digits, '_' or '-' (max 64 characters)")
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateRecord checks a ConfigRecord for constraint violations before
// storage. It returns a *ValidationError if any rules fail.
func ValidateRecord(r *ConfigRecord) error {
	var ve ValidationError

	if err := ValidateOwnerKey(r.Key()); err != nil {
		ve.Errors = append(ve.Errors, err.(*ValidationError).Errors...)
	}
	if !r.Status.IsValid() {
		ve.Add("status", "must be draft or published")
	}
	if r.Version < 1 {
		ve.Add("version", "must be a positive integer")
	}
	if r.Data == nil {
		ve.Add("data", "is required")
	} else if strings.TrimSpace(r.Data.Meta.Title) == "" {
		ve.Add("data.meta.title", "is required")
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
