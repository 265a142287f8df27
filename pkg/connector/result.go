package connector

import (
	"strings"
	"unicode"

	"github.com/redbco/redb-connect/pkg/dbcapabilities"
)

// ValidationResult reports whether a configuration can be used.
// Message names the first missing required field when Valid is false, and
// carries advisory notes about defaulted fields when Valid is true.
type ValidationResult struct {
	Valid   bool   `json:"valid" yaml:"valid"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// HasAdvisory reports whether a valid result carries notes.
func (v ValidationResult) HasAdvisory() bool {
	return v.Valid && v.Message != ""
}

// Result is the (payload, valid, message) shape returned by address and session operations.
type Result[T any] struct {
	Value   T
	Valid   bool
	Message string
}

// Valid wraps a payload produced from a valid configuration.
func Valid[T any](value T, message string) Result[T] {
	return Result[T]{Value: value, Valid: true, Message: message}
}

// Invalid reports a failed validation without a payload.
func Invalid[T any](message string) Result[T] {
	return Result[T]{Message: message}
}

// Validation accumulates required-field checks and advisory notes.
// The first failing requirement wins; later requirements are not evaluated.
type Validation struct {
	dbType  dbcapabilities.DatabaseID
	failed  bool
	field   string
	message string
	notes   []string
}

// NewValidation starts a validation for a connector type.
func NewValidation(dbType dbcapabilities.DatabaseID) *Validation {
	return &Validation{dbType: dbType}
}

// Require fails the validation with a "<Label> is required" message when ok is false.
// It returns false once the validation has failed.
func (v *Validation) Require(ok bool, field string) bool {
	if v.failed {
		return false
	}
	if !ok {
		v.failed = true
		v.field = field
		v.message = "Invalid connection details. " + label(field) + " is required."
	}
	return !v.failed
}

// RequireConfig is Require for the presence of a config key.
func (v *Validation) RequireConfig(cfg Config, key string) bool {
	return v.Require(cfg.Has(key), key)
}

// Fail marks the validation invalid with a custom message.
func (v *Validation) Fail(field, message string) {
	if v.failed {
		return
	}
	v.failed = true
	v.field = field
	v.message = message
}

// Advise records an advisory note. Notes are dropped if the validation fails.
func (v *Validation) Advise(note string) {
	v.notes = append(v.notes, note)
}

// Failed reports whether a requirement has failed.
func (v *Validation) Failed() bool {
	return v.failed
}

// Err converts a failed validation into a ConfigurationError, or nil.
func (v *Validation) Err() error {
	if !v.failed {
		return nil
	}
	return NewConfigurationError(v.dbType, v.field, v.message)
}

// Result returns the final validation result.
func (v *Validation) Result() ValidationResult {
	if v.failed {
		return ValidationResult{Valid: false, Message: v.message}
	}
	return ValidationResult{Valid: true, Message: strings.Join(v.notes, "\n")}
}

// label renders a config key as a message label: "http_path" becomes "Http path".
func label(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
