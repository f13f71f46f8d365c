// Package vmerrors defines the error taxonomy shared by every engine component.
// Kinds are distinguished by type, not by string matching, so callers can use
// errors.As to recover structured detail (a UUID, an exit code, a field list).
package vmerrors

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
	"github.com/hashicorp/go-multierror"
)

// NotFound means the index has no entry for the given container UUID.
type NotFound struct {
	UUID string
}

func (e *NotFound) Error() string { return fmt.Sprintf("container not found: %s", e.UUID) }

// Conflict means an insert was attempted for a UUID that is already present.
type Conflict struct {
	UUID string
}

func (e *Conflict) Error() string { return fmt.Sprintf("container already exists: %s", e.UUID) }

// FieldError is one validation failure, tagged with the offending field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

// ValidationError aggregates every field-tagged failure from a single Validate call.
// Validate never short-circuits, so this always carries every problem found, not just
// the first.
type ValidationError struct {
	merr *multierror.Error
}

// NewValidationError collects zero or more FieldErrors into a ValidationError. Returns
// nil if errs is empty, so callers can write `if err := NewValidationError(errs); err !=
// nil`.
func NewValidationError(errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	merr := &multierror.Error{ErrorFormat: formatValidation}
	for _, e := range errs {
		merr = multierror.Append(merr, e)
	}
	return &ValidationError{merr: merr}
}

func formatValidation(errs []error) string {
	s := fmt.Sprintf("%d validation error(s):", len(errs))
	for _, e := range errs {
		s += "\n  * " + e.Error()
	}
	return s
}

func (e *ValidationError) Error() string { return e.merr.Error() }

// Fields returns the individual field errors, in the order Validate found them.
func (e *ValidationError) Fields() []FieldError {
	out := make([]FieldError, 0, len(e.merr.Errors))
	for _, err := range e.merr.Errors {
		if fe, ok := err.(FieldError); ok {
			out = append(out, fe)
		}
	}
	return out
}

// UnsupportedCompression means an image manifest named a compression scheme the
// importer does not know how to decode.
type UnsupportedCompression struct {
	Name string
}

func (e *UnsupportedCompression) Error() string {
	return fmt.Sprintf("unsupported compression: %q", e.Name)
}

// BridgeNotConfigured means a NIC's nic_tag has no entry in host_settings.networks.
type BridgeNotConfigured struct {
	Tag string
}

func (e *BridgeNotConfigured) Error() string {
	return fmt.Sprintf("nic_tag %q has no configured bridge", e.Tag)
}

// ExternalCommand wraps a nonzero exit from a HostExec-run program.
type ExternalCommand struct {
	Program  string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ExternalCommand) Error() string {
	return fmt.Sprintf("%s exited %d: %s", e.Program, e.ExitCode, firstNonEmpty(e.Stderr, e.Stdout))
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}

// Generic wraps a one-off error string with a captured stack trace, for the rare case
// that doesn't warrant its own type. New code should prefer a typed kind above; this
// exists for call sites ported from places that had nothing better to say.
func Generic(format string, args ...any) error {
	return goerrors.Wrap(fmt.Errorf(format, args...), 1)
}
