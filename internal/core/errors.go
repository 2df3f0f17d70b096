package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyDescription = errors.New("empty description")
)

// ValidationError reports input that cannot become a valid entity: malformed
// month strings, inverted bounds, a transaction with no endpoint at all.
type ValidationError struct {
	Field  string // which field was rejected
	Ref    string // the offending value or identifier
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Ref, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an identifier that does not resolve.
type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Ref)
}

// ReferentialError reports a delete blocked by rows still referencing the
// entity. The nil account is permanently protected this way.
type ReferentialError struct {
	Entity string
	Ref    string
	By     string // what still references it
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("cannot delete %s %q: still referenced by %s", e.Entity, e.Ref, e.By)
}

// ConsistencyError reports a broken pairing invariant: a primary transaction
// whose counterpart is missing or corrupted. It indicates a prior partial
// write and is surfaced, never silently repaired.
type ConsistencyError struct {
	Entity string
	Ref    string
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("inconsistent %s %q: %s", e.Entity, e.Ref, e.Detail)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsReferential reports whether err is, or wraps, a ReferentialError.
func IsReferential(err error) bool {
	var re *ReferentialError
	return errors.As(err, &re)
}
