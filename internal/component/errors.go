// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package component

import (
	"errors"
	"strings"
)

// Sentinel errors. Every failure returned by the core wraps exactly one of
// these so callers can branch with errors.Is.
var (
	ErrDuplicateName         = errors.New("duplicate name")
	ErrNotFound              = errors.New("not found")
	ErrInvalidReference      = errors.New("invalid reference")
	ErrReferentialIntegrity  = errors.New("referential integrity violation")
	ErrParameterRange        = errors.New("parameter out of range")
	ErrIncompleteComposition = errors.New("incomplete composition")
	ErrTypeMismatch          = errors.New("type mismatch")
	ErrAlreadyAttached       = errors.New("already attached")
	ErrDeserialization       = errors.New("deserialization failed")
)

// Error is the structured failure value of the core.
type Error struct {
	// Err is one of the sentinel errors above.
	Err error
	// Kind and Component identify the offending component. Component may be
	// empty for failures detected before a name is known.
	Kind      Kind
	Component string
	// Field names the violated field, role or reference.
	Field string
	// Detail is a human-readable description of the violation.
	Detail string
	// Cause is an underlying error, used by deserialization failures to wrap
	// the invariant that was actually violated.
	Cause error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Err.Error())
	if e.Component != "" || e.Kind != KindAny {
		sb.WriteString(": ")
		if e.Kind != KindAny {
			sb.WriteString(string(e.Kind))
			sb.WriteByte(' ')
		}
		sb.WriteByte('"')
		sb.WriteString(e.Component)
		sb.WriteByte('"')
	}
	if e.Field != "" {
		sb.WriteString(" field ")
		sb.WriteString(e.Field)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap exposes both the sentinel and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// AsError extracts the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// WithComponent returns err with its component identity filled in when the
// innermost *Error has none. Errors of other types are wrapped unchanged.
func WithComponent(err error, kind Kind, name string) error {
	e, ok := err.(*Error)
	if !ok || e.Component != "" {
		return err
	}
	cp := *e
	cp.Kind = kind
	cp.Component = name
	return &cp
}
