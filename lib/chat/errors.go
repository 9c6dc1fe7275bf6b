// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"errors"
	"time"
)

// Kind classifies an engine failure. Every error returned by the
// engine (or delivered as a terminal stream event) is an *Error
// carrying one of these kinds; callers branch with the Is* predicates
// rather than matching message text.
type Kind string

const (
	// KindInvalidRole reports a role switch naming a role absent from
	// the prompt store. The user's context is not touched.
	KindInvalidRole Kind = "invalid_role"

	// KindBackend reports a completion call that failed — transport
	// error, API error, or retries exhausted.
	KindBackend Kind = "backend"

	// KindStorage reports a conversation log write that failed after
	// the completion call itself succeeded.
	KindStorage Kind = "storage"
)

// Error is a classified engine failure stamped with the time it
// occurred.
type Error struct {
	Kind Kind
	Time time.Time
	Err  error
}

func (err *Error) Error() string { return err.Err.Error() }

func (err *Error) Unwrap() error { return err.Err }

// IsInvalidRole reports whether err is an engine error caused by an
// unknown role name.
func IsInvalidRole(err error) bool { return hasKind(err, KindInvalidRole) }

// IsBackend reports whether err is an engine error from the completion
// backend.
func IsBackend(err error) bool { return hasKind(err, KindBackend) }

// IsStorage reports whether err is an engine error from persisting the
// conversation log.
func IsStorage(err error) bool { return hasKind(err, KindStorage) }

func hasKind(err error, kind Kind) bool {
	var engineErr *Error
	return errors.As(err, &engineErr) && engineErr.Kind == kind
}
