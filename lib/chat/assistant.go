// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"

	"github.com/parley-foundation/parley/lib/convlog"
)

// Assistant is the operation set the interactive front-ends (REPL,
// TUI) program against. Engine is the one concrete implementation;
// the seam exists so front-ends and their tests can swap in doubles
// without carrying the engine's collaborators.
type Assistant interface {
	// Chat runs one single-shot turn.
	Chat(ctx context.Context, userID, message, roleOverride string) (*Reply, error)

	// ChatStream runs one streaming turn. Never returns nil.
	ChatStream(ctx context.Context, userID, message, roleOverride string) *Stream

	// SetRole switches the active role for subsequent turns.
	SetRole(role string) error

	// ActiveRole returns the current active role name.
	ActiveRole() string

	// Roles lists the available role names.
	Roles() []string

	// ClearContext drops the user's in-memory context.
	ClearContext(userID string)

	// Summary reports the state of the user's context.
	Summary(userID string) Summary

	// History returns the user's persisted conversation snapshots.
	History(userID string) []convlog.Snapshot

	// Settings returns the shared truncation settings.
	Settings() *Settings
}

var _ Assistant = (*Engine)(nil)
