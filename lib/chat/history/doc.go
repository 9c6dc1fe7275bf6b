// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

// Package history manages the in-memory conversation context for a
// chat session.
//
// The central type is [History], the ordered message sequence sent to
// the completion backend on each turn. When non-empty, index 0 is
// always the system message carrying the active role's prompt; user
// and assistant messages follow in arrival order. The system message
// is refreshed in place when the active role changes, so exactly one
// system message ever occupies position 0.
//
// Contexts grow one user/assistant pair per turn and are windowed by
// [History.Truncate] before each backend call. Two modes exist:
// [ModeSliding] keeps the system message plus the most recent turns,
// [ModeClear] discards everything but the system message once the
// turn limit is exceeded. Truncation counts turns, not tokens — a
// turn is one user/assistant pair, and an unpaired trailing message
// (for example from an interrupted stream) is tolerated.
//
// This package is distinct from the conversation log: History is the
// live window the model sees, while the log archives full snapshots
// of past exchanges. Token estimation ([CharEstimator]) exists only
// for display purposes — it never drives truncation.
package history
