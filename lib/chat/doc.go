// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat orchestrates conversation turns against a completion
// backend: it owns the per-user in-memory contexts, refreshes the
// system prompt from the active role before every turn, applies the
// truncation policy, invokes the backend (single-shot with retries, or
// streaming), and persists a snapshot of the full context after each
// completed turn.
//
// The Engine is an instance, not ambient state: it holds the user →
// context map, the active role, and the process-wide Settings, and is
// handed to callers (REPL, TUI, tests) explicitly. The Assistant
// interface describes the operation set so front-ends stay decoupled
// from the concrete engine.
//
// Concurrency model: the engine serializes context mutations behind one
// mutex, but a turn's backend call runs outside it, so concurrent turns
// for the same user identifier can interleave and lose updates — the
// intended usage is one active call per user. Turns for different
// users are safe. Settings changes apply to whichever turns run next,
// including turns already queued for other users.
package chat
