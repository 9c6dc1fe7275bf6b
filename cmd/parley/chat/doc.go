// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat implements the conversation-facing subcommands: the
// interactive terminal session ("parley chat", also the bare "parley"
// invocation), single-shot questions ("parley ask"), and the read-only
// views over roles and saved history.
//
// The interactive loop and its in-session commands live in repl.go.
// The loop is written against [chat.Assistant] rather than the
// concrete engine so tests can drive full sessions through a scripted
// backend without a network.
package chat
