// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

// Parley is a terminal chat client for OpenAI-compatible completion
// backends. It provides an interactive session (chat), single-shot
// questions (ask), a full-screen interface (tui), and management of
// roles, saved history, and configuration.
package main
