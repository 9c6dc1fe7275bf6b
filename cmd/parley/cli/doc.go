// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the parley CLI.
//
// The central type is [Command], which represents a named subcommand
// with optional nested [Command.Subcommands], a [pflag.FlagSet]
// factory, and a Run function receiving the interrupt-scoped context
// and a pre-configured logger. Commands are assembled into a tree in
// cmd/parley/commands and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help
// output with examples.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3). This is
// implemented in suggest.go.
//
// The package also provides the shared bootstrap used by every
// command that talks to the assistant:
//
//   - [ResolveConfigPath] / [LoadConfig]: --config flag, then the
//     PARLEY_CONFIG environment variable, then ./config/config.json.
//     Only the implicit default path is auto-created on first run; a
//     path the user named must already exist.
//
//   - [BuildEngine]: storage directories, prompt library bootstrap,
//     the OpenAI-compatible provider with the configured timeout, and
//     the assembled [chat.Engine].
package cli
