// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the parley configuration file.
//
// Configuration lives in a single JSON document (comments and trailing
// commas are tolerated) located by the PARLEY_CONFIG environment
// variable (via [Load]) or an explicit path (via [LoadFile]). There is
// no file search and no hidden override: what the file says is what
// runs. A missing file or a missing required section is a fatal error;
// [WriteDefault] bootstraps a fresh install.
//
// Values absent from the file inherit from [Default]. After decoding,
// ${VAR} and ${VAR:-default} references in credential and path fields
// are expanded from the process environment, and relative storage
// paths are resolved against the config file's directory so the file
// can be relocated together with its data.
//
// Key exports:
//
//   - [Config] -- root struct with OpenAI, Storage, Conversation
//   - [Default] -- base values targeting a local Ollama listener
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [WriteDefault] -- writes a starter config for fresh installs
//
// This package depends on no other parley packages.
package config
