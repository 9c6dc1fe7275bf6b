// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

// Package prompt stores the role→system-prompt mapping backing chat
// personas. Prompts live in a single JSON document (comments allowed
// when reading) keyed by role name. The file is re-read on every
// lookup so operators can edit prompts while a session is running;
// the next turn picks up the change.
//
// The store is deliberately failure-tolerant: a missing file is
// bootstrapped with the built-in role set, and an unreadable or
// corrupt file degrades to built-in prompts rather than blocking
// chat. Only the explicit [Store.Bootstrap] surfaces file errors.
package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tidwall/jsonc"
)

// DefaultRole is the role used when a caller does not name one, and
// the fallback key when a named role has no entry.
const DefaultRole = "default"

// builtinPrompts is the role set written to disk when no prompts file
// exists, and the in-memory fallback when the file cannot be read.
var builtinPrompts = map[string]string{
	"default":      "You are a helpful assistant.",
	"professional": "You are a professional assistant with expertise in various fields.",
	"creative":     "You are a creative assistant that helps with brainstorming.",
	"code":         "You are a coding assistant that helps with programming.",
}

// Store reads and bootstraps the role-prompt file. Safe for
// concurrent use; the mutex serializes the lazy bootstrap write.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a Store backed by the JSON document at path. The
// file is not touched until the first operation.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the prompt text for the given role. A role with no
// entry falls back to the "default" entry; if the file cannot be
// read, the built-in prompt set serves the same fallback chain. Load
// never fails — prompt lookup must not block a chat turn.
func (store *Store) Load(role string) string {
	prompts, ok := store.read()
	if !ok {
		prompts = builtinPrompts
	}
	if text, found := prompts[role]; found {
		return text
	}
	if text, found := prompts[DefaultRole]; found {
		return text
	}
	return builtinPrompts[DefaultRole]
}

// Has reports whether the named role exists in the store. A role can
// only become active if its prompt exists, so an unreadable file
// means no role switch succeeds until the file is fixed.
func (store *Store) Has(role string) bool {
	prompts, ok := store.read()
	if !ok {
		return false
	}
	_, found := prompts[role]
	return found
}

// Names returns all role names in sorted order. On any read failure
// it returns just ["default"]: role listing must never block chat.
func (store *Store) Names() []string {
	prompts, ok := store.read()
	if !ok {
		return []string{DefaultRole}
	}
	names := make([]string, 0, len(prompts))
	for name := range prompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bootstrap writes the built-in role set to the prompts file if it
// does not already exist. An existing file is left untouched. This is
// the one prompt-store path that reports file errors; the CLI calls
// it at startup so a read-only prompts directory is visible to the
// operator instead of silently degrading every turn.
func (store *Store) Bootstrap() error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, err := os.Stat(store.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking prompts file %s: %w", store.path, err)
	}
	return store.writeBuiltin()
}

// read returns the on-disk role map. A missing file is bootstrapped
// with the built-in set (best-effort: the built-in map is returned
// even if the write fails). Returns ok=false when the file exists but
// cannot be read or parsed — callers choose their own fallback.
func (store *Store) read() (map[string]string, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()

	data, err := os.ReadFile(store.path)
	if os.IsNotExist(err) {
		_ = store.writeBuiltin()
		return builtinPrompts, true
	}
	if err != nil {
		return nil, false
	}

	var prompts map[string]string
	if err := json.Unmarshal(jsonc.ToJSON(data), &prompts); err != nil {
		return nil, false
	}
	return prompts, true
}

// writeBuiltin persists the built-in role set, creating the parent
// directory as needed. Caller holds the mutex.
func (store *Store) writeBuiltin() error {
	data, err := json.MarshalIndent(builtinPrompts, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding built-in prompts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(store.path), 0755); err != nil {
		return fmt.Errorf("creating prompts directory: %w", err)
	}
	if err := os.WriteFile(store.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing prompts file %s: %w", store.path, err)
	}
	return nil
}
