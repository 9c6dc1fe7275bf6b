// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

// Package convlog archives completed conversations. Each finished
// chat turn appends a full snapshot of the user's context to a single
// JSON document keyed by user ID, so the file is a complete,
// human-readable record of every exchange — including turns that were
// later truncated out of the live context window.
//
// The log is whole-document read-modify-write: one shared file,
// rewritten in full on every append. Appends from one process are
// serialized by a mutex; concurrent processes race last-writer-wins
// on the file, which is an accepted property of the format, not
// something this package guards against.
package convlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parley-foundation/parley/lib/clock"
	"github.com/parley-foundation/parley/lib/llm"
)

// Snapshot is one archived conversation state: the full message
// sequence as it stood when a chat turn completed.
type Snapshot struct {
	Timestamp time.Time     `json:"timestamp"`
	Messages  []llm.Message `json:"messages"`
}

// Store appends and reads conversation snapshots. Safe for concurrent
// use within one process.
type Store struct {
	path  string
	clock clock.Clock
	mu    sync.Mutex
}

// NewStore creates a Store backed by the JSON document at path.
// Snapshot timestamps come from clk.
func NewStore(path string, clk clock.Clock) *Store {
	return &Store{path: path, clock: clk}
}

// Append archives the given message sequence under userID. The
// existing log is read first (an unreadable or corrupt file starts a
// fresh log rather than blocking the append), the snapshot is added,
// and the whole document is written back. A write failure is
// returned: the caller's backend call already succeeded at that
// point, so silent loss would hide real data loss.
func (store *Store) Append(userID string, messages []llm.Message) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	log := store.read()
	log[userID] = append(log[userID], Snapshot{
		Timestamp: store.clock.Now(),
		Messages:  messages,
	})
	return store.write(log)
}

// History returns the archived snapshots for userID in append order.
// A missing, unreadable, or corrupt log reads as empty history.
func (store *Store) History(userID string) []Snapshot {
	store.mu.Lock()
	defer store.mu.Unlock()

	return store.read()[userID]
}

// read loads the full log document, degrading to an empty log on any
// failure. Caller holds the mutex.
func (store *Store) read() map[string][]Snapshot {
	data, err := os.ReadFile(store.path)
	if err != nil {
		return map[string][]Snapshot{}
	}
	var log map[string][]Snapshot
	if err := json.Unmarshal(data, &log); err != nil || log == nil {
		return map[string][]Snapshot{}
	}
	return log
}

// write persists the full log document atomically (temp file +
// rename). Output is indented JSON with HTML escaping disabled so
// message content reads literally in the file. Caller holds the
// mutex.
func (store *Store) write(log map[string][]Snapshot) error {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(log); err != nil {
		return fmt.Errorf("encoding conversation log: %w", err)
	}

	directory := filepath.Dir(store.path)
	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(directory, "convlog-*.json")
	if err != nil {
		return fmt.Errorf("creating temp log file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(buffer.Bytes()); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing conversation log: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp log file: %w", err)
	}
	if err := os.Rename(tmpPath, store.path); err != nil {
		return fmt.Errorf("renaming log file to %s: %w", store.path, err)
	}

	success = true
	return nil
}
