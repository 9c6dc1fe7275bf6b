// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"fmt"
	"sync"

	"github.com/parley-foundation/parley/lib/chat/history"
)

// Defaults applied when a Config leaves the corresponding field unset.
const (
	DefaultMaxTurns     = 10
	DefaultTruncateMode = history.ModeSliding
)

// Settings holds the truncation knobs shared by every user's context.
// They are deliberately process-wide: a change made mid-session applies
// to the next turn of every user, not only the user whose command
// changed them. Safe for concurrent use.
type Settings struct {
	mu           sync.RWMutex
	maxTurns     int
	truncateMode history.Mode
}

// NewSettings builds settings with the given limits. Zero or negative
// maxTurns falls back to DefaultMaxTurns; an empty mode falls back to
// sliding.
func NewSettings(maxTurns int, mode history.Mode) *Settings {
	if maxTurns < 1 {
		maxTurns = DefaultMaxTurns
	}
	if mode == "" {
		mode = DefaultTruncateMode
	}
	return &Settings{maxTurns: maxTurns, truncateMode: mode}
}

// MaxTurns returns the retained-turn limit.
func (settings *Settings) MaxTurns() int {
	settings.mu.RLock()
	defer settings.mu.RUnlock()
	return settings.maxTurns
}

// TruncateMode returns the active truncation mode.
func (settings *Settings) TruncateMode() history.Mode {
	settings.mu.RLock()
	defer settings.mu.RUnlock()
	return settings.truncateMode
}

// Snapshot returns both knobs as one consistent pair, so a turn's
// truncation decision cannot see a limit from one update and a mode
// from another.
func (settings *Settings) Snapshot() (maxTurns int, mode history.Mode) {
	settings.mu.RLock()
	defer settings.mu.RUnlock()
	return settings.maxTurns, settings.truncateMode
}

// SetMaxTurns updates the retained-turn limit. The limit must be at
// least 1; the system message alone is not a conversation.
func (settings *Settings) SetMaxTurns(maxTurns int) error {
	if maxTurns < 1 {
		return fmt.Errorf("max_turns must be at least 1, got %d", maxTurns)
	}
	settings.mu.Lock()
	settings.maxTurns = maxTurns
	settings.mu.Unlock()
	return nil
}

// SetTruncateMode updates the truncation mode from its string form,
// validating it the same way configuration loading does.
func (settings *Settings) SetTruncateMode(value string) error {
	mode, err := history.ParseMode(value)
	if err != nil {
		return err
	}
	settings.mu.Lock()
	settings.truncateMode = mode
	settings.mu.Unlock()
	return nil
}
