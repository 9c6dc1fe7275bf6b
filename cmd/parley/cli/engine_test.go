// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parley-foundation/parley/lib/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTestConfig writes a complete configuration file with storage
// paths rooted under dir and returns its path.
func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()

	content := fmt.Sprintf(`{
    "openai": {
        "api_key": "test-key",
        "base_url": "http://127.0.0.1:9999/v1",
        "model": "test-model",
        "temperature": 0.5,
        "max_tokens": 256,
        "top_p": 0.9,
        "timeout": 30
    },
    "storage": {
        "conversations_path": %q,
        "prompts_path": %q
    },
    "conversation": {
        "max_turns": 5,
        "truncate_mode": "clear"
    }
}`, filepath.Join(dir, "data", "conversations.json"), filepath.Join(dir, "data", "prompts.json"))

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestResolveConfigPath_FlagWins(t *testing.T) {
	t.Setenv("PARLEY_CONFIG", "/from/env.json")

	path, implicit := ResolveConfigPath("/from/flag.json")
	if path != "/from/flag.json" {
		t.Errorf("path = %q, want flag value", path)
	}
	if implicit {
		t.Error("implicit = true for explicit flag path")
	}
}

func TestResolveConfigPath_EnvFallback(t *testing.T) {
	t.Setenv("PARLEY_CONFIG", "/from/env.json")

	path, implicit := ResolveConfigPath("")
	if path != "/from/env.json" {
		t.Errorf("path = %q, want env value", path)
	}
	if implicit {
		t.Error("implicit = true for env path")
	}
}

func TestResolveConfigPath_Default(t *testing.T) {
	t.Setenv("PARLEY_CONFIG", "")

	path, implicit := ResolveConfigPath("")
	if path != DefaultConfigPath {
		t.Errorf("path = %q, want %q", path, DefaultConfigPath)
	}
	if !implicit {
		t.Error("implicit = false for default path")
	}
}

func TestLoadConfig_ExplicitPathMustExist(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")

	_, err := LoadConfig(missing, discardLogger())
	if err == nil {
		t.Fatal("LoadConfig() = nil, want error for missing explicit path")
	}
	if _, statErr := os.Stat(missing); !os.IsNotExist(statErr) {
		t.Error("explicit missing path should not be bootstrapped")
	}
}

func TestLoadConfig_BootstrapsImplicitPath(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PARLEY_CONFIG", "")

	cfg, err := LoadConfig("", discardLogger())
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if _, statErr := os.Stat(DefaultConfigPath); statErr != nil {
		t.Errorf("default config not bootstrapped: %v", statErr)
	}
	if cfg.OpenAI.Model != config.Default().OpenAI.Model {
		t.Errorf("model = %q, want default %q", cfg.OpenAI.Model, config.Default().OpenAI.Model)
	}

	// A second load reads the bootstrapped file rather than rewriting it.
	if _, err := LoadConfig("", discardLogger()); err != nil {
		t.Fatalf("second LoadConfig() error: %v", err)
	}
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := writeTestConfig(t, dir)

	cfg, err := LoadConfig(path, discardLogger())
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.OpenAI.Model != "test-model" {
		t.Errorf("model = %q, want %q", cfg.OpenAI.Model, "test-model")
	}
	if cfg.Conversation.MaxTurns != 5 {
		t.Errorf("max_turns = %d, want 5", cfg.Conversation.MaxTurns)
	}
}

func TestBuildEngine(t *testing.T) {
	dir := t.TempDir()
	path := writeTestConfig(t, dir)

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	engine, err := BuildEngine(cfg, discardLogger())
	if err != nil {
		t.Fatalf("BuildEngine() error: %v", err)
	}
	if engine == nil {
		t.Fatal("BuildEngine() returned nil engine")
	}

	// The prompt library is bootstrapped with the built-in roles.
	if _, err := os.Stat(cfg.Storage.PromptsPath); err != nil {
		t.Errorf("prompts file not bootstrapped: %v", err)
	}
	names := engine.Roles()
	if len(names) == 0 {
		t.Error("expected built-in roles after bootstrap")
	}
}

func TestBuildEngine_RejectsBadTruncateMode(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.ConversationsPath = filepath.Join(dir, "conversations.json")
	cfg.Storage.PromptsPath = filepath.Join(dir, "prompts.json")
	cfg.Conversation.TruncateMode = "oldest"

	_, err := BuildEngine(cfg, discardLogger())
	if err == nil {
		t.Fatal("BuildEngine() = nil, want error for bad truncate mode")
	}
	if !strings.Contains(err.Error(), "truncate mode") {
		t.Errorf("error = %q, want mention of truncate mode", err.Error())
	}
}
