// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/parley-foundation/parley/lib/chat"
	"github.com/parley-foundation/parley/lib/chat/history"
	"github.com/parley-foundation/parley/lib/clock"
	"github.com/parley-foundation/parley/lib/config"
	"github.com/parley-foundation/parley/lib/convlog"
	"github.com/parley-foundation/parley/lib/llm"
	"github.com/parley-foundation/parley/lib/prompt"
)

// DefaultConfigPath is where a bare invocation looks for (and, when
// missing, bootstraps) the configuration, relative to the working
// directory.
const DefaultConfigPath = "config/config.json"

// DefaultUser is the conversation key for local sessions when no
// --user flag is given. Contexts and persisted history are segregated
// per user ID.
const DefaultUser = "local"

// ResolveConfigPath picks the configuration file path: the --config
// flag wins, then the PARLEY_CONFIG environment variable, then
// [DefaultConfigPath]. implicit reports whether the default was
// chosen, which is the only case where a missing file is bootstrapped
// rather than an error: a path the user named must exist.
func ResolveConfigPath(flagValue string) (path string, implicit bool) {
	if flagValue != "" {
		return flagValue, false
	}
	if env := os.Getenv("PARLEY_CONFIG"); env != "" {
		return env, false
	}
	return DefaultConfigPath, true
}

// LoadConfig resolves the config path and loads it, writing the
// default configuration first when the implicit path does not exist
// yet. Configuration errors are fatal to the command.
func LoadConfig(flagValue string, logger *slog.Logger) (*config.Config, error) {
	path, implicit := ResolveConfigPath(flagValue)
	if implicit {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := config.WriteDefault(path); err != nil {
				return nil, fmt.Errorf("creating default config: %w", err)
			}
			logger.Info("created default config", "path", path)
		}
	}
	return config.LoadFile(path)
}

// BuildEngine assembles the chat engine from configuration: storage
// directories, the prompt library (bootstrapped with the built-in
// roles on first run), the OpenAI-compatible provider, and the engine
// itself.
func BuildEngine(cfg *config.Config, logger *slog.Logger) (*chat.Engine, error) {
	if err := cfg.EnsureStoragePaths(); err != nil {
		return nil, err
	}

	prompts := prompt.NewStore(cfg.Storage.PromptsPath)
	if err := prompts.Bootstrap(); err != nil {
		return nil, fmt.Errorf("bootstrapping prompts: %w", err)
	}

	mode, err := history.ParseMode(cfg.Conversation.TruncateMode)
	if err != nil {
		return nil, err
	}

	clk := clock.Real()
	provider := llm.NewOpenAI(
		&http.Client{Timeout: cfg.OpenAI.Timeout()},
		cfg.OpenAI.BaseURL,
		cfg.OpenAI.APIKey,
	)

	return chat.NewEngine(chat.Config{
		Provider: provider,
		Prompts:  prompts,
		Log:      convlog.NewStore(cfg.Storage.ConversationsPath, clk),
		Model:    cfg.OpenAI.Model,
		Sampling: llm.Sampling{
			Temperature: cfg.OpenAI.Temperature,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			TopP:        cfg.OpenAI.TopP,
		},
		MaxTurns:     cfg.Conversation.MaxTurns,
		TruncateMode: mode,
		Clock:        clk,
		Logger:       logger,
	})
}
