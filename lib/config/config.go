// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/tidwall/jsonc"
)

// Config is the root configuration document for parley. All three
// sections must be present in the file; fields omitted within a
// section inherit their values from [Default].
type Config struct {
	// OpenAI configures the completion backend.
	OpenAI OpenAIConfig `json:"openai"`

	// Storage locates the JSON documents persisted between runs.
	Storage StorageConfig `json:"storage"`

	// Conversation holds the context-window policy applied each turn.
	Conversation ConversationConfig `json:"conversation"`
}

// OpenAIConfig configures the completion backend. Any server speaking
// the OpenAI chat-completions wire format works here, including local
// runtimes such as Ollama.
type OpenAIConfig struct {
	// APIKey is the bearer token sent with each request. It may be a
	// literal value or a ${VAR} / ${VAR:-default} reference expanded
	// from the process environment at load time. Local backends that
	// skip authentication can leave it empty.
	APIKey string `json:"api_key"`

	// BaseURL is the API root, for example "https://api.openai.com/v1"
	// or a local listener.
	BaseURL string `json:"base_url"`

	// Model is the identifier requested on every completion.
	Model string `json:"model"`

	// Temperature, MaxTokens, and TopP are passed through to the
	// backend unchanged.
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TopP        float64 `json:"top_p"`

	// TimeoutSeconds bounds a single request to the backend. Streamed
	// completions count the whole stream against this limit.
	TimeoutSeconds int `json:"timeout"`
}

// Timeout returns the per-request backend timeout as a duration.
func (c *OpenAIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StorageConfig locates the conversation log and the prompt library.
// Relative paths are resolved against the config file's directory.
type StorageConfig struct {
	ConversationsPath string `json:"conversations_path"`
	PromptsPath       string `json:"prompts_path"`
}

// ConversationConfig holds the truncation policy a fresh engine
// starts with. Runtime changes via set_turns / set_truncate are not
// written back to the file.
type ConversationConfig struct {
	MaxTurns     int    `json:"max_turns"`
	TruncateMode string `json:"truncate_mode"`
}

// Default returns the configuration written by [WriteDefault] and used
// as the base layer when loading: values absent from the file keep
// these defaults. The backend defaults target a local Ollama listener
// so a fresh checkout works without credentials.
func Default() *Config {
	return &Config{
		OpenAI: OpenAIConfig{
			APIKey:         "${OPENAI_API_KEY}",
			BaseURL:        "http://127.0.0.1:11434/v1",
			Model:          "qwen2.5:0.5b",
			Temperature:    0.7,
			MaxTokens:      1000,
			TopP:           1.0,
			TimeoutSeconds: 60,
		},
		Storage: StorageConfig{
			ConversationsPath: "../data/conversations.json",
			PromptsPath:       "../data/prompts.json",
		},
		Conversation: ConversationConfig{
			MaxTurns:     10,
			TruncateMode: "sliding",
		},
	}
}

// Load reads the configuration from the file named by the
// PARLEY_CONFIG environment variable.
func Load() (*Config, error) {
	path := os.Getenv("PARLEY_CONFIG")
	if path == "" {
		return nil, errors.New("PARLEY_CONFIG environment variable not set")
	}
	return LoadFile(path)
}

// requiredSections are the top-level keys a config file must carry.
// Their absence is a structural error rather than a fallback to
// defaults: a file missing a whole section is more likely truncated
// or hand-edited wrong than intentionally sparse.
var requiredSections = []string{"openai", "storage", "conversation"}

// LoadFile reads, expands, and validates the configuration at path.
//
// The file must exist and must contain the "openai", "storage", and
// "conversation" sections; fields omitted within a section inherit
// from [Default]. After decoding, ${VAR} references in the API key,
// base URL, and storage paths are expanded from the environment, and
// relative storage paths are resolved against the config file's
// directory.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Tolerate comments and trailing commas in hand-edited files.
	plain := jsonc.ToJSON(data)

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(plain, &sections); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	var missing []error
	for _, key := range requiredSections {
		if _, ok := sections[key]; !ok {
			missing = append(missing, fmt.Errorf("missing required section %q", key))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("config file %s: %w", path, errors.Join(missing...))
	}

	cfg := Default()
	if err := json.Unmarshal(plain, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.expandVariables()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	cfg.resolvePaths(filepath.Dir(absPath))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns in s.
// Variables are looked up in vars first, then in the process
// environment, then fall back to the default (empty if none given).
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := varPattern.FindStringSubmatch(match)
		name, fallback := groups[1], groups[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return fallback
	})
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.OpenAI.APIKey = expandVars(c.OpenAI.APIKey, vars)
	c.OpenAI.BaseURL = expandVars(c.OpenAI.BaseURL, vars)
	c.Storage.ConversationsPath = expandVars(c.Storage.ConversationsPath, vars)
	c.Storage.PromptsPath = expandVars(c.Storage.PromptsPath, vars)
}

// resolvePaths anchors relative storage paths at dir, the directory
// containing the config file, so the file can be moved together with
// its data.
func (c *Config) resolvePaths(dir string) {
	c.Storage.ConversationsPath = resolvePath(dir, c.Storage.ConversationsPath)
	c.Storage.PromptsPath = resolvePath(dir, c.Storage.PromptsPath)
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Validate checks the configuration for invariant violations and
// reports all of them at once.
func (c *Config) Validate() error {
	var errs []error

	if c.OpenAI.BaseURL == "" {
		errs = append(errs, errors.New("openai.base_url is required"))
	}
	if c.OpenAI.Model == "" {
		errs = append(errs, errors.New("openai.model is required"))
	}
	if c.OpenAI.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("openai.max_tokens must be positive, got %d", c.OpenAI.MaxTokens))
	}
	if c.OpenAI.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("openai.timeout must be positive, got %d", c.OpenAI.TimeoutSeconds))
	}
	if c.Storage.ConversationsPath == "" {
		errs = append(errs, errors.New("storage.conversations_path is required"))
	}
	if c.Storage.PromptsPath == "" {
		errs = append(errs, errors.New("storage.prompts_path is required"))
	}
	if c.Conversation.MaxTurns < 1 {
		errs = append(errs, fmt.Errorf("conversation.max_turns must be at least 1, got %d", c.Conversation.MaxTurns))
	}
	switch c.Conversation.TruncateMode {
	case "sliding", "clear":
	default:
		errs = append(errs, fmt.Errorf("invalid conversation.truncate_mode %q (must be sliding or clear)", c.Conversation.TruncateMode))
	}

	return errors.Join(errs...)
}

// EnsureStoragePaths creates the parent directories of the storage
// files so writes on a fresh install do not fail. The files
// themselves are created lazily on first write.
func (c *Config) EnsureStoragePaths() error {
	for _, path := range []string{c.Storage.ConversationsPath, c.Storage.PromptsPath} {
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteDefault writes the default configuration to path, creating
// parent directories as needed. It refuses to overwrite an existing
// file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(Default(), "", "    ")
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
