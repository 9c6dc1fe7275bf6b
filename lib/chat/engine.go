// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/parley-foundation/parley/lib/chat/history"
	"github.com/parley-foundation/parley/lib/clock"
	"github.com/parley-foundation/parley/lib/convlog"
	"github.com/parley-foundation/parley/lib/llm"
	"github.com/parley-foundation/parley/lib/prompt"
)

// Retry schedule for single-shot completion calls: up to retryAttempts
// tries, waiting backoffWait between failures. Streaming calls are not
// retried — a broken stream cannot be replayed transparently.
const (
	retryAttempts = 3
	backoffBase   = 1 * time.Second
	backoffMin    = 4 * time.Second
	backoffMax    = 10 * time.Second
)

// Config carries the engine's collaborators and initial settings.
type Config struct {
	// Provider executes completion calls. Required.
	Provider llm.Provider

	// Prompts resolves role names to system prompt text. Required.
	Prompts *prompt.Store

	// Log persists a conversation snapshot after each completed turn.
	// Required.
	Log *convlog.Store

	// Model is the model identifier sent with every completion
	// request. Required.
	Model string

	// Sampling is passed through to the backend unchanged.
	Sampling llm.Sampling

	// MaxTurns caps retained conversation turns per user. Zero or
	// negative defaults to DefaultMaxTurns.
	MaxTurns int

	// TruncateMode selects how over-limit contexts shrink. Empty
	// defaults to sliding.
	TruncateMode history.Mode

	// Clock drives retry backoff and timestamps. If nil, the real
	// clock is used.
	Clock clock.Clock

	// Logger receives operational messages (truncation, retries). If
	// nil, a no-op logger is used.
	Logger *slog.Logger
}

// Engine runs chat turns. One instance serves any number of user
// identifiers, each with its own in-memory context; the active role
// and the Settings are shared across all of them.
type Engine struct {
	provider  llm.Provider
	prompts   *prompt.Store
	log       *convlog.Store
	model     string
	sampling  llm.Sampling
	settings  *Settings
	clock     clock.Clock
	logger    *slog.Logger
	estimator *history.CharEstimator

	mu         sync.Mutex
	activeRole string
	contexts   map[string]*userContext
}

type userContext struct {
	history   *history.History
	updatedAt time.Time
}

// NewEngine validates the configuration and builds an engine. The
// active role starts as "default".
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("chat: Provider is required")
	}
	if cfg.Prompts == nil {
		return nil, fmt.Errorf("chat: Prompts is required")
	}
	if cfg.Log == nil {
		return nil, fmt.Errorf("chat: Log is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("chat: Model is required")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		provider:   cfg.Provider,
		prompts:    cfg.Prompts,
		log:        cfg.Log,
		model:      cfg.Model,
		sampling:   cfg.Sampling,
		settings:   NewSettings(cfg.MaxTurns, cfg.TruncateMode),
		clock:      clk,
		logger:     logger,
		estimator:  history.NewCharEstimator(),
		activeRole: prompt.DefaultRole,
		contexts:   make(map[string]*userContext),
	}, nil
}

// Reply is the outcome of a successful single-shot turn.
type Reply struct {
	// Text is the assistant's reply.
	Text string

	// Role is the role whose prompt seeded this turn.
	Role string

	// Time is when the turn completed.
	Time time.Time

	// Usage is the backend's token accounting, when reported.
	Usage llm.Usage
}

// Chat runs one single-shot turn for userID: resolve the role (the
// override, if given, becomes the active role for subsequent turns
// too), refresh the system prompt, truncate, append the user message,
// call the backend, append the reply, persist a snapshot.
//
// An unknown roleOverride fails with an invalid-role error before the
// context is touched. A backend failure (after retries) leaves the
// appended user message in place with no paired reply; the next turn's
// truncation tolerates the odd length. If persisting the snapshot
// fails, Chat returns the reply AND a storage-kind error — the remote
// call already succeeded, so neither the text nor the data-loss risk
// is hidden.
func (engine *Engine) Chat(ctx context.Context, userID, message, roleOverride string) (*Reply, error) {
	role, messages, err := engine.beginTurn(userID, message, roleOverride)
	if err != nil {
		return nil, err
	}

	response, err := engine.completeWithRetry(ctx, llm.Request{
		Model:    engine.model,
		Messages: messages,
		Sampling: engine.sampling,
	})
	if err != nil {
		return nil, engine.wrapError(KindBackend, err)
	}

	snapshot := engine.commitAssistant(userID, messages, response.Text, response.Usage.InputTokens)
	reply := &Reply{Text: response.Text, Role: role, Time: engine.clock.Now(), Usage: response.Usage}
	if err := engine.log.Append(userID, snapshot); err != nil {
		return reply, engine.wrapError(KindStorage, fmt.Errorf("saving conversation: %w", err))
	}
	return reply, nil
}

// beginTurn performs the shared head of a turn under the engine lock:
// role override, system-prompt refresh, truncation, user append. It
// returns the role used and a snapshot of the full context to send to
// the backend.
func (engine *Engine) beginTurn(userID, message, roleOverride string) (string, []llm.Message, error) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	role := engine.activeRole
	if roleOverride != "" && roleOverride != role {
		if !engine.prompts.Has(roleOverride) {
			return "", nil, engine.errorf(KindInvalidRole, "unknown role %q", roleOverride)
		}
		engine.activeRole = roleOverride
		role = roleOverride
	}

	// Refresh the system prompt every turn: the active role (or the
	// prompt file itself) may have changed since the last one.
	promptText := engine.prompts.Load(role)
	userCtx := engine.contexts[userID]
	if userCtx == nil {
		userCtx = &userContext{history: history.New(promptText)}
		engine.contexts[userID] = userCtx
	} else {
		userCtx.history.SetSystemPrompt(promptText)
	}

	maxTurns, mode := engine.settings.Snapshot()
	if evicted := userCtx.history.Truncate(mode, maxTurns); evicted > 0 {
		engine.logger.Debug("context truncated",
			"user_id", userID,
			"mode", string(mode),
			"evicted", evicted,
		)
	}

	userCtx.history.Append(llm.UserMessage(message))
	userCtx.updatedAt = engine.clock.Now()
	return role, userCtx.history.Messages(), nil
}

// commitAssistant appends the reply to the user's context and returns
// a snapshot for persistence. If the context was cleared while the
// call was in flight, it is rebuilt from the turn's own messages so
// the snapshot matches what the model actually saw. The estimator is
// calibrated here because the engine lock is its only guard.
func (engine *Engine) commitAssistant(userID string, requestMessages []llm.Message, text string, inputTokens int64) []llm.Message {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	engine.estimator.RecordUsage(requestMessages, inputTokens)

	userCtx := engine.contexts[userID]
	if userCtx == nil {
		userCtx = &userContext{history: history.New(requestMessages[0].Content)}
		for _, message := range requestMessages[1:] {
			userCtx.history.Append(message)
		}
		engine.contexts[userID] = userCtx
	}
	userCtx.history.Append(llm.AssistantMessage(text))
	userCtx.updatedAt = engine.clock.Now()
	return userCtx.history.Messages()
}

func (engine *Engine) completeWithRetry(ctx context.Context, request llm.Request) (*llm.Response, error) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		response, err := engine.provider.Complete(ctx, request)
		if err == nil {
			return response, nil
		}
		lastErr = err
		if attempt == retryAttempts {
			break
		}
		wait := backoffWait(attempt)
		engine.logger.Warn("completion failed, retrying",
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
		select {
		case <-engine.clock.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("completion failed after %d attempts: %w", retryAttempts, lastErr)
}

// backoffWait doubles per failed attempt, clamped to
// [backoffMin, backoffMax]: 4s after the first failure, 8s after the
// second.
func backoffWait(attempt int) time.Duration {
	wait := backoffBase << (attempt + 1)
	if wait < backoffMin {
		wait = backoffMin
	}
	if wait > backoffMax {
		wait = backoffMax
	}
	return wait
}

// SetRole switches the active role for subsequent turns. The role must
// exist in the prompt store; on failure the active role is unchanged.
func (engine *Engine) SetRole(role string) error {
	if !engine.prompts.Has(role) {
		return engine.errorf(KindInvalidRole, "unknown role %q", role)
	}
	engine.mu.Lock()
	engine.activeRole = role
	engine.mu.Unlock()
	return nil
}

// ActiveRole returns the role whose prompt will seed the next turn.
func (engine *Engine) ActiveRole() string {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.activeRole
}

// Roles lists the role names available in the prompt store.
func (engine *Engine) Roles() []string {
	return engine.prompts.Names()
}

// ClearContext drops userID's in-memory context. The next turn starts
// fresh from the active role's system prompt. Persisted history is
// unaffected.
func (engine *Engine) ClearContext(userID string) {
	engine.mu.Lock()
	delete(engine.contexts, userID)
	engine.mu.Unlock()
}

// ClearAllContexts drops every user's in-memory context. Persisted
// history is unaffected.
func (engine *Engine) ClearAllContexts() {
	engine.mu.Lock()
	engine.contexts = make(map[string]*userContext)
	engine.mu.Unlock()
}

// Context returns a copy of userID's current in-memory context, or
// false when the user has none.
func (engine *Engine) Context(userID string) ([]llm.Message, bool) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	userCtx := engine.contexts[userID]
	if userCtx == nil {
		return nil, false
	}
	return userCtx.history.Messages(), true
}

// History returns userID's persisted conversation snapshots, oldest
// first. Missing or unreadable storage reads as empty.
func (engine *Engine) History(userID string) []convlog.Snapshot {
	return engine.log.History(userID)
}

// Settings returns the engine's shared truncation settings. Mutations
// take effect from the next turn of any user.
func (engine *Engine) Settings() *Settings {
	return engine.settings
}

// Summary describes the current in-memory context for one user.
// Counts exclude the system message. EstimatedTokens and ContextWindow
// feed the status display; the estimate never drives truncation.
type Summary struct {
	MessageCount    int       `json:"message_count"`
	HasContext      bool      `json:"has_context"`
	CurrentRole     string    `json:"current_role"`
	LastMessageTime time.Time `json:"last_message_time,omitzero"`
	MaxTurns        int       `json:"max_turns"`
	CurrentTurns    int       `json:"current_turns"`
	EstimatedTokens int       `json:"estimated_tokens"`
	ContextWindow   int       `json:"context_window"`
}

// Summary reports the state of userID's context.
func (engine *Engine) Summary(userID string) Summary {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	summary := Summary{
		CurrentRole:   engine.activeRole,
		MaxTurns:      engine.settings.MaxTurns(),
		ContextWindow: history.ContextWindowForModel(engine.model),
	}
	userCtx := engine.contexts[userID]
	if userCtx == nil {
		return summary
	}
	messages := userCtx.history.Messages()
	summary.MessageCount = len(messages) - 1
	summary.HasContext = true
	summary.LastMessageTime = userCtx.updatedAt
	summary.CurrentTurns = userCtx.history.Turns()
	summary.EstimatedTokens = engine.estimator.EstimateTokens(messages)
	return summary
}

func (engine *Engine) errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Time: engine.clock.Now(), Err: fmt.Errorf(format, args...)}
}

func (engine *Engine) wrapError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Time: engine.clock.Now(), Err: err}
}
