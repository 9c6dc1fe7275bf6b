// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package history

import "github.com/parley-foundation/parley/lib/llm"

// defaultCharactersPerToken is the initial ratio before calibration.
// 4.0 is conservative for English text — BPE tokenizers typically
// average 3.5-4.5 characters per token. Conservative means we
// overestimate token counts, so a context-usage display reads
// slightly high rather than hiding an approaching limit.
const defaultCharactersPerToken = 4.0

// defaultSmoothingFactor controls how quickly the ratio adapts to
// new observations. 0.3 means 30% weight on the new observation,
// 70% on the running average.
const defaultSmoothingFactor = 0.3

// CharEstimator estimates token counts from character counts using an
// adaptive ratio that calibrates over time from actual backend usage.
//
// The initial ratio of 4.0 characters per token is replaced entirely
// by the first real observation — a single data point from the actual
// tokenizer is far more informative than any default. Subsequent
// observations blend via exponential moving average to smooth out
// variation between turns with different content profiles.
//
// Estimates are informational only (context-usage display in the
// interactive UI); truncation decisions are made by turn count, never
// by token estimate.
//
// CharEstimator is not safe for concurrent use; the chat engine calls
// it under its own lock.
type CharEstimator struct {
	charactersPerToken float64
	smoothingFactor    float64
	observationCount   int
}

// NewCharEstimator creates a CharEstimator with the default initial
// ratio of 4.0 characters per token and a smoothing factor of 0.3.
func NewCharEstimator() *CharEstimator {
	return &CharEstimator{
		charactersPerToken: defaultCharactersPerToken,
		smoothingFactor:    defaultSmoothingFactor,
	}
}

// EstimateTokens returns the estimated token count for the given
// messages based on the current character-to-token ratio. Always
// rounds up.
func (estimator *CharEstimator) EstimateTokens(messages []llm.Message) int {
	characters := messagesCharCount(messages)
	tokens := float64(characters) / estimator.charactersPerToken
	return int(tokens) + 1
}

// RecordUsage updates the estimator's calibration using the actual
// input token count from a backend response. The messages parameter
// is the exact slice that was sent; calls with non-positive token
// counts or empty messages are ignored.
func (estimator *CharEstimator) RecordUsage(messages []llm.Message, actualInputTokens int64) {
	if actualInputTokens <= 0 {
		return
	}
	characters := messagesCharCount(messages)
	if characters == 0 {
		return
	}

	observedRatio := float64(characters) / float64(actualInputTokens)

	estimator.observationCount++
	if estimator.observationCount == 1 {
		estimator.charactersPerToken = observedRatio
		return
	}

	estimator.charactersPerToken = estimator.smoothingFactor*observedRatio +
		(1.0-estimator.smoothingFactor)*estimator.charactersPerToken
}

// messageCharCount returns the content length of a message plus a
// fixed overhead for the role marker and JSON framing (~20 chars for
// {"role":"user","content":"..."}).
func messageCharCount(message llm.Message) int {
	return len(message.Content) + 20
}

// messagesCharCount returns the total character count across all
// messages in a slice.
func messagesCharCount(messages []llm.Message) int {
	total := 0
	for i := range messages {
		total += messageCharCount(messages[i])
	}
	return total
}
