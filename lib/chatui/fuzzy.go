// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chatui

import (
	"slices"
	"strings"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FuzzyResult holds the outcome of a fuzzy match: a relevance score
// (higher is better, zero means no match) and the rune positions of
// the matched characters within the text.
type FuzzyResult struct {
	Score     int
	Positions []int
}

// FuzzyMatch runs fzf's FuzzyMatchV2 algorithm against a single text.
// Matching is case-insensitive: both the text and the pattern are
// lowercased before scoring, so a lowercase query matches mixed-case
// and all-caps candidates. An empty pattern or a failed match returns
// the zero FuzzyResult.
//
// The slab is fzf's scratch allocation arena. Callers matching many
// candidates in a loop should allocate one with [util.MakeSlab] and
// reuse it; nil is accepted and allocates per call.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{}
	}

	lowered := make([]rune, len(pattern))
	for index, character := range pattern {
		lowered[index] = unicode.ToLower(character)
	}

	chars := util.ToChars([]byte(strings.ToLower(text)))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Score <= 0 {
		return FuzzyResult{}
	}

	var matched []int
	if positions != nil {
		matched = *positions
		// FuzzyMatchV2 reports positions in backtracking order.
		slices.Sort(matched)
	}
	return FuzzyResult{Score: result.Score, Positions: matched}
}
