// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"chat", "chta", 2},
		{"history", "histroy", 2},
		{"roles", "role", 1},
		{"kitten", "sitting", 3},
		{"config", "confg", 1},
		{"version", "verison", 2},
	}

	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "chat"},
		{Name: "ask"},
		{Name: "roles"},
		{Name: "history"},
		{Name: "version"},
	}

	tests := []struct {
		input string
		want  string
	}{
		{"chta", "chat"},
		{"histroy", "history"},
		{"role", "roles"},
		{"verison", "version"},
		{"aks", "ask"},
		{"zzzzzzzzzz", ""}, // far from everything
	}

	for _, test := range tests {
		if got := suggestCommand(test.input, commands); got != test.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestSuggestCommand_EmptyCommands(t *testing.T) {
	if got := suggestCommand("anything", nil); got != "" {
		t.Errorf("suggestCommand with no commands = %q, want empty", got)
	}
}

func TestSuggestFlag(t *testing.T) {
	newFlags := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flagSet.String("role", "", "role override")
		flagSet.String("config", "", "config path")
		flagSet.Bool("plain", false, "disable styling")
		return flagSet
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"typo long flag", []string{"--rloe", "value"}, "--role"},
		{"typo with equals", []string{"--confg=path"}, "--config"},
		{"dropped character", []string{"--plai"}, "--plain"},
		{"defined flag skipped", []string{"--role", "--plian"}, "--plain"},
		{"no match", []string{"--zzzzzzzzzz"}, ""},
		{"no flags in args", []string{"positional"}, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := suggestFlag(test.args, newFlags()); got != test.want {
				t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
			}
		})
	}
}
