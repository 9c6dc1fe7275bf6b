// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "parley",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "roles",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					called = "roles"
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"roles"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "roles" {
		t.Errorf("dispatched to %q, want %q", called, "roles")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "parley",
		Subcommands: []*Command{
			{
				Name: "config",
				Subcommands: []*Command{
					{
						Name: "init",
						Run: func(_ context.Context, args []string, _ *slog.Logger) error {
							called = "config init"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"config", "init", "extra-arg"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "config init" {
		t.Errorf("dispatched to %q, want %q", called, "config init")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "extra-arg" {
		t.Errorf("args = %v, want [extra-arg]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var role string
	var message string

	command := &Command{
		Name: "ask",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ask", pflag.ContinueOnError)
			flagSet.StringVar(&role, "role", "", "role override")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				message = args[0]
			}
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"--role", "creative", "hello"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if role != "creative" {
		t.Errorf("role = %q, want %q", role, "creative")
	}
	if message != "hello" {
		t.Errorf("message = %q, want %q", message, "hello")
	}
}

func TestCommand_Execute_RootRunHandlesBareInvocation(t *testing.T) {
	// The root carries both subcommands and a Run function; bare and
	// flags-only invocations go to Run, anything wordlike dispatches.
	var ran bool

	root := &Command{
		Name: "parley",
		Subcommands: []*Command{
			{Name: "ask", Run: func(_ context.Context, _ []string, _ *slog.Logger) error { return nil }},
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			ran = true
			return nil
		},
	}

	if err := root.Execute(context.Background(), nil); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !ran {
		t.Error("expected root Run to handle bare invocation")
	}
}

func TestCommand_Execute_RootRunDoesNotSwallowTypos(t *testing.T) {
	root := &Command{
		Name: "parley",
		Subcommands: []*Command{
			{Name: "chat", Run: func(_ context.Context, _ []string, _ *slog.Logger) error { return nil }},
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			t.Error("root Run should not fire for an unknown subcommand word")
			return nil
		},
	}

	err := root.Execute(context.Background(), []string{"chta"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"chat\"") {
		t.Errorf("error = %q, want suggestion for 'chat'", err.Error())
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "ask",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ask", pflag.ContinueOnError)
			flagSet.Bool("plain", false, "disable styling")
			flagSet.String("role", "", "role override")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--rloe"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --role") {
		t.Errorf("error = %q, want suggestion for '--role'", errStr)
	}
	if !strings.Contains(errStr, "rloe") {
		t.Errorf("error = %q, should mention the bad flag", errStr)
	}
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "ask",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ask", pflag.ContinueOnError)
			flagSet.Bool("plain", false, "disable styling")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--zzzzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "parley",
		Subcommands: []*Command{
			{Name: "history"},
			{Name: "roles"},
			{Name: "version"},
		},
	}

	err := root.Execute(context.Background(), []string{"histroy"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"history\"") {
		t.Errorf("error = %q, want suggestion for 'history'", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandNoSuggestion(t *testing.T) {
	root := &Command{
		Name: "parley",
		Subcommands: []*Command{
			{Name: "history"},
			{Name: "roles"},
		},
	}

	err := root.Execute(context.Background(), []string{"zzzzzzz"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not contain suggestion for distant input", err.Error())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			root := &Command{
				Name:    "parley",
				Summary: "Conversational assistant",
				Subcommands: []*Command{
					{Name: "roles", Summary: "List roles"},
				},
			}

			if err := root.Execute(context.Background(), []string{helpArg}); err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
		})
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name: "parley",
		Subcommands: []*Command{
			{Name: "roles", Summary: "List roles"},
		},
	}

	err := root.Execute(context.Background(), []string{})
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "parley",
		Description: "Conversational assistant with per-user context.",
		Subcommands: []*Command{
			{Name: "chat", Summary: "Interactive chat session"},
			{Name: "ask", Summary: "Single-shot question"},
			{Name: "version", Summary: "Print version information"},
		},
		Examples: []Example{
			{
				Description: "Start an interactive session",
				Command:     "parley chat",
			},
			{
				Description: "Ask a one-off question in the code role",
				Command:     "parley ask --role code \"explain io.Reader\"",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Conversational assistant with per-user context.",
		"Usage:",
		"parley <command> [flags]",
		"Commands:",
		"chat",
		"Interactive chat session",
		"ask",
		"Single-shot question",
		"Examples:",
		"parley chat",
		"parley ask --role code",
		"Run 'parley <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_WithFlags(t *testing.T) {
	command := &Command{
		Name:    "ask",
		Summary: "Single-shot question",
		Usage:   "parley ask [flags] <message>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ask", pflag.ContinueOnError)
			flagSet.String("role", "", "role override for this question")
			flagSet.Bool("plain", false, "disable ANSI styling")
			return flagSet
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"parley ask [flags] <message>",
		"Flags:",
		"role",
		"plain",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "parley"}
	configCmd := &Command{Name: "config", parent: root}
	initCmd := &Command{Name: "init", parent: configCmd}

	if got := root.fullName(); got != "parley" {
		t.Errorf("root.fullName() = %q, want %q", got, "parley")
	}
	if got := configCmd.fullName(); got != "parley config" {
		t.Errorf("config.fullName() = %q, want %q", got, "parley config")
	}
	if got := initCmd.fullName(); got != "parley config init" {
		t.Errorf("init.fullName() = %q, want %q", got, "parley config init")
	}
}
