// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete Parley CLI command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	chatcmd "github.com/parley-foundation/parley/cmd/parley/chat"
	"github.com/parley-foundation/parley/cmd/parley/cli"
	configcmd "github.com/parley-foundation/parley/cmd/parley/config"
	tuicmd "github.com/parley-foundation/parley/cmd/parley/tui"
	"github.com/parley-foundation/parley/lib/version"
)

// Root builds and returns the complete Parley CLI command tree. A bare
// invocation (no subcommand) starts an interactive chat session, so
// "parley" alone does the obvious thing.
func Root() *cli.Command {
	var configPath, user, role string

	return &cli.Command{
		Name: "parley",
		Description: `Parley: conversational assistant for OpenAI-compatible backends.

Chat interactively or ask single questions against any endpoint that
speaks the OpenAI chat-completion API (a local Ollama, vLLM, or the
hosted services), with per-user conversation context, switchable
roles, and automatic context truncation.

Run with no subcommand to start an interactive session.`,
		Usage: "parley [flags] [command]",
		Subcommands: []*cli.Command{
			chatcmd.Command(),
			chatcmd.AskCommand(),
			tuicmd.Command(),
			chatcmd.RolesCommand(),
			chatcmd.HistoryCommand(),
			configcmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("parley %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Start an interactive chat session",
				Command:     "parley",
			},
			{
				Description: "Ask a one-off question in the code role",
				Command:     "parley ask --role code \"explain io.Reader\"",
			},
			{
				Description: "Open the full-screen interface",
				Command:     "parley tui",
			},
			{
				Description: "Create a config file to edit",
				Command:     "parley config init",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("parley", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "config file path (default: $PARLEY_CONFIG, then "+cli.DefaultConfigPath+")")
			flagSet.StringVar(&user, "user", cli.DefaultUser, "conversation identity")
			flagSet.StringVar(&role, "role", "", "start with this role active")
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return chatcmd.Interactive(ctx, configPath, user, role, false, false, logger)
		},
	}
}
