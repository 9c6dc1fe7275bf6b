// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides the full-screen chat interface command. It is
// an alternate front-end over the same assistant seam the
// line-oriented session in cmd/parley/chat uses: the engine, context
// handling, and persistence are identical, only the terminal surface
// differs.
package tui

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/parley-foundation/parley/cmd/parley/cli"
	"github.com/parley-foundation/parley/lib/chatui"
)

// Command returns the "tui" subcommand that launches the full-screen
// chat interface.
func Command() *cli.Command {
	var configPath, user, role string

	return &cli.Command{
		Name:    "tui",
		Summary: "Full-screen chat interface",
		Description: `Launch the full-screen terminal chat interface.

The transcript pane renders completed replies as markdown and follows
the reply as it streams in. The status bar tracks context usage:
turns used against the limit, estimated tokens against the model's
context window, and the truncation mode.

Inside the interface: enter sends the prompt, ctrl+r opens a
fuzzy-searchable role picker, ctrl+l clears the conversation context,
esc cancels a streaming reply, and ctrl+c quits. The transcript
scrolls with the mouse wheel, arrow keys, or ctrl+u/ctrl+d.`,
		Usage: "parley tui [flags]",
		Examples: []cli.Example{
			{
				Description: "Open the chat interface",
				Command:     "parley tui",
			},
			{
				Description: "Open in the code role with a separate identity",
				Command:     "parley tui --role code --user alice",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("tui", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "config file path (default: $PARLEY_CONFIG, then "+cli.DefaultConfigPath+")")
			flagSet.StringVar(&user, "user", cli.DefaultUser, "conversation identity")
			flagSet.StringVar(&role, "role", "", "start with this role active")
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			cfg, err := cli.LoadConfig(configPath, logger)
			if err != nil {
				return err
			}
			engine, err := cli.BuildEngine(cfg, logger)
			if err != nil {
				return err
			}
			if role != "" {
				if err := engine.SetRole(role); err != nil {
					return err
				}
			}

			model := chatui.New(engine, chatui.Options{
				UserID:    user,
				ModelName: cfg.OpenAI.Model,
				Context:   ctx,
			})
			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
			_, err = program.Run()
			return err
		},
	}
}
