// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/parley-foundation/parley/cmd/parley/cli"
)

// Command returns the "chat" subcommand: an interactive terminal
// session against the configured backend.
func Command() *cli.Command {
	var configPath, user, role string
	var noStream, plain bool

	return &cli.Command{
		Name:    "chat",
		Summary: "Interactive chat session",
		Description: `Start an interactive chat session.

Each line you type is sent to the assistant and the reply streams back
as it is generated. The conversation context is kept per user and
truncated to the configured turn limit; a snapshot is saved after each
completed reply.

A small command vocabulary is available inside the session (type
'help' to list it): switching roles, clearing the context, inspecting
context status, and adjusting the truncation settings without leaving
the chat.

With --no-stream each reply arrives whole and is rendered as markdown;
--plain drops the styling.

Running "parley" with no subcommand starts the same session with
default settings.`,
		Usage: "parley chat [flags]",
		Examples: []cli.Example{
			{
				Description: "Start a session with the default role",
				Command:     "parley chat",
			},
			{
				Description: "Start in the code role with a separate identity",
				Command:     "parley chat --role code --user alice",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("chat", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "config file path (default: $PARLEY_CONFIG, then "+cli.DefaultConfigPath+")")
			flagSet.StringVar(&user, "user", cli.DefaultUser, "conversation identity")
			flagSet.StringVar(&role, "role", "", "start with this role active")
			flagSet.BoolVar(&noStream, "no-stream", false, "wait for whole replies instead of streaming")
			flagSet.BoolVar(&plain, "plain", false, "with --no-stream, print replies without styling")
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return Interactive(ctx, configPath, user, role, noStream, plain, logger)
		},
	}
}

// Interactive loads configuration, assembles the engine, and runs the
// terminal chat loop until the user leaves or ctx is canceled. The
// bare "parley" invocation lands here too.
func Interactive(ctx context.Context, configPath, userID, role string, noStream, plain bool, logger *slog.Logger) error {
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

	session := newREPL(engine, userID, os.Stdin, os.Stdout)
	if noStream {
		session.noStream = true
		session.render = func(text string) string { return renderReply(text, plain) }
	}

	fmt.Printf("Parley interactive chat. Model: %s\n", cfg.OpenAI.Model)
	return session.Run(ctx)
}
