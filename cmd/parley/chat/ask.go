// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/parley-foundation/parley/cmd/parley/cli"
	"github.com/parley-foundation/parley/lib/markdown"
)

// AskCommand returns the "ask" subcommand: one question, one reply,
// rendered as markdown when stdout is a terminal.
func AskCommand() *cli.Command {
	var configPath, user, role string
	var plain bool

	return &cli.Command{
		Name:    "ask",
		Summary: "Ask a single question",
		Description: `Send one message and print the reply.

The turn goes through the same per-user context as an interactive
session: earlier turns (from previous ask invocations or chat
sessions) shape the reply, the context is truncated to the configured
limit, and the completed turn is saved. Use --user to keep separate
threads.

The reply is rendered as markdown when stdout is a terminal; piped
output and --plain print unstyled text.`,
		Usage: "parley ask [flags] <message>",
		Examples: []cli.Example{
			{
				Description: "Ask a one-off question",
				Command:     "parley ask \"what is a goroutine?\"",
			},
			{
				Description: "Ask in the code role",
				Command:     "parley ask --role code \"explain io.Reader\"",
			},
			{
				Description: "Pipe the reply without styling",
				Command:     "parley ask --plain \"summarize this\" > reply.txt",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ask", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "config file path (default: $PARLEY_CONFIG, then "+cli.DefaultConfigPath+")")
			flagSet.StringVar(&user, "user", cli.DefaultUser, "conversation identity")
			flagSet.StringVar(&role, "role", "", "role override for this question")
			flagSet.BoolVar(&plain, "plain", false, "print the reply without styling")
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return fmt.Errorf("message argument required\n\nUsage: parley ask [flags] <message>")
			}
			message := strings.Join(args, " ")

			cfg, err := cli.LoadConfig(configPath, logger)
			if err != nil {
				return err
			}
			engine, err := cli.BuildEngine(cfg, logger)
			if err != nil {
				return err
			}

			reply, err := engine.Chat(ctx, user, message, role)
			if reply != nil {
				// A reply with an error means the backend call
				// succeeded but saving failed; show the text either way.
				fmt.Println(renderReply(reply.Text, plain))
			}
			return err
		},
	}
}

// renderReply renders markdown for terminal output and falls back to
// unstyled text for pipes and --plain.
func renderReply(text string, plain bool) string {
	stdoutFd := int(os.Stdout.Fd())
	if plain || !term.IsTerminal(stdoutFd) {
		return markdown.NewPlain().Render(text, 80)
	}
	width, _, err := term.GetSize(stdoutFd)
	if err != nil || width <= 0 {
		width = 80
	}
	return markdown.New(markdown.DefaultTheme).Render(text, width)
}
