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
	"github.com/parley-foundation/parley/lib/clock"
	"github.com/parley-foundation/parley/lib/convlog"
)

// HistoryCommand returns the "history" subcommand printing saved
// conversation snapshots for one user.
func HistoryCommand() *cli.Command {
	var configPath, user string
	var last int

	return &cli.Command{
		Name:    "history",
		Summary: "Show saved conversations",
		Description: `Print the saved conversation snapshots for a user, oldest first.

A snapshot is saved after every completed turn and holds the full
context at that moment, so the latest snapshot is the current state of
the conversation. System prompts are omitted from the output.`,
		Usage: "parley history [flags]",
		Examples: []cli.Example{
			{
				Description: "Show all saved conversations",
				Command:     "parley history",
			},
			{
				Description: "Show the last snapshot for a specific user",
				Command:     "parley history --user alice --last 1",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("history", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "config file path (default: $PARLEY_CONFIG, then "+cli.DefaultConfigPath+")")
			flagSet.StringVar(&user, "user", cli.DefaultUser, "conversation identity")
			flagSet.IntVar(&last, "last", 0, "show only the most recent N snapshots (0 = all)")
			return flagSet
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			cfg, err := cli.LoadConfig(configPath, logger)
			if err != nil {
				return err
			}

			snapshots := convlog.NewStore(cfg.Storage.ConversationsPath, clock.Real()).History(user)
			if last > 0 && len(snapshots) > last {
				snapshots = snapshots[len(snapshots)-last:]
			}
			writeSnapshots(os.Stdout, snapshots)
			return nil
		},
	}
}
