// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/parley-foundation/parley/cmd/parley/cli"
	"github.com/parley-foundation/parley/lib/prompt"
)

// RolesCommand returns the "roles" subcommand listing the roles
// available in the prompt library.
func RolesCommand() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:    "roles",
		Summary: "List available roles",
		Description: `List the roles in the prompt library.

Each role maps to a system prompt that seeds the conversation. The
library lives in the prompts file named by the configuration; edit it
to add roles or change prompts, and running sessions pick up the
change on their next turn.`,
		Usage: "parley roles [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("roles", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "config file path (default: $PARLEY_CONFIG, then "+cli.DefaultConfigPath+")")
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
			if err := cfg.EnsureStoragePaths(); err != nil {
				return err
			}
			store := prompt.NewStore(cfg.Storage.PromptsPath)
			if err := store.Bootstrap(); err != nil {
				return err
			}

			for _, name := range store.Names() {
				if name == prompt.DefaultRole {
					fmt.Printf("%s (default)\n", name)
				} else {
					fmt.Println(name)
				}
			}
			return nil
		},
	}
}
