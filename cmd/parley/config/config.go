// Copyright 2026 The Parley Authors
// SPDX-License-Identifier: Apache-2.0

// Package config implements the "parley config" subcommands for
// bootstrapping and inspecting the configuration file.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/parley-foundation/parley/cmd/parley/cli"
	"github.com/parley-foundation/parley/lib/config"
)

// Command returns the "config" subcommand tree.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Summary: "Manage the configuration file",
		Subcommands: []*cli.Command{
			initCommand(),
			showCommand(),
		},
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:    "init",
		Summary: "Write a default configuration file",
		Description: `Write the default configuration to a new file.

Without a path argument, the file goes where a bare "parley" would
look for it: $PARLEY_CONFIG if set, otherwise ` + cli.DefaultConfigPath + `.
An existing file is never overwritten.

The default api_key is the placeholder ${OPENAI_API_KEY}, expanded
from the environment at load time, so the key never has to live in
the file.`,
		Usage: "parley config init [path]",
		Examples: []cli.Example{
			{
				Description: "Create the default config in the standard location",
				Command:     "parley config init",
			},
			{
				Description: "Create a config for a separate deployment",
				Command:     "parley config init /etc/parley/config.json",
			},
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 1 {
				return fmt.Errorf("unexpected argument: %s", args[1])
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				path, _ = cli.ResolveConfigPath("")
			}

			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Printf("Wrote default configuration to %s\n", path)
			return nil
		},
	}
}

func showCommand() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:    "show",
		Summary: "Print the effective configuration",
		Description: `Load the configuration and print the effective values as JSON.

Output reflects what a session would actually use: defaults applied
for missing fields, environment variables expanded, and relative
storage paths resolved. The API key is redacted.`,
		Usage: "parley config show [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("show", pflag.ContinueOnError)
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
			rendered, err := renderConfig(cfg)
			if err != nil {
				return err
			}
			fmt.Println(rendered)
			return nil
		},
	}
}

// renderConfig marshals the effective configuration with the API key
// redacted.
func renderConfig(cfg *config.Config) (string, error) {
	display := *cfg
	if display.OpenAI.APIKey != "" {
		display.OpenAI.APIKey = "(redacted)"
	}
	data, err := json.MarshalIndent(display, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encoding configuration: %w", err)
	}
	return string(data), nil
}
