// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package command holds the top-level cobra command and the flags shared by
// every subcommand.
package command

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// GlobalParams contains the values of gateway-global Cobra flags.
//
// A pointer to this type is passed to SubcommandFactory's, but its contents
// are not valid until Cobra calls the subcommand's Run or RunE function.
type GlobalParams struct {
	// ConfigFile holds the path to the TOML configuration file.
	ConfigFile string

	// NoColor is a flag to disable color output
	NoColor bool
}

// SubcommandFactory returns a sub-command factory
type SubcommandFactory func(globalParams *GlobalParams) []*cobra.Command

// MakeCommand makes the top-level Cobra command for this command. Running the
// command without a subcommand runs defaultSubcommand.
func MakeCommand(subcommandFactories []SubcommandFactory, defaultSubcommand string) *cobra.Command {
	var globalParams GlobalParams

	kukurCmd := &cobra.Command{
		Use:   "kukur [command]",
		Short: "Kukur time series gateway.",
		Long: `
Kukur serves time series data and metadata from many sources over one
Arrow Flight interface.`,
		SilenceUsage: true,
	}

	kukurCmd.PersistentFlags().StringVarP(&globalParams.ConfigFile, "config-file", "c", "Kukur.toml", "path to the configuration file")
	kukurCmd.PersistentFlags().BoolVarP(&globalParams.NoColor, "no-color", "n", false, "disable color output")

	kukurCmd.PersistentPreRun = func(*cobra.Command, []string) {
		if globalParams.NoColor {
			color.NoColor = true
		}
	}
	for _, factory := range subcommandFactories {
		for _, subcmd := range factory(&globalParams) {
			kukurCmd.AddCommand(subcmd)
		}
	}

	kukurCmd.RunE = func(cmd *cobra.Command, args []string) error {
		fallback, _, err := cmd.Find([]string{defaultSubcommand})
		if err != nil {
			return err
		}
		return fallback.RunE(fallback, args)
	}

	return kukurCmd
}
