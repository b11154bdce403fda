// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package version implements 'kukur version'.
package version

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/DataDog/kukur/cmd/kukur/command"
	"github.com/DataDog/kukur/pkg/version"
)

// Commands returns a slice of subcommands for the 'kukur' command.
func Commands(_ *command.GlobalParams) []*cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version info",
		Long:  ``,
		Run: func(*cobra.Command, []string) {
			commit := ""
			if version.Commit != "" {
				commit = fmt.Sprintf("- Commit: %s ", color.GreenString(version.Commit))
			}
			fmt.Fprintf(
				color.Output,
				"Kukur %s %s- Go version: %s\n",
				color.CyanString(version.Version),
				commit,
				color.RedString(runtime.Version()),
			)
		},
	}
	return []*cobra.Command{versionCmd}
}
