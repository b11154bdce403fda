// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package main is the entry point of the kukur command.
package main

import (
	"os"

	"github.com/DataDog/kukur/cmd/kukur/command"
	"github.com/DataDog/kukur/cmd/kukur/subcommands"
	"github.com/DataDog/kukur/pkg/util/log"
)

func main() {
	err := command.MakeCommand(subcommands.KukurSubcommands(), "serve").Execute()
	log.Flush()
	if err != nil {
		os.Exit(1)
	}
}
