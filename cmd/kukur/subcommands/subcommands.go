// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package subcommands holds the subcommands of the kukur command
package subcommands

import (
	"github.com/DataDog/kukur/cmd/kukur/command"
	"github.com/DataDog/kukur/cmd/kukur/subcommands/apikey"
	"github.com/DataDog/kukur/cmd/kukur/subcommands/serve"
	"github.com/DataDog/kukur/cmd/kukur/subcommands/test"
	"github.com/DataDog/kukur/cmd/kukur/subcommands/version"
)

// KukurSubcommands returns all subcommands of the kukur command
func KukurSubcommands() []command.SubcommandFactory {
	return []command.SubcommandFactory{
		serve.Commands,
		test.Commands,
		apikey.Commands,
		version.Commands,
	}
}
