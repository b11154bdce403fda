// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package serve implements 'kukur serve'.
package serve

import (
	"github.com/spf13/cobra"

	"github.com/DataDog/kukur/cmd/kukur/command"
	"github.com/DataDog/kukur/pkg/app"
	"github.com/DataDog/kukur/pkg/config"
	"github.com/DataDog/kukur/pkg/flightapi"
	"github.com/DataDog/kukur/pkg/util/log"
)

// Commands returns a slice of subcommands for the 'kukur' command.
func Commands(globalParams *command.GlobalParams) []*cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Arrow Flight endpoint",
		Long:  `Runs the gateway in the foreground`,
		RunE: func(*cobra.Command, []string) error {
			return run(globalParams)
		},
	}
	return []*cobra.Command{serveCmd}
}

func run(globalParams *command.GlobalParams) error {
	cfg, err := config.Load(globalParams.ConfigFile)
	if err != nil {
		return err
	}
	if err := log.Setup(cfg.Logging.Level, cfg.Logging.Path); err != nil {
		return err
	}
	defer log.Flush()

	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer application.Close() //nolint:errcheck

	return flightapi.NewServer(application, cfg.Flight).Serve()
}
