// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package apikey implements 'kukur api-key'.
package apikey

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/DataDog/kukur/cmd/kukur/command"
	"github.com/DataDog/kukur/pkg/apikey"
	"github.com/DataDog/kukur/pkg/config"
)

// Commands returns a slice of subcommands for the 'kukur' command.
func Commands(globalParams *command.GlobalParams) []*cobra.Command {
	apiKeyCmd := &cobra.Command{
		Use:   "api-key",
		Short: "Manage the API keys of the Arrow Flight endpoint",
	}

	var name string

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an API key and print it. This is the only time the key is visible.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(globalParams, func(store *apikey.Store) error {
				key, err := store.Create(name)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "name of the API key")
	createCmd.MarkFlagRequired("name") //nolint:errcheck

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the name and creation date of every API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(globalParams, func(store *apikey.Store) error {
				return list(cmd.OutOrStdout(), store)
			})
		},
	}

	revokeCmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke an API key",
		RunE: func(*cobra.Command, []string) error {
			return withStore(globalParams, func(store *apikey.Store) error {
				return store.Revoke(name)
			})
		},
	}
	revokeCmd.Flags().StringVar(&name, "name", "", "name of the API key")
	revokeCmd.MarkFlagRequired("name") //nolint:errcheck

	apiKeyCmd.AddCommand(createCmd, listCmd, revokeCmd)
	return []*cobra.Command{apiKeyCmd}
}

func withStore(globalParams *command.GlobalParams, fn func(*apikey.Store) error) error {
	cfg, err := config.Load(globalParams.ConfigFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}
	store, err := apikey.Open(filepath.Join(cfg.DataDir, "api_key.sqlite"))
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck
	return fn(store)
}

func list(out io.Writer, store *apikey.Store) error {
	keys, err := store.List()
	if err != nil {
		return err
	}
	writer := csv.NewWriter(out)
	defer writer.Flush()
	for _, key := range keys {
		if err := writer.Write([]string{key.Name, key.CreationDate.Format(time.RFC3339)}); err != nil {
			return err
		}
	}
	return nil
}
