// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package test implements 'kukur test', which runs gateway operations against
// the configured sources and prints the results as CSV, without starting the
// Arrow Flight endpoint.
package test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/spf13/cobra"

	"github.com/DataDog/kukur/cmd/kukur/command"
	"github.com/DataDog/kukur/pkg/app"
	"github.com/DataDog/kukur/pkg/config"
	"github.com/DataDog/kukur/pkg/errors"
	"github.com/DataDog/kukur/pkg/series"
	"github.com/DataDog/kukur/pkg/table"
	"github.com/DataDog/kukur/pkg/util/log"
)

type cliParams struct {
	*command.GlobalParams

	source        string
	name          string
	start         string
	end           string
	intervalCount int
}

// Commands returns a slice of subcommands for the 'kukur' command.
func Commands(globalParams *command.GlobalParams) []*cobra.Command {
	cliParams := &cliParams{GlobalParams: globalParams}

	testCmd := &cobra.Command{
		Use:   "test",
		Short: "Test connectivity to the configured sources",
	}
	testCmd.PersistentFlags().StringVar(&cliParams.source, "source", "", "name of the configured source")
	testCmd.PersistentFlags().StringVar(&cliParams.name, "name", "", "name of the series")
	testCmd.PersistentFlags().StringVar(&cliParams.start, "start", "", "start of the time range (RFC 3339)")
	testCmd.PersistentFlags().StringVar(&cliParams.end, "end", "", "end of the time range (RFC 3339)")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "List all series of a source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cliParams, func(application *app.App) error {
				return runSearch(cmd.OutOrStdout(), application, cliParams)
			})
		},
	}

	metadataCmd := &cobra.Command{
		Use:   "metadata",
		Short: "Show the metadata of one series",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cliParams, func(application *app.App) error {
				return runMetadata(cmd.OutOrStdout(), application, cliParams)
			})
		},
	}

	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Fetch the data of one series",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cliParams, func(application *app.App) error {
				return runData(cmd.OutOrStdout(), application, cliParams)
			})
		},
	}

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "Fetch data of one series, downsampled for plotting",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cliParams, func(application *app.App) error {
				return runPlot(cmd.OutOrStdout(), application, cliParams)
			})
		},
	}
	plotCmd.Flags().IntVar(&cliParams.intervalCount, "interval-count", 200, "number of plot intervals")

	structureCmd := &cobra.Command{
		Use:   "structure",
		Short: "Show the tags and fields of a source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cliParams, func(application *app.App) error {
				return runStructure(cmd.OutOrStdout(), application, cliParams)
			})
		},
	}

	testCmd.AddCommand(searchCmd, metadataCmd, dataCmd, plotCmd, structureCmd)
	return []*cobra.Command{testCmd}
}

// withApp builds the application with logging disabled, so only CSV reaches
// stdout.
func withApp(cliParams *cliParams, fn func(*app.App) error) error {
	if cliParams.source == "" {
		return errors.New(errors.InvalidConfiguration, "--source is required")
	}
	cfg, err := config.Load(cliParams.ConfigFile)
	if err != nil {
		return err
	}
	if err := log.Setup("off", "-"); err != nil {
		return err
	}
	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer application.Close() //nolint:errcheck
	return fn(application)
}

func (p *cliParams) selector() series.SeriesSelector {
	return series.FromName(p.source, p.name)
}

func (p *cliParams) timeRange() (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, p.start)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Newf(errors.InvalidConfiguration, "invalid --start: %v", err)
	}
	end, err := time.Parse(time.RFC3339, p.end)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Newf(errors.InvalidConfiguration, "invalid --end: %v", err)
	}
	return start, end, nil
}

func runSearch(out io.Writer, application *app.App, cliParams *cliParams) error {
	stream, err := application.Search(context.Background(), cliParams.selector())
	if err != nil {
		return err
	}
	defer stream.Close()

	writer := csv.NewWriter(out)
	defer writer.Flush()
	for stream.Next() {
		result := stream.Current()
		row := []string{result.Selector.Name()}
		if result.IsMetadata() {
			encoded, err := json.Marshal(result.Metadata)
			if err != nil {
				return err
			}
			row = append(row, string(encoded))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return stream.Err()
}

func runMetadata(out io.Writer, application *app.App, cliParams *cliParams) error {
	metadata, err := application.GetMetadata(context.Background(), cliParams.selector())
	if err != nil {
		return err
	}

	fields := metadata.ToData()
	names := make([]string, 0, len(fields))
	for name := range fields {
		if name != "series" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	writer := csv.NewWriter(out)
	defer writer.Flush()
	for _, name := range names {
		if err := writer.Write([]string{name, fmt.Sprintf("%v", fields[name])}); err != nil {
			return err
		}
	}
	return nil
}

func runData(out io.Writer, application *app.App, cliParams *cliParams) error {
	start, end, err := cliParams.timeRange()
	if err != nil {
		return err
	}
	record, err := application.GetData(context.Background(), cliParams.selector(), start, end)
	if err != nil {
		return err
	}
	defer record.Release()
	return writeRecord(out, record)
}

func runPlot(out io.Writer, application *app.App, cliParams *cliParams) error {
	start, end, err := cliParams.timeRange()
	if err != nil {
		return err
	}
	record, err := application.GetPlotData(context.Background(), cliParams.selector(), start, end, cliParams.intervalCount)
	if err != nil {
		return err
	}
	defer record.Release()
	return writeRecord(out, record)
}

func writeRecord(out io.Writer, record arrow.Record) error {
	timestamps, err := table.Timestamps(record)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(out)
	defer writer.Flush()
	for row := 0; row < int(record.NumRows()); row++ {
		line := []string{timestamps[row].Format(time.RFC3339Nano)}
		for column := 1; column < int(record.NumCols()); column++ {
			line = append(line, record.Column(column).ValueStr(row))
		}
		if err := writer.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func runStructure(out io.Writer, application *app.App, cliParams *cliParams) error {
	structure, err := application.GetSourceStructure(context.Background(), cliParams.selector())
	if err != nil {
		return err
	}
	if structure == nil {
		return errors.Newf(errors.NotSupported, "source %q does not describe its structure", cliParams.source)
	}

	writer := csv.NewWriter(out)
	defer writer.Flush()
	for _, key := range structure.TagKeys {
		if err := writer.Write([]string{"tag key", key}); err != nil {
			return err
		}
	}
	for _, value := range structure.TagValues {
		if err := writer.Write([]string{"tag value", value.Key, value.Value}); err != nil {
			return err
		}
	}
	for _, field := range structure.Fields {
		if err := writer.Write([]string{"field", field}); err != nil {
			return err
		}
	}
	return nil
}
