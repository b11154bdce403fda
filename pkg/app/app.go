// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package app wires the configured sources and the API key store behind one
// facade. The RPC layer and the CLI only talk to this package.
package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/DataDog/kukur/pkg/apikey"
	"github.com/DataDog/kukur/pkg/config"
	"github.com/DataDog/kukur/pkg/series"
	"github.com/DataDog/kukur/pkg/source"
	"github.com/DataDog/kukur/pkg/util/log"
)

// App routes requests to the dispatcher of the source they name.
type App struct {
	registry *source.Registry
	keys     *apikey.Store
}

// New builds the source registry and opens the API key store under the
// configured data directory. Sources that fail to configure are logged and
// excluded; they do not prevent startup.
func New(cfg *config.Config) (*App, error) {
	registry, err := source.NewRegistry(cfg)
	if err != nil {
		log.Warnf("Some sources are not available: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}
	keys, err := apikey.Open(filepath.Join(cfg.DataDir, "api_key.sqlite"))
	if err != nil {
		return nil, err
	}
	return &App{registry: registry, keys: keys}, nil
}

// Close releases the API key store.
func (a *App) Close() error {
	return a.keys.Close()
}

// Search streams all series of a source matching the selector.
func (a *App) Search(ctx context.Context, selector series.SeriesSelector) (source.SearchStream, error) {
	wrapper, err := a.registry.Get(selector.Source)
	if err != nil {
		return nil, err
	}
	return wrapper.Search(ctx, selector)
}

// GetMetadata returns the merged metadata of one series.
func (a *App) GetMetadata(ctx context.Context, selector series.SeriesSelector) (*series.Metadata, error) {
	wrapper, err := a.registry.Get(selector.Source)
	if err != nil {
		return nil, err
	}
	return wrapper.GetMetadata(ctx, selector)
}

// GetData returns the data of one series in [start, end).
func (a *App) GetData(ctx context.Context, selector series.SeriesSelector, start time.Time, end time.Time) (arrow.Record, error) {
	wrapper, err := a.registry.Get(selector.Source)
	if err != nil {
		return nil, err
	}
	return wrapper.GetData(ctx, selector, start, end)
}

// GetPlotData returns data downsampled for visualization.
func (a *App) GetPlotData(ctx context.Context, selector series.SeriesSelector, start time.Time, end time.Time, intervalCount int) (arrow.Record, error) {
	wrapper, err := a.registry.Get(selector.Source)
	if err != nil {
		return nil, err
	}
	return wrapper.GetPlotData(ctx, selector, start, end, intervalCount)
}

// GetSourceStructure describes the tags and fields of a source, or returns
// nil when the source cannot enumerate them.
func (a *App) GetSourceStructure(ctx context.Context, selector series.SeriesSelector) (*series.SourceStructure, error) {
	wrapper, err := a.registry.Get(selector.Source)
	if err != nil {
		return nil, err
	}
	return wrapper.GetSourceStructure(ctx, selector)
}

// ListSources lists all configured source names in deterministic order.
func (a *App) ListSources() []string {
	return a.registry.Names()
}

// ApiKeys returns the API key management handle.
func (a *App) ApiKeys() *apikey.Store {
	return a.keys
}
