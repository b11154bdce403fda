// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package source defines the adapter contract every backend satisfies, the
// registry that instantiates adapters from configuration and the dispatcher
// that applies per-source policy to every request.
package source

import (
	"context"
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/DataDog/kukur/pkg/series"
)

// Source is the interface every backend adapter implements.
//
// Adapters signal failures with kind-tagged errors (pkg/errors) and never
// retry internally; retrying is the dispatcher's responsibility.
type Source interface {
	// Search returns a lazy, single-pass stream of series known to the
	// source. Results are bare selectors, metadata, or a mix of both. The
	// adapter may use populated tags in the selector to narrow the
	// search, or ignore them.
	Search(ctx context.Context, selector series.SeriesSelector) (SearchStream, error)
	// GetMetadata returns the metadata of exactly one series.
	GetMetadata(ctx context.Context, selector series.SeriesSelector) (*series.Metadata, error)
	// GetData returns the data of a series in [start, end) as a table
	// with a "ts" and a "value" column and an optional "quality" column.
	GetData(ctx context.Context, selector series.SeriesSelector, start time.Time, end time.Time) (arrow.Record, error)
}

// PlotSource is implemented by adapters that can downsample for
// visualization.
type PlotSource interface {
	GetPlotData(ctx context.Context, selector series.SeriesSelector, start time.Time, end time.Time, intervalCount int) (arrow.Record, error)
}

// StructureSource is implemented by adapters that can enumerate their tag
// keys, tag values and fields.
type StructureSource interface {
	GetSourceStructure(ctx context.Context, selector series.SeriesSelector) (*series.SourceStructure, error)
}

// SearchResult is one item of a search stream: either a bare selector or
// full metadata.
type SearchResult struct {
	Selector series.SeriesSelector
	Metadata *series.Metadata
}

// SelectorResult wraps a bare selector.
func SelectorResult(selector series.SeriesSelector) SearchResult {
	return SearchResult{Selector: selector}
}

// MetadataResult wraps metadata.
func MetadataResult(metadata *series.Metadata) SearchResult {
	return SearchResult{Selector: metadata.Series, Metadata: metadata}
}

// IsMetadata reports whether the result carries metadata.
func (r SearchResult) IsMetadata() bool {
	return r.Metadata != nil
}

// SearchStream is a lazy, single-pass sequence of search results. Consumers
// iterate with Next/Current until Next returns false, then check Err; Close
// drops the stream early.
type SearchStream interface {
	Next() bool
	Current() SearchResult
	Err() error
	Close()
}
