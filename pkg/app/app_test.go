// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package app

import (
	"context"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/kukur/pkg/config"
	"github.com/DataDog/kukur/pkg/errors"
	"github.com/DataDog/kukur/pkg/series"
	"github.com/DataDog/kukur/pkg/source"
	"github.com/DataDog/kukur/pkg/table"
)

// memorySource serves a fixed answer for every request.
type memorySource struct{}

func (s *memorySource) Search(_ context.Context, selector series.SeriesSelector) (source.SearchStream, error) {
	return source.NewSliceStream([]source.SearchResult{
		source.SelectorResult(series.NewSelector(selector.Source, "test-tag-1")),
		source.SelectorResult(series.NewSelector(selector.Source, "test-tag-2")),
	}), nil
}

func (s *memorySource) GetMetadata(_ context.Context, selector series.SeriesSelector) (*series.Metadata, error) {
	metadata := series.NewMetadata(selector)
	if err := metadata.Set("description", "in memory"); err != nil {
		return nil, err
	}
	return metadata, nil
}

func (s *memorySource) GetData(_ context.Context, _ series.SeriesSelector, start time.Time, _ time.Time) (arrow.Record, error) {
	return table.New([]time.Time{start}, []float64{42.0}, nil)
}

func init() {
	source.RegisterFactory("memory", func(string, map[string]interface{}, source.Dependencies) (source.Source, error) {
		return &memorySource{}, nil
	})
}

func newApp(t *testing.T) *App {
	t.Helper()
	cfg := config.New()
	cfg.DataDir = t.TempDir()
	cfg.Sources = map[string]map[string]interface{}{
		"sql":  {"type": "memory"},
		"noaa": {"type": "memory"},
	}
	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })
	return application
}

func TestListSources(t *testing.T) {
	application := newApp(t)
	assert.Equal(t, []string{"noaa", "sql"}, application.ListSources())
}

func TestUnknownSource(t *testing.T) {
	application := newApp(t)

	_, err := application.GetMetadata(context.Background(), series.NewSelector("nope", "test-tag-1"))
	require.Error(t, err)
	assert.Equal(t, errors.UnknownSource, errors.KindOf(err))
}

func TestSearchDelegates(t *testing.T) {
	application := newApp(t)

	stream, err := application.Search(context.Background(), series.NewSelector("sql", ""))
	require.NoError(t, err)
	defer stream.Close()

	var names []string
	for stream.Next() {
		names = append(names, stream.Current().Selector.Name())
	}
	require.NoError(t, stream.Err())
	assert.Equal(t, []string{"test-tag-1", "test-tag-2"}, names)
}

func TestGetMetadataDelegates(t *testing.T) {
	application := newApp(t)

	metadata, err := application.GetMetadata(context.Background(), series.NewSelector("sql", "test-tag-1"))
	require.NoError(t, err)
	assert.Equal(t, "in memory", metadata.Get("description"))
}

func TestGetDataDelegates(t *testing.T) {
	application := newApp(t)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	record, err := application.GetData(context.Background(), series.NewSelector("sql", "test-tag-1"), start, start.Add(time.Hour))
	require.NoError(t, err)
	defer record.Release()
	assert.Equal(t, int64(1), record.NumRows())
}

func TestGetPlotDataUnsupported(t *testing.T) {
	application := newApp(t)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := application.GetPlotData(context.Background(), series.NewSelector("sql", "test-tag-1"), start, start.Add(time.Hour), 100)
	require.Error(t, err)
	assert.Equal(t, errors.NotSupported, errors.KindOf(err))
}

func TestGetSourceStructureUnsupported(t *testing.T) {
	application := newApp(t)

	structure, err := application.GetSourceStructure(context.Background(), series.NewSelector("sql", ""))
	require.NoError(t, err)
	assert.Nil(t, structure)
}

func TestApiKeysStoreIsUsable(t *testing.T) {
	application := newApp(t)

	key, err := application.ApiKeys().Create("grafana")
	require.NoError(t, err)
	valid, err := application.ApiKeys().Validate("grafana", key)
	require.NoError(t, err)
	assert.True(t, valid)
}
