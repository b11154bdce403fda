// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package source

import (
	"context"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/avast/retry-go/v4"

	"github.com/DataDog/kukur/pkg/errors"
	"github.com/DataDog/kukur/pkg/series"
	"github.com/DataDog/kukur/pkg/table"
	"github.com/DataDog/kukur/pkg/util/log"
)

// auxiliarySource is one auxiliary metadata adapter and the fields it is
// allowed to fill in.
type auxiliarySource struct {
	name   string
	source Source
	fields []string
}

// SourceWrapper is the dispatcher for one configured source. It applies the
// per-source policy to every request: interval splitting, retrying,
// concatenation with value-type reconciliation and metadata merging from
// auxiliary sources.
type SourceWrapper struct {
	name      string
	data      Source
	metadata  Source
	auxiliary []auxiliarySource
	options   Options
}

// NewSourceWrapper combines a data adapter, a metadata adapter and auxiliary
// metadata sources under one policy.
func NewSourceWrapper(name string, data Source, metadata Source, auxiliary []auxiliarySource, options Options) *SourceWrapper {
	return &SourceWrapper{
		name:      name,
		data:      data,
		metadata:  metadata,
		auxiliary: auxiliary,
		options:   options,
	}
}

// Name returns the configured source name.
func (w *SourceWrapper) Name() string {
	return w.name
}

// withRetry runs one adapter call with the configured retry policy: a fixed
// sleep between attempts, QueryRetryCount + 1 attempts in total. Only
// retryable errors (Transient, Timeout, untagged) are retried.
func (w *SourceWrapper) withRetry(ctx context.Context, operation string, withTimeout bool, fn func(context.Context) error) error {
	return retry.Do(
		func() error {
			callCtx := ctx
			if withTimeout && w.options.QueryTimeoutSeconds > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, secondsToDuration(w.options.QueryTimeoutSeconds))
				defer cancel()
			}
			err := fn(callCtx)
			if err != nil && callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
				err = errors.Wrap(errors.Timeout, err)
			}
			return err
		},
		retry.Attempts(uint(w.options.QueryRetryCount)+1),
		retry.Delay(secondsToDuration(w.options.QueryRetryDelay)),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(errors.IsRetryable),
		retry.Context(ctx),
		retry.OnRetry(func(attempt uint, err error) {
			log.Warnf("Source %q: %s attempt %d failed: %v", w.name, operation, attempt+1, err)
		}),
	)
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// Search streams the series of the primary metadata adapter, filling in
// unset metadata fields from the auxiliary sources in configured order:
// once a field is set, a later auxiliary source does not overwrite it.
//
// Retrying wraps only the initiation of the stream; a failure while
// iterating an open stream is not retried.
func (w *SourceWrapper) Search(ctx context.Context, selector series.SeriesSelector) (SearchStream, error) {
	var inner SearchStream
	err := w.withRetry(ctx, "search", false, func(callCtx context.Context) error {
		stream, err := w.metadata.Search(callCtx, selector)
		inner = stream
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(w.auxiliary) == 0 {
		return inner, nil
	}
	return &searchStream{wrapper: w, ctx: ctx, inner: inner}, nil
}

type searchStream struct {
	wrapper *SourceWrapper
	ctx     context.Context
	inner   SearchStream
	current SearchResult
}

func (s *searchStream) Next() bool {
	if !s.inner.Next() {
		return false
	}
	result := s.inner.Current()
	if result.IsMetadata() {
		s.wrapper.fillFromAuxiliary(s.ctx, result.Metadata)
	}
	s.current = result
	return true
}

func (s *searchStream) Current() SearchResult {
	return s.current
}

func (s *searchStream) Err() error {
	return s.inner.Err()
}

func (s *searchStream) Close() {
	s.inner.Close()
}

// fillFromAuxiliary fills unset fields of metadata from the auxiliary
// sources, earlier-listed sources first. Auxiliary failures are logged and
// skipped: a broken auxiliary source must not sink the stream.
func (w *SourceWrapper) fillFromAuxiliary(ctx context.Context, metadata *series.Metadata) {
	for _, auxiliary := range w.auxiliary {
		auxiliaryMetadata, err := w.auxiliaryMetadata(ctx, auxiliary, metadata.Series)
		if err != nil {
			log.Warnf("Source %q: metadata source %q failed for %q: %v", w.name, auxiliary.name, metadata.Series.Name(), err)
			continue
		}
		for _, fieldName := range allowedFields(auxiliaryMetadata, auxiliary.fields) {
			if !metadata.IsSet(fieldName) && auxiliaryMetadata.IsSet(fieldName) {
				metadata.Set(fieldName, auxiliaryMetadata.Get(fieldName)) //nolint:errcheck
			}
		}
	}
}

func (w *SourceWrapper) auxiliaryMetadata(ctx context.Context, auxiliary auxiliarySource, selector series.SeriesSelector) (*series.Metadata, error) {
	var metadata *series.Metadata
	err := w.withRetry(ctx, "metadata source "+auxiliary.name, true, func(callCtx context.Context) error {
		result, err := auxiliary.source.GetMetadata(callCtx, selector)
		metadata = result
		return err
	})
	return metadata, err
}

// allowedFields returns the fields an auxiliary source may provide: its
// whitelist when declared, all fields of the returned metadata otherwise.
func allowedFields(metadata *series.Metadata, whitelist []string) []string {
	if len(whitelist) > 0 {
		return whitelist
	}
	return metadata.FieldNames()
}

// GetMetadata merges metadata for one series. The primary metadata adapter
// takes precedence; among auxiliary sources, earlier-listed wins. A selector
// without a series name returns empty metadata without calling any adapter.
func (w *SourceWrapper) GetMetadata(ctx context.Context, selector series.SeriesSelector) (*series.Metadata, error) {
	metadata := series.NewMetadata(selector)
	if selector.Tags.Name() == "" {
		return metadata, nil
	}
	for i := len(w.auxiliary) - 1; i >= 0; i-- {
		auxiliary := w.auxiliary[i]
		auxiliaryMetadata, err := w.auxiliaryMetadata(ctx, auxiliary, selector)
		if err != nil {
			log.Warnf("Source %q: metadata source %q failed for %q: %v", w.name, auxiliary.name, selector.Name(), err)
			continue
		}
		copySetFields(metadata, auxiliaryMetadata, auxiliary.fields)
	}

	var primary *series.Metadata
	err := w.withRetry(ctx, "get_metadata", true, func(callCtx context.Context) error {
		result, err := w.metadata.GetMetadata(callCtx, selector)
		primary = result
		return err
	})
	if err != nil {
		return nil, err
	}
	copySetFields(metadata, primary, nil)
	return metadata, nil
}

// copySetFields overwrites dst with every set field of src, optionally
// restricted to a whitelist.
func copySetFields(dst *series.Metadata, src *series.Metadata, whitelist []string) {
	for _, fieldName := range allowedFields(src, whitelist) {
		if src.IsSet(fieldName) {
			dst.Set(fieldName, src.Get(fieldName)) //nolint:errcheck
		}
	}
}

// GetData fetches the data of one series in [start, end). When a data query
// interval is configured the request is split in contiguous sub-intervals
// that are fetched in order, each with retry; empty sub-intervals are
// dropped and the rest concatenated with value-type reconciliation.
func (w *SourceWrapper) GetData(ctx context.Context, selector series.SeriesSelector, start time.Time, end time.Time) (arrow.Record, error) {
	if !start.Before(end) || selector.Tags.Name() == "" {
		return table.Empty(), nil
	}

	interval := secondsToDuration(w.options.DataQueryIntervalSeconds)
	var parts []arrow.Record
	releaseParts := func() {
		for _, part := range parts {
			part.Release()
		}
	}

	subStart := start
	for subStart.Before(end) {
		subEnd := end
		if interval > 0 && subStart.Add(interval).Before(end) {
			subEnd = subStart.Add(interval)
		}

		var record arrow.Record
		queryStart, queryEnd := subStart, subEnd
		err := w.withRetry(ctx, "get_data", true, func(callCtx context.Context) error {
			result, err := w.data.GetData(callCtx, selector, queryStart, queryEnd)
			record = result
			return err
		})
		if err != nil {
			releaseParts()
			return nil, err
		}
		if record.NumRows() == 0 {
			record.Release()
		} else {
			parts = append(parts, record)
		}

		subStart = subEnd
	}

	if len(parts) == 0 {
		return table.Empty(), nil
	}
	return table.Concat(parts)
}

// GetPlotData fetches downsampled data in a single adapter call.
func (w *SourceWrapper) GetPlotData(ctx context.Context, selector series.SeriesSelector, start time.Time, end time.Time, intervalCount int) (arrow.Record, error) {
	plotSource, ok := w.data.(PlotSource)
	if !ok {
		return nil, errors.Newf(errors.NotSupported, "source %q does not support plot data", w.name)
	}
	var record arrow.Record
	err := w.withRetry(ctx, "get_plot_data", true, func(callCtx context.Context) error {
		result, err := plotSource.GetPlotData(callCtx, selector, start, end, intervalCount)
		record = result
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetSourceStructure delegates to the data adapter. Sources without
// structure support return nil.
func (w *SourceWrapper) GetSourceStructure(ctx context.Context, selector series.SeriesSelector) (*series.SourceStructure, error) {
	structureSource, ok := w.data.(StructureSource)
	if !ok {
		return nil, nil
	}
	var structure *series.SourceStructure
	err := w.withRetry(ctx, "get_source_structure", true, func(callCtx context.Context) error {
		result, err := structureSource.GetSourceStructure(callCtx, selector)
		structure = result
		return err
	})
	if err != nil {
		return nil, err
	}
	return structure, nil
}
