// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package table

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func timeRange(count int, step time.Duration) []time.Time {
	result := make([]time.Time, count)
	for i := range result {
		result[i] = baseTime.Add(time.Duration(i) * step)
	}
	return result
}

func TestEmpty(t *testing.T) {
	record := Empty()
	defer record.Release()
	assert.Equal(t, int64(0), record.NumRows())
	assert.Equal(t, int64(2), record.NumCols())
	assert.True(t, record.Schema().HasField("ts"))
	assert.True(t, record.Schema().HasField("value"))
	assert.False(t, HasQuality(record))
}

func TestConcatIntegersStayInt64(t *testing.T) {
	first, err := New(timeRange(2, time.Hour), []int64{1, 2}, nil)
	require.NoError(t, err)
	second, err := New(timeRange(2, time.Hour), []int64{3, 4}, nil)
	require.NoError(t, err)

	result, err := Concat([]arrow.Record{first, second})
	require.NoError(t, err)
	defer result.Release()
	assert.Equal(t, int64(4), result.NumRows())
	values := result.Column(1).(*array.Int64)
	assert.Equal(t, []int64{1, 2, 3, 4}, values.Int64Values())
}

func TestConcatIntAndFloatBecomeFloat64(t *testing.T) {
	first, err := New(timeRange(1, time.Hour), []int64{1}, nil)
	require.NoError(t, err)
	second, err := New(timeRange(1, time.Hour), []float64{2.5}, nil)
	require.NoError(t, err)

	result, err := Concat([]arrow.Record{first, second})
	require.NoError(t, err)
	defer result.Release()
	values := result.Column(1).(*array.Float64)
	assert.Equal(t, []float64{1, 2.5}, values.Float64Values())
}

func TestConcatStringAbsorbsEverything(t *testing.T) {
	first, err := New(timeRange(1, time.Hour), []string{"A"}, nil)
	require.NoError(t, err)
	second, err := New(timeRange(1, time.Hour), []float64{2.5}, nil)
	require.NoError(t, err)
	third, err := New(timeRange(1, time.Hour), []int64{3}, nil)
	require.NoError(t, err)

	result, err := Concat([]arrow.Record{first, second, third})
	require.NoError(t, err)
	defer result.Release()
	values := result.Column(1).(*array.String)
	assert.Equal(t, "A", values.Value(0))
	assert.Equal(t, "2.5", values.Value(1))
	assert.Equal(t, "3", values.Value(2))
}

func TestConcatFloatAndStringBecomeString(t *testing.T) {
	first, err := New(timeRange(1, time.Hour), []float64{1.5}, nil)
	require.NoError(t, err)
	second, err := New(timeRange(1, time.Hour), []string{"B"}, nil)
	require.NoError(t, err)

	result, err := Concat([]arrow.Record{first, second})
	require.NoError(t, err)
	defer result.Release()
	assert.Equal(t, arrow.STRING, result.Column(1).DataType().ID())
}

func TestConcatPreservesQuality(t *testing.T) {
	first, err := New(timeRange(2, time.Hour), []float64{1, 2}, []int8{1, 0})
	require.NoError(t, err)
	second, err := New(timeRange(2, time.Hour), []float64{3, 4}, []int8{0, 1})
	require.NoError(t, err)

	result, err := Concat([]arrow.Record{first, second})
	require.NoError(t, err)
	defer result.Release()
	require.True(t, HasQuality(result))
	quality := result.Column(2).(*array.Int8)
	assert.Equal(t, []int8{1, 0, 0, 1}, quality.Int8Values())
}

func TestConcatQualityMismatchFails(t *testing.T) {
	first, err := New(timeRange(1, time.Hour), []float64{1}, []int8{1})
	require.NoError(t, err)
	second, err := New(timeRange(1, time.Hour), []float64{2}, nil)
	require.NoError(t, err)

	_, err = Concat([]arrow.Record{first, second})
	assert.Error(t, err)
}

func TestConcatKeepsRowOrder(t *testing.T) {
	first, err := New(timeRange(3, time.Minute), []float64{1, 2, 3}, nil)
	require.NoError(t, err)

	result, err := Concat([]arrow.Record{first})
	require.NoError(t, err)
	defer result.Release()
	timestamps, err := Timestamps(result)
	require.NoError(t, err)
	assert.Equal(t, timeRange(3, time.Minute), timestamps)
}

func TestTimestampColumnIsMicrosecondUTC(t *testing.T) {
	record, err := New(timeRange(1, time.Hour), []float64{1}, nil)
	require.NoError(t, err)
	defer record.Release()
	tsType := record.Column(0).DataType().(*arrow.TimestampType)
	assert.Equal(t, arrow.Microsecond, tsType.Unit)
	assert.Equal(t, "UTC", tsType.TimeZone)
}
