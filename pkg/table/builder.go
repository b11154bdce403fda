// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package table

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/DataDog/kukur/pkg/errors"
)

// New builds a data table from rows. values is one of []float64, []int64 or
// []string; quality may be nil to omit the quality column.
func New(timestamps []time.Time, values interface{}, quality []int8) (arrow.Record, error) {
	var valueType arrow.DataType
	length := 0
	switch typed := values.(type) {
	case []float64:
		valueType = arrow.PrimitiveTypes.Float64
		length = len(typed)
	case []int64:
		valueType = arrow.PrimitiveTypes.Int64
		length = len(typed)
	case []string:
		valueType = arrow.BinaryTypes.String
		length = len(typed)
	default:
		return nil, errors.Newf(errors.InvalidData, "unsupported value slice type %T", values)
	}
	if len(timestamps) != length {
		return nil, errors.Newf(errors.InvalidData, "%d timestamps for %d values", len(timestamps), length)
	}
	if quality != nil && len(quality) != length {
		return nil, errors.Newf(errors.InvalidData, "%d quality flags for %d values", len(quality), length)
	}

	builder := array.NewRecordBuilder(memory.DefaultAllocator, Schema(valueType, quality != nil))
	defer builder.Release()
	tsBuilder := builder.Field(0).(*array.TimestampBuilder)
	for _, ts := range timestamps {
		tsBuilder.Append(arrow.Timestamp(ts.UTC().UnixMicro()))
	}
	switch typed := values.(type) {
	case []float64:
		builder.Field(1).(*array.Float64Builder).AppendValues(typed, nil)
	case []int64:
		builder.Field(1).(*array.Int64Builder).AppendValues(typed, nil)
	case []string:
		builder.Field(1).(*array.StringBuilder).AppendValues(typed, nil)
	}
	if quality != nil {
		builder.Field(2).(*array.Int8Builder).AppendValues(quality, nil)
	}
	return builder.NewRecord(), nil
}

// Timestamps extracts the "ts" column as time values.
func Timestamps(record arrow.Record) ([]time.Time, error) {
	indices := record.Schema().FieldIndices("ts")
	if len(indices) != 1 {
		return nil, errors.New(errors.InvalidData, "missing ts column")
	}
	column, ok := record.Column(indices[0]).(*array.Timestamp)
	if !ok {
		return nil, errors.Newf(errors.InvalidData, "unexpected ts column type %s", record.Column(indices[0]).DataType())
	}
	result := make([]time.Time, 0, column.Len())
	for i := 0; i < column.Len(); i++ {
		result = append(result, time.UnixMicro(int64(column.Value(i))).UTC())
	}
	return result, nil
}
