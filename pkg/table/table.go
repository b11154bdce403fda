// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package table defines the columnar result contract of the gateway: Arrow
// records with a "ts" timestamp column (microseconds, UTC), one "value"
// column and an optional "quality" column (int8, 0 = BAD, 1 = GOOD).
package table

import (
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/DataDog/kukur/pkg/errors"
)

// TimestampType is the type of the "ts" column.
var TimestampType = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}

// Schema returns the result schema for a value type, with or without a
// quality column.
func Schema(valueType arrow.DataType, withQuality bool) *arrow.Schema {
	fields := []arrow.Field{
		{Name: "ts", Type: TimestampType},
		{Name: "value", Type: valueType},
	}
	if withQuality {
		fields = append(fields, arrow.Field{Name: "quality", Type: arrow.PrimitiveTypes.Int8})
	}
	return arrow.NewSchema(fields, nil)
}

// Empty returns an empty two-column table with a float64 value column.
func Empty() arrow.Record {
	schema := Schema(arrow.PrimitiveTypes.Float64, false)
	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()
	return builder.NewRecord()
}

// HasQuality reports whether a record carries a quality column.
func HasQuality(record arrow.Record) bool {
	return record.Schema().HasField("quality")
}

// valueColumn returns the index of the "value" column.
func valueColumn(record arrow.Record) (int, error) {
	indices := record.Schema().FieldIndices("value")
	if len(indices) != 1 {
		return 0, errors.Newf(errors.InvalidData, "expected one value column, got %d", len(indices))
	}
	return indices[0], nil
}

// reconcileValueType surveys the value columns of all records and picks the
// common type: string when any column is string-typed, int64 when all are
// integers, float64 otherwise.
func reconcileValueType(records []arrow.Record) (arrow.DataType, error) {
	allInteger := true
	for _, record := range records {
		idx, err := valueColumn(record)
		if err != nil {
			return nil, err
		}
		switch record.Column(idx).DataType().ID() {
		case arrow.STRING, arrow.LARGE_STRING:
			return arrow.BinaryTypes.String, nil
		case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
			arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		default:
			allInteger = false
		}
	}
	if allInteger {
		return arrow.PrimitiveTypes.Int64, nil
	}
	return arrow.PrimitiveTypes.Float64, nil
}

// Concat concatenates data tables in order, reconciling the value column
// types. All inputs must carry a quality column as soon as one does. Concat
// releases the input records.
func Concat(records []arrow.Record) (arrow.Record, error) {
	if len(records) == 0 {
		return Empty(), nil
	}
	valueType, err := reconcileValueType(records)
	if err != nil {
		return nil, err
	}
	withQuality := false
	for _, record := range records {
		if HasQuality(record) {
			withQuality = true
			break
		}
	}

	schema := Schema(valueType, withQuality)
	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()
	tsBuilder := builder.Field(0).(*array.TimestampBuilder)
	for _, record := range records {
		if withQuality && !HasQuality(record) {
			return nil, errors.New(errors.InvalidData, "quality column missing in part of the response")
		}
		if err := appendTimestamps(tsBuilder, record); err != nil {
			return nil, err
		}
		if err := appendValues(builder.Field(1), record, valueType); err != nil {
			return nil, err
		}
		if withQuality {
			if err := appendQuality(builder.Field(2).(*array.Int8Builder), record); err != nil {
				return nil, err
			}
		}
	}
	for _, record := range records {
		record.Release()
	}
	return builder.NewRecord(), nil
}

func appendTimestamps(builder *array.TimestampBuilder, record arrow.Record) error {
	indices := record.Schema().FieldIndices("ts")
	if len(indices) != 1 {
		return errors.New(errors.InvalidData, "missing ts column")
	}
	column, ok := record.Column(indices[0]).(*array.Timestamp)
	if !ok {
		return errors.Newf(errors.InvalidData, "unexpected ts column type %s", record.Column(indices[0]).DataType())
	}
	for i := 0; i < column.Len(); i++ {
		builder.Append(column.Value(i))
	}
	return nil
}

func appendValues(builder array.Builder, record arrow.Record, valueType arrow.DataType) error {
	idx, err := valueColumn(record)
	if err != nil {
		return err
	}
	column := record.Column(idx)
	switch valueType.ID() {
	case arrow.STRING:
		return appendStringValues(builder.(*array.StringBuilder), column)
	case arrow.INT64:
		return appendIntValues(builder.(*array.Int64Builder), column)
	case arrow.FLOAT64:
		return appendFloatValues(builder.(*array.Float64Builder), column)
	}
	return errors.Newf(errors.InvalidData, "unexpected value column type %s", valueType)
}

func appendStringValues(builder *array.StringBuilder, column arrow.Array) error {
	for i := 0; i < column.Len(); i++ {
		if column.IsNull(i) {
			builder.AppendNull()
			continue
		}
		switch typed := column.(type) {
		case *array.String:
			builder.Append(typed.Value(i))
		case *array.Float64:
			builder.Append(strconv.FormatFloat(typed.Value(i), 'g', -1, 64))
		case *array.Float32:
			builder.Append(strconv.FormatFloat(float64(typed.Value(i)), 'g', -1, 32))
		case *array.Int64:
			builder.Append(strconv.FormatInt(typed.Value(i), 10))
		case *array.Int32:
			builder.Append(strconv.FormatInt(int64(typed.Value(i)), 10))
		default:
			builder.Append(column.ValueStr(i))
		}
	}
	return nil
}

func appendIntValues(builder *array.Int64Builder, column arrow.Array) error {
	for i := 0; i < column.Len(); i++ {
		if column.IsNull(i) {
			builder.AppendNull()
			continue
		}
		switch typed := column.(type) {
		case *array.Int64:
			builder.Append(typed.Value(i))
		case *array.Int32:
			builder.Append(int64(typed.Value(i)))
		case *array.Int16:
			builder.Append(int64(typed.Value(i)))
		case *array.Int8:
			builder.Append(int64(typed.Value(i)))
		case *array.Uint64:
			builder.Append(int64(typed.Value(i)))
		case *array.Uint32:
			builder.Append(int64(typed.Value(i)))
		case *array.Uint16:
			builder.Append(int64(typed.Value(i)))
		case *array.Uint8:
			builder.Append(int64(typed.Value(i)))
		default:
			return errors.Newf(errors.InvalidData, "unexpected integer column type %s", column.DataType())
		}
	}
	return nil
}

func appendFloatValues(builder *array.Float64Builder, column arrow.Array) error {
	for i := 0; i < column.Len(); i++ {
		if column.IsNull(i) {
			builder.AppendNull()
			continue
		}
		switch typed := column.(type) {
		case *array.Float64:
			builder.Append(typed.Value(i))
		case *array.Float32:
			builder.Append(float64(typed.Value(i)))
		case *array.Int64:
			builder.Append(float64(typed.Value(i)))
		case *array.Int32:
			builder.Append(float64(typed.Value(i)))
		case *array.Int16:
			builder.Append(float64(typed.Value(i)))
		case *array.Int8:
			builder.Append(float64(typed.Value(i)))
		case *array.Uint64:
			builder.Append(float64(typed.Value(i)))
		case *array.Uint32:
			builder.Append(float64(typed.Value(i)))
		default:
			return errors.Newf(errors.InvalidData, "unexpected numerical column type %s", column.DataType())
		}
	}
	return nil
}

func appendQuality(builder *array.Int8Builder, record arrow.Record) error {
	indices := record.Schema().FieldIndices("quality")
	column, ok := record.Column(indices[0]).(*array.Int8)
	if !ok {
		return errors.Newf(errors.InvalidData, "unexpected quality column type %s", record.Column(indices[0]).DataType())
	}
	for i := 0; i < column.Len(); i++ {
		builder.Append(column.Value(i))
	}
	return nil
}
