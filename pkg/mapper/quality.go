// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package mapper normalizes backend-specific vocabularies: quality codes to
// the two-value GOOD/BAD domain and metadata field names and values to their
// canonical forms.
package mapper

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/DataDog/kukur/pkg/errors"
)

// Good and Bad are the two values of the normalized quality domain.
const (
	Bad  int8 = 0
	Good int8 = 1
)

// QualityMapper maps backend quality codes to GOOD/BAD. A value is GOOD when
// it is part of the configured GOOD set; every other value is BAD.
type QualityMapper struct {
	goodInts    map[int64]struct{}
	goodStrings map[string]struct{}
	goodRanges  [][2]int64
}

// NewQualityMapper builds a mapper from a "quality_mapping" configuration
// section of the form {"GOOD": [v1, v2, [lo, hi], ...]}. Values are integers,
// strings or inclusive integer ranges.
func NewQualityMapper(config map[string]interface{}) (*QualityMapper, error) {
	m := &QualityMapper{
		goodInts:    map[int64]struct{}{},
		goodStrings: map[string]struct{}{},
	}
	raw, ok := config["GOOD"]
	if !ok {
		return m, nil
	}
	values, ok := raw.([]interface{})
	if !ok {
		return nil, errors.Newf(errors.InvalidConfiguration, "GOOD quality values should be a list, got %T", raw)
	}
	for _, value := range values {
		switch typed := value.(type) {
		case string:
			m.goodStrings[typed] = struct{}{}
		case int:
			m.goodInts[int64(typed)] = struct{}{}
		case int64:
			m.goodInts[typed] = struct{}{}
		case float64:
			m.goodInts[int64(typed)] = struct{}{}
		case []interface{}:
			if len(typed) != 2 {
				return nil, errors.Newf(errors.InvalidConfiguration, "quality range needs two bounds, got %d", len(typed))
			}
			lo, err := rangeBound(typed[0])
			if err != nil {
				return nil, err
			}
			hi, err := rangeBound(typed[1])
			if err != nil {
				return nil, err
			}
			m.goodRanges = append(m.goodRanges, [2]int64{lo, hi})
		default:
			return nil, errors.Newf(errors.InvalidConfiguration, "invalid quality value: %v", value)
		}
	}
	return m, nil
}

func rangeBound(v interface{}) (int64, error) {
	switch typed := v.(type) {
	case int:
		return int64(typed), nil
	case int64:
		return typed, nil
	case float64:
		return int64(typed), nil
	}
	return 0, errors.Newf(errors.InvalidConfiguration, "invalid quality range bound: %v", v)
}

// IsPresent reports whether any GOOD values are configured.
func (m *QualityMapper) IsPresent() bool {
	return len(m.goodInts) > 0 || len(m.goodStrings) > 0 || len(m.goodRanges) > 0
}

func (m *QualityMapper) isGoodInt(value int64) bool {
	if _, ok := m.goodInts[value]; ok {
		return true
	}
	for _, bounds := range m.goodRanges {
		if value >= bounds[0] && value <= bounds[1] {
			return true
		}
	}
	return false
}

func (m *QualityMapper) isGoodString(value string) bool {
	_, ok := m.goodStrings[value]
	return ok
}

// FromSource maps one backend quality value.
func (m *QualityMapper) FromSource(value interface{}) int8 {
	good := false
	switch typed := value.(type) {
	case string:
		good = m.isGoodString(typed)
	case int:
		good = m.isGoodInt(int64(typed))
	case int8:
		good = m.isGoodInt(int64(typed))
	case int16:
		good = m.isGoodInt(int64(typed))
	case int32:
		good = m.isGoodInt(int64(typed))
	case int64:
		good = m.isGoodInt(typed)
	case uint8:
		good = m.isGoodInt(int64(typed))
	case uint16:
		good = m.isGoodInt(int64(typed))
	case uint32:
		good = m.isGoodInt(int64(typed))
	case float64:
		good = m.isGoodInt(int64(typed))
	}
	if good {
		return Good
	}
	return Bad
}

// MapArray maps a whole column of backend quality values to an int8 column.
func (m *QualityMapper) MapArray(column arrow.Array) (arrow.Array, error) {
	builder := array.NewInt8Builder(memory.DefaultAllocator)
	defer builder.Release()
	builder.Reserve(column.Len())
	appendValue := func(value int64) {
		if m.isGoodInt(value) {
			builder.Append(Good)
		} else {
			builder.Append(Bad)
		}
	}
	switch typed := column.(type) {
	case *array.Int8:
		for i := 0; i < typed.Len(); i++ {
			appendValue(int64(typed.Value(i)))
		}
	case *array.Int16:
		for i := 0; i < typed.Len(); i++ {
			appendValue(int64(typed.Value(i)))
		}
	case *array.Int32:
		for i := 0; i < typed.Len(); i++ {
			appendValue(int64(typed.Value(i)))
		}
	case *array.Int64:
		for i := 0; i < typed.Len(); i++ {
			appendValue(typed.Value(i))
		}
	case *array.Uint8:
		for i := 0; i < typed.Len(); i++ {
			appendValue(int64(typed.Value(i)))
		}
	case *array.Uint16:
		for i := 0; i < typed.Len(); i++ {
			appendValue(int64(typed.Value(i)))
		}
	case *array.Uint32:
		for i := 0; i < typed.Len(); i++ {
			appendValue(int64(typed.Value(i)))
		}
	case *array.String:
		for i := 0; i < typed.Len(); i++ {
			if m.isGoodString(typed.Value(i)) {
				builder.Append(Good)
			} else {
				builder.Append(Bad)
			}
		}
	default:
		return nil, errors.Newf(errors.InvalidData, "cannot map quality column of type %s", column.DataType())
	}
	return builder.NewArray(), nil
}

func (m *QualityMapper) String() string {
	return fmt.Sprintf("QualityMapper(%d values, %d ranges)", len(m.goodInts)+len(m.goodStrings), len(m.goodRanges))
}
