// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package mapper

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualityMapperValues(t *testing.T) {
	m, err := NewQualityMapper(map[string]interface{}{
		"GOOD": []interface{}{int64(192), "GOOD", []interface{}{int64(200), int64(210)}},
	})
	require.NoError(t, err)
	assert.True(t, m.IsPresent())

	assert.Equal(t, Good, m.FromSource(int64(192)))
	assert.Equal(t, Good, m.FromSource("GOOD"))
	assert.Equal(t, Good, m.FromSource(int64(200)))
	assert.Equal(t, Good, m.FromSource(int64(205)))
	assert.Equal(t, Good, m.FromSource(int64(210)))
	assert.Equal(t, Bad, m.FromSource(int64(211)))
	assert.Equal(t, Bad, m.FromSource(int64(0)))
	assert.Equal(t, Bad, m.FromSource("BAD"))
}

func TestQualityMapperEmpty(t *testing.T) {
	m, err := NewQualityMapper(map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, m.IsPresent())
	assert.Equal(t, Bad, m.FromSource(int64(1)))
}

func TestQualityMapperInvalidConfig(t *testing.T) {
	_, err := NewQualityMapper(map[string]interface{}{"GOOD": "not-a-list"})
	assert.Error(t, err)
	_, err = NewQualityMapper(map[string]interface{}{"GOOD": []interface{}{[]interface{}{int64(1)}}})
	assert.Error(t, err)
}

func TestQualityMapperMapIntArray(t *testing.T) {
	m, err := NewQualityMapper(map[string]interface{}{
		"GOOD": []interface{}{int64(192), []interface{}{int64(200), int64(210)}},
	})
	require.NoError(t, err)

	builder := array.NewInt64Builder(memory.DefaultAllocator)
	defer builder.Release()
	input := []int64{192, 0, 200, 211, 210}
	builder.AppendValues(input, nil)
	column := builder.NewArray()
	defer column.Release()

	mapped, err := m.MapArray(column)
	require.NoError(t, err)
	defer mapped.Release()
	quality := mapped.(*array.Int8)
	// MapArray(X)[i] = 1 iff X[i] is in the GOOD set
	for i, value := range input {
		assert.Equal(t, m.FromSource(value), quality.Value(i))
	}
	assert.Equal(t, []int8{1, 0, 1, 0, 1}, quality.Int8Values())
}

func TestQualityMapperMapStringArray(t *testing.T) {
	m, err := NewQualityMapper(map[string]interface{}{"GOOD": []interface{}{"GOOD", "UNCERTAIN"}})
	require.NoError(t, err)

	builder := array.NewStringBuilder(memory.DefaultAllocator)
	defer builder.Release()
	builder.AppendValues([]string{"GOOD", "BAD", "UNCERTAIN"}, nil)
	column := builder.NewArray()
	defer column.Release()

	mapped, err := m.MapArray(column)
	require.NoError(t, err)
	defer mapped.Release()
	assert.Equal(t, []int8{1, 0, 1}, mapped.(*array.Int8).Int8Values())
}

func TestFieldMapper(t *testing.T) {
	m := NewFieldMapper(map[string]string{"description": "DESCRIPTION", "unit": "ENG_UNITS"})
	assert.True(t, m.IsPresent())
	assert.Equal(t, "DESCRIPTION", m.ToSource("description"))
	assert.Equal(t, "unit", m.FromSource("ENG_UNITS"))
	assert.Equal(t, "accuracy", m.ToSource("accuracy"))
	assert.Equal(t, "accuracy", m.FromSource("accuracy"))
	assert.False(t, NewFieldMapper(nil).IsPresent())
}

func TestValueMapper(t *testing.T) {
	m := NewValueMapper(map[string]map[string]string{
		"interpolation type": {"linear": "LINEAR", "step": "STEPPED"},
	})
	assert.True(t, m.IsPresent())
	assert.Equal(t, "LINEAR", m.FromSource("interpolation type", "linear"))
	assert.Equal(t, "STEPPED", m.FromSource("interpolation type", "step"))
	assert.Equal(t, "unknown", m.FromSource("interpolation type", "unknown"))
	assert.Equal(t, "3", m.FromSource("data type", 3))
}
