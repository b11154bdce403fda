// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package series

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataDefaults(t *testing.T) {
	m := NewMetadata(NewSelector("sql", "test-tag-1"))
	assert.Equal(t, "", m.Get("description"))
	assert.Equal(t, "", m.Get("unit"))
	assert.Nil(t, m.Get("lower limit"))
	assert.Nil(t, m.Get("upper limit"))
	assert.Nil(t, m.Get("accuracy"))
	assert.Nil(t, m.Get("interpolation type"))
	assert.Nil(t, m.Get("data type"))
	assert.Nil(t, m.Get("dictionary name"))
	assert.Nil(t, m.Get("dictionary"))
	assert.Nil(t, m.Get("process type"))
	assert.False(t, m.IsSet("description"))
}

func TestMetadataSetAndGetBySerializedName(t *testing.T) {
	m := NewMetadata(NewSelector("sql", "test-tag-1"))
	require.NoError(t, m.Set("limitLow", 1.5))
	assert.Equal(t, 1.5, m.Get("lower limit"))
	assert.Equal(t, 1.5, m.Get("limitLow"))
	assert.True(t, m.IsSet("lower limit"))
}

func TestMetadataStringCoercion(t *testing.T) {
	m := NewMetadata(NewSelector("sql", "test-tag-1"))
	require.NoError(t, m.Set("lower limit", "1.5"))
	assert.Equal(t, 1.5, m.Get("lower limit"))

	require.NoError(t, m.Set("interpolation type", "LINEAR"))
	assert.Equal(t, InterpolationLinear, m.Get("interpolation type"))

	require.NoError(t, m.Set("data type", "FLOAT64"))
	assert.Equal(t, Float64, m.Get("data type"))

	assert.Error(t, m.Set("lower limit", "not a number"))
	assert.Error(t, m.Set("interpolation type", "CUBIC"))
	assert.Error(t, m.Set("process type", "STOCHASTIC"))
}

func TestMetadataEmptyStringIsUnset(t *testing.T) {
	m := NewMetadata(NewSelector("sql", "test-tag-1"))
	require.NoError(t, m.Set("description", ""))
	assert.False(t, m.IsSet("description"))
	require.NoError(t, m.Set("description", "pump speed"))
	assert.True(t, m.IsSet("description"))
}

func TestMetadataUnknownFieldPassthrough(t *testing.T) {
	m := NewMetadata(NewSelector("sql", "test-tag-1"))
	require.NoError(t, m.Set("plant", "BA2"))
	assert.Equal(t, "BA2", m.Get("plant"))
	assert.Equal(t, []string{"plant"}, m.ExtraFields())

	data := m.ToData()
	assert.Equal(t, "BA2", data["plant"])

	again, err := FromData(m.Series, data)
	require.NoError(t, err)
	assert.Equal(t, "BA2", again.Get("plant"))
}

func TestMetadataToDataFromDataRoundTrip(t *testing.T) {
	selector := NewSelector("sql", "test-tag-1")
	m := NewMetadata(selector)
	require.NoError(t, m.Set("description", "test series"))
	require.NoError(t, m.Set("unit", "kg"))
	require.NoError(t, m.Set("lower limit", 0.0))
	require.NoError(t, m.Set("upper limit", 100.0))
	require.NoError(t, m.Set("accuracy", 0.1))
	require.NoError(t, m.Set("interpolation type", InterpolationStepped))
	require.NoError(t, m.Set("data type", Dictionary64))
	require.NoError(t, m.Set("dictionary name", "states"))
	dictionary, err := NewDictionary([]DictionaryEntry{{0, "OFF"}, {1, "ON"}})
	require.NoError(t, err)
	require.NoError(t, m.Set("dictionary", dictionary))
	require.NoError(t, m.Set("process type", Batch))

	data := m.ToData()
	assert.Equal(t, "test series", data["description"])
	assert.Equal(t, "kg", data["unit"])

	again, err := FromData(selector, data)
	require.NoError(t, err)
	for _, field := range Fields() {
		if field.Name == "dictionary" {
			continue
		}
		assert.Equal(t, m.Get(field.Name), again.Get(field.Name), field.Name)
	}
	parsed := again.Get("dictionary").(*Dictionary)
	assert.Equal(t, dictionary.Entries(), parsed.Entries())
}

func TestMetadataJSONRoundTrip(t *testing.T) {
	m := NewMetadata(NewSelector("sql", "test-tag-1"))
	require.NoError(t, m.Set("description", "test series"))
	require.NoError(t, m.Set("unit", "kg"))
	require.NoError(t, m.Set("plant", "BA2"))

	encoded, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"series":{"source":"sql"`)
	assert.Contains(t, string(encoded), `"description":"test series"`)

	var again Metadata
	require.NoError(t, json.Unmarshal(encoded, &again))
	assert.Equal(t, "sql", again.Series.Source)
	assert.Equal(t, "test-tag-1", again.Series.Tags.Name())
	assert.Equal(t, "test series", again.Get("description"))
	assert.Equal(t, "kg", again.Get("unit"))
	assert.Equal(t, "BA2", again.Get("plant"))
}

func TestDictionaryInvariants(t *testing.T) {
	_, err := NewDictionary([]DictionaryEntry{{0, "OFF"}, {0, "ON"}})
	assert.Error(t, err)
	_, err = NewDictionary([]DictionaryEntry{{0, ""}})
	assert.Error(t, err)

	d, err := NewDictionary([]DictionaryEntry{{1, "ON"}, {0, "OFF"}})
	require.NoError(t, err)
	assert.Equal(t, []DictionaryEntry{{1, "ON"}, {0, "OFF"}}, d.Entries())
	label, ok := d.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, "ON", label)
}
