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

func TestSelectorName(t *testing.T) {
	tests := []struct {
		name     string
		selector SeriesSelector
		expected string
	}{
		{
			"flat name",
			NewSelector("sql", "test-tag-1"),
			"test-tag-1",
		},
		{
			"name with tags sorted",
			FromTags("sql", Tags{NameTag: "pump", "unit": "A2", "location": "antwerp"}, "value"),
			"pump,location=antwerp,unit=A2",
		},
		{
			"non-default field",
			FromTags("sql", Tags{NameTag: "pump"}, "temperature"),
			"pump::temperature",
		},
		{
			"tags only",
			FromTags("sql", Tags{"location": "antwerp"}, "value"),
			"location=antwerp",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.selector.Name())
		})
	}
}

func TestSelectorFromNameRoundTrip(t *testing.T) {
	names := []string{
		"test-tag-1",
		"pump,location=antwerp,unit=A2",
		"pump::temperature",
		"pump,location=antwerp::temperature",
		"location=antwerp",
	}
	for _, name := range names {
		selector := FromName("sql", name)
		assert.Equal(t, "sql", selector.Source)
		assert.Equal(t, name, selector.Name())
	}
}

func TestSelectorFromNameStripsWhitespace(t *testing.T) {
	selector := FromName("sql", "  test-tag-1 ")
	assert.Equal(t, "test-tag-1", selector.Tags.Name())
	selector = FromName("sql", " test-tag-1\n")
	assert.Equal(t, "test-tag-1", selector.Tags.Name())
}

func TestSelectorJSONNameShorthand(t *testing.T) {
	var selector SeriesSelector
	require.NoError(t, json.Unmarshal([]byte(`{"source": "sql", "name": "test-tag-1"}`), &selector))
	assert.Equal(t, "sql", selector.Source)
	assert.Equal(t, "test-tag-1", selector.Tags.Name())
	assert.Equal(t, DefaultField, selector.Field)
}

func TestSelectorJSONTags(t *testing.T) {
	var selector SeriesSelector
	data := `{"source": "sql", "tags": {"series name": "pump", "location": "antwerp"}, "field": "temperature"}`
	require.NoError(t, json.Unmarshal([]byte(data), &selector))
	assert.Equal(t, Tags{NameTag: "pump", "location": "antwerp"}, selector.Tags)
	assert.Equal(t, "temperature", selector.Field)

	encoded, err := json.Marshal(selector)
	require.NoError(t, err)
	var again SeriesSelector
	require.NoError(t, json.Unmarshal(encoded, &again))
	assert.Equal(t, selector, again)
}
