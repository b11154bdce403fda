// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package mapper

import "fmt"

// FieldMapper translates metadata field names between the canonical names and
// the names a backend uses. Unmapped names pass through unchanged.
type FieldMapper struct {
	toSource   map[string]string
	fromSource map[string]string
}

// NewFieldMapper builds a mapper from a "metadata_mapping" configuration
// section: canonical field name to backend name.
func NewFieldMapper(mapping map[string]string) *FieldMapper {
	m := &FieldMapper{
		toSource:   make(map[string]string, len(mapping)),
		fromSource: make(map[string]string, len(mapping)),
	}
	for canonical, source := range mapping {
		m.toSource[canonical] = source
		m.fromSource[source] = canonical
	}
	return m
}

// ToSource returns the backend name for a canonical field name.
func (m *FieldMapper) ToSource(name string) string {
	if mapped, ok := m.toSource[name]; ok {
		return mapped
	}
	return name
}

// FromSource returns the canonical name for a backend field name.
func (m *FieldMapper) FromSource(name string) string {
	if mapped, ok := m.fromSource[name]; ok {
		return mapped
	}
	return name
}

// IsPresent reports whether any mapping is configured.
func (m *FieldMapper) IsPresent() bool {
	return len(m.toSource) > 0
}

// ValueMapper translates metadata field values a backend returns to their
// canonical values. Unmapped values coerce to their string form.
type ValueMapper struct {
	mapping map[string]map[string]string
}

// NewValueMapper builds a mapper from a "metadata_value_mapping"
// configuration section: field name to a backend value to canonical value
// table.
func NewValueMapper(mapping map[string]map[string]string) *ValueMapper {
	return &ValueMapper{mapping: mapping}
}

// FromSource maps a backend value of a metadata field.
func (m *ValueMapper) FromSource(field string, value interface{}) string {
	raw := fmt.Sprintf("%v", value)
	if fieldMapping, ok := m.mapping[field]; ok {
		if mapped, ok := fieldMapping[raw]; ok {
			return mapped
		}
	}
	return raw
}

// IsPresent reports whether any mapping is configured.
func (m *ValueMapper) IsPresent() bool {
	return len(m.mapping) > 0
}
