// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package series

import (
	"bytes"
	"encoding/json"

	"github.com/DataDog/kukur/pkg/errors"
)

// Metadata holds the registered field values of one series. Every registered
// field is always present: reading a field that was never set returns its
// default. Fields received from a backend that are not registered are kept
// verbatim and pass through serialization.
type Metadata struct {
	// Series is the selector this metadata belongs to.
	Series SeriesSelector

	values     map[string]interface{}
	extra      map[string]interface{}
	extraOrder []string
}

// NewMetadata returns empty metadata for a series.
func NewMetadata(selector SeriesSelector) *Metadata {
	return &Metadata{
		Series: selector,
		values: map[string]interface{}{},
		extra:  map[string]interface{}{},
	}
}

// Get returns the value of a field by canonical or serialized name. Unset
// registered fields return their default; unknown fields return the stored
// wire value or nil.
func (m *Metadata) Get(name string) interface{} {
	if field, ok := LookupField(name); ok {
		if field.Calculate != nil {
			return field.Calculate(m)
		}
		if value, ok := m.values[field.Name]; ok {
			return value
		}
		return field.Default
	}
	return m.extra[name]
}

// IsSet reports whether a registered field holds a non-default, non-empty
// value. Empty strings and nil count as unset.
func (m *Metadata) IsSet(name string) bool {
	field, ok := LookupField(name)
	if !ok {
		_, present := m.extra[name]
		return present
	}
	value, present := m.values[field.Name]
	if !present {
		return false
	}
	return !IsUnsetValue(value)
}

// IsUnsetValue reports whether a field value counts as "unset" for metadata
// merging: nil and the empty string do.
func IsUnsetValue(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok && s == "" {
		return true
	}
	return false
}

// Set stores a field value, coercing it through the field's deserializer.
// Values for names that are not registered are retained verbatim.
func (m *Metadata) Set(name string, value interface{}) error {
	field, ok := LookupField(name)
	if !ok {
		if _, present := m.extra[name]; !present {
			m.extraOrder = append(m.extraOrder, name)
		}
		m.extra[name] = value
		return nil
	}
	typed, err := field.Deserialize(value)
	if err != nil {
		return err
	}
	m.values[field.Name] = typed
	return nil
}

// ExtraFields returns the unknown field names in the order they were first
// seen.
func (m *Metadata) ExtraFields() []string {
	return m.extraOrder
}

// FieldNames returns all field names of this metadata: the registered fields
// in registration order followed by unknown fields.
func (m *Metadata) FieldNames() []string {
	names := make([]string, 0, len(registeredFields)+len(m.extraOrder))
	for _, field := range registeredFields {
		names = append(names, field.Name)
	}
	names = append(names, m.extraOrder...)
	return names
}

// ToData serializes the metadata fields to their wire form, keyed by
// serialized name. The selector is not included.
func (m *Metadata) ToData() map[string]interface{} {
	data := make(map[string]interface{}, len(registeredFields)+len(m.extra))
	for _, field := range registeredFields {
		data[field.SerializedName] = field.Serialize(m.Get(field.Name))
	}
	for _, name := range m.extraOrder {
		data[name] = m.extra[name]
	}
	return data
}

// FromData builds metadata from wire data. Registered fields deserialize by
// their serialized (or canonical) name; unknown entries are retained.
func FromData(selector SeriesSelector, data map[string]interface{}) (*Metadata, error) {
	m := NewMetadata(selector)
	for name, value := range data {
		if name == "series" {
			continue
		}
		if err := m.Set(name, value); err != nil {
			return nil, errors.Newf(errors.InvalidMetadata, "field %q: %v", name, err)
		}
	}
	return m, nil
}

// MarshalJSON writes the selector under "series" followed by all fields in
// registration order.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"series":`)
	selector, err := json.Marshal(m.Series)
	if err != nil {
		return nil, err
	}
	buf.Write(selector)
	data := m.ToData()
	for _, field := range registeredFields {
		buf.WriteByte(',')
		if err := writeJSONEntry(&buf, field.SerializedName, data[field.SerializedName]); err != nil {
			return nil, err
		}
	}
	for _, name := range m.extraOrder {
		buf.WriteByte(',')
		if err := writeJSONEntry(&buf, name, m.extra[name]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONEntry(buf *bytes.Buffer, name string, value interface{}) error {
	key, err := json.Marshal(name)
	if err != nil {
		return err
	}
	buf.Write(key)
	buf.WriteByte(':')
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(encoded)
	return nil
}

// UnmarshalJSON reads metadata serialized by MarshalJSON.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var selector SeriesSelector
	if rawSeries, ok := raw["series"]; ok {
		encoded, err := json.Marshal(rawSeries)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(encoded, &selector); err != nil {
			return err
		}
	}
	parsed, err := FromData(selector, raw)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}
