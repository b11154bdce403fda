// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package series defines the identity model for time series: selectors that
// name a series inside a configured source, the typed metadata attached to a
// series and the structural description of a source.
package series

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// NameTag is the conventional primary identifier tag for sources with a flat
// series name space.
const NameTag = "series name"

// DefaultField selects the default measured field of a series.
const DefaultField = "value"

// Tags maps tag names to tag values.
type Tags map[string]string

// Name returns the value of the primary name tag, or "" when absent.
func (t Tags) Name() string {
	return t[NameTag]
}

// Copy returns an independent copy of the tags.
func (t Tags) Copy() Tags {
	copied := make(Tags, len(t))
	for k, v := range t {
		copied[k] = v
	}
	return copied
}

// SeriesSelector identifies one series, or a family of series when only some
// tags are populated.
type SeriesSelector struct {
	Source string
	Tags   Tags
	Field  string
}

// NewSelector returns a selector for a series identified by its name tag.
func NewSelector(source string, name string) SeriesSelector {
	return SeriesSelector{
		Source: source,
		Tags:   Tags{NameTag: name},
		Field:  DefaultField,
	}
}

// FromTags returns a selector for a series identified by tags and a field.
func FromTags(source string, tags Tags, field string) SeriesSelector {
	if field == "" {
		field = DefaultField
	}
	return SeriesSelector{
		Source: source,
		Tags:   tags.Copy(),
		Field:  field,
	}
}

// FromName parses the canonical string form of a series name into a selector.
// The inverse of Name.
func FromName(source string, name string) SeriesSelector {
	name = strings.TrimSpace(name)
	field := DefaultField
	if idx := strings.LastIndex(name, "::"); idx != -1 {
		field = name[idx+2:]
		name = name[:idx]
	}
	tags := Tags{}
	for _, part := range strings.Split(name, ",") {
		if k, v, found := strings.Cut(part, "="); found {
			tags[k] = v
		} else {
			tags[NameTag] = part
		}
	}
	return SeriesSelector{Source: source, Tags: tags, Field: field}
}

// Name returns the canonical string form: the name tag first as a bare value,
// other tags as "tag=value" sorted by tag name, "::field" appended when the
// field is not the default one.
func (s SeriesSelector) Name() string {
	parts := []string{}
	if name, ok := s.Tags[NameTag]; ok {
		parts = append(parts, name)
	}
	keys := make([]string, 0, len(s.Tags))
	for k := range s.Tags {
		if k != NameTag {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, s.Tags[k]))
	}
	name := strings.Join(parts, ",")
	if s.Field != "" && s.Field != DefaultField {
		name = name + "::" + s.Field
	}
	return name
}

type selectorJSON struct {
	Source string `json:"source"`
	Name   string `json:"name,omitempty"`
	Tags   Tags   `json:"tags,omitempty"`
	Field  string `json:"field,omitempty"`
}

// MarshalJSON serializes the selector with explicit tags.
func (s SeriesSelector) MarshalJSON() ([]byte, error) {
	return json.Marshal(selectorJSON{
		Source: s.Source,
		Tags:   s.Tags,
		Field:  s.Field,
	})
}

// UnmarshalJSON accepts both the explicit tags form and the "name" shorthand
// for the primary name tag.
func (s *SeriesSelector) UnmarshalJSON(data []byte) error {
	var raw selectorJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tags := Tags{}
	for k, v := range raw.Tags {
		tags[k] = v
	}
	if raw.Name != "" {
		tags[NameTag] = raw.Name
	}
	field := raw.Field
	if field == "" {
		field = DefaultField
	}
	*s = SeriesSelector{Source: raw.Source, Tags: tags, Field: field}
	return nil
}
