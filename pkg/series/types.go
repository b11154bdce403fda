// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package series

import (
	"fmt"

	"github.com/DataDog/kukur/pkg/errors"
)

// InterpolationType tells how to interpolate between two points of a series.
type InterpolationType string

const (
	// InterpolationLinear interpolates linearly between points.
	InterpolationLinear InterpolationType = "LINEAR"
	// InterpolationStepped holds the previous value until the next point.
	InterpolationStepped InterpolationType = "STEPPED"
)

// DataType is the type of the values in a series.
type DataType string

const (
	// Float32 series hold 32 bit floating point values.
	Float32 DataType = "FLOAT32"
	// Float64 series hold 64 bit floating point values.
	Float64 DataType = "FLOAT64"
	// String series hold string values.
	String DataType = "STRING"
	// Dictionary64 series hold numerical values mapped to labels.
	Dictionary64 DataType = "DICTIONARY"
	// Categorical series hold values out of a fixed set of labels.
	Categorical DataType = "CATEGORICAL"
)

// ProcessType describes the industrial process a series belongs to.
type ProcessType string

const (
	// Continuous processes run without interruption.
	Continuous ProcessType = "CONTINUOUS"
	// Regime processes switch between operating regimes.
	Regime ProcessType = "REGIME"
	// Batch processes run in batches.
	Batch ProcessType = "BATCH"
)

// DictionaryEntry maps one numerical value to its label.
type DictionaryEntry struct {
	Key   int64
	Value string
}

// Dictionary maps numerical values in a series to labels, preserving the
// order in which entries were defined.
type Dictionary struct {
	entries []DictionaryEntry
	byKey   map[int64]string
}

// NewDictionary builds a Dictionary. Keys are unique and labels non-empty.
func NewDictionary(entries []DictionaryEntry) (*Dictionary, error) {
	d := &Dictionary{
		byKey: make(map[int64]string, len(entries)),
	}
	for _, entry := range entries {
		if entry.Value == "" {
			return nil, errors.Newf(errors.InvalidMetadata, "empty label for dictionary key %d", entry.Key)
		}
		if _, ok := d.byKey[entry.Key]; ok {
			return nil, errors.Newf(errors.InvalidMetadata, "duplicate dictionary key %d", entry.Key)
		}
		d.entries = append(d.entries, entry)
		d.byKey[entry.Key] = entry.Value
	}
	return d, nil
}

// Lookup returns the label for a key.
func (d *Dictionary) Lookup(key int64) (string, bool) {
	label, ok := d.byKey[key]
	return label, ok
}

// Entries returns the entries in definition order.
func (d *Dictionary) Entries() []DictionaryEntry {
	return d.entries
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

func (d *Dictionary) String() string {
	return fmt.Sprintf("Dictionary(%d entries)", len(d.entries))
}
