// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package series

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/DataDog/kukur/pkg/errors"
)

// Field describes one registered metadata field.
type Field struct {
	// Name is the canonical, human readable name.
	Name string
	// SerializedName is the lowerCamelCase wire name.
	SerializedName string
	// Default is the value of the field when it was never set.
	Default interface{}
	// Serialize converts a typed value to its wire form.
	Serialize func(interface{}) interface{}
	// Deserialize converts a wire value to the typed value, coercing
	// strings where the field type allows it.
	Deserialize func(interface{}) (interface{}, error)
	// Calculate computes the effective value from the complete metadata.
	// Only set by extensions; nil for all default fields.
	Calculate func(*Metadata) interface{}
}

// The process-wide field registry. Written at init time only, read-only
// afterwards.
var (
	registryMu           sync.Mutex
	registeredFields     []Field
	fieldsByName         = map[string]int{}
	fieldsBySerializedID = map[string]int{}
)

// RegisterField adds a field to the process-wide registry. Registration
// happens at module initialization; re-registering a name panics.
func RegisterField(field Field) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := fieldsByName[field.Name]; ok {
		panic("series: field registered twice: " + field.Name)
	}
	if field.Serialize == nil {
		field.Serialize = func(v interface{}) interface{} { return v }
	}
	if field.Deserialize == nil {
		field.Deserialize = func(v interface{}) (interface{}, error) { return v, nil }
	}
	registeredFields = append(registeredFields, field)
	fieldsByName[field.Name] = len(registeredFields) - 1
	fieldsBySerializedID[field.SerializedName] = len(registeredFields) - 1
}

// Fields returns all registered fields in registration order.
func Fields() []Field {
	return registeredFields
}

// LookupField finds a field by canonical or serialized name.
func LookupField(name string) (Field, bool) {
	if idx, ok := fieldsByName[name]; ok {
		return registeredFields[idx], true
	}
	if idx, ok := fieldsBySerializedID[name]; ok {
		return registeredFields[idx], true
	}
	return Field{}, false
}

func deserializeString(v interface{}) (interface{}, error) {
	if v == nil {
		return "", nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return nil, errors.Newf(errors.InvalidMetadata, "expected string, got %T", v)
}

// deserializeNumber accepts numbers and numerical strings.
func deserializeNumber(v interface{}) (interface{}, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return value, nil
	case float32:
		return float64(value), nil
	case int:
		return float64(value), nil
	case int64:
		return float64(value), nil
	case json.Number:
		f, err := value.Float64()
		if err != nil {
			return nil, errors.Wrap(errors.InvalidMetadata, err)
		}
		return f, nil
	case string:
		if value == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, errors.Newf(errors.InvalidMetadata, "not a number: %q", value)
		}
		return f, nil
	}
	return nil, errors.Newf(errors.InvalidMetadata, "expected number, got %T", v)
}

func deserializeOptionalString(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return nil, nil
		}
		return s, nil
	}
	return nil, errors.Newf(errors.InvalidMetadata, "expected string, got %T", v)
}

func deserializeInterpolationType(v interface{}) (interface{}, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case InterpolationType:
		v = string(value)
	}
	if s, ok := v.(string); ok {
		switch InterpolationType(s) {
		case InterpolationLinear, InterpolationStepped:
			return InterpolationType(s), nil
		case "":
			return nil, nil
		}
	}
	return nil, errors.Newf(errors.InvalidMetadata, "invalid interpolation type: %v", v)
}

func deserializeDataType(v interface{}) (interface{}, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case DataType:
		v = string(value)
	}
	if s, ok := v.(string); ok {
		switch DataType(s) {
		case Float32, Float64, String, Dictionary64, Categorical:
			return DataType(s), nil
		case "":
			return nil, nil
		}
	}
	return nil, errors.Newf(errors.InvalidMetadata, "invalid data type: %v", v)
}

func deserializeProcessType(v interface{}) (interface{}, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case ProcessType:
		v = string(value)
	}
	if s, ok := v.(string); ok {
		switch ProcessType(s) {
		case Continuous, Regime, Batch:
			return ProcessType(s), nil
		case "":
			return nil, nil
		}
	}
	return nil, errors.Newf(errors.InvalidMetadata, "invalid process type: %v", v)
}

// serializeDictionary writes a dictionary as an ordered list of [key, label]
// pairs.
func serializeDictionary(v interface{}) interface{} {
	d, ok := v.(*Dictionary)
	if !ok || d == nil {
		return nil
	}
	pairs := make([]interface{}, 0, d.Len())
	for _, entry := range d.Entries() {
		pairs = append(pairs, []interface{}{entry.Key, entry.Value})
	}
	return pairs
}

func deserializeDictionary(v interface{}) (interface{}, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case *Dictionary:
		return value, nil
	case []interface{}:
		entries := make([]DictionaryEntry, 0, len(value))
		for _, item := range value {
			pair, ok := item.([]interface{})
			if !ok || len(pair) != 2 {
				return nil, errors.Newf(errors.InvalidMetadata, "invalid dictionary entry: %v", item)
			}
			key, err := toInt64(pair[0])
			if err != nil {
				return nil, err
			}
			label, ok := pair[1].(string)
			if !ok {
				return nil, errors.Newf(errors.InvalidMetadata, "invalid dictionary label: %v", pair[1])
			}
			entries = append(entries, DictionaryEntry{Key: key, Value: label})
		}
		return NewDictionary(entries)
	}
	return nil, errors.Newf(errors.InvalidMetadata, "invalid dictionary: %T", v)
}

func toInt64(v interface{}) (int64, error) {
	switch value := v.(type) {
	case int:
		return int64(value), nil
	case int64:
		return value, nil
	case float64:
		return int64(value), nil
	case json.Number:
		i, err := value.Int64()
		if err != nil {
			return 0, errors.Wrap(errors.InvalidMetadata, err)
		}
		return i, nil
	case string:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, errors.Newf(errors.InvalidMetadata, "not an integer: %q", value)
		}
		return i, nil
	}
	return 0, errors.Newf(errors.InvalidMetadata, "not an integer: %T", v)
}

func init() {
	RegisterField(Field{Name: "description", SerializedName: "description", Default: "", Deserialize: deserializeString})
	RegisterField(Field{Name: "unit", SerializedName: "unit", Default: "", Deserialize: deserializeString})
	RegisterField(Field{Name: "lower limit", SerializedName: "limitLow", Default: nil, Deserialize: deserializeNumber})
	RegisterField(Field{Name: "upper limit", SerializedName: "limitHigh", Default: nil, Deserialize: deserializeNumber})
	RegisterField(Field{Name: "accuracy", SerializedName: "accuracy", Default: nil, Deserialize: deserializeNumber})
	RegisterField(Field{Name: "interpolation type", SerializedName: "interpolationType", Default: nil, Deserialize: deserializeInterpolationType})
	RegisterField(Field{Name: "data type", SerializedName: "dataType", Default: nil, Deserialize: deserializeDataType})
	RegisterField(Field{Name: "dictionary name", SerializedName: "dictionaryName", Default: nil, Deserialize: deserializeOptionalString})
	RegisterField(Field{Name: "dictionary", SerializedName: "dictionary", Default: nil, Serialize: serializeDictionary, Deserialize: deserializeDictionary})
	RegisterField(Field{Name: "process type", SerializedName: "processType", Default: nil, Deserialize: deserializeProcessType})
}
