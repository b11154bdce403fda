// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package source

import (
	"github.com/mitchellh/mapstructure"

	"github.com/DataDog/kukur/pkg/errors"
)

// Options holds the configuration keys shared by all sources. Adapter
// specific keys stay in the raw configuration map handed to the factory.
type Options struct {
	// Type selects the adapter factory.
	Type string `mapstructure:"type"`
	// MetadataType selects a different adapter for metadata requests.
	MetadataType string `mapstructure:"metadata_type"`
	// MetadataSources lists auxiliary metadata sources by name, in
	// precedence order.
	MetadataSources []string `mapstructure:"metadata_sources"`
	// MetadataMapping names a metadata_mapping configuration section.
	MetadataMapping string `mapstructure:"metadata_mapping"`
	// MetadataValueMapping names a metadata_value_mapping section.
	MetadataValueMapping string `mapstructure:"metadata_value_mapping"`
	// QualityMapping names a quality_mapping section.
	QualityMapping string `mapstructure:"quality_mapping"`
	// Fields restricts the metadata fields copied from an auxiliary
	// metadata source. Empty means all fields.
	Fields []string `mapstructure:"fields"`

	// DataQueryIntervalSeconds splits data requests in sub-intervals of
	// this many seconds. Zero disables splitting.
	DataQueryIntervalSeconds float64 `mapstructure:"data_query_interval_seconds"`
	// QueryRetryCount is the number of retries after a failed adapter
	// call. Zero disables retrying.
	QueryRetryCount int `mapstructure:"query_retry_count"`
	// QueryRetryDelay is the fixed sleep in seconds between attempts.
	QueryRetryDelay float64 `mapstructure:"query_retry_delay"`
	// QueryTimeoutSeconds bounds a single adapter call. Zero means no
	// timeout.
	QueryTimeoutSeconds float64 `mapstructure:"query_timeout_seconds"`
}

// ParseOptions extracts the common options from a raw source configuration.
func ParseOptions(raw map[string]interface{}) (Options, error) {
	var options Options
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &options,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return options, err
	}
	if err := decoder.Decode(raw); err != nil {
		return options, errors.Wrap(errors.InvalidSource, err)
	}
	return options, nil
}
