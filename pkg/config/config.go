// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package config loads the gateway configuration: a TOML tree, optionally
// merged with additional files through the include.glob mechanism. When
// merging, scalars overwrite, lists concatenate and tables merge recursively.
package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"

	"github.com/DataDog/kukur/pkg/errors"
	"github.com/DataDog/kukur/pkg/util/log"
)

// DefaultPort is the port the Arrow Flight endpoint binds to by default.
const DefaultPort = 8081

// DefaultHost is the interface the Arrow Flight endpoint binds to by default.
const DefaultHost = "0.0.0.0"

// FlightConfig configures the Arrow Flight endpoint.
type FlightConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// Authentication is "api-key" (the default) or "none".
	Authentication string `mapstructure:"authentication"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	// Path receives log output; empty or "-" logs to stderr.
	Path string `mapstructure:"path"`
}

// Config is the complete gateway configuration.
type Config struct {
	Flight  FlightConfig  `mapstructure:"flight"`
	DataDir string        `mapstructure:"data_dir"`
	Logging LoggingConfig `mapstructure:"logging"`

	// Sources maps a source name to its raw adapter configuration.
	Sources map[string]map[string]interface{} `mapstructure:"source"`
	// Metadata maps an auxiliary metadata source name to its raw adapter
	// configuration.
	Metadata map[string]map[string]interface{} `mapstructure:"metadata"`

	MetadataMapping      map[string]map[string]string            `mapstructure:"metadata_mapping"`
	MetadataValueMapping map[string]map[string]map[string]string `mapstructure:"metadata_value_mapping"`
	QualityMapping       map[string]map[string]interface{}       `mapstructure:"quality_mapping"`
}

// New returns a configuration with all defaults applied.
func New() *Config {
	return &Config{
		Flight: FlightConfig{
			Host:           DefaultHost,
			Port:           DefaultPort,
			Authentication: "api-key",
		},
		DataDir: ".",
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads and merges the configuration at path.
func Load(path string) (*Config, error) {
	tree, err := loadTree(path)
	if err != nil {
		return nil, err
	}
	return FromTree(tree)
}

// FromTree decodes a raw configuration tree.
func FromTree(tree map[string]interface{}) (*Config, error) {
	config := New()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           config,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(tree); err != nil {
		return nil, errors.Wrap(errors.InvalidConfiguration, err)
	}
	return config, nil
}

// loadTree parses one TOML file and resolves its includes.
func loadTree(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidConfiguration, err)
	}
	var tree map[string]interface{}
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, errors.Newf(errors.InvalidConfiguration, "%s: %v", path, err)
	}
	return resolveIncludes(tree, filepath.Dir(path))
}

// resolveIncludes merges the files matched by include.glob into the tree.
// Globs resolve relative to the including file.
func resolveIncludes(tree map[string]interface{}, baseDir string) (map[string]interface{}, error) {
	rawInclude, ok := tree["include"]
	if !ok {
		return tree, nil
	}
	delete(tree, "include")

	var errs *multierror.Error
	for _, glob := range includeGlobs(rawInclude) {
		if !filepath.IsAbs(glob) {
			glob = filepath.Join(baseDir, glob)
		}
		matches, err := filepath.Glob(glob)
		if err != nil {
			errs = multierror.Append(errs, errors.Newf(errors.InvalidConfiguration, "invalid include glob %q: %v", glob, err))
			continue
		}
		sort.Strings(matches)
		for _, match := range matches {
			log.Debugf("Including configuration file %q", match)
			included, err := loadTree(match)
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			tree = mergeTree(tree, included)
		}
	}
	return tree, errs.ErrorOrNil()
}

func includeGlobs(rawInclude interface{}) []string {
	globs := []string{}
	collect := func(table map[string]interface{}) {
		if glob, ok := table["glob"].(string); ok {
			globs = append(globs, glob)
		}
	}
	switch typed := rawInclude.(type) {
	case map[string]interface{}:
		collect(typed)
	case []map[string]interface{}:
		for _, table := range typed {
			collect(table)
		}
	case []interface{}:
		for _, item := range typed {
			if table, ok := item.(map[string]interface{}); ok {
				collect(table)
			}
		}
	}
	return globs
}

// mergeTree merges overlay into base: scalars overwrite, lists concatenate,
// tables merge recursively.
func mergeTree(base map[string]interface{}, overlay map[string]interface{}) map[string]interface{} {
	for key, value := range overlay {
		existing, ok := base[key]
		if !ok {
			base[key] = value
			continue
		}
		existingTable, existingIsTable := existing.(map[string]interface{})
		valueTable, valueIsTable := value.(map[string]interface{})
		if existingIsTable && valueIsTable {
			base[key] = mergeTree(existingTable, valueTable)
			continue
		}
		existingList, existingIsList := existing.([]interface{})
		valueList, valueIsList := value.([]interface{})
		if existingIsList && valueIsList {
			base[key] = append(existingList, valueList...)
			continue
		}
		base[key] = value
	}
	return base
}
