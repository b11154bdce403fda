// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package source

import (
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/DataDog/kukur/pkg/config"
	"github.com/DataDog/kukur/pkg/errors"
	"github.com/DataDog/kukur/pkg/mapper"
	"github.com/DataDog/kukur/pkg/util/log"
)

// Dependencies are the resolved collaborators a factory receives next to the
// raw configuration.
type Dependencies struct {
	FieldMapper   *mapper.FieldMapper
	ValueMapper   *mapper.ValueMapper
	QualityMapper *mapper.QualityMapper
}

// Factory builds an adapter instance from its raw configuration.
type Factory func(name string, raw map[string]interface{}, deps Dependencies) (Source, error)

// The factory registry. Adapters register from init; read-only afterwards.
var factories = map[string]Factory{}

// RegisterFactory registers an adapter factory for a source type.
// Registering the same type twice panics.
func RegisterFactory(sourceType string, factory Factory) {
	if _, ok := factories[sourceType]; ok {
		panic("source: factory registered twice: " + sourceType)
	}
	factories[sourceType] = factory
}

// Registry holds the dispatcher for every configured source.
//
// It is built once at startup and read-only afterwards; lookups need no
// locking.
type Registry struct {
	wrappers map[string]*SourceWrapper
	failed   map[string]error
	names    []string
}

// NewRegistry instantiates every configured source. Sources that fail to
// build stay in the registry and report their configuration error on use;
// the aggregated error lists all of them.
func NewRegistry(cfg *config.Config) (*Registry, error) {
	registry := &Registry{
		wrappers: map[string]*SourceWrapper{},
		failed:   map[string]error{},
	}

	auxiliary := map[string]auxiliarySource{}
	var errs *multierror.Error
	for _, name := range sortedKeys(cfg.Metadata) {
		adapter, options, err := buildAdapter(name, cfg.Metadata[name], cfg)
		if err != nil {
			log.Errorf("Cannot configure metadata source %q: %v", name, err)
			errs = multierror.Append(errs, err)
			continue
		}
		auxiliary[name] = auxiliarySource{name: name, source: adapter, fields: options.Fields}
	}

	for _, name := range sortedKeys(cfg.Sources) {
		registry.names = append(registry.names, name)
		wrapper, err := buildWrapper(name, cfg, auxiliary)
		if err != nil {
			log.Errorf("Cannot configure source %q: %v", name, err)
			registry.failed[name] = err
			errs = multierror.Append(errs, err)
			continue
		}
		registry.wrappers[name] = wrapper
	}
	return registry, errs.ErrorOrNil()
}

func buildWrapper(name string, cfg *config.Config, auxiliary map[string]auxiliarySource) (*SourceWrapper, error) {
	raw := cfg.Sources[name]
	adapter, options, err := buildAdapter(name, raw, cfg)
	if err != nil {
		return nil, err
	}

	metadataAdapter := adapter
	if options.MetadataType != "" {
		metadataRaw := make(map[string]interface{}, len(raw))
		for k, v := range raw {
			metadataRaw[k] = v
		}
		metadataRaw["type"] = options.MetadataType
		metadataAdapter, _, err = buildAdapter(name, metadataRaw, cfg)
		if err != nil {
			return nil, err
		}
	}

	auxiliarySources := make([]auxiliarySource, 0, len(options.MetadataSources))
	for _, auxiliaryName := range options.MetadataSources {
		entry, ok := auxiliary[auxiliaryName]
		if !ok {
			return nil, errors.Newf(errors.InvalidSource, "source %q: unknown metadata source %q", name, auxiliaryName)
		}
		auxiliarySources = append(auxiliarySources, entry)
	}

	return NewSourceWrapper(name, adapter, metadataAdapter, auxiliarySources, options), nil
}

// buildAdapter resolves the mappers a source refers to and calls its factory.
func buildAdapter(name string, raw map[string]interface{}, cfg *config.Config) (Source, Options, error) {
	options, err := ParseOptions(raw)
	if err != nil {
		return nil, options, err
	}
	if options.Type == "" {
		return nil, options, errors.Newf(errors.InvalidSource, "source %q: no type configured", name)
	}
	factory, ok := factories[options.Type]
	if !ok {
		return nil, options, errors.Newf(errors.InvalidSource, "source %q: unknown type %q", name, options.Type)
	}

	deps := Dependencies{
		FieldMapper:   mapper.NewFieldMapper(nil),
		ValueMapper:   mapper.NewValueMapper(nil),
		QualityMapper: &mapper.QualityMapper{},
	}
	if options.MetadataMapping != "" {
		mapping, ok := cfg.MetadataMapping[options.MetadataMapping]
		if !ok {
			return nil, options, errors.Newf(errors.InvalidSource, "source %q: unknown metadata mapping %q", name, options.MetadataMapping)
		}
		deps.FieldMapper = mapper.NewFieldMapper(mapping)
	}
	if options.MetadataValueMapping != "" {
		mapping, ok := cfg.MetadataValueMapping[options.MetadataValueMapping]
		if !ok {
			return nil, options, errors.Newf(errors.InvalidSource, "source %q: unknown metadata value mapping %q", name, options.MetadataValueMapping)
		}
		deps.ValueMapper = mapper.NewValueMapper(mapping)
	}
	if options.QualityMapping != "" {
		mapping, ok := cfg.QualityMapping[options.QualityMapping]
		if !ok {
			return nil, options, errors.Newf(errors.InvalidSource, "source %q: unknown quality mapping %q", name, options.QualityMapping)
		}
		qualityMapper, err := mapper.NewQualityMapper(mapping)
		if err != nil {
			return nil, options, err
		}
		deps.QualityMapper = qualityMapper
	}

	adapter, err := factory(name, raw, deps)
	if err != nil {
		return nil, options, errors.Wrap(errors.InvalidSource, err)
	}
	return adapter, options, nil
}

// Get returns the dispatcher for a configured source.
func (r *Registry) Get(name string) (*SourceWrapper, error) {
	if wrapper, ok := r.wrappers[name]; ok {
		return wrapper, nil
	}
	if err, ok := r.failed[name]; ok {
		return nil, err
	}
	return nil, errors.Newf(errors.UnknownSource, "no source named %q", name)
}

// Names lists all configured source names in deterministic order.
func (r *Registry) Names() []string {
	return r.names
}

func sortedKeys(m map[string]map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
