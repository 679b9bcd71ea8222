// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package markitdown

import (
	"context"

	"go.uber.org/zap"
)

type registeredConverter struct {
	converter DocumentConverter
	name      string
}

// NamedConverter is a registry entry as returned by Registry.Converters.
type NamedConverter struct {
	Name      string
	Converter DocumentConverter
}

// Registry is an ordered list of converters. The most recently registered
// converter is tried first.
type Registry struct {
	converters []registeredConverter
	logger     *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{logger: zap.NewNop()}
}

// Register inserts c at the front of the registry. name is the capability id
// used for recursion exclusion and error reporting. Registration must be
// complete before the first Dispatch; converters only ever see a
// RegistryView.
func (r *Registry) Register(name string, c DocumentConverter) {
	r.converters = append([]registeredConverter{{converter: c, name: name}}, r.converters...)
}

// Converters returns the registry content in priority order.
func (r *Registry) Converters() []NamedConverter {
	out := make([]NamedConverter, len(r.converters))
	for i, rc := range r.converters {
		out[i] = NamedConverter{Name: rc.name, Converter: rc.converter}
	}
	return out
}

// Len returns the number of registered converters.
func (r *Registry) Len() int {
	return len(r.converters)
}

// trial runs every converter against src for opts.FileExtension, front to
// back, skipping ids excluded by opts. It returns the first result; failed
// attempts are appended to attempts. A nil result with a nil error means
// nothing matched.
func (r *Registry) trial(ctx context.Context, src Source, opts ConverterOptions, attempts *[]FailedConversionAttempt) (*DocumentConverterResult, error) {
	opts.parent = r
	for _, rc := range r.converters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if opts.Excluded(rc.name) {
			continue
		}
		if !rc.converter.Accepts(opts) {
			continue
		}

		r.logger.Debug("trying converter",
			zap.String("converter", rc.name),
			zap.String("ext", opts.FileExtension),
			zap.Int("depth", opts.depth),
		)
		result, err := rc.converter.Convert(ctx, src, opts)
		if err != nil {
			r.logger.Debug("converter failed",
				zap.String("converter", rc.name),
				zap.String("ext", opts.FileExtension),
				zap.Error(err),
			)
			*attempts = append(*attempts, FailedConversionAttempt{
				Converter: rc.name,
				Extension: opts.FileExtension,
				Err:       err,
			})
			continue
		}
		if result != nil {
			return result, nil
		}
	}
	return nil, nil
}

// Dispatch tries every extension of exts against the registry and returns
// the first result, normalized. It is the entry point for converters that
// re-enter dispatch (archives); opts keeps its exclusions and depth.
func (r *Registry) Dispatch(ctx context.Context, src Source, exts ExtensionSet, opts ConverterOptions) (*DocumentConverterResult, error) {
	var attempts []FailedConversionAttempt

	for _, ext := range exts.List() {
		result, err := r.trial(ctx, src, opts.WithExtension(ext), &attempts)
		if err != nil {
			return nil, err
		}
		if result != nil {
			result.Markdown = normalizeOutput(result.Markdown)
			result.TextContent = result.Markdown
			return result, nil
		}
	}

	if len(attempts) > 0 {
		return nil, &ConversionError{Source: src.String(), Attempts: attempts}
	}
	return nil, &UnsupportedFormatError{Extensions: exts.List()}
}

// RegistryView is the read-only handle converters receive on the registry
// that dispatched them. It can run trials but never change the converter
// list.
type RegistryView struct {
	registry *Registry
}

// Converters returns the underlying registry content in priority order.
func (v *RegistryView) Converters() []NamedConverter {
	return v.registry.Converters()
}

// Dispatch runs a nested dispatch against the underlying registry.
func (v *RegistryView) Dispatch(ctx context.Context, src Source, exts ExtensionSet, opts ConverterOptions) (*DocumentConverterResult, error) {
	return v.registry.Dispatch(ctx, src, exts, opts)
}

func (v *RegistryView) trial(ctx context.Context, src Source, opts ConverterOptions, attempts *[]FailedConversionAttempt) (*DocumentConverterResult, error) {
	return v.registry.trial(ctx, src, opts, attempts)
}
