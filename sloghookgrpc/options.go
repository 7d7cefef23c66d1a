// Copyright 2025 Patrick J. Scruggs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sloghookgrpc

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/pjscruggs/sloghook"
)

// Option configures the interceptors and the ServerOptions/DialOptions
// helpers.
type Option func(*config)

type config struct {
	enableOTel     bool
	tracerProvider trace.TracerProvider
	propagators    propagation.TextMapPropagator
	filters        []otelgrpc.Filter
	includeStreams bool
}

// defaultConfig returns the baseline configuration.
func defaultConfig() *config {
	return &config{
		enableOTel:     true,
		includeStreams: true,
	}
}

// applyOptions applies opts on top of defaultConfig.
func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithOTel enables or disables the otelgrpc stats handlers installed by
// ServerOptions and DialOptions. Enabled by default.
func WithOTel(enabled bool) Option {
	return func(cfg *config) {
		cfg.enableOTel = enabled
	}
}

// WithTracerProvider sets the tracer provider handed to otelgrpc.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) {
		cfg.tracerProvider = tp
	}
}

// WithPropagators sets the propagator otelgrpc uses to extract (server) or
// inject (client) trace context. Without it the global propagator is used,
// after [sloghook.EnsurePropagation] has had a chance to install one.
func WithPropagators(p propagation.TextMapPropagator) Option {
	return func(cfg *config) {
		cfg.propagators = p
	}
}

// WithFilter appends an otelgrpc filter. RPCs it rejects get no span, so
// their log lines carry no trace attributes.
func WithFilter(filter otelgrpc.Filter) Option {
	return func(cfg *config) {
		if filter != nil {
			cfg.filters = append(cfg.filters, filter)
		}
	}
}

// WithStreams toggles interception of streaming RPCs. Enabled by default.
func WithStreams(enabled bool) Option {
	return func(cfg *config) {
		cfg.includeStreams = enabled
	}
}

// statsHandlerOptions converts cfg into otelgrpc options.
func statsHandlerOptions(cfg *config) []otelgrpc.Option {
	var opts []otelgrpc.Option
	if cfg.tracerProvider != nil {
		opts = append(opts, otelgrpc.WithTracerProvider(cfg.tracerProvider))
	}
	if cfg.propagators != nil {
		opts = append(opts, otelgrpc.WithPropagators(cfg.propagators))
	} else {
		sloghook.EnsurePropagation()
	}
	for _, f := range cfg.filters {
		opts = append(opts, otelgrpc.WithFilter(f))
	}
	return opts
}
