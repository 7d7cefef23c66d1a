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

package sloghookhttp

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/pjscruggs/sloghook"
)

const instrumentationName = "github.com/pjscruggs/sloghook/sloghookhttp"

// Option configures Middleware and Transport.
type Option func(*config)

type config struct {
	errorStatus    int
	enableOTel     bool
	tracerProvider trace.TracerProvider
	propagators    propagation.TextMapPropagator
	filters        []otelhttp.Filter
}

// defaultConfig returns the baseline configuration.
func defaultConfig() *config {
	return &config{
		errorStatus: http.StatusInternalServerError,
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

// WithErrorStatus sets the lowest response status treated as a failure.
// Defaults to 500. A value of zero or less disables status based failures.
func WithErrorStatus(code int) Option {
	return func(cfg *config) {
		cfg.errorStatus = code
	}
}

// WithOTel wraps the handler or transport with otelhttp so requests carry a
// span the decorators can correlate with. Disabled by default.
func WithOTel(enabled bool) Option {
	return func(cfg *config) {
		cfg.enableOTel = enabled
	}
}

// WithTracerProvider sets the tracer provider handed to otelhttp.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) {
		cfg.tracerProvider = tp
	}
}

// WithPropagators sets the propagator otelhttp uses for trace headers.
// Without it the global propagator is used, after
// [sloghook.EnsurePropagation] has had a chance to install one.
func WithPropagators(p propagation.TextMapPropagator) Option {
	return func(cfg *config) {
		cfg.propagators = p
	}
}

// WithFilter appends an otelhttp filter. Requests it rejects get no span.
func WithFilter(filter otelhttp.Filter) Option {
	return func(cfg *config) {
		if filter != nil {
			cfg.filters = append(cfg.filters, filter)
		}
	}
}

// failed reports whether status counts as a failure under cfg.
func (cfg *config) failed(status int) bool {
	return cfg.errorStatus > 0 && status >= cfg.errorStatus
}

// otelOptions converts cfg into otelhttp options.
func otelOptions(cfg *config) []otelhttp.Option {
	var opts []otelhttp.Option
	if cfg.tracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(cfg.tracerProvider))
	}
	if cfg.propagators != nil {
		opts = append(opts, otelhttp.WithPropagators(cfg.propagators))
	} else {
		sloghook.EnsurePropagation()
	}
	for _, f := range cfg.filters {
		opts = append(opts, otelhttp.WithFilter(f))
	}
	return opts
}
