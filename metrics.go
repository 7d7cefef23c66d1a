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

package sloghook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Middleware adapts a slog.Handler, allowing callers to wrap the backend
// with additional behaviour such as metrics or asynchronous writes.
type Middleware func(slog.Handler) slog.Handler

// NewMetricsMiddleware returns a Middleware counting every record that
// reaches the handler, labelled by logger name and level, in the counter
// sloghook_records_total. The counter is registered with reg; a nil reg
// uses prometheus.DefaultRegisterer. Registering twice against the same
// registry reuses the existing counter. Every series carries the library
// version as a constant label.
func NewMetricsMiddleware(reg prometheus.Registerer) (Middleware, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sloghook",
			Name:      "records_total",
			Help:      "Total number of log records handled, by logger and level.",
			ConstLabels: prometheus.Labels{
				"version": GetVersion(),
			},
		},
		[]string{LoggerKey, "level"},
	)
	if err := reg.Register(counter); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, fmt.Errorf("sloghook: register records counter: %w", err)
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("sloghook: register records counter: %w", err)
		}
		counter = existing
	}

	return func(next slog.Handler) slog.Handler {
		return &metricsHandler{next: next, counter: counter}
	}, nil
}

// metricsHandler counts records by logger and level before forwarding
// them. The logger name is tracked through WithAttrs because Registry
// attaches it once per logger.
type metricsHandler struct {
	next    slog.Handler
	counter *prometheus.CounterVec
	logger  string
	grouped bool
}

func (h *metricsHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *metricsHandler) Handle(ctx context.Context, r slog.Record) error {
	logger := h.logger
	if logger == "" {
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == LoggerKey {
				logger = a.Value.String()
				return false
			}
			return true
		})
	}
	h.counter.WithLabelValues(logger, Level(r.Level).String()).Inc()
	return h.next.Handle(ctx, r)
}

func (h *metricsHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	if !h.grouped {
		for _, a := range attrs {
			if a.Key == LoggerKey {
				clone.logger = a.Value.String()
			}
		}
	}
	return &clone
}

func (h *metricsHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.next = h.next.WithGroup(name)
	if name != "" {
		clone.grouped = true
	}
	return &clone
}
