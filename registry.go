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
	"log/slog"
	"slices"
	"sync"
)

// LoggerKey is the attribute key carrying a logger's name on every record
// it emits. The text backend renders it as the logger column.
const LoggerKey = "logger"

// Registry hands out one *slog.Logger per qualified type name. Loggers are
// created on first request and kept for the registry's lifetime, so every
// decorator attached to the same type shares a single handle.
//
// A Registry is safe for concurrent use.
type Registry struct {
	handler slog.Handler

	mu      sync.RWMutex
	loggers map[string]*slog.Logger
}

// NewRegistry returns a Registry whose loggers write through h. A nil h
// uses the handler of slog.Default at the time of the call.
//
// Decorators given a nil *Registry all share one default registry, created
// on first use over slog.Default's handler, so they still share one logger
// per type.
func NewRegistry(h slog.Handler) *Registry {
	if h == nil {
		h = slog.Default().Handler()
	}
	return &Registry{
		handler: h,
		loggers: make(map[string]*slog.Logger),
	}
}

// Handler returns the handler backing every logger in the registry.
func (r *Registry) Handler() slog.Handler {
	return r.handler
}

// Logger returns the logger for name, creating it on first use. Concurrent
// first requests for the same name all receive the same pointer.
func (r *Registry) Logger(name string) *slog.Logger {
	r.mu.RLock()
	l, ok := r.loggers[name]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.loggers[name]; ok {
		return l
	}
	l = slog.New(r.handler).With(slog.String(LoggerKey, name))
	r.loggers[name] = l
	return l
}

// Len reports how many loggers have been created.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.loggers)
}

// Names returns the names of all created loggers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.loggers))
	for name := range r.loggers {
		names = append(names, name)
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// defaultRegistry is shared by every decorator given a nil registry. It is
// created on first use over slog.Default().Handler() as it stands then.
var defaultRegistry = sync.OnceValue(func() *Registry {
	return NewRegistry(nil)
})

// orDefault lets decorators accept a nil registry.
func (r *Registry) orDefault() *Registry {
	if r != nil {
		return r
	}
	return defaultRegistry()
}
