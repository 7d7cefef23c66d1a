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
	"log/slog"
	"strings"

	"github.com/pjscruggs/sloghook/intercept"
)

// Templates used by LogCalls and LogBenchmark when no WithFormat option is
// given.
const (
	CallsTemplate     = "called method " + TokenMethod
	CallsArgsTemplate = "called method " + TokenMethod + " with arguments (" + TokenArgs + ")"
	BenchmarkTemplate = "method " + TokenMethod + " took " + TokenTiming + " ms"
)

// Diagnostic messages emitted once at configuration time.
const (
	msgBlankCallsFormat    = "LogCalls() provided with empty or null format string"
	msgInvalidTimingFormat = "LogBenchmark() provided with invalid timing format, using " + DefaultTimingFormat
)

// LogCalls returns a decorator that logs every intercepted call before it
// runs, on the logger registered for the proxied type.
//
// The message is built from WithFormat when given, otherwise from the
// template selected by WithCallDetail. An unknown CallDetail without
// WithFormat attaches nothing. A blank template is a configuration mistake:
// LogCalls logs a single warning and attaches nothing.
//
// A nil reg means the shared default registry, see NewRegistry.
func LogCalls(reg *Registry, opts ...Option) intercept.Decorator {
	reg = reg.orDefault()
	o := applyOptions(opts)
	level := o.levelOr(LevelInfo)

	template, known := CallsTemplate, true
	if o.callDetail != nil {
		switch *o.callDetail {
		case CallDetailMethodSignature:
		case CallDetailArgs:
			template = CallsArgsTemplate
		default:
			known = false
		}
	}
	if o.format != nil {
		template, known = *o.format, true
	}

	return intercept.DecoratorFunc(func(p *intercept.Proxy) {
		if !known {
			return
		}
		logger := reg.Logger(p.TypeName())
		if strings.TrimSpace(template) == "" {
			logger.LogAttrs(context.Background(), LevelWarn.Level(), msgBlankCallsFormat)
			return
		}
		p.BeforeInvoke(func(ctx context.Context, m intercept.Method, args []any) {
			if !logger.Enabled(ctx, level.Level()) {
				return
			}
			msg := Substitute(template, map[string]string{
				TokenMethod: m.Signature(),
				TokenArgs:   FormatArgs(args),
			})
			emit(ctx, logger, level, msg, o.withTrace())
		})
	})
}

// LogBenchmark returns a decorator that logs the elapsed time of every
// intercepted call that returns without error.
//
// The default template is BenchmarkTemplate and the default timing format
// is DefaultTimingFormat. An invalid timing format is reported once as a
// warning and replaced by the default.
func LogBenchmark(reg *Registry, opts ...Option) intercept.Decorator {
	reg = reg.orDefault()
	o := applyOptions(opts)
	level := o.levelOr(LevelInfo)

	template := BenchmarkTemplate
	if o.format != nil {
		template = *o.format
	}
	timingFormat := DefaultTimingFormat
	if o.timingFormat != nil {
		timingFormat = *o.timingFormat
	}

	return intercept.DecoratorFunc(func(p *intercept.Proxy) {
		logger := reg.Logger(p.TypeName())
		formatTiming, err := parseTimingFormat(timingFormat)
		if err != nil {
			logger.LogAttrs(context.Background(), LevelWarn.Level(), msgInvalidTimingFormat,
				slog.String("timing_format", timingFormat),
				slog.String("error", err.Error()),
			)
			formatTiming, _ = parseTimingFormat(DefaultTimingFormat)
		}
		p.Benchmark(func(ctx context.Context, elapsed float64, m intercept.Method, args []any) {
			if !logger.Enabled(ctx, level.Level()) {
				return
			}
			msg := Substitute(template, map[string]string{
				TokenTiming: formatTiming(elapsed),
				TokenMethod: m.Signature(),
				TokenArgs:   FormatArgs(args),
			})
			emit(ctx, logger, level, msg, o.withTrace())
		})
	})
}

// emit writes msg at level, adding trace correlation attributes when
// requested and available.
func emit(ctx context.Context, logger *slog.Logger, level Level, msg string, withTrace bool) {
	var attrs []slog.Attr
	if withTrace {
		attrs, _ = TraceAttributes(ctx)
	}
	logger.LogAttrs(ctx, level.Level(), msg, attrs...)
}
