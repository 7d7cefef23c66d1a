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

import "time"

// CallDetail selects what LogCalls includes in its default message.
type CallDetail int

const (
	// CallDetailMethodSignature logs the method signature only.
	CallDetailMethodSignature CallDetail = iota
	// CallDetailArgs logs the method signature and the argument values.
	CallDetailArgs
)

// ObjectDetail selects the tier of record emitted by LogCallsObject.
type ObjectDetail int

const (
	// ObjectDetailLow emits methodName, timestamp and className.
	ObjectDetailLow ObjectDetail = iota
	// ObjectDetailMedium additionally emits methodSignature and arguments.
	ObjectDetailMedium
)

// Option configures a decorator. Options a decorator does not use are
// ignored.
type Option func(*options)

// options holds decorator configuration. Pointer fields distinguish an
// unset option from an explicit zero value so each decorator can apply its
// own default.
type options struct {
	level            *Level
	format           *string
	timingFormat     *string
	callDetail       *CallDetail
	objectDetail     *ObjectDetail
	traceCorrelation *bool
	clock            func() time.Time
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o options) levelOr(def Level) Level {
	if o.level != nil {
		return *o.level
	}
	return def
}

func (o options) withTrace() bool {
	return o.traceCorrelation == nil || *o.traceCorrelation
}

func (o options) now() time.Time {
	if o.clock != nil {
		return o.clock()
	}
	return time.Now()
}

// WithLevel sets the level decorator lines are emitted at.
func WithLevel(level Level) Option {
	return func(o *options) {
		o.level = &level
	}
}

// WithFormat sets the message template. It overrides the template implied
// by WithCallDetail. Templates may reference %method%, %args% and, for
// LogBenchmark, %timing%.
func WithFormat(template string) Option {
	return func(o *options) {
		o.format = &template
	}
}

// WithTimingFormat sets how LogBenchmark renders elapsed milliseconds.
// See DefaultTimingFormat for the default.
func WithTimingFormat(format string) Option {
	return func(o *options) {
		o.timingFormat = &format
	}
}

// WithCallDetail selects the LogCalls default template.
func WithCallDetail(detail CallDetail) Option {
	return func(o *options) {
		o.callDetail = &detail
	}
}

// WithObjectDetail selects the LogCallsObject record tier.
func WithObjectDetail(detail ObjectDetail) Option {
	return func(o *options) {
		o.objectDetail = &detail
	}
}

// WithTraceCorrelation controls whether decorator lines carry trace_id,
// span_id and trace_sampled attributes when the call context holds an
// OpenTelemetry span. It is enabled by default.
func WithTraceCorrelation(enabled bool) Option {
	return func(o *options) {
		o.traceCorrelation = &enabled
	}
}

// WithClock overrides the clock used for LogCallsObject timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}
