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

	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used to correlate decorator output with OpenTelemetry
// traces.
const (
	// TraceIDKey holds the 32-char lowercase hex trace ID.
	TraceIDKey = "trace_id"
	// SpanIDKey holds the 16-char lowercase hex span ID.
	SpanIDKey = "span_id"
	// TraceSampledKey holds the span context's sampling decision.
	TraceSampledKey = "trace_sampled"
)

// TraceAttributes extracts OpenTelemetry trace identifiers from ctx. It
// returns false when ctx carries no valid span context. The span ID is only
// included when the span is local, since a remote parent's span ID does not
// identify the work that produced the log line.
func TraceAttributes(ctx context.Context) ([]slog.Attr, bool) {
	if ctx == nil {
		return nil, false
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil, false
	}

	attrs := make([]slog.Attr, 0, 3)
	attrs = append(attrs, slog.String(TraceIDKey, sc.TraceID().String()))
	if !sc.IsRemote() {
		attrs = append(attrs, slog.String(SpanIDKey, sc.SpanID().String()))
	}
	attrs = append(attrs, slog.Bool(TraceSampledKey, sc.IsSampled()))
	return attrs, true
}
