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
	"os"
	"strconv"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// PropagatorAutoSetEnv names the environment variable that, when set to a
// false value, stops EnsurePropagation from touching the global propagator.
const PropagatorAutoSetEnv = "SLOGHOOK_PROPAGATOR_AUTOSET"

var installPropagatorOnce sync.Once

// EnsurePropagation installs a composite OpenTelemetry text map propagator
// (W3C Trace Context followed by Baggage) as the global propagator, at most
// once per process. The sloghookgrpc and sloghookhttp adapters call it when
// they enable OpenTelemetry instrumentation without explicit propagators, so
// incoming trace context reaches the decorators' trace attributes.
//
// Applications remain free to call otel.SetTextMapPropagator afterwards.
func EnsurePropagation() {
	installPropagatorOnce.Do(func() {
		if !propagatorAutoSetEnabled() {
			return
		}
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	})
}

// propagatorAutoSetEnabled reports whether PropagatorAutoSetEnv allows
// installation. Unset or unparsable values count as enabled.
func propagatorAutoSetEnabled() bool {
	raw := strings.TrimSpace(os.Getenv(PropagatorAutoSetEnv))
	if raw == "" {
		return true
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return enabled
}
