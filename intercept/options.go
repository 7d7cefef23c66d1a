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

package intercept

import "time"

// Option configures a Proxy.
type Option func(*config)

type config struct {
	clock func() time.Time
}

// applyOptions applies opts on top of the defaults.
func applyOptions(opts []Option) *config {
	cfg := &config{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithClock replaces the time source used to measure calls. Tests use it
// to make benchmark timings deterministic.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		if now == nil {
			cfg.clock = time.Now
			return
		}
		cfg.clock = now
	}
}
