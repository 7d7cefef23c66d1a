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
	"context"
	"errors"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pjscruggs/sloghook/intercept"
)

// Transport returns an http.RoundTripper that runs outbound requests
// through p. Transport errors reach the catch hooks and are returned
// unchanged. A response at or above the failure threshold also reaches the
// catch hooks as a *StatusError, but is still returned to the caller with a
// nil error. A nil base uses http.DefaultTransport.
func Transport(p *intercept.Proxy, base http.RoundTripper, opts ...Option) http.RoundTripper {
	cfg := applyOptions(opts)
	if base == nil {
		base = http.DefaultTransport
	}
	var rt http.RoundTripper = roundTripper{proxy: p, base: base, cfg: cfg}
	if cfg.enableOTel {
		rt = otelhttp.NewTransport(rt, otelOptions(cfg)...)
	}
	return rt
}

type roundTripper struct {
	proxy *intercept.Proxy
	base  http.RoundTripper
	cfg   *config
}

// RoundTrip sends req through the proxy's hooks.
func (t roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	target := req.URL.String()
	m := t.proxy.Method(req.Method+" "+req.URL.Host+req.URL.Path, requestParams...)

	var resp *http.Response
	err := t.proxy.Invoke(req.Context(), m, []any{req.Method, target}, func(ctx context.Context) error {
		var err error
		resp, err = t.base.RoundTrip(req.WithContext(ctx))
		if err != nil {
			return err
		}
		if t.cfg.failed(resp.StatusCode) {
			return &StatusError{Method: req.Method, Target: target, Code: resp.StatusCode}
		}
		return nil
	})
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return resp, nil
	}
	return resp, err
}
