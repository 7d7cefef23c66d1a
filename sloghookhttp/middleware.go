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
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pjscruggs/sloghook/intercept"
)

// StatusError reports a response whose status met the failure threshold.
type StatusError struct {
	Method string
	Target string
	Code   int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("sloghookhttp: %s %s responded %d %s", e.Method, e.Target, e.Code, http.StatusText(e.Code))
}

// requestParams are the parameters recorded for every request.
var requestParams = []intercept.Param{
	{Type: "string", Name: "method"},
	{Type: "string", Name: "target"},
}

// Middleware returns a function that runs each request through p. The
// handler's panics reach the catch hooks and then continue to net/http.
func Middleware(p *intercept.Proxy, opts ...Option) func(http.Handler) http.Handler {
	cfg := applyOptions(opts)
	return func(next http.Handler) http.Handler {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			target := requestTarget(r)
			m := describeRequest(p, r)
			rec := &responseRecorder{ResponseWriter: w}
			_ = p.Invoke(r.Context(), m, []any{r.Method, target}, func(ctx context.Context) error {
				next.ServeHTTP(rec, r.WithContext(ctx))
				if status := rec.Status(); cfg.failed(status) {
					return &StatusError{Method: r.Method, Target: target, Code: status}
				}
				return nil
			})
		})
		if !cfg.enableOTel {
			return handler
		}
		return otelhttp.NewHandler(handler, instrumentationName, otelOptions(cfg)...)
	}
}

// describeRequest names r after the matched route pattern, or after its
// method and path when the request has not been routed.
func describeRequest(p *intercept.Proxy, r *http.Request) intercept.Method {
	name := r.Pattern
	if name == "" {
		name = r.Method + " " + r.URL.Path
	}
	return p.Method(name, requestParams...)
}

// requestTarget returns the request URI as received, or as rebuilt from
// the URL for requests constructed in process.
func requestTarget(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	if r.URL == nil {
		return ""
	}
	return r.URL.RequestURI()
}

type responseRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

// WriteHeader records the first status code before delegating.
func (rr *responseRecorder) WriteHeader(status int) {
	if !rr.wroteHeader {
		rr.status = status
		rr.wroteHeader = true
	}
	rr.ResponseWriter.WriteHeader(status)
}

// Write forwards p, recording an implicit 200 when no header was written.
func (rr *responseRecorder) Write(p []byte) (int, error) {
	if !rr.wroteHeader {
		rr.WriteHeader(http.StatusOK)
	}
	n, err := rr.ResponseWriter.Write(p)
	if err != nil {
		return n, fmt.Errorf("write response body: %w", err)
	}
	return n, nil
}

// ReadFrom streams src to the client, using the wrapped writer's ReadFrom
// when it has one.
func (rr *responseRecorder) ReadFrom(src io.Reader) (int64, error) {
	if !rr.wroteHeader {
		rr.WriteHeader(http.StatusOK)
	}
	var (
		n   int64
		err error
	)
	if rf, ok := rr.ResponseWriter.(io.ReaderFrom); ok {
		n, err = rf.ReadFrom(src)
	} else {
		n, err = io.Copy(rr.ResponseWriter, src)
	}
	if err != nil {
		return n, fmt.Errorf("copy response body: %w", err)
	}
	return n, nil
}

// Status returns the status sent to the client, 200 if none was written.
func (rr *responseRecorder) Status() int {
	if rr.status == 0 {
		return http.StatusOK
	}
	return rr.status
}

// Unwrap exposes the underlying ResponseWriter for http.ResponseController.
func (rr *responseRecorder) Unwrap() http.ResponseWriter {
	return rr.ResponseWriter
}

// Flush forwards to the wrapped writer when it supports http.Flusher.
func (rr *responseRecorder) Flush() {
	if flusher, ok := rr.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack delegates to the wrapped Hijacker when supported.
func (rr *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rr.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	conn, rw, err := hijacker.Hijack()
	if err != nil {
		return nil, nil, fmt.Errorf("hijack connection: %w", err)
	}
	return conn, rw, nil
}
