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
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pjscruggs/sloghook"
	"github.com/pjscruggs/sloghook/intercept"
)

type recorder struct {
	mu      sync.Mutex
	methods []intercept.Method
	args    [][]any
	errs    []error
	benches int
}

// proxy returns a Proxy whose hooks feed r.
func (r *recorder) proxy() *intercept.Proxy {
	p := intercept.New("api")
	p.BeforeInvoke(func(_ context.Context, m intercept.Method, args []any) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.methods = append(r.methods, m)
		r.args = append(r.args, args)
	})
	p.Benchmark(func(context.Context, float64, intercept.Method, []any) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.benches++
	})
	p.Catch(func(_ context.Context, err error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.errs = append(r.errs, err)
	})
	return p
}

// TestMiddlewareUsesRoutePattern checks that handlers registered on a
// ServeMux are described by their pattern.
func TestMiddlewareUsesRoutePattern(t *testing.T) {
	t.Parallel()

	var rec recorder
	mw := Middleware(rec.proxy())
	mux := http.NewServeMux()
	mux.Handle("GET /users/{id}", mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := intercept.MethodFromContext(r.Context()); !ok {
			t.Errorf("handler context carries no method")
		}
		_, _ = io.WriteString(w, r.PathValue("id"))
	})))

	resp := httptest.NewRecorder()
	mux.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/users/42?verbose=1", nil))

	if resp.Body.String() != "42" {
		t.Fatalf("body = %q, want %q", resp.Body.String(), "42")
	}
	want := intercept.Method{Name: "GET /users/{id}", Type: "api", Params: requestParams}
	if diff := cmp.Diff([]intercept.Method{want}, rec.methods); diff != "" {
		t.Fatalf("methods mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"GET", "/users/42?verbose=1"}, rec.args[0]); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
	if rec.benches != 1 || len(rec.errs) != 0 {
		t.Fatalf("benches=%d errs=%v", rec.benches, rec.errs)
	}
}

// TestMiddlewareFallsBackToMethodAndPath covers unrouted requests.
func TestMiddlewareFallsBackToMethodAndPath(t *testing.T) {
	t.Parallel()

	var rec recorder
	h := Middleware(rec.proxy())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/jobs", nil))

	if got, want := rec.methods[0].Signature(), "POST /jobs(string method, string target)"; got != want {
		t.Fatalf("signature = %q, want %q", got, want)
	}
}

// TestMiddlewareStatusThreshold verifies which responses reach the catch
// hooks as StatusError.
func TestMiddlewareStatusThreshold(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		status  int
		opts    []Option
		wantErr bool
	}{
		{name: "OK", status: http.StatusOK},
		{name: "NotFoundDefault", status: http.StatusNotFound},
		{name: "ServerError", status: http.StatusServiceUnavailable, wantErr: true},
		{name: "LoweredThreshold", status: http.StatusNotFound, opts: []Option{WithErrorStatus(400)}, wantErr: true},
		{name: "Disabled", status: http.StatusInternalServerError, opts: []Option{WithErrorStatus(0)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var rec recorder
			h := Middleware(rec.proxy(), tc.opts...)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			resp := httptest.NewRecorder()
			h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/thing", nil))

			if resp.Code != tc.status {
				t.Fatalf("client saw %d, want %d", resp.Code, tc.status)
			}
			if !tc.wantErr {
				if len(rec.errs) != 0 || rec.benches != 1 {
					t.Fatalf("errs=%v benches=%d, want success", rec.errs, rec.benches)
				}
				return
			}
			if len(rec.errs) != 1 {
				t.Fatalf("catch hooks saw %v, want one StatusError", rec.errs)
			}
			var se *StatusError
			if !errors.As(rec.errs[0], &se) {
				t.Fatalf("error %T is not *StatusError", rec.errs[0])
			}
			if se.Code != tc.status || se.Method != http.MethodGet || se.Target != "/thing" {
				t.Fatalf("StatusError = %+v", se)
			}
		})
	}
}

// TestMiddlewarePanicReachesCatch checks panics are reported and re-raised.
func TestMiddlewarePanicReachesCatch(t *testing.T) {
	t.Parallel()

	var rec recorder
	h := Middleware(rec.proxy())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	func() {
		defer func() {
			if r := recover(); r != "kaboom" {
				t.Fatalf("recovered %v, want kaboom", r)
			}
		}()
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}()

	var pe *intercept.PanicError
	if len(rec.errs) != 1 || !errors.As(rec.errs[0], &pe) {
		t.Fatalf("catch hooks saw %v, want a PanicError", rec.errs)
	}
}

// TestStatusErrorMessage pins the error text.
func TestStatusErrorMessage(t *testing.T) {
	t.Parallel()

	err := &StatusError{Method: "GET", Target: "/x", Code: 502}
	if got, want := err.Error(), "sloghookhttp: GET /x responded 502 Bad Gateway"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

// TestTransportReportsFailures exercises the client side against a test
// server.
func TestTransportReportsFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	t.Cleanup(srv.Close)

	var rec recorder
	client := &http.Client{Transport: Transport(rec.proxy(), srv.Client().Transport)}

	resp, err := client.Get(srv.URL + "/fine")
	if err != nil {
		t.Fatalf("GET /fine returned %v", err)
	}
	_ = resp.Body.Close()

	resp, err = client.Get(srv.URL + "/broken")
	if err != nil {
		t.Fatalf("GET /broken returned %v, want response with nil error", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}

	if len(rec.methods) != 2 || rec.benches != 1 || len(rec.errs) != 1 {
		t.Fatalf("methods=%d benches=%d errs=%v", len(rec.methods), rec.benches, rec.errs)
	}
	if !strings.HasSuffix(rec.methods[1].Name, "/broken") || !strings.HasPrefix(rec.methods[1].Name, "GET ") {
		t.Fatalf("method name = %q", rec.methods[1].Name)
	}
}

// TestMiddlewareWithOTel ensures the otelhttp wrapper still serves the
// request and logs through the decorators.
func TestMiddlewareWithOTel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler, err := sloghook.NewHandler(&buf, sloghook.WithTime(false))
	if err != nil {
		t.Fatalf("NewHandler returned %v", err)
	}
	t.Cleanup(func() { _ = handler.Close() })
	reg := sloghook.NewRegistry(handler)

	p := intercept.New("api").Use(sloghook.LogCalls(reg, sloghook.WithCallDetail(sloghook.CallDetailArgs)))
	h := Middleware(p, WithOTel(true))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "hi")
	}))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/hello", nil))

	if resp.Body.String() != "hi" {
		t.Fatalf("body = %q", resp.Body.String())
	}
	want := "INFO|api|called method GET /hello(string method, string target) with arguments (GET, /hello)"
	if got := strings.TrimSpace(buf.String()); !strings.HasPrefix(got, want) {
		t.Fatalf("log line = %q, want prefix %q", got, want)
	}
}
