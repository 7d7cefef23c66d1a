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

// Command http-server logs every request to its routes through the sloghook
// decorators, with OpenTelemetry spans supplying trace correlation.
//
// This example is both documentation, and a test for `sloghook`.
// Our Github workflow tests if any changes to `sloghook` break the example.
package main

import (
	"io"
	"log"
	"net/http"
	"os"

	"github.com/pjscruggs/sloghook"
	"github.com/pjscruggs/sloghook/intercept"
	"github.com/pjscruggs/sloghook/sloghookhttp"
)

func main() {
	handler, err := sloghook.NewHandler(os.Stdout, sloghook.WithOutputFormat(sloghook.FormatJSON))
	if err != nil {
		log.Fatalf("failed to create sloghook handler: %v", err)
	}
	defer handler.Close()

	if err := http.ListenAndServe(":8080", newMux(sloghook.NewRegistry(handler))); err != nil {
		log.Printf("server stopped: %v", err)
	}
}

// newMux registers the example routes, each wrapped by the decorating
// middleware.
func newMux(reg *sloghook.Registry) *http.ServeMux {
	proxy := intercept.New("api").Use(
		sloghook.LogCalls(reg, sloghook.WithCallDetail(sloghook.CallDetailArgs)),
		sloghook.LogBenchmark(reg, sloghook.WithTimingFormat("N3")),
		sloghook.LogExceptions(reg),
	)
	mw := sloghookhttp.Middleware(proxy, sloghookhttp.WithOTel(true))

	mux := http.NewServeMux()
	mux.Handle("GET /hello/{name}", mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello "+r.PathValue("name"))
	})))
	mux.Handle("GET /fail", mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	})))
	return mux
}
