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

// Package sloghookhttp routes HTTP requests through an [intercept.Proxy] so
// the sloghook decorators attached to it log requests the same way they log
// ordinary method calls.
//
// Each request is described by a [intercept.Method] named after the route
// pattern the ServeMux matched, or "METHOD path" when no pattern is known,
// with the parameters (string method, string target). Responses at or above
// the configured status threshold reach the catch hooks as a *[StatusError].
//
// Basic usage:
//
//	proxy := intercept.New("api").Use(sloghook.LogCalls(reg), sloghook.LogBenchmark(reg))
//	mux := http.NewServeMux()
//	mux.Handle("GET /users/{id}", sloghookhttp.Middleware(proxy)(usersHandler))
//
// [Transport] does the same for outbound requests.
package sloghookhttp
