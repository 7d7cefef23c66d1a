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

// Package sloghook provides ready-made logging decorators for method
// interception. Each decorator attaches hooks to an [intercept.Proxy] and
// writes through [log/slog] loggers obtained from a [Registry], one logger
// per proxied type.
//
// The decorators are:
//   - [LogCalls] logs each call before it runs, optionally with its
//     arguments.
//   - [LogBenchmark] logs the elapsed time of each successful call.
//   - [LogCallsObject] logs a JSON record describing each call.
//   - [LogExceptions] and [LogExceptionsOf] log errors and panics as JSON,
//     leaving the error to propagate unchanged.
//
// Message templates use the tokens %method%, %args% and %timing%; see
// [Substitute].
//
// # Backend
//
// [NewHandler] builds the slog.Handler the registry writes through. Text
// output renders "[time|]LEVEL|logger|message key=value" lines; JSON output
// uses slog's JSON handler with [Level] names. Output can go to any writer,
// a file owned by the handler ([Handler.ReopenLogFile] cooperates with
// external rotation), or a size-rotated file ([WithRotatingFile]).
// [WithEnv] opts into SLOGHOOK_LEVEL, SLOGHOOK_FORMAT, SLOGHOOK_TIME and
// SLOGHOOK_TARGET. [NewMetricsMiddleware] counts records for Prometheus.
//
// # Subpackages
//
//   - [github.com/pjscruggs/sloghook/intercept] holds the hook system.
//   - [github.com/pjscruggs/sloghook/sloghookasync] moves writes onto
//     worker goroutines.
//   - [github.com/pjscruggs/sloghook/sloghookgrpc] runs gRPC calls through a
//     proxy.
//   - [github.com/pjscruggs/sloghook/sloghookhttp] runs HTTP requests
//     through a proxy.
//
// # Quick Start
//
//	h, err := sloghook.NewHandler(os.Stdout)
//	if err != nil {
//		log.Fatalf("create handler: %v", err)
//	}
//	defer h.Close()
//	reg := sloghook.NewRegistry(h)
//
//	p := intercept.For[Store]().Use(
//		sloghook.LogCalls(reg, sloghook.WithCallDetail(sloghook.CallDetailArgs)),
//		sloghook.LogBenchmark(reg),
//		sloghook.LogExceptions(reg),
//	)
//	get := intercept.Func(p, "Get", store.Get, "key")
//	value, err := get(ctx, "user:42")
package sloghook
