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

// Package sloghookgrpc routes gRPC calls through an [intercept.Proxy] so the
// sloghook decorators attached to it log RPCs the same way they log ordinary
// method calls.
//
// Each RPC is described by a [intercept.Method] built from its full method
// name: "/pkg.Service/Method" becomes Type "pkg.Service" and Name "Method".
// Unary RPCs carry a single "req" parameter typed by the request message;
// streaming RPCs carry "stream grpc.ServerStream" and no arguments.
//
// Basic usage:
//
//	reg := sloghook.NewRegistry(handler)
//	proxy := intercept.New("rpc").Use(
//		sloghook.LogCalls(reg, sloghook.WithCallDetail(sloghook.CallDetailArgs)),
//		sloghook.LogBenchmark(reg),
//		sloghook.LogExceptions(reg),
//	)
//	srv := grpc.NewServer(sloghookgrpc.ServerOptions(proxy)...)
//
// [ServerOptions] and [DialOptions] also install otelgrpc stats handlers so
// the decorators can correlate log lines with the active span. Disable that
// with [WithOTel](false).
package sloghookgrpc
