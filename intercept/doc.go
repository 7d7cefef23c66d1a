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

// Package intercept provides the hook attachment points that sloghook's
// decorators plug into.
//
// A [Proxy] holds three ordered lists of callbacks for one proxied type:
//   - before hooks, run ahead of every call ([Proxy.BeforeInvoke])
//   - benchmark hooks, run after a call returns without error and handed the
//     elapsed time in milliseconds ([Proxy.Benchmark])
//   - catch hooks, run when a call returns an error or panics ([Proxy.Catch])
//
// Go has no runtime proxy generation, so calls are routed through a proxy
// either explicitly with [Proxy.Invoke] or by wrapping a function value with
// [Func], which uses reflect.MakeFunc to produce a function of the same type:
//
//	p := intercept.For[Greeter]().
//		Use(sloghook.LogCalls(registry), sloghook.LogBenchmark(registry))
//	greet := intercept.Func(p, "Greet", impl.Greet, "name")
//	greet(ctx, "gopher")
//
// Hooks never change a call's results. Errors are returned to the caller
// after the catch hooks run, and panics are re-raised with their original
// value.
package intercept
