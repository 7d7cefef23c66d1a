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

import (
	"context"
	"errors"
	"reflect"
	"runtime"
	"sync"
	"time"
)

// BeforeFunc runs ahead of an intercepted call.
type BeforeFunc func(ctx context.Context, m Method, args []any)

// BenchmarkFunc runs after an intercepted call returns without error.
// elapsed is the wall-clock duration of the call in milliseconds.
type BenchmarkFunc func(ctx context.Context, elapsed float64, m Method, args []any)

// CatchFunc runs when an intercepted call returns an error or panics.
type CatchFunc func(ctx context.Context, err error)

// Decorator attaches one or more hooks to a Proxy.
type Decorator interface {
	Decorate(p *Proxy)
}

// DecoratorFunc adapts an ordinary function to the Decorator interface.
type DecoratorFunc func(p *Proxy)

// Decorate calls f(p).
func (f DecoratorFunc) Decorate(p *Proxy) { f(p) }

// Proxy collects hooks for one proxied type and runs calls through them.
// Hooks fire in attachment order and are never deduplicated, so attaching
// the same decorator twice produces two log lines per call.
type Proxy struct {
	typeName string
	clock    func() time.Time

	mu     sync.RWMutex
	before []BeforeFunc
	bench  []BenchmarkFunc
	catch  []CatchFunc
}

// New returns an empty Proxy for the type named typeName.
func New(typeName string, opts ...Option) *Proxy {
	cfg := applyOptions(opts)
	return &Proxy{
		typeName: typeName,
		clock:    cfg.clock,
	}
}

// For returns an empty Proxy for T, named after T's qualified type name.
func For[T any](opts ...Option) *Proxy {
	return New(TypeName(reflect.TypeFor[T]()), opts...)
}

// TypeName reports the qualified name of the proxied type.
func (p *Proxy) TypeName() string {
	return p.typeName
}

// Method returns a descriptor for a method named name declared on the
// proxied type.
func (p *Proxy) Method(name string, params ...Param) Method {
	return Method{Name: name, Type: p.typeName, Params: params}
}

// BeforeInvoke appends a hook that runs before every call.
func (p *Proxy) BeforeInvoke(fn BeforeFunc) *Proxy {
	if fn == nil {
		return p
	}
	p.mu.Lock()
	p.before = append(p.before, fn)
	p.mu.Unlock()
	return p
}

// Benchmark appends a hook that receives the elapsed time of every call
// that returns without error.
func (p *Proxy) Benchmark(fn BenchmarkFunc) *Proxy {
	if fn == nil {
		return p
	}
	p.mu.Lock()
	p.bench = append(p.bench, fn)
	p.mu.Unlock()
	return p
}

// Catch appends a hook that runs when a call fails. Use [CatchAs] to
// restrict a hook to a specific error type.
func (p *Proxy) Catch(fn CatchFunc) *Proxy {
	if fn == nil {
		return p
	}
	p.mu.Lock()
	p.catch = append(p.catch, fn)
	p.mu.Unlock()
	return p
}

// Use applies decorators in order.
func (p *Proxy) Use(decorators ...Decorator) *Proxy {
	for _, d := range decorators {
		if d != nil {
			d.Decorate(p)
		}
	}
	return p
}

// CatchAs returns a CatchFunc that only fires when the error chain contains
// an E, handing fn the matched value.
func CatchAs[E error](fn func(ctx context.Context, err E)) CatchFunc {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, err error) {
		var target E
		if errors.As(err, &target) {
			fn(ctx, target)
		}
	}
}

// hooks returns a consistent snapshot of the attached hooks.
func (p *Proxy) hooks() ([]BeforeFunc, []BenchmarkFunc, []CatchFunc) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.before, p.bench, p.catch
}

// Invoke runs call through the proxy's hooks. Before hooks fire first; if
// call returns an error the catch hooks fire and the error is returned
// unchanged, otherwise the benchmark hooks fire with the elapsed time. A
// panic inside call reaches the catch hooks as a *PanicError and is then
// re-raised with its original value.
func (p *Proxy) Invoke(ctx context.Context, m Method, args []any, call func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	before, bench, catch := p.hooks()
	ctx = ContextWithMethod(ctx, m)

	for _, fn := range before {
		fn(ctx, m, args)
	}

	if call == nil {
		return nil
	}

	start := p.clock()
	err := p.run(ctx, call, catch)
	elapsed := p.clock().Sub(start)

	if err != nil {
		for _, fn := range catch {
			fn(ctx, err)
		}
		return err
	}

	ms := float64(elapsed) / float64(time.Millisecond)
	for _, fn := range bench {
		fn(ctx, ms, m, args)
	}
	return nil
}

// run executes call, routing a panic through the catch hooks before
// letting it continue up the stack.
func (p *Proxy) run(ctx context.Context, call func(context.Context) error, catch []CatchFunc) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		perr := newPanicError(r)
		for _, fn := range catch {
			fn(ctx, perr)
		}
		panic(r)
	}()
	return call(ctx)
}

// newPanicError captures the panicking goroutine's stack alongside value.
func newPanicError(value any) *PanicError {
	pcs := make([]uintptr, maxPanicFrames)
	// Skip runtime.Callers, newPanicError and the deferred recover closure.
	n := runtime.Callers(3, pcs)
	return &PanicError{Value: value, pcs: pcs[:n]}
}
