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
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// stepClock returns a clock that advances by step on every reading.
func stepClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now
		now = now.Add(step)
		return t
	}
}

type codedError struct{ code int }

func (e *codedError) Error() string { return fmt.Sprintf("code %d", e.code) }

// TestInvokeRunsHooksInAttachmentOrder checks ordering across hook kinds.
func TestInvokeRunsHooksInAttachmentOrder(t *testing.T) {
	t.Parallel()

	var events []string
	p := New("pkg.Svc", WithClock(stepClock(1500*time.Microsecond))).
		BeforeInvoke(func(context.Context, Method, []any) { events = append(events, "before-1") }).
		Benchmark(func(_ context.Context, ms float64, _ Method, _ []any) {
			events = append(events, fmt.Sprintf("bench-1 %.1f", ms))
		}).
		BeforeInvoke(func(context.Context, Method, []any) { events = append(events, "before-2") }).
		Benchmark(func(context.Context, float64, Method, []any) { events = append(events, "bench-2") }).
		Catch(func(context.Context, error) { events = append(events, "catch") })

	m := p.Method("Do", Param{Type: "int", Name: "times"})
	err := p.Invoke(context.Background(), m, []any{3}, func(context.Context) error {
		events = append(events, "call")
		return nil
	})
	if err != nil {
		t.Fatalf("Invoke returned %v", err)
	}

	want := []string{"before-1", "before-2", "call", "bench-1 1.5", "bench-2"}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

// TestInvokeErrorSkipsBenchmarkAndPropagates ensures catch hooks see the
// error, benchmark hooks do not fire, and the caller receives the error.
func TestInvokeErrorSkipsBenchmarkAndPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var benchCalls int
	var caught []error
	p := New("pkg.Svc").
		Benchmark(func(context.Context, float64, Method, []any) { benchCalls++ }).
		Catch(func(_ context.Context, err error) { caught = append(caught, err) })

	err := p.Invoke(context.Background(), p.Method("Do"), nil, func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Invoke returned %v, want %v", err, boom)
	}
	if benchCalls != 0 {
		t.Fatalf("benchmark fired %d times on error", benchCalls)
	}
	if len(caught) != 1 || caught[0] != boom {
		t.Fatalf("caught = %v", caught)
	}
}

// TestInvokePanicReachesCatchAndRepanics verifies panic handling.
func TestInvokePanicReachesCatchAndRepanics(t *testing.T) {
	t.Parallel()

	var caught error
	p := New("pkg.Svc").Catch(func(_ context.Context, err error) { caught = err })

	defer func() {
		r := recover()
		if r != "kaboom" {
			t.Fatalf("recovered %v, want kaboom", r)
		}
		var perr *PanicError
		if !errors.As(caught, &perr) {
			t.Fatalf("caught %T, want *PanicError", caught)
		}
		if perr.Value != "kaboom" {
			t.Fatalf("PanicError.Value = %v", perr.Value)
		}
		if len(perr.StackTrace()) == 0 {
			t.Fatalf("PanicError carries no stack")
		}
		if perr.Error() != "panic: kaboom" {
			t.Fatalf("Error() = %q", perr.Error())
		}
	}()

	_ = p.Invoke(context.Background(), p.Method("Do"), nil, func(context.Context) error {
		panic("kaboom")
	})
	t.Fatalf("Invoke returned instead of panicking")
}

// TestPanicErrorUnwrap exposes error panic values through errors.Is.
func TestPanicErrorUnwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("inner")
	if !errors.Is(&PanicError{Value: inner}, inner) {
		t.Fatalf("errors.Is did not see panic value")
	}
	if (&PanicError{Value: 42}).Unwrap() != nil {
		t.Fatalf("non-error panic value should not unwrap")
	}
}

// TestCatchAsFiltersByType only fires for matching error types.
func TestCatchAsFiltersByType(t *testing.T) {
	t.Parallel()

	var codes []int
	p := New("pkg.Svc").Catch(CatchAs(func(_ context.Context, err *codedError) {
		codes = append(codes, err.code)
	}))

	_ = p.Invoke(context.Background(), p.Method("A"), nil, func(context.Context) error { return errors.New("plain") })
	_ = p.Invoke(context.Background(), p.Method("B"), nil, func(context.Context) error {
		return fmt.Errorf("wrapped: %w", &codedError{code: 7})
	})

	if diff := cmp.Diff([]int{7}, codes); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if CatchAs[*codedError](nil) != nil {
		t.Fatalf("CatchAs(nil) should return nil")
	}
}

// TestInvokeAttachesMethodToContext exposes the descriptor to the call and hooks.
func TestInvokeAttachesMethodToContext(t *testing.T) {
	t.Parallel()

	p := New("pkg.Svc")
	var fromHook, fromCall Method
	p.BeforeInvoke(func(ctx context.Context, _ Method, _ []any) {
		fromHook, _ = MethodFromContext(ctx)
	})
	m := p.Method("Lookup", Param{Type: "string", Name: "key"})
	_ = p.Invoke(context.Background(), m, []any{"k"}, func(ctx context.Context) error {
		var ok bool
		fromCall, ok = MethodFromContext(ctx)
		if !ok {
			t.Errorf("method missing from call context")
		}
		return nil
	})
	if diff := cmp.Diff(m, fromHook); diff != "" {
		t.Fatalf("hook method mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(m, fromCall); diff != "" {
		t.Fatalf("call method mismatch (-want +got):\n%s", diff)
	}
	if _, ok := MethodFromContext(context.Background()); ok {
		t.Fatalf("unexpected method in bare context")
	}
}

// TestUseAppliesDecoratorsAndIgnoresNil composes decorators.
func TestUseAppliesDecoratorsAndIgnoresNil(t *testing.T) {
	t.Parallel()

	var lines int
	logCall := DecoratorFunc(func(p *Proxy) {
		p.BeforeInvoke(func(context.Context, Method, []any) { lines++ })
	})
	p := For[sampleService]().Use(logCall, nil, logCall)
	p.BeforeInvoke(nil).Benchmark(nil).Catch(nil)

	if p.TypeName() != "github.com/pjscruggs/sloghook/intercept.sampleService" {
		t.Fatalf("TypeName() = %q", p.TypeName())
	}
	_ = p.Invoke(nil, p.Method("Do"), nil, nil) //nolint:staticcheck // nil context is tolerated
	if lines != 2 {
		t.Fatalf("decorator hooks fired %d times, want 2", lines)
	}
}

// TestProxyConcurrentAttachAndInvoke exercises the hook lock under -race.
func TestProxyConcurrentAttachAndInvoke(t *testing.T) {
	t.Parallel()

	p := New("pkg.Svc")
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.BeforeInvoke(func(context.Context, Method, []any) {})
		}()
		go func() {
			defer wg.Done()
			_ = p.Invoke(context.Background(), p.Method("Do"), nil, func(context.Context) error { return nil })
		}()
	}
	wg.Wait()
}
