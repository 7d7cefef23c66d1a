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

package sloghook_test

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/pjscruggs/sloghook"
	"github.com/pjscruggs/sloghook/intercept"
)

// newStdoutRegistry returns a registry writing untimed text lines to stdout.
func newStdoutRegistry() (*sloghook.Registry, func()) {
	h, err := sloghook.NewHandler(os.Stdout, sloghook.WithTime(false))
	if err != nil {
		panic(err)
	}
	return sloghook.NewRegistry(h), func() { _ = h.Close() }
}

func ExampleLogCalls() {
	reg, done := newStdoutRegistry()
	defer done()

	p := intercept.New("example.Calculator").Use(
		sloghook.LogCalls(reg, sloghook.WithCallDetail(sloghook.CallDetailArgs)),
	)
	add := intercept.Func(p, "Add", func(a, b int) int { return a + b }, "a", "b")
	add(2, 3)
	// Output:
	// INFO|example.Calculator|called method Add(int a, int b) with arguments (2, 3)
}

func ExampleLogBenchmark() {
	reg, done := newStdoutRegistry()
	defer done()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	readings := 0
	clock := func() time.Time {
		readings++
		return start.Add(time.Duration(readings) * 2500 * time.Microsecond)
	}

	p := intercept.New("example.Calculator", intercept.WithClock(clock)).Use(
		sloghook.LogBenchmark(reg),
	)
	_ = p.Invoke(context.Background(), p.Method("Warmup"), nil, func(context.Context) error { return nil })
	// Output:
	// INFO|example.Calculator|method Warmup() took 2.50 ms
}

func ExampleLogCallsObject() {
	reg, done := newStdoutRegistry()
	defer done()

	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	p := intercept.New("example.Calculator").Use(
		sloghook.LogCallsObject(reg, sloghook.WithClock(func() time.Time { return at })),
	)
	_ = p.Invoke(context.Background(), p.Method("Reset"), nil, nil)
	// Output:
	// INFO|example.Calculator|{"methodName":"Reset","timestamp":"2025-03-04T05:06:07.0000000+00:00","className":"example.Calculator"}
}

func ExampleLogExceptions() {
	reg, done := newStdoutRegistry()
	defer done()

	p := intercept.New("example.Calculator").Use(sloghook.LogExceptions(reg))
	_ = p.Invoke(context.Background(), p.Method("Divide"), nil, func(context.Context) error {
		return errors.New("division by zero")
	})
	// Output:
	// ERROR|example.Calculator|{"type":"*errors.errorString","message":"division by zero"}
}
