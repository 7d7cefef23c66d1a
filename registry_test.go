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

package sloghook

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// newCaptureRegistry returns a registry writing time-less text lines into
// the returned buffer at every level.
func newCaptureRegistry(t *testing.T) (*Registry, *syncBuffer) {
	t.Helper()
	buf := &syncBuffer{}
	h, err := NewHandler(buf, WithTime(false), WithMinLevel(LevelTrace.Level()))
	if err != nil {
		t.Fatalf("NewHandler returned %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return NewRegistry(h), buf
}

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Lines returns the non-empty lines written so far.
func (b *syncBuffer) Lines() []string {
	text := strings.TrimRight(b.String(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// TestRegistryReturnsSameLoggerPerName ensures one handle per name.
func TestRegistryReturnsSameLoggerPerName(t *testing.T) {
	t.Parallel()

	reg, buf := newCaptureRegistry(t)
	a := reg.Logger("pkg.A")
	if reg.Logger("pkg.A") != a {
		t.Fatalf("second lookup returned a different logger")
	}
	if reg.Logger("pkg.B") == a {
		t.Fatalf("distinct names share a logger")
	}
	if reg.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", reg.Len())
	}
	if diff := cmp.Diff([]string{"pkg.A", "pkg.B"}, reg.Names()); diff != "" {
		t.Fatalf("Names mismatch (-want +got):\n%s", diff)
	}

	a.Info("hello")
	if diff := cmp.Diff([]string{"INFO|pkg.A|hello"}, buf.Lines()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

// TestRegistryConcurrentFirstAccess hands every goroutine the same logger.
func TestRegistryConcurrentFirstAccess(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(slog.DiscardHandler)
	const workers = 32
	got := make([]*slog.Logger, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = reg.Logger("pkg.Shared")
		}()
	}
	wg.Wait()

	for i, l := range got {
		if l != got[0] {
			t.Fatalf("worker %d received a different logger", i)
		}
	}
	if reg.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", reg.Len())
	}
}

// TestNilRegistryFallsBackToDefault lets decorators accept a nil registry.
func TestNilRegistryFallsBackToDefault(t *testing.T) {
	t.Parallel()

	var reg *Registry
	if reg.orDefault() == nil {
		t.Fatalf("orDefault returned nil")
	}
	if NewRegistry(nil).Handler() == nil {
		t.Fatalf("NewRegistry(nil) has no handler")
	}
}

// TestNilRegistryIsShared hands every nil-registry decorator the same
// default registry, and therefore the same logger per type.
func TestNilRegistryIsShared(t *testing.T) {
	t.Parallel()

	var a, b *Registry
	if a.orDefault() != b.orDefault() {
		t.Fatalf("nil registries resolved to different defaults")
	}
	if a.orDefault().Logger(svcName) != b.orDefault().Logger(svcName) {
		t.Fatalf("default registry handed out two loggers for %q", svcName)
	}
}
