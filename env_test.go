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
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnvIgnoredWithoutOptIn leaves configuration alone unless WithEnv is set.
func TestEnvIgnoredWithoutOptIn(t *testing.T) {
	t.Setenv(envFormat, "json")
	t.Setenv(envLevel, "error")

	var buf bytes.Buffer
	h, err := NewHandler(&buf, WithTime(false))
	if err != nil {
		t.Fatalf("NewHandler returned %v", err)
	}
	slog.New(h).Info("plain")
	if got := buf.String(); got != "INFO|-|plain\n" {
		t.Fatalf("output = %q", got)
	}
}

// TestEnvOverridesApply reads level, format and time.
func TestEnvOverridesApply(t *testing.T) {
	t.Setenv(envFormat, "JSON")
	t.Setenv(envLevel, "warn")
	t.Setenv(envTime, "false")

	var buf bytes.Buffer
	h, err := NewHandler(&buf, WithEnv())
	if err != nil {
		t.Fatalf("NewHandler returned %v", err)
	}
	logger := slog.New(h)
	logger.Info("hidden")
	logger.Warn("shown")

	if got, want := buf.String(), `{"level":"WARN","msg":"shown"}`+"\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

// TestEnvExplicitOptionsWin keeps explicit options over the environment.
func TestEnvExplicitOptionsWin(t *testing.T) {
	t.Setenv(envLevel, "error")
	t.Setenv(envTime, "true")

	var buf bytes.Buffer
	h, err := NewHandler(&buf, WithEnv(), WithMinLevel(slog.LevelDebug), WithTime(false))
	if err != nil {
		t.Fatalf("NewHandler returned %v", err)
	}
	slog.New(h).Debug("kept")
	if got := buf.String(); got != "DEBUG|-|kept\n" {
		t.Fatalf("output = %q", got)
	}
}

// TestEnvInvalidValues fails on unknown formats and targets and warns on bad
// levels.
func TestEnvInvalidValues(t *testing.T) {
	t.Run("format", func(t *testing.T) {
		t.Setenv(envFormat, "xml")
		if _, err := NewHandler(nil, WithEnv()); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("err = %v, want ErrInvalidFormat", err)
		}
	})
	t.Run("target", func(t *testing.T) {
		t.Setenv(envTarget, "syslog")
		if _, err := NewHandler(nil, WithEnv()); !errors.Is(err, ErrInvalidTarget) {
			t.Fatalf("err = %v, want ErrInvalidTarget", err)
		}
	})
	t.Run("empty file target", func(t *testing.T) {
		t.Setenv(envTarget, "file:  ")
		if _, err := NewHandler(nil, WithEnv()); !errors.Is(err, ErrInvalidTarget) {
			t.Fatalf("err = %v, want ErrInvalidTarget", err)
		}
	})
	t.Run("level", func(t *testing.T) {
		t.Setenv(envLevel, "loud")
		var diag bytes.Buffer
		h, err := NewHandler(&bytes.Buffer{}, WithEnv(),
			WithInternalLogger(slog.New(slog.NewTextHandler(&diag, nil))))
		if err != nil {
			t.Fatalf("NewHandler returned %v", err)
		}
		if h.Level() != slog.LevelInfo {
			t.Fatalf("Level() = %v, want default", h.Level())
		}
		if !strings.Contains(diag.String(), "invalid log level environment variable") {
			t.Fatalf("missing diagnostic, got %q", diag.String())
		}
	})
}

// TestEnvFileTarget redirects output to a file.
func TestEnvFileTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.log")
	t.Setenv(envTarget, "file:"+path)
	t.Setenv(envTime, "0")

	h, err := NewHandler(&bytes.Buffer{}, WithEnv())
	if err != nil {
		t.Fatalf("NewHandler returned %v", err)
	}
	slog.New(h).Info("to file")
	if err := h.Close(); err != nil {
		t.Fatalf("Close returned %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "INFO|-|to file\n" {
		t.Fatalf("file = %q", data)
	}
}

// TestEnvUsageListsVariables documents every variable.
func TestEnvUsageListsVariables(t *testing.T) {
	t.Parallel()

	usage := EnvUsage()
	for _, name := range []string{envLevel, envFormat, envTime, envTarget} {
		if !strings.Contains(usage, name) {
			t.Errorf("EnvUsage() missing %s:\n%s", name, usage)
		}
	}
}
