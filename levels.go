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
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Level represents the severity of a decorator log line, extending
// slog.Level with the TRACE and FATAL severities used by the decorators.
// It keeps the underlying integer representation of slog.Level so values
// can be passed anywhere a slog.Leveler is accepted.
type Level slog.Level

// Severity constants mapped onto slog.Level integer values. The four
// standard slog levels keep their values; TRACE sits below DEBUG and FATAL
// above ERROR with the same spacing.
const (
	// LevelTrace is the most verbose level, below slog's Debug.
	LevelTrace Level = -8

	// LevelDebug matches slog.LevelDebug.
	LevelDebug Level = Level(slog.LevelDebug) // -4

	// LevelInfo matches slog.LevelInfo. It is the default for call,
	// benchmark and structured-object logging.
	LevelInfo Level = Level(slog.LevelInfo) // 0

	// LevelWarn matches slog.LevelWarn. Configuration warnings use it.
	LevelWarn Level = Level(slog.LevelWarn) // 4

	// LevelError matches slog.LevelError. It is the default for exception
	// logging.
	LevelError Level = Level(slog.LevelError) // 8

	// LevelFatal is the highest named severity. Logging at LevelFatal never
	// terminates the process.
	LevelFatal Level = 12
)

var levelNames = []struct {
	level Level
	name  string
}{
	{LevelTrace, "TRACE"},
	{LevelDebug, "DEBUG"},
	{LevelInfo, "INFO"},
	{LevelWarn, "WARN"},
	{LevelError, "ERROR"},
	{LevelFatal, "FATAL"},
}

// String returns the canonical name of the level ("TRACE", "INFO", ...).
// Values between named levels render as the nearest lower name plus the
// offset, for example "INFO+2". Values below LevelTrace fall back to
// slog.Level's own formatting.
func (l Level) String() string {
	if l < LevelTrace {
		return slog.Level(l).String()
	}
	base := levelNames[0]
	for _, n := range levelNames {
		if l < n.level {
			break
		}
		base = n
	}
	if l == base.level {
		return base.name
	}
	return fmt.Sprintf("%s+%d", base.name, int(l-base.level))
}

// Level returns the underlying slog.Level value so Level satisfies
// slog.Leveler.
func (l Level) Level() slog.Level {
	return slog.Level(l)
}

// ParseLevel converts a case-insensitive level name into a Level. It
// accepts the names produced by String, including "+N" and "-N" offsets,
// the alias "WARNING", and bare integers.
func ParseLevel(s string) (Level, error) {
	text := strings.ToUpper(strings.TrimSpace(s))
	if text == "" {
		return 0, fmt.Errorf("sloghook: empty level")
	}
	if n, err := strconv.Atoi(text); err == nil {
		return Level(n), nil
	}

	name, offsetText := text, ""
	if i := strings.IndexAny(text, "+-"); i > 0 {
		name, offsetText = text[:i], text[i:]
	}
	if name == "WARNING" {
		name = "WARN"
	}

	for _, n := range levelNames {
		if n.name != name {
			continue
		}
		if offsetText == "" {
			return n.level, nil
		}
		offset, err := strconv.Atoi(offsetText)
		if err != nil {
			return 0, fmt.Errorf("sloghook: invalid level offset %q: %w", s, err)
		}
		return n.level + Level(offset), nil
	}
	return 0, fmt.Errorf("sloghook: unknown level %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so levels can be read
// from environment variables and config files.
func (l *Level) UnmarshalText(data []byte) error {
	parsed, err := ParseLevel(string(data))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
