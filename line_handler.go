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
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

// TextTimeLayout is the layout of the optional time column in text output.
const TextTimeLayout = "2006-01-02 15:04:05.0000"

// lineHandler renders records as pipe-separated lines:
//
//	[time|]LEVEL|logger|message[ key=value...]
//
// The logger column is taken from the LoggerKey attribute and reads "-"
// when a record carries none.
type lineHandler struct {
	w        io.Writer
	mu       *sync.Mutex
	level    slog.Leveler
	withTime bool

	logger string
	prefix string // group prefix for keys, "" or "a.b."
	attrs  []byte // pre-rendered " key=value" pairs from WithAttrs
}

func newLineHandler(w io.Writer, level slog.Leveler, withTime bool) *lineHandler {
	return &lineHandler{
		w:        w,
		mu:       new(sync.Mutex),
		level:    level,
		withTime: withTime,
	}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.level != nil {
		minLevel = h.level.Level()
	}
	return level >= minLevel
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	logger := h.logger
	var tail []byte
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix == "" && a.Key == LoggerKey && logger == "" {
			logger = a.Value.String()
			return true
		}
		tail = appendAttr(tail, h.prefix, a)
		return true
	})
	if logger == "" {
		logger = "-"
	}

	buf := make([]byte, 0, 64+len(r.Message)+len(h.attrs)+len(tail))
	if h.withTime && !r.Time.IsZero() {
		buf = r.Time.AppendFormat(buf, TextTimeLayout)
		buf = append(buf, '|')
	}
	buf = append(buf, Level(r.Level).String()...)
	buf = append(buf, '|')
	buf = appendEscaped(buf, logger)
	buf = append(buf, '|')
	buf = appendEscaped(buf, r.Message)
	buf = append(buf, h.attrs...)
	buf = append(buf, tail...)
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = append([]byte(nil), h.attrs...)
	for _, a := range attrs {
		if h.prefix == "" && a.Key == LoggerKey {
			clone.logger = a.Value.String()
			continue
		}
		clone.attrs = appendAttr(clone.attrs, h.prefix, a)
	}
	return &clone
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// appendAttr renders a as " key=value", flattening groups into dotted keys.
func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return buf
		}
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, ga := range group {
			buf = appendAttr(buf, inner, ga)
		}
		return buf
	}

	buf = append(buf, ' ')
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')

	var s string
	switch a.Value.Kind() {
	case slog.KindTime:
		s = a.Value.Time().Format(time.RFC3339Nano)
	default:
		s = a.Value.String()
	}
	if needsQuoting(s) {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}

// appendEscaped appends s with control characters written as Go escapes
// (\n, \r, \x01, ...) so a record always occupies exactly one line.
func appendEscaped(buf []byte, s string) []byte {
	if !strings.ContainsFunc(s, unicode.IsControl) {
		return append(buf, s...)
	}
	for _, r := range s {
		if !unicode.IsControl(r) {
			buf = utf8.AppendRune(buf, r)
			continue
		}
		quoted := strconv.QuoteRune(r)
		buf = append(buf, quoted[1:len(quoted)-1]...)
	}
	return buf
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsFunc(s, func(r rune) bool {
		return r == '=' || r == '"' || r == '|' || unicode.IsSpace(r) || !unicode.IsPrint(r)
	})
}
