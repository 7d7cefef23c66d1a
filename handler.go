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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pjscruggs/sloghook/sloghookasync"
)

var (
	// ErrInvalidTarget indicates an unsupported SLOGHOOK_TARGET value.
	ErrInvalidTarget = errors.New("sloghook: invalid redirect target")

	// ErrInvalidFormat indicates an unsupported SLOGHOOK_FORMAT value.
	ErrInvalidFormat = errors.New("sloghook: invalid output format")
)

// Format selects how the backend handler renders records.
type Format int

const (
	// FormatText renders "[time|]LEVEL|logger|message key=value" lines.
	FormatText Format = iota
	// FormatJSON renders one slog JSON object per line.
	FormatJSON
)

// String returns "text" or "json".
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat converts "text" or "json" (case-insensitive) into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "plain":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// RotationConfig controls size-based rotation of a log file.
type RotationConfig struct {
	// MaxSizeMB is the size in megabytes at which the file rotates.
	// Zero uses lumberjack's default of 100.
	MaxSizeMB int
	// MaxBackups is how many rotated files to keep. Zero keeps all.
	MaxBackups int
	// MaxAgeDays removes rotated files older than this. Zero disables.
	MaxAgeDays int
	// Compress gzips rotated files.
	Compress bool
}

// HandlerOption configures NewHandler.
type HandlerOption func(*handlerOptions)

type targetKind int

const (
	targetWriter targetKind = iota
	targetFile
	targetRotatingFile
)

type outputTarget struct {
	kind     targetKind
	writer   io.Writer
	path     string
	rotation RotationConfig
}

type handlerConfig struct {
	Level     slog.Level
	Format    Format
	EmitTime  bool
	AddSource bool
	Target    *outputTarget
}

type handlerOptions struct {
	level          *slog.Level
	levelVar       *slog.LevelVar
	format         *Format
	emitTime       *bool
	addSource      *bool
	target         *outputTarget
	middlewares    []Middleware
	internalLogger *slog.Logger
	readEnv        bool
	asyncEnabled   bool
	asyncOpts      []sloghookasync.Option
}

// Handler is the backend slog.Handler decorator output is written to. It
// owns any file it opened and must be closed when logging stops.
type Handler struct {
	slog.Handler

	cfg              *handlerConfig
	internalLogger   *slog.Logger
	switchableWriter *SwitchableWriter
	ownedFile        *os.File
	rotator          *lumberjack.Logger
	async            *sloghookasync.Handler
	levelVar         *slog.LevelVar

	mu        sync.Mutex
	closeOnce sync.Once
}

// NewHandler builds the backend handler. Output goes to defaultWriter
// (os.Stdout when nil) unless a redirect option, or SLOGHOOK_TARGET under
// WithEnv, selects another destination. Explicit options take precedence
// over environment values.
//
// Example:
//
//	h, err := sloghook.NewHandler(os.Stdout, sloghook.WithMinLevel(slog.LevelDebug))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer h.Close()
//	reg := sloghook.NewRegistry(h)
func NewHandler(defaultWriter io.Writer, opts ...HandlerOption) (*Handler, error) {
	builder := &handlerOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(builder)
		}
	}

	internalLogger := builder.internalLogger
	if internalLogger == nil {
		internalLogger = slog.New(slog.DiscardHandler)
	}

	cfg := handlerConfig{
		Level:    slog.LevelInfo,
		Format:   FormatText,
		EmitTime: true,
	}
	if builder.readEnv {
		if err := applyEnv(&cfg, internalLogger); err != nil {
			return nil, err
		}
	}
	applyHandlerOptions(&cfg, builder)
	if cfg.Target == nil {
		if defaultWriter == nil {
			defaultWriter = os.Stdout
		}
		cfg.Target = &outputTarget{kind: targetWriter, writer: defaultWriter}
	}

	h := &Handler{
		cfg:            &cfg,
		internalLogger: internalLogger,
	}

	if cfg.Target.kind != targetWriter && cfg.Target.path == "" {
		return nil, fmt.Errorf("%w: empty file path", ErrInvalidTarget)
	}

	var out io.Writer
	switch cfg.Target.kind {
	case targetFile:
		file, err := openLogFile(cfg.Target.path)
		if err != nil {
			return nil, err
		}
		h.ownedFile = file
		h.switchableWriter = NewSwitchableWriter(file)
		out = h.switchableWriter
	case targetRotatingFile:
		h.rotator = newRotator(cfg.Target.path, cfg.Target.rotation)
		out = h.rotator
	default:
		out = cfg.Target.writer
	}

	h.levelVar = builder.levelVar
	if h.levelVar == nil {
		h.levelVar = new(slog.LevelVar)
	}
	h.levelVar.Set(cfg.Level)

	handler := newCoreHandler(out, &cfg, h.levelVar)
	for i := len(builder.middlewares) - 1; i >= 0; i-- {
		handler = builder.middlewares[i](handler)
	}
	if builder.asyncEnabled {
		handler = sloghookasync.Wrap(handler, builder.asyncOpts...)
		if ah, ok := handler.(*sloghookasync.Handler); ok {
			h.async = ah
		}
	}
	h.Handler = handler

	internalLogger.Debug("sloghook handler ready",
		slog.String("format", cfg.Format.String()),
		slog.String("level", Level(cfg.Level).String()),
		slog.Bool("async", h.async != nil),
	)
	return h, nil
}

// newCoreHandler returns the formatting handler for cfg.Format.
func newCoreHandler(w io.Writer, cfg *handlerConfig, level slog.Leveler) slog.Handler {
	if cfg.Format == FormatJSON {
		emitTime := cfg.EmitTime
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: cfg.AddSource,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if len(groups) > 0 {
					return a
				}
				switch a.Key {
				case slog.TimeKey:
					if !emitTime {
						return slog.Attr{}
					}
				case slog.LevelKey:
					if lvl, ok := a.Value.Any().(slog.Level); ok {
						a.Value = slog.StringValue(Level(lvl).String())
					}
				}
				return a
			},
		})
	}
	return newLineHandler(w, level, cfg.EmitTime)
}

func openLogFile(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("sloghook: open log file %q: %w", path, err)
	}
	return file, nil
}

func newRotator(path string, rc RotationConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rc.MaxSizeMB,
		MaxBackups: rc.MaxBackups,
		MaxAge:     rc.MaxAgeDays,
		Compress:   rc.Compress,
	}
}

// Close flushes the async queue when WithAsync is used and releases files
// opened by the handler. Writers supplied by the caller are left open. It
// is safe to call multiple times.
func (h *Handler) Close() error {
	var firstErr error
	record := func(msg string, err error) {
		if err == nil {
			return
		}
		h.internalLogger.Error(msg, slog.Any("error", err))
		if firstErr == nil {
			firstErr = err
		}
	}

	h.closeOnce.Do(func() {
		if h.async != nil {
			record("failed to flush async queue", h.async.Close())
		}

		h.mu.Lock()
		defer h.mu.Unlock()
		if h.switchableWriter != nil {
			record("failed to close log file", h.switchableWriter.Close())
			h.switchableWriter = nil
			h.ownedFile = nil
		}
		if h.rotator != nil {
			record("failed to close rotating log file", h.rotator.Close())
		}
	})
	return firstErr
}

// ReopenLogFile reopens the handler's log file, typically after an
// external tool such as logrotate moved it. For rotating files the current
// file is closed and reopened on the next write. Other targets are a no-op.
func (h *Handler) ReopenLogFile() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rotator != nil {
		if err := h.rotator.Close(); err != nil {
			return fmt.Errorf("sloghook: close rotating log file: %w", err)
		}
		return nil
	}
	if h.switchableWriter == nil || h.cfg.Target.kind != targetFile {
		return nil
	}

	file, err := openLogFile(h.cfg.Target.path)
	if err != nil {
		return err
	}
	old := h.ownedFile
	h.switchableWriter.SetWriter(file)
	h.ownedFile = file
	if old != nil {
		if err := old.Close(); err != nil {
			h.internalLogger.Warn("error closing previous log file", slog.Any("error", err))
		}
	}
	return nil
}

// Rotate forces a rotation of a WithRotatingFile target. Other targets are a
// no-op.
func (h *Handler) Rotate() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rotator == nil {
		return nil
	}
	if err := h.rotator.Rotate(); err != nil {
		return fmt.Errorf("sloghook: rotate log file: %w", err)
	}
	return nil
}

// SetLevel updates the minimum level accepted by the handler at runtime.
func (h *Handler) SetLevel(level slog.Level) {
	if h == nil || h.levelVar == nil {
		return
	}
	h.levelVar.Set(level)
}

// Level reports the handler's current minimum level.
func (h *Handler) Level() slog.Level {
	if h == nil || h.levelVar == nil {
		return slog.LevelInfo
	}
	return h.levelVar.Level()
}

// LevelVar returns the slog.LevelVar gating records.
func (h *Handler) LevelVar() *slog.LevelVar {
	if h == nil {
		return nil
	}
	return h.levelVar
}

// applyHandlerOptions merges explicit options over cfg.
func applyHandlerOptions(cfg *handlerConfig, o *handlerOptions) {
	if o.level != nil {
		cfg.Level = *o.level
	}
	if o.levelVar != nil && o.level == nil {
		cfg.Level = o.levelVar.Level()
	}
	if o.format != nil {
		cfg.Format = *o.format
	}
	if o.emitTime != nil {
		cfg.EmitTime = *o.emitTime
	}
	if o.addSource != nil {
		cfg.AddSource = *o.addSource
	}
	if o.target != nil {
		t := *o.target
		cfg.Target = &t
	}
}

// WithInternalLogger injects a logger for the handler's own diagnostics.
// They are discarded by default.
func WithInternalLogger(logger *slog.Logger) HandlerOption {
	return func(o *handlerOptions) {
		o.internalLogger = logger
	}
}

// WithMinLevel sets the minimum level accepted by the handler. It defaults
// to slog.LevelInfo.
func WithMinLevel(level slog.Level) HandlerOption {
	return func(o *handlerOptions) {
		o.level = &level
	}
}

// WithLevelVar shares levelVar with the handler so external code can adjust
// the level at runtime. Unless WithMinLevel is also given, the handler keeps
// levelVar's current value.
func WithLevelVar(levelVar *slog.LevelVar) HandlerOption {
	return func(o *handlerOptions) {
		if levelVar != nil {
			o.levelVar = levelVar
		}
	}
}

// WithOutputFormat selects text or JSON output.
func WithOutputFormat(format Format) HandlerOption {
	return func(o *handlerOptions) {
		o.format = &format
	}
}

// WithTime toggles the time column (text) or time field (JSON). It is
// enabled by default.
func WithTime(enabled bool) HandlerOption {
	return func(o *handlerOptions) {
		o.emitTime = &enabled
	}
}

// WithSourceLocationEnabled adds the caller's source location to JSON
// output. Text output ignores it.
func WithSourceLocationEnabled(enabled bool) HandlerOption {
	return func(o *handlerOptions) {
		o.addSource = &enabled
	}
}

// WithRedirectToStdout sends output to os.Stdout.
func WithRedirectToStdout() HandlerOption {
	return WithRedirectWriter(os.Stdout)
}

// WithRedirectToStderr sends output to os.Stderr.
func WithRedirectToStderr() HandlerOption {
	return WithRedirectWriter(os.Stderr)
}

// WithRedirectWriter sends output to w without taking ownership of it.
func WithRedirectWriter(w io.Writer) HandlerOption {
	return func(o *handlerOptions) {
		if w == nil {
			return
		}
		o.target = &outputTarget{kind: targetWriter, writer: w}
	}
}

// WithRedirectToFile appends output to the file at path, creating it if
// needed. Parent directories must exist. Handler.ReopenLogFile reopens it.
func WithRedirectToFile(path string) HandlerOption {
	trimmed := strings.TrimSpace(path)
	return func(o *handlerOptions) {
		o.target = &outputTarget{kind: targetFile, path: trimmed}
	}
}

// WithRotatingFile writes to path and rotates it by size according to rc.
// Handler.Rotate forces a rotation.
func WithRotatingFile(path string, rc RotationConfig) HandlerOption {
	trimmed := strings.TrimSpace(path)
	return func(o *handlerOptions) {
		o.target = &outputTarget{kind: targetRotatingFile, path: trimmed, rotation: rc}
	}
}

// WithMiddleware appends a middleware. Middlewares wrap the formatting
// handler from last to first, so the first one supplied sees records first.
func WithMiddleware(mw Middleware) HandlerOption {
	return func(o *handlerOptions) {
		if mw != nil {
			o.middlewares = append(o.middlewares, mw)
		}
	}
}

// WithAsync moves writes onto sloghookasync workers. Handler.Close drains
// the queue.
func WithAsync(opts ...sloghookasync.Option) HandlerOption {
	return func(o *handlerOptions) {
		o.asyncEnabled = true
		o.asyncOpts = append(o.asyncOpts, opts...)
	}
}

// WithEnv makes NewHandler read SLOGHOOK_LEVEL, SLOGHOOK_FORMAT,
// SLOGHOOK_TIME and SLOGHOOK_TARGET. Explicit options still win.
func WithEnv() HandlerOption {
	return func(o *handlerOptions) {
		o.readEnv = true
	}
}
