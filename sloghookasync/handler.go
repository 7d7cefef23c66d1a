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

package sloghookasync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultQueueSize = 1024

// DropMode controls how the handler behaves when the queue is full.
type DropMode int

const (
	// DropModeBlock blocks the caller until the queue has room.
	DropModeBlock DropMode = iota
	// DropModeDropNewest discards the incoming record.
	DropModeDropNewest
	// DropModeDropOldest discards the oldest queued record to make room.
	DropModeDropOldest
)

// ErrFlushTimeout indicates Close returned before the queue was drained.
var ErrFlushTimeout = errors.New("sloghookasync: flush timeout")

// DropHandler observes records the wrapper discarded.
type DropHandler func(ctx context.Context, rec slog.Record)

// Config controls the wrapper. The zero value is not useful; Wrap starts
// from defaults and applies options on top.
type Config struct {
	Enabled      bool
	QueueSize    int
	WorkerCount  int
	DropMode     DropMode
	OnDrop       DropHandler
	ErrorWriter  io.Writer
	FlushTimeout time.Duration
}

// Option customizes Config.
type Option func(*Config)

// WithEnabled toggles the wrapper. A disabled wrapper returns the inner
// handler unchanged.
func WithEnabled(enabled bool) Option {
	return func(cfg *Config) { cfg.Enabled = enabled }
}

// WithQueueSize sets the queue capacity. Zero yields an unbuffered queue.
func WithQueueSize(size int) Option {
	return func(cfg *Config) { cfg.QueueSize = size }
}

// WithWorkerCount sets how many goroutines drain the queue. With more than
// one worker, records may reach the inner handler out of order.
func WithWorkerCount(count int) Option {
	return func(cfg *Config) { cfg.WorkerCount = count }
}

// WithDropMode sets the overflow strategy.
func WithDropMode(mode DropMode) Option {
	return func(cfg *Config) { cfg.DropMode = mode }
}

// WithOnDrop registers a callback for discarded records.
func WithOnDrop(fn DropHandler) Option {
	return func(cfg *Config) { cfg.OnDrop = fn }
}

// WithErrorWriter directs inner handler errors and recovered panics to w.
// nil silences them.
func WithErrorWriter(w io.Writer) Option {
	return func(cfg *Config) { cfg.ErrorWriter = w }
}

// WithFlushTimeout bounds how long Close waits for the queue to drain.
func WithFlushTimeout(timeout time.Duration) Option {
	return func(cfg *Config) { cfg.FlushTimeout = timeout }
}

// envConfig mirrors the SLOGHOOK_ASYNC_* variables. Fields are strings so
// unset variables leave the current configuration alone.
type envConfig struct {
	Enabled      string `env:"SLOGHOOK_ASYNC_ENABLED"`
	QueueSize    string `env:"SLOGHOOK_ASYNC_QUEUE_SIZE"`
	Workers      string `env:"SLOGHOOK_ASYNC_WORKERS"`
	DropMode     string `env:"SLOGHOOK_ASYNC_DROP_MODE"`
	FlushTimeout string `env:"SLOGHOOK_ASYNC_FLUSH_TIMEOUT"`
}

// WithEnv overlays configuration from SLOGHOOK_ASYNC_* environment
// variables. Malformed values are ignored.
func WithEnv() Option {
	return func(cfg *Config) {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return
		}
		env.apply(cfg)
	}
}

func (e envConfig) apply(cfg *Config) {
	if b, ok := parseBool(e.Enabled); ok {
		cfg.Enabled = b
	}
	if n, ok := parseInt(e.QueueSize); ok {
		cfg.QueueSize = n
	}
	if n, ok := parseInt(e.Workers); ok {
		cfg.WorkerCount = n
	}
	switch strings.ToLower(strings.TrimSpace(e.DropMode)) {
	case "block":
		cfg.DropMode = DropModeBlock
	case "drop_newest", "drop-newest":
		cfg.DropMode = DropModeDropNewest
	case "drop_oldest", "drop-oldest":
		cfg.DropMode = DropModeDropOldest
	}
	if raw := strings.TrimSpace(e.FlushTimeout); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.FlushTimeout = d
		}
	}
}

// Middleware returns Wrap as a handler middleware.
func Middleware(opts ...Option) func(slog.Handler) slog.Handler {
	return func(inner slog.Handler) slog.Handler {
		return Wrap(inner, opts...)
	}
}

// Wrap returns an asynchronous handler around inner, or inner itself when
// the configuration disables the wrapper.
func Wrap(inner slog.Handler, opts ...Option) slog.Handler {
	cfg := buildConfig(opts)
	if !cfg.Enabled {
		return inner
	}
	return newHandler(inner, cfg)
}

// Handler is the asynchronous slog.Handler. Handlers derived through
// WithAttrs and WithGroup share one queue and one set of workers.
type Handler struct {
	inner slog.Handler
	q     *queue
}

type queue struct {
	items    chan queuedRecord
	dropMode DropMode
	onDrop   DropHandler
	errOut   io.Writer
	timeout  time.Duration
	closer   func() error

	workers   sync.WaitGroup
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

type queuedRecord struct {
	ctx     context.Context
	rec     slog.Record
	handler slog.Handler
}

func newHandler(inner slog.Handler, cfg Config) *Handler {
	q := &queue{
		items:    make(chan queuedRecord, cfg.QueueSize),
		dropMode: cfg.DropMode,
		onDrop:   cfg.OnDrop,
		errOut:   cfg.ErrorWriter,
		timeout:  cfg.FlushTimeout,
		closer:   closerFor(inner),
	}
	q.workers.Add(cfg.WorkerCount)
	for range cfg.WorkerCount {
		go q.work()
	}
	return &Handler{inner: inner, q: q}
}

func (q *queue) work() {
	defer q.workers.Done()
	for item := range q.items {
		q.deliver(item)
	}
}

// deliver hands one record to its handler, reporting failures instead of
// letting them kill the worker.
func (q *queue) deliver(item queuedRecord) {
	defer func() {
		if r := recover(); r != nil {
			q.report("sloghookasync: recovered panic from handler: %v\n", r)
		}
	}()
	if err := item.handler.Handle(item.ctx, item.rec); err != nil {
		q.report("sloghookasync: handler error: %v\n", err)
	}
}

func (q *queue) report(format string, args ...any) {
	if q.errOut != nil {
		_, _ = fmt.Fprintf(q.errOut, format, args...)
	}
}

func (q *queue) drop(item queuedRecord) {
	if q.onDrop != nil {
		q.onDrop(item.ctx, item.rec)
	}
}

// Enabled defers to the inner handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle queues a copy of rec. Records arriving after Close are dropped.
func (h *Handler) Handle(ctx context.Context, rec slog.Record) error {
	item := queuedRecord{ctx: ctx, rec: rec.Clone(), handler: h.inner}
	if h.q.closed.Load() {
		h.q.drop(item)
		return nil
	}
	h.q.enqueue(item)
	return nil
}

// WithAttrs returns a child handler sharing the queue.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs), q: h.q}
}

// WithGroup returns a child handler sharing the queue.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name), q: h.q}
}

// enqueue applies the drop policy. A send racing with Close panics on the
// closed channel; the record is then treated as dropped.
func (q *queue) enqueue(item queuedRecord) {
	defer func() {
		if recover() != nil {
			q.drop(item)
		}
	}()

	switch q.dropMode {
	case DropModeDropNewest:
		select {
		case q.items <- item:
		default:
			q.drop(item)
		}
	case DropModeDropOldest:
		for {
			select {
			case q.items <- item:
				return
			default:
			}
			select {
			case old := <-q.items:
				q.drop(old)
			default:
				// Unbuffered queue with no waiting worker.
				q.drop(item)
				return
			}
		}
	default:
		q.items <- item
	}
}

// Close stops accepting records, waits for queued ones to be written (up to
// the flush timeout) and then closes the inner handler if it has a Close
// method. It is safe to call more than once.
func (h *Handler) Close() error {
	q := h.q
	q.closeOnce.Do(func() {
		if q.closed.CompareAndSwap(false, true) {
			close(q.items)
		}

		done := make(chan struct{})
		go func() {
			q.workers.Wait()
			close(done)
		}()

		if q.timeout > 0 {
			timer := time.NewTimer(q.timeout)
			defer timer.Stop()
			select {
			case <-done:
			case <-timer.C:
				q.closeErr = ErrFlushTimeout
			}
		} else {
			<-done
		}

		if q.closer != nil {
			if err := q.closer(); err != nil && q.closeErr == nil {
				q.closeErr = err
			}
		}
	})
	return q.closeErr
}

// closerFor extracts a Close function from inner when available.
func closerFor(inner slog.Handler) func() error {
	switch c := inner.(type) {
	case interface{ Close() error }:
		return c.Close
	case interface{ Close() }:
		return func() error {
			c.Close()
			return nil
		}
	}
	return nil
}

// buildConfig applies options over defaults and clamps invalid values.
func buildConfig(opts []Option) Config {
	cfg := Config{
		Enabled:     true,
		QueueSize:   defaultQueueSize,
		WorkerCount: 1,
		DropMode:    DropModeBlock,
		ErrorWriter: os.Stderr,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	return cfg
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "on":
		return true, true
	case "0", "f", "false", "no", "off":
		return false, true
	}
	return false, false
}

func parseInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
