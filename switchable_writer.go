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
	"io"
	"os"
	"sync"
)

// SwitchableWriter is an io.WriteCloser whose destination can be replaced
// while writes are in flight. Handler uses it for WithRedirectToFile so
// ReopenLogFile can swap the file without rebuilding the handler chain.
type SwitchableWriter struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
}

// NewSwitchableWriter returns a SwitchableWriter writing to w, or to
// io.Discard when w is nil.
func NewSwitchableWriter(w io.Writer) *SwitchableWriter {
	if w == nil {
		w = io.Discard
	}
	return &SwitchableWriter{w: w}
}

// Write forwards p to the current destination. After Close it fails with
// os.ErrClosed.
func (sw *SwitchableWriter) Write(p []byte) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.closed {
		return 0, os.ErrClosed
	}
	n, err := sw.w.Write(p)
	if err != nil {
		return n, fmt.Errorf("write via switchable writer: %w", err)
	}
	return n, nil
}

// SetWriter replaces the destination. The previous destination is not
// closed. A nil w discards subsequent writes.
func (sw *SwitchableWriter) SetWriter(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	sw.mu.Lock()
	sw.w = w
	sw.mu.Unlock()
}

// Writer returns the current destination.
func (sw *SwitchableWriter) Writer() io.Writer {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.w
}

// Close closes the current destination if it is an io.Closer and rejects
// further writes. Calling Close again is a no-op.
func (sw *SwitchableWriter) Close() error {
	sw.mu.Lock()
	if sw.closed {
		sw.mu.Unlock()
		return nil
	}
	sw.closed = true
	current := sw.w
	sw.w = io.Discard
	sw.mu.Unlock()

	if c, ok := current.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close current writer: %w", err)
		}
	}
	return nil
}

var _ io.WriteCloser = (*SwitchableWriter)(nil)
