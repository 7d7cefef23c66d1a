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
	"runtime"
	"strconv"
	"strings"
)

// maxStackFrames caps how many frames are rendered for a single error.
const maxStackFrames = 64

// stackTracer is implemented by errors that carry their own stack trace as
// program counters, such as *intercept.PanicError.
type stackTracer interface {
	StackTrace() []uintptr
}

// errorStack formats the stack carried by err itself. It does not search
// the wrap chain; each cause reports its own stack. It returns "" when err
// carries no stack.
func errorStack(err error) string {
	st, ok := err.(stackTracer)
	if !ok {
		return ""
	}
	return formatStack(st.StackTrace())
}

// formatStack renders pcs in the layout of a Go panic trace: the function
// on one line, then a tab, file, line and pc offset on the next. Leading
// runtime frames (the panic machinery) are dropped unless nothing else
// remains, runtime.goexit is always dropped, and at most maxStackFrames
// frames are written.
func formatStack(pcs []uintptr) string {
	frames := collectFrames(pcs)
	start := 0
	for start < len(frames) && strings.HasPrefix(frames[start].Function, "runtime.") {
		start++
	}
	if start < len(frames) {
		frames = frames[start:]
	}
	if len(frames) > maxStackFrames {
		frames = frames[:maxStackFrames]
	}

	var sb strings.Builder
	sb.Grow(len(frames) * 64)
	var num [20]byte
	for _, f := range frames {
		sb.WriteString(f.Function)
		sb.WriteString("\n\t")
		sb.WriteString(f.File)
		sb.WriteByte(':')
		sb.Write(strconv.AppendInt(num[:0], int64(f.Line), 10))
		if f.Entry != 0 && f.PC > f.Entry {
			sb.WriteString(" +0x")
			sb.Write(strconv.AppendUint(num[:0], uint64(f.PC-f.Entry), 16))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// collectFrames resolves pcs into named frames, skipping runtime.goexit.
func collectFrames(pcs []uintptr) []runtime.Frame {
	if len(pcs) == 0 {
		return nil
	}
	out := make([]runtime.Frame, 0, len(pcs))
	iter := runtime.CallersFrames(pcs)
	for {
		frame, more := iter.Next()
		if frame.Function != "" && frame.Function != "runtime.goexit" {
			out = append(out, frame)
		}
		if !more {
			return out
		}
	}
}
