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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pjscruggs/sloghook/intercept"
)

// maxCauseDepth bounds how far the wrap chain is followed when serializing
// an error.
const maxCauseDepth = 16

// ErrorRecord is the JSON shape LogExceptions emits for a caught error.
type ErrorRecord struct {
	Type       string          `json:"type"`
	Message    string          `json:"message"`
	StackTrace string          `json:"stackTrace,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Cause      *ErrorRecord    `json:"cause,omitempty"`
	Causes     []*ErrorRecord  `json:"causes,omitempty"`
}

// NewErrorRecord describes err and its wrap chain. Errors wrapping a single
// error report it as Cause; errors wrapping several (errors.Join) report
// them as Causes. Errors implementing json.Marshaler contribute their
// encoding as Data. It returns nil for a nil error.
func NewErrorRecord(err error) *ErrorRecord {
	return newErrorRecord(err, 0)
}

func newErrorRecord(err error, depth int) *ErrorRecord {
	if err == nil {
		return nil
	}
	rec := &ErrorRecord{
		Type:       fmt.Sprintf("%T", err),
		Message:    err.Error(),
		StackTrace: errorStack(err),
	}
	if m, ok := err.(json.Marshaler); ok {
		if data, merr := m.MarshalJSON(); merr == nil && json.Valid(data) {
			rec.Data = data
		}
	}
	if depth >= maxCauseDepth {
		return rec
	}

	switch u := err.(type) {
	case interface{ Unwrap() error }:
		rec.Cause = newErrorRecord(u.Unwrap(), depth+1)
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			if inner != nil {
				rec.Causes = append(rec.Causes, newErrorRecord(inner, depth+1))
			}
		}
	}
	return rec
}

// LogExceptions returns a decorator that logs every error or panic raised
// by an intercepted call as a JSON ErrorRecord. It is attached as a catch
// hook, so the error still reaches the caller unchanged. The default level
// is LevelError.
func LogExceptions(reg *Registry, opts ...Option) intercept.Decorator {
	return logExceptions(reg, opts, func(error) bool { return true })
}

// LogExceptionsOf is LogExceptions restricted to errors whose chain
// contains an E.
func LogExceptionsOf[E error](reg *Registry, opts ...Option) intercept.Decorator {
	return logExceptions(reg, opts, func(err error) bool {
		var target E
		return errors.As(err, &target)
	})
}

func logExceptions(reg *Registry, opts []Option, match func(error) bool) intercept.Decorator {
	reg = reg.orDefault()
	o := applyOptions(opts)
	level := o.levelOr(LevelError)

	return intercept.DecoratorFunc(func(p *intercept.Proxy) {
		logger := reg.Logger(p.TypeName())
		p.Catch(func(ctx context.Context, err error) {
			if !match(err) || !logger.Enabled(ctx, level.Level()) {
				return
			}
			msg, jerr := jsonString(NewErrorRecord(err))
			if jerr != nil {
				msg = err.Error()
			}
			emit(ctx, logger, level, msg, o.withTrace())
		})
	})
}
