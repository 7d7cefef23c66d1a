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
	"time"

	"github.com/pjscruggs/sloghook/intercept"
)

// TimestampLayout is the ISO-8601 layout used for structured call records:
// seven fractional digits and a numeric zone offset.
const TimestampLayout = "2006-01-02T15:04:05.0000000-07:00"

// LowDetailLog is the record LogCallsObject emits at ObjectDetailLow.
type LowDetailLog struct {
	MethodName string `json:"methodName"`
	Timestamp  string `json:"timestamp"`
	ClassName  string `json:"className"`
}

// MediumDetailLog is the record LogCallsObject emits at ObjectDetailMedium.
type MediumDetailLog struct {
	LowDetailLog
	MethodSignature string            `json:"methodSignature"`
	Arguments       []json.RawMessage `json:"arguments"`
}

// NewLowDetailLog builds the low-detail record for m observed at ts.
func NewLowDetailLog(m intercept.Method, ts time.Time) LowDetailLog {
	return LowDetailLog{
		MethodName: m.Name,
		Timestamp:  ts.Format(TimestampLayout),
		ClassName:  m.Type,
	}
}

// NewMediumDetailLog builds the medium-detail record for m and args
// observed at ts.
func NewMediumDetailLog(m intercept.Method, args []any, ts time.Time) MediumDetailLog {
	return MediumDetailLog{
		LowDetailLog:    NewLowDetailLog(m, ts),
		MethodSignature: m.Signature(),
		Arguments:       encodeArguments(args),
	}
}

// LogCallsObject returns a decorator that logs a JSON record describing
// every intercepted call before it runs. WithObjectDetail picks the record
// shape (ObjectDetailLow by default); unknown tiers log nothing. The JSON
// text is the log message.
func LogCallsObject(reg *Registry, opts ...Option) intercept.Decorator {
	reg = reg.orDefault()
	o := applyOptions(opts)
	level := o.levelOr(LevelInfo)
	detail := ObjectDetailLow
	if o.objectDetail != nil {
		detail = *o.objectDetail
	}

	return intercept.DecoratorFunc(func(p *intercept.Proxy) {
		logger := reg.Logger(p.TypeName())
		p.BeforeInvoke(func(ctx context.Context, m intercept.Method, args []any) {
			if !logger.Enabled(ctx, level.Level()) {
				return
			}
			var record any
			switch detail {
			case ObjectDetailLow:
				record = NewLowDetailLog(m, o.now())
			case ObjectDetailMedium:
				record = NewMediumDetailLog(m, args, o.now())
			default:
				return
			}
			msg, err := jsonString(record)
			if err != nil {
				return
			}
			emit(ctx, logger, level, msg, o.withTrace())
		})
	})
}
