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

package intercept

import (
	"context"
	"fmt"
	"reflect"
)

// Func returns a function with the same type as fn that routes every call
// through p as the method name. paramNames label the parameters in log
// output (see [DescribeFunc]). When fn's first parameter is a
// context.Context it becomes the call context. When fn's last result is an
// error, a non-nil value is handed to the catch hooks.
//
// Func panics if fn is not a non-nil function, mirroring reflect.MakeFunc.
func Func[F any](p *Proxy, name string, fn F, paramNames ...string) F {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		panic(fmt.Sprintf("intercept: Func requires a non-nil function, got %T", fn))
	}
	t := v.Type()
	m := DescribeFunc(p.typeName, name, t, paramNames...)
	withCtx := takesContext(t)
	returnsErr := t.NumOut() > 0 && t.Out(t.NumOut()-1) == errorType

	wrapped := reflect.MakeFunc(t, func(in []reflect.Value) []reflect.Value {
		ctx := context.Background()
		argValues := in
		if withCtx {
			if c, ok := in[0].Interface().(context.Context); ok && c != nil {
				ctx = c
			}
			argValues = in[1:]
		}
		args := make([]any, len(argValues))
		for i, a := range argValues {
			args[i] = a.Interface()
		}

		var out []reflect.Value
		_ = p.Invoke(ctx, m, args, func(ctx context.Context) error {
			if withCtx {
				in[0] = reflect.ValueOf(&ctx).Elem()
			}
			if t.IsVariadic() {
				out = v.CallSlice(in)
			} else {
				out = v.Call(in)
			}
			if !returnsErr {
				return nil
			}
			err, _ := out[len(out)-1].Interface().(error)
			return err
		})
		return out
	})
	return wrapped.Interface().(F)
}
