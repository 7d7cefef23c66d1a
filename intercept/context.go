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

import "context"

type methodContextKey struct{}

// ContextWithMethod returns a child context carrying m. Invoke does this for
// every call so the wrapped function and hooks can see which method is
// running.
func ContextWithMethod(ctx context.Context, m Method) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, methodContextKey{}, m)
}

// MethodFromContext returns the descriptor of the intercepted call running
// under ctx.
func MethodFromContext(ctx context.Context) (Method, bool) {
	if ctx == nil {
		return Method{}, false
	}
	m, ok := ctx.Value(methodContextKey{}).(Method)
	return m, ok
}
