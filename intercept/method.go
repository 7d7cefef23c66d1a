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
	"reflect"
	"strconv"
	"strings"
)

// Param is a single parameter of an intercepted method.
type Param struct {
	Type string
	Name string
}

// Method describes an intercepted method: its name, the qualified name of
// the type declaring it, and its ordered parameter list.
type Method struct {
	Name   string
	Type   string
	Params []Param
}

// Signature renders the method as "Name(Type1 name1, Type2 name2)".
func (m Method) Signature() string {
	return FormatSignature(m.Name, m.Params)
}

// FormatSignature renders name and params in the canonical signature form.
// An empty parameter list yields "Name()".
func FormatSignature(name string, params []Param) string {
	var sb strings.Builder
	sb.Grow(len(name) + 2 + len(params)*16)
	sb.WriteString(name)
	sb.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Type)
		sb.WriteByte(' ')
		sb.WriteString(p.Name)
	}
	sb.WriteByte(')')
	return sb.String()
}

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// TypeName returns the qualified name of t as "import/path.Name". Pointer
// types are dereferenced; unnamed types fall back to t.String().
func TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// DescribeFunc builds a Method for a function of type fnType declared on
// typeName. A leading context.Context parameter is treated as the call
// context and left out of the parameter list. Go reflection does not expose
// parameter names, so they are taken from names in order; missing names
// default to "arg0", "arg1", and so on.
func DescribeFunc(typeName, name string, fnType reflect.Type, names ...string) Method {
	m := Method{Name: name, Type: typeName}
	if fnType == nil || fnType.Kind() != reflect.Func {
		return m
	}

	start := 0
	if takesContext(fnType) {
		start = 1
	}
	n := fnType.NumIn() - start
	if n <= 0 {
		return m
	}

	m.Params = make([]Param, n)
	for i := range n {
		in := fnType.In(start + i)
		typ := in.String()
		if fnType.IsVariadic() && start+i == fnType.NumIn()-1 {
			typ = "..." + in.Elem().String()
		}
		paramName := "arg" + strconv.Itoa(i)
		if i < len(names) && names[i] != "" {
			paramName = names[i]
		}
		m.Params[i] = Param{Type: typ, Name: paramName}
	}
	return m
}

// takesContext reports whether the first parameter of fnType is exactly
// context.Context.
func takesContext(fnType reflect.Type) bool {
	return fnType.NumIn() > 0 && fnType.In(0) == contextType
}
