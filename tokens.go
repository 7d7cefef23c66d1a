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
	"sort"
	"strings"
)

// Tokens recognised in decorator templates. Any other %name% sequence is
// left untouched.
const (
	TokenMethod = "%method%"
	TokenArgs   = "%args%"
	TokenTiming = "%timing%"
)

// Substitute replaces every occurrence of each binding key in template with
// its value. Replacement is literal and happens in a single pass, so a value
// that itself contains a token is not expanded again. Empty keys are
// ignored.
func Substitute(template string, bindings map[string]string) string {
	if template == "" || len(bindings) == 0 {
		return template
	}
	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, k, bindings[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// FormatArgs renders args as their default fmt representations joined by
// ", ". A nil argument renders as "<nil>".
func FormatArgs(args []any) string {
	switch len(args) {
	case 0:
		return ""
	case 1:
		return fmt.Sprint(args[0])
	}
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprint(&sb, a)
	}
	return sb.String()
}
