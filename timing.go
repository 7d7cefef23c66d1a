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
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultTimingFormat renders elapsed milliseconds with two decimals.
const DefaultTimingFormat = "F2"

var errTimingFormat = errors.New("invalid timing format")

// timingFormatter renders an elapsed time in milliseconds.
type timingFormatter func(ms float64) string

// groupingPrinter formats N<n> timings with thousands separators.
var groupingPrinter = message.NewPrinter(language.English)

// parseTimingFormat compiles a timing format. Supported forms are:
//
//	F<n>  fixed point with n decimals (F alone means F2)
//	N<n>  fixed point with n decimals and digit grouping
//	E<n>  scientific notation with n decimals (E alone means E6)
//	G     shortest representation
//	%...  a fmt verb applied to the float64 value, e.g. "%.3f"
//
// Letters are case-insensitive; n ranges from 0 to 15.
func parseTimingFormat(format string) (timingFormatter, error) {
	format = strings.TrimSpace(format)
	if format == "" {
		return nil, fmt.Errorf("%w: empty", errTimingFormat)
	}

	if strings.HasPrefix(format, "%") {
		if out := fmt.Sprintf(format, 1.5); strings.Contains(out, "%!") {
			return nil, fmt.Errorf("%w: %q is not a single float verb", errTimingFormat, format)
		}
		return func(ms float64) string { return fmt.Sprintf(format, ms) }, nil
	}

	kind := strings.ToUpper(format[:1])
	digits, err := timingPrecision(format[1:], kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", errTimingFormat, format, err)
	}

	switch kind {
	case "F":
		return func(ms float64) string { return strconv.FormatFloat(ms, 'f', digits, 64) }, nil
	case "N":
		verb := "%." + strconv.Itoa(digits) + "f"
		return func(ms float64) string { return groupingPrinter.Sprintf(verb, ms) }, nil
	case "E":
		return func(ms float64) string { return strconv.FormatFloat(ms, 'E', digits, 64) }, nil
	case "G":
		if format[1:] != "" {
			return nil, fmt.Errorf("%w: %q: G takes no precision", errTimingFormat, format)
		}
		return func(ms float64) string { return strconv.FormatFloat(ms, 'g', -1, 64) }, nil
	}
	return nil, fmt.Errorf("%w: %q: unknown specifier %q", errTimingFormat, format, kind)
}

// timingPrecision parses the digit count that follows a specifier letter.
func timingPrecision(text, kind string) (int, error) {
	if text == "" {
		if kind == "E" {
			return 6, nil
		}
		return 2, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("precision %q is not a number", text)
	}
	if n < 0 || n > 15 {
		return 0, fmt.Errorf("precision %d out of range", n)
	}
	return n, nil
}
