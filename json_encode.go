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
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

type jsonEncoderOption func(*json.Encoder)

var jsonEncoderOptions = []jsonEncoderOption{
	func(enc *json.Encoder) {
		enc.SetEscapeHTML(false)
	},
}

func encodeJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	for _, opt := range jsonEncoderOptions {
		opt(enc)
	}
	// Encode appends a newline and streams directly to the writer.
	return enc.Encode(payload)
}

// jsonString encodes payload as a single-line JSON document without the
// trailing newline added by json.Encoder.
func jsonString(payload any) (string, error) {
	var buf bytes.Buffer
	if err := encodeJSON(&buf, payload); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// encodeArgument renders one call argument as JSON. Protocol buffer
// messages use protojson so field names follow the proto definition.
// Values encoding/json rejects (channels, funcs, cyclic structures) fall
// back to their fmt representation as a JSON string.
func encodeArgument(arg any) json.RawMessage {
	if msg, ok := arg.(proto.Message); ok && msg != nil {
		if data, err := protojson.Marshal(msg); err == nil {
			return data
		}
	}
	var buf bytes.Buffer
	if err := encodeJSON(&buf, arg); err == nil {
		return bytes.TrimRight(buf.Bytes(), "\n")
	}
	data, _ := json.Marshal(fmt.Sprint(arg))
	return data
}

// encodeArguments renders args as a JSON array in call order. The result
// is never null.
func encodeArguments(args []any) []json.RawMessage {
	out := make([]json.RawMessage, len(args))
	for i, a := range args {
		out[i] = encodeArgument(a)
	}
	return out
}
