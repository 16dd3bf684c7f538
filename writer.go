// Copyright 2025 the original author or authors.
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

package osmdoc

import (
	"encoding/json"
	"io"

	"m4o.io/osmdoc/model"
)

// JSONWriter writes documents as JSON lines, or as indented JSON objects
// separated by newlines when pretty.
type JSONWriter struct {
	enc *json.Encoder
}

func NewJSONWriter(w io.Writer, pretty bool) *JSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if pretty {
		enc.SetIndent("", "  ")
	}

	return &JSONWriter{enc: enc}
}

// Write encodes one document.
func (w *JSONWriter) Write(doc model.Document) error {
	return w.enc.Encode(doc)
}
