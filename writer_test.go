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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/osmdoc/model"
)

func TestJSONWriter(t *testing.T) {
	doc := model.Document{
		"type":    "node",
		"id":      "1",
		"pos":     []float64{-27.4698, 153.0251},
		"created": map[string]string{"user": "alice"},
		"name":    "Fish & Chips",
	}

	var buf bytes.Buffer

	w := NewJSONWriter(&buf, false)
	require.NoError(t, w.Write(doc))
	require.NoError(t, w.Write(model.Document{"id": "2"}))

	assert.Equal(t, `{"created":{"user":"alice"},"id":"1","name":"Fish & Chips","pos":[-27.4698,153.0251],"type":"node"}
{"id":"2"}
`, buf.String())
}

func TestJSONWriterPretty(t *testing.T) {
	var buf bytes.Buffer

	w := NewJSONWriter(&buf, true)
	require.NoError(t, w.Write(model.Document{"id": "1", "node_refs": []string{"1", "2"}}))

	assert.Equal(t, `{
  "id": "1",
  "node_refs": [
    "1",
    "2"
  ]
}
`, buf.String())
}
