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

package model

// Document keys with a fixed meaning.
const (
	KeyType          = "type"
	KeyTypeSecondary = "type_secondary"
	KeyCreated       = "created"
	KeyPos           = "pos"
	KeyAddress       = "address"
	KeyNodeRefs      = "node_refs"
)

// Document is the normalized, document-oriented form of a node or way.
//
// Values are strings, []string (split multi-values and node_refs),
// []float64 (pos) or map[string]string (created and address).
type Document map[string]any

// Type returns the primary discriminator of the document.
func (d Document) Type() Kind {
	k, _ := d[KeyType].(string)

	return Kind(k)
}

// Pos returns the latitude and longitude of the document, if it has one.
func (d Document) Pos() (lat, lon Degrees, ok bool) {
	pos, ok := d[KeyPos].([]float64)
	if !ok || len(pos) != 2 {
		return 0, 0, false
	}

	return Degrees(pos[0]), Degrees(pos[1]), true
}

// Sub returns the named sub-mapping, creating it on first use.
func (d Document) Sub(key string) map[string]string {
	if m, ok := d[key].(map[string]string); ok {
		return m
	}

	m := make(map[string]string)
	d[key] = m

	return m
}
