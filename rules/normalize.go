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

package rules

import "strings"

// Normalize corrects value with the first entry of table whose From occurs in
// it. Only that first occurrence is replaced and later entries are never
// consulted, so table order matters: "St" is tried before "St.".
func Normalize(value string, table []Correction) string {
	for _, c := range table {
		if strings.Contains(value, c.From) {
			return strings.Replace(value, c.From, c.To, 1)
		}
	}

	return value
}

// NormalizeStreet corrects a street name unless it already is an accepted
// street type.
func (t Tables) NormalizeStreet(name string) string {
	if t.IsStreetType(name) {
		return name
	}

	return Normalize(name, t.streetCorrections)
}
