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

// KeyClass buckets a tag key by the characters it contains.
type KeyClass string

const (
	KeyLower        KeyClass = "lower"
	KeyLowerColon   KeyClass = "lower_colon"
	KeyProblemChars KeyClass = "problemchars"
	KeyOther        KeyClass = "other"
)

// KeyClasses lists the classes in reporting order.
var KeyClasses = []KeyClass{KeyLower, KeyLowerColon, KeyProblemChars, KeyOther}

// ClassifyKey returns the class of a tag key.
func (t Tables) ClassifyKey(key string) KeyClass {
	switch {
	case t.lower.MatchString(key):
		return KeyLower
	case t.lowerColon.MatchString(key):
		return KeyLowerColon
	case t.problemChars.MatchString(key):
		return KeyProblemChars
	default:
		return KeyOther
	}
}

// StreetType returns the last word of a street name, e.g. "St." for
// "Queen St.".
func (t Tables) StreetType(name string) (string, bool) {
	m := t.streetTypeSuffix.FindString(name)

	return m, m != ""
}

// UnexpectedStreetType returns the street type of name when it is not one of
// the accepted types.
func (t Tables) UnexpectedStreetType(name string) (string, bool) {
	st, ok := t.StreetType(name)
	if !ok || t.IsStreetType(st) {
		return "", false
	}

	return st, true
}
