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

package query

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/constraints"

	"m4o.io/osmdoc/model"
)

// FromDocument converts a shaped document into the generic form the
// evaluator works on: bson.M for sub-documents and bson.A for lists.
func FromDocument(d model.Document) bson.M {
	return normalize(map[string]any(d)).(bson.M)
}

func normalize(v any) any {
	switch v := v.(type) {
	case model.Document:
		return normalize(map[string]any(v))
	case map[string]any:
		m := make(bson.M, len(v))
		for k, e := range v {
			m[k] = normalize(e)
		}

		return m
	case bson.M:
		return normalize(map[string]any(v))
	case bson.D:
		m := make(bson.M, len(v))
		for _, e := range v {
			m[e.Key] = normalize(e.Value)
		}

		return m
	case map[string]string:
		m := make(bson.M, len(v))
		for k, e := range v {
			m[k] = e
		}

		return m
	case []any:
		a := make(bson.A, len(v))
		for i, e := range v {
			a[i] = normalize(e)
		}

		return a
	case bson.A:
		return normalize([]any(v))
	case []string:
		a := make(bson.A, len(v))
		for i, e := range v {
			a[i] = e
		}

		return a
	case []float64:
		a := make(bson.A, len(v))
		for i, e := range v {
			a[i] = e
		}

		return a
	default:
		return v
	}
}

// lookup resolves a dotted path. Numeric segments index into arrays.
func lookup(doc bson.M, path string) (any, bool) {
	var cur any = doc

	for _, seg := range strings.Split(path, ".") {
		switch c := cur.(type) {
		case bson.M:
			v, ok := c[seg]
			if !ok {
				return nil, false
			}

			cur = v
		case bson.A:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(c) {
				return nil, false
			}

			cur = c[i]
		default:
			return nil, false
		}
	}

	return cur, true
}

// withPath returns a shallow copy of doc with path set to v. Intermediate
// sub-documents are copied so doc itself is left untouched.
func withPath(doc bson.M, path string, v any) bson.M {
	out := make(bson.M, len(doc))
	for k, e := range doc {
		out[k] = e
	}

	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		out[head] = v

		return out
	}

	sub, _ := out[head].(bson.M)
	if sub == nil {
		sub = bson.M{}
	}

	out[head] = withPath(sub, rest, v)

	return out
}

func number[T constraints.Integer | constraints.Float](n T) float64 {
	return float64(n)
}

// toFloat reports the numeric value of v.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return number(n), true
	case int32:
		return number(n), true
	case int64:
		return number(n), true
	case float32:
		return number(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func isInteger(v any) bool {
	switch v.(type) {
	case int, int32, int64:
		return true
	default:
		return false
	}
}

// typeName returns the BSON alias of the type of v, as reported by $type.
func typeName(v any, present bool) string {
	if !present {
		return "missing"
	}

	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float32, float64:
		return "double"
	case int32:
		return "int"
	case int, int64:
		return "long"
	case bool:
		return "bool"
	case bson.M:
		return "object"
	case bson.A:
		return "array"
	case primitive.Regex:
		return "regex"
	case time.Time, primitive.DateTime:
		return "date"
	default:
		return "unknown"
	}
}

// rank orders values of different types the way BSON comparison does.
func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case int, int32, int64, float32, float64:
		return 1
	case string:
		return 2
	case bson.M:
		return 3
	case bson.A:
		return 4
	case bool:
		return 5
	default:
		return 6
	}
}

// compare returns -1, 0 or 1.
func compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmpOrdered(ra, rb)
	}

	switch a := a.(type) {
	case nil:
		return 0
	case string:
		return strings.Compare(a, b.(string))
	case bool:
		bb := b.(bool)
		if a == bb {
			return 0
		} else if !a {
			return -1
		}

		return 1
	case bson.A:
		bb := b.(bson.A)
		for i := 0; i < len(a) && i < len(bb); i++ {
			if c := compare(a[i], bb[i]); c != 0 {
				return c
			}
		}

		return cmpOrdered(len(a), len(bb))
	}

	if fa, ok := toFloat(a); ok {
		fb, _ := toFloat(b)

		return cmpOrdered(fa, fb)
	}

	return strings.Compare(key(a), key(b))
}

func cmpOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// key is a canonical string for grouping by value.
func key(v any) string {
	if f, ok := toFloat(v); ok && !math.IsNaN(f) {
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "?"
	}

	return string(b)
}

func truthy(v any, present bool) bool {
	if !present {
		return false
	}

	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	}

	if f, ok := toFloat(v); ok {
		return f != 0
	}

	return true
}

func compileRegex(v any) (*regexp.Regexp, bool) {
	var pattern, options string

	switch r := v.(type) {
	case primitive.Regex:
		pattern, options = r.Pattern, r.Options
	case string:
		pattern = r
	default:
		return nil, false
	}

	var flags string

	for _, o := range options {
		if strings.ContainsRune("ims", o) {
			flags += string(o)
		}
	}

	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, false
	}

	return re, true
}
