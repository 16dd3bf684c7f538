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
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// predicate reports whether a document passes a filter.
type predicate func(doc bson.M) bool

// condition tests the value found at a field path.
type condition func(v any, present bool) bool

// Filter returns the documents matching filter.
func Filter(docs []bson.M, filter bson.D) ([]bson.M, error) {
	return filterDocs(docs, filter)
}

func filterDocs(docs []bson.M, filter any) ([]bson.M, error) {
	pred, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}

	out := make([]bson.M, 0, len(docs))

	for _, doc := range docs {
		if pred(doc) {
			out = append(out, doc)
		}
	}

	return out, nil
}

func compileFilter(filter any) (predicate, error) {
	fields, ok := asD(filter)
	if !ok {
		return nil, fmt.Errorf("%w: filter %T", ErrUnsupported, filter)
	}

	preds := make([]predicate, 0, len(fields))

	for _, f := range fields {
		if strings.HasPrefix(f.Key, "$") {
			return nil, fmt.Errorf("%w: top level %s", ErrUnsupported, f.Key)
		}

		cond, err := compileCondition(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Key, err)
		}

		path := f.Key

		preds = append(preds, func(doc bson.M) bool {
			v, present := lookup(doc, path)

			return cond(v, present)
		})
	}

	return func(doc bson.M) bool {
		for _, p := range preds {
			if !p(doc) {
				return false
			}
		}

		return true
	}, nil
}

// compileCondition handles both operator documents, {$exists: true}, and
// plain values, which test for equality.
func compileCondition(value any) (condition, error) {
	ops, ok := asD(value)
	if !ok || len(ops) == 0 || !strings.HasPrefix(ops[0].Key, "$") {
		if r, ok := value.(primitive.Regex); ok {
			return regexCondition(r)
		}

		want := normalize(value)

		return func(v any, present bool) bool {
			return present && anyElement(v, func(e any) bool { return compare(e, want) == 0 })
		}, nil
	}

	conds := make([]condition, 0, len(ops))

	for _, op := range ops {
		c, err := compileOperator(op, ops)
		if err != nil {
			return nil, err
		}

		if c != nil {
			conds = append(conds, c)
		}
	}

	return func(v any, present bool) bool {
		for _, c := range conds {
			if !c(v, present) {
				return false
			}
		}

		return true
	}, nil
}

func compileOperator(op bson.E, siblings bson.D) (condition, error) {
	switch op.Key {
	case "$exists":
		want := truthy(op.Value, true)

		return func(_ any, present bool) bool { return present == want }, nil

	case "$eq":
		want := normalize(op.Value)

		return func(v any, present bool) bool {
			return present && anyElement(v, func(e any) bool { return compare(e, want) == 0 })
		}, nil

	case "$ne":
		want := normalize(op.Value)

		return func(v any, present bool) bool {
			return !present || !anyElement(v, func(e any) bool { return compare(e, want) == 0 })
		}, nil

	case "$in", "$nin":
		list, ok := op.Value.(bson.A)
		if !ok {
			return nil, fmt.Errorf("%s needs an array", op.Key)
		}

		want := normalize(list).(bson.A)
		in := func(v any, present bool) bool {
			return present && anyElement(v, func(e any) bool {
				for _, w := range want {
					if compare(e, w) == 0 {
						return true
					}
				}

				return false
			})
		}

		if op.Key == "$nin" {
			return func(v any, present bool) bool { return !in(v, present) }, nil
		}

		return in, nil

	case "$regex":
		if s, ok := op.Value.(string); ok {
			for _, sib := range siblings {
				if sib.Key == "$options" {
					opts, _ := sib.Value.(string)

					return regexCondition(primitive.Regex{Pattern: s, Options: opts})
				}
			}
		}

		return regexCondition(op.Value)

	case "$options":
		// consumed by $regex
		return nil, nil

	case "$not":
		inner, err := compileCondition(op.Value)
		if err != nil {
			return nil, err
		}

		return func(v any, present bool) bool { return !inner(v, present) }, nil

	case "$type":
		want, ok := op.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: numeric $type", ErrUnsupported)
		}

		return func(v any, present bool) bool {
			if typeName(v, present) == want {
				return true
			}

			a, isArray := v.(bson.A)
			if !isArray {
				return false
			}

			for _, e := range a {
				if typeName(e, true) == want {
					return true
				}
			}

			return false
		}, nil

	default:
		return nil, fmt.Errorf("%w: query operator %s", ErrUnsupported, op.Key)
	}
}

func regexCondition(r any) (condition, error) {
	re, ok := compileRegex(r)
	if !ok {
		return nil, fmt.Errorf("%w: regex %v", ErrUnsupported, r)
	}

	return func(v any, present bool) bool {
		return present && anyElement(v, func(e any) bool { return matchString(re, e) })
	}, nil
}

func matchString(re *regexp.Regexp, v any) bool {
	s, ok := v.(string)

	return ok && re.MatchString(s)
}

// anyElement applies f to v and, when v is an array, to each of its elements.
func anyElement(v any, f func(any) bool) bool {
	if f(v) {
		return true
	}

	if a, ok := v.(bson.A); ok {
		for _, e := range a {
			if f(e) {
				return true
			}
		}
	}

	return false
}

func asD(v any) (bson.D, bool) {
	switch d := v.(type) {
	case bson.D:
		return d, true
	case bson.M:
		out := make(bson.D, 0, len(d))
		for k, e := range d {
			out = append(out, bson.E{Key: k, Value: e})
		}

		return out, true
	default:
		return nil, false
	}
}
