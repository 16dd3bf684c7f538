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

// Package query evaluates the subset of the MongoDB aggregation language used
// by the report pipelines against documents held in memory.
package query

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrUnsupported is returned for stages, operators and expressions the
// evaluator does not implement.
var ErrUnsupported = errors.New("unsupported")

// Run applies the pipeline stages to docs in order. The input slice is not
// modified.
func Run(docs []bson.M, p mongo.Pipeline) ([]bson.M, error) {
	cur := docs

	for i, stage := range p {
		if len(stage) != 1 {
			return nil, fmt.Errorf("stage %d: a pipeline stage specification must contain exactly one field", i)
		}

		var err error

		op := stage[0]

		switch op.Key {
		case "$match":
			cur, err = filterDocs(cur, op.Value)
		case "$group":
			cur, err = group(cur, op.Value)
		case "$sort":
			cur, err = sortStage(cur, op.Value)
		case "$limit":
			cur, err = limit(cur, op.Value)
		case "$unwind":
			cur, err = unwindStage(cur, op.Value)
		case "$project":
			cur, err = project(cur, op.Value)
		default:
			err = fmt.Errorf("%w: stage %s", ErrUnsupported, op.Key)
		}

		if err != nil {
			return nil, fmt.Errorf("stage %d %s: %w", i, op.Key, err)
		}
	}

	return cur, nil
}

// Distinct returns the distinct values of field in first-seen order. Lists
// contribute each of their elements.
func Distinct(docs []bson.M, field string) []any {
	seen := make(map[string]struct{})
	out := make([]any, 0)

	add := func(v any) {
		k := key(v)
		if _, ok := seen[k]; ok {
			return
		}

		seen[k] = struct{}{}
		out = append(out, v)
	}

	for _, doc := range docs {
		v, present := lookup(doc, field)
		if !present {
			continue
		}

		if a, ok := v.(bson.A); ok {
			for _, e := range a {
				add(e)
			}

			continue
		}

		add(v)
	}

	return out
}

// accumulator folds the values of one output field of a $group stage.
type accumulator interface {
	add(v any, present bool)
	result() any
}

type sumAcc struct {
	ints    int64
	floats  float64
	isFloat bool
}

func (a *sumAcc) add(v any, _ bool) {
	switch {
	case isInteger(v):
		f, _ := toFloat(v)
		a.ints += int64(f)
	default:
		if f, ok := toFloat(v); ok {
			a.floats += f
			a.isFloat = true
		}
	}
}

func (a *sumAcc) result() any {
	if a.isFloat {
		return a.floats + float64(a.ints)
	}

	if a.ints >= math.MinInt32 && a.ints <= math.MaxInt32 {
		return int32(a.ints)
	}

	return a.ints
}

type avgAcc struct {
	sum float64
	n   int
}

func (a *avgAcc) add(v any, _ bool) {
	if f, ok := toFloat(v); ok {
		a.sum += f
		a.n++
	}
}

func (a *avgAcc) result() any {
	if a.n == 0 {
		return nil
	}

	return a.sum / float64(a.n)
}

type groupField struct {
	name string
	op   string
	expr any
}

type groupState struct {
	id   any
	accs []accumulator
}

func group(docs []bson.M, spec any) ([]bson.M, error) {
	fields, ok := asD(spec)
	if !ok {
		return nil, fmt.Errorf("a group's fields must be specified in an object")
	}

	var (
		idExpr  any
		hasID   bool
		outputs []groupField
	)

	for _, f := range fields {
		if f.Key == "_id" {
			idExpr, hasID = f.Value, true

			continue
		}

		acc, ok := asD(f.Value)
		if !ok || len(acc) != 1 {
			return nil, fmt.Errorf("the field %q must be an accumulator object", f.Key)
		}

		switch acc[0].Key {
		case "$sum", "$avg":
		default:
			return nil, fmt.Errorf("%w: accumulator %s", ErrUnsupported, acc[0].Key)
		}

		outputs = append(outputs, groupField{name: f.Key, op: acc[0].Key, expr: acc[0].Value})
	}

	if !hasID {
		return nil, fmt.Errorf("a group specification must include an _id")
	}

	var order []string

	groups := make(map[string]*groupState)

	for _, doc := range docs {
		id, _, err := eval(idExpr, doc)
		if err != nil {
			return nil, err
		}

		k := key(id)

		g, ok := groups[k]
		if !ok {
			g = &groupState{id: id, accs: make([]accumulator, len(outputs))}

			for i, o := range outputs {
				if o.op == "$sum" {
					g.accs[i] = &sumAcc{}
				} else {
					g.accs[i] = &avgAcc{}
				}
			}

			groups[k] = g
			order = append(order, k)
		}

		for i, o := range outputs {
			v, present, err := eval(o.expr, doc)
			if err != nil {
				return nil, err
			}

			g.accs[i].add(v, present)
		}
	}

	out := make([]bson.M, 0, len(order))

	for _, k := range order {
		g := groups[k]

		m := bson.M{"_id": g.id}
		for i, o := range outputs {
			m[o.name] = g.accs[i].result()
		}

		out = append(out, m)
	}

	return out, nil
}

func sortStage(docs []bson.M, spec any) ([]bson.M, error) {
	fields, ok := asD(spec)
	if !ok || len(fields) == 0 {
		return nil, fmt.Errorf("$sort key specification must be a non-empty object")
	}

	dirs := make([]int, len(fields))

	for i, f := range fields {
		n, ok := toFloat(f.Value)
		if !ok || (n != 1 && n != -1) {
			return nil, fmt.Errorf("$sort key ordering must be 1 (for ascending) or -1 (for descending)")
		}

		dirs[i] = int(n)
	}

	out := append([]bson.M(nil), docs...)

	sort.SliceStable(out, func(i, j int) bool {
		for n, f := range fields {
			a, _ := lookup(out[i], f.Key)
			b, _ := lookup(out[j], f.Key)

			if c := compare(a, b) * dirs[n]; c != 0 {
				return c < 0
			}
		}

		return false
	})

	return out, nil
}

func limit(docs []bson.M, spec any) ([]bson.M, error) {
	if !isInteger(spec) {
		return nil, fmt.Errorf("the limit must be specified as a number")
	}

	f, _ := toFloat(spec)
	if f <= 0 {
		return nil, fmt.Errorf("the limit must be positive")
	}

	if int(f) < len(docs) {
		return docs[:int(f)], nil
	}

	return docs, nil
}

func unwindStage(docs []bson.M, spec any) ([]bson.M, error) {
	var field string

	switch s := spec.(type) {
	case string:
		field = s
	default:
		d, ok := asD(spec)
		if !ok {
			return nil, fmt.Errorf("expected either a string or an object as specification for $unwind")
		}

		for _, e := range d {
			if e.Key == "path" {
				field, _ = e.Value.(string)
			}
		}
	}

	field, ok := strings.CutPrefix(field, "$")
	if !ok || field == "" {
		return nil, fmt.Errorf("path option to $unwind stage should be prefixed with a '$'")
	}

	out := make([]bson.M, 0, len(docs))

	for _, doc := range docs {
		v, present := lookup(doc, field)
		if !present || v == nil {
			continue
		}

		a, isArray := v.(bson.A)
		if !isArray {
			out = append(out, doc)

			continue
		}

		for _, e := range a {
			out = append(out, withPath(doc, field, e))
		}
	}

	return out, nil
}

func project(docs []bson.M, spec any) ([]bson.M, error) {
	fields, ok := asD(spec)
	if !ok || len(fields) == 0 {
		return nil, fmt.Errorf("$project specification must be a non-empty object")
	}

	includeID := true
	exclusion := true

	var rest bson.D

	for _, f := range fields {
		if f.Key == "_id" && isFlag(f.Value) {
			includeID = flagValue(f.Value)

			continue
		}

		if !isFlag(f.Value) || flagValue(f.Value) {
			exclusion = false
		}

		rest = append(rest, f)
	}

	if len(rest) == 0 {
		exclusion = !includeID
	}

	out := make([]bson.M, 0, len(docs))

	for _, doc := range docs {
		if exclusion {
			m := make(bson.M, len(doc))
			for k, v := range doc {
				m[k] = v
			}

			if !includeID {
				delete(m, "_id")
			}

			for _, f := range rest {
				delete(m, f.Key)
			}

			out = append(out, m)

			continue
		}

		m := bson.M{}

		if includeID {
			if id, present := doc["_id"]; present {
				m["_id"] = id
			}
		}

		for _, f := range rest {
			if isFlag(f.Value) {
				if v, present := lookup(doc, f.Key); present {
					m = withPath(m, f.Key, v)
				}

				continue
			}

			v, present, err := eval(f.Value, doc)
			if err != nil {
				return nil, err
			}

			if present {
				m = withPath(m, f.Key, v)
			}
		}

		out = append(out, m)
	}

	return out, nil
}

func isFlag(v any) bool {
	if _, ok := v.(bool); ok {
		return true
	}

	return isInteger(v)
}

func flagValue(v any) bool {
	return truthy(v, true)
}
