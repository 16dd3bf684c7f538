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
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

var errDivideByZero = errors.New("can't $divide by zero")

// eval evaluates an aggregation expression against doc. The boolean result
// is false when the expression refers to a missing field.
func eval(expr any, doc bson.M) (any, bool, error) {
	switch e := expr.(type) {
	case string:
		if path, ok := strings.CutPrefix(e, "$"); ok {
			v, present := lookup(doc, path)

			return v, present, nil
		}

		return e, true, nil

	case bson.A:
		out := make(bson.A, len(e))

		for i, item := range e {
			v, _, err := eval(item, doc)
			if err != nil {
				return nil, false, err
			}

			out[i] = v
		}

		return out, true, nil

	case bson.D:
		if len(e) == 1 && strings.HasPrefix(e[0].Key, "$") {
			return evalOperator(e[0].Key, e[0].Value, doc)
		}

		out := make(bson.M, len(e))

		for _, f := range e {
			v, present, err := eval(f.Value, doc)
			if err != nil {
				return nil, false, err
			}

			if present {
				out[f.Key] = v
			}
		}

		return out, true, nil

	case bson.M:
		d, _ := asD(e)

		return eval(d, doc)

	default:
		return normalize(e), true, nil
	}
}

func evalOperator(op string, arg any, doc bson.M) (any, bool, error) {
	switch op {
	case "$size":
		v, _, err := eval(arg, doc)
		if err != nil {
			return nil, false, err
		}

		a, ok := v.(bson.A)
		if !ok {
			return nil, false, fmt.Errorf("the argument to $size must be an array, got %s", typeName(v, true))
		}

		return int32(len(a)), true, nil

	case "$type":
		v, present, err := eval(arg, doc)
		if err != nil {
			return nil, false, err
		}

		return typeName(v, present), true, nil

	case "$eq", "$ne":
		args, err := evalArgs(op, arg, doc, 2)
		if err != nil {
			return nil, false, err
		}

		eq := compare(args[0], args[1]) == 0

		return eq == (op == "$eq"), true, nil

	case "$cond":
		var cond, then, otherwise any

		switch a := arg.(type) {
		case bson.A:
			if len(a) != 3 {
				return nil, false, fmt.Errorf("$cond takes exactly 3 arguments, %d given", len(a))
			}

			cond, then, otherwise = a[0], a[1], a[2]
		case bson.D:
			for _, f := range a {
				switch f.Key {
				case "if":
					cond = f.Value
				case "then":
					then = f.Value
				case "else":
					otherwise = f.Value
				default:
					return nil, false, fmt.Errorf("unrecognized $cond parameter %s", f.Key)
				}
			}
		default:
			return nil, false, fmt.Errorf("%w: $cond argument %T", ErrUnsupported, arg)
		}

		c, present, err := eval(cond, doc)
		if err != nil {
			return nil, false, err
		}

		if truthy(c, present) {
			return eval(then, doc)
		}

		return eval(otherwise, doc)

	case "$divide":
		args, err := evalArgs(op, arg, doc, 2)
		if err != nil {
			return nil, false, err
		}

		if args[0] == nil || args[1] == nil {
			return nil, true, nil
		}

		n, ok1 := toFloat(args[0])
		d, ok2 := toFloat(args[1])

		if !ok1 || !ok2 {
			return nil, false, fmt.Errorf("$divide only supports numeric types")
		}

		if d == 0 {
			return nil, false, errDivideByZero
		}

		return n / d, true, nil

	default:
		return nil, false, fmt.Errorf("%w: expression operator %s", ErrUnsupported, op)
	}
}

func evalArgs(op string, arg any, doc bson.M, n int) ([]any, error) {
	a, ok := arg.(bson.A)
	if !ok || len(a) != n {
		return nil, fmt.Errorf("%s takes exactly %d arguments", op, n)
	}

	out := make([]any, n)

	for i, item := range a {
		v, _, err := eval(item, doc)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}
