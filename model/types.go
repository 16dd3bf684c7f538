// Copyright 2017-25 the original author or authors.
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

import (
	"math"
	"strconv"

	"github.com/golang/geo/s1"
)

// Degrees is the decimal degree representation of a longitude or latitude.
type Degrees float64

// Angle represents a 1D angle in radians.
type Angle s1.Angle

// Epsilon is an enumeration of precisions that can be used when comparing Degrees.
type Epsilon float64

// Comparison precisions.
const (
	E5 Epsilon = 1e-5
	E6 Epsilon = 1e-6
	E7 Epsilon = 1e-7
	E9 Epsilon = 1e-9
)

// Angle returns the equivalent s1.Angle.
func (d Degrees) Angle() Angle { return Angle(float64(d) * float64(s1.Degree)) }

func (d Degrees) MarshalJSON() ([]byte, error) {
	return []byte(ftoa(float64(d))), nil
}

// EqualWithin reports whether d and o agree once both are rounded to a
// multiple of eps.
func (d Degrees) EqualWithin(o Degrees, eps Epsilon) bool {
	return sameStep(float64(d), float64(o), eps)
}

// EqualWithin reports whether a and o agree once both are rounded to a
// multiple of eps.
func (a Angle) EqualWithin(o Angle, eps Epsilon) bool {
	return sameStep(float64(a), float64(o), eps)
}

func sameStep(a, b float64, eps Epsilon) bool {
	return math.Round(a/float64(eps)) == math.Round(b/float64(eps))
}

// ParseDegrees converts a string to a Degrees instance.
func ParseDegrees(s string) (Degrees, error) {
	u, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	return Degrees(u), nil
}

// ftoa renders a float with the fewest digits that round-trip.
func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
