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

// Package rules holds the reference data used to clean OpenStreetMap tags:
// accepted street types, abbreviation corrections and the patterns that
// recognise problem characters and postcodes.
package rules

import (
	"regexp"
	"slices"
)

// Key prefixes and attribute names with a fixed meaning.
const (
	AddressPrefix         = "addr:"
	StreetQualifierPrefix = "addr:street:"
	StreetSuffix          = "street"
	SecondaryTypeKey      = "type"

	LatAttr = "lat"
	LonAttr = "lon"

	// NamespaceSeparator is rewritten to KeySeparator in tag keys.
	NamespaceSeparator = ":"
	KeySeparator       = "_"

	// Multi-valued tags are split on a semicolon or, failing that, a comma.
	SemicolonDelimiter = ";"
	CommaDelimiter     = ","
)


// Correction maps an abbreviation to its full form.
type Correction struct {
	From string
	To   string
}

// Tables is the immutable rule configuration shared by the shaper and the
// report. Build one with Default and pass it around by value.
type Tables struct {
	createdAttrs      []string
	streetTypes       []string
	streetCorrections []Correction

	problemChars      *regexp.Regexp
	valueProblemChars *regexp.Regexp
	postcode          *regexp.Regexp
	validPostcode     *regexp.Regexp

	lower            *regexp.Regexp
	lowerColon       *regexp.Regexp
	streetTypeSuffix *regexp.Regexp
}

var defaultTables = Tables{
	createdAttrs: []string{"version", "changeset", "timestamp", "user", "uid"},
	streetTypes: []string{
		"Street", "Avenue", "Boulevard", "Drive", "Court", "Place", "Square", "Lane", "Road",
		"Trail", "Parkway", "Commons", "Crescent", "Parade", "Terrace", "Way", "Circuit", "Vista", "Close",
		"Corso", "Highway", "Motorway", "Arterial",
		"North", "South", "East", "West",
	},
	streetCorrections: []Correction{
		{From: "St", To: "Street"},
		{From: "St.", To: "Street"},
		{From: "Ave", To: "Avenue"},
		{From: "Rd.", To: "Road"},
		{From: "road", To: "Road"},
		{From: "terrace", To: "Terrace"},
	},

	problemChars:      regexp.MustCompile(`[=\+/&<>;'"\?%#$@\,\. \t\r\n]`),
	valueProblemChars: regexp.MustCompile(`[=\+/&<>;'"\?%#$@\,\.\t\r\n\|]`),
	postcode:          regexp.MustCompile(`^(\d{4})(\s+)$`),
	validPostcode:     regexp.MustCompile(`^\d{4}$`),

	lower:            regexp.MustCompile(`^([a-z]|_)*$`),
	lowerColon:       regexp.MustCompile(`^([a-z]|_)*:([a-z]|_)*$`),
	streetTypeSuffix: regexp.MustCompile(`(?i)\b\S+\.?$`),
}

// Default returns the rule tables for the Brisbane extract.
func Default() Tables {
	return defaultTables
}

// Option customises a copy of the default tables.
type Option func(*Tables)

// WithStreetTypes replaces the accepted street types.
func WithStreetTypes(types ...string) Option {
	return func(t *Tables) {
		t.streetTypes = slices.Clone(types)
	}
}

// WithStreetCorrections replaces the ordered abbreviation table.
func WithStreetCorrections(corrections ...Correction) Option {
	return func(t *Tables) {
		t.streetCorrections = slices.Clone(corrections)
	}
}

// New returns the default tables modified by opts.
func New(opts ...Option) Tables {
	t := Default()

	for _, opt := range opts {
		opt(&t)
	}

	return t
}

// CreatedAttrs returns the provenance attribute names.
func (t Tables) CreatedAttrs() []string { return slices.Clone(t.createdAttrs) }

// StreetTypes returns the accepted street-type suffixes.
func (t Tables) StreetTypes() []string { return slices.Clone(t.streetTypes) }

// StreetCorrections returns the ordered abbreviation table.
func (t Tables) StreetCorrections() []Correction { return slices.Clone(t.streetCorrections) }

// IsCreated reports whether the primary attribute is a provenance field.
func (t Tables) IsCreated(attr string) bool {
	return slices.Contains(t.createdAttrs, attr)
}

// IsStreetType reports whether the value is exactly an accepted street type.
func (t Tables) IsStreetType(value string) bool {
	return slices.Contains(t.streetTypes, value)
}

// HasProblemChars reports whether a tag key contains a problem character.
func (t Tables) HasProblemChars(key string) bool {
	return t.problemChars.MatchString(key)
}

// ProblemValuePattern is the pattern for problem characters in tag values.
func (t Tables) ProblemValuePattern() string { return t.valueProblemChars.String() }

// ValidPostcodePattern is the pattern a well-formed postcode matches.
func (t Tables) ValidPostcodePattern() string { return t.validPostcode.String() }

// TrimPostcode returns the four digits of a postcode followed by trailing
// whitespace. It reports false for anything else, including a bare postcode.
func (t Tables) TrimPostcode(value string) (string, bool) {
	m := t.postcode.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}

	return m[1], true
}
