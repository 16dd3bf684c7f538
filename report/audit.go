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

package report

import (
	"context"
	"errors"
	"io"
	"maps"
	"slices"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"m4o.io/osmdoc"
	"m4o.io/osmdoc/model"
	"m4o.io/osmdoc/rules"
)

// streetKey is the tag whose values the street audit inspects.
const streetKey = rules.AddressPrefix + rules.StreetSuffix

// AuditResult is the outcome of scanning raw records for tag key and street
// name problems, before any shaping.
type AuditResult struct {
	Records int64 `json:"records"`

	// KeyClasses counts tag keys per class.
	KeyClasses map[rules.KeyClass]int64 `json:"key_classes"`

	// StreetTypes maps each unexpected street type to the street names that
	// end in it.
	StreetTypes map[string][]string `json:"street_types"`

	// Corrections maps street names to the names the normalizer makes of
	// them, for the names it changes.
	Corrections map[string]string `json:"corrections"`
}

// Audit reads every record of src and classifies its tags.
func Audit(ctx context.Context, src osmdoc.Source, tables rules.Tables) (*AuditResult, error) {
	a := &AuditResult{
		KeyClasses:  make(map[rules.KeyClass]int64, len(rules.KeyClasses)),
		StreetTypes: make(map[string][]string),
		Corrections: make(map[string]string),
	}

	for _, class := range rules.KeyClasses {
		a.KeyClasses[class] = 0
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := src.Decode()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}

		a.Records++

		for _, tag := range rec.Tags() {
			a.KeyClasses[tables.ClassifyKey(tag.Key)]++

			if tag.Key == streetKey && (rec.Kind == model.NODE || rec.Kind == model.WAY) {
				a.street(tables, tag.Value)
			}
		}
	}

	for st, names := range a.StreetTypes {
		slices.Sort(names)
		a.StreetTypes[st] = slices.Compact(names)
	}

	return a, nil
}

func (a *AuditResult) street(tables rules.Tables, name string) {
	if st, ok := tables.UnexpectedStreetType(name); ok {
		a.StreetTypes[st] = append(a.StreetTypes[st], name)
	}

	if better := tables.NormalizeStreet(name); better != name {
		a.Corrections[name] = better
	}
}

// WriteText renders the audit for reading on a terminal.
func (a *AuditResult) WriteText(w io.Writer) error {
	p := &printer{w: w}

	p.printf("Records: %s\n", humanize.Comma(a.Records))

	p.printf("\nTag keys\n")

	for _, class := range rules.KeyClasses {
		p.printf("  %s: %s\n", class, humanize.Comma(a.KeyClasses[class]))
	}

	p.printf("\nUnexpected street types\n")

	if len(a.StreetTypes) == 0 {
		p.printf("  none\n")
	}

	for _, st := range slices.Sorted(maps.Keys(a.StreetTypes)) {
		p.printf("  %s: %s\n", st, strings.Join(a.StreetTypes[st], ", "))
	}

	p.printf("\nCorrections\n")

	if len(a.Corrections) == 0 {
		p.printf("  none\n")
	}

	for _, name := range slices.Sorted(maps.Keys(a.Corrections)) {
		p.printf("  %s => %s\n", name, a.Corrections[name])
	}

	return p.err
}
