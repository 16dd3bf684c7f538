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

// Package shape turns OpenStreetMap records into normalized documents.
//
// A document keeps every primary attribute of its node or way, moves the
// provenance attributes under "created" and the coordinates into "pos", and
// then runs each tag through an ordered cascade of rules (see Rules). The
// first matching rule decides what, if anything, the tag contributes.
package shape

import (
	"errors"
	"fmt"

	"m4o.io/osmdoc/model"
	"m4o.io/osmdoc/rules"
)

// ErrMalformedCoordinate is returned when lat or lon is not a number.
var ErrMalformedCoordinate = errors.New("malformed coordinate")

// shaperOptions provides optional configuration parameters for Shaper construction.
type shaperOptions struct {
	tables rules.Tables
}

// Option configures how we set up the shaper.
type Option func(*shaperOptions)

// WithTables lets you replace the default rule tables.
func WithTables(t rules.Tables) Option {
	return func(o *shaperOptions) {
		o.tables = t
	}
}

// Shaper converts records into documents. It holds no mutable state and is
// safe for concurrent use.
type Shaper struct {
	tables rules.Tables
	rules  []Rule
}

// New returns a Shaper configured with opts.
func New(opts ...Option) *Shaper {
	cfg := shaperOptions{tables: rules.Default()}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &Shaper{
		tables: cfg.tables,
		rules:  Rules(cfg.tables),
	}
}

// Tables returns the rule tables the shaper was built with.
func (s *Shaper) Tables() rules.Tables {
	return s.tables
}

// Shape returns the document for a node or way. Records of any other kind
// produce a nil document and no error.
func (s *Shaper) Shape(rec model.Record) (model.Document, error) {
	if rec.Kind != model.NODE && rec.Kind != model.WAY {
		return nil, nil
	}

	doc := model.Document{}

	if err := s.shapeAttrs(doc, rec); err != nil {
		return nil, err
	}

	doc[model.KeyType] = string(rec.Kind)

	for _, e := range rec.Entries {
		switch e := e.(type) {
		case model.Tag:
			s.rule(e).Apply(doc, e)
		case model.Ref:
			refs, _ := doc[model.KeyNodeRefs].([]string)
			doc[model.KeyNodeRefs] = append(refs, e.Value)
		}
	}

	return doc, nil
}

// Explain returns the name of the rule that decides the fate of tag.
func (s *Shaper) Explain(tag model.Tag) string {
	return s.rule(tag).Name
}

func (s *Shaper) rule(tag model.Tag) Rule {
	for _, r := range s.rules {
		if r.Match(tag) {
			return r
		}
	}

	// unreachable, the verbatim rule matches everything
	return s.rules[len(s.rules)-1]
}

func (s *Shaper) shapeAttrs(doc model.Document, rec model.Record) error {
	lat, hasLat := rec.Attr(rules.LatAttr)
	lon, hasLon := rec.Attr(rules.LonAttr)

	for _, a := range rec.Attrs {
		switch {
		case s.tables.IsCreated(a.Name):
			doc.Sub(model.KeyCreated)[a.Name] = a.Value

		case a.Name == rules.LatAttr || a.Name == rules.LonAttr:
			if !hasLat || !hasLon {
				continue
			}

			if _, ok := doc[model.KeyPos]; ok {
				continue
			}

			pos, err := position(lat, lon)
			if err != nil {
				return err
			}

			doc[model.KeyPos] = pos

		default:
			doc[a.Name] = a.Value
		}
	}

	return nil
}

func position(lat, lon string) ([]float64, error) {
	la, err := model.ParseDegrees(lat)
	if err != nil {
		return nil, fmt.Errorf("%w lat=%q: %w", ErrMalformedCoordinate, lat, err)
	}

	lo, err := model.ParseDegrees(lon)
	if err != nil {
		return nil, fmt.Errorf("%w lon=%q: %w", ErrMalformedCoordinate, lon, err)
	}

	return []float64{float64(la), float64(lo)}, nil
}
