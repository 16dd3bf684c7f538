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

package shape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/osmdoc/model"
	"m4o.io/osmdoc/rules"
	"m4o.io/osmdoc/shape"
)

func node(attrs []model.Attr, entries ...model.Entry) model.Record {
	return model.Record{Kind: model.NODE, Attrs: attrs, Entries: entries}
}

func tag(k, v string) model.Tag { return model.Tag{Key: k, Value: v} }

func shapeTags(t *testing.T, tags ...model.Entry) model.Document {
	t.Helper()

	doc, err := shape.New().Shape(node(nil, tags...))
	require.NoError(t, err)
	require.NotNil(t, doc)

	return doc
}

func TestShapeSkipsOtherKinds(t *testing.T) {
	s := shape.New()

	for _, kind := range []model.Kind{model.RELATION, "bounds", "osm", ""} {
		doc, err := s.Shape(model.Record{Kind: kind, Attrs: []model.Attr{{Name: "id", Value: "1"}}})
		assert.NoError(t, err)
		assert.Nil(t, doc, kind)
	}
}

func TestShapeNode(t *testing.T) {
	rec := node([]model.Attr{
		{Name: "id", Value: "2406124091"},
		{Name: "lat", Value: "-27.4698"},
		{Name: "lon", Value: "153.0251"},
		{Name: "version", Value: "2"},
		{Name: "changeset", Value: "17206049"},
		{Name: "timestamp", Value: "2013-08-03T16:43:42Z"},
		{Name: "user", Value: "linuxUser16"},
		{Name: "uid", Value: "1219059"},
		{Name: "visible", Value: "true"},
	},
		tag("amenity", "cafe"),
		tag("addr:street", "Adelaide St"),
		tag("addr:postcode", "4000"),
		tag("addr:street:name", "Adelaide"),
		tag("name:en", "Corner Cafe"),
	)

	doc, err := shape.New().Shape(rec)
	require.NoError(t, err)

	assert.Equal(t, model.Document{
		"id":      "2406124091",
		"visible": "true",
		"type":    "node",
		"pos":     []float64{-27.4698, 153.0251},
		"created": map[string]string{
			"version":   "2",
			"changeset": "17206049",
			"timestamp": "2013-08-03T16:43:42Z",
			"user":      "linuxUser16",
			"uid":       "1219059",
		},
		"address": map[string]string{
			"street":   "Adelaide Street",
			"postcode": "4000",
		},
		"amenity": "cafe",
		"name_en": "Corner Cafe",
	}, doc)
}

func TestShapeWayRefs(t *testing.T) {
	rec := model.Record{
		Kind:    model.WAY,
		Attrs:   []model.Attr{{Name: "id", Value: "9"}},
		Entries: []model.Entry{model.Ref{Value: "1"}, model.Ref{Value: "2"}},
	}

	doc, err := shape.New().Shape(rec)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, doc[model.KeyNodeRefs])
	assert.Equal(t, "way", doc[model.KeyType])
	assert.NotContains(t, doc, model.KeyAddress)
	assert.NotContains(t, doc, model.KeyCreated)
	assert.NotContains(t, doc, model.KeyPos)
}

func TestShapeRefsKeepOrderAmongTags(t *testing.T) {
	doc := shapeTags(t,
		model.Ref{Value: "30"},
		tag("highway", "service"),
		model.Ref{Value: "10"},
		model.Ref{Value: "20"},
	)

	assert.Equal(t, []string{"30", "10", "20"}, doc[model.KeyNodeRefs])
	assert.Equal(t, "service", doc["highway"])
}

func TestShapeTagAndRefAreIndependent(t *testing.T) {
	doc := shapeTags(t, tag("ref", "M1"), model.Ref{Value: "77"})

	assert.Equal(t, "M1", doc["ref"])
	assert.Equal(t, []string{"77"}, doc[model.KeyNodeRefs])
}

func TestShapeTypeIsTheKind(t *testing.T) {
	rec := node([]model.Attr{{Name: "type", Value: "bogus"}}, tag("type", "multipolygon"))

	doc, err := shape.New().Shape(rec)
	require.NoError(t, err)

	assert.Equal(t, "node", doc[model.KeyType])
	assert.Equal(t, "multipolygon", doc[model.KeyTypeSecondary])
}

func TestShapePos(t *testing.T) {
	s := shape.New()

	doc, err := s.Shape(node([]model.Attr{{Name: "lon", Value: "153"}, {Name: "lat", Value: "-27"}}))
	require.NoError(t, err)
	assert.Equal(t, []float64{-27, 153}, doc[model.KeyPos])

	doc, err = s.Shape(node([]model.Attr{{Name: "id", Value: "1"}, {Name: "lat", Value: "-27"}}))
	require.NoError(t, err)
	assert.NotContains(t, doc, model.KeyPos)
	assert.NotContains(t, doc, "lat")
	assert.Equal(t, "1", doc["id"])
}

func TestShapeMalformedCoordinate(t *testing.T) {
	_, err := shape.New().Shape(node([]model.Attr{{Name: "lat", Value: "north"}, {Name: "lon", Value: "153"}}))

	assert.ErrorIs(t, err, shape.ErrMalformedCoordinate)
	assert.ErrorContains(t, err, `lat="north"`)
}

func TestShapeCreatedOnlyWhenPresent(t *testing.T) {
	doc := shapeTags(t, tag("amenity", "bench"))
	assert.NotContains(t, doc, model.KeyCreated)

	doc, err := shape.New().Shape(node([]model.Attr{{Name: "user", Value: "ozbloke"}}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user": "ozbloke"}, doc[model.KeyCreated])
}

func TestShapePostcode(t *testing.T) {
	doc := shapeTags(t, tag("postcode", "4000 "), tag("postal_code", "4000"), tag("zip", "4000 ;4001"))

	assert.Equal(t, "4000", doc["postcode"])
	assert.Equal(t, "4000", doc["postal_code"])
	assert.Equal(t, []string{"4000 ", "4001"}, doc["zip"])
}

func TestShapeMultiValue(t *testing.T) {
	doc := shapeTags(t,
		tag("route_ref", "a;b,c"),
		tag("cuisine", "pizza,pasta"),
		tag("opening_hours", "Mo-Fr 08:00-17:00"),
	)

	assert.Equal(t, []string{"a", "b,c"}, doc["route_ref"])
	assert.Equal(t, []string{"pizza", "pasta"}, doc["cuisine"])
	assert.Equal(t, "Mo-Fr 08:00-17:00", doc["opening_hours"])
}

func TestShapeAddress(t *testing.T) {
	doc := shapeTags(t,
		tag("addr:street", "Main St"),
		tag("addr:street:predicted", "Main"),
		tag("addr:housenumber", "12;14"),
		tag("addr:city", "Brisbane"),
	)

	assert.Equal(t, map[string]string{
		"street":      "Main Street",
		"housenumber": "12;14",
		"city":        "Brisbane",
	}, doc[model.KeyAddress])
	assert.NotContains(t, doc, "addr_street_predicted")
}

func TestShapeAddressStreetAlreadyAType(t *testing.T) {
	doc := shapeTags(t, tag("addr:street", "Street"))

	assert.Equal(t, "Street", doc[model.KeyAddress].(map[string]string)["street"])
}

func TestShapeDropsProblemKeys(t *testing.T) {
	doc := shapeTags(t,
		tag("a;b", "x"),
		tag("k=v", "x"),
		tag("note.en", "x"),
		tag("addr:street name", "x"),
		tag("fine", "x"),
	)

	assert.Equal(t, model.Document{"type": "node", "fine": "x"}, doc)
}

func TestShapeIsIdempotentOnCoreFields(t *testing.T) {
	attrs := []model.Attr{
		{Name: "id", Value: "5"},
		{Name: "lat", Value: "-27.5"},
		{Name: "lon", Value: "153.1"},
		{Name: "user", Value: "u"},
	}

	s := shape.New()

	first, err := s.Shape(node(attrs, tag("amenity", "toilets")))
	require.NoError(t, err)

	second, err := s.Shape(node(attrs))
	require.NoError(t, err)

	for _, k := range []string{model.KeyType, model.KeyPos, model.KeyCreated} {
		assert.Equal(t, first[k], second[k], k)
	}
}

func TestExplain(t *testing.T) {
	s := shape.New()

	test_cases := []struct {
		tag  model.Tag
		want string
	}{
		{tag("a;b", "1"), shape.RuleProblemKey},
		{tag("addr:street:type", "Street"), shape.RuleStreetQualifier},
		{tag("addr:street", "Main St"), shape.RuleAddress},
		{tag("addr:postcode", "4000 "), shape.RuleAddress},
		{tag("type", "a;b"), shape.RuleSecondaryType},
		{tag("postcode", "4000 "), shape.RulePostcode},
		{tag("route_ref", "1;2"), shape.RuleSemicolonList},
		{tag("cuisine", "thai,indian"), shape.RuleCommaList},
		{tag("name", "Queen Street Mall"), shape.RuleVerbatim},
	}

	for _, tc := range test_cases {
		t.Run(tc.tag.Key, func(t *testing.T) {
			assert.Equal(t, tc.want, s.Explain(tc.tag))
		})
	}
}

func TestRulesOrder(t *testing.T) {
	var names []string
	for _, r := range shape.Rules(rules.Default()) {
		names = append(names, r.Name)
	}

	assert.Equal(t, []string{
		shape.RuleProblemKey,
		shape.RuleStreetQualifier,
		shape.RuleAddress,
		shape.RuleSecondaryType,
		shape.RulePostcode,
		shape.RuleSemicolonList,
		shape.RuleCommaList,
		shape.RuleVerbatim,
	}, names)
}

func TestWithTables(t *testing.T) {
	tables := rules.New(rules.WithStreetCorrections(rules.Correction{From: "Pde", To: "Parade"}))
	s := shape.New(shape.WithTables(tables))

	doc, err := s.Shape(node(nil, tag("addr:street", "Grand Pde"), tag("addr:city", "St Lucia")))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"street": "Grand Parade", "city": "St Lucia"}, doc[model.KeyAddress])
	assert.Equal(t, tables.StreetCorrections(), s.Tables().StreetCorrections())
}
