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

// Package report runs the canned battery of queries over a document store.
package report

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"m4o.io/osmdoc/model"
	"m4o.io/osmdoc/pipeline"
	"m4o.io/osmdoc/rules"
	"m4o.io/osmdoc/storage"
)

// Fields the battery queries.
const (
	PostcodeField        = "postcode"
	AddressPostcodeField = model.KeyAddress + ".postcode"
	UserField            = model.KeyCreated + ".user"
	RouteRefField        = "route_ref"
	AmenityField         = "amenity"
)

// Group is one value of a field and the number of documents holding it.
type Group struct {
	Value any   `json:"value"`
	Count int64 `json:"count"`
}

// Grouping is the result of counting the documents per value of a field.
type Grouping struct {
	Title  string  `json:"title"`
	Field  string  `json:"field"`
	Groups []Group `json:"groups"`
}

// Ratio is the split between single- and multi-valued occurrences of a field.
type Ratio struct {
	Single int64   `json:"single"`
	Multi  int64   `json:"multi"`
	Total  int64   `json:"total"`
	Ratio  float64 `json:"ratio"`
}

// Report is the outcome of the battery.
type Report struct {
	MalformedPostcodes        int64 `json:"malformed_postcodes"`
	MalformedAddressPostcodes int64 `json:"malformed_address_postcodes"`

	Groupings      []Grouping `json:"groupings"`
	TransportZones []Group    `json:"transport_zones"`

	Documents int64 `json:"documents"`
	Nodes     int64 `json:"nodes"`
	Ways      int64 `json:"ways"`

	UniqueUsers           int64 `json:"unique_users"`
	UniqueUsersAggregated int64 `json:"unique_users_aggregated"`

	// Overwritten counts the documents whose type is neither node nor way,
	// which happens when a tag named type replaces the kind.
	Overwritten int64 `json:"overwritten"`

	AverageRouteRefs float64 `json:"average_route_refs"`
	RouteRefs        Ratio   `json:"route_refs"`

	ProblemAmenities []string `json:"problem_amenities"`
}

type groupQuery struct {
	title string
	field string
	opts  []pipeline.GroupOption
}

func top(n int64) []pipeline.GroupOption {
	return []pipeline.GroupOption{pipeline.OnlyExisting(), pipeline.Sort(pipeline.Descending), pipeline.Limit(n)}
}

var existing = []pipeline.GroupOption{pipeline.OnlyExisting()}

var groupings = []groupQuery{
	{"Documents by type", model.KeyType, nil},
	{"Documents by user", UserField, nil},
	{"Documents by source", "source", nil},
	{"Documents by editor", "created_by", nil},
	{"Documents by postcode", AddressPostcodeField, nil},
	{"Speed limits", "maxspeed", existing},
	{"Denominations", "denomination", existing},
	{"Religions", "religion", existing},
	{"Top user", UserField, top(1)},
	{"Top amenities", AmenityField, top(5)},
	{"Top cuisines", "cuisine", top(3)},
	{"Top source", "source", top(1)},
}

// Run queries s with the battery. Pattern based checks use the patterns of
// tables.
func Run(ctx context.Context, s storage.Store, tables rules.Tables) (*Report, error) {
	r := &Report{}

	var err error

	if r.MalformedPostcodes, err = countRows(ctx, s, pipeline.MalformedPostcodes(PostcodeField, tables.ValidPostcodePattern())); err != nil {
		return nil, err
	}

	if r.MalformedAddressPostcodes, err = countRows(ctx, s, pipeline.MalformedPostcodes(AddressPostcodeField, tables.ValidPostcodePattern())); err != nil {
		return nil, err
	}

	for _, q := range groupings {
		groups, err := Groups(ctx, s, q.field, q.opts...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", q.title, err)
		}

		r.Groupings = append(r.Groupings, Grouping{Title: q.title, Field: q.field, Groups: groups})
	}

	if r.TransportZones, err = aggregateGroups(ctx, s, pipeline.PublicTransport()); err != nil {
		return nil, err
	}

	counts := []struct {
		dst    *int64
		filter bson.D
	}{
		{&r.Documents, nil},
		{&r.Ways, bson.D{{Key: model.KeyType, Value: string(model.WAY)}}},
		{&r.Nodes, bson.D{{Key: model.KeyType, Value: string(model.NODE)}}},
		{&r.Overwritten, bson.D{{Key: model.KeyType, Value: bson.D{
			{Key: "$nin", Value: bson.A{string(model.NODE), string(model.WAY)}},
		}}}},
	}

	for _, c := range counts {
		if *c.dst, err = s.Count(ctx, c.filter); err != nil {
			return nil, err
		}
	}

	users, err := s.Distinct(ctx, UserField)
	if err != nil {
		return nil, err
	}

	r.UniqueUsers = int64(len(users))

	if r.UniqueUsersAggregated, err = single(ctx, s, pipeline.DistinctCount(UserField), pipeline.CountField); err != nil {
		return nil, err
	}

	if err = routeStatistics(ctx, s, r); err != nil {
		return nil, err
	}

	problems, err := aggregateGroups(ctx, s, pipeline.ProblemCharacters(AmenityField, tables.ProblemValuePattern()))
	if err != nil {
		return nil, err
	}

	for _, g := range problems {
		r.ProblemAmenities = append(r.ProblemAmenities, label(g.Value))
	}

	return r, nil
}

func routeStatistics(ctx context.Context, s storage.Store, r *Report) error {
	rows, err := s.Aggregate(ctx, pipeline.AverageListLength(RouteRefField))
	if err != nil {
		return err
	}

	if len(rows) > 0 {
		r.AverageRouteRefs, _ = toFloat(rows[0][pipeline.AverageField])
	}

	rows, err = s.Aggregate(ctx, pipeline.MultiValuedRatio(RouteRefField))
	if err != nil {
		return err
	}

	if len(rows) > 0 {
		row := rows[0]

		r.RouteRefs = Ratio{
			Single: toInt(row[pipeline.SingleField]),
			Multi:  toInt(row[pipeline.MultiField]),
			Total:  toInt(row[pipeline.TotalField]),
		}
		r.RouteRefs.Ratio, _ = toFloat(row[pipeline.RatioField])
	}

	return nil
}

func countRows(ctx context.Context, s storage.Store, p mongo.Pipeline) (int64, error) {
	rows, err := s.Aggregate(ctx, p)
	if err != nil {
		return 0, err
	}

	return int64(len(rows)), nil
}

// single returns a numeric field of the only row a pipeline produces, or 0
// when it produces none.
func single(ctx context.Context, s storage.Store, p mongo.Pipeline, field string) (int64, error) {
	rows, err := s.Aggregate(ctx, p)
	if err != nil || len(rows) == 0 {
		return 0, err
	}

	return toInt(rows[0][field]), nil
}

// Groups counts the documents of s per value of field.
func Groups(ctx context.Context, s storage.Store, field string, opts ...pipeline.GroupOption) ([]Group, error) {
	return aggregateGroups(ctx, s, pipeline.GroupCount(field, opts...))
}

func aggregateGroups(ctx context.Context, s storage.Store, p mongo.Pipeline) ([]Group, error) {
	rows, err := s.Aggregate(ctx, p)
	if err != nil {
		return nil, err
	}

	groups := make([]Group, len(rows))
	for i, row := range rows {
		groups[i] = Group{Value: row[pipeline.IDField], Count: toInt(row[pipeline.CountField])}
	}

	return groups, nil
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int32, int64, int:
		return float64(toInt(n)), true
	default:
		return 0, false
	}
}
