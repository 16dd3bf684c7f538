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

// Package pipeline builds the aggregation pipelines run against the document
// corpus. Builders are pure: they describe a query and never touch a store.
package pipeline

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Output fields of the pipelines.
const (
	IDField      = "_id"
	CountField   = "count"
	LengthField  = "length"
	AverageField = "average"
	KindField    = "kind"
	SingleField  = "single"
	MultiField   = "multi"
	TotalField   = "total"
	RatioField   = "ratio"

	// TransportZoneField is the tag that marks public transport stops.
	TransportZoneField = "transport_zone"

	stringType = "string"
	arrayType  = "array"
)

// SortOrder is the direction of a $sort stage.
type SortOrder int32

const (
	Ascending  SortOrder = 1
	Descending SortOrder = -1
)

// groupOptions provides optional configuration parameters for GroupCount.
type groupOptions struct {
	onlyExisting bool
	limit        int64
	order        SortOrder
}

// GroupOption configures a GroupCount pipeline.
type GroupOption func(*groupOptions)

// OnlyExisting leaves out documents that lack the field instead of counting
// them under a null group.
func OnlyExisting() GroupOption {
	return func(o *groupOptions) {
		o.onlyExisting = true
	}
}

// Limit caps the number of groups returned.
func Limit(n int64) GroupOption {
	return func(o *groupOptions) {
		o.limit = n
	}
}

// Sort sets the direction in which groups are ordered by count.
func Sort(order SortOrder) GroupOption {
	return func(o *groupOptions) {
		o.order = order
	}
}

// GroupCount groups documents by the value of field and counts each group.
func GroupCount(field string, opts ...GroupOption) mongo.Pipeline {
	cfg := groupOptions{order: Ascending}

	for _, opt := range opts {
		opt(&cfg)
	}

	var p mongo.Pipeline

	if cfg.onlyExisting {
		p = append(p, exists(field))
	}

	p = append(p,
		groupCount(path(field)),
		sortBy(CountField, cfg.order),
	)

	if cfg.limit > 0 {
		p = append(p, bson.D{{Key: "$limit", Value: cfg.limit}})
	}

	return p
}

// PublicTransport counts the documents in each transport zone, ordered by
// zone.
func PublicTransport() mongo.Pipeline {
	return mongo.Pipeline{
		exists(TransportZoneField),
		groupCount(path(TransportZoneField)),
		sortBy(IDField, Ascending),
	}
}

// UnwindGroup counts each element of a list field as its own value.
func UnwindGroup(field string) mongo.Pipeline {
	return mongo.Pipeline{
		exists(field),
		unwind(field),
		groupCount(path(field)),
		sortBy(CountField, Ascending),
	}
}

// AverageListLength averages the length of field over the documents where it
// holds a list.
func AverageListLength(field string) mongo.Pipeline {
	return mongo.Pipeline{
		match(field, bson.D{{Key: "$type", Value: arrayType}}),
		{{Key: "$project", Value: bson.D{
			{Key: LengthField, Value: bson.D{{Key: "$size", Value: path(field)}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: IDField, Value: nil},
			{Key: AverageField, Value: bson.D{{Key: "$avg", Value: path(LengthField)}}},
		}}},
	}
}

// MultiValuedRatio computes the share of documents whose field holds a list
// rather than a single string.
func MultiValuedRatio(field string) mongo.Pipeline {
	isString := bson.D{{Key: "$eq", Value: bson.A{path(KindField), stringType}}}
	notString := bson.D{{Key: "$ne", Value: bson.A{path(KindField), stringType}}}

	return mongo.Pipeline{
		exists(field),
		{{Key: "$project", Value: bson.D{
			{Key: KindField, Value: bson.D{{Key: "$type", Value: path(field)}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: IDField, Value: nil},
			{Key: SingleField, Value: sumIf(isString)},
			{Key: MultiField, Value: sumIf(notString)},
			{Key: TotalField, Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: IDField, Value: 0},
			{Key: SingleField, Value: 1},
			{Key: MultiField, Value: 1},
			{Key: TotalField, Value: 1},
			{Key: RatioField, Value: bson.D{{Key: "$divide", Value: bson.A{path(MultiField), path(TotalField)}}}},
		}}},
	}
}

// DistinctCount counts the distinct values of field.
func DistinctCount(field string) mongo.Pipeline {
	return mongo.Pipeline{
		exists(field),
		{{Key: "$group", Value: bson.D{{Key: IDField, Value: path(field)}}}},
		{{Key: "$group", Value: bson.D{
			{Key: IDField, Value: nil},
			{Key: CountField, Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

// ProblemCharacters lists the distinct elements of a list field that match
// pattern.
func ProblemCharacters(field, pattern string) mongo.Pipeline {
	return mongo.Pipeline{
		unwind(field),
		match(field, bson.D{{Key: "$regex", Value: primitive.Regex{Pattern: pattern}}}),
		{{Key: "$group", Value: bson.D{{Key: IDField, Value: path(field)}}}},
	}
}

// MalformedPostcodes returns the documents whose field is present but does not
// match the valid pattern.
func MalformedPostcodes(field, valid string) mongo.Pipeline {
	return mongo.Pipeline{
		match(field, bson.D{
			{Key: "$exists", Value: true},
			{Key: "$not", Value: primitive.Regex{Pattern: valid}},
		}),
	}
}

// Match returns a single-stage pipeline filtering on filter.
func Match(filter bson.D) mongo.Pipeline {
	return mongo.Pipeline{{{Key: "$match", Value: filter}}}
}

func path(field string) string {
	return "$" + field
}

func match(field string, cond bson.D) bson.D {
	return bson.D{{Key: "$match", Value: bson.D{{Key: field, Value: cond}}}}
}

func exists(field string) bson.D {
	return match(field, bson.D{{Key: "$exists", Value: true}})
}

func unwind(field string) bson.D {
	return bson.D{{Key: "$unwind", Value: path(field)}}
}

func groupCount(id any) bson.D {
	return bson.D{{Key: "$group", Value: bson.D{
		{Key: IDField, Value: id},
		{Key: CountField, Value: bson.D{{Key: "$sum", Value: 1}}},
	}}}
}

func sortBy(field string, order SortOrder) bson.D {
	return bson.D{{Key: "$sort", Value: bson.D{{Key: field, Value: int32(order)}}}}
}

func sumIf(cond bson.D) bson.D {
	return bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{cond, 1, 0}}}}}
}
