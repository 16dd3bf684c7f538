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

package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"m4o.io/osmdoc/pipeline"
)

// operators returns the operator of every stage, in order.
func operators(p mongo.Pipeline) []string {
	ops := make([]string, len(p))
	for i, stage := range p {
		ops[i] = stage[0].Key
	}

	return ops
}

func TestGroupCountExistingLimitedDescending(t *testing.T) {
	p := pipeline.GroupCount("amenity", pipeline.OnlyExisting(), pipeline.Limit(5), pipeline.Sort(pipeline.Descending))

	require.Len(t, p, 4)
	assert.Equal(t, []string{"$match", "$group", "$sort", "$limit"}, operators(p))

	assert.Equal(t, bson.D{{Key: "amenity", Value: bson.D{{Key: "$exists", Value: true}}}}, p[0][0].Value)
	assert.Equal(t, bson.D{
		{Key: "_id", Value: "$amenity"},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}, p[1][0].Value)
	assert.Equal(t, bson.D{{Key: "count", Value: int32(-1)}}, p[2][0].Value)
	assert.Equal(t, int64(5), p[3][0].Value)
}

func TestGroupCountDefaults(t *testing.T) {
	p := pipeline.GroupCount("created.user")

	assert.Equal(t, []string{"$group", "$sort"}, operators(p))
	assert.Equal(t, "$created.user", p[0][0].Value.(bson.D)[0].Value)
	assert.Equal(t, bson.D{{Key: "count", Value: int32(1)}}, p[1][0].Value)
}

func TestPublicTransport(t *testing.T) {
	p := pipeline.PublicTransport()

	assert.Equal(t, []string{"$match", "$group", "$sort"}, operators(p))
	assert.Equal(t, "transport_zone", p[0][0].Value.(bson.D)[0].Key)
	assert.Equal(t, bson.D{{Key: "_id", Value: int32(1)}}, p[2][0].Value)
}

func TestUnwindGroup(t *testing.T) {
	p := pipeline.UnwindGroup("cuisine")

	assert.Equal(t, []string{"$match", "$unwind", "$group", "$sort"}, operators(p))
	assert.Equal(t, "$cuisine", p[1][0].Value)
	assert.Equal(t, "$cuisine", p[2][0].Value.(bson.D)[0].Value)
}

func TestAverageListLength(t *testing.T) {
	p := pipeline.AverageListLength("route_ref")

	assert.Equal(t, []string{"$match", "$project", "$group"}, operators(p))
	assert.Equal(t, bson.D{{Key: "route_ref", Value: bson.D{{Key: "$type", Value: "array"}}}}, p[0][0].Value)
}

func TestMultiValuedRatio(t *testing.T) {
	p := pipeline.MultiValuedRatio("route_ref")

	assert.Equal(t, []string{"$match", "$project", "$group", "$project"}, operators(p))

	ratio := p[3][0].Value.(bson.D)
	assert.Equal(t, "ratio", ratio[len(ratio)-1].Key)
}

func TestDistinctCount(t *testing.T) {
	p := pipeline.DistinctCount("created.user")

	assert.Equal(t, []string{"$match", "$group", "$group"}, operators(p))
	assert.Equal(t, bson.D{{Key: "_id", Value: "$created.user"}}, p[1][0].Value)
}

func TestProblemCharacters(t *testing.T) {
	p := pipeline.ProblemCharacters("amenity", `[;,]`)

	assert.Equal(t, []string{"$unwind", "$match", "$group"}, operators(p))
	assert.Equal(t, bson.D{{Key: "amenity", Value: bson.D{
		{Key: "$regex", Value: primitive.Regex{Pattern: `[;,]`}},
	}}}, p[1][0].Value)
}

func TestMalformedPostcodes(t *testing.T) {
	p := pipeline.MalformedPostcodes("postcode", `^\d{4}$`)

	assert.Equal(t, []string{"$match"}, operators(p))
	assert.Equal(t, bson.D{{Key: "postcode", Value: bson.D{
		{Key: "$exists", Value: true},
		{Key: "$not", Value: primitive.Regex{Pattern: `^\d{4}$`}},
	}}}, p[0][0].Value)
}

func TestMatch(t *testing.T) {
	p := pipeline.Match(bson.D{{Key: "type", Value: "way"}})

	assert.Equal(t, mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "type", Value: "way"}}}}}, p)
}
