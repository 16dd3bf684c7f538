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

package osmdoc

import (
	"testing"
	"time"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"

	"m4o.io/osmdoc/model"
)

var stamp = time.Date(2015, 1, 2, 3, 4, 5, 0, time.UTC)

func TestNodeRecord(t *testing.T) {
	n := &osm.Node{
		ID:          42,
		Lat:         -27.4698,
		Lon:         153.0251000001,
		User:        "alice",
		UserID:      11,
		Visible:     true,
		Version:     2,
		ChangesetID: 100,
		Timestamp:   stamp,
		Tags:        osm.Tags{{Key: "amenity", Value: "cafe"}},
	}

	assert.Equal(t, model.Record{
		Kind: model.NODE,
		Attrs: []model.Attr{
			{Name: "id", Value: "42"},
			{Name: "version", Value: "2"},
			{Name: "changeset", Value: "100"},
			{Name: "timestamp", Value: "2015-01-02T03:04:05Z"},
			{Name: "user", Value: "alice"},
			{Name: "uid", Value: "11"},
			{Name: "lat", Value: "-27.4698"},
			{Name: "lon", Value: "153.0251"},
		},
		Entries: []model.Entry{model.Tag{Key: "amenity", Value: "cafe"}},
	}, nodeRecord(n))
}

func TestWayRecord(t *testing.T) {
	w := &osm.Way{
		ID:        7,
		Version:   1,
		Timestamp: stamp,
		Nodes:     osm.WayNodes{{ID: 1}, {ID: 2}},
		Tags:      osm.Tags{{Key: "highway", Value: "residential"}},
	}

	rec := wayRecord(w)

	assert.Equal(t, model.WAY, rec.Kind)
	assert.Equal(t, []model.Entry{
		model.Tag{Key: "highway", Value: "residential"},
		model.Ref{Value: "1"},
		model.Ref{Value: "2"},
	}, rec.Entries)

	visible, ok := rec.Attr("visible")
	assert.True(t, ok, "deleted objects are marked")
	assert.Equal(t, "false", visible)
}

func TestRelationRecord(t *testing.T) {
	r := &osm.Relation{
		ID:        9,
		Visible:   true,
		Timestamp: stamp,
		Members:   osm.Members{{Type: osm.TypeWay, Ref: 7, Role: "outer"}},
	}

	rec := relationRecord(r)

	assert.Equal(t, model.RELATION, rec.Kind)
	assert.Equal(t, []model.Entry{model.Ref{Value: "7"}}, rec.Entries)
}

func TestFormatCoordinate(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{153.0251, "153.0251"},
		{-27.46980000004, "-27.4698"},
		{51.50735091, "51.5073509"},
		{10, "10"},
		{0, "0"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, formatCoordinate(tc.in))
	}
}
