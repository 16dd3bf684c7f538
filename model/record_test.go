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

package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"m4o.io/osmdoc/model"
)

func TestRecordAttr(t *testing.T) {
	r := model.Record{
		Kind:  model.NODE,
		Attrs: []model.Attr{{Name: "id", Value: "42"}, {Name: "lat", Value: "-27.4"}},
	}

	v, ok := r.Attr("lat")
	assert.True(t, ok)
	assert.Equal(t, "-27.4", v)

	_, ok = r.Attr("lon")
	assert.False(t, ok)
}

func TestRecordTags(t *testing.T) {
	r := model.Record{
		Kind: model.WAY,
		Entries: []model.Entry{
			model.Ref{Value: "1"},
			model.Tag{Key: "highway", Value: "residential"},
			model.Ref{Value: "2"},
			model.Tag{Key: "name", Value: "Queen Street"},
		},
	}

	assert.Equal(t, []model.Tag{
		{Key: "highway", Value: "residential"},
		{Key: "name", Value: "Queen Street"},
	}, r.Tags())
}

func TestDocumentAccessors(t *testing.T) {
	d := model.Document{
		model.KeyType: "node",
		model.KeyPos:  []float64{-27.4698, 153.0251},
	}

	assert.Equal(t, model.NODE, d.Type())

	lat, lon, ok := d.Pos()
	assert.True(t, ok)
	assert.Equal(t, model.Degrees(-27.4698), lat)
	assert.Equal(t, model.Degrees(153.0251), lon)

	created := d.Sub(model.KeyCreated)
	created["user"] = "mapper"
	assert.Equal(t, map[string]string{"user": "mapper"}, d[model.KeyCreated])
	assert.Equal(t, "mapper", d.Sub(model.KeyCreated)["user"])

	_, _, ok = model.Document{}.Pos()
	assert.False(t, ok)
}
