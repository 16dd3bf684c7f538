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
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/osmdoc/model"
)

func openSample(t *testing.T) *Decoder {
	t.Helper()

	f, err := os.Open("testdata/sample.osm")
	require.NoError(t, err)

	t.Cleanup(func() { _ = f.Close() })

	d, err := NewDecoder(context.Background(), f)
	require.NoError(t, err)

	return d
}

func decodeAll(t *testing.T, src Source) []model.Record {
	t.Helper()

	var recs []model.Record

	for {
		rec, err := src.Decode()
		if err == io.EOF {
			return recs
		}

		require.NoError(t, err)

		recs = append(recs, rec)
	}
}

func TestDecoderHeader(t *testing.T) {
	d := openSample(t)

	assert.Equal(t, "0.6", d.Header.Version)
	assert.Equal(t, "osmdoc testdata", d.Header.Generator)
	assert.Equal(t, "OpenStreetMap and contributors", d.Header.Copyright)
	assert.Nil(t, d.Header.BoundingBox, "bounds are read with the first record")

	_, err := d.Decode()
	require.NoError(t, err)

	expected := &model.BoundingBox{Top: -27.4, Left: 152.9, Bottom: -27.5, Right: 153.1}
	require.NotNil(t, d.Header.BoundingBox)
	assert.True(t, d.Header.BoundingBox.EqualWithin(expected, model.E7))
}

func TestDecoderRecords(t *testing.T) {
	recs := decodeAll(t, openSample(t))

	kinds := make([]model.Kind, len(recs))
	for i, r := range recs {
		kinds[i] = r.Kind
	}

	assert.Equal(t, []model.Kind{"bounds", model.NODE, model.NODE, model.NODE, model.NODE, model.WAY, model.RELATION}, kinds)

	node := recs[1]
	assert.Equal(t, []model.Attr{
		{Name: "id", Value: "1"},
		{Name: "visible", Value: "true"},
		{Name: "version", Value: "2"},
		{Name: "changeset", Value: "100"},
		{Name: "timestamp", Value: "2015-01-01T00:00:00Z"},
		{Name: "user", Value: "alice"},
		{Name: "uid", Value: "11"},
		{Name: "lat", Value: "-27.4698"},
		{Name: "lon", Value: "153.0251"},
	}, node.Attrs)
	assert.Equal(t, model.Tag{Key: "cuisine", Value: "coffee_shop;sandwich"}, node.Entries[2])

	assert.Equal(t, model.Tag{Key: "postcode", Value: "4000 "}, recs[2].Entries[3], "attribute whitespace kept")
	assert.Equal(t, model.Tag{Key: "amenity", Value: "fish & chips"}, recs[4].Entries[3])

	way := recs[5]
	assert.Equal(t, []model.Entry{model.Ref{Value: "1"}, model.Ref{Value: "2"}, model.Ref{Value: "3"}}, way.Entries[:3])

	relation := recs[6]
	assert.Equal(t, []model.Entry{model.Ref{Value: "10"}, model.Tag{Key: "type", Value: "route"}}, relation.Entries)
}

func TestDecoderEntries(t *testing.T) {
	const doc = `<osm>
 <node id="1">
  <tag k="name"/>
  <member k="role" v="outer" ref="7"/>
  <nd>
   <tag k="nested" v="ignored"/>
  </nd>
 </node>
</osm>`

	d, err := NewDecoder(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)

	recs := decodeAll(t, d)
	require.Len(t, recs, 1)

	assert.Equal(t, []model.Entry{
		model.Tag{Key: "name", Value: ""},
		model.Tag{Key: "role", Value: "outer"},
		model.Ref{Value: "7"},
	}, recs[0].Entries)

	_, err = d.Decode()
	assert.Equal(t, io.EOF, err, "EOF is sticky")
}

func TestDecoderErrors(t *testing.T) {
	_, err := NewDecoder(context.Background(), strings.NewReader(`<?xml version="1.0"?>`))
	assert.ErrorIs(t, err, ErrNoRoot)

	d, err := NewDecoder(context.Background(), strings.NewReader(`<osm><node id="1"><tag k="a" v="b"/>`))
	require.NoError(t, err)

	_, err = d.Decode()
	assert.ErrorContains(t, err, "unexpected EOF")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, err = NewDecoder(ctx, strings.NewReader(`<osm><node id="1"/></osm>`))
	require.NoError(t, err)

	_, err = d.Decode()
	assert.ErrorIs(t, err, context.Canceled)
}
