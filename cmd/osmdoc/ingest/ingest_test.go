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

package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"m4o.io/osmdoc"
	"m4o.io/osmdoc/model"
	"m4o.io/osmdoc/storage/memory"
)

func decoder(t *testing.T) *osmdoc.Decoder {
	t.Helper()

	f, err := os.Open("../../../testdata/sample.osm")
	require.NoError(t, err)

	t.Cleanup(func() { _ = f.Close() })

	d, err := osmdoc.NewDecoder(context.Background(), f)
	require.NoError(t, err)

	return d
}

func TestRunIngest(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	var lines bytes.Buffer

	stats, err := runIngest(ctx, decoder(t), s, false, osmdoc.WithWriter(osmdoc.NewJSONWriter(&lines, false)))
	require.NoError(t, err)

	assert.Equal(t, int64(7), stats.Records)
	assert.Equal(t, int64(5), stats.Documents)
	assert.Equal(t, 5, bytes.Count(lines.Bytes(), []byte("\n")))

	n, err := s.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	// a second load appends unless the store is dropped first
	_, err = runIngest(ctx, decoder(t), s, false)
	require.NoError(t, err)

	n, err = s.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	_, err = runIngest(ctx, decoder(t), s, true)
	require.NoError(t, err)

	n, err = s.Count(ctx, bson.D{{Key: "type", Value: "way"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRenderTxt(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, 8192))
	buf.Reset()

	saved := out

	defer func() { out = saved }()

	out = buf

	renderTxt(&osmdoc.Stats{
		Records:     1234567,
		Documents:   1234000,
		Nodes:       1000000,
		Ways:        234000,
		Skipped:     2,
		BoundingBox: model.InitialBoundingBox(),
	})

	assert.Equal(t, `Records: 1,234,567
Documents: 1,234,000
Nodes: 1,000,000
Ways: 234,000
Skipped: 2
`, buf.String())

	buf.Reset()

	renderTxt(&osmdoc.Stats{BoundingBox: &model.BoundingBox{Top: -27, Left: 152.6, Bottom: -27.8, Right: 153.4}})

	assert.Contains(t, buf.String(), "BoundingBox: [(-27, 152.6) (-27.8, 153.4)]\n")
	assert.Contains(t, buf.String(), "Diagonal: ")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer

	saved := out

	defer func() { out = saved }()

	out = &buf

	bbox := &model.BoundingBox{Top: -27.46, Left: 153.0234, Bottom: -27.48, Right: 153.04}
	require.NoError(t, renderJSON(&osmdoc.Stats{Records: 7, Documents: 5, Nodes: 4, Ways: 1, BoundingBox: bbox}))

	stats := &osmdoc.Stats{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), stats))

	assert.Equal(t, int64(7), stats.Records)
	assert.Equal(t, int64(4), stats.Nodes)
	assert.True(t, stats.BoundingBox.EqualWithin(bbox, model.E7))
}
