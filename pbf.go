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
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"m4o.io/osmdoc/model"
)

// coordinatePrecision is the number of decimals OpenStreetMap stores.
const coordinatePrecision = 7

// PBFSource reads records from an OpenStreetMap PBF file. Attributes are
// rendered as the strings an XML export would carry.
type PBFSource struct {
	Header model.Header

	scanner *osmpbf.Scanner
}

var _ Source = (*PBFSource)(nil)

// NewPBFSource returns a source decoding r with procs goroutines.
func NewPBFSource(ctx context.Context, r io.Reader, procs int) (*PBFSource, error) {
	scanner := osmpbf.New(ctx, r, max(procs, 1))

	s := &PBFSource{scanner: scanner}

	h, err := scanner.Header()
	if err != nil {
		_ = scanner.Close()

		return nil, fmt.Errorf("reading pbf header: %w", err)
	}

	s.Header.Generator = h.WritingProgram

	if h.Bounds != nil {
		s.Header.BoundingBox = &model.BoundingBox{
			Top:    model.Degrees(h.Bounds.MaxLat),
			Left:   model.Degrees(h.Bounds.MinLon),
			Bottom: model.Degrees(h.Bounds.MinLat),
			Right:  model.Degrees(h.Bounds.MaxLon),
		}
	}

	return s, nil
}

// Decode returns the next node, way or relation. Changesets and other
// objects are skipped.
func (s *PBFSource) Decode() (model.Record, error) {
	for s.scanner.Scan() {
		switch o := s.scanner.Object().(type) {
		case *osm.Node:
			return nodeRecord(o), nil
		case *osm.Way:
			return wayRecord(o), nil
		case *osm.Relation:
			return relationRecord(o), nil
		}
	}

	if err := s.scanner.Err(); err != nil {
		return model.Record{}, err
	}

	return model.Record{}, io.EOF
}

func (s *PBFSource) Close() error {
	return s.scanner.Close()
}

type meta struct {
	id        int64
	version   int
	changeset osm.ChangesetID
	timestamp time.Time
	user      string
	uid       osm.UserID
	visible   bool
}

func (m meta) attrs(extra ...model.Attr) []model.Attr {
	attrs := []model.Attr{{Name: "id", Value: strconv.FormatInt(m.id, 10)}}

	if !m.visible {
		attrs = append(attrs, model.Attr{Name: "visible", Value: "false"})
	}

	attrs = append(attrs,
		model.Attr{Name: "version", Value: strconv.Itoa(m.version)},
		model.Attr{Name: "changeset", Value: strconv.FormatInt(int64(m.changeset), 10)},
		model.Attr{Name: "timestamp", Value: m.timestamp.UTC().Format(time.RFC3339)},
		model.Attr{Name: "user", Value: m.user},
		model.Attr{Name: "uid", Value: strconv.FormatInt(int64(m.uid), 10)},
	)

	return append(attrs, extra...)
}

func tagEntries(tags osm.Tags, capacity int) []model.Entry {
	entries := make([]model.Entry, 0, len(tags)+capacity)

	for _, t := range tags {
		entries = append(entries, model.Tag{Key: t.Key, Value: t.Value})
	}

	return entries
}

func nodeRecord(n *osm.Node) model.Record {
	m := meta{int64(n.ID), n.Version, n.ChangesetID, n.Timestamp, n.User, n.UserID, n.Visible}

	return model.Record{
		Kind: model.NODE,
		Attrs: m.attrs(
			model.Attr{Name: "lat", Value: formatCoordinate(n.Lat)},
			model.Attr{Name: "lon", Value: formatCoordinate(n.Lon)},
		),
		Entries: tagEntries(n.Tags, 0),
	}
}

func wayRecord(w *osm.Way) model.Record {
	m := meta{int64(w.ID), w.Version, w.ChangesetID, w.Timestamp, w.User, w.UserID, w.Visible}

	entries := tagEntries(w.Tags, len(w.Nodes))
	for _, wn := range w.Nodes {
		entries = append(entries, model.Ref{Value: strconv.FormatInt(int64(wn.ID), 10)})
	}

	return model.Record{Kind: model.WAY, Attrs: m.attrs(), Entries: entries}
}

func relationRecord(r *osm.Relation) model.Record {
	m := meta{int64(r.ID), r.Version, r.ChangesetID, r.Timestamp, r.User, r.UserID, r.Visible}

	entries := tagEntries(r.Tags, len(r.Members))
	for _, member := range r.Members {
		entries = append(entries, model.Ref{Value: strconv.FormatInt(member.Ref, 10)})
	}

	return model.Record{Kind: model.RELATION, Attrs: m.attrs(), Entries: entries}
}

// formatCoordinate renders c the way XML exports do: at most seven decimals,
// without trailing zeros.
func formatCoordinate(c float64) string {
	s := strconv.FormatFloat(c, 'f', coordinatePrecision, 64)
	s = strings.TrimRight(s, "0")

	return strings.TrimSuffix(s, ".")
}
