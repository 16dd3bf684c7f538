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
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"m4o.io/osmdoc/model"
)

const (
	rootElement   = "osm"
	boundsElement = "bounds"

	keyAttr   = "k"
	valueAttr = "v"
	refAttr   = "ref"
)

// ErrNoRoot is returned by NewDecoder for input without a root element.
var ErrNoRoot = errors.New("no root element")

// Source is a stream of records. Decode returns io.EOF once the stream is
// exhausted.
type Source interface {
	Decode() (model.Record, error)
}

// Decoder reads records from an OpenStreetMap XML export. Every child element
// of the root becomes one record; the children of that element become its
// entries.
type Decoder struct {
	Header model.Header

	ctx  context.Context
	xml  *xml.Decoder
	done bool
}

var _ Source = (*Decoder)(nil)

// NewDecoder returns a new decoder that reads from r. The root element is
// read immediately so that Header is populated.
func NewDecoder(ctx context.Context, r io.Reader) (*Decoder, error) {
	d := &Decoder{ctx: ctx, xml: xml.NewDecoder(r)}

	for {
		tok, err := d.xml.Token()
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRoot
		} else if err != nil {
			return nil, fmt.Errorf("reading root element: %w", err)
		}

		if start, ok := tok.(xml.StartElement); ok {
			if start.Name.Local == rootElement {
				d.Header.Version = attr(start, "version")
				d.Header.Generator = attr(start, "generator")
				d.Header.Copyright = attr(start, "copyright")
			}

			return d, nil
		}
	}
}

// Decode reads the next record. The end of the input stream is reported by an
// io.EOF error.
func (d *Decoder) Decode() (model.Record, error) {
	if d.done {
		return model.Record{}, io.EOF
	}

	for {
		if err := d.ctx.Err(); err != nil {
			return model.Record{}, err
		}

		tok, err := d.xml.Token()
		if errors.Is(err, io.EOF) {
			d.done = true

			return model.Record{}, io.EOF
		} else if err != nil {
			return model.Record{}, err
		}

		switch tok := tok.(type) {
		case xml.StartElement:
			return d.decodeRecord(tok)
		case xml.EndElement:
			// the root closed
			d.done = true

			return model.Record{}, io.EOF
		}
	}
}

func (d *Decoder) decodeRecord(start xml.StartElement) (model.Record, error) {
	rec := model.Record{
		Kind:  model.Kind(start.Name.Local),
		Attrs: make([]model.Attr, 0, len(start.Attr)),
	}

	for _, a := range start.Attr {
		rec.Attrs = append(rec.Attrs, model.Attr{Name: a.Name.Local, Value: a.Value})
	}

	if rec.Kind == boundsElement {
		d.readBounds(rec)
	}

	depth := 1

	for depth > 0 {
		tok, err := d.xml.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}

			return model.Record{}, fmt.Errorf("reading %s: %w", rec.Kind, err)
		}

		switch tok := tok.(type) {
		case xml.StartElement:
			depth++

			if depth == 2 {
				rec.Entries = append(rec.Entries, entries(tok)...)
			}
		case xml.EndElement:
			depth--
		}
	}

	return rec, nil
}

// readBounds records the extent of the export in the header.
func (d *Decoder) readBounds(rec model.Record) {
	var (
		bbox model.BoundingBox
		err  error
		errs []error
	)

	parse := func(name string, dst *model.Degrees) {
		v, _ := rec.Attr(name)
		*dst, err = model.ParseDegrees(v)
		errs = append(errs, err)
	}

	parse("minlat", &bbox.Bottom)
	parse("maxlat", &bbox.Top)
	parse("minlon", &bbox.Left)
	parse("maxlon", &bbox.Right)

	if errors.Join(errs...) == nil {
		d.Header.BoundingBox = &bbox
	}
}

// entries projects a child element onto its Tag and Ref entries. A child
// carrying both k and ref yields both, Tag first.
func entries(child xml.StartElement) []model.Entry {
	var (
		out      []model.Entry
		key, ref string
		hasKey   bool
		hasRef   bool
		value    string
	)

	for _, a := range child.Attr {
		switch a.Name.Local {
		case keyAttr:
			key, hasKey = a.Value, true
		case valueAttr:
			value = a.Value
		case refAttr:
			ref, hasRef = a.Value, true
		}
	}

	if hasKey {
		out = append(out, model.Tag{Key: key, Value: value})
	}

	if hasRef {
		out = append(out, model.Ref{Value: ref})
	}

	return out
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}

	return ""
}
