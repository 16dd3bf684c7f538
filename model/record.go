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

// Package model contains the shared model for OpenStreetMap records and the
// documents shaped from them.
package model

// Kind is the element name of a record, e.g. node, way or relation.
type Kind string

// Record kinds. Any other element name is a valid Kind but is never shaped.
const (
	NODE     Kind = "node"
	WAY      Kind = "way"
	RELATION Kind = "relation"
)

// Attr is a primary attribute of a record, kept as the raw string.
type Attr struct {
	Name  string
	Value string
}

// Entry is a secondary entry nested in a record. It is either a Tag or a Ref.
type Entry interface {
	isEntry() // prevents extensions
}

// Tag is a key/value classification pair, <tag k="..." v="..."/>.
type Tag struct {
	Key   string
	Value string
}

var _ Entry = Tag{}

func (Tag) isEntry() {}

// Ref is an ordered reference to another record, <nd ref="..."/> or the ref
// of a relation member.
type Ref struct {
	Value string
}

var _ Entry = Ref{}

func (Ref) isEntry() {}

// Record is one parsed element of an OpenStreetMap export. Records are read
// once and never mutated.
type Record struct {
	Kind    Kind
	Attrs   []Attr
	Entries []Entry
}

// Attr returns the value of the named primary attribute.
func (r Record) Attr(name string) (string, bool) {
	for _, a := range r.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}

	return "", false
}

// Tags returns the Tag entries in input order.
func (r Record) Tags() []Tag {
	tags := make([]Tag, 0, len(r.Entries))

	for _, e := range r.Entries {
		if t, ok := e.(Tag); ok {
			tags = append(tags, t)
		}
	}

	return tags
}
