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

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	humanize "github.com/dustin/go-humanize"
	"go.mongodb.org/mongo-driver/bson"

	"m4o.io/osmdoc/rules"
)

const missing = "(missing)"

// WriteJSON renders the report as a single JSON object.
func (r *Report) WriteJSON(w io.Writer) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))

	return err
}

// WriteText renders the report for reading on a terminal.
func (r *Report) WriteText(w io.Writer) error {
	p := &printer{w: w}

	p.printf("Malformed postcodes: %s\n", humanize.Comma(r.MalformedPostcodes))
	p.printf("Malformed address postcodes: %s\n", humanize.Comma(r.MalformedAddressPostcodes))

	for _, g := range r.Groupings {
		p.printf("\n%s (%s)\n", g.Title, g.Field)
		p.groups(g.Groups)
	}

	p.printf("\nTransport zones\n")
	p.groups(r.TransportZones)

	p.printf("\nDocuments: %s\n", humanize.Comma(r.Documents))
	p.printf("Nodes: %s\n", humanize.Comma(r.Nodes))
	p.printf("Ways: %s\n", humanize.Comma(r.Ways))
	p.printf("Unique users: %s\n", humanize.Comma(r.UniqueUsers))
	p.printf("Unique users (aggregated): %s\n", humanize.Comma(r.UniqueUsersAggregated))
	p.printf("Overwritten types: %s\n", humanize.Comma(r.Overwritten))
	p.printf("Average %s length: %s\n", RouteRefField, humanize.FtoaWithDigits(r.AverageRouteRefs, 2))
	p.printf("%s values: %s single, %s multi of %s (%s%%)\n", RouteRefField,
		humanize.Comma(r.RouteRefs.Single), humanize.Comma(r.RouteRefs.Multi),
		humanize.Comma(r.RouteRefs.Total), humanize.FtoaWithDigits(r.RouteRefs.Ratio*100, 1))

	problems := "none"
	if len(r.ProblemAmenities) > 0 {
		problems = strings.Join(r.ProblemAmenities, ", ")
	}

	p.printf("Problem amenities: %s\n", problems)

	return p.err
}

// printer remembers the first write error so rendering reads straight
// through.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}

	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) groups(groups []Group) {
	if len(groups) == 0 {
		p.printf("  none\n")

		return
	}

	for _, g := range groups {
		p.printf("  %s: %s\n", label(g.Value), humanize.Comma(g.Count))
	}
}

// label renders a grouped value. Lists are joined the way they were tagged.
func label(v any) string {
	switch v := v.(type) {
	case nil:
		return missing
	case string:
		return v
	case bson.A:
		return label([]any(v))
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = label(e)
		}

		return strings.Join(parts, rules.SemicolonDelimiter)
	default:
		return fmt.Sprint(v)
	}
}
