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

// Package info implements the command that describes an export.
package info

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"m4o.io/osmdoc"
	"m4o.io/osmdoc/cmd/osmdoc/cli"
	"m4o.io/osmdoc/model"
	"m4o.io/osmdoc/rules"
)

var out io.Writer = os.Stdout

type extendedHeader struct {
	model.Header

	NodeCount     int64 `json:"node_count"`
	WayCount      int64 `json:"way_count"`
	RelationCount int64 `json:"relation_count"`

	// Extent encloses the positions of the nodes, OutsideBounds counts the
	// nodes beyond the bounds the export declares.
	Extent        *model.BoundingBox `json:"extent,omitempty"`
	OutsideBounds int64              `json:"outside_bounds"`
}

func init() {
	cli.RootCmd.AddCommand(infoCmd)

	flags := infoCmd.Flags()
	flags.BoolP("json", "j", false, "format information in JSON")
	flags.BoolP("extended", "e", false, "provide extended information (scans entire file)")
}

var infoCmd = &cobra.Command{
	Use:   "info [<OSM file>]",
	Short: "Print information about an OSM file",
	Long:  "Print information about an OSM file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()

		path := osmdoc.StdStream
		if len(args) == 1 {
			path = args[0]
		}

		ncpu, err := cli.NCpu(cmd)
		if err != nil {
			return err
		}

		extended, err := flags.GetBool("extended")
		if err != nil {
			return err
		}

		jsonfmt, err := flags.GetBool("json")
		if err != nil {
			return err
		}

		e, err := cli.OpenExport(cmd.Context(), path, ncpu, extended && !jsonfmt)
		if err != nil {
			return err
		}

		info, err := runInfo(e, extended)
		if cerr := e.Close(); err == nil {
			err = cerr
		}

		if err != nil {
			return err
		}

		if jsonfmt {
			return renderJSON(info, extended)
		}

		renderTxt(info, extended)

		return nil
	},
}

// runInfo reads the header of e. An XML export carries its bounds in the
// first element, so at least one record is read; extended reads them all.
func runInfo(e *cli.Export, extended bool) (*extendedHeader, error) {
	info := &extendedHeader{}
	extent := model.InitialBoundingBox()

	var positions []position

	for {
		rec, err := e.Decode()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}

		if !extended {
			break
		}

		switch rec.Kind {
		case model.NODE:
			info.NodeCount++

			if p, ok := nodePosition(rec); ok {
				extent.ExpandWithLatLng(p.lat, p.lon)
				positions = append(positions, p)
			}
		case model.WAY:
			info.WayCount++
		case model.RELATION:
			info.RelationCount++
		}
	}

	info.Header = e.Header()

	if !extent.IsEmpty() {
		info.Extent = extent
	}

	if bounds := info.BoundingBox; bounds != nil {
		for _, p := range positions {
			if !bounds.Contains(p.lat, p.lon) {
				info.OutsideBounds++
			}
		}
	}

	return info, nil
}

type position struct {
	lat, lon model.Degrees
}

func nodePosition(rec model.Record) (position, bool) {
	lat, okLat := rec.Attr(rules.LatAttr)
	lon, okLon := rec.Attr(rules.LonAttr)

	if !okLat || !okLon {
		return position{}, false
	}

	la, err := model.ParseDegrees(lat)
	if err != nil {
		return position{}, false
	}

	lo, err := model.ParseDegrees(lon)
	if err != nil {
		return position{}, false
	}

	return position{lat: la, lon: lo}, true
}

func renderJSON(info *extendedHeader, extended bool) error {
	// marshall the smallest struct needed
	var v any = info.Header
	if extended {
		v = info
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, string(b))

	return err
}

func renderTxt(info *extendedHeader, extended bool) {
	fmt.Fprintf(out, "Version: %s\n", info.Version)
	fmt.Fprintf(out, "Generator: %s\n", info.Generator)
	fmt.Fprintf(out, "Copyright: %s\n", info.Copyright)

	if info.BoundingBox != nil {
		fmt.Fprintf(out, "BoundingBox: %s\n", info.BoundingBox)
	}

	if extended {
		fmt.Fprintf(out, "NodeCount: %s\n", humanize.Comma(info.NodeCount))
		fmt.Fprintf(out, "WayCount: %s\n", humanize.Comma(info.WayCount))
		fmt.Fprintf(out, "RelationCount: %s\n", humanize.Comma(info.RelationCount))

		if info.Extent != nil {
			fmt.Fprintf(out, "Extent: %s\n", info.Extent)
		}

		fmt.Fprintf(out, "OutsideBounds: %s\n", humanize.Comma(info.OutsideBounds))
	}
}
