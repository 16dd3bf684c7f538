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

// Package ingest implements the command that loads an export into a store.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"m4o.io/osmdoc"
	"m4o.io/osmdoc/cmd/osmdoc/cli"
	"m4o.io/osmdoc/storage"
)

var out io.Writer = os.Stdout

var output *osmdoc.Output

func init() {
	cli.RootCmd.AddCommand(ingestCmd)

	flags := ingestCmd.Flags()
	flags.VarP(cli.NewOutputValue(&output), "output", "o", "also write the documents as JSON lines (compressed by suffix, - for stdout)")
	flags.BoolP("pretty", "p", false, "indent the JSON documents")
	flags.BoolP("drop", "d", false, "empty the store before loading")
	flags.Bool("skip-malformed", false, "log and skip records that cannot be shaped")
	flags.IntP("batch-size", "b", osmdoc.DefaultBatchSize, "documents per store insert")
	flags.BoolP("json", "j", false, "format statistics in JSON")
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [<OSM file>]",
	Short: "Shape an OSM export and load the documents into a store",
	Long: `Shape the nodes and ways of an OSM export, XML or PBF and optionally
compressed, and load the documents into the store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()

		path := osmdoc.StdStream
		if len(args) == 1 {
			path = args[0]
		}

		jsonfmt, err := flags.GetBool("json")
		if err != nil {
			return err
		}

		ncpu, err := cli.NCpu(cmd)
		if err != nil {
			return err
		}

		e, err := cli.OpenExport(cmd.Context(), path, ncpu, !jsonfmt)
		if err != nil {
			return err
		}
		defer e.Close()

		s, err := cli.OpenStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close(cmd.Context())

		drop, err := flags.GetBool("drop")
		if err != nil {
			return err
		}

		opts, err := options(cmd, ncpu)
		if err != nil {
			return err
		}

		stats, err := runIngest(cmd.Context(), e, s, drop, opts...)

		if output != nil {
			if cerr := output.Close(); err == nil {
				err = cerr
			}
		}

		if err != nil {
			return err
		}

		if jsonfmt {
			return renderJSON(stats)
		}

		renderTxt(stats)

		return nil
	},
}

func options(cmd *cobra.Command, ncpu uint16) ([]osmdoc.Option, error) {
	flags := cmd.Flags()

	batchSize, err := flags.GetInt("batch-size")
	if err != nil {
		return nil, err
	}

	opts := []osmdoc.Option{osmdoc.WithNCpus(ncpu), osmdoc.WithBatchSize(batchSize)}

	if skip, err := flags.GetBool("skip-malformed"); err != nil {
		return nil, err
	} else if skip {
		opts = append(opts, osmdoc.WithSkipMalformed())
	}

	if output != nil {
		pretty, err := flags.GetBool("pretty")
		if err != nil {
			return nil, err
		}

		opts = append(opts, osmdoc.WithWriter(osmdoc.NewJSONWriter(output, pretty)))
	}

	return opts, nil
}

// runIngest loads src into s, emptying s first when drop is set.
func runIngest(ctx context.Context, src osmdoc.Source, s storage.Store, drop bool, opts ...osmdoc.Option) (*osmdoc.Stats, error) {
	if drop {
		if err := s.Drop(ctx); err != nil {
			return nil, fmt.Errorf("dropping store: %w", err)
		}
	}

	return osmdoc.Ingest(ctx, src, append(opts, osmdoc.WithStore(s))...)
}

func renderJSON(stats *osmdoc.Stats) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, string(b))

	return err
}

func renderTxt(stats *osmdoc.Stats) {
	fmt.Fprintf(out, "Records: %s\n", humanize.Comma(stats.Records))
	fmt.Fprintf(out, "Documents: %s\n", humanize.Comma(stats.Documents))
	fmt.Fprintf(out, "Nodes: %s\n", humanize.Comma(stats.Nodes))
	fmt.Fprintf(out, "Ways: %s\n", humanize.Comma(stats.Ways))
	fmt.Fprintf(out, "Skipped: %s\n", humanize.Comma(stats.Skipped))

	if !stats.BoundingBox.IsEmpty() {
		fmt.Fprintf(out, "BoundingBox: %s\n", stats.BoundingBox)
		fmt.Fprintf(out, "Diagonal: %s km\n", humanize.FtoaWithDigits(stats.BoundingBox.Diagonal(), 2))
	}
}
