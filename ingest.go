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

// Package osmdoc reads OpenStreetMap exports, shapes every node and way into a
// document and loads the documents into a store.
package osmdoc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/destel/rill"

	"m4o.io/osmdoc/model"
	"m4o.io/osmdoc/shape"
)

// Stats summarizes an ingestion run.
type Stats struct {
	Records   int64 `json:"records"`
	Documents int64 `json:"documents"`
	Nodes     int64 `json:"nodes"`
	Ways      int64 `json:"ways"`
	Skipped   int64 `json:"skipped"`

	// BoundingBox encloses the positions of the shaped nodes. It is empty
	// when no document has a position.
	BoundingBox *model.BoundingBox `json:"bounding_box"`
}

func (s *Stats) add(doc model.Document) {
	s.Documents++

	switch doc.Type() {
	case model.NODE:
		s.Nodes++
	case model.WAY:
		s.Ways++
	}

	if lat, lon, ok := doc.Pos(); ok {
		s.BoundingBox.ExpandWithLatLng(lat, lon)
	}
}

// Ingest reads every record of src, shapes the nodes and ways concurrently
// and hands the documents, in input order, to the configured writer and
// store. Other record kinds are counted and dropped.
func Ingest(ctx context.Context, src Source, opts ...Option) (*Stats, error) {
	cfg := defaultIngestConfig

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.shaper == nil {
		cfg.shaper = shape.New()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var read, skipped atomic.Int64

	records := generate(ctx, src, &read)

	docs := rill.OrderedFilterMap(records, int(max(cfg.nCPU, 1)), func(rec model.Record) (model.Document, bool, error) {
		doc, err := cfg.shaper.Shape(rec)
		if err != nil {
			id, _ := rec.Attr("id")

			if cfg.skipMalformed {
				slog.Warn("skipping record", "kind", rec.Kind, "id", id, "error", err)
				skipped.Add(1)

				return nil, false, nil
			}

			return nil, false, fmt.Errorf("%s %s: %w", rec.Kind, id, err)
		}

		return doc, doc != nil, nil
	})

	batches := rill.Batch(docs, max(cfg.batchSize, 1), -1)
	defer rill.DrainNB(batches)

	stats := &Stats{BoundingBox: model.InitialBoundingBox()}

	err := rill.ForEach(batches, 1, func(batch []model.Document) error {
		for _, doc := range batch {
			stats.add(doc)

			if cfg.writer != nil {
				if err := cfg.writer.Write(doc); err != nil {
					return fmt.Errorf("writing document: %w", err)
				}
			}
		}

		if cfg.store != nil {
			if err := cfg.store.Insert(ctx, batch); err != nil {
				return fmt.Errorf("inserting documents: %w", err)
			}
		}

		return nil
	})

	stats.Records = read.Load()
	stats.Skipped = skipped.Load()

	if err != nil {
		slog.Error(err.Error())

		return stats, err
	}

	return stats, nil
}

// generate streams the records of src until io.EOF, the first error, or the
// cancellation of ctx.
func generate(ctx context.Context, src Source, read *atomic.Int64) <-chan rill.Try[model.Record] {
	ch := make(chan rill.Try[model.Record])

	go func() {
		defer close(ch)

		for {
			rec, err := src.Decode()
			if errors.Is(err, io.EOF) {
				return
			}

			item := rill.Try[model.Record]{Value: rec, Error: err}
			if err == nil {
				read.Add(1)
			}

			select {
			case <-ctx.Done():
				return
			case ch <- item:
			}

			if err != nil {
				return
			}
		}
	}()

	return ch
}
