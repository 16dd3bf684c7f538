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
	"runtime"

	"m4o.io/osmdoc/shape"
	"m4o.io/osmdoc/storage"
)

const (
	// DefaultBatchSize is the default number of documents handed to a store
	// per insert.
	DefaultBatchSize = 1000
)

// DefaultNCpu provides the default number of CPUs.
func DefaultNCpu() uint16 {
	cpus := uint16(runtime.GOMAXPROCS(-1))

	return max(cpus-1, 1)
}

// ingestOptions provides optional configuration parameters for Ingest.
type ingestOptions struct {
	nCPU          uint16 // the number of CPUs to use for shaping
	batchSize     int    // documents per store insert
	skipMalformed bool
	shaper        *shape.Shaper
	store         storage.Store
	writer        *JSONWriter
}

// Option configures an ingestion run.
type Option func(*ingestOptions)

// WithNCpus lets you set the number of CPUs to use for shaping.
func WithNCpus(n uint16) Option {
	return func(o *ingestOptions) {
		o.nCPU = n
	}
}

// WithBatchSize lets you set the number of documents per store insert.
func WithBatchSize(n int) Option {
	return func(o *ingestOptions) {
		o.batchSize = n
	}
}

// WithSkipMalformed logs and skips records that cannot be shaped instead of
// aborting the run.
func WithSkipMalformed() Option {
	return func(o *ingestOptions) {
		o.skipMalformed = true
	}
}

// WithShaper replaces the default shaper.
func WithShaper(s *shape.Shaper) Option {
	return func(o *ingestOptions) {
		o.shaper = s
	}
}

// WithStore inserts the shaped documents into s.
func WithStore(s storage.Store) Option {
	return func(o *ingestOptions) {
		o.store = s
	}
}

// WithWriter writes the shaped documents to w.
func WithWriter(w *JSONWriter) Option {
	return func(o *ingestOptions) {
		o.writer = w
	}
}

// defaultIngestConfig provides a default configuration for Ingest.
var defaultIngestConfig = ingestOptions{
	nCPU:      DefaultNCpu(),
	batchSize: DefaultBatchSize,
}
