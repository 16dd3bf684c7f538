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

// Package memory keeps the document corpus in process.
package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"m4o.io/osmdoc/internal/query"
	"m4o.io/osmdoc/model"
)

// Store is an in-memory document store. It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	docs []bson.M
}

func New() *Store {
	return &Store{}
}

func (s *Store) Insert(_ context.Context, docs []model.Document) error {
	converted := make([]bson.M, len(docs))
	for i, d := range docs {
		converted[i] = query.FromDocument(d)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = append(s.docs, converted...)

	return nil
}

func (s *Store) snapshot() []bson.M {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.docs[:len(s.docs):len(s.docs)]
}

func (s *Store) Aggregate(_ context.Context, p mongo.Pipeline) ([]bson.M, error) {
	return query.Run(s.snapshot(), p)
}

func (s *Store) Count(_ context.Context, filter bson.D) (int64, error) {
	docs := s.snapshot()
	if len(filter) == 0 {
		return int64(len(docs)), nil
	}

	matched, err := query.Filter(docs, filter)
	if err != nil {
		return 0, err
	}

	return int64(len(matched)), nil
}

func (s *Store) Distinct(_ context.Context, field string) ([]any, error) {
	return query.Distinct(s.snapshot(), field), nil
}

func (s *Store) Drop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = nil

	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}
