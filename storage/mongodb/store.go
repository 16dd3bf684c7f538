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

// Package mongodb stores the document corpus in a MongoDB collection and runs
// aggregations on the server.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"m4o.io/osmdoc/model"
)

// DefaultCollection is used when the URI names only a database.
const DefaultCollection = "documents"

// ErrMissingDatabase is returned for a URI without a database path.
var ErrMissingDatabase = errors.New("mongodb uri has no database")

// Store is a document store backed by a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// SplitURI separates mongodb://host/db/collection into the client URI, which
// keeps the database as its default, and the database and collection names.
func SplitURI(uri string) (clientURI, database, collection string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", "", err
	}

	database, collection, _ = strings.Cut(strings.Trim(u.Path, "/"), "/")
	if database == "" {
		return "", "", "", fmt.Errorf("%w: %s", ErrMissingDatabase, u.Redacted())
	}

	if collection == "" {
		collection = DefaultCollection
	}

	u.Path = "/" + database

	return u.String(), database, collection, nil
}

// Open connects to the server named by uri and verifies it is reachable.
func Open(ctx context.Context, uri string) (*Store, error) {
	clientURI, database, collection, err := SplitURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(clientURI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)

		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	return &Store{client: client, coll: client.Database(database).Collection(collection)}, nil
}

func (s *Store) Insert(ctx context.Context, docs []model.Document) error {
	if len(docs) == 0 {
		return nil
	}

	batch := make([]interface{}, len(docs))
	for i, d := range docs {
		batch[i] = map[string]any(d)
	}

	_, err := s.coll.InsertMany(ctx, batch)

	return err
}

func (s *Store) Aggregate(ctx context.Context, p mongo.Pipeline) ([]bson.M, error) {
	cursor, err := s.coll.Aggregate(ctx, p)
	if err != nil {
		return nil, err
	}

	var out []bson.M
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Store) Count(ctx context.Context, filter bson.D) (int64, error) {
	if filter == nil {
		filter = bson.D{}
	}

	return s.coll.CountDocuments(ctx, filter)
}

func (s *Store) Distinct(ctx context.Context, field string) ([]any, error) {
	return s.coll.Distinct(ctx, field, bson.D{})
}

func (s *Store) Drop(ctx context.Context) error {
	return s.coll.Drop(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
