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

// Package sqldoc keeps documents as JSON bodies in a single SQL table and
// answers aggregations by running them in process over the loaded corpus.
package sqldoc

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"m4o.io/osmdoc/internal/query"
	"m4o.io/osmdoc/model"
)

// Dialect holds the driver specific statements of a Table.
type Dialect struct {
	Driver string
	Schema string
	Insert string
	// Pragmas is run once after the schema is in place. May be empty.
	Pragmas string
}

// Table is a document table in a SQL database.
type Table struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the database at dsn and creates the document table when
// it is missing.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Table, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, err
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("connecting to %s: %w", dialect.Driver, err)
	}

	if _, err = db.ExecContext(ctx, dialect.Schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if dialect.Pragmas != "" {
		if _, err = db.ExecContext(ctx, dialect.Pragmas); err != nil {
			_ = db.Close()

			return nil, err
		}
	}

	return &Table{db: db, dialect: dialect}, nil
}

// Insert stores docs in a single transaction.
func (t *Table) Insert(ctx context.Context, docs []model.Document) (err error) {
	if len(docs) == 0 {
		return nil
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, t.dialect.Insert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, doc := range docs {
		body, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encoding document: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, string(doc.Type()), string(body)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Load reads every document in insertion order.
func (t *Table) Load(ctx context.Context) ([]bson.M, error) {
	rows, err := t.db.QueryContext(ctx, `SELECT body FROM documents ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []bson.M

	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}

		var doc model.Document
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("decoding document: %w", err)
		}

		out = append(out, query.FromDocument(doc))
	}

	return out, rows.Err()
}

func (t *Table) Aggregate(ctx context.Context, p mongo.Pipeline) ([]bson.M, error) {
	docs, err := t.Load(ctx)
	if err != nil {
		return nil, err
	}

	return query.Run(docs, p)
}

func (t *Table) Count(ctx context.Context, filter bson.D) (int64, error) {
	if len(filter) == 0 {
		var n int64
		err := t.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)

		return n, err
	}

	docs, err := t.Load(ctx)
	if err != nil {
		return 0, err
	}

	matched, err := query.Filter(docs, filter)
	if err != nil {
		return 0, err
	}

	return int64(len(matched)), nil
}

func (t *Table) Distinct(ctx context.Context, field string) ([]any, error) {
	docs, err := t.Load(ctx)
	if err != nil {
		return nil, err
	}

	return query.Distinct(docs, field), nil
}

// Drop removes every document. The table itself is kept.
func (t *Table) Drop(ctx context.Context) error {
	_, err := t.db.ExecContext(ctx, `DELETE FROM documents`)

	return err
}

func (t *Table) Close(_ context.Context) error {
	return t.db.Close()
}
