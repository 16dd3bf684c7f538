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

// Package postgres stores the document corpus as JSONB rows in PostgreSQL.
package postgres

import (
	"context"

	_ "github.com/lib/pq"

	"m4o.io/osmdoc/storage/internal/sqldoc"
)

var dialect = sqldoc.Dialect{
	Driver: "postgres",
	Schema: `
CREATE TABLE IF NOT EXISTS documents (
  seq  BIGSERIAL PRIMARY KEY,
  kind TEXT NOT NULL,
  body JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(kind);
`,
	Insert: `INSERT INTO documents(kind, body) VALUES($1, $2)`,
}

// Store is a document store backed by a PostgreSQL table.
type Store struct {
	*sqldoc.Table
}

// Open connects using a lib/pq connection string or postgres:// URL.
func Open(ctx context.Context, dsn string) (*Store, error) {
	t, err := sqldoc.Open(ctx, dialect, dsn)
	if err != nil {
		return nil, err
	}

	return &Store{Table: t}, nil
}
