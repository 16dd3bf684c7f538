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

// Package sqlite stores the document corpus in a SQLite file.
package sqlite

import (
	"context"

	_ "modernc.org/sqlite"

	"m4o.io/osmdoc/storage/internal/sqldoc"
)

var dialect = sqldoc.Dialect{
	Driver: "sqlite",
	Schema: `
CREATE TABLE IF NOT EXISTS documents (
  seq  INTEGER PRIMARY KEY AUTOINCREMENT,
  kind TEXT NOT NULL,
  body TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(kind);
`,
	Insert:  `INSERT INTO documents(kind, body) VALUES(?, ?)`,
	Pragmas: `PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`,
}

// Store is a document store backed by a SQLite database file.
type Store struct {
	*sqldoc.Table
}

// Open opens, creating when needed, the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	t, err := sqldoc.Open(ctx, dialect, path)
	if err != nil {
		return nil, err
	}

	return &Store{Table: t}, nil
}
