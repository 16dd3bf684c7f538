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

package serve

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"m4o.io/osmdoc/model"
	"m4o.io/osmdoc/pipeline"
	"m4o.io/osmdoc/report"
	"m4o.io/osmdoc/rules"
	"m4o.io/osmdoc/storage"
)

// handler answers read-only queries against a store.
type handler struct {
	store  storage.Store
	tables rules.Tables
}

// NewRouter routes the report endpoints to s.
func NewRouter(s storage.Store, tables rules.Tables) *mux.Router {
	h := &handler{store: s, tables: tables}

	r := mux.NewRouter()
	r.HandleFunc("/report", h.report).Methods(http.MethodGet)
	r.HandleFunc("/groups/{field}", h.groups).Methods(http.MethodGet)
	r.HandleFunc("/count", h.count).Methods(http.MethodGet)
	r.Use(logging)

	return r
}

func (h *handler) report(w http.ResponseWriter, r *http.Request) {
	rep, err := report.Run(r.Context(), h.store, h.tables)
	if err != nil {
		storeError(w, err)

		return
	}

	respond(w, rep)
}

// groups counts the documents per value of a field. Query parameters:
// existing=true skips documents without the field, order=desc sorts by
// descending count and limit=n keeps the first n groups.
func (h *handler) groups(w http.ResponseWriter, r *http.Request) {
	field := mux.Vars(r)["field"]
	query := r.URL.Query()

	var opts []pipeline.GroupOption

	if v := query.Get("existing"); v != "" {
		existing, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "existing must be a boolean", http.StatusBadRequest)

			return
		}

		if existing {
			opts = append(opts, pipeline.OnlyExisting())
		}
	}

	switch query.Get("order") {
	case "", "asc":
	case "desc":
		opts = append(opts, pipeline.Sort(pipeline.Descending))
	default:
		http.Error(w, "order must be asc or desc", http.StatusBadRequest)

		return
	}

	if v := query.Get("limit"); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil || limit < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)

			return
		}

		opts = append(opts, pipeline.Limit(limit))
	}

	groups, err := report.Groups(r.Context(), h.store, field, opts...)
	if err != nil {
		storeError(w, err)

		return
	}

	respond(w, report.Grouping{Title: field, Field: field, Groups: groups})
}

type countResponse struct {
	Type  string `json:"type,omitempty"`
	Count int64  `json:"count"`
}

func (h *handler) count(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("type")

	var filter bson.D
	if kind != "" {
		filter = bson.D{{Key: model.KeyType, Value: kind}}
	}

	n, err := h.store.Count(r.Context(), filter)
	if err != nil {
		storeError(w, err)

		return
	}

	respond(w, countResponse{Type: kind, Count: n})
}

func respond(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writing response", "error", err)
	}
}

func storeError(w http.ResponseWriter, err error) {
	slog.Error("querying store", "error", err)
	http.Error(w, "store error", http.StatusInternalServerError)
}

func logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}
