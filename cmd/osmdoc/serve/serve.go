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

// Package serve implements the command that answers report queries over
// HTTP.
package serve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"m4o.io/osmdoc/cmd/osmdoc/cli"
	"m4o.io/osmdoc/rules"
)

const shutdownTimeout = 30 * time.Second

func init() {
	cli.RootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.StringP("addr", "a", cli.GetEnv(cli.AddrEnv, ":8080"), "address to listen on")
}

var serveCmd = &cobra.Command{
	Use:   "serve [<OSM file>]",
	Short: "Answer report queries over HTTP",
	Long: `Answer read-only report queries against the store over HTTP:

  GET /report          the report battery as JSON
  GET /groups/{field}  document counts per value of a field
                       (?existing=true, ?order=desc, ?limit=n)
  GET /count           document count (?type=node)

When an OSM file is given it is loaded into the store first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := cmd.Flags().GetString("addr")
		if err != nil {
			return err
		}

		s, err := cli.OpenStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close(context.Background())

		if len(args) == 1 {
			if err := cli.Load(cmd, s, args[0], false); err != nil {
				return err
			}
		}

		srv := &http.Server{
			Addr:         addr,
			Handler:      NewRouter(s, rules.Default()),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		return listen(cmd.Context(), srv)
	},
}

// listen serves until ctx is done and then shuts srv down gracefully.
func listen(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)

	go func() {
		slog.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
