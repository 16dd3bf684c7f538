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

// Package cli holds the root command and the plumbing its subcommands share.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"m4o.io/osmdoc"
	"m4o.io/osmdoc/storage"
)

// Environment variables supplying flag defaults.
const (
	StoreEnv = "OSMDOC_STORE"
	CPUsEnv  = "OSMDOC_CPUS"
	AddrEnv  = "OSMDOC_ADDR"
)

// RootCmd is the osmdoc command that every subcommand registers with.
var RootCmd = &cobra.Command{
	Use:   "osmdoc",
	Short: "Shape OpenStreetMap exports into documents and report on them",
	Long: `Shape the nodes and ways of an OpenStreetMap export into normalized
documents, load them into a document store and run a battery of
aggregations over the corpus.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		SetupLogging(os.Stderr, verbose)
	},
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "log at debug level")
	flags.StringP("store", "s", GetEnv(StoreEnv, storage.DefaultURI),
		"document store: memory://, sqlite://<path>, postgres://..., mongodb://<host>/<db>/<collection>")
	flags.Uint16P("cpu", "c", uint16(GetEnvInt(CPUsEnv, int(osmdoc.DefaultNCpu()))), "number of CPUs to use")
}

// SetupLogging installs a text handler on w as the default logger.
func SetupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// OpenStore opens the store named by the store flag.
func OpenStore(cmd *cobra.Command) (storage.Store, error) {
	uri, err := cmd.Flags().GetString("store")
	if err != nil {
		return nil, err
	}

	slog.Debug("opening store", "uri", uri)

	return storage.Open(cmd.Context(), uri)
}

// NCpu returns the value of the cpu flag.
func NCpu(cmd *cobra.Command) (uint16, error) {
	return cmd.Flags().GetUint16("cpu")
}
