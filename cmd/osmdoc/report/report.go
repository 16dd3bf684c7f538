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

// Package report implements the command that runs the report battery.
package report

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"m4o.io/osmdoc/cmd/osmdoc/cli"
	"m4o.io/osmdoc/report"
	"m4o.io/osmdoc/rules"
	"m4o.io/osmdoc/storage"
)

var out io.Writer = os.Stdout

func init() {
	cli.RootCmd.AddCommand(reportCmd)

	flags := reportCmd.Flags()
	flags.BoolP("json", "j", false, "format the report in JSON")
}

var reportCmd = &cobra.Command{
	Use:   "report [<OSM file>]",
	Short: "Run the report battery against a store",
	Long: `Run the report battery against the store. When an OSM file is given it
is loaded into the store first, which makes the in-memory store useful.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := cli.OpenStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close(cmd.Context())

		jsonfmt, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}

		if len(args) == 1 {
			if err := cli.Load(cmd, s, args[0], !jsonfmt); err != nil {
				return err
			}
		}

		r, err := runReport(cmd.Context(), s)
		if err != nil {
			return err
		}

		if jsonfmt {
			return r.WriteJSON(out)
		}

		return r.WriteText(out)
	},
}

func runReport(ctx context.Context, s storage.Store) (*report.Report, error) {
	return report.Run(ctx, s, rules.Default())
}
