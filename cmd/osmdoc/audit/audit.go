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

// Package audit implements the command that audits the tags of an export.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"m4o.io/osmdoc"
	"m4o.io/osmdoc/cmd/osmdoc/cli"
	"m4o.io/osmdoc/report"
	"m4o.io/osmdoc/rules"
)

var out io.Writer = os.Stdout

func init() {
	cli.RootCmd.AddCommand(auditCmd)

	flags := auditCmd.Flags()
	flags.BoolP("json", "j", false, "format the audit in JSON")
}

var auditCmd = &cobra.Command{
	Use:   "audit [<OSM file>]",
	Short: "Classify the tag keys and street names of an OSM export",
	Long: `Classify the tag keys of an OSM export by the characters they contain and
list the street types and corrections of its addr:street values.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := osmdoc.StdStream
		if len(args) == 1 {
			path = args[0]
		}

		jsonfmt, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}

		ncpu, err := cli.NCpu(cmd)
		if err != nil {
			return err
		}

		e, err := cli.OpenExport(cmd.Context(), path, ncpu, !jsonfmt)
		if err != nil {
			return err
		}
		defer e.Close()

		a, err := runAudit(cmd.Context(), e)
		if err != nil {
			return err
		}

		if jsonfmt {
			return renderJSON(a)
		}

		return a.WriteText(out)
	},
}

func runAudit(ctx context.Context, src osmdoc.Source) (*report.AuditResult, error) {
	return report.Audit(ctx, src, rules.Default())
}

func renderJSON(a *report.AuditResult) error {
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, string(b))

	return err
}
