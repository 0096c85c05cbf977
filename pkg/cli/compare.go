// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/macdiff/macdiff/pkg/compare"
	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/header"
	"github.com/macdiff/macdiff/pkg/notify"
	"github.com/macdiff/macdiff/pkg/report"
	"github.com/macdiff/macdiff/pkg/serializer"
)

// comparisonResult is the structured output of compare.
type comparisonResult struct {
	header.Header `yaml:",inline"`

	Pre     string           `json:"pre" yaml:"pre"`
	Post    string           `json:"post" yaml:"post"`
	Summary map[string]int   `json:"summary" yaml:"summary"`
	Report  string           `json:"report,omitempty" yaml:"report,omitempty"`
	Records []compare.Record `json:"records" yaml:"records"`
}

func compareCmd() *cli.Command {
	return &cli.Command{
		Name:                  "compare",
		EnableShellCompletion: true,
		Usage:                 "Compare a Pre and a Post snapshot",
		ArgsUsage:             "<snapshot> <snapshot>",
		Description: `Compares one Pre and one Post snapshot, in either order, and writes
macdiff_<YYYY-MM-DD_HH.MM>.xlsx into the output directory. Snapshots are
given as type/name/timestamp or as artifact file names.

Without --format the colored comparison is printed to the terminal; with
--format json|yaml the records and summary are serialized instead.

# Examples

  macdiff compare pre/core-upgrade/2026-10-19_08.00 post/core-upgrade/2026-10-19_10.30
  macdiff compare "[Pre]_[core]_[2026-10-19_08.00].json" "[Post]_[core]_[2026-10-19_10.30].json" --no-report`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-report",
				Usage: "skip writing the XLSX report",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Usage:   "serialize the comparison instead of printing it (json, yaml, table)",
			},
			&cli.StringFlag{
				Name:    "amqp-url",
				Usage:   "AMQP broker receiving the comparison event",
				Sources: cli.EnvVars("MACDIFF_AMQP_URL"),
			},
			outputFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return errors.New(errors.ErrCodeInvalidRequest, "exactly two snapshots are required")
			}
			a, err := parseSnapshotRef(cmd.Args().Get(0))
			if err != nil {
				return err
			}
			b, err := parseSnapshotRef(cmd.Args().Get(1))
			if err != nil {
				return err
			}
			if cmd.String("format") != "" {
				if _, err := parseOutputFormat(cmd); err != nil {
					return err
				}
			}

			inv, err := loadInventory(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(ctx, inv)
			if err != nil {
				return err
			}

			t, err := compare.Load(ctx, st, a, b)
			if err != nil {
				return err
			}

			res := comparisonResult{
				Header:  header.New(header.KindComparison, version),
				Pre:     t.Pre.String(),
				Post:    t.Post.String(),
				Summary: t.Summary().Map(),
				Records: t.Records,
			}
			if !cmd.Bool("no-report") {
				path, err := report.WriteComparison(inv.OutputDir, t, time.Now())
				if err != nil {
					return err
				}
				res.Report = path
				slog.Info("comparison report written", "path", path)
			}

			notifier, closeNotifier, err := openNotifier(inv)
			if err != nil {
				return err
			}
			defer closeNotifier()

			e := notify.NewEvent(notify.ComparisonFinished)
			e.Pre, e.Post = &t.Pre, &t.Post
			e.Summary = res.Summary
			e.Report = res.Report
			if err := notifier.Notify(ctx, e); err != nil {
				slog.Warn("failed to announce comparison", "error", err)
			}

			switch cmd.String("format") {
			case "":
			case string(serializer.FormatTable):
				return writeOutput(ctx, cmd, t)
			default:
				return writeOutput(ctx, cmd, res)
			}
			if err := report.Print(stdout(cmd), t); err != nil {
				return err
			}
			if res.Report != "" {
				slog.Info("comparison finished", "summary", t.Summary().String(), "report", res.Report)
			}
			return nil
		},
	}
}
