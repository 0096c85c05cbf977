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
	"fmt"
	"math"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/oui"
)

// noRefresh keeps New from downloading over an existing cache.
const noRefresh = time.Duration(math.MaxInt64)

func ouiCmd() *cli.Command {
	cacheFlag := &cli.StringFlag{
		Name:    "oui-cache",
		Usage:   "vendor registry cache file",
		Sources: cli.EnvVars("MACDIFF_OUI_CACHE"),
	}

	return &cli.Command{
		Name:  "oui",
		Usage: "Maintain the MAC vendor registry cache",
		Commands: []*cli.Command{
			{
				Name:  "refresh",
				Usage: "Download the IEEE registry when the cache is stale, or always with --force",
				Flags: []cli.Flag{
					cacheFlag,
					&cli.StringFlag{
						Name:  "url",
						Usage: "registry download location",
						Value: oui.DefaultURL,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "download even when the cache is fresh",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts := ouiOptions(cmd)
					opts = append(opts, oui.WithURL(cmd.String("url")))
					if cmd.Bool("force") {
						opts = append(opts, oui.WithMaxAge(noRefresh))
					}

					reg := oui.New(ctx, opts...)
					if cmd.Bool("force") {
						if err := reg.Refresh(ctx); err != nil {
							return err
						}
					} else if reg.Stale() {
						return errors.NewWithContext(errors.ErrCodeUnavailable, "oui registry could not be refreshed",
							map[string]any{"path": reg.CachePath()})
					}

					fmt.Fprintf(stdout(cmd), "%d vendors in %s\n", reg.Len(), reg.CachePath())
					return nil
				},
			},
			{
				Name:      "lookup",
				Usage:     "Resolve MAC addresses to vendors",
				ArgsUsage: "<mac>...",
				Flags: []cli.Flag{
					cacheFlag,
					&cli.BoolFlag{
						Name:  "offline",
						Usage: "use an existing cache even when it is stale",
					},
					outputFlag(),
					formatFlag(),
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() == 0 {
						return errors.New(errors.ErrCodeInvalidRequest, "at least one MAC address is required")
					}

					opts := ouiOptions(cmd)
					if cmd.Bool("offline") {
						opts = append(opts, oui.WithMaxAge(noRefresh))
					}
					reg := oui.New(ctx, opts...)

					rows := make(vendorTable, 0, cmd.Args().Len())
					for _, mac := range cmd.Args().Slice() {
						rows = append(rows, vendorEntry{
							MAC:    mac,
							Prefix: oui.Prefix(mac),
							Vendor: reg.Lookup(mac),
						})
					}
					return writeOutput(ctx, cmd, rows)
				},
			},
		},
	}
}

func ouiOptions(cmd *cli.Command) []oui.Option {
	if path := cmd.String("oui-cache"); path != "" {
		return []oui.Option{oui.WithCachePath(path)}
	}
	return nil
}

type vendorEntry struct {
	MAC    string `json:"mac" yaml:"mac"`
	Prefix string `json:"prefix" yaml:"prefix"`
	Vendor string `json:"vendor" yaml:"vendor"`
}

type vendorTable []vendorEntry

func (t vendorTable) TableHeader() []string {
	return []string{"MAC", "PREFIX", "VENDOR"}
}

func (t vendorTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, e := range t {
		rows = append(rows, []string{e.MAC, e.Prefix, e.Vendor})
	}
	return rows
}
