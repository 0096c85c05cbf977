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

	"github.com/urfave/cli/v3"

	"github.com/macdiff/macdiff/pkg/api"
	"github.com/macdiff/macdiff/pkg/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Description: `Serves snapshot builds, listings and comparisons over HTTP:

  GET  /v1/snapshots                                 list snapshots
  POST /v1/snapshots                                 start a build job
  GET  /v1/jobs/{id}                                 build job status
  GET|DELETE /v1/snapshots/{type}/{name}/{timestamp} view or delete
  POST /v1/comparisons                               compare, JSON or XLSX
  GET  /v1/events                                    recent notifications

plus /health, /ready and /metrics. Builds use the inventory devices unless a
request names its own.`,
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "listen port",
				Sources: cli.EnvVars("PORT"),
				Value:   8080,
			},
			&cli.StringFlag{
				Name:  "address",
				Usage: "listen address (default: all interfaces)",
			},
		}, collectionFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			inv, err := loadInventory(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(ctx, inv)
			if err != nil {
				return err
			}
			builder, err := newBuilder(ctx, cmd, inv, st)
			if err != nil {
				return err
			}
			notifier, closeNotifier, err := openNotifier(inv)
			if err != nil {
				return err
			}
			defer closeNotifier()

			a, err := api.New(
				api.WithStore(st),
				api.WithBuilder(builder),
				api.WithNotifier(notifier),
				api.WithDevices(inv.Devices),
				api.WithOutputDir(inv.OutputDir),
			)
			if err != nil {
				return err
			}

			cfg := server.NewConfig()
			cfg.Port = int(cmd.Int("port"))
			cfg.Address = cmd.String("address")
			cfg.Name = cmd.Root().Name
			cfg.Version = version

			return api.Serve(ctx, a, server.WithConfig(cfg))
		},
	}
}
