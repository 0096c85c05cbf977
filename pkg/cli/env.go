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
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/macdiff/macdiff/pkg/collector"
	"github.com/macdiff/macdiff/pkg/config"
	"github.com/macdiff/macdiff/pkg/device"
	"github.com/macdiff/macdiff/pkg/notify"
	"github.com/macdiff/macdiff/pkg/oui"
	"github.com/macdiff/macdiff/pkg/snapshotter"
	"github.com/macdiff/macdiff/pkg/store"
)

// collectionFlags override the collection settings of the inventory.
func collectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "kind",
			Usage:   fmt.Sprintf("device handler kind (supported values: %v)", device.SupportedKinds()),
			Sources: cli.EnvVars("MACDIFF_KIND"),
		},
		&cli.StringFlag{
			Name:  "proxy",
			Usage: "SSH jump host, host or host:port (default: $JUMPHOST_IP)",
		},
		&cli.StringFlag{
			Name:    "dns-server",
			Usage:   "DNS server for reverse lookups (default: system resolver)",
			Sources: cli.EnvVars("MACDIFF_DNS_SERVER"),
		},
		&cli.StringFlag{
			Name:    "oui-cache",
			Usage:   "vendor registry cache file",
			Sources: cli.EnvVars("MACDIFF_OUI_CACHE"),
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "devices collected concurrently",
		},
		&cli.DurationFlag{
			Name:  "interval",
			Usage: "pause between two device submissions",
		},
		&cli.StringSliceFlag{
			Name:  "known-hosts",
			Usage: "known_hosts file verifying device host keys (can be repeated)",
		},
		&cli.StringFlag{
			Name:    "amqp-url",
			Usage:   "AMQP broker receiving snapshot and comparison events",
			Sources: cli.EnvVars("MACDIFF_AMQP_URL"),
		},
	}
}

// loadInventory reads --config and applies global and collection flag
// overrides, then validates the result.
func loadInventory(cmd *cli.Command) (*config.Inventory, error) {
	inv, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if v := cmd.String("output-dir"); v != "" {
		inv.OutputDir = v
	}
	if v := cmd.String("store"); v != "" {
		inv.Store = v
	}
	if v := cmd.String("kind"); v != "" {
		inv.Kind = device.Kind(v)
	}
	if v := cmd.String("proxy"); v != "" {
		inv.Proxy = v
	}
	if v := cmd.String("dns-server"); v != "" {
		inv.DNSServer = v
	}
	if v := cmd.String("oui-cache"); v != "" {
		inv.OUICache = v
	}
	if cmd.IsSet("workers") {
		inv.Workers = int(cmd.Int("workers"))
	}
	if cmd.IsSet("interval") {
		inv.SubmitInterval = cmd.Duration("interval")
	}
	if v := cmd.String("amqp-url"); v != "" {
		inv.AMQP.URL = v
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

func openStore(ctx context.Context, inv *config.Inventory) (store.Store, error) {
	return store.Open(ctx, inv.Store, inv.OutputDir)
}

// openNotifier returns the AMQP publisher when a broker is configured and
// notify.Nop otherwise. The returned func releases the connection.
func openNotifier(inv *config.Inventory) (notify.Notifier, func(), error) {
	if inv.AMQP.URL == "" {
		return notify.Nop{}, func() {}, nil
	}
	pub, err := notify.DialAMQP(inv.AMQP.URL, inv.AMQP.Queue)
	if err != nil {
		return nil, nil, err
	}
	return pub, func() {
		if err := pub.Close(); err != nil {
			slog.Warn("failed to close AMQP publisher", "error", err)
		}
	}, nil
}

func openRegistry(ctx context.Context, inv *config.Inventory) *oui.Registry {
	opts := []oui.Option{oui.WithUserAgent(name + "/" + version)}
	if inv.OUICache != "" {
		opts = append(opts, oui.WithCachePath(inv.OUICache))
	}
	return oui.New(ctx, opts...)
}

// newBuilder wires a snapshot builder for inv: credentials and jump host
// from the environment, the vendor registry and the selected handler kind.
func newBuilder(ctx context.Context, cmd *cli.Command, inv *config.Inventory, st store.Store) (*snapshotter.Builder, error) {
	secrets := config.SecretsFromEnv()

	opts := []collector.Option{
		collector.WithKind(inv.Kind),
		collector.WithCredentials(secrets.Credentials()),
		collector.WithVendors(openRegistry(ctx, inv)),
		collector.WithDNSServer(inv.DNSServer),
	}
	if inv.Kind == device.KindSSH {
		if p := secrets.Proxy(inv.Proxy); p != nil {
			slog.Info("using jump host", "proxy", p.Address())
			opts = append(opts, collector.WithProxy(p))
		}
	}
	if files := cmd.StringSlice("known-hosts"); len(files) > 0 {
		opts = append(opts, collector.WithKnownHosts(files...))
	}

	col, err := collector.NewDefaultFactory(opts...).CreateCollector()
	if err != nil {
		return nil, err
	}

	return &snapshotter.Builder{
		Collector:      col,
		Store:          st,
		Workers:        inv.Workers,
		SubmitInterval: inv.SubmitInterval,
	}, nil
}
