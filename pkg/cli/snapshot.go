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
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/macdiff/macdiff/pkg/config"
	"github.com/macdiff/macdiff/pkg/defaults"
	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/report"
	"github.com/macdiff/macdiff/pkg/serializer"
	"github.com/macdiff/macdiff/pkg/snapshot"
)

func snapshotCmd() *cli.Command {
	return &cli.Command{
		Name:                  "snapshot",
		EnableShellCompletion: true,
		Usage:                 "Create and manage endpoint snapshots",
		Commands: []*cli.Command{
			snapshotCreateCmd(),
			snapshotListCmd(),
			snapshotViewCmd(),
			snapshotDeleteCmd(),
		},
	}
}

func snapshotCreateCmd() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Collect every device and save a Pre or Post snapshot",
		Description: `Connects to each device, reads its MAC address table, ARP table and
interface status, and saves the consolidated endpoints as
[<Type>]_[<Name>]_[<YYYY-MM-DD_HH.MM>].json in the snapshot store.

Devices come from --device, --devices-file and the inventory devices list.
Credentials are read from NETWORK_USERNAME, NETWORK_PASSWORD and, for the
snmp kind, SNMP_COMMUNITY. A jump host is taken from --proxy or JUMPHOST_IP
with JUMPHOST_USERNAME and JUMPHOST_PASSWORD.

Devices that fail are reported and left out; the snapshot is still saved.

# Examples

  macdiff snapshot create --type pre --name core-upgrade --device 10.0.0.1 --device 10.0.0.2
  macdiff -c inventory.yaml snapshot create --type post --name core-upgrade`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "type",
				Usage:    fmt.Sprintf("snapshot type (supported values: %s)", strings.Join(snapshot.SupportedTypes(), ", ")),
				Required: true,
			},
			&cli.StringFlag{
				Name:     "name",
				Aliases:  []string{"n"},
				Usage:    "snapshot name, usually the change identifier",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:    "device",
				Aliases: []string{"d"},
				Usage:   "device host or host:port (can be repeated)",
			},
			&cli.StringFlag{
				Name:  "devices-file",
				Usage: "file with one device per line; # starts a comment",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "timeout for the whole collection",
				Value: defaults.CLISnapshotTimeout,
			},
			outputFlag(),
			formatFlag(),
		}, collectionFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			typ, err := snapshot.ParseType(cmd.String("type"))
			if err != nil {
				return err
			}
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			inv, err := loadInventory(cmd)
			if err != nil {
				return err
			}

			devices, err := readDevices(cmd.StringSlice("device"), cmd.String("devices-file"), inv.Devices)
			if err != nil {
				return err
			}
			devices = config.NormalizeDevices(devices)
			if len(devices) == 0 {
				return errors.New(errors.ErrCodeInvalidRequest,
					"no devices given, use --device, --devices-file or the inventory devices list")
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
			builder.Notifier = notifier

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			rep, err := builder.BuildReport(ctx, devices, cmd.String("name"), typ)
			if err != nil {
				return err
			}
			slog.Info("snapshot created", "snapshot", rep.ID.String(), "summary", rep.String())

			return writeOutput(ctx, cmd, rep)
		},
	}
}

func snapshotListCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored snapshots",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Usage: "only list snapshots of this type",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var filter snapshot.Type
			if v := cmd.String("type"); v != "" {
				t, err := snapshot.ParseType(v)
				if err != nil {
					return err
				}
				filter = t
			}

			inv, err := loadInventory(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(ctx, inv)
			if err != nil {
				return err
			}

			ids, err := st.List(ctx)
			if err != nil {
				return err
			}
			if filter != "" {
				kept := ids[:0]
				for _, id := range ids {
					if id.Type == filter {
						kept = append(kept, id)
					}
				}
				ids = kept
			}
			return writeOutput(ctx, cmd, ids)
		},
	}
}

func snapshotViewCmd() *cli.Command {
	return &cli.Command{
		Name:      "view",
		Usage:     "Show the endpoints of a snapshot",
		ArgsUsage: "<type/name/timestamp | artifact file name>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "xlsx",
				Usage: "write the endpoints to this workbook instead of printing them",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New(errors.ErrCodeInvalidRequest, "exactly one snapshot is required")
			}
			id, err := parseSnapshotRef(cmd.Args().First())
			if err != nil {
				return err
			}

			inv, err := loadInventory(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(ctx, inv)
			if err != nil {
				return err
			}
			s, err := st.Load(ctx, id)
			if err != nil {
				return err
			}

			if path := cmd.String("xlsx"); path != "" {
				if err := report.WriteSnapshot(path, s); err != nil {
					return err
				}
				fmt.Fprintln(stdout(cmd), path)
				return nil
			}

			f, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			if f == serializer.FormatTable {
				return writeOutput(ctx, cmd, endpointTable(s.Endpoints()))
			}
			return writeOutput(ctx, cmd, s)
		},
	}
}

func snapshotDeleteCmd() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete stored snapshots",
		ArgsUsage: "<type/name/timestamp | artifact file name>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return errors.New(errors.ErrCodeInvalidRequest, "at least one snapshot is required")
			}
			ids := make([]snapshot.ID, 0, cmd.Args().Len())
			for _, a := range cmd.Args().Slice() {
				id, err := parseSnapshotRef(a)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			inv, err := loadInventory(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(ctx, inv)
			if err != nil {
				return err
			}

			for _, id := range ids {
				if err := st.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(stdout(cmd), "deleted %s\n", id)
			}
			return nil
		},
	}
}

// endpointTable renders endpoints as table rows.
type endpointTable []*snapshot.Endpoint

func (t endpointTable) TableHeader() []string {
	return report.SnapshotColumns
}

func (t endpointTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for i, e := range t {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.MAC,
			e.Vendor,
			e.Hostname,
			e.IPAddress,
			e.VLAN,
			strings.Join(e.Switches, ","),
			strings.Join(e.Interfaces, ","),
			strings.Join(e.Speeds, ","),
			strings.Join(e.Duplexes, ","),
		})
	}
	return rows
}
