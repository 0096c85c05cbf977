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
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/macdiff/macdiff/pkg/config"
	"github.com/macdiff/macdiff/pkg/defaults"
	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/oci"
	"github.com/macdiff/macdiff/pkg/store"
)

func archiveCmd() *cli.Command {
	return &cli.Command{
		Name:  "archive",
		Usage: "Archive the snapshot directory as an OCI artifact",
		Commands: []*cli.Command{
			{
				Name:      "push",
				Usage:     "Package the Snapshots directory and push it to a registry or a local OCI layout",
				ArgsUsage: "<oci://registry/repository[:tag] | directory>",
				Description: `Packages <output-dir>/Snapshots as a single-layer artifact of type
application/vnd.macdiff.snapshots.v1. Registry credentials come from the
Docker credential store. A plain directory target receives an OCI image
layout and nothing is pushed.

# Examples

  macdiff archive push oci://registry.example.com/netops/macdiff:core-upgrade
  macdiff archive push ./archive --tag core-upgrade`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "tag",
						Usage: "artifact tag when the target carries none (default: latest)",
					},
					&cli.BoolFlag{
						Name:  "plain-http",
						Usage: "use HTTP instead of HTTPS for the registry",
					},
					&cli.BoolFlag{
						Name:  "insecure-tls",
						Usage: "skip registry TLS certificate verification",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "timeout for packaging and pushing",
						Value: defaults.CLIArchiveTimeout,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return errors.New(errors.ErrCodeInvalidRequest, "exactly one archive target is required")
					}
					target, err := oci.ParseTarget(cmd.Args().First())
					if err != nil {
						return err
					}
					if target.Tag == "" {
						target.Tag = cmd.String("tag")
					}

					inv, err := loadInventory(cmd)
					if err != nil {
						return err
					}
					root, err := storeRoot(inv)
					if err != nil {
						return err
					}

					ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
					defer cancel()

					res, err := oci.Archive(ctx, oci.ArchiveConfig{
						OutputDir:   root,
						SubDir:      store.SnapshotDir,
						Target:      target,
						Version:     version,
						PlainHTTP:   cmd.Bool("plain-http"),
						InsecureTLS: cmd.Bool("insecure-tls"),
					})
					if err != nil {
						return err
					}

					if res.Pushed {
						fmt.Fprintf(stdout(cmd), "pushed %s@%s\n", res.Reference, res.Digest)
					} else {
						fmt.Fprintf(stdout(cmd), "wrote %s@%s to %s\n", res.Reference, res.Digest, res.StorePath)
					}
					return nil
				},
			},
		},
	}
}

// storeRoot returns the directory holding the Snapshots directory of a file
// store. ConfigMap stores have no directory to archive.
func storeRoot(inv *config.Inventory) (string, error) {
	switch {
	case strings.HasPrefix(inv.Store, store.ConfigMapScheme):
		return "", errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"ConfigMap stores cannot be archived", map[string]any{"store": inv.Store})
	case inv.Store == "":
		return inv.OutputDir, nil
	default:
		return strings.TrimPrefix(inv.Store, store.FileScheme), nil
	}
}
