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
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/macdiff/macdiff/pkg/k8s/client"
	"github.com/macdiff/macdiff/pkg/logging"
)

const (
	name           = "macdiff"
	daemonName     = "macdiffd"
	versionDefault = "dev"

	// envFileDefault is loaded when present and no --env-file is given.
	envFileDefault = ".env"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Execute runs the macdiff CLI and exits non-zero on error.
func Execute() {
	execute(newRootCmd())
}

// ExecuteDaemon runs the API server as the macdiffd root command.
func ExecuteDaemon() {
	execute(newDaemonCmd())
}

func execute(cmd *cli.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loadEnvFile(envFileArg(os.Args[1:])); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		Usage:                 "Snapshot switch MAC tables before and after a change and compare them",
		Description: `macdiff records which endpoints (MAC addresses) every switch sees, where
they are attached and how they resolve, then compares a Pre and a Post
snapshot and reports what moved, changed or disappeared.

  snapshot - create, list, view and delete endpoint snapshots
  compare  - compare a Pre and a Post snapshot into an XLSX report
  oui      - maintain the MAC vendor registry cache
  archive  - push the snapshot directory to an OCI registry
  serve    - run the HTTP API`,
		Flags:  globalFlags(),
		Before: before,
		Commands: []*cli.Command{
			snapshotCmd(),
			compareCmd(),
			ouiCmd(),
			archiveCmd(),
			serveCmd(),
		},
	}
}

func newDaemonCmd() *cli.Command {
	cmd := serveCmd()
	cmd.Name = daemonName
	cmd.Version = version
	cmd.Flags = append(globalFlags(), cmd.Flags...)
	cmd.Before = before
	return cmd
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log level (debug, info, warn, error)",
			Sources: cli.EnvVars("LOG_LEVEL"),
			Value:   "info",
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Usage:   "directory receiving snapshots and reports (overrides the inventory)",
			Sources: cli.EnvVars("MACDIFF_OUTPUT_DIR"),
		},
		&cli.StringFlag{
			Name:    "store",
			Usage:   "snapshot store: a directory, file://dir or cm://namespace (overrides the inventory)",
			Sources: cli.EnvVars("MACDIFF_STORE"),
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "inventory file (YAML or JSON, path or http(s) URL)",
			Sources: cli.EnvVars("MACDIFF_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "env-file",
			Usage:   "file with KEY=value secrets loaded into the environment",
			Sources: cli.EnvVars("MACDIFF_ENV_FILE"),
			Value:   envFileDefault,
		},
		kubeconfigFlag(),
	}
}

// before configures logging once flags are parsed.
func before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	logLevel := cmd.String("log-level")
	logging.SetDefaultStructuredLoggerWithLevel(cmd.Root().Name, version, logLevel)

	if kc := cmd.String("kubeconfig"); kc != "" {
		if err := os.Setenv(client.EnvKubeconfig, kc); err != nil {
			return ctx, fmt.Errorf("failed to set %s: %w", client.EnvKubeconfig, err)
		}
	}

	slog.Debug("starting",
		"name", cmd.Root().Name,
		"version", version,
		"commit", commit,
		"date", date,
		"logLevel", logLevel)
	return ctx, nil
}

// envFileArg finds --env-file in args ahead of flag parsing so the file can
// feed flag environment sources. MACDIFF_ENV_FILE is used otherwise.
func envFileArg(args []string) (string, bool) {
	for i, a := range args {
		switch {
		case a == "--env-file" || a == "-env-file":
			if i+1 < len(args) {
				return args[i+1], true
			}
		case strings.HasPrefix(a, "--env-file="), strings.HasPrefix(a, "-env-file="):
			return a[strings.Index(a, "=")+1:], true
		}
	}
	if v := os.Getenv("MACDIFF_ENV_FILE"); v != "" {
		return v, true
	}
	return envFileDefault, false
}

// loadEnvFile loads path into the environment without overriding values
// already set. A missing default file is not an error.
func loadEnvFile(path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
