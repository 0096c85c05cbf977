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
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/macdiff/macdiff/pkg/serializer"
	"github.com/macdiff/macdiff/pkg/snapshot"
)

// Shared flags are constructed per command tree.

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output file path (default: stdout)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatTable),
		Usage:   fmt.Sprintf("output format (supported values: %s)", strings.Join(serializer.SupportedFormats(), ", ")),
	}
}

func kubeconfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "kubeconfig",
		Usage:   "kubeconfig used by the cm:// snapshot store",
		Sources: cli.EnvVars("KUBECONFIG"),
	}
}

// parseOutputFormat returns the --format value, rejecting unknown formats.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", f)
	}
	return f, nil
}

// writeOutput serializes v in the --format format to --output or stdout.
func writeOutput(ctx context.Context, cmd *cli.Command, v any) error {
	f, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	var w *serializer.Writer
	if path := cmd.String("output"); path != "" {
		w = serializer.NewFileWriterOrStdout(f, path)
	} else {
		w = serializer.NewWriter(f, stdout(cmd))
	}
	defer func() {
		if err := w.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close output: %v\n", err)
		}
	}()
	return w.Serialize(ctx, v)
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// parseSnapshotRef accepts a snapshot as type/name/timestamp, as an artifact
// file name, or as a path to an artifact file.
func parseSnapshotRef(s string) (snapshot.ID, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, snapshot.FileExt) {
		base := s
		if i := strings.LastIndexAny(s, `/\`); i >= 0 {
			base = s[i+1:]
		}
		return snapshot.ParseFileName(base)
	}
	return snapshot.ParseID(s)
}

// readDevices merges devices from --device flags, a devices file and the
// inventory in that order.
func readDevices(flagDevices []string, file string, inventory []string) ([]string, error) {
	devices := append([]string{}, flagDevices...)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read devices file %s: %w", file, err)
		}
		devices = append(devices, strings.Split(string(data), "\n")...)
	}
	return append(devices, inventory...), nil
}
