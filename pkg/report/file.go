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

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/macdiff/macdiff/pkg/compare"
	"github.com/macdiff/macdiff/pkg/snapshot"
)

// FileName returns <Title>_<YYYY-MM-DD_HH.MM>.xlsx for the report title.
func FileName(title string, at time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", cases.Title(language.English).String(title), at.Format(snapshot.TimestampLayout))
}

// WriteComparison renders t into a new workbook in dir and returns its path.
func WriteComparison(dir string, t *compare.Table, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName("macdiff", at))
	return path, writeXLSX(path, CompareSheet, func(s Sink) error {
		return Render(s, t)
	})
}

// WriteSnapshot renders s into a workbook at path.
func WriteSnapshot(path string, s *snapshot.Snapshot) error {
	return writeXLSX(path, SnapshotSheet, func(sink Sink) error {
		return RenderSnapshot(sink, s)
	})
}

func writeXLSX(path, sheet string, render func(Sink) error) error {
	x, err := NewXLSX(path, sheet)
	if err != nil {
		return err
	}
	if err := render(x); err != nil {
		x.discard()
		return err
	}
	return x.Close()
}
