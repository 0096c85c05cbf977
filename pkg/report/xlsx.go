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
	"log/slog"

	"github.com/xuri/excelize/v2"
)

const (
	// CompareSheet names the comparison worksheet.
	CompareSheet = "Mac Compare"
	// SnapshotSheet names the snapshot worksheet.
	SnapshotSheet = "Snapshot"

	fontFamily = "Segoe UI"
	fontSize   = 10
)

var (
	baseFont = excelize.Font{Family: fontFamily, Size: fontSize, Color: "#000000"}

	formatStyles = map[Format]excelize.Style{
		FormatBase:      baseStyle(baseFont, "", ""),
		FormatHeader:    baseStyle(font("#FFFFFF"), "#1F4E78", "center"),
		FormatSubHeader: baseStyle(baseFont, "#E7E6E6", "center"),
		FormatPre:       baseStyle(font("#FFFFFF"), "#548235", "center"),
		FormatPost:      baseStyle(font("#FFFFFF"), "#BF8F00", "center"),
		FormatBad:       baseStyle(font("#9C0006"), "#FFC7CE", ""),
		FormatGood:      baseStyle(font("#006100"), "#C6EFCE", ""),
		FormatInfo:      baseStyle(font("#9C6500"), "#FFEB9C", ""),
		FormatPattern: {
			Fill: excelize.Fill{Type: "pattern", Pattern: 4, Color: []string{"#808080"}},
		},
	}
)

func font(color string) excelize.Font {
	f := baseFont
	f.Color = color
	return f
}

func baseStyle(f excelize.Font, fill, align string) excelize.Style {
	s := excelize.Style{
		Font:      &f,
		Alignment: &excelize.Alignment{Vertical: "top", Horizontal: align, WrapText: true},
	}
	if fill != "" {
		s.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}}
	}
	return s
}

// XLSX is a Sink writing a single-sheet workbook to a file on Close.
type XLSX struct {
	f      *excelize.File
	path   string
	sheet  string
	styles map[Format]int
}

// NewXLSX returns a Sink that saves to path with one sheet.
func NewXLSX(path, sheet string) (*XLSX, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet %q: %w", sheet, err)
	}
	return &XLSX{
		f:      f,
		path:   path,
		sheet:  sheet,
		styles: make(map[Format]int),
	}, nil
}

// Path returns the file the workbook is saved to.
func (x *XLSX) Path() string {
	return x.path
}

func (x *XLSX) style(f Format) (int, error) {
	if id, ok := x.styles[f]; ok {
		return id, nil
	}
	s, ok := formatStyles[f]
	if !ok {
		s = formatStyles[FormatBase]
	}
	id, err := x.f.NewStyle(&s)
	if err != nil {
		return 0, fmt.Errorf("failed to create style: %w", err)
	}
	x.styles[f] = id
	return id, nil
}

func (x *XLSX) Write(row, col int, value any, f Format) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	if err := x.f.SetCellValue(x.sheet, cell, value); err != nil {
		return err
	}
	id, err := x.style(f)
	if err != nil {
		return err
	}
	return x.f.SetCellStyle(x.sheet, cell, cell, id)
}

func (x *XLSX) Comment(row, col int, text string) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	return x.f.AddComment(x.sheet, excelize.Comment{
		Cell:   cell,
		Author: "macdiff",
		Text:   text,
	})
}

func (x *XLSX) Merge(row, firstCol, lastCol int, value string, f Format) error {
	first, err := excelize.CoordinatesToCellName(firstCol+1, row+1)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(lastCol+1, row+1)
	if err != nil {
		return err
	}
	if err := x.f.MergeCell(x.sheet, first, last); err != nil {
		return err
	}
	if err := x.f.SetCellValue(x.sheet, first, value); err != nil {
		return err
	}
	id, err := x.style(f)
	if err != nil {
		return err
	}
	return x.f.SetCellStyle(x.sheet, first, last, id)
}

func (x *XLSX) AutoFilter(firstRow, firstCol, lastRow, lastCol int) error {
	first, err := excelize.CoordinatesToCellName(firstCol+1, firstRow+1)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(lastCol+1, lastRow+1)
	if err != nil {
		return err
	}
	return x.f.AutoFilter(x.sheet, first+":"+last, nil)
}

func (x *XLSX) SetColumn(col int, width float64, f Format) error {
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return err
	}
	if err := x.f.SetColWidth(x.sheet, name, name, width); err != nil {
		return err
	}
	id, err := x.style(f)
	if err != nil {
		return err
	}
	return x.f.SetColStyle(x.sheet, name, id)
}

// discard releases the workbook without saving it.
func (x *XLSX) discard() {
	if x.f != nil {
		x.f.Close()
		x.f = nil
	}
}

// Close saves the workbook to its path.
func (x *XLSX) Close() error {
	if x.f == nil {
		return nil
	}
	defer func() {
		if err := x.f.Close(); err != nil {
			slog.Warn("failed to release workbook", "path", x.path, "error", err)
		}
		x.f = nil
	}()
	if err := x.f.SaveAs(x.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", x.path, err)
	}
	slog.Info("report saved", "path", x.path)
	return nil
}
