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
	"github.com/macdiff/macdiff/pkg/compare"
)

// Format names a cell format known to every Sink.
type Format int

const (
	FormatBase Format = iota
	FormatHeader
	FormatSubHeader
	FormatPre
	FormatPost
	FormatPattern
	FormatBad
	FormatGood
	FormatInfo
)

// FormatOf maps a comparison style to its cell format.
func FormatOf(s compare.Style) Format {
	switch s {
	case compare.StyleBad:
		return FormatBad
	case compare.StyleGood:
		return FormatGood
	case compare.StyleInfo:
		return FormatInfo
	default:
		return FormatBase
	}
}

// Sink receives a laid out document. Rows and columns are zero based.
type Sink interface {
	Write(row, col int, value any, f Format) error
	Comment(row, col int, text string) error
	Merge(row, firstCol, lastCol int, value string, f Format) error
	AutoFilter(firstRow, firstCol, lastRow, lastCol int) error
	SetColumn(col int, width float64, f Format) error
	// Close produces the document.
	Close() error
}
