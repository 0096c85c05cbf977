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
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/macdiff/macdiff/pkg/compare"
)

var (
	colorBad    = color.New(color.FgRed)
	colorGood   = color.New(color.FgGreen)
	colorInfo   = color.New(color.FgYellow)
	colorHeader = color.New(color.Bold)
)

func paint(s compare.Style, text string) string {
	switch s {
	case compare.StyleBad:
		return colorBad.Sprint(text)
	case compare.StyleGood:
		return colorGood.Sprint(text)
	case compare.StyleInfo:
		return colorInfo.Sprint(text)
	default:
		return text
	}
}

// Print writes t as an aligned table followed by a summary line. Cells are
// colored by style unless color output is disabled (color.NoColor).
func Print(w io.Writer, t *compare.Table) error {
	header := append([]string{"#"}, t.Columns()...)

	type styled struct {
		text  string
		style compare.Style
	}
	rows := make([][]styled, 0, len(t.Records))
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}

	for i, r := range t.Records {
		row := []styled{{text: strconv.Itoa(i + 1), style: compare.StyleNormal}}
		for _, c := range r.Cells() {
			row = append(row, styled{text: strings.Join(c.Values, ","), style: c.Style})
		}
		for j, c := range row {
			widths[j] = max(widths[j], utf8.RuneCountInString(c.text))
		}
		rows = append(rows, row)
	}

	var b strings.Builder
	for i, h := range header {
		b.WriteString(colorHeader.Sprint(pad(h, widths[i])))
		b.WriteString("  ")
	}
	b.WriteString("\n")
	for _, row := range rows {
		for j, c := range row {
			// pad before painting so escape codes do not skew alignment
			b.WriteString(paint(c.style, pad(c.text, widths[j])))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%s vs %s: %s\n", t.Pre, t.Post, t.Summary())

	_, err := io.WriteString(w, b.String())
	return err
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
