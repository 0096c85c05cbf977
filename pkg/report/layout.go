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
	"strings"

	"github.com/macdiff/macdiff/pkg/compare"
	"github.com/macdiff/macdiff/pkg/snapshot"
)

const (
	preSpacer  = 4
	postSpacer = 12
	spacerWide = 0.4
	headerRows = 2
)

// Render writes t to sink. The sink is not closed.
func Render(sink Sink, t *compare.Table) error {
	w := &writer{sink: sink}

	for i, h := range []string{"#", "Address", "Observation", "Vendor"} {
		w.write(0, i, h, FormatHeader)
	}
	w.merge(0, preSpacer+1, postSpacer-1, "Pre", FormatPre)
	w.merge(0, postSpacer+1, postSpacer+len(compare.SideColumns), "Post", FormatPost)

	for i := 0; i < preSpacer; i++ {
		w.write(1, i, " ", FormatSubHeader)
	}
	for i, h := range compare.SideColumns {
		w.write(1, preSpacer+1+i, h, FormatSubHeader)
		w.write(1, postSpacer+1+i, h, FormatSubHeader)
	}

	row := headerRows
	lastCol := 0
	for i, r := range t.Records {
		w.write(row, 0, i+1, FormatBase)
		col := 1
		for _, c := range r.Cells() {
			if col == preSpacer || col == postSpacer {
				col++
			}
			w.write(row, col, c.Text(), FormatOf(c.Style))
			if c.Comment != "" {
				w.comment(row, col, c.Comment)
			}
			col++
		}
		lastCol = col - 1
		row++
	}
	if lastCol == 0 {
		lastCol = postSpacer + len(compare.SideColumns)
	}

	w.autoFilter(1, 1, row, lastCol)
	w.column(preSpacer, spacerWide, FormatPattern)
	w.column(postSpacer, spacerWide, FormatPattern)
	return w.err
}

// SnapshotColumns are the columns written by RenderSnapshot.
var SnapshotColumns = []string{"#", "MAC Address", "Vendor", "Hostname", "IP Address", "Vlan", "Switch", "Interface", "Speed", "Duplex"}

// RenderSnapshot writes the endpoints of s to sink, one per row.
func RenderSnapshot(sink Sink, s *snapshot.Snapshot) error {
	w := &writer{sink: sink}
	for i, h := range SnapshotColumns {
		w.write(0, i, h, FormatHeader)
	}

	for i, e := range s.Endpoints() {
		row := i + 1
		w.write(row, 0, i+1, FormatBase)
		for j, v := range []string{
			e.MAC,
			e.Vendor,
			e.Hostname,
			e.IPAddress,
			e.VLAN,
			strings.Join(e.Switches, "\n"),
			strings.Join(e.Interfaces, "\n"),
			strings.Join(e.Speeds, "\n"),
			strings.Join(e.Duplexes, "\n"),
		} {
			w.write(row, j+1, v, FormatBase)
		}
	}
	w.autoFilter(0, 0, s.Len(), len(SnapshotColumns)-1)
	return w.err
}

// writer keeps the first sink error so layout code stays linear.
type writer struct {
	sink Sink
	err  error
}

func (w *writer) write(row, col int, v any, f Format) {
	if w.err == nil {
		w.err = wrap(w.sink.Write(row, col, v, f), "write", row, col)
	}
}

func (w *writer) comment(row, col int, text string) {
	if w.err == nil {
		w.err = wrap(w.sink.Comment(row, col, text), "comment", row, col)
	}
}

func (w *writer) merge(row, first, last int, v string, f Format) {
	if w.err == nil {
		w.err = wrap(w.sink.Merge(row, first, last, v, f), "merge", row, first)
	}
}

func (w *writer) autoFilter(r1, c1, r2, c2 int) {
	if w.err == nil {
		w.err = wrap(w.sink.AutoFilter(r1, c1, r2, c2), "autofilter", r1, c1)
	}
}

func (w *writer) column(col int, width float64, f Format) {
	if w.err == nil {
		w.err = wrap(w.sink.SetColumn(col, width, f), "set column", 0, col)
	}
}

func wrap(err error, op string, row, col int) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s at row %d col %d: %w", op, row, col, err)
}
