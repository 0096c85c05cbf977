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

package compare

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/macdiff/macdiff/pkg/snapshot"
)

// Placeholder fills cells of the side a MAC is missing from.
const Placeholder = "???"

// Style tags a cell for rendering.
type Style string

const (
	StyleNormal Style = "Normal"
	StyleBad    Style = "Bad"
	StyleGood   Style = "Good"
	StyleInfo   Style = "Info"
)

// Observation is the lifecycle state of a MAC address across the window.
type Observation string

const (
	MacLearnt    Observation = "MAC Learnt"
	MacNotLearnt Observation = "MAC Not Learnt"
	NewMac       Observation = "New MAC"
)

// Style returns the style the observation cell is rendered with.
func (o Observation) Style() Style {
	switch o {
	case MacLearnt:
		return StyleGood
	case MacNotLearnt:
		return StyleBad
	default:
		return StyleInfo
	}
}

// Cell is one rendered value. List attributes keep one value per switch.
type Cell struct {
	Values  []string `json:"values" yaml:"values"`
	Style   Style    `json:"style" yaml:"style"`
	Comment string   `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Text joins the values with newlines.
func (c Cell) Text() string {
	return strings.Join(c.Values, "\n")
}

func cell(style Style, values ...string) Cell {
	return Cell{Values: values, Style: style}
}

// Side holds the attributes of one snapshot.
type Side struct {
	Device    Cell `json:"device" yaml:"device"`
	Interface Cell `json:"interface" yaml:"interface"`
	Speed     Cell `json:"speed" yaml:"speed"`
	Duplex    Cell `json:"duplex" yaml:"duplex"`
	Vlan      Cell `json:"vlan" yaml:"vlan"`
	IP        Cell `json:"ip" yaml:"ip"`
	Hostname  Cell `json:"hostname" yaml:"hostname"`
}

// Cells returns the attributes in column order.
func (s Side) Cells() []Cell {
	return []Cell{s.Device, s.Interface, s.Speed, s.Duplex, s.Vlan, s.IP, s.Hostname}
}

// SideColumns names the attributes of a Side in column order.
var SideColumns = []string{"Device", "Interface", "Speed", "Duplex", "Vlan", "IP", "Hostname"}

func observed(e *snapshot.Endpoint) Side {
	return Side{
		Device:    cell(StyleNormal, e.Switches...),
		Interface: cell(StyleNormal, e.Interfaces...),
		Speed:     cell(StyleNormal, e.Speeds...),
		Duplex:    cell(StyleNormal, e.Duplexes...),
		Vlan:      cell(StyleNormal, e.VLAN),
		IP:        cell(StyleNormal, e.IPAddress),
		Hostname:  cell(StyleNormal, e.Hostname),
	}
}

func placeholders(style Style) Side {
	p := cell(style, Placeholder)
	return Side{Device: p, Interface: p, Speed: p, Duplex: p, Vlan: p, IP: p, Hostname: p}
}

// Record is one compared MAC address.
type Record struct {
	MAC         string      `json:"mac" yaml:"mac"`
	Observation Observation `json:"observation" yaml:"observation"`
	Vendor      string      `json:"vendor" yaml:"vendor"`
	Pre         Side        `json:"pre" yaml:"pre"`
	Post        Side        `json:"post" yaml:"post"`
}

// Cells returns every cell of the record in column order.
func (r Record) Cells() []Cell {
	cells := []Cell{
		cell(StyleNormal, r.MAC),
		cell(r.Observation.Style(), string(r.Observation)),
		cell(StyleNormal, r.Vendor),
	}
	cells = append(cells, r.Pre.Cells()...)
	return append(cells, r.Post.Cells()...)
}

// Changed reports whether a learnt MAC has an attribute that differs.
func (r Record) Changed() bool {
	if r.Observation != MacLearnt {
		return false
	}
	return slices.ContainsFunc(r.Post.Cells(), func(c Cell) bool {
		return c.Style == StyleBad
	})
}

// Table is the result of one comparison.
type Table struct {
	Pre     snapshot.ID `json:"pre" yaml:"pre"`
	Post    snapshot.ID `json:"post" yaml:"post"`
	Records []Record    `json:"records" yaml:"records"`
}

// Columns returns the column names matching Record.Cells.
func (t *Table) Columns() []string {
	cols := []string{"Address", "Observation", "Vendor"}
	for _, c := range SideColumns {
		cols = append(cols, "Pre-"+c)
	}
	for _, c := range SideColumns {
		cols = append(cols, "Post-"+c)
	}
	return cols
}

// Summary counts records per observation.
type Summary struct {
	Learnt    int `json:"learnt" yaml:"learnt"`
	NotLearnt int `json:"notLearnt" yaml:"notLearnt"`
	New       int `json:"new" yaml:"new"`
	Changed   int `json:"changed" yaml:"changed"`
}

// Map returns the counts keyed by name.
func (s Summary) Map() map[string]int {
	return map[string]int{
		"learnt":    s.Learnt,
		"notLearnt": s.NotLearnt,
		"new":       s.New,
		"changed":   s.Changed,
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("%d learnt (%d changed), %d not learnt, %d new",
		s.Learnt, s.Changed, s.NotLearnt, s.New)
}

// Summary counts the records of t.
func (t *Table) Summary() Summary {
	var s Summary
	for _, r := range t.Records {
		switch r.Observation {
		case MacLearnt:
			s.Learnt++
			if r.Changed() {
				s.Changed++
			}
		case MacNotLearnt:
			s.NotLearnt++
		case NewMac:
			s.New++
		}
	}
	return s
}

func (t *Table) TableHeader() []string {
	return append([]string{"#"}, t.Columns()...)
}

// TableRows joins multi-valued cells with commas for single-line output.
func (t *Table) TableRows() [][]string {
	rows := make([][]string, 0, len(t.Records))
	for i, r := range t.Records {
		row := []string{strconv.Itoa(i + 1)}
		for _, c := range r.Cells() {
			row = append(row, strings.Join(c.Values, ","))
		}
		rows = append(rows, row)
	}
	return rows
}
