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

package device

// Row is one record of a command's output, field name to value.
type Row map[string]string

// Table holds rows keyed by one of their fields, in first-seen order. A
// later row with an existing key replaces the earlier row in place.
type Table struct {
	key  string
	keys []string
	rows map[string]Row
}

// NewTable builds a Table keyed by key from rows. Rows without a value for
// key are dropped.
func NewTable(key string, rows []Row) *Table {
	t := &Table{
		key:  key,
		rows: make(map[string]Row, len(rows)),
	}
	for _, r := range rows {
		t.Add(r)
	}
	return t
}

// Add inserts or replaces a row.
func (t *Table) Add(r Row) {
	k := r[t.key]
	if k == "" {
		return
	}
	if _, ok := t.rows[k]; !ok {
		t.keys = append(t.keys, k)
	}
	t.rows[k] = r
}

// Key returns the field the table is keyed by.
func (t *Table) Key() string {
	return t.key
}

// Keys returns the keys in first-seen order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Get returns the row stored under k.
func (t *Table) Get(k string) (Row, bool) {
	if t == nil {
		return nil, false
	}
	r, ok := t.rows[k]
	return r, ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}
