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
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/snapshot"
	"github.com/macdiff/macdiff/pkg/store"
)

// Compare builds the comparison table of pre against post.
func Compare(pre, post *snapshot.Snapshot) *Table {
	t := &Table{
		Pre:     pre.ID,
		Post:    post.ID,
		Records: make([]Record, 0, pre.Len()+post.Len()),
	}

	for _, p := range pre.Endpoints() {
		r := Record{
			MAC:         p.MAC,
			Observation: MacNotLearnt,
			Vendor:      p.Vendor,
			Pre:         observed(p),
			Post:        placeholders(StyleBad),
		}
		if q, ok := post.Endpoint(p.MAC); ok {
			r.Observation = MacLearnt
			r.Post = Side{
				Device:    cell(StyleNormal, q.Switches...),
				Interface: cell(StyleNormal, q.Interfaces...),
				Speed:     match(p.Speeds, q.Speeds),
				Duplex:    match(p.Duplexes, q.Duplexes),
				Vlan:      match([]string{p.VLAN}, []string{q.VLAN}),
				IP:        match([]string{p.IPAddress}, []string{q.IPAddress}),
				Hostname:  match([]string{p.Hostname}, []string{q.Hostname}),
			}
		}
		t.Records = append(t.Records, r)
	}

	for _, q := range post.Endpoints() {
		if _, ok := pre.Endpoint(q.MAC); ok {
			continue
		}
		t.Records = append(t.Records, Record{
			MAC:         q.MAC,
			Observation: NewMac,
			Vendor:      q.Vendor,
			Pre:         placeholders(StyleNormal),
			Post:        observed(q),
		})
	}

	slog.Debug("snapshots compared",
		"pre", pre.String(),
		"post", post.String(),
		"records", len(t.Records))
	return t
}

// match returns the Post value, styled Bad with the Pre value as comment
// when the two differ.
func match(pre, post []string) Cell {
	if slices.Equal(pre, post) {
		return cell(StyleNormal, post...)
	}
	c := cell(StyleBad, post...)
	c.Comment = "Pre: " + strings.Join(pre, ", ")
	return c
}

// Select orders two snapshot IDs as (pre, post). Comparing two snapshots of
// the same type is an error.
func Select(a, b snapshot.ID) (snapshot.ID, snapshot.ID, error) {
	switch {
	case a.Type == snapshot.TypePre && b.Type == snapshot.TypePost:
		return a, b, nil
	case a.Type == snapshot.TypePost && b.Type == snapshot.TypePre:
		return b, a, nil
	default:
		return snapshot.ID{}, snapshot.ID{}, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"comparison needs one Pre and one Post snapshot",
			map[string]any{"a": a.String(), "b": b.String()})
	}
}

// Load selects, loads and compares two stored snapshots. A snapshot that
// cannot be loaded aborts the comparison.
func Load(ctx context.Context, st store.Store, a, b snapshot.ID) (*Table, error) {
	preID, postID, err := Select(a, b)
	if err != nil {
		return nil, err
	}

	pre, err := st.Load(ctx, preID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pre snapshot %s: %w", preID, err)
	}
	post, err := st.Load(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post snapshot %s: %w", postID, err)
	}

	slog.Info("loaded snapshots for comparison",
		"pre", preID.String(),
		"pre_endpoints", pre.Len(),
		"post", postID.String(),
		"post_endpoints", post.Len())

	return Compare(pre, post), nil
}
