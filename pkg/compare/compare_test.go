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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/snapshot"
	"github.com/macdiff/macdiff/pkg/store"
)

var (
	preID  = snapshot.ID{Type: snapshot.TypePre, Name: "core", Timestamp: "2025-03-14_21.30"}
	postID = snapshot.ID{Type: snapshot.TypePost, Name: "core", Timestamp: "2025-03-14_23.10"}
)

type ep struct {
	mac, sw, iface, speed, vlan string
}

func build(t *testing.T, id snapshot.ID, eps ...ep) *snapshot.Snapshot {
	t.Helper()
	s := snapshot.New(id)
	for _, p := range eps {
		e := &snapshot.Endpoint{
			MAC:       p.mac,
			Hostname:  "host-" + p.mac[len(p.mac)-2:],
			IPAddress: "10.0.0." + p.mac[len(p.mac)-1:],
			Vendor:    "Cisco Systems, Inc",
			VLAN:      p.vlan,
		}
		e.Observe(p.sw, p.iface, p.speed, "full")
		require.NoError(t, s.Add(e))
	}
	return s
}

func values(side Side) []string {
	var out []string
	for _, c := range side.Cells() {
		out = append(out, c.Text())
	}
	return out
}

func styles(side Side) []Style {
	var out []Style
	for _, c := range side.Cells() {
		out = append(out, c.Style)
	}
	return out
}

func TestCompare_MissingAndNew(t *testing.T) {
	pre := build(t, preID, ep{"aa:bb:cc:00:00:01", "SW1", "Gi1/0/1", "1G", "10"})
	post := build(t, postID, ep{"aa:bb:cc:00:00:02", "SW1", "Gi1/0/2", "1G", "10"})

	tbl := Compare(pre, post)
	require.Len(t, tbl.Records, 2)

	gone := tbl.Records[0]
	assert.Equal(t, "aa:bb:cc:00:00:01", gone.MAC)
	assert.Equal(t, MacNotLearnt, gone.Observation)
	assert.Equal(t, []string{"SW1", "Gi1/0/1", "1G", "full", "10", "10.0.0.1", "host-01"}, values(gone.Pre))
	for _, c := range gone.Post.Cells() {
		assert.Equal(t, []string{Placeholder}, c.Values)
		assert.Equal(t, StyleBad, c.Style)
	}

	added := tbl.Records[1]
	assert.Equal(t, "aa:bb:cc:00:00:02", added.MAC)
	assert.Equal(t, NewMac, added.Observation)
	for _, c := range added.Pre.Cells() {
		assert.Equal(t, []string{Placeholder}, c.Values)
		assert.Equal(t, StyleNormal, c.Style)
	}
	assert.Equal(t, "SW1", added.Post.Device.Text())
	assert.Equal(t, "Cisco Systems, Inc", added.Vendor)
}

func TestCompare_SpeedChanged(t *testing.T) {
	pre := build(t, preID, ep{"aa:bb:cc:00:00:01", "SW1", "Gi1/0/1", "1G", "10"})
	post := build(t, postID, ep{"aa:bb:cc:00:00:01", "SW1", "Gi1/0/1", "10G", "10"})

	tbl := Compare(pre, post)
	require.Len(t, tbl.Records, 1)

	r := tbl.Records[0]
	assert.Equal(t, MacLearnt, r.Observation)
	assert.Equal(t, "10G", r.Post.Speed.Text())
	assert.Equal(t, StyleBad, r.Post.Speed.Style)
	assert.Equal(t, "Pre: 1G", r.Post.Speed.Comment)
	assert.Equal(t, []Style{StyleNormal, StyleNormal, StyleBad, StyleNormal, StyleNormal, StyleNormal, StyleNormal}, styles(r.Post))
	assert.True(t, r.Changed())
}

func TestCompare_AttributeStyles(t *testing.T) {
	pre := build(t, preID, ep{"aa:bb:cc:00:00:01", "SW1", "Gi1/0/1", "1G", "10"})
	post := build(t, postID, ep{"aa:bb:cc:00:00:01", "SW9", "Te1/1/1", "1G", "20"})

	r := Compare(pre, post).Records[0]
	assert.Equal(t, MacLearnt, r.Observation)
	// moves are shown, not flagged
	assert.Equal(t, StyleNormal, r.Post.Device.Style)
	assert.Equal(t, StyleNormal, r.Post.Interface.Style)
	assert.Equal(t, "SW9", r.Post.Device.Text())
	assert.Equal(t, StyleNormal, r.Post.Speed.Style)
	assert.Equal(t, StyleBad, r.Post.Vlan.Style)
	for _, c := range r.Pre.Cells() {
		assert.Equal(t, StyleNormal, c.Style)
	}
}

func TestCompare_ListCardinalityChange(t *testing.T) {
	pre := build(t, preID, ep{"aa:bb:cc:00:00:01", "SW1", "Gi1/0/1", "1G", "10"})
	post := build(t, postID, ep{"aa:bb:cc:00:00:01", "SW1", "Gi1/0/1", "1G", "10"})
	e, _ := post.Endpoint("aa:bb:cc:00:00:01")
	e.Observe("SW2", "Te1/1/1", "1G", "full")

	r := Compare(pre, post).Records[0]
	assert.Equal(t, "SW1\nSW2", r.Post.Device.Text())
	assert.Equal(t, StyleNormal, r.Post.Device.Style)
	assert.Equal(t, StyleBad, r.Post.Speed.Style)
	assert.Equal(t, []string{"1G", "1G"}, r.Post.Speed.Values)
}

func TestCompare_Ordering(t *testing.T) {
	pre := build(t, preID,
		ep{"aa:bb:cc:00:00:09", "SW1", "Gi1/0/9", "1G", "10"},
		ep{"aa:bb:cc:00:00:01", "SW1", "Gi1/0/1", "1G", "10"},
	)
	post := build(t, postID,
		ep{"aa:bb:cc:00:00:07", "SW1", "Gi1/0/7", "1G", "10"},
		ep{"aa:bb:cc:00:00:01", "SW1", "Gi1/0/1", "1G", "10"},
		ep{"aa:bb:cc:00:00:03", "SW1", "Gi1/0/3", "1G", "10"},
	)

	tbl := Compare(pre, post)
	var macs []string
	var obs []Observation
	for _, r := range tbl.Records {
		macs = append(macs, r.MAC)
		obs = append(obs, r.Observation)
	}
	assert.Equal(t, []string{"aa:bb:cc:00:00:09", "aa:bb:cc:00:00:01", "aa:bb:cc:00:00:07", "aa:bb:cc:00:00:03"}, macs)
	assert.Equal(t, []Observation{MacNotLearnt, MacLearnt, NewMac, NewMac}, obs)

	assert.Equal(t, Summary{Learnt: 1, NotLearnt: 1, New: 2}, tbl.Summary())
	assert.Equal(t, 2, tbl.Summary().Map()["new"])
}

func TestTableColumnsAndRows(t *testing.T) {
	pre := build(t, preID, ep{"aa:bb:cc:00:00:01", "SW1", "Gi1/0/1", "1G", "10"})
	tbl := Compare(pre, snapshot.New(postID))

	cols := tbl.Columns()
	require.Len(t, cols, 17)
	assert.Equal(t, "Address", cols[0])
	assert.Equal(t, "Pre-Device", cols[3])
	assert.Equal(t, "Post-Hostname", cols[16])

	rows := tbl.TableRows()
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], len(tbl.TableHeader()))
	assert.Equal(t, "MAC Not Learnt", rows[0][2])

	cells := tbl.Records[0].Cells()
	assert.Len(t, cells, len(cols))
	assert.Equal(t, StyleBad, cells[1].Style)
}

func TestObservationStyle(t *testing.T) {
	assert.Equal(t, StyleGood, MacLearnt.Style())
	assert.Equal(t, StyleBad, MacNotLearnt.Style())
	assert.Equal(t, StyleInfo, NewMac.Style())
}

func TestSelect(t *testing.T) {
	p, q, err := Select(postID, preID)
	require.NoError(t, err)
	assert.Equal(t, preID, p)
	assert.Equal(t, postID, q)

	p, q, err = Select(preID, postID)
	require.NoError(t, err)
	assert.Equal(t, preID, p)
	assert.Equal(t, postID, q)

	_, _, err = Select(preID, preID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	st := store.NewFileStore(t.TempDir())
	require.NoError(t, st.Save(ctx, build(t, preID, ep{"aa:bb:cc:00:00:01", "SW1", "Gi1/0/1", "1G", "10"})))
	require.NoError(t, st.Save(ctx, build(t, postID, ep{"aa:bb:cc:00:00:01", "SW1", "Gi1/0/1", "10G", "10"})))

	tbl, err := Load(ctx, st, postID, preID)
	require.NoError(t, err)
	assert.Equal(t, preID, tbl.Pre)
	assert.Equal(t, postID, tbl.Post)
	assert.Equal(t, 1, tbl.Summary().Changed)
}

func TestLoad_MissingSnapshot(t *testing.T) {
	ctx := context.Background()
	st := store.NewFileStore(t.TempDir())
	require.NoError(t, st.Save(ctx, build(t, preID)))

	tbl, err := Load(ctx, st, preID, postID)
	require.Error(t, err)
	assert.Nil(t, tbl)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}
