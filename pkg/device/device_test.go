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

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macdiff/macdiff/pkg/errors"
)

const iosMACTable = `          Mac Address Table
-------------------------------------------

Vlan    Mac Address       Type        Ports
----    -----------       --------    -----
 All    0100.0ccc.cccc    STATIC      CPU
  10    aabb.cc00.0001    DYNAMIC     Gi1/0/1
  20    aabb.cc00.0002    DYNAMIC     Te1/1/1
  10    aabb.cc00.0003    DYNAMIC     Po1
Total Mac Addresses for this criterion: 4
`

const nxosMACTable = `Legend:
        * - primary entry, G - Gateway MAC, (R) - Routed MAC, O - Overlay MAC
   VLAN     MAC Address      Type      age     Secure NTFY Ports
---------+-----------------+--------+---------+------+----+------------------
*   30     00a0.c9aa.bb01   dynamic  0         F      F    Eth1/7
G    -     0000.0c07.ac0a   static   -         F      F    sup-eth1(R)
`

const iosARP = `Protocol  Address          Age (min)  Hardware Addr   Type   Interface
Internet  10.0.10.5              12   aabb.cc00.0001  ARPA   Vlan10
Internet  10.0.10.1               -   0011.2233.4455  ARPA   Vlan10
Internet  10.0.10.9               0   Incomplete      ARPA
`

const nxosARP = `IP ARP Table for context default
Total number of entries: 1
Address         Age       MAC Address     Interface       Flags
10.0.30.7       00:01:23  00a0.c9aa.bb01  Vlan30
`

const iosInterfaceStatus = `
Port      Name               Status       Vlan       Duplex  Speed Type
Gi1/0/1   uplink to core     connected    10         a-full a-1000 10/100/1000BaseTX
Gi1/0/2                      notconnect   1            auto   auto 10/100/1000BaseTX
Te1/1/1   connected printer  connected    trunk        full    10G SFP-10GBase-SR
Gi1/1/1                      notconnect   1            auto   auto Not Present
`

func TestCanonicalMAC(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"aabb.cc00.0001", "aa:bb:cc:00:00:01", true},
		{"AA:BB:CC:00:00:01", "aa:bb:cc:00:00:01", true},
		{"aa-bb-cc-00-00-01", "aa:bb:cc:00:00:01", true},
		{"00:01:23", "", false},
		{"Incomplete", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := CanonicalMAC(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMACTable(t *testing.T) {
	t.Run("ios", func(t *testing.T) {
		rows := ParseMACTable(iosMACTable)
		require.Len(t, rows, 4)

		assert.Equal(t, Row{
			FieldMACAddress: "aa:bb:cc:00:00:01",
			FieldVLAN:       "10",
			FieldType:       "dynamic",
			FieldPorts:      "Gi1/0/1",
		}, rows[1])
		assert.Equal(t, "All", rows[0][FieldVLAN])
		assert.Equal(t, "CPU", rows[0][FieldPorts])
		assert.Equal(t, "Po1", rows[3][FieldPorts])
	})

	t.Run("nxos", func(t *testing.T) {
		rows := ParseMACTable(nxosMACTable)
		require.Len(t, rows, 2)
		assert.Equal(t, "00:a0:c9:aa:bb:01", rows[0][FieldMACAddress])
		assert.Equal(t, "30", rows[0][FieldVLAN])
		assert.Equal(t, "Eth1/7", rows[0][FieldPorts])
	})
}

func TestParseARP(t *testing.T) {
	t.Run("ios", func(t *testing.T) {
		rows := ParseARP(iosARP)
		require.Len(t, rows, 2, "incomplete entries are skipped")
		assert.Equal(t, Row{
			FieldIPAddress:  "10.0.10.5",
			FieldMACAddress: "aa:bb:cc:00:00:01",
			FieldInterface:  "Vlan10",
		}, rows[0])
	})

	t.Run("nxos", func(t *testing.T) {
		rows := ParseARP(nxosARP)
		require.Len(t, rows, 1)
		assert.Equal(t, "10.0.30.7", rows[0][FieldIPAddress])
		assert.Equal(t, "00:a0:c9:aa:bb:01", rows[0][FieldMACAddress])
		assert.Equal(t, "Vlan30", rows[0][FieldInterface])
	})
}

func TestParseInterfaceStatus(t *testing.T) {
	rows := ParseInterfaceStatus(iosInterfaceStatus)
	require.Len(t, rows, 4)

	assert.Equal(t, Row{
		FieldInterface: "Gi1/0/1",
		FieldName:      "uplink to core",
		FieldStatus:    "connected",
		FieldVLAN:      "10",
		FieldDuplex:    "a-full",
		FieldSpeed:     "a-1000",
		FieldType:      "10/100/1000BaseTX",
	}, rows[0])

	assert.Equal(t, "", rows[1][FieldName])
	assert.Equal(t, "auto", rows[1][FieldDuplex])

	assert.Equal(t, "connected printer", rows[2][FieldName], "status words inside descriptions are not columns")
	assert.Equal(t, "10G", rows[2][FieldSpeed])

	assert.Equal(t, "Not Present", rows[3][FieldType])
}

func TestParseOutput(t *testing.T) {
	rows, err := ParseOutput(CommandARP, iosARP)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = ParseOutput("show version", "")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestTable(t *testing.T) {
	table := NewTable(FieldMACAddress, []Row{
		{FieldMACAddress: "b", FieldPorts: "Gi1/0/2"},
		{FieldMACAddress: "a", FieldPorts: "Gi1/0/1"},
		{FieldPorts: "Gi1/0/9"},
		{FieldMACAddress: "b", FieldPorts: "Gi1/0/3"},
	})

	assert.Equal(t, FieldMACAddress, table.Key())
	assert.Equal(t, []string{"b", "a"}, table.Keys(), "replaced keys keep their first position")
	assert.Equal(t, 2, table.Len())

	row, ok := table.Get("b")
	require.True(t, ok)
	assert.Equal(t, "Gi1/0/3", row[FieldPorts], "later rows win")

	var nilTable *Table
	assert.Equal(t, 0, nilTable.Len())
	_, ok = nilTable.Get("a")
	assert.False(t, ok)
}

type stubQuery struct {
	opened []Target
}

func (s *stubQuery) Open(_ context.Context, t Target) (Session, error) {
	s.opened = append(s.opened, t)
	return nil, nil
}

func TestMux(t *testing.T) {
	sshQ := &stubQuery{}
	mux := Mux{KindSSH: sshQ}

	_, err := mux.Open(context.Background(), Target{Host: "10.0.0.1", Kind: KindSSH})
	require.NoError(t, err)
	assert.Len(t, sshQ.opened, 1)

	_, err = mux.Open(context.Background(), Target{Host: "10.0.0.1", Kind: KindSNMP})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest))
}

func TestTargetAddress(t *testing.T) {
	assert.Equal(t, "10.0.0.1:22", Target{Host: "10.0.0.1"}.Address(22))
	assert.Equal(t, "10.0.0.1:2222", Target{Host: "10.0.0.1", Port: 2222}.Address(22))
	assert.Equal(t, "[fe80::1]:161", Target{Host: "fe80::1"}.Address(161))
	assert.Equal(t, "jump:22", (&Proxy{Host: "jump"}).Address())
}

func TestSplitHost(t *testing.T) {
	tests := []struct {
		in   string
		host string
		port int
	}{
		{"10.0.0.1", "10.0.0.1", 0},
		{"10.0.0.1:2222", "10.0.0.1", 2222},
		{"[fe80::1]:161", "fe80::1", 161},
		{"core-sw1", "core-sw1", 0},
		{"core-sw1:ssh", "core-sw1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			host, port := SplitHost(tt.in)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.port, port)
		})
	}
}
