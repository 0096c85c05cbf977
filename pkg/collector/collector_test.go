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

package collector

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macdiff/macdiff/pkg/device"
	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/snapshot"
)

const macTableOutput = `          Mac Address Table
-------------------------------------------

Vlan    Mac Address       Type        Ports
----    -----------       --------    -----
 All    0100.0ccc.cccc    STATIC      CPU
  10    aabb.cc00.0001    DYNAMIC     Gi1/0/1
  10    aabb.cc00.0002    DYNAMIC     Po1
  20    aabb.cc00.0003    DYNAMIC     Te1/1/1
  20    aabb.cc00.0004    DYNAMIC     Vl20
Total Mac Addresses for this criterion: 5
`

const arpOutput = `Protocol  Address          Age (min)  Hardware Addr   Type   Interface
Internet  10.0.10.11              5   aabb.cc00.0001  ARPA   Vlan10
Internet  10.0.20.13              -   aabb.cc00.0003  ARPA   Vlan20
Internet  10.0.20.99              0   Incomplete      ARPA
`

const statusOutput = `Port      Name               Status       Vlan       Duplex  Speed Type
Gi1/0/1   desk 12            connected    10         a-full a-1000 10/100/1000BaseTX
Gi1/0/2                      notconnect   1            auto   auto 10/100/1000BaseTX
Te1/1/1   uplink to core     connected    trunk        full    10G SFP-10GBase-SR
`

type fakeSession struct {
	prompt  string
	outputs map[string]string
	fail    string
	closed  bool
}

func (s *fakeSession) Prompt() string { return s.prompt }

func (s *fakeSession) Run(_ context.Context, command string) (string, error) {
	if command == s.fail {
		return "", errors.New(errors.ErrCodeTimeout, "command timed out")
	}
	return s.outputs[command], nil
}

func (s *fakeSession) Parse(ctx context.Context, command, key string) (*device.Table, error) {
	out, err := s.Run(ctx, command)
	if err != nil {
		return nil, err
	}
	rows, err := device.ParseOutput(command, out)
	if err != nil {
		return nil, err
	}
	return device.NewTable(key, rows), nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeQuery struct {
	sessions map[string]*fakeSession
	targets  []device.Target
}

func (q *fakeQuery) Open(_ context.Context, t device.Target) (device.Session, error) {
	q.targets = append(q.targets, t)
	s, ok := q.sessions[t.Host]
	if !ok {
		return nil, fmt.Errorf("dial tcp %s:22: connect: connection refused", t.Host)
	}
	return s, nil
}

type vendors map[string]string

func (v vendors) Lookup(mac string) string {
	if name, ok := v[strings.ToUpper(strings.ReplaceAll(mac, ":", ""))[:6]]; ok {
		return name
	}
	return snapshot.Unknown
}

type hosts map[string]string

func (h hosts) Hostname(_ context.Context, ip string) string {
	if name, ok := h[ip]; ok {
		return name
	}
	return ip
}

func newSwitch() *fakeSession {
	return &fakeSession{
		prompt: "access-sw1",
		outputs: map[string]string{
			device.CommandMACTable:        macTableOutput,
			device.CommandARP:             arpOutput,
			device.CommandInterfaceStatus: statusOutput,
		},
	}
}

func TestCollect(t *testing.T) {
	sw := newSwitch()
	q := &fakeQuery{sessions: map[string]*fakeSession{"10.0.0.1": sw}}
	c := &Collector{
		Query:       q,
		Vendors:     vendors{"AABBCC": "Cisco Systems, Inc"},
		Resolver:    hosts{"10.0.10.11": "desk12.example.net"},
		Kind:        device.KindSSH,
		Credentials: device.Credentials{Username: "ops", Password: "secret"},
	}

	res, err := c.Collect(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, sw.closed)

	require.Len(t, q.targets, 1)
	assert.Equal(t, "ops", q.targets[0].Credentials.Username)
	assert.Equal(t, device.KindSSH, q.targets[0].Kind)

	assert.Equal(t, "10.0.0.1", res.Host)
	assert.Equal(t, "access-sw1", res.Switch)
	assert.Equal(t, []Observation{
		{
			MAC:       "aa:bb:cc:00:00:01",
			Hostname:  "desk12.example.net",
			IPAddress: "10.0.10.11",
			Vendor:    "Cisco Systems, Inc",
			VLAN:      "10",
			Interface: "Gi1/0/1",
			Speed:     "a-1000",
			Duplex:    "a-full",
		},
		{
			MAC:       "aa:bb:cc:00:00:03",
			Hostname:  "10.0.20.13",
			IPAddress: "10.0.20.13",
			Vendor:    "Cisco Systems, Inc",
			VLAN:      "20",
			Interface: "Te1/1/1",
			Speed:     "10G",
			Duplex:    "full",
		},
	}, res.Observations)
}

func TestCollect_NoARPEntry(t *testing.T) {
	sw := newSwitch()
	sw.outputs[device.CommandARP] = ""
	c := &Collector{Query: &fakeQuery{sessions: map[string]*fakeSession{"sw": sw}}}

	res, err := c.Collect(context.Background(), "sw")
	require.NoError(t, err)
	require.NotEmpty(t, res.Observations)
	for _, o := range res.Observations {
		assert.Equal(t, snapshot.Unknown, o.IPAddress)
		assert.Equal(t, snapshot.Unknown, o.Hostname)
		assert.Equal(t, snapshot.Unknown, o.Vendor)
	}
}

func TestCollect_NoStatusRow(t *testing.T) {
	sw := newSwitch()
	sw.outputs[device.CommandInterfaceStatus] = ""
	c := &Collector{Query: &fakeQuery{sessions: map[string]*fakeSession{"sw": sw}}}

	res, err := c.Collect(context.Background(), "sw")
	require.NoError(t, err)
	for _, o := range res.Observations {
		assert.Empty(t, o.Speed)
		assert.Empty(t, o.Duplex)
	}
}

func TestCollect_LongInterfaceNamesMatch(t *testing.T) {
	sw := newSwitch()
	sw.outputs[device.CommandMACTable] = "  10    aabb.cc00.0001    DYNAMIC     GigabitEthernet1/0/1\n"
	c := &Collector{Query: &fakeQuery{sessions: map[string]*fakeSession{"sw": sw}}}

	res, err := c.Collect(context.Background(), "sw")
	require.NoError(t, err)
	require.Len(t, res.Observations, 1)
	assert.Equal(t, "GigabitEthernet1/0/1", res.Observations[0].Interface)
	assert.Equal(t, "a-1000", res.Observations[0].Speed)
}

func TestCollect_ConnectionFailure(t *testing.T) {
	c := &Collector{Query: &fakeQuery{}}

	_, err := c.Collect(context.Background(), "10.9.9.9")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnavailable))
}

func TestCollect_CommandFailure(t *testing.T) {
	sw := newSwitch()
	sw.fail = device.CommandARP
	c := &Collector{Query: &fakeQuery{sessions: map[string]*fakeSession{"sw": sw}}}

	_, err := c.Collect(context.Background(), "sw")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
	assert.True(t, sw.closed)
}

type resettingHosts struct {
	hosts
	resets int
}

func (h *resettingHosts) Reset() { h.resets++ }

type refreshingVendors struct {
	vendors
	checks int
}

func (v *refreshingVendors) RefreshIfStale(context.Context) bool {
	v.checks++
	return false
}

func TestPrepare(t *testing.T) {
	h := &resettingHosts{hosts: hosts{}}
	v := &refreshingVendors{vendors: vendors{}}
	c := &Collector{Resolver: h, Vendors: v}

	c.Prepare(context.Background())
	c.Prepare(context.Background())

	assert.Equal(t, 2, h.resets)
	assert.Equal(t, 2, v.checks)
}

func TestPrepare_PlainLookups(t *testing.T) {
	c := &Collector{Resolver: hosts{}, Vendors: vendors{}}
	assert.NotPanics(t, func() { c.Prepare(context.Background()) })

	c = &Collector{}
	assert.NotPanics(t, func() { c.Prepare(context.Background()) })
}
