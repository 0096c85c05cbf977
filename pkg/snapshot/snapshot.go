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

package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/macdiff/macdiff/pkg/errors"
)

// Endpoint is everything known about one MAC address across the devices of
// a snapshot.
type Endpoint struct {
	MAC        string   `json:"mac" yaml:"mac"`
	Hostname   string   `json:"hostname" yaml:"hostname"`
	IPAddress  string   `json:"ipAddress" yaml:"ipAddress"`
	Vendor     string   `json:"vendor" yaml:"vendor"`
	VLAN       string   `json:"vlan" yaml:"vlan"`
	Switches   []string `json:"switches" yaml:"switches"`
	Interfaces []string `json:"interfaces" yaml:"interfaces"`
	Speeds     []string `json:"speeds" yaml:"speeds"`
	Duplexes   []string `json:"duplexes" yaml:"duplexes"`
}

// Observe appends one device observation to the parallel lists.
func (e *Endpoint) Observe(sw, iface, speed, duplex string) {
	e.Switches = append(e.Switches, sw)
	e.Interfaces = append(e.Interfaces, iface)
	e.Speeds = append(e.Speeds, speed)
	e.Duplexes = append(e.Duplexes, duplex)
}

// Observations returns the number of devices the endpoint was seen on.
func (e *Endpoint) Observations() int {
	return len(e.Switches)
}

// Validate checks the parallel list invariant.
func (e *Endpoint) Validate() error {
	n := len(e.Switches)
	if len(e.Interfaces) != n || len(e.Speeds) != n || len(e.Duplexes) != n {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "endpoint observation lists differ in length",
			map[string]any{
				"mac":        e.MAC,
				"switches":   len(e.Switches),
				"interfaces": len(e.Interfaces),
				"speeds":     len(e.Speeds),
				"duplexes":   len(e.Duplexes),
			})
	}
	return nil
}

// Snapshot is an ordered set of endpoints keyed by MAC address.
// A Snapshot is not safe for concurrent mutation.
type Snapshot struct {
	ID

	endpoints []*Endpoint
	index     map[string]int
}

// New returns an empty snapshot.
func New(id ID) *Snapshot {
	return &Snapshot{
		ID:    id,
		index: make(map[string]int),
	}
}

// Add appends e. A second endpoint with the same MAC is rejected.
func (s *Snapshot) Add(e *Endpoint) error {
	if e == nil || e.MAC == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "endpoint has no mac address")
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[e.MAC]; ok {
		return errors.NewWithContext(errors.ErrCodeConflict, "duplicate endpoint",
			map[string]any{"mac": e.MAC})
	}
	s.index[e.MAC] = len(s.endpoints)
	s.endpoints = append(s.endpoints, e)
	return nil
}

// Endpoint returns the endpoint for mac.
func (s *Snapshot) Endpoint(mac string) (*Endpoint, bool) {
	i, ok := s.index[mac]
	if !ok {
		return nil, false
	}
	return s.endpoints[i], true
}

// Endpoints returns the endpoints in encounter order.
func (s *Snapshot) Endpoints() []*Endpoint {
	return s.endpoints
}

// Len returns the number of endpoints.
func (s *Snapshot) Len() int {
	return len(s.endpoints)
}

// artifact is the persisted body for YAML output.
type artifact struct {
	Endpoints map[string]*Endpoint `json:"endpoints" yaml:"endpoints"`
}

// MarshalJSON writes {"endpoints": {"1": ..., "2": ...}} with row ids in
// numeric order.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"endpoints":{`)
	for i, e := range s.endpoints {
		if i > 0 {
			buf.WriteByte(',')
		}
		body, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("failed to encode endpoint %s: %w", e.MAC, err)
		}
		fmt.Fprintf(&buf, `"%d":`, i+1)
		buf.Write(body)
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the artifact body. Rows are restored in row id order.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	rowIDs := make([]string, 0, len(a.Endpoints))
	for k := range a.Endpoints {
		rowIDs = append(rowIDs, k)
	}
	sort.Slice(rowIDs, func(i, j int) bool {
		return rowLess(rowIDs[i], rowIDs[j])
	})

	s.endpoints = nil
	s.index = make(map[string]int, len(rowIDs))
	for _, k := range rowIDs {
		e := a.Endpoints[k]
		if e == nil {
			continue
		}
		if err := e.Validate(); err != nil {
			return err
		}
		if err := s.Add(e); err != nil {
			return err
		}
	}
	return nil
}

// MarshalYAML renders the same shape as the JSON artifact.
func (s *Snapshot) MarshalYAML() (any, error) {
	a := artifact{Endpoints: make(map[string]*Endpoint, len(s.endpoints))}
	for i, e := range s.endpoints {
		a.Endpoints[strconv.Itoa(i+1)] = e
	}
	return a, nil
}

func rowLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}

// TableHeader implements serializer.Tabular.
func (s *Snapshot) TableHeader() []string {
	return []string{"#", "MAC", "VENDOR", "HOSTNAME", "IP", "VLAN", "SWITCH", "INTERFACE", "SPEED", "DUPLEX"}
}

// TableRows implements serializer.Tabular. Multi-device endpoints list their
// observations comma separated.
func (s *Snapshot) TableRows() [][]string {
	rows := make([][]string, 0, len(s.endpoints))
	for i, e := range s.endpoints {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.MAC,
			e.Vendor,
			e.Hostname,
			e.IPAddress,
			e.VLAN,
			strings.Join(e.Switches, ","),
			strings.Join(e.Interfaces, ","),
			strings.Join(e.Speeds, ","),
			strings.Join(e.Duplexes, ","),
		})
	}
	return rows
}
