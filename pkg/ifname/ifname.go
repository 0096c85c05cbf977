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

// Package ifname canonicalizes switch interface names so that the same port
// reported by different commands compares equal.
//
// Long and short vendor spellings collapse onto a short label followed by the
// port identifier:
//
//	GigabitEthernet1/0/1 -> Gi1/0/1
//	te1/1/4              -> Te1/1/4
//	Ethernet1/49         -> Eth1/49
//	TwentyFiveGigE1/0/1  -> Twe1/0/1
//
// Names without a recognized prefix or without a numeric identifier are
// returned unchanged.
package ifname

import (
	"regexp"
	"strings"
)

// labels are tried in order; the first case-insensitive prefix match wins.
var labels = []string{"Te", "Gi", "Fa", "Eth", "Lo", "Vl", "Two", "Twe"}

var (
	identifier = regexp.MustCompile(`(\d+\S*)`)
	physical   = regexp.MustCompile(`^(Te|Gi|Fa|Eth|Two|Twe)`)
)

// Normalize returns the canonical short form of raw. Applying it twice gives
// the same result as applying it once.
func Normalize(raw string) string {
	name := strings.TrimSpace(raw)
	lower := strings.ToLower(name)

	for _, label := range labels {
		if !strings.HasPrefix(lower, strings.ToLower(label)) {
			continue
		}
		id := identifier.FindString(name)
		if id == "" {
			return raw
		}
		return label + id
	}
	return raw
}

// IsPhysical reports whether raw names a front-panel Ethernet port. Logical
// interfaces (VLAN SVIs, port-channels, CPU, loopbacks) are excluded.
func IsPhysical(raw string) bool {
	return physical.MatchString(strings.TrimSpace(raw))
}
