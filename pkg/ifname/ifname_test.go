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

package ifname

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GigabitEthernet1/0/1", "Gi1/0/1"},
		{"gi1/0/1", "Gi1/0/1"},
		{"Gi1/0/1", "Gi1/0/1"},
		{"TenGigabitEthernet1/1/4", "Te1/1/4"},
		{"FastEthernet0/12", "Fa0/12"},
		{"Ethernet1/49", "Eth1/49"},
		{"eth1/49", "Eth1/49"},
		{"Loopback0", "Lo0"},
		{"Vlan10", "Vl10"},
		{"Port-channel1", "Port-channel1"},
		{"CPU", "CPU"},
		{"GigabitEthernet", "GigabitEthernet"},
		{"", ""},
		{"Gi1/0/1.100", "Gi1/0/1.100"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"GigabitEthernet1/0/1",
		"TenGigabitEthernet1/1/4",
		"FastEthernet0/12",
		"Ethernet1/49",
		"Loopback0",
		"Vlan10",
		"TwoGigabitEthernet1/0/3",
		"TwentyFiveGigE1/0/1",
		"Port-channel1",
		"mgmt0",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestIsPhysical(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Gi1/0/1", true},
		{"GigabitEthernet1/0/1", true},
		{"Te1/1/1", true},
		{"Fa0/1", true},
		{"Eth1/1", true},
		{"Twe1/0/1", true},
		{"Two1/0/1", true},
		{"Po1", false},
		{"Vlan10", false},
		{"CPU", false},
		{"Router", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsPhysical(tt.in); got != tt.want {
				t.Errorf("IsPhysical(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
