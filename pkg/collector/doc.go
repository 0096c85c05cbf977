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

// Package collector gathers the endpoints visible on one switch.
//
// A Collector opens a device.Session, reads three keyed tables and
// correlates them:
//
//	show mac address-table   keyed by MAC, one row per learnt address
//	show ip arp              keyed by MAC, gives the IP address
//	show interfaces status   keyed by interface, gives speed and duplex
//
// Only MAC rows learnt on physical ports (see ifname.IsPhysical) become
// observations. The IP address comes from ARP, the hostname from a reverse
// lookup of that address and the vendor from the OUI registry. Speed and
// duplex come from the interface-status row whose normalized name equals the
// normalized port.
//
// Observations keep MAC-table order so that consolidation across devices is
// deterministic.
//
// DefaultFactory wires the production dependencies:
//
//	f := collector.NewDefaultFactory(
//	    collector.WithKind(device.KindSSH),
//	    collector.WithCredentials(device.Credentials{Username: u, Password: p}),
//	    collector.WithVendors(registry),
//	)
//	c, err := f.CreateCollector()
//	res, err := c.Collect(ctx, "10.0.0.1")
package collector
