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

// Package device defines how macdiff talks to network switches.
//
// A Query opens a Session against a Target. Sessions run named commands and
// return either raw text or keyed tables of string fields. Two handler kinds
// implement Query: pkg/device/ssh runs CLI commands over SSH (optionally
// through a jump host) and parses their text output, pkg/device/snmp answers
// the same commands from BRIDGE, Q-BRIDGE, IP and IF MIB walks.
//
// Every handler returns rows with the same field names, so consumers never
// care which transport produced a table:
//
//	CommandMACTable        mac_address, vlan_id, ports, type
//	CommandARP             ip_address, mac_address, interface
//	CommandInterfaceStatus interface, name, status, vlan_id, duplex, speed, type
//
// Mux dispatches Open to the handler registered for Target.Kind.
package device
