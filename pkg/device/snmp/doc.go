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

// Package snmp implements device.Query over SNMPv2c for switches where CLI
// access is not available.
//
// The known commands are answered from MIB walks:
//
//	show mac address-table  Q-BRIDGE dot1qTpFdbPort, falling back to BRIDGE dot1dTpFdbPort
//	show ip arp             IP-MIB ipNetToMediaPhysAddress
//	show interfaces status  IF-MIB ifName, ifOperStatus, ifHighSpeed and dot3StatsDuplexStatus
//
// Bridge ports are translated to interface names through dot1dBasePortIfIndex
// and ifName, so rows look the same as parsed CLI output. Raw command output
// is not available and jump hosts are not supported.
package snmp
