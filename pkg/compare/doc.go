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

// Package compare diffs a Pre snapshot against a Post snapshot.
//
// Every MAC address present in either snapshot yields one Record:
//
//	MAC Learnt      in both; Post speed, duplex, vlan, IP and hostname are
//	                flagged Bad when they differ from Pre
//	MAC Not Learnt  only in Pre; Post cells are "???" placeholders
//	New MAC         only in Post; Pre cells are "???" placeholders
//
// Records follow Pre encounter order, then Post-only MACs in Post encounter
// order. Switch and interface lists are shown as recorded and never diffed,
// since a move is already visible through the other attributes.
package compare
