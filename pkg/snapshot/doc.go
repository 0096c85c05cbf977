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

// Package snapshot defines the endpoint inventory captured from a set of
// switches and its persisted form.
//
// A Snapshot is identified by an ID made of its type (Pre or Post), a free
// form name and a minute-granularity timestamp. The ID is encoded in the
// artifact file name:
//
//	[Pre]_[core-upgrade]_[2025-03-14_21.30].json
//
// The artifact body holds the endpoints keyed by 1-based row id in
// encounter order:
//
//	{"endpoints": {"1": {"mac": "aa:bb:cc:00:00:01", ...}, "2": {...}}}
//
// Endpoint observations are parallel lists: index i of Switches,
// Interfaces, Speeds and Duplexes describes the i-th device on which the MAC
// address was seen.
package snapshot
