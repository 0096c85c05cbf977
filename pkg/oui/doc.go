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

// Package oui resolves MAC addresses to hardware vendor names using the IEEE
// MA-L (OUI) registry.
//
// A Registry keeps the registry as a flat JSON cache file mapping the six
// upper-case hex digits of an OUI to the vendor name:
//
//	{"00000C": "Cisco Systems, Inc", "3C22FB": "Apple, Inc."}
//
// New refreshes the cache from https://standards-oui.ieee.org/oui/oui.txt
// when the file is missing or its modification time is older than the
// configured maximum age (90 days by default). Refresh failures are logged
// and the existing cache, possibly stale or empty, stays in use. Lookup
// never fails: unmapped prefixes resolve to "Unknown".
//
//	reg := oui.New(ctx, oui.WithCachePath(filepath.Join(dir, "oui.json")))
//	vendor := reg.Lookup("3c22.fb01.0203") // "Apple, Inc."
package oui
