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

// Package snapshotter builds snapshots from a list of devices.
//
// Builder collects every device with a bounded pool of workers, starting at
// most one device per SubmitInterval. Each worker writes only the slot of
// its own device, so after the pool drains the results are consolidated in
// device-list order no matter which device finished first:
//
//	b := &snapshotter.Builder{
//	    Collector: c,
//	    Store:     st,
//	    Notifier:  notify.Nop{},
//	}
//	snap, err := b.Build(ctx, []string{"10.0.0.1", "10.0.0.2"}, "core upgrade", snapshot.TypePre)
//
// A device that cannot be reached or queried is logged and left out; it does
// not cancel the other devices. The build fails only when the snapshot cannot
// be saved.
//
// Consolidation merges observations by MAC address. The first sighting
// creates the endpoint; each later sighting on another device appends one
// element to the switches, interfaces, speeds and duplexes lists.
package snapshotter
