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

// Package oci archives the snapshot directory as an OCI artifact.
//
// Package writes a single-layer artifact of type ArtifactType into a local
// OCI image layout. PushFromStore copies a tagged manifest from that layout
// to a registry using Docker credentials when present. Archive combines
// the two for the `macdiff archive push` command:
//
//	ref, err := oci.ParseTarget("oci://registry.example.com/netops/macdiff:change-42")
//	if err != nil {
//	    return err
//	}
//	res, err := oci.Archive(ctx, oci.ArchiveConfig{
//	    OutputDir: "/var/lib/macdiff",
//	    SubDir:    store.SnapshotDir,
//	    Target:    ref,
//	})
//
// Targets without the oci:// scheme are local directories; the layout is
// written there and nothing is pushed.
package oci
