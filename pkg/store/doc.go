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

// Package store persists snapshots.
//
// Two backends implement Store:
//
//   - FileStore keeps one JSON artifact per snapshot in <output-dir>/Snapshots,
//     named [Type]_[Name]_[YYYY-MM-DD_HH.MM].json.
//   - ConfigMapStore keeps one ConfigMap per snapshot in a Kubernetes
//     namespace, labelled so List can find them again.
//
// Open selects a backend from a location string:
//
//	st, err := store.Open(ctx, "cm://network-ops", "")
//	st, err := store.Open(ctx, "", "/var/lib/macdiff")
package store
