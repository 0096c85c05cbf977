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

// Package serializer provides encoding and decoding of macdiff documents in
// multiple formats.
//
// # Supported Formats
//
// JSON is the snapshot artifact format and the API response format.
// YAML is used for inventory configuration and human-friendly output.
// Table is a write-only terminal rendering: values implementing Tabular are
// printed as aligned columns, everything else is flattened to FIELD/VALUE
// pairs.
//
// # Usage - Encoding
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatYAML, path)
//	defer w.Close()
//	if err := w.Serialize(ctx, table); err != nil {
//	    return err
//	}
//
// For HTTP responses:
//
//	serializer.RespondJSON(w, http.StatusOK, data)
//
// # Usage - Decoding
//
//	cfg, err := serializer.FromFile[config.Inventory]("inventory.yaml")
//
// FromFile accepts local paths and http(s) URLs. Remote content is fetched with
// HttpReader, which is also used to download the IEEE OUI registry.
//
// # Atomic Writes
//
// WriteFile writes through a temporary file in the destination directory and
// renames it into place, so readers never observe a partially written
// snapshot or cache file.
package serializer
