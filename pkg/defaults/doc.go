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

// Package defaults provides centralized configuration constants for macdiff.
//
// This package defines timeout values, pool sizes, and other configuration
// defaults used across the codebase. Centralizing these values ensures consistency
// and makes tuning easier.
//
// # Categories
//
//   - Collection: worker count and submission pacing for snapshot builds
//   - Device sessions: SSH, SNMP and reverse DNS timeouts
//   - Vendor registry: OUI cache age and download timeout
//   - Server and handler timeouts: HTTP API configuration
//   - HTTP client timeouts: outbound requests such as the OUI download
//   - Kubernetes timeouts: ConfigMap snapshot storage
//
// # Usage
//
//	import "github.com/macdiff/macdiff/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.CollectorTimeout)
//	defer cancel()
package defaults
