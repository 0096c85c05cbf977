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
// Package api implements the macdiff HTTP API on top of pkg/server.
//
// # Endpoints
//
// Application endpoints (with rate limiting):
//   - GET /v1/snapshots - list stored snapshots, optionally ?type=Pre|Post
//   - POST /v1/snapshots - start a build job from {"name","type","devices"}
//   - GET /v1/snapshots/{type}/{name}/{timestamp} - one snapshot
//   - DELETE /v1/snapshots/{type}/{name}/{timestamp} - remove a snapshot
//   - GET /v1/jobs, GET /v1/jobs/{id} - build job status and report
//   - POST /v1/comparisons - compare two snapshots, JSON table or XLSX
//   - GET /v1/events - recent snapshot and comparison events
//
// System endpoints (/health, /ready, /metrics) are served by pkg/server.
//
// Builds run in the background with a detached context bounded by
// defaults.SnapshotBuildTimeout; at most one build per snapshot name and
// type runs at a time. Request bodies may be JSON or YAML.
//
// Events are delivered through a notify.Channel drained by the API, so the
// history served at /v1/events never blocks a build. An external notifier
// such as notify.AMQP receives the same events.
package api
