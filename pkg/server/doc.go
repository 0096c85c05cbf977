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
// Package server provides the HTTP server behind macdiffd.
//
// The server owns the process-level concerns of the API: route
// registration, the middleware chain, health and readiness probes,
// Prometheus metrics and graceful shutdown. Domain handlers are supplied by
// the caller as a map of Go 1.22 route patterns to handler functions:
//
//	s := server.New(
//		server.WithName("macdiffd"),
//		server.WithVersion(version),
//		server.WithHandler(map[string]http.HandlerFunc{
//			"GET /v1/snapshots": api.ListSnapshots,
//		}),
//	)
//	err := s.Run(ctx)
//
// # Middleware
//
// Every supplied handler is wrapped, outermost first, with metrics, API
// version negotiation, request ID, panic recovery, rate limiting and request
// logging. The system endpoints /health, /ready and /metrics bypass the chain.
//
// # Errors
//
// Handlers report failures with WriteErrorFromErr. Structured errors from
// pkg/errors map to an HTTP status by code; the response body is an
// ErrorResponse carrying the request ID.
//
// # Configuration
//
// NewConfig reads PORT and SHUTDOWN_TIMEOUT_SECONDS from the environment.
// When run under systemd with Type=notify, readiness and stopping are
// reported over sd_notify.
package server
