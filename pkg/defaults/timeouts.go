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

package defaults

import "time"

// Collection tuning for snapshot builds.
const (
	// CollectorWorkers is the number of devices queried concurrently.
	CollectorWorkers = 8

	// CollectorSubmitInterval is the pause between two device submissions.
	// Pacing keeps a large device list from opening every session at once.
	CollectorSubmitInterval = 500 * time.Millisecond

	// CollectorTimeout bounds the whole collection of a single device.
	// Collectors should respect parent context deadlines when shorter.
	CollectorTimeout = 2 * time.Minute
)

// Device session timeouts.
const (
	// SSHConnectTimeout is the timeout for TCP connect and SSH handshake.
	SSHConnectTimeout = 15 * time.Second

	// SSHCommandTimeout is the timeout for a single CLI command.
	SSHCommandTimeout = 60 * time.Second

	// SNMPTimeout is the per-request SNMP timeout.
	SNMPTimeout = 5 * time.Second

	// SNMPRetries is the number of SNMP request retries.
	SNMPRetries = 2

	// DNSLookupTimeout bounds a single reverse lookup.
	DNSLookupTimeout = 3 * time.Second
)

// Vendor registry settings.
const (
	// OUIMaxAge is the age after which the OUI cache file is refreshed.
	OUIMaxAge = 90 * 24 * time.Hour

	// OUIDownloadTimeout bounds the registry download, which is several MB.
	OUIDownloadTimeout = 2 * time.Minute

	// OUIRetryInterval spaces refresh attempts after a failed download.
	OUIRetryInterval = time.Hour
)

// Handler timeouts for HTTP request processing.
const (
	// SnapshotBuildTimeout bounds an asynchronous snapshot build started
	// through the API.
	SnapshotBuildTimeout = 30 * time.Minute

	// CompareHandlerTimeout is the timeout for comparison requests.
	CompareHandlerTimeout = 60 * time.Second

	// ReadinessCheckTimeout bounds each dependency check behind /ready.
	ReadinessCheckTimeout = 5 * time.Second
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 90 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// HTTP client timeouts for outbound requests.
const (
	// HTTPClientTimeout is the default total timeout for HTTP requests.
	HTTPClientTimeout = 30 * time.Second

	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second

	// HTTPExpectContinueTimeout is the timeout for Expect: 100-continue.
	HTTPExpectContinueTimeout = 1 * time.Second
)

// Kubernetes timeouts for ConfigMap snapshot storage.
const (
	// ConfigMapWriteTimeout is the timeout for writing to ConfigMaps.
	ConfigMapWriteTimeout = 30 * time.Second

	// ConfigMapReadTimeout is the timeout for reading and listing ConfigMaps.
	ConfigMapReadTimeout = 15 * time.Second
)

// CLI timeouts for command-line operations.
const (
	// CLISnapshotTimeout is the default timeout for snapshot builds.
	CLISnapshotTimeout = 30 * time.Minute

	// CLIArchiveTimeout is the default timeout for pushing snapshot archives.
	CLIArchiveTimeout = 5 * time.Minute
)

// AMQP publishing.
const (
	// AMQPDialTimeout bounds the broker connection.
	AMQPDialTimeout = 10 * time.Second
)
