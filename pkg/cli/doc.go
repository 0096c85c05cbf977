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

// Package cli implements the macdiff command-line interface.
//
// # Commands
//
//	macdiff snapshot create --type pre --name NAME --device HOST...
//	macdiff snapshot list [--type pre|post]
//	macdiff snapshot view TYPE/NAME/TIMESTAMP [--xlsx FILE]
//	macdiff snapshot delete TYPE/NAME/TIMESTAMP...
//	macdiff compare SNAPSHOT SNAPSHOT [--no-report] [--format json|yaml|table]
//	macdiff oui refresh [--force]
//	macdiff oui lookup MAC...
//	macdiff archive push oci://REGISTRY/REPOSITORY[:TAG]
//	macdiff serve [--port 8080]
//
// # Global Flags
//
//	--config, -c   inventory file (YAML or JSON)
//	--output-dir   directory receiving snapshots and reports
//	--store        snapshot store: directory, file://dir or cm://namespace
//	--env-file     KEY=value file loaded before flags are parsed (default: .env)
//	--log-level    debug, info, warn, error
//	--kubeconfig   kubeconfig for the cm:// store
//
// Flags override the inventory. Secrets never come from the inventory; they
// are read from NETWORK_USERNAME, NETWORK_PASSWORD, SNMP_COMMUNITY,
// JUMPHOST_IP, JUMPHOST_USERNAME and JUMPHOST_PASSWORD, typically through
// the env file.
//
// The macdiffd binary runs the serve command as its root command.
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/macdiff/macdiff/pkg/cli.version=1.0.0'"
package cli
