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
// Package config loads the macdiff inventory file and the secrets that
// accompany it.
//
// The inventory is a JSON or YAML document, local or fetched over http(s):
//
//	outputDir: /var/lib/macdiff
//	kind: ssh
//	proxy: 10.0.0.254
//	dnsServer: 10.0.0.53
//	workers: 8
//	submitInterval: 500ms
//	devices:
//	  - 10.0.1.1
//	  - 10.0.1.2:2222
//
// Credentials are never read from the file. SecretsFromEnv reads
// NETWORK_USERNAME, NETWORK_PASSWORD, SNMP_COMMUNITY and the JUMPHOST_*
// variables.
package config
