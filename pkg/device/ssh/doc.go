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

// Package ssh implements device.Query by running CLI commands over SSH.
//
// Each command runs in its own exec channel on a shared client connection.
// When the target carries a Proxy, the connection to the device is tunneled
// through the jump host with a direct-tcpip channel. Output of the known
// commands is parsed with the text parsers in pkg/device.
package ssh
