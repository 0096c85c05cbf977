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
package config

import (
	"net"
	"os"
	"strconv"

	"github.com/macdiff/macdiff/pkg/device"
)

// Environment variables holding device and jump host secrets.
const (
	EnvNetworkUsername  = "NETWORK_USERNAME"
	EnvNetworkPassword  = "NETWORK_PASSWORD"
	EnvJumphostIP       = "JUMPHOST_IP"
	EnvJumphostUsername = "JUMPHOST_USERNAME"
	EnvJumphostPassword = "JUMPHOST_PASSWORD"
	EnvSNMPCommunity    = "SNMP_COMMUNITY"
)

// Secrets are read from the environment only.
type Secrets struct {
	Username     string
	Password     string
	Community    string
	JumpHost     string
	JumpUsername string
	JumpPassword string
}

// SecretsFromEnv reads Secrets from the process environment.
func SecretsFromEnv() Secrets {
	return Secrets{
		Username:     os.Getenv(EnvNetworkUsername),
		Password:     os.Getenv(EnvNetworkPassword),
		Community:    os.Getenv(EnvSNMPCommunity),
		JumpHost:     os.Getenv(EnvJumphostIP),
		JumpUsername: os.Getenv(EnvJumphostUsername),
		JumpPassword: os.Getenv(EnvJumphostPassword),
	}
}

// Credentials returns the device credentials.
func (s Secrets) Credentials() device.Credentials {
	return device.Credentials{
		Username:  s.Username,
		Password:  s.Password,
		Community: s.Community,
	}
}

// Proxy returns the jump host, or nil when none is configured. host
// overrides JUMPHOST_IP when set. Jump host credentials default to the
// device credentials.
func (s Secrets) Proxy(host string) *device.Proxy {
	if host == "" {
		host = s.JumpHost
	}
	if host == "" {
		return nil
	}

	p := &device.Proxy{
		Host:     host,
		Username: s.JumpUsername,
		Password: s.JumpPassword,
	}
	if h, port, err := net.SplitHostPort(host); err == nil {
		if n, err := strconv.Atoi(port); err == nil {
			p.Host, p.Port = h, n
		}
	}
	if p.Username == "" {
		p.Username = s.Username
		p.Password = s.Password
	}
	return p
}
