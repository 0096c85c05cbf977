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

package device

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/macdiff/macdiff/pkg/errors"
)

// Kind selects the handler used to reach a device.
type Kind string

const (
	// KindSSH runs CLI commands over SSH.
	KindSSH Kind = "ssh"
	// KindSNMP reads the equivalent tables over SNMPv2c.
	KindSNMP Kind = "snmp"
)

// SupportedKinds lists the handler kinds in flag help order.
func SupportedKinds() []string {
	return []string{string(KindSSH), string(KindSNMP)}
}

// Commands understood by every Session.
const (
	CommandMACTable        = "show mac address-table"
	CommandARP             = "show ip arp"
	CommandInterfaceStatus = "show interfaces status"
)

// Row field names shared by all handlers.
const (
	FieldMACAddress = "mac_address"
	FieldVLAN       = "vlan_id"
	FieldPorts      = "ports"
	FieldType       = "type"
	FieldIPAddress  = "ip_address"
	FieldInterface  = "interface"
	FieldName       = "name"
	FieldStatus     = "status"
	FieldDuplex     = "duplex"
	FieldSpeed      = "speed"
)

// Credentials authenticate against a device. Community is only used by the
// SNMP handler.
type Credentials struct {
	Username  string
	Password  string
	Community string
}

// Proxy is an SSH jump host placed in front of the devices.
type Proxy struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Address returns host:port, defaulting to port 22.
func (p *Proxy) Address() string {
	port := p.Port
	if port == 0 {
		port = 22
	}
	return joinHostPort(p.Host, port)
}

// Target identifies one device and how to reach it.
type Target struct {
	Host        string
	Port        int
	Kind        Kind
	Credentials Credentials
	Proxy       *Proxy
}

// Address returns host:port using def when Port is unset.
func (t Target) Address(def int) string {
	port := t.Port
	if port == 0 {
		port = def
	}
	return joinHostPort(t.Host, port)
}

// SplitHost splits an inventory entry of the form host or host:port. A
// missing or invalid port is returned as 0.
func SplitHost(s string) (string, int) {
	host, p, err := net.SplitHostPort(s)
	if err != nil {
		return s, 0
	}
	port, err := strconv.Atoi(p)
	if err != nil || port <= 0 || port > 65535 {
		return host, 0
	}
	return host, port
}

func joinHostPort(host string, port int) string {
	if host == "" {
		return ""
	}
	// net.JoinHostPort brackets IPv6 literals
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Query opens sessions against devices.
type Query interface {
	Open(ctx context.Context, target Target) (Session, error)
}

// Session is an open connection to a single device. Sessions are not safe
// for concurrent use.
type Session interface {
	// Prompt returns the device's own name, as its CLI prompt shows it.
	Prompt() string
	// Run executes command and returns the raw output.
	Run(ctx context.Context, command string) (string, error)
	// Parse executes command and returns its rows keyed by the key field.
	Parse(ctx context.Context, command, key string) (*Table, error)
	// Close releases the connection.
	Close() error
}

// Mux dispatches Open to the Query registered for the target kind.
type Mux map[Kind]Query

// Open implements Query.
func (m Mux) Open(ctx context.Context, target Target) (Session, error) {
	q, ok := m[target.Kind]
	if !ok || q == nil {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported device kind %q", target.Kind),
			map[string]any{"device": target.Host})
	}
	return q.Open(ctx, target)
}
