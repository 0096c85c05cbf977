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

package collector

import (
	"time"

	"github.com/macdiff/macdiff/pkg/defaults"
	"github.com/macdiff/macdiff/pkg/device"
	"github.com/macdiff/macdiff/pkg/device/snmp"
	"github.com/macdiff/macdiff/pkg/device/ssh"
	"github.com/macdiff/macdiff/pkg/resolver"
)

// Option configures a DefaultFactory.
type Option func(*DefaultFactory)

// WithKind selects the device handler kind.
func WithKind(k device.Kind) Option {
	return func(f *DefaultFactory) {
		f.Kind = k
	}
}

// WithCredentials sets the device credentials.
func WithCredentials(c device.Credentials) Option {
	return func(f *DefaultFactory) {
		f.Credentials = c
	}
}

// WithProxy routes SSH sessions through a jump host.
func WithProxy(p *device.Proxy) Option {
	return func(f *DefaultFactory) {
		f.Proxy = p
	}
}

// WithVendors sets the MAC vendor registry.
func WithVendors(v VendorResolver) Option {
	return func(f *DefaultFactory) {
		f.Vendors = v
	}
}

// WithDNSServer sends reverse lookups to addr instead of the system resolver.
func WithDNSServer(addr string) Option {
	return func(f *DefaultFactory) {
		f.DNSServer = addr
	}
}

// WithKnownHosts verifies SSH host keys against the given files.
func WithKnownHosts(files ...string) Option {
	return func(f *DefaultFactory) {
		f.KnownHosts = files
	}
}

// WithCommandTimeout bounds each device command.
func WithCommandTimeout(d time.Duration) Option {
	return func(f *DefaultFactory) {
		f.CommandTimeout = d
	}
}

// DefaultFactory creates collectors with production dependencies.
type DefaultFactory struct {
	Kind           device.Kind
	Credentials    device.Credentials
	Proxy          *device.Proxy
	Vendors        VendorResolver
	DNSServer      string
	KnownHosts     []string
	CommandTimeout time.Duration
}

// NewDefaultFactory creates a factory for SSH devices.
func NewDefaultFactory(opts ...Option) *DefaultFactory {
	f := &DefaultFactory{
		Kind:           device.KindSSH,
		CommandTimeout: defaults.SSHCommandTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateQuery returns a device.Mux holding a handler for every kind.
func (f *DefaultFactory) CreateQuery() (device.Mux, error) {
	sshOpts := []ssh.Option{ssh.WithCommandTimeout(f.CommandTimeout)}
	if len(f.KnownHosts) > 0 {
		opt, err := ssh.KnownHosts(f.KnownHosts...)
		if err != nil {
			return nil, err
		}
		sshOpts = append(sshOpts, opt)
	}

	return device.Mux{
		device.KindSSH:  ssh.New(sshOpts...),
		device.KindSNMP: snmp.New(),
	}, nil
}

// CreateResolver returns the reverse DNS resolver.
func (f *DefaultFactory) CreateResolver() HostResolver {
	var opts []resolver.Option
	if f.DNSServer != "" {
		opts = append(opts, resolver.WithServer(f.DNSServer))
	}
	return resolver.New(opts...)
}

// CreateCollector creates a device collector.
func (f *DefaultFactory) CreateCollector() (*Collector, error) {
	q, err := f.CreateQuery()
	if err != nil {
		return nil, err
	}
	return &Collector{
		Query:       q,
		Vendors:     f.Vendors,
		Resolver:    f.CreateResolver(),
		Kind:        f.Kind,
		Credentials: f.Credentials,
		Proxy:       f.Proxy,
	}, nil
}
