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

// Package resolver performs cached reverse DNS lookups for endpoint IP
// addresses.
//
// With a configured server the PTR query is sent directly to it; otherwise
// the system resolver is used. A failed lookup yields the address itself,
// matching what getfqdn-style helpers return. Only answers and NXDOMAIN are
// cached; callers drop the cache with Reset between snapshot builds.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/macdiff/macdiff/pkg/defaults"
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithServer sends PTR queries to addr ("10.0.0.53" or "10.0.0.53:53").
func WithServer(addr string) Option {
	return func(r *Resolver) {
		if addr == "" {
			return
		}
		if _, _, err := net.SplitHostPort(addr); err != nil {
			addr = net.JoinHostPort(addr, "53")
		}
		r.server = addr
	}
}

// WithTimeout bounds each lookup.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// Resolver resolves IP addresses to host names. Safe for concurrent use;
// names and authoritative misses are cached until Reset.
type Resolver struct {
	server  string
	timeout time.Duration
	client  *dns.Client
	system  *net.Resolver

	mu    sync.Mutex
	cache map[string]string
}

// New returns a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		timeout: defaults.DNSLookupTimeout,
		system:  net.DefaultResolver,
		cache:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.client = &dns.Client{Net: "udp", Timeout: r.timeout}
	return r
}

// Hostname returns the fully qualified name of ip without the trailing dot,
// or ip itself when it has no PTR record.
func (r *Resolver) Hostname(ctx context.Context, ip string) string {
	r.mu.Lock()
	if name, ok := r.cache[ip]; ok {
		r.mu.Unlock()
		return name
	}
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	name, err := r.lookup(ctx, ip)
	if err != nil {
		slog.Debug("reverse lookup failed", "ip", ip, "error", err)
		if !notFound(err) || ctx.Err() != nil {
			return ip
		}
	}
	if name == "" {
		name = ip
	}

	r.mu.Lock()
	r.cache[ip] = name
	r.mu.Unlock()
	return name
}

// Reset drops every cached answer.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.cache = make(map[string]string)
	r.mu.Unlock()
}

// errNoName marks an authoritative answer that the address has no name.
var errNoName = errors.New("no PTR record")

func notFound(err error) bool {
	if errors.Is(err, errNoName) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}

func (r *Resolver) lookup(ctx context.Context, ip string) (string, error) {
	if r.server == "" {
		names, err := r.system.LookupAddr(ctx, ip)
		if err != nil {
			return "", err
		}
		if len(names) == 0 {
			return "", errNoName
		}
		return strings.TrimSuffix(names[0], "."), nil
	}

	arpa, err := dns.ReverseAddr(ip)
	if err != nil {
		return "", err
	}

	m := new(dns.Msg)
	m.SetQuestion(arpa, dns.TypePTR)
	m.RecursionDesired = true

	in, _, err := r.client.ExchangeContext(ctx, m, r.server)
	if err != nil {
		return "", err
	}
	switch in.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return "", errNoName
	default:
		return "", fmt.Errorf("ptr query for %s: %s", arpa, dns.RcodeToString[in.Rcode])
	}
	for _, rr := range in.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			return strings.TrimSuffix(ptr.Ptr, "."), nil
		}
	}
	return "", errNoName
}
