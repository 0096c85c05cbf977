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
	"context"
	"log/slog"

	"github.com/macdiff/macdiff/pkg/device"
	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/ifname"
	"github.com/macdiff/macdiff/pkg/snapshot"
)

// VendorResolver maps a MAC address to its manufacturer.
type VendorResolver interface {
	Lookup(mac string) string
}

// HostResolver maps an IP address to a hostname. Implementations return the
// address itself when no name is known.
type HostResolver interface {
	Hostname(ctx context.Context, ip string) string
}

// Observation is one MAC address seen on one device port.
type Observation struct {
	MAC       string
	Hostname  string
	IPAddress string
	Vendor    string
	VLAN      string
	Interface string
	Speed     string
	Duplex    string
}

// Result is the output of one device.
type Result struct {
	// Host is the address the device was reached at.
	Host string
	// Switch is the device's own name.
	Switch       string
	Observations []Observation
}

// Collector reads endpoints from devices of one handler kind.
type Collector struct {
	Query       device.Query
	Vendors     VendorResolver
	Resolver    HostResolver
	Kind        device.Kind
	Credentials device.Credentials
	Proxy       *device.Proxy
}

// Collect connects to host and returns its observations. Any session or
// table failure fails the whole device.
func (c *Collector) Collect(ctx context.Context, host string) (*Result, error) {
	h, port := device.SplitHost(host)
	target := device.Target{
		Host:        h,
		Port:        port,
		Kind:        c.Kind,
		Credentials: c.Credentials,
		Proxy:       c.Proxy,
	}

	slog.Info("connecting to device", "device", host, "kind", c.Kind)
	sess, err := c.Query.Open(ctx, target)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "connection failed", err,
			map[string]any{"device": host})
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			slog.Warn("failed to close session", "device", host, "error", cerr)
		}
	}()
	slog.Info("connection established", "device", host, "switch", sess.Prompt())

	macs, err := c.table(ctx, sess, host, device.CommandMACTable, device.FieldMACAddress)
	if err != nil {
		return nil, err
	}
	arp, err := c.table(ctx, sess, host, device.CommandARP, device.FieldMACAddress)
	if err != nil {
		return nil, err
	}
	ifaces, err := c.table(ctx, sess, host, device.CommandInterfaceStatus, device.FieldInterface)
	if err != nil {
		return nil, err
	}

	// later rows win when two names normalize to the same port
	status := make(map[string]device.Row, ifaces.Len())
	for _, k := range ifaces.Keys() {
		row, _ := ifaces.Get(k)
		status[ifname.Normalize(k)] = row
	}

	res := &Result{
		Host:   host,
		Switch: sess.Prompt(),
	}
	for _, mac := range macs.Keys() {
		row, _ := macs.Get(mac)
		port := row[device.FieldPorts]
		if !ifname.IsPhysical(port) {
			continue
		}

		o := Observation{
			MAC:       mac,
			Hostname:  snapshot.Unknown,
			IPAddress: snapshot.Unknown,
			Vendor:    c.vendor(mac),
			VLAN:      row[device.FieldVLAN],
			Interface: port,
		}
		if a, ok := arp.Get(mac); ok && a[device.FieldIPAddress] != "" {
			o.IPAddress = a[device.FieldIPAddress]
			o.Hostname = c.hostname(ctx, o.IPAddress)
		}
		if s, ok := status[ifname.Normalize(port)]; ok {
			o.Speed = s[device.FieldSpeed]
			o.Duplex = s[device.FieldDuplex]
		}
		res.Observations = append(res.Observations, o)
	}

	slog.Info("device processed",
		"device", host,
		"switch", res.Switch,
		"mac_rows", macs.Len(),
		"endpoints", len(res.Observations))
	return res, nil
}

func (c *Collector) table(ctx context.Context, sess device.Session, host, command, key string) (*device.Table, error) {
	t, err := sess.Parse(ctx, command, key)
	if err != nil {
		return nil, errors.WrapWithContext(errors.CodeOf(err), "command failed", err,
			map[string]any{"device": host, "command": command})
	}
	if t == nil {
		t = device.NewTable(key, nil)
	}
	return t, nil
}

// Prepare readies the collector for a new snapshot build. Host names cached
// by an earlier build are dropped and a stale vendor registry is refreshed.
func (c *Collector) Prepare(ctx context.Context) {
	if r, ok := c.Resolver.(interface{ Reset() }); ok {
		r.Reset()
	}
	if v, ok := c.Vendors.(interface{ RefreshIfStale(context.Context) bool }); ok {
		v.RefreshIfStale(ctx)
	}
}

func (c *Collector) vendor(mac string) string {
	if c.Vendors == nil {
		return snapshot.Unknown
	}
	return c.Vendors.Lookup(mac)
}

func (c *Collector) hostname(ctx context.Context, ip string) string {
	if c.Resolver == nil {
		return ip
	}
	return c.Resolver.Hostname(ctx, ip)
}
