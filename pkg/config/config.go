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
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/macdiff/macdiff/pkg/device"
	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/serializer"
)

// Inventory is the optional inventory file. It never holds secrets.
type Inventory struct {
	// OutputDir receives snapshots and reports. Defaults to ".".
	OutputDir string `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`

	// Store is the snapshot store location: a directory, file://dir or
	// cm://namespace. Empty selects <OutputDir>/Snapshots.
	Store string `json:"store,omitempty" yaml:"store,omitempty"`

	// Kind is the device handler kind, ssh or snmp.
	Kind device.Kind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// Proxy is the SSH jump host. Overrides JUMPHOST_IP.
	Proxy string `json:"proxy,omitempty" yaml:"proxy,omitempty"`

	// DNSServer answers reverse lookups, host or host:port.
	DNSServer string `json:"dnsServer,omitempty" yaml:"dnsServer,omitempty"`

	// OUICache is the vendor registry cache file.
	OUICache string `json:"ouiCache,omitempty" yaml:"ouiCache,omitempty"`

	// Workers bounds concurrent device sessions.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`

	// SubmitInterval paces device submissions.
	SubmitInterval time.Duration `json:"submitInterval,omitempty" yaml:"submitInterval,omitempty"`

	// AMQP publishes events when URL is set.
	AMQP AMQP `json:"amqp,omitempty" yaml:"amqp,omitempty"`

	// Devices are switch hosts, optionally host:port.
	Devices []string `json:"devices,omitempty" yaml:"devices,omitempty"`
}

// AMQP configures the event publisher.
type AMQP struct {
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
	Queue string `json:"queue,omitempty" yaml:"queue,omitempty"`
}

// Default returns an inventory with defaults and no devices.
func Default() *Inventory {
	return &Inventory{
		OutputDir: ".",
		Kind:      device.KindSSH,
	}
}

// Load reads the inventory at path, a local file or http(s) URL in JSON or
// YAML. An empty path returns Default.
func Load(path string) (*Inventory, error) {
	if path == "" {
		return Default(), nil
	}

	inv, err := serializer.FromFile[Inventory](path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, fmt.Sprintf("failed to read inventory %s", path), err)
	}
	inv.applyDefaults()
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

func (inv *Inventory) applyDefaults() {
	if inv.OutputDir == "" {
		inv.OutputDir = "."
	}
	if inv.Kind == "" {
		inv.Kind = device.KindSSH
	}
	inv.Kind = device.Kind(strings.ToLower(string(inv.Kind)))
	inv.Devices = NormalizeDevices(inv.Devices)
}

// Validate checks the inventory values.
func (inv *Inventory) Validate() error {
	if !slices.Contains(device.SupportedKinds(), string(inv.Kind)) {
		return errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid device kind %q, expected one of %s", inv.Kind, strings.Join(device.SupportedKinds(), ", ")))
	}
	if inv.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "workers must not be negative")
	}
	if inv.SubmitInterval < 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "submit interval must not be negative")
	}
	if inv.Kind == device.KindSNMP && inv.Proxy != "" {
		return errors.New(errors.ErrCodeInvalidRequest, "the snmp handler does not support a proxy")
	}
	return nil
}

// NormalizeDevices trims entries, drops blanks and comments, and removes
// duplicates while keeping the first occurrence order.
func NormalizeDevices(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, d := range in {
		d = strings.TrimSpace(d)
		if d == "" || strings.HasPrefix(d, "#") || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
