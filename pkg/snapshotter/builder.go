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

package snapshotter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/macdiff/macdiff/pkg/collector"
	"github.com/macdiff/macdiff/pkg/defaults"
	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/notify"
	"github.com/macdiff/macdiff/pkg/snapshot"
	"github.com/macdiff/macdiff/pkg/store"
)

// DeviceCollector collects the endpoints of one device.
type DeviceCollector interface {
	Collect(ctx context.Context, host string) (*collector.Result, error)
}

// Preparer is implemented by collectors that hold state across builds.
// Prepare runs once at the start of every build.
type Preparer interface {
	Prepare(ctx context.Context)
}

// Builder collects devices in parallel and saves the consolidated snapshot.
type Builder struct {
	// Collector reads each device. Required.
	Collector DeviceCollector

	// Store persists the snapshot. Required.
	Store store.Store

	// Notifier is told about saved snapshots. Optional.
	Notifier notify.Notifier

	// Workers bounds concurrent device sessions. Defaults to defaults.CollectorWorkers.
	Workers int

	// SubmitInterval paces device starts. Defaults to defaults.CollectorSubmitInterval.
	SubmitInterval time.Duration

	// DeviceTimeout bounds one device. Defaults to defaults.CollectorTimeout.
	DeviceTimeout time.Duration

	// Now returns the save time. Defaults to time.Now.
	Now func() time.Time
}

// Build collects devices, consolidates the results and saves them as a
// snapshot of the given name and type.
func (b *Builder) Build(ctx context.Context, devices []string, name string, typ snapshot.Type) (*snapshot.Snapshot, error) {
	rep, err := b.BuildReport(ctx, devices, name, typ)
	if err != nil {
		return nil, err
	}
	return rep.Snapshot, nil
}

// BuildReport is Build returning per-device outcomes as well.
func (b *Builder) BuildReport(ctx context.Context, devices []string, name string, typ snapshot.Type) (*Report, error) {
	if b.Collector == nil || b.Store == nil {
		return nil, errors.New(errors.ErrCodeInternal, "builder requires a collector and a store")
	}
	if len(devices) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "device list is empty")
	}
	if err := snapshot.NewID(typ, name, b.now()).Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		buildDuration.Observe(time.Since(start).Seconds())
	}()

	slog.Info("building snapshot",
		"name", name,
		"type", typ,
		"devices", len(devices))

	if p, ok := b.Collector.(Preparer); ok {
		p.Prepare(ctx)
	}
	results, rep := b.Collect(ctx, devices)

	// the timestamp is taken once collection is over
	snap := Consolidate(snapshot.NewID(typ, name, b.now()), results)
	rep.ID = snap.ID
	rep.Snapshot = snap
	rep.Endpoints = snap.Len()

	if err := b.Store.Save(ctx, snap); err != nil {
		buildTotal.WithLabelValues("error").Inc()
		slog.Error("failed to save snapshot", "snapshot", snap.String(), "error", err)
		return nil, err
	}
	buildTotal.WithLabelValues("success").Inc()
	snapshotEndpoints.Set(float64(snap.Len()))

	b.announce(ctx, rep)

	slog.Info("snapshot complete",
		"snapshot", snap.String(),
		"endpoints", snap.Len(),
		"ok", len(rep.OK),
		"failed", len(rep.Failed),
		"duration", time.Since(start).Round(time.Millisecond).String())
	return rep, nil
}

// Collect runs the collector against every device and returns one result
// per device, in device-list order. Failed devices leave a nil slot.
func (b *Builder) Collect(ctx context.Context, devices []string) ([]*collector.Result, *Report) {
	results := make([]*collector.Result, len(devices))
	failures := make([]error, len(devices))

	workers := b.Workers
	if workers <= 0 {
		workers = defaults.CollectorWorkers
	}
	interval := b.SubmitInterval
	if interval <= 0 {
		interval = defaults.CollectorSubmitInterval
	}
	timeout := b.DeviceTimeout
	if timeout <= 0 {
		timeout = defaults.CollectorTimeout
	}

	// Workers always return nil: a failing device must not cancel the others,
	// so the group carries no derived context.
	var g errgroup.Group
	g.SetLimit(workers)
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	for i, host := range devices {
		if err := limiter.Wait(ctx); err != nil {
			failures[i] = errors.Wrap(errors.ErrCodeTimeout, "device not started", err)
			continue
		}

		g.Go(func() error {
			dctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			deviceStart := time.Now()
			res, err := b.Collector.Collect(dctx, host)
			status := "success"
			if err != nil {
				status = "error"
				if errors.IsCode(err, errors.ErrCodeTimeout) || dctx.Err() != nil {
					status = "timeout"
				}
				failures[i] = err
				slog.Error("device failed", "device", host, "error", err)
			} else {
				results[i] = res
			}
			deviceDuration.WithLabelValues(status).Observe(time.Since(deviceStart).Seconds())
			deviceTotal.WithLabelValues(status).Inc()
			return nil
		})
	}
	_ = g.Wait()

	rep := &Report{}
	for i, host := range devices {
		if failures[i] != nil {
			rep.Failed = append(rep.Failed, DeviceError{Device: host, Error: failures[i].Error()})
			continue
		}
		rep.OK = append(rep.OK, host)
	}
	return results, rep
}

// Consolidate merges per-device results, in slice order, into one snapshot.
// Nil results are skipped.
func Consolidate(id snapshot.ID, results []*collector.Result) *snapshot.Snapshot {
	snap := snapshot.New(id)
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, o := range res.Observations {
			if e, ok := snap.Endpoint(o.MAC); ok {
				e.Observe(res.Switch, o.Interface, o.Speed, o.Duplex)
				continue
			}

			e := &snapshot.Endpoint{
				MAC:       o.MAC,
				Hostname:  o.Hostname,
				IPAddress: o.IPAddress,
				Vendor:    o.Vendor,
				VLAN:      o.VLAN,
			}
			e.Observe(res.Switch, o.Interface, o.Speed, o.Duplex)
			if err := snap.Add(e); err != nil {
				slog.Warn("skipping endpoint", "mac", o.MAC, "device", res.Host, "error", err)
			}
		}
	}
	return snap
}

func (b *Builder) announce(ctx context.Context, rep *Report) {
	if b.Notifier == nil {
		return
	}
	e := notify.NewEvent(notify.SnapshotCreated)
	id := rep.ID
	e.Snapshot = &id
	e.Endpoints = rep.Endpoints
	for _, f := range rep.Failed {
		e.Failed = append(e.Failed, f.Device)
	}
	if err := b.Notifier.Notify(ctx, e); err != nil {
		slog.Warn("failed to announce snapshot", "snapshot", id.String(), "error", err)
	}
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// DeviceError records why a device was left out.
type DeviceError struct {
	Device string `json:"device" yaml:"device"`
	Error  string `json:"error" yaml:"error"`
}

// Report summarizes a build.
type Report struct {
	Snapshot  *snapshot.Snapshot `json:"-" yaml:"-"`
	ID        snapshot.ID        `json:"id" yaml:"id"`
	Endpoints int                `json:"endpoints" yaml:"endpoints"`
	OK        []string           `json:"ok" yaml:"ok"`
	Failed    []DeviceError      `json:"failed,omitempty" yaml:"failed,omitempty"`
}

func (r *Report) TableHeader() []string {
	return []string{"DEVICE", "STATUS", "ERROR"}
}

func (r *Report) TableRows() [][]string {
	rows := make([][]string, 0, len(r.OK)+len(r.Failed))
	for _, d := range r.OK {
		rows = append(rows, []string{d, "ok", ""})
	}
	for _, f := range r.Failed {
		rows = append(rows, []string{f.Device, "failed", f.Error})
	}
	return rows
}

func (r *Report) String() string {
	return fmt.Sprintf("%s: %d endpoints, %d devices ok, %d failed",
		r.ID, r.Endpoints, len(r.OK), len(r.Failed))
}
