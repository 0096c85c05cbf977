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
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/notify"
	"github.com/macdiff/macdiff/pkg/snapshotter"
	"github.com/macdiff/macdiff/pkg/store"
)

const (
	// maxTrackedJobs bounds the job history kept in memory.
	maxTrackedJobs = 100
	// maxRecentEvents bounds the event history served by /v1/events.
	maxRecentEvents = 100
)

// API serves snapshots, build jobs and comparisons over HTTP.
type API struct {
	store     store.Store
	builder   *snapshotter.Builder
	notifier  notify.Notifier
	devices   []string
	outputDir string
	now       func() time.Time

	jobs   *jobTracker
	events *eventLog

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures an API.
type Option func(*API)

// WithStore sets the snapshot store. Required.
func WithStore(st store.Store) Option {
	return func(a *API) {
		a.store = st
	}
}

// WithBuilder sets the snapshot builder used by build jobs. Required.
// A builder without a store is given the API store.
func WithBuilder(b *snapshotter.Builder) Option {
	return func(a *API) {
		a.builder = b
	}
}

// WithNotifier adds an external notifier, e.g. notify.AMQP.
func WithNotifier(n notify.Notifier) Option {
	return func(a *API) {
		a.notifier = n
	}
}

// WithDevices sets the device list used when a build request names none.
func WithDevices(devices []string) Option {
	return func(a *API) {
		a.devices = devices
	}
}

// WithOutputDir sets where comparison reports are written.
func WithOutputDir(dir string) Option {
	return func(a *API) {
		a.outputDir = dir
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *API) {
		a.now = now
	}
}

// New returns an API and starts its event pump. Close stops it and waits
// for running build jobs.
func New(opts ...Option) (*API, error) {
	a := &API{
		outputDir: ".",
		now:       time.Now,
		jobs:      newJobTracker(maxTrackedJobs),
		events:    newEventLog(maxRecentEvents),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.store == nil || a.builder == nil {
		return nil, errors.New(errors.ErrCodeInternal, "api requires a store and a builder")
	}
	if a.builder.Store == nil {
		a.builder.Store = a.store
	}

	// events reach the in-process log first, then the external notifier
	fanout := notify.Multi{a.events.channel}
	if a.builder.Notifier != nil {
		fanout = append(fanout, a.builder.Notifier)
	}
	if a.notifier != nil {
		fanout = append(fanout, a.notifier)
	}
	a.notifier = fanout
	a.builder.Notifier = fanout

	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.events.run(a.ctx)
	}()
	return a, nil
}

// Routes returns the API handlers keyed by route pattern.
func (a *API) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"GET /v1/snapshots":                              a.ListSnapshots,
		"POST /v1/snapshots":                             a.CreateSnapshot,
		"GET /v1/snapshots/{type}/{name}/{timestamp}":    a.GetSnapshot,
		"DELETE /v1/snapshots/{type}/{name}/{timestamp}": a.DeleteSnapshot,
		"GET /v1/jobs":                                   a.ListJobs,
		"GET /v1/jobs/{id}":                              a.GetJob,
		"POST /v1/comparisons":                           a.CreateComparison,
		"GET /v1/events":                                 a.ListEvents,
	}
}

// CheckStore lists snapshots to prove the store is reachable. A ConfigMap
// store fails it while the cluster API is down.
func (a *API) CheckStore(ctx context.Context) error {
	if _, err := a.store.List(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, "snapshot store unavailable", err)
	}
	return nil
}

// Close cancels running build jobs and waits for them to finish.
func (a *API) Close() {
	a.cancel()
	a.wg.Wait()
	slog.Debug("api closed")
}

// Jobs returns a snapshot of the tracked build jobs, oldest first.
func (a *API) Jobs() []Job {
	return a.jobs.list()
}
