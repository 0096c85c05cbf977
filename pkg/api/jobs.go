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
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/macdiff/macdiff/pkg/snapshot"
	"github.com/macdiff/macdiff/pkg/snapshotter"
)

// JobState is the lifecycle state of a build job.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// Done reports whether the job reached a final state.
func (s JobState) Done() bool {
	return s == JobSucceeded || s == JobFailed
}

// Job is an asynchronous snapshot build.
type Job struct {
	ID       string              `json:"id" yaml:"id"`
	State    JobState            `json:"state" yaml:"state"`
	Name     string              `json:"name" yaml:"name"`
	Type     snapshot.Type       `json:"type" yaml:"type"`
	Devices  []string            `json:"devices" yaml:"devices"`
	Created  time.Time           `json:"created" yaml:"created"`
	Finished *time.Time          `json:"finished,omitempty" yaml:"finished,omitempty"`
	Report   *snapshotter.Report `json:"report,omitempty" yaml:"report,omitempty"`
	Error    string              `json:"error,omitempty" yaml:"error,omitempty"`
}

type jobTracker struct {
	mu    sync.RWMutex
	jobs  map[string]*Job
	order []string
	max   int
}

func newJobTracker(max int) *jobTracker {
	return &jobTracker{
		jobs: make(map[string]*Job),
		max:  max,
	}
}

// start registers a pending job unless a job for the same name and type is
// still in progress, in which case that job is returned with false.
func (t *jobTracker) start(name string, typ snapshot.Type, devices []string, now time.Time) (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, id := range t.order {
		j := t.jobs[id]
		if j.Name == name && j.Type == typ && !j.State.Done() {
			return *j, false
		}
	}

	j := &Job{
		ID:      uuid.New().String(),
		State:   JobPending,
		Name:    name,
		Type:    typ,
		Devices: slices.Clone(devices),
		Created: now.UTC(),
	}
	t.jobs[j.ID] = j
	t.order = append(t.order, j.ID)
	t.evict()
	return *j, true
}

// evict drops the oldest finished jobs beyond max.
func (t *jobTracker) evict() {
	for len(t.order) > t.max {
		idx := slices.IndexFunc(t.order, func(id string) bool {
			return t.jobs[id].State.Done()
		})
		if idx < 0 {
			return
		}
		delete(t.jobs, t.order[idx])
		t.order = slices.Delete(t.order, idx, idx+1)
	}
}

func (t *jobTracker) update(id string, fn func(*Job)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if j, ok := t.jobs[id]; ok {
		fn(j)
	}
}

func (t *jobTracker) get(id string) (Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	j, ok := t.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

func (t *jobTracker) list() []Job {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Job, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, *t.jobs[id])
	}
	return out
}
