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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macdiff/macdiff/pkg/collector"
	"github.com/macdiff/macdiff/pkg/compare"
	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/header"
	"github.com/macdiff/macdiff/pkg/notify"
	"github.com/macdiff/macdiff/pkg/server"
	"github.com/macdiff/macdiff/pkg/snapshot"
	"github.com/macdiff/macdiff/pkg/snapshotter"
	"github.com/macdiff/macdiff/pkg/store"
)

type stubCollector struct {
	results map[string]*collector.Result
	gate    chan struct{}
}

func (s *stubCollector) Collect(ctx context.Context, host string) (*collector.Result, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	res, ok := s.results[host]
	if !ok {
		return nil, fmt.Errorf("connection to %s refused", host)
	}
	return res, nil
}

func observation(mac, iface string) collector.Observation {
	return collector.Observation{
		MAC:       mac,
		Hostname:  "host-" + mac[len(mac)-2:],
		IPAddress: "10.1.1." + mac[len(mac)-1:],
		Vendor:    "Cisco Systems, Inc",
		VLAN:      "20",
		Interface: iface,
		Speed:     "a-1000",
		Duplex:    "a-full",
	}
}

func newStubCollector() *stubCollector {
	return &stubCollector{results: map[string]*collector.Result{
		"10.0.0.1": {Host: "10.0.0.1", Switch: "access-1", Observations: []collector.Observation{
			observation("aa:bb:cc:00:00:01", "Gi1/0/1"),
		}},
		"10.0.0.2": {Host: "10.0.0.2", Switch: "access-2", Observations: []collector.Observation{
			observation("aa:bb:cc:00:00:02", "Gi1/0/2"),
		}},
	}}
}

type testEnv struct {
	api     *API
	mux     *http.ServeMux
	builder *snapshotter.Builder
	dir     string
}

func newTestEnv(t *testing.T, c snapshotter.DeviceCollector) *testEnv {
	t.Helper()
	dir := t.TempDir()
	b := &snapshotter.Builder{
		Collector:      c,
		SubmitInterval: time.Millisecond,
		Now:            func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) },
	}
	a, err := New(
		WithStore(store.NewFileStore(dir)),
		WithBuilder(b),
		WithOutputDir(dir),
		WithDevices([]string{"10.0.0.1", "10.0.0.2"}),
	)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	mux := http.NewServeMux()
	for pattern, h := range a.Routes() {
		mux.HandleFunc(pattern, h)
	}
	return &testEnv{api: a, mux: mux, builder: b, dir: dir}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) build(t *testing.T, req SnapshotRequest) Job {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/v1/snapshots", req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var job Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "/v1/jobs/"+job.ID, rec.Header().Get("Location"))

	require.Eventually(t, func() bool {
		j, ok := e.api.jobs.get(job.ID)
		return ok && j.State.Done()
	}, 5*time.Second, 10*time.Millisecond)

	rec = e.do(t, http.MethodGet, "/v1/jobs/"+job.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	return job
}

func snapshotPath(id snapshot.ID) string {
	return "/v1/snapshots/" + string(id.Type) + "/" + url.PathEscape(id.Name) + "/" + id.Timestamp
}

func TestNew_RequiresStoreAndBuilder(t *testing.T) {
	_, err := New(WithStore(store.NewFileStore(t.TempDir())))
	require.Error(t, err)
}

func TestSnapshotLifecycle(t *testing.T) {
	env := newTestEnv(t, newStubCollector())

	pre := env.build(t, SnapshotRequest{Name: "core-upgrade", Type: "pre"})
	require.Equal(t, JobSucceeded, pre.State, pre.Error)
	require.NotNil(t, pre.Report)
	assert.Equal(t, 2, pre.Report.Endpoints)
	assert.Equal(t, snapshot.TypePre, pre.Report.ID.Type)

	// post change: access-2 is gone
	env.builder.Now = func() time.Time { return time.Date(2025, 3, 1, 11, 30, 0, 0, time.UTC) }
	post := env.build(t, SnapshotRequest{Name: "core-upgrade", Type: "Post", Devices: []string{"10.0.0.1"}})
	require.Equal(t, JobSucceeded, post.State, post.Error)
	assert.Equal(t, 1, post.Report.Endpoints)

	t.Run("list", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/snapshots", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list SnapshotList
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		assert.Len(t, list.Snapshots, 2)
		assert.Equal(t, header.KindSnapshotList, list.Kind)
		assert.Equal(t, server.DefaultAPIVersion, list.Metadata["apiVersion"])

		rec = env.do(t, http.MethodGet, "/v1/snapshots?type=post", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list.Snapshots, 1)
		assert.Equal(t, post.Report.ID, list.Snapshots[0])
	})

	t.Run("get", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, snapshotPath(pre.Report.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "aa:bb:cc:00:00:02")
	})

	t.Run("compare json", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/comparisons", ComparisonRequest{
			Snapshots: []snapshot.ID{post.Report.ID, pre.Report.ID},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp ComparisonResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, header.KindComparison, resp.Kind)
		assert.Equal(t, header.APIVersion, resp.APIVersion)
		assert.Equal(t, server.DefaultAPIVersion, resp.Metadata["apiVersion"])
		assert.Equal(t, pre.Report.ID, resp.Pre)
		assert.Equal(t, post.Report.ID, resp.Post)
		assert.Equal(t, compare.Summary{Learnt: 1, NotLearnt: 1}, resp.Summary)
		require.Len(t, resp.Records, 2)
		assert.Equal(t, compare.MacNotLearnt, resp.Records[1].Observation)
		assert.FileExists(t, resp.Report)
	})

	t.Run("compare xlsx", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/comparisons", ComparisonRequest{
			Snapshots: []snapshot.ID{pre.Report.ID, post.Report.ID},
			Format:    "xlsx",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, XLSXContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
		// xlsx is a zip container
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
	})

	t.Run("events", func(t *testing.T) {
		require.Eventually(t, func() bool {
			return len(env.api.events.since("", "")) >= 4
		}, 5*time.Second, 10*time.Millisecond)

		rec := env.do(t, http.MethodGet, "/v1/events?kind=snapshot.created", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Events []notify.Event `json:"events"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Events, 2)
		assert.Equal(t, pre.Report.ID, *body.Events[0].Snapshot)
	})

	t.Run("delete", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, snapshotPath(pre.Report.ID), nil)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = env.do(t, http.MethodGet, snapshotPath(pre.Report.ID), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = env.do(t, http.MethodPost, "/v1/comparisons", ComparisonRequest{
			Snapshots: []snapshot.ID{pre.Report.ID, post.Report.ID},
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateSnapshot_Invalid(t *testing.T) {
	env := newTestEnv(t, newStubCollector())

	tests := []struct {
		name string
		body any
	}{
		{"unknown type", SnapshotRequest{Name: "core", Type: "during"}},
		{"empty name", SnapshotRequest{Name: "", Type: "Pre"}},
		{"bracket in name", SnapshotRequest{Name: "core]", Type: "Pre"}},
		{"not an object", []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/v1/snapshots", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateSnapshot_NoDevices(t *testing.T) {
	env := newTestEnv(t, newStubCollector())
	env.api.devices = nil

	rec := env.do(t, http.MethodPost, "/v1/snapshots", SnapshotRequest{Name: "core", Type: "Pre"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSnapshot_YAMLBody(t *testing.T) {
	env := newTestEnv(t, newStubCollector())

	req := httptest.NewRequest(http.MethodPost, "/v1/snapshots",
		bytes.NewBufferString("name: core\ntype: pre\ndevices:\n  - 10.0.0.1\n"))
	req.Header.Set("Content-Type", "application/yaml")
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var job Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, []string{"10.0.0.1"}, job.Devices)
	assert.Equal(t, snapshot.TypePre, job.Type)
}

func TestCreateSnapshot_Conflict(t *testing.T) {
	c := newStubCollector()
	c.gate = make(chan struct{})
	env := newTestEnv(t, c)

	rec := env.do(t, http.MethodPost, "/v1/snapshots", SnapshotRequest{Name: "core", Type: "Pre"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/snapshots", SnapshotRequest{Name: "core", Type: "pre"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	var errResp server.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, string(errors.ErrCodeConflict), errResp.Code)
	assert.True(t, errResp.Retryable)
	assert.NotEmpty(t, errResp.Details["job"])

	// a different type is a different snapshot
	rec = env.do(t, http.MethodPost, "/v1/snapshots", SnapshotRequest{Name: "core", Type: "post"})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	close(c.gate)
}

func TestGetJob_NotFound(t *testing.T) {
	env := newTestEnv(t, newStubCollector())

	rec := env.do(t, http.MethodGet, "/v1/jobs/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateComparison_Invalid(t *testing.T) {
	env := newTestEnv(t, newStubCollector())
	a := snapshot.ID{Type: snapshot.TypePre, Name: "core", Timestamp: "2025-03-01_09.00"}
	b := snapshot.ID{Type: snapshot.TypePre, Name: "core", Timestamp: "2025-03-01_10.00"}

	rec := env.do(t, http.MethodPost, "/v1/comparisons", ComparisonRequest{Snapshots: []snapshot.ID{a}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/comparisons", ComparisonRequest{Snapshots: []snapshot.ID{a, b}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	entries, err := os.ReadDir(env.dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no report is written for a rejected comparison")
}

func TestGetSnapshot_InvalidPath(t *testing.T) {
	env := newTestEnv(t, newStubCollector())

	rec := env.do(t, http.MethodGet, "/v1/snapshots/During/core/2025-03-01_09.00", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/snapshots/Pre/core/yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobTracker_Evict(t *testing.T) {
	tr := newJobTracker(2)
	now := time.Now()

	first, ok := tr.start("a", snapshot.TypePre, nil, now)
	require.True(t, ok)
	tr.update(first.ID, func(j *Job) { j.State = JobSucceeded })

	_, ok = tr.start("b", snapshot.TypePre, nil, now)
	require.True(t, ok)
	_, ok = tr.start("c", snapshot.TypePre, nil, now)
	require.True(t, ok)

	_, found := tr.get(first.ID)
	assert.False(t, found, "oldest finished job is evicted")
	assert.Len(t, tr.list(), 2)

	// running jobs are never evicted
	_, ok = tr.start("d", snapshot.TypePre, nil, now)
	require.True(t, ok)
	assert.Len(t, tr.list(), 3)
}

func TestEventLog_Since(t *testing.T) {
	l := newEventLog(3)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.run(ctx)

	var ids []string
	for _, k := range []notify.Kind{notify.SnapshotCreated, notify.ComparisonFinished, notify.SnapshotCreated, notify.SnapshotCreated} {
		e := notify.NewEvent(k)
		ids = append(ids, e.ID)
		require.NoError(t, l.channel.Notify(ctx, e))
	}

	require.Eventually(t, func() bool {
		got := l.since("", "")
		return len(got) == 3 && got[2].ID == ids[3]
	}, time.Second, 5*time.Millisecond)

	assert.Len(t, l.since(ids[2], ""), 1)
	assert.Len(t, l.since("", notify.SnapshotCreated), 2)
	// evicted IDs return the full history
	assert.Len(t, l.since(ids[0], ""), 3)
}

type unreachableStore struct {
	store.Store
}

func (unreachableStore) List(context.Context) (snapshot.IDs, error) {
	return nil, fmt.Errorf("dial tcp 10.96.0.1:443: connect: connection refused")
}

func TestCheckStore(t *testing.T) {
	env := newTestEnv(t, newStubCollector())
	assert.NoError(t, env.api.CheckStore(context.Background()))

	a, err := New(WithStore(unreachableStore{}), WithBuilder(&snapshotter.Builder{Collector: newStubCollector()}))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	err = a.CheckStore(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnavailable))
}
