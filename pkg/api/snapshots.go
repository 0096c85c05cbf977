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
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/macdiff/macdiff/pkg/defaults"
	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/header"
	"github.com/macdiff/macdiff/pkg/serializer"
	"github.com/macdiff/macdiff/pkg/server"
	"github.com/macdiff/macdiff/pkg/snapshot"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// SnapshotRequest starts a snapshot build.
type SnapshotRequest struct {
	Name    string   `json:"name" yaml:"name"`
	Type    string   `json:"type" yaml:"type"`
	Devices []string `json:"devices,omitempty" yaml:"devices,omitempty"`
}

// SnapshotList is the body of GET /v1/snapshots.
type SnapshotList struct {
	header.Header `yaml:",inline"`

	Snapshots snapshot.IDs `json:"snapshots" yaml:"snapshots"`
}

// SnapshotResponse is the body of GET /v1/snapshots/{type}/{name}/{timestamp}.
type SnapshotResponse struct {
	ID       snapshot.ID        `json:"id" yaml:"id"`
	Snapshot *snapshot.Snapshot `json:"snapshot" yaml:"snapshot"`
}

// ListSnapshots handles GET /v1/snapshots.
func (a *API) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaults.ConfigMapReadTimeout)
	defer cancel()

	ids, err := a.store.List(ctx)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to list snapshots", nil)
		return
	}
	if typ := r.URL.Query().Get("type"); typ != "" {
		t, err := snapshot.ParseType(typ)
		if err != nil {
			server.WriteErrorFromErr(w, r, err, "Invalid snapshot type", nil)
			return
		}
		filtered := ids[:0]
		for _, id := range ids {
			if id.Type == t {
				filtered = append(filtered, id)
			}
		}
		ids = filtered
	}
	if ids == nil {
		ids = snapshot.IDs{}
	}

	serializer.RespondJSON(w, http.StatusOK, SnapshotList{
		Header:    documentHeader(r, header.KindSnapshotList, a.now()),
		Snapshots: ids,
	})
}

// GetSnapshot handles GET /v1/snapshots/{type}/{name}/{timestamp}.
func (a *API) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Invalid snapshot ID", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.ConfigMapReadTimeout)
	defer cancel()

	s, err := a.store.Load(ctx, id)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to load snapshot", nil)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, SnapshotResponse{ID: s.ID, Snapshot: s})
}

// DeleteSnapshot handles DELETE /v1/snapshots/{type}/{name}/{timestamp}.
func (a *API) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Invalid snapshot ID", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaults.ConfigMapWriteTimeout)
	defer cancel()

	if err := a.store.Delete(ctx, id); err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to delete snapshot", nil)
		return
	}
	slog.Info("snapshot deleted", "snapshot", id.String(), "requestID", server.RequestID(r.Context()))

	w.WriteHeader(http.StatusNoContent)
}

// CreateSnapshot handles POST /v1/snapshots. The build runs in the
// background; the response is the pending job, polled at /v1/jobs/{id}.
func (a *API) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if err := decodeBody(r, &req); err != nil {
		server.WriteErrorFromErr(w, r, err, "Invalid snapshot request", nil)
		return
	}

	typ, err := snapshot.ParseType(req.Type)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Invalid snapshot type", nil)
		return
	}
	devices := req.Devices
	if len(devices) == 0 {
		devices = a.devices
	}
	if len(devices) == 0 {
		server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
			"No devices given and no inventory configured", false, nil)
		return
	}
	if err := snapshot.NewID(typ, req.Name, a.now()).Validate(); err != nil {
		server.WriteErrorFromErr(w, r, err, "Invalid snapshot name", nil)
		return
	}

	job, created := a.jobs.start(req.Name, typ, devices, a.now())
	if !created {
		server.WriteError(w, r, http.StatusConflict, errors.ErrCodeConflict,
			"A build for this snapshot is already running", true, map[string]any{"job": job.ID})
		return
	}

	a.wg.Add(1)
	go a.runJob(job)

	w.Header().Set("Location", "/v1/jobs/"+job.ID)
	serializer.RespondJSON(w, http.StatusAccepted, job)
}

func (a *API) runJob(job Job) {
	defer a.wg.Done()

	ctx, cancel := context.WithTimeout(a.ctx, defaults.SnapshotBuildTimeout)
	defer cancel()

	a.jobs.update(job.ID, func(j *Job) { j.State = JobRunning })

	rep, err := a.builder.BuildReport(ctx, job.Devices, job.Name, job.Type)
	finished := a.now().UTC()
	a.jobs.update(job.ID, func(j *Job) {
		j.Finished = &finished
		if err != nil {
			j.State = JobFailed
			j.Error = err.Error()
			return
		}
		j.State = JobSucceeded
		j.Report = rep
	})
	if err != nil {
		slog.Error("build job failed", "job", job.ID, "error", err)
	}
}

// ListJobs handles GET /v1/jobs.
func (a *API) ListJobs(w http.ResponseWriter, _ *http.Request) {
	serializer.RespondJSON(w, http.StatusOK, struct {
		Jobs []Job `json:"jobs"`
	}{Jobs: a.jobs.list()})
}

// GetJob handles GET /v1/jobs/{id}.
func (a *API) GetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := a.jobs.get(r.PathValue("id"))
	if !ok {
		server.WriteError(w, r, http.StatusNotFound, errors.ErrCodeNotFound,
			"Job not found", false, map[string]any{"id": r.PathValue("id")})
		return
	}
	if !job.State.Done() {
		w.Header().Set("Retry-After", "1")
	}
	serializer.RespondJSON(w, http.StatusOK, job)
}

func pathID(r *http.Request) (snapshot.ID, error) {
	typ, err := snapshot.ParseType(r.PathValue("type"))
	if err != nil {
		return snapshot.ID{}, err
	}
	id := snapshot.ID{
		Type:      typ,
		Name:      r.PathValue("name"),
		Timestamp: r.PathValue("timestamp"),
	}
	return id, id.Validate()
}

// decodeBody reads a JSON or YAML request body into v.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New(errors.ErrCodeInvalidRequest, "request body is empty")
	}
	defer r.Body.Close()

	format := serializer.FormatJSON
	if ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil &&
		(strings.HasSuffix(ct, "yaml") || strings.HasSuffix(ct, "yml")) {
		format = serializer.FormatYAML
	}

	rd, err := serializer.NewReader(format, io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create body reader", err)
	}
	if err := rd.Deserialize(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "failed to decode request body", err)
	}
	return nil
}

// documentHeader stamps a response document with the negotiated API version
// and, behind the middleware chain, the request id.
func documentHeader(r *http.Request, kind header.Kind, at time.Time) header.Header {
	opts := []header.Option{
		header.WithTimestamp(at),
		header.WithMetadata("apiVersion", server.APIVersion(r.Context())),
	}
	if id := server.RequestID(r.Context()); id != "" {
		opts = append(opts, header.WithMetadata("requestID", id))
	}
	return header.New(kind, "", opts...)
}
