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
	"os"
	"path/filepath"
	"strings"

	"github.com/macdiff/macdiff/pkg/compare"
	"github.com/macdiff/macdiff/pkg/defaults"
	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/header"
	"github.com/macdiff/macdiff/pkg/notify"
	"github.com/macdiff/macdiff/pkg/report"
	"github.com/macdiff/macdiff/pkg/serializer"
	"github.com/macdiff/macdiff/pkg/server"
	"github.com/macdiff/macdiff/pkg/snapshot"
)

// XLSXContentType is the media type of the comparison workbook.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ComparisonRequest names the two snapshots to compare, in any order.
// Format is "json" (default) or "xlsx".
type ComparisonRequest struct {
	Snapshots []snapshot.ID `json:"snapshots" yaml:"snapshots"`
	Format    string        `json:"format,omitempty" yaml:"format,omitempty"`
}

// ComparisonResponse is the JSON body of POST /v1/comparisons.
type ComparisonResponse struct {
	header.Header `yaml:",inline"`

	Pre     snapshot.ID      `json:"pre" yaml:"pre"`
	Post    snapshot.ID      `json:"post" yaml:"post"`
	Columns []string         `json:"columns" yaml:"columns"`
	Summary compare.Summary  `json:"summary" yaml:"summary"`
	Records []compare.Record `json:"records" yaml:"records"`
	Report  string           `json:"report" yaml:"report"`
}

// CreateComparison handles POST /v1/comparisons. The workbook is always
// written to the output directory; it is returned as the response body when
// xlsx is requested, otherwise its path is part of the JSON table.
func (a *API) CreateComparison(w http.ResponseWriter, r *http.Request) {
	var req ComparisonRequest
	if err := decodeBody(r, &req); err != nil {
		server.WriteErrorFromErr(w, r, err, "Invalid comparison request", nil)
		return
	}
	if len(req.Snapshots) != 2 {
		server.WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
			"Exactly two snapshots must be given", false, map[string]any{"count": len(req.Snapshots)})
		return
	}
	wantXLSX := strings.EqualFold(req.Format, "xlsx") || strings.Contains(r.Header.Get("Accept"), XLSXContentType)

	ctx, cancel := context.WithTimeout(r.Context(), defaults.CompareHandlerTimeout)
	defer cancel()

	t, err := compare.Load(ctx, a.store, req.Snapshots[0], req.Snapshots[1])
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to compare snapshots", nil)
		return
	}

	now := a.now()
	path, err := report.WriteComparison(a.outputDir, t, now)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to write comparison report", nil)
		return
	}

	summary := t.Summary()
	a.announceComparison(ctx, t, summary, path)
	slog.Info("comparison finished",
		"pre", t.Pre.String(),
		"post", t.Post.String(),
		"summary", summary.String(),
		"report", path,
		"requestID", server.RequestID(r.Context()))

	if wantXLSX {
		a.serveReport(w, r, path)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, ComparisonResponse{
		Header:  documentHeader(r, header.KindComparison, now),
		Pre:     t.Pre,
		Post:    t.Post,
		Columns: t.Columns(),
		Summary: summary,
		Records: t.Records,
		Report:  path,
	})
}

func (a *API) serveReport(w http.ResponseWriter, r *http.Request, path string) {
	f, err := os.Open(path)
	if err != nil {
		server.WriteErrorFromErr(w, r, errors.Wrap(errors.ErrCodeInternal, "failed to open report", err),
			"Failed to open comparison report", nil)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		server.WriteErrorFromErr(w, r, errors.Wrap(errors.ErrCodeInternal, "failed to stat report", err),
			"Failed to open comparison report", nil)
		return
	}

	w.Header().Set("Content-Type", XLSXContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	http.ServeContent(w, r, filepath.Base(path), fi.ModTime(), f)
}

func (a *API) announceComparison(ctx context.Context, t *compare.Table, s compare.Summary, path string) {
	e := notify.NewEvent(notify.ComparisonFinished)
	pre, post := t.Pre, t.Post
	e.Pre = &pre
	e.Post = &post
	e.Summary = s.Map()
	e.Report = path
	if err := a.notifier.Notify(ctx, e); err != nil {
		slog.Warn("failed to announce comparison", "pre", pre.String(), "post", post.String(), "error", err)
	}
}

// ListEvents handles GET /v1/events. The optional "since" parameter is the
// ID of the last event seen; "kind" filters by event kind.
func (a *API) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events := a.events.since(q.Get("since"), notify.Kind(q.Get("kind")))
	serializer.RespondJSON(w, http.StatusOK, struct {
		Events []notify.Event `json:"events"`
	}{Events: events})
}
