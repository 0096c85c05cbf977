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
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/macdiff/macdiff/pkg/defaults"
	"github.com/macdiff/macdiff/pkg/serializer"
)

// ReadinessCheck reports whether a dependency of the API can be used.
type ReadinessCheck func(ctx context.Context) error

type readinessCheck struct {
	name  string
	check ReadinessCheck
}

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status    string            `json:"status" yaml:"status"`
	Version   string            `json:"version,omitempty" yaml:"version,omitempty"`
	Timestamp time.Time         `json:"timestamp" yaml:"timestamp"`
	Reason    string            `json:"reason,omitempty" yaml:"reason,omitempty"`
	Checks    map[string]string `json:"checks,omitempty" yaml:"checks,omitempty"`
}

// handleHealth reports liveness only; dependencies are checked by /ready.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   s.config.Version,
		Timestamp: time.Now().UTC(),
	})
}

// handleReady reports whether the listener is up and every registered
// dependency check passes.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := HealthResponse{
		Status:  "ready",
		Version: s.config.Version,
	}
	status := http.StatusOK

	switch {
	case !s.isReady():
		resp.Status = "not_ready"
		resp.Reason = "service is initializing"
		status = http.StatusServiceUnavailable
	case len(s.checks) > 0:
		resp.Checks = s.runChecks(r.Context())
		for _, c := range s.checks {
			if resp.Checks[c.name] != "ok" {
				resp.Status = "not_ready"
				resp.Reason = c.name + " check failed"
				status = http.StatusServiceUnavailable
				break
			}
		}
	}

	resp.Timestamp = time.Now().UTC()
	serializer.RespondJSON(w, status, resp)
}

// runChecks runs the checks in registration order, each under its own
// timeout, and returns "ok" or the error text per check name.
func (s *Server) runChecks(ctx context.Context) map[string]string {
	out := make(map[string]string, len(s.checks))
	for _, c := range s.checks {
		cctx, cancel := context.WithTimeout(ctx, defaults.ReadinessCheckTimeout)
		err := c.check(cctx)
		cancel()
		if err != nil {
			readinessFailures.WithLabelValues(c.name).Inc()
			out[c.name] = err.Error()
			continue
		}
		out[c.name] = "ok"
	}
	return out
}
