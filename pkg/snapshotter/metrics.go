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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	buildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "macdiff_snapshot_build_duration_seconds",
			Help:    "Time taken to collect, consolidate and save a snapshot",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 900},
		},
	)

	buildTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macdiff_snapshot_build_total",
			Help: "Total number of snapshot builds",
		},
		[]string{"status"}, // success or error
	)

	deviceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "macdiff_snapshot_device_duration_seconds",
			Help:    "Time taken to collect one device",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"status"},
	)

	deviceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macdiff_snapshot_devices_total",
			Help: "Total number of devices collected",
		},
		[]string{"status"},
	)

	snapshotEndpoints = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "macdiff_snapshot_endpoints",
			Help: "Number of endpoints in the last saved snapshot",
		},
	)
)
