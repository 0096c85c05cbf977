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

package oui

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ouiRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "macdiff_oui_refresh_total",
			Help: "Total number of OUI registry refresh attempts by result",
		},
		[]string{"result"},
	)

	ouiEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "macdiff_oui_entries",
			Help: "Number of OUI prefixes currently loaded",
		},
	)
)
