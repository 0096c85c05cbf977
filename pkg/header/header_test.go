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

package header

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	at := time.Date(2026, 10, 19, 8, 30, 0, 0, time.FixedZone("CEST", 2*3600))

	h := New(KindComparison, "v0.4.0", WithTimestamp(at), WithMetadata("pre", "Pre/core/2026-10-19_08.00"))

	assert.Equal(t, KindComparison, h.Kind)
	assert.Equal(t, APIVersion, h.APIVersion)
	assert.Equal(t, "2026-10-19T06:30:00Z", h.Metadata["timestamp"])
	assert.Equal(t, "v0.4.0", h.Metadata["version"])
	assert.Equal(t, "Pre/core/2026-10-19_08.00", h.Metadata["pre"])
}

func TestNew_NoVersion(t *testing.T) {
	h := New(KindSnapshotList, "")
	_, ok := h.Metadata["version"]
	assert.False(t, ok)
	assert.NotEmpty(t, h.Metadata["timestamp"])
}

func TestKindIsValid(t *testing.T) {
	assert.True(t, KindComparison.IsValid())
	assert.True(t, KindSnapshotList.IsValid())
	assert.False(t, Kind("Recipe").IsValid())
	assert.Equal(t, "Comparison", KindComparison.String())
}
