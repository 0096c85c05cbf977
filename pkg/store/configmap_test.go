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

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/snapshot"
)

func TestConfigMapStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	cs := fake.NewClientset()
	st := NewConfigMapStore(cs, "network-ops")

	s := testSnapshot(t, snapshot.TypePre, "core upgrade", "2025-03-14_21.30", "aa:bb:cc:00:00:01")
	require.NoError(t, st.Save(ctx, s))

	cm, err := cs.CoreV1().ConfigMaps("network-ops").Get(ctx, ObjectName(s.ID), metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Pre", cm.Labels[labelType])
	assert.Equal(t, s.FileName(), cm.Annotations[annotationFile])
	assert.Contains(t, cm.Data[dataKey], `"mac":"aa:bb:cc:00:00:01"`)

	got, err := st.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Endpoints(), got.Endpoints())

	ids, err := st.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot.IDs{s.ID}, ids)

	require.NoError(t, st.Delete(ctx, s.ID))
	_, err = st.Load(ctx, s.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestConfigMapStoreListSkipsMalformed(t *testing.T) {
	ctx := context.Background()
	bad := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "macdiff-snapshot-broken",
			Namespace: "network-ops",
			Labels: map[string]string{
				labelName:      "macdiff",
				labelComponent: "snapshot",
			},
			Annotations: map[string]string{annotationFile: "broken.json"},
		},
	}
	other := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "unrelated", Namespace: "network-ops"},
	}
	cs := fake.NewClientset(bad, other)
	st := NewConfigMapStore(cs, "network-ops")

	s := testSnapshot(t, snapshot.TypePost, "core", "2025-03-14_22.05", "aa:bb:cc:00:00:01")
	require.NoError(t, st.Save(ctx, s))

	ids, err := st.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot.IDs{s.ID}, ids)
}

func TestObjectNameIsStable(t *testing.T) {
	id := snapshot.ID{Type: snapshot.TypePre, Name: "Core Upgrade", Timestamp: "2025-03-14_21.30"}
	assert.Equal(t, ObjectName(id), ObjectName(id))
	assert.Regexp(t, `^macdiff-snapshot-[0-9a-f-]{36}$`, ObjectName(id))

	other := id
	other.Type = snapshot.TypePost
	assert.NotEqual(t, ObjectName(id), ObjectName(other))
}
