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
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/macdiff/macdiff/pkg/defaults"
	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/k8s/client"
	"github.com/macdiff/macdiff/pkg/snapshot"
)

const (
	labelName      = "app.kubernetes.io/name"
	labelComponent = "app.kubernetes.io/component"
	labelType      = "macdiff.io/snapshot-type"

	annotationFile = "macdiff.io/file-name"

	dataKey      = "snapshot.json"
	fieldManager = "macdiff"
)

var snapshotSelector = labelName + "=macdiff," + labelComponent + "=snapshot"

// ConfigMapStore keeps each snapshot in its own ConfigMap. Snapshot names may
// contain characters ConfigMap names cannot, so the object name is derived
// from the snapshot ID and the artifact file name is kept in an annotation.
type ConfigMapStore struct {
	client    client.Interface
	namespace string
}

// NewConfigMapStore returns a store writing to namespace through cs.
func NewConfigMapStore(cs client.Interface, namespace string) *ConfigMapStore {
	return &ConfigMapStore{client: cs, namespace: namespace}
}

// ObjectName returns the ConfigMap name used for id.
func ObjectName(id snapshot.ID) string {
	return "macdiff-snapshot-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(id.String())).String()
}

func (cs *ConfigMapStore) Save(ctx context.Context, s *snapshot.Snapshot) error {
	if err := s.ID.Validate(); err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	content, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to encode snapshot", err)
	}

	name := ObjectName(s.ID)
	cm := accorev1.ConfigMap(name, cs.namespace).
		WithLabels(map[string]string{
			labelName:      "macdiff",
			labelComponent: "snapshot",
			labelType:      string(s.Type),
		}).
		WithAnnotations(map[string]string{
			annotationFile: s.FileName(),
		}).
		WithData(map[string]string{
			dataKey: string(content),
		})

	slog.Info("applying snapshot ConfigMap",
		"namespace", cs.namespace,
		"name", name,
		"snapshot", s.String())

	_, err = cs.client.CoreV1().ConfigMaps(cs.namespace).Apply(writeCtx, cm, metav1.ApplyOptions{
		FieldManager: fieldManager,
		Force:        true,
	})
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to apply ConfigMap", err,
			map[string]any{"namespace": cs.namespace, "name": name})
	}
	return nil
}

func (cs *ConfigMapStore) Load(ctx context.Context, id snapshot.ID) (*snapshot.Snapshot, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	readCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapReadTimeout)
	defer cancel()

	name := ObjectName(id)
	cm, err := cs.client.CoreV1().ConfigMaps(cs.namespace).Get(readCtx, name, metav1.GetOptions{})
	if err != nil {
		return nil, cs.wrap(err, id, "failed to get ConfigMap")
	}

	content, ok := cm.Data[dataKey]
	if !ok {
		return nil, errors.NewWithContext(errors.ErrCodeInternal, "ConfigMap has no snapshot data",
			map[string]any{"namespace": cs.namespace, "name": name})
	}

	s := snapshot.New(id)
	if err := json.Unmarshal([]byte(content), s); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to decode snapshot", err,
			map[string]any{"namespace": cs.namespace, "name": name})
	}
	return s, nil
}

// List returns the snapshots found by label. ConfigMaps whose file-name
// annotation is missing or malformed are logged and skipped.
func (cs *ConfigMapStore) List(ctx context.Context) (snapshot.IDs, error) {
	readCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapReadTimeout)
	defer cancel()

	list, err := cs.client.CoreV1().ConfigMaps(cs.namespace).List(readCtx, metav1.ListOptions{
		LabelSelector: snapshotSelector,
	})
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to list ConfigMaps", err,
			map[string]any{"namespace": cs.namespace})
	}

	ids := make(snapshot.IDs, 0, len(list.Items))
	for _, cm := range list.Items {
		id, err := snapshot.ParseFileName(cm.Annotations[annotationFile])
		if err != nil {
			slog.Warn("skipping malformed snapshot ConfigMap",
				"namespace", cs.namespace,
				"name", cm.Name,
				"error", err)
			continue
		}
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids, nil
}

func (cs *ConfigMapStore) Delete(ctx context.Context, id snapshot.ID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	if err := cs.client.CoreV1().ConfigMaps(cs.namespace).Delete(writeCtx, ObjectName(id), metav1.DeleteOptions{}); err != nil {
		return cs.wrap(err, id, "failed to delete ConfigMap")
	}
	slog.Info("snapshot ConfigMap deleted",
		"namespace", cs.namespace,
		"snapshot", id.String())
	return nil
}

func (cs *ConfigMapStore) wrap(err error, id snapshot.ID, msg string) error {
	ctx := map[string]any{"namespace": cs.namespace, "snapshot": id.String()}
	if apierrors.IsNotFound(err) {
		return errors.NewWithContext(errors.ErrCodeNotFound, "snapshot not found", ctx)
	}
	return errors.WrapWithContext(errors.ErrCodeUnavailable, fmt.Sprintf("%s %s", msg, ObjectName(id)), err, ctx)
}
