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
	"fmt"
	"slices"
	"strings"

	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/k8s/client"
	"github.com/macdiff/macdiff/pkg/snapshot"
)

const (
	// ConfigMapScheme prefixes a ConfigMap store location (cm://namespace).
	ConfigMapScheme = "cm://"
	// FileScheme optionally prefixes a directory store location.
	FileScheme = "file://"
)

// Store persists snapshots by ID.
type Store interface {
	// Save writes s under s.ID, replacing any snapshot with the same ID.
	Save(ctx context.Context, s *snapshot.Snapshot) error
	// Load returns the snapshot stored under id. A missing snapshot is
	// reported with errors.ErrCodeNotFound.
	Load(ctx context.Context, id snapshot.ID) (*snapshot.Snapshot, error)
	// List returns the IDs of all stored snapshots ordered by file name.
	List(ctx context.Context) (snapshot.IDs, error)
	// Delete removes the snapshot stored under id.
	Delete(ctx context.Context, id snapshot.ID) error
}

// Open returns the Store for location. An empty location, a plain path or a
// file:// URI select a FileStore; for an empty location outputDir is used.
// cm://namespace selects a ConfigMapStore using the ambient kubeconfig.
func Open(ctx context.Context, location, outputDir string) (Store, error) {
	switch {
	case strings.HasPrefix(location, ConfigMapScheme):
		namespace := strings.Trim(strings.TrimPrefix(location, ConfigMapScheme), "/ ")
		if namespace == "" || strings.Contains(namespace, "/") {
			return nil, errors.New(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid ConfigMap store %q, expected %snamespace", location, ConfigMapScheme))
		}
		cs, _, err := client.GetKubeClient()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to get kubernetes client", err)
		}
		return NewConfigMapStore(cs, namespace), nil
	case location == "":
		return NewFileStore(outputDir), nil
	default:
		return NewFileStore(strings.TrimPrefix(location, FileScheme)), nil
	}
}

func sortIDs(ids snapshot.IDs) {
	slices.SortFunc(ids, func(a, b snapshot.ID) int {
		return strings.Compare(a.FileName(), b.FileName())
	})
}
