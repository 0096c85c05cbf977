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
	"os"
	"path/filepath"
	"strings"

	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/serializer"
	"github.com/macdiff/macdiff/pkg/snapshot"
)

// SnapshotDir is the directory below the output directory holding artifacts.
const SnapshotDir = "Snapshots"

// FileStore keeps snapshot artifacts in a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at <outputDir>/Snapshots.
func NewFileStore(outputDir string) *FileStore {
	return &FileStore{dir: filepath.Join(outputDir, SnapshotDir)}
}

// Dir returns the artifact directory.
func (fs *FileStore) Dir() string {
	return fs.dir
}

// Path returns the artifact path for id.
func (fs *FileStore) Path(id snapshot.ID) string {
	return filepath.Join(fs.dir, id.FileName())
}

func (fs *FileStore) Save(ctx context.Context, s *snapshot.Snapshot) error {
	if err := s.ID.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeTimeout, "save canceled", err)
	}

	data, err := serializer.Marshal(serializer.FormatJSON, s)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to encode snapshot", err)
	}

	path := fs.Path(s.ID)
	if err := serializer.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to write snapshot", err,
			map[string]any{"path": path})
	}

	slog.Info("snapshot saved",
		"path", path,
		"endpoints", s.Len())
	return nil
}

func (fs *FileStore) Load(ctx context.Context, id snapshot.ID) (*snapshot.Snapshot, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	path := fs.Path(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewWithContext(errors.ErrCodeNotFound, "snapshot not found",
				map[string]any{"snapshot": id.String()})
		}
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to read snapshot", err,
			map[string]any{"path": path})
	}

	s := snapshot.New(id)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to decode snapshot", err,
			map[string]any{"path": path})
	}
	return s, nil
}

// List scans the artifact directory. Files whose names do not follow the
// artifact naming scheme are logged and skipped. A missing directory holds
// no snapshots.
func (fs *FileStore) List(ctx context.Context) (snapshot.IDs, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return snapshot.IDs{}, nil
		}
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to read snapshot directory", err,
			map[string]any{"path": fs.dir})
	}

	ids := make(snapshot.IDs, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		// temp files left by an interrupted WriteFile
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		id, err := snapshot.ParseFileName(name)
		if err != nil {
			slog.Warn("skipping malformed snapshot file",
				"path", filepath.Join(fs.dir, name),
				"error", err)
			continue
		}
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids, nil
}

func (fs *FileStore) Delete(ctx context.Context, id snapshot.ID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	path := fs.Path(id)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.NewWithContext(errors.ErrCodeNotFound, "snapshot not found",
				map[string]any{"snapshot": id.String()})
		}
		return errors.WrapWithContext(errors.ErrCodeInternal, fmt.Sprintf("failed to delete %s", id), err,
			map[string]any{"path": path})
	}
	slog.Info("snapshot deleted", "path", path)
	return nil
}
