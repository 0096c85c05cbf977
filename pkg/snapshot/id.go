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

package snapshot

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/macdiff/macdiff/pkg/errors"
)

// Type tells whether a snapshot was taken before or after a change window.
type Type string

const (
	// TypePre is taken before the change.
	TypePre Type = "Pre"
	// TypePost is taken after the change.
	TypePost Type = "Post"
)

// Unknown is the placeholder for attributes that could not be resolved.
const Unknown = "Unknown"

// TimestampLayout is the minute-granularity timestamp used in IDs.
const TimestampLayout = "2006-01-02_15.04"

// FileExt is the artifact file extension.
const FileExt = ".json"

var fileNamePattern = regexp.MustCompile(`^\[(.*)\]_\[(.*)\]_\[(.*)\]\.json$`)

// ParseType accepts "pre" and "post" in any case.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pre":
		return TypePre, nil
	case "post":
		return TypePost, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid snapshot type %q, expected Pre or Post", s))
	}
}

// SupportedTypes lists the valid types.
func SupportedTypes() []string {
	return []string{string(TypePre), string(TypePost)}
}

// ID identifies a persisted snapshot.
type ID struct {
	Type      Type   `json:"type" yaml:"type"`
	Name      string `json:"name" yaml:"name"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// NewID returns the ID for a snapshot saved at t.
func NewID(typ Type, name string, t time.Time) ID {
	return ID{Type: typ, Name: name, Timestamp: t.Format(TimestampLayout)}
}

// Validate checks the ID can be encoded as a file name and parsed back.
func (id ID) Validate() error {
	if id.Type != TypePre && id.Type != TypePost {
		return errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid snapshot type %q", id.Type))
	}
	if strings.TrimSpace(id.Name) == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "snapshot name is empty")
	}
	if strings.ContainsAny(id.Name, "[]/\\") {
		return errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("snapshot name %q must not contain brackets or path separators", id.Name))
	}
	if _, err := time.Parse(TimestampLayout, id.Timestamp); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid snapshot timestamp %q", id.Timestamp), err)
	}
	return nil
}

// FileName returns the artifact file name for the ID.
func (id ID) FileName() string {
	return fmt.Sprintf("[%s]_[%s]_[%s]%s", id.Type, id.Name, id.Timestamp, FileExt)
}

// String renders the ID as type/name/timestamp, the form used in API paths.
func (id ID) String() string {
	return fmt.Sprintf("%s/%s/%s", id.Type, id.Name, id.Timestamp)
}

// Time parses the timestamp.
func (id ID) Time() (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, id.Timestamp, time.Local)
}

// ParseFileName decodes an artifact file name into an ID.
func ParseFileName(name string) (ID, error) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return ID{}, errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("%q is not a snapshot file name", name))
	}

	typ, err := ParseType(m[1])
	if err != nil {
		return ID{}, err
	}
	id := ID{Type: typ, Name: m[2], Timestamp: m[3]}
	if err := id.Validate(); err != nil {
		return ID{}, err
	}
	return id, nil
}

// ParseID decodes the type/name/timestamp form produced by String.
func ParseID(s string) (ID, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return ID{}, errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid snapshot id %q, expected type/name/timestamp", s))
	}
	typ, err := ParseType(parts[0])
	if err != nil {
		return ID{}, err
	}
	id := ID{Type: typ, Name: parts[1], Timestamp: parts[2]}
	if err := id.Validate(); err != nil {
		return ID{}, err
	}
	return id, nil
}

// IDs is a listing of snapshots.
type IDs []ID

// TableHeader implements serializer.Tabular.
func (l IDs) TableHeader() []string {
	return []string{"TYPE", "NAME", "TIMESTAMP"}
}

// TableRows implements serializer.Tabular.
func (l IDs) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, id := range l {
		rows = append(rows, []string{string(id.Type), id.Name, id.Timestamp})
	}
	return rows
}
