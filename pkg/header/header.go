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
	"time"
)

// APIVersion is the schema version of documents emitted by macdiff.
const APIVersion = "macdiff.dev/v1"

// Kind names the type of a document.
type Kind string

const (
	KindComparison   Kind = "Comparison"
	KindSnapshotList Kind = "SnapshotList"
)

func (k Kind) String() string {
	return string(k)
}

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindComparison, KindSnapshotList:
		return true
	default:
		return false
	}
}

// Header identifies a document. It is embedded inline in command and API
// output so consumers can tell documents apart.
type Header struct {
	Kind       Kind              `json:"kind,omitempty" yaml:"kind,omitempty"`
	APIVersion string            `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Option configures a Header.
type Option func(*Header)

// WithMetadata adds a metadata entry.
func WithMetadata(key, value string) Option {
	return func(h *Header) {
		h.Metadata[key] = value
	}
}

// WithTimestamp replaces the creation timestamp.
func WithTimestamp(t time.Time) Option {
	return func(h *Header) {
		h.Metadata["timestamp"] = t.UTC().Format(time.RFC3339)
	}
}

// New returns a header of kind stamped with the current time and, when not
// empty, the tool version.
func New(kind Kind, version string, opts ...Option) Header {
	h := Header{
		Kind:       kind,
		APIVersion: APIVersion,
		Metadata: map[string]string{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}
	if version != "" {
		h.Metadata["version"] = version
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}
