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

package notify

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/macdiff/macdiff/pkg/errors"
	"github.com/macdiff/macdiff/pkg/snapshot"
)

// Kind identifies the event type.
type Kind string

const (
	// SnapshotCreated follows a successful snapshot save.
	SnapshotCreated Kind = "snapshot.created"
	// ComparisonFinished follows a rendered comparison.
	ComparisonFinished Kind = "comparison.finished"
)

// Event is one announcement.
type Event struct {
	ID   string    `json:"id" yaml:"id"`
	Kind Kind      `json:"kind" yaml:"kind"`
	Time time.Time `json:"time" yaml:"time"`

	// Snapshot is set for SnapshotCreated.
	Snapshot  *snapshot.ID `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
	Endpoints int          `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
	Failed    []string     `json:"failed,omitempty" yaml:"failed,omitempty"`

	// Pre and Post are set for ComparisonFinished.
	Pre     *snapshot.ID   `json:"pre,omitempty" yaml:"pre,omitempty"`
	Post    *snapshot.ID   `json:"post,omitempty" yaml:"post,omitempty"`
	Summary map[string]int `json:"summary,omitempty" yaml:"summary,omitempty"`
	Report  string         `json:"report,omitempty" yaml:"report,omitempty"`
}

// NewEvent returns an event of kind with a fresh ID and the current time.
func NewEvent(kind Kind) Event {
	return Event{
		ID:   uuid.New().String(),
		Kind: kind,
		Time: time.Now().UTC(),
	}
}

// Notifier delivers events.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// Channel delivers events to an in-process consumer. Notify blocks until
// the event is received or ctx is done.
type Channel struct {
	C chan Event
}

// NewChannel returns a Channel with the given buffer size.
func NewChannel(buffer int) *Channel {
	return &Channel{C: make(chan Event, buffer)}
}

func (c *Channel) Notify(ctx context.Context, e Event) error {
	select {
	case c.C <- e:
		return nil
	case <-ctx.Done():
		return errors.Wrap(errors.ErrCodeTimeout, "event not delivered", ctx.Err())
	}
}

// Multi delivers every event to each notifier in turn. All notifiers are
// tried; their errors are joined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
