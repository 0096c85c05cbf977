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
package api

import (
	"context"
	"log/slog"
	"sync"

	"github.com/macdiff/macdiff/pkg/notify"
)

// eventLog drains a notify.Channel into a bounded history.
type eventLog struct {
	channel *notify.Channel

	mu     sync.RWMutex
	recent []notify.Event
	max    int
}

func newEventLog(max int) *eventLog {
	return &eventLog{
		channel: notify.NewChannel(max),
		max:     max,
	}
}

func (l *eventLog) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-l.channel.C:
			slog.Debug("event received", "id", e.ID, "kind", e.Kind)
			l.mu.Lock()
			l.recent = append(l.recent, e)
			if len(l.recent) > l.max {
				l.recent = l.recent[len(l.recent)-l.max:]
			}
			l.mu.Unlock()
		}
	}
}

// since returns the events recorded after the event with the given ID, or
// all recorded events when id is empty or no longer held.
func (l *eventLog) since(id string, kind notify.Kind) []notify.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := 0
	if id != "" {
		for i, e := range l.recent {
			if e.ID == id {
				start = i + 1
				break
			}
		}
	}

	out := make([]notify.Event, 0, len(l.recent)-start)
	for _, e := range l.recent[start:] {
		if kind != "" && e.Kind != kind {
			continue
		}
		out = append(out, e)
	}
	return out
}
