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
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/macdiff/macdiff/pkg/defaults"
	"github.com/macdiff/macdiff/pkg/errors"
)

// DefaultQueue is the queue events are published to.
const DefaultQueue = "macdiff.events"

type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQP publishes events as persistent JSON messages to a durable queue
// through the default exchange.
type AMQP struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    publisher
	queue string
}

// DialAMQP connects to url and declares queue.
func DialAMQP(url, queue string) (*AMQP, error) {
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial: amqp.DefaultDial(defaults.AMQPDialTimeout),
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to connect to AMQP broker", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to open AMQP channel", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to declare queue", err,
			map[string]any{"queue": queue})
	}

	slog.Info("connected to AMQP broker", "queue", queue)
	a := newAMQP(ch, queue)
	a.conn = conn
	return a, nil
}

func newAMQP(ch publisher, queue string) *AMQP {
	return &AMQP{ch: ch, queue: queue}
}

// Notify publishes e. The channel is shared, so publishes are serialized.
func (a *AMQP) Notify(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeTimeout, "event not published", err)
	}

	body, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to encode event", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ch == nil {
		return errors.New(errors.ErrCodeUnavailable, "AMQP notifier is closed")
	}
	err = a.ch.Publish("", a.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.ID,
		Timestamp:    e.Time,
		Type:         string(e.Kind),
		AppId:        "macdiff",
		Body:         body,
	})
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to publish event", err,
			map[string]any{"queue": a.queue, "kind": e.Kind})
	}
	slog.Debug("event published", "queue", a.queue, "kind", e.Kind, "id", e.ID)
	return nil
}

// Close closes the channel and the connection.
func (a *AMQP) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	if a.ch != nil {
		err = a.ch.Close()
		a.ch = nil
	}
	if a.conn != nil {
		if cerr := a.conn.Close(); err == nil {
			err = cerr
		}
		a.conn = nil
	}
	return err
}
