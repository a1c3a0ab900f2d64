// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Pub/Sub channel used when none is configured.
const DefaultChannel = "docforge:events"

// publishTimeout bounds a single PUBLISH round trip.
const publishTimeout = 2 * time.Second

// RedisPublisher publishes events as JSON on a Valkey Pub/Sub channel.
// Each publish runs in its own goroutine, detached from the caller's
// context, so slow or unavailable Valkey never delays the caller.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	wg      sync.WaitGroup
}

// NewRedisPublisher creates a publisher on the given channel.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Emit publishes e asynchronously. Failures are logged.
func (p *RedisPublisher) Emit(_ context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		slog.Warn("event encode failed", "type", e.Type, "error", err)
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
			slog.Warn("event publish failed", "type", e.Type, "channel", p.channel, "error", err)
		}
	}()
}

// Wait blocks until every in-flight publish has finished. Called on
// shutdown and in tests.
func (p *RedisPublisher) Wait() {
	p.wg.Wait()
}
