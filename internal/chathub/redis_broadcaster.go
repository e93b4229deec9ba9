package chathub

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"groupchat/backend/internal/config"
	"groupchat/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// channelPrefix namespaces fabric channels inside the shared Redis instance.
const channelPrefix = "chat:"

// RedisBroadcaster relays fan-out through Redis Pub/Sub so sessions on
// different server processes share the same channels. Relay failures are
// returned to the caller instead of hanging.
type RedisBroadcaster struct {
	Redis *redis.Client
}

func NewRedisBroadcaster(rdb *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{Redis: rdb}
}

type redisSubscription struct {
	channel   string
	ch        chan models.Event
	pubsub    *redis.PubSub
	closeOnce sync.Once
}

func (s *redisSubscription) Channel() string             { return s.channel }
func (s *redisSubscription) Events() <-chan models.Event { return s.ch }

func (s *redisSubscription) stop() {
	s.closeOnce.Do(func() {
		s.pubsub.Close()
	})
}

func (b *RedisBroadcaster) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	pubsub := b.Redis.Subscribe(ctx, channelPrefix+channel)

	// Force the SUBSCRIBE round trip so relay failures surface here, not
	// silently inside the receive loop.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	sub := &redisSubscription{
		channel: channel,
		ch:      make(chan models.Event, config.SendBufferSize),
		pubsub:  pubsub,
	}
	go sub.pump()
	return sub, nil
}

// pump moves relay payloads into the subscription's event stream. It owns
// the stream channel and closes it when the relay side ends.
func (s *redisSubscription) pump() {
	defer close(s.ch)

	for msg := range s.pubsub.Channel() {
		var ev models.Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("Error unmarshalling Redis message: %v", err)
			continue
		}

		if ev.Kind == models.EventRoomClosed {
			// Channel destroyed; end the stream like a local close.
			s.stop()
			return
		}

		select {
		case s.ch <- ev:
		default:
			log.Printf("WARNING: Dropping %s event for slow subscriber on channel %s", ev.Kind, s.channel)
		}
	}
}

func (b *RedisBroadcaster) Unsubscribe(sub Subscription) error {
	rs, ok := sub.(*redisSubscription)
	if !ok {
		return nil
	}
	rs.stop()
	return nil
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	if err := b.Redis.Publish(ctx, channelPrefix+channel, payload).Err(); err != nil {
		return err
	}
	return nil
}

// CloseChannel broadcasts a close marker; every process's subscriptions end
// their streams when they see it.
func (b *RedisBroadcaster) CloseChannel(ctx context.Context, channel string) error {
	return b.Publish(ctx, channel, models.Event{Kind: models.EventRoomClosed})
}
