package chathub

import (
	"context"
	"log"
	"sync"

	"groupchat/backend/internal/config"
	"groupchat/backend/internal/models"
)

// LocalBroadcaster is the in-process fabric: all subscribers live in this
// process and fan-out is a locked map walk. Events from one publisher reach
// each subscriber in publish order.
type LocalBroadcaster struct {
	mu       sync.RWMutex
	channels map[string]map[*localSubscription]struct{}
}

type localSubscription struct {
	channel string
	ch      chan models.Event
}

func (s *localSubscription) Channel() string             { return s.channel }
func (s *localSubscription) Events() <-chan models.Event { return s.ch }

func NewLocalBroadcaster() *LocalBroadcaster {
	return &LocalBroadcaster{
		channels: make(map[string]map[*localSubscription]struct{}),
	}
}

func (b *LocalBroadcaster) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := &localSubscription{
		channel: channel,
		ch:      make(chan models.Event, config.SendBufferSize),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.channels[channel]
	if !ok {
		subs = make(map[*localSubscription]struct{})
		b.channels[channel] = subs
	}
	subs[sub] = struct{}{}
	return sub, nil
}

func (b *LocalBroadcaster) Unsubscribe(sub Subscription) error {
	ls, ok := sub.(*localSubscription)
	if !ok {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.channels[ls.channel]
	if !ok {
		return nil
	}
	if _, ok := subs[ls]; !ok {
		return nil
	}
	delete(subs, ls)
	if len(subs) == 0 {
		delete(b.channels, ls.channel)
	}
	close(ls.ch)
	return nil
}

func (b *LocalBroadcaster) Publish(ctx context.Context, channel string, ev models.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.channels[channel] {
		select {
		case sub.ch <- ev:
		default:
			// Subscriber buffer full; dropping beats stalling the room.
			log.Printf("WARNING: Dropping %s event for slow subscriber on channel %s", ev.Kind, channel)
		}
	}
	return nil
}

// CloseChannel ends every subscription on the channel.
func (b *LocalBroadcaster) CloseChannel(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.channels[channel] {
		close(sub.ch)
	}
	delete(b.channels, channel)
	return nil
}
