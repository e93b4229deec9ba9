package chathub_test

import (
	"context"
	"testing"
	"time"

	"groupchat/backend/internal/chathub"
	"groupchat/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBroadcaster_FanOutIncludesPublisher(t *testing.T) {
	b := chathub.NewLocalBroadcaster()
	ctx := context.Background()

	subA, err := b.Subscribe(ctx, "room1")
	require.NoError(t, err)
	subB, err := b.Subscribe(ctx, "room1")
	require.NoError(t, err)

	ev := models.Event{Kind: models.EventChatMessage, MessageID: 42, Username: "alice"}
	require.NoError(t, b.Publish(ctx, "room1", ev))

	for _, sub := range []chathub.Subscription{subA, subB} {
		select {
		case got := <-sub.Events():
			assert.Equal(t, ev, got)
		case <-time.After(500 * time.Millisecond):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestLocalBroadcaster_ChannelsAreIsolated(t *testing.T) {
	b := chathub.NewLocalBroadcaster()
	ctx := context.Background()

	subOther, err := b.Subscribe(ctx, "room2")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "room1", models.Event{Kind: models.EventChatMessage, MessageID: 1}))

	select {
	case ev := <-subOther.Events():
		t.Fatalf("event leaked across channels: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLocalBroadcaster_PerPublisherOrdering(t *testing.T) {
	b := chathub.NewLocalBroadcaster()
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, "room1")
	require.NoError(t, err)

	for i := 1; i <= 20; i++ {
		require.NoError(t, b.Publish(ctx, "room1", models.Event{Kind: models.EventChatMessage, MessageID: uint(i)}))
	}

	for i := 1; i <= 20; i++ {
		select {
		case got := <-sub.Events():
			assert.Equal(t, uint(i), got.MessageID, "events must arrive in publish order")
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("missing event %d", i)
		}
	}
}

func TestLocalBroadcaster_UnsubscribeEndsStream(t *testing.T) {
	b := chathub.NewLocalBroadcaster()
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, "room1")
	require.NoError(t, err)

	require.NoError(t, b.Unsubscribe(sub))
	// A second unsubscribe of the same subscription is harmless.
	require.NoError(t, b.Unsubscribe(sub))

	_, open := <-sub.Events()
	assert.False(t, open, "stream must end after unsubscribe")

	// Publishing after the last subscriber left must not fail.
	require.NoError(t, b.Publish(ctx, "room1", models.Event{Kind: models.EventOnlineCount}))
}

func TestLocalBroadcaster_CloseChannelReleasesAllSubscribers(t *testing.T) {
	b := chathub.NewLocalBroadcaster()
	ctx := context.Background()

	subA, err := b.Subscribe(ctx, "doomed")
	require.NoError(t, err)
	subB, err := b.Subscribe(ctx, "doomed")
	require.NoError(t, err)

	require.NoError(t, b.CloseChannel(ctx, "doomed"))

	for _, sub := range []chathub.Subscription{subA, subB} {
		select {
		case _, open := <-sub.Events():
			assert.False(t, open, "stream must end when the channel closes")
		case <-time.After(500 * time.Millisecond):
			t.Fatal("stream did not end")
		}
	}
}

func TestLocalBroadcaster_SubscribeRespectsContext(t *testing.T) {
	b := chathub.NewLocalBroadcaster()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Subscribe(ctx, "room1")
	assert.Error(t, err)

	err = b.Publish(ctx, "room1", models.Event{Kind: models.EventOnlineCount})
	assert.Error(t, err)
}
