package chathub_test

import (
	"context"
	"testing"

	"groupchat/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceSession_BroadcastsDistinctCountOnConnect(t *testing.T) {
	gw := newTestGateway(new(MockStorage))
	ctx := context.Background()

	clientU := newMockClient("U")
	_, err := gw.ConnectPresence(ctx, clientU, "U")
	require.NoError(t, err)

	frame, ok := clientU.nextFrameOfType(models.OutboundOnlineCount)
	require.True(t, ok)
	assert.Equal(t, 1, *frame.OnlineCount)

	clientV := newMockClient("V")
	_, err = gw.ConnectPresence(ctx, clientV, "V")
	require.NoError(t, err)

	frame, ok = clientU.nextFrameOfType(models.OutboundOnlineCount)
	require.True(t, ok)
	assert.Equal(t, 2, *frame.OnlineCount)
}

func TestPresenceSession_TwoTabsCountOnce(t *testing.T) {
	gw := newTestGateway(new(MockStorage))
	ctx := context.Background()

	// The same user opens two tabs; a third party watches the count.
	watcher := newMockClient("W")
	_, err := gw.ConnectPresence(ctx, watcher, "W")
	require.NoError(t, err)

	tab1 := newMockClient("U")
	tab1Session, err := gw.ConnectPresence(ctx, tab1, "U")
	require.NoError(t, err)

	tab2 := newMockClient("U")
	tab2Session, err := gw.ConnectPresence(ctx, tab2, "U")
	require.NoError(t, err)

	// watcher connect(1), tab1 connect(2), tab2 connect(still 2)
	counts := drainCounts(watcher, 3)
	require.Len(t, counts, 3)
	assert.Equal(t, []int{1, 2, 2}, counts, "a second tab never bumps the distinct count")

	tab1Session.Disconnect()
	counts = drainCounts(watcher, 1)
	require.Len(t, counts, 1)
	assert.Equal(t, 2, counts[0], "closing one of two tabs keeps the user online")
	assert.True(t, gw.Presence.IsOnline("U"))

	tab2Session.Disconnect()
	counts = drainCounts(watcher, 1)
	require.Len(t, counts, 1)
	assert.Equal(t, 1, counts[0], "closing the last tab drops the user")
	assert.False(t, gw.Presence.IsOnline("U"))
}

func TestPresenceSession_AnyFrameIsAnsweredWithPong(t *testing.T) {
	gw := newTestGateway(new(MockStorage))

	client := newMockClient("U")
	session, err := gw.ConnectPresence(context.Background(), client, "U")
	require.NoError(t, err)

	session.Receive([]byte(`this is not even json`))

	frame, ok := client.nextFrameOfType(models.OutboundPong)
	require.True(t, ok)
	assert.Equal(t, models.OutboundPong, frame.Type)
	assert.Equal(t, 1, gw.Presence.OnlineCount(), "a keepalive changes no state")
}

func TestPresenceSession_DisconnectIdempotent(t *testing.T) {
	gw := newTestGateway(new(MockStorage))

	client := newMockClient("U")
	session, err := gw.ConnectPresence(context.Background(), client, "U")
	require.NoError(t, err)

	session.Disconnect()
	session.Disconnect()

	assert.Equal(t, 0, gw.Presence.OnlineCount())
}

// drainCounts reads n online-count frames from a client.
func drainCounts(c *MockClient, n int) []int {
	var counts []int
	for i := 0; i < n; i++ {
		frame, ok := c.nextFrameOfType(models.OutboundOnlineCount)
		if !ok {
			break
		}
		counts = append(counts, *frame.OnlineCount)
	}
	return counts
}
