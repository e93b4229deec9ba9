package chathub_test

import (
	"sync"
	"testing"

	"groupchat/backend/internal/chathub"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_DistinctUserCount(t *testing.T) {
	r := chathub.NewRegistry()

	r.AddHandle("alice", "h1")
	r.AddHandle("alice", "h2")
	r.AddHandle("bob", "h3")

	assert.Equal(t, 2, r.OnlineCount(), "two distinct users, not three handles")
	assert.True(t, r.IsOnline("alice"))

	r.RemoveHandle("alice", "h1")
	assert.Equal(t, 2, r.OnlineCount(), "alice still has one open handle")
	assert.True(t, r.IsOnline("alice"))

	r.RemoveHandle("alice", "h2")
	assert.Equal(t, 1, r.OnlineCount())
	assert.False(t, r.IsOnline("alice"))
}

func TestRegistry_RemoveHandleIdempotent(t *testing.T) {
	r := chathub.NewRegistry()

	r.AddHandle("alice", "h1")
	r.RemoveHandle("alice", "h1")
	r.RemoveHandle("alice", "h1")
	r.RemoveHandle("bob", "never-added")

	assert.Equal(t, 0, r.OnlineCount())
}

func TestRegistry_RoomOnlineNeverDoubleCounts(t *testing.T) {
	r := chathub.NewRegistry()

	r.JoinRoom("public-chat", "alice")
	r.JoinRoom("public-chat", "alice")
	r.JoinRoom("public-chat", "bob")

	assert.Equal(t, 2, r.RoomOnlineCount("public-chat"))
	assert.ElementsMatch(t, []string{"alice", "bob"}, r.RoomOnlineUsers("public-chat"))

	r.LeaveRoom("public-chat", "alice")
	r.LeaveRoom("public-chat", "alice")
	assert.Equal(t, 1, r.RoomOnlineCount("public-chat"))

	r.LeaveRoom("public-chat", "bob")
	assert.Equal(t, 0, r.RoomOnlineCount("public-chat"))
}

func TestRegistry_RoomsAreIndependent(t *testing.T) {
	r := chathub.NewRegistry()

	r.JoinRoom("room-a", "alice")
	r.JoinRoom("room-b", "alice")

	assert.Equal(t, 1, r.RoomOnlineCount("room-a"))
	assert.Equal(t, 1, r.RoomOnlineCount("room-b"))
	assert.Equal(t, 0, r.OnlineCount(), "room presence does not imply a global handle")

	r.LeaveRoom("room-a", "alice")
	assert.Equal(t, 0, r.RoomOnlineCount("room-a"))
	assert.Equal(t, 1, r.RoomOnlineCount("room-b"))
}

func TestRegistry_ConcurrentHandleChurn(t *testing.T) {
	r := chathub.NewRegistry()
	r.AddHandle("alice", "keeper")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%26))
			r.AddHandle("alice", id)
			r.RemoveHandle("alice", id)
		}(i)
	}
	wg.Wait()

	// The kept handle must survive any interleaving of churn.
	assert.True(t, r.IsOnline("alice"))
	assert.Equal(t, 1, r.OnlineCount())
}
