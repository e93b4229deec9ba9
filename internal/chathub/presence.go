package chathub

import "sync"

// Registry tracks who is online. It owns two independent pieces of
// ephemeral state: the global identity to connection-handle mapping, and
// the per-room online sets. Everything here is rebuilt from nothing on
// restart and is never durable truth about membership.
//
// All operations are atomic and idempotent, so concurrent connects and
// disconnects of the same identity cannot lose updates or double-count.
type Registry struct {
	mu sync.Mutex

	// handles maps a username to its set of open connection handles. A
	// user with several tabs has several handles but counts once.
	handles map[string]map[string]struct{}

	// roomOnline maps a room identifier to the set of usernames currently
	// online in it.
	roomOnline map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		handles:    make(map[string]map[string]struct{}),
		roomOnline: make(map[string]map[string]struct{}),
	}
}

// AddHandle registers an open connection handle for the user.
func (r *Registry) AddHandle(username, handleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.handles[username]
	if !ok {
		set = make(map[string]struct{})
		r.handles[username] = set
	}
	set[handleID] = struct{}{}
}

// RemoveHandle drops a connection handle. The user stops counting as
// online only when their last handle is gone.
func (r *Registry) RemoveHandle(username, handleID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.handles[username]
	if !ok {
		return
	}
	delete(set, handleID)
	if len(set) == 0 {
		delete(r.handles, username)
	}
}

// OnlineCount returns the number of distinct users with at least one open
// handle.
func (r *Registry) OnlineCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// IsOnline reports whether the user has any open handle.
func (r *Registry) IsOnline(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handles[username]
	return ok
}

// JoinRoom marks the user online in a room. Re-adding is a no-op.
func (r *Registry) JoinRoom(room, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.roomOnline[room]
	if !ok {
		set = make(map[string]struct{})
		r.roomOnline[room] = set
	}
	set[username] = struct{}{}
}

// LeaveRoom removes the user from a room's online set. Removing an absent
// user is a no-op.
func (r *Registry) LeaveRoom(room, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.roomOnline[room]
	if !ok {
		return
	}
	delete(set, username)
	if len(set) == 0 {
		delete(r.roomOnline, room)
	}
}

// RoomOnlineCount returns how many distinct users are online in a room.
func (r *Registry) RoomOnlineCount(room string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.roomOnline[room])
}

// RoomOnlineUsers returns the usernames currently online in a room.
func (r *Registry) RoomOnlineUsers(room string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]string, 0, len(r.roomOnline[room]))
	for u := range r.roomOnline[room] {
		users = append(users, u)
	}
	return users
}
