package chathub

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"groupchat/backend/internal/models"
	"groupchat/backend/internal/storage"
)

// SessionState is the lifecycle phase of a connection session.
type SessionState int32

const (
	StateConnecting SessionState = iota
	StateAuthenticating
	StateJoining
	StateActive
	StateClosing
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateJoining:
		return "joining"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// ChatSession is the per-connection state machine for a room channel. One
// goroutine feeds it inbound frames via Receive; another forwards fabric
// events to the client. Cross-session effects go only through the fabric
// and the registry.
type ChatSession struct {
	gateway  *Gateway
	client   Client
	username string
	roomName string

	// room stays nil when setup failed or timed out. The session is then
	// degraded: open, subscribed, but room-dependent operations no-op.
	room *models.ChatGroup
	sub  Subscription

	state     atomic.Int32
	closeOnce sync.Once
}

func newChatSession(g *Gateway, client Client, username, roomName string) *ChatSession {
	s := &ChatSession{
		gateway:  g,
		client:   client,
		username: username,
		roomName: roomName,
	}
	s.setState(StateConnecting)
	return s
}

func (s *ChatSession) setState(st SessionState) { s.state.Store(int32(st)) }

// State returns the session's current lifecycle phase.
func (s *ChatSession) State() SessionState { return SessionState(s.state.Load()) }

// Connect subscribes the session to its room channel and performs room
// setup. The caller bounds the whole call with the connect deadline; an
// expired deadline here is fatal. Room setup runs under its own shorter
// deadline, and its failure alone leaves a degraded but open session.
func (s *ChatSession) Connect(ctx context.Context) error {
	s.setState(StateJoining)

	sub, err := s.gateway.Fabric.Subscribe(ctx, s.roomName)
	if err != nil {
		log.Printf("WARNING: Subscribe to %s failed, retrying once: %v", s.roomName, err)
		sub, err = s.gateway.Fabric.Subscribe(ctx, s.roomName)
		if err != nil {
			return err
		}
	}
	s.sub = sub

	setupCtx, cancel := context.WithTimeout(ctx, s.gateway.SetupTimeout)
	defer cancel()

	if err := s.setupRoom(setupCtx); err != nil {
		if ctx.Err() != nil {
			// The overall connect deadline fired; the connection must not
			// be left half-open.
			return ctx.Err()
		}
		log.Printf("WARNING: Room setup for %s did not complete, connection remains open: %v", s.roomName, err)
	}

	s.setState(StateActive)
	go s.dispatchLoop()
	return nil
}

// setupRoom resolves the room, marks the user online in it, and announces
// the new online count. The public room is created on first access; any
// other room must already exist.
func (s *ChatSession) setupRoom(ctx context.Context) error {
	var (
		room *models.ChatGroup
		err  error
	)
	if s.roomName == models.PublicRoomName {
		room, err = s.gateway.Storage.GetOrCreatePublicRoom(ctx)
	} else {
		room, err = s.gateway.Storage.GetRoomByName(ctx, s.roomName)
	}
	if err != nil {
		return err
	}

	s.room = room
	s.gateway.Presence.JoinRoom(s.roomName, s.username)
	s.broadcastOnlineCount(ctx)
	return nil
}

func (s *ChatSession) broadcastOnlineCount(ctx context.Context) {
	ev := models.Event{
		Kind:        models.EventOnlineCount,
		OnlineCount: s.gateway.Presence.RoomOnlineCount(s.roomName),
	}
	if err := s.gateway.Fabric.Publish(ctx, s.roomName, ev); err != nil {
		log.Printf("ERROR: Online count broadcast for room %s failed: %v", s.roomName, err)
	}
}

// Receive processes one inbound client frame. Malformed frames are logged
// and dropped; the session never dies over input.
func (s *ChatSession) Receive(raw []byte) {
	frame, kind := models.ParseInbound(raw)
	switch kind {
	case models.InboundSeen:
		s.handleSeen()
	case models.InboundMessage:
		s.handleMessage(frame.Body)
	case models.InboundInvalid:
		log.Printf("WARNING: Dropping malformed frame from %s", s.username)
	}
}

func (s *ChatSession) handleSeen() {
	if s.room == nil {
		log.Printf("WARNING: Ignoring seen from %s, room %s not set up", s.username, s.roomName)
		return
	}
	if err := s.gateway.Storage.MarkSeen(context.Background(), s.roomName, s.username); err != nil {
		log.Printf("ERROR: Failed to mark messages seen in %s for %s: %v", s.roomName, s.username, err)
	}
}

func (s *ChatSession) handleMessage(body string) {
	if s.room == nil {
		log.Printf("WARNING: Ignoring message from %s, room %s not set up", s.username, s.roomName)
		return
	}

	ctx := context.Background()
	msg, outcome, err := s.gateway.Storage.CreateMessage(ctx, s.roomName, s.username, body, "")
	if err != nil {
		log.Printf("ERROR: Failed to save message for room %s: %v", s.roomName, err)
		return
	}
	if outcome == storage.Skipped {
		return
	}

	// Broadcast the ID only; each subscriber re-fetches the message before
	// forwarding it to its client.
	ev := models.Event{
		Kind:      models.EventChatMessage,
		MessageID: msg.ID,
		Username:  s.username,
	}
	if err := s.gateway.Fabric.Publish(ctx, s.roomName, ev); err != nil {
		log.Printf("ERROR: Publish to room %s failed: %v", s.roomName, err)
	}
}

// dispatchLoop forwards fabric events to the client until the subscription
// ends, then closes the transport.
func (s *ChatSession) dispatchLoop() {
	for ev := range s.sub.Events() {
		switch ev.Kind {
		case models.EventChatMessage:
			s.deliverMessage(ev)
		case models.EventOnlineCount:
			s.send(models.NewOnlineCountFrame(ev.OnlineCount))
		case models.EventRoomClosed:
			// The stream is about to end; nothing to forward.
		default:
			log.Printf("WARNING: Unknown event kind %q on room %s", ev.Kind, s.roomName)
		}
	}

	// Subscription released: unsubscribe or room destruction.
	s.client.Close()
}

// deliverMessage fetches the announced message and forwards it. Messages
// that vanished or lost their content in the meantime are dropped silently.
func (s *ChatSession) deliverMessage(ev models.Event) {
	ctx := context.Background()

	msg, err := s.gateway.Storage.GetMessage(ctx, ev.MessageID)
	if err != nil {
		log.Printf("ERROR: Failed to fetch message %d: %v", ev.MessageID, err)
		return
	}
	if msg == nil || !msg.HasContent() {
		log.Printf("WARNING: Empty or missing message with ID %d", ev.MessageID)
		return
	}

	if err := s.gateway.Storage.MarkDelivered(ctx, msg.ID, s.username); err != nil {
		log.Printf("ERROR: Failed to record delivery of message %d to %s: %v", msg.ID, s.username, err)
	}

	s.send(models.NewMessageFrame(msg))
}

func (s *ChatSession) send(frame models.OutboundFrame) {
	select {
	case s.client.GetSendChannel() <- frame:
	default:
		log.Printf("WARNING: Dropping %s frame for slow client %s", frame.Type, s.username)
	}
}

// Disconnect releases everything the session may hold. It is defensive
// against partial setup: the subscription or the room may never have
// materialized, and cleanup still runs exactly once.
func (s *ChatSession) Disconnect() {
	s.closeOnce.Do(func() {
		s.setState(StateClosing)

		if s.sub != nil {
			if err := s.gateway.Fabric.Unsubscribe(s.sub); err != nil {
				log.Printf("ERROR: Unsubscribe from %s failed: %v", s.roomName, err)
			}
		}

		if s.room != nil {
			s.gateway.Presence.LeaveRoom(s.roomName, s.username)
			s.broadcastOnlineCount(context.Background())
		}

		s.setState(StateClosed)
	})
}
