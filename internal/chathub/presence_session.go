package chathub

import (
	"context"
	"log"
	"sync"

	"groupchat/backend/internal/models"

	"github.com/google/uuid"
)

// OnlineStatusChannel is the single global channel carrying "who is online
// anywhere" updates, independent of any room.
const OnlineStatusChannel = "online-status"

// PresenceSession serves the global online-status channel: it registers one
// connection handle for the user, answers every inbound frame with a pong,
// and rebroadcasts the distinct-user online count on connect and
// disconnect.
type PresenceSession struct {
	gateway  *Gateway
	client   Client
	username string
	handleID string
	sub      Subscription

	closeOnce sync.Once
}

func newPresenceSession(g *Gateway, client Client, username string) *PresenceSession {
	return &PresenceSession{
		gateway:  g,
		client:   client,
		username: username,
		handleID: uuid.New().String(),
	}
}

// Connect registers the connection handle, joins the global channel, and
// announces the updated count to every subscriber.
func (s *PresenceSession) Connect(ctx context.Context) error {
	sub, err := s.gateway.Fabric.Subscribe(ctx, OnlineStatusChannel)
	if err != nil {
		log.Printf("WARNING: Subscribe to %s failed, retrying once: %v", OnlineStatusChannel, err)
		sub, err = s.gateway.Fabric.Subscribe(ctx, OnlineStatusChannel)
		if err != nil {
			return err
		}
	}
	s.sub = sub

	s.gateway.Presence.AddHandle(s.username, s.handleID)

	go s.dispatchLoop()

	s.broadcastOnlineCount(ctx)
	return nil
}

// Receive treats any inbound frame as a keepalive and answers with a pong.
func (s *PresenceSession) Receive(raw []byte) {
	select {
	case s.client.GetSendChannel() <- models.NewPongFrame():
	default:
		log.Printf("WARNING: Dropping pong for slow client %s", s.username)
	}
}

func (s *PresenceSession) dispatchLoop() {
	for ev := range s.sub.Events() {
		if ev.Kind != models.EventOnlineCount {
			continue
		}
		select {
		case s.client.GetSendChannel() <- models.NewOnlineCountFrame(ev.OnlineCount):
		default:
			log.Printf("WARNING: Dropping online count for slow client %s", s.username)
		}
	}

	s.client.Close()
}

func (s *PresenceSession) broadcastOnlineCount(ctx context.Context) {
	ev := models.Event{
		Kind:        models.EventOnlineCount,
		OnlineCount: s.gateway.Presence.OnlineCount(),
	}
	if err := s.gateway.Fabric.Publish(ctx, OnlineStatusChannel, ev); err != nil {
		log.Printf("ERROR: Online count broadcast failed: %v", err)
	}
}

// Disconnect drops the connection handle and rebroadcasts the count. The
// user stays counted while any other handle of theirs remains open.
func (s *PresenceSession) Disconnect() {
	s.closeOnce.Do(func() {
		if s.sub != nil {
			if err := s.gateway.Fabric.Unsubscribe(s.sub); err != nil {
				log.Printf("ERROR: Unsubscribe from %s failed: %v", OnlineStatusChannel, err)
			}
		}

		s.gateway.Presence.RemoveHandle(s.username, s.handleID)
		s.broadcastOnlineCount(context.Background())
	})
}
