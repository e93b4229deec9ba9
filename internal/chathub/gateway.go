package chathub

import (
	"context"
	"log"
	"time"

	"groupchat/backend/internal/config"
	"groupchat/backend/internal/storage"

	"github.com/gorilla/websocket"
)

// Authenticator resolves a bearer token to an identity. Token issuance and
// account management live outside the messaging core.
type Authenticator interface {
	Authenticate(token string) (username string, err error)
}

// Gateway binds authenticated transport connections to sessions. It is the
// only component that creates sessions, and it guarantees each one is
// disconnected exactly once no matter how the connection ends.
type Gateway struct {
	Storage  storage.Storage
	Fabric   Broadcaster
	Presence *Registry
	Auth     Authenticator

	ConnectTimeout time.Duration
	SetupTimeout   time.Duration
}

func NewGateway(s storage.Storage, fabric Broadcaster, presence *Registry, auth Authenticator) *Gateway {
	return &Gateway{
		Storage:        s,
		Fabric:         fabric,
		Presence:       presence,
		Auth:           auth,
		ConnectTimeout: config.ConnectTimeout,
		SetupTimeout:   config.RoomSetupTimeout,
	}
}

// ConnectChat runs the chat connect sequence for an already-authenticated
// identity on any transport. On success the session is live and its fabric
// events flow; the caller starts the client pumps.
func (g *Gateway) ConnectChat(ctx context.Context, client Client, username, roomName string) (*ChatSession, error) {
	session := newChatSession(g, client, username, roomName)
	if err := session.Connect(ctx); err != nil {
		session.Disconnect()
		return nil, err
	}
	return session, nil
}

// ConnectPresence runs the presence connect sequence for an authenticated
// identity.
func (g *Gateway) ConnectPresence(ctx context.Context, client Client, username string) (*PresenceSession, error) {
	session := newPresenceSession(g, client, username)
	if err := session.Connect(ctx); err != nil {
		session.Disconnect()
		return nil, err
	}
	return session, nil
}

// ServeChat drives a freshly upgraded WebSocket connection through
// authentication and the timed connect sequence, then hands it to the
// pumps. Authentication failure closes with 4000; a connect timeout or
// setup error closes with 1011.
func (g *Gateway) ServeChat(conn *websocket.Conn, token, roomName string) {
	ctx, cancel := context.WithTimeout(context.Background(), g.ConnectTimeout)
	defer cancel()

	username, err := g.Auth.Authenticate(token)
	if err != nil {
		log.Printf("WARNING: Rejecting unauthenticated chat connection: %v", err)
		closeWithCode(conn, config.CloseCodeAuthFailure, "unauthorized")
		return
	}

	client := NewWebSocketClient(username, conn)
	session, err := g.ConnectChat(ctx, client, username, roomName)
	if err != nil {
		log.Printf("ERROR: Chat connect for %s in %s failed: %v", username, roomName, err)
		client.CloseWithCode(config.CloseCodeInternal, "internal error")
		return
	}

	client.Run(session)
}

// ServePresence is ServeChat's counterpart for the online-status channel.
func (g *Gateway) ServePresence(conn *websocket.Conn, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), g.ConnectTimeout)
	defer cancel()

	username, err := g.Auth.Authenticate(token)
	if err != nil {
		log.Printf("WARNING: Rejecting unauthenticated presence connection: %v", err)
		closeWithCode(conn, config.CloseCodeAuthFailure, "unauthorized")
		return
	}

	client := NewWebSocketClient(username, conn)
	session, err := g.ConnectPresence(ctx, client, username)
	if err != nil {
		log.Printf("ERROR: Presence connect for %s failed: %v", username, err)
		client.CloseWithCode(config.CloseCodeInternal, "internal error")
		return
	}

	client.Run(session)
}

// DestroyRoom deletes a room and releases every subscription on its
// broadcast channel, local or remote.
func (g *Gateway) DestroyRoom(ctx context.Context, roomName string) error {
	if err := g.Storage.DeleteRoom(ctx, roomName); err != nil {
		return err
	}
	if err := g.Fabric.CloseChannel(ctx, roomName); err != nil {
		log.Printf("ERROR: Closing channel %s failed: %v", roomName, err)
		return err
	}
	return nil
}

func closeWithCode(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(config.WriteWait)
	msg := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		log.Printf("ERROR: Failed to write close frame: %v", err)
	}
	conn.Close()
}
