package chathub

import "groupchat/backend/internal/models"

// Client is the interface for the transport half of a connection. It
// abstracts the underlying socket, allowing sessions to be driven by real
// WebSockets in production and by fakes in tests.
type Client interface {
	// GetUsername returns the authenticated identity bound to the connection.
	GetUsername() string

	// GetSendChannel returns the channel through which outbound frames are
	// handed to the transport. It is a send-only channel.
	GetSendChannel() chan<- models.OutboundFrame

	// Run starts the client's read and write pumps. Inbound frames are fed
	// to the handler; the handler's Disconnect runs when the read side ends.
	Run(h SessionHandler)

	// Close shuts down the send channel, which drains and closes the
	// transport with a normal closure.
	Close()

	// CloseWithCode closes the transport immediately with the given close
	// code, bypassing the send channel.
	CloseWithCode(code int, reason string)
}

// SessionHandler is the protocol side of a connection: a session that
// consumes inbound frames and cleans up when the connection ends.
type SessionHandler interface {
	// Receive processes one raw inbound frame in arrival order.
	Receive(raw []byte)
	// Disconnect releases the session's subscriptions and presence state.
	// Safe to call more than once; only the first call acts.
	Disconnect()
}
