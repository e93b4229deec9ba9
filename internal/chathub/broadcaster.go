package chathub

import (
	"context"

	"groupchat/backend/internal/models"
)

// Subscription is one session's attachment to a named broadcast channel.
// Its event stream ends when the session unsubscribes or the channel is
// closed; consumers range over Events until it does.
type Subscription interface {
	// Channel returns the name of the subscribed channel.
	Channel() string
	// Events returns the stream of events published to the channel for the
	// lifetime of the subscription.
	Events() <-chan models.Event
}

// Broadcaster is the fan-out fabric: named channels any session may
// subscribe to, where publishing delivers to every current subscriber,
// including the publisher. Two implementations exist with an identical
// contract: an in-process one and a Redis-relayed one for multi-server
// deployments.
type Broadcaster interface {
	Subscribe(ctx context.Context, channel string) (Subscription, error)
	Unsubscribe(sub Subscription) error
	Publish(ctx context.Context, channel string, ev models.Event) error
	// CloseChannel releases every subscription on the channel. Used when a
	// room is destroyed.
	CloseChannel(ctx context.Context, channel string) error
}
