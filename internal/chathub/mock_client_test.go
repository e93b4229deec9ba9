package chathub_test

import (
	"sync"
	"time"

	"groupchat/backend/internal/chathub"
	"groupchat/backend/internal/models"
)

// MockClient is an in-memory transport: frames sent to the session's
// client land in Frames, where tests read them back.
type MockClient struct {
	username string
	Frames   chan models.OutboundFrame

	mu        sync.Mutex
	closeOnce sync.Once
	closed    bool
	closeCode int
}

func newMockClient(username string) *MockClient {
	return &MockClient{
		username: username,
		Frames:   make(chan models.OutboundFrame, 32),
	}
}

func (c *MockClient) GetUsername() string {
	return c.username
}

func (c *MockClient) GetSendChannel() chan<- models.OutboundFrame {
	return c.Frames
}

func (c *MockClient) Run(h chathub.SessionHandler) {
	// Tests drive Receive and Disconnect directly.
}

func (c *MockClient) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.Frames)
	})
}

func (c *MockClient) CloseWithCode(code int, reason string) {
	c.mu.Lock()
	c.closeCode = code
	c.mu.Unlock()
	c.Close()
}

func (c *MockClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// nextFrame waits briefly for the next outbound frame.
func (c *MockClient) nextFrame() (models.OutboundFrame, bool) {
	select {
	case frame, ok := <-c.Frames:
		return frame, ok
	case <-time.After(500 * time.Millisecond):
		return models.OutboundFrame{}, false
	}
}

// nextFrameOfType skips frames until one of the wanted type arrives.
func (c *MockClient) nextFrameOfType(t models.OutboundType) (models.OutboundFrame, bool) {
	deadline := time.After(500 * time.Millisecond)
	for {
		select {
		case frame, ok := <-c.Frames:
			if !ok {
				return models.OutboundFrame{}, false
			}
			if frame.Type == t {
				return frame, true
			}
		case <-deadline:
			return models.OutboundFrame{}, false
		}
	}
}
