package realtime

import (
	"sync"
)

// FrameWriter pushes one frame to the underlying transport. The websocket
// adapter implements it; tests substitute a recorder.
type FrameWriter interface {
	WriteFrame(frame Frame) error
	Close() error
}

// Connection is one authenticated websocket session. Frames pass through a
// bounded buffer drained by a single writer goroutine, so a slow client can
// never block a broadcast; when the buffer is full the frame is dropped.
type Connection struct {
	userID string
	send   chan Frame

	closeOnce sync.Once
	done      chan struct{}
}

// NewConnection builds a connection for the given user with a bounded send
// buffer.
func NewConnection(userID string, bufferSize int) *Connection {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Connection{
		userID: userID,
		send:   make(chan Frame, bufferSize),
		done:   make(chan struct{}),
	}
}

// UserID returns the authenticated subject behind the connection.
func (c *Connection) UserID() string {
	return c.userID
}

// Enqueue offers a frame to the connection. Returns false when the
// connection is closed or its buffer is full; the frame is dropped either way.
func (c *Connection) Enqueue(frame Frame) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close terminates the connection; pending frames are discarded.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Done is closed when the connection terminates.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// WritePump drains the send buffer into the writer until the connection
// closes or a write fails. Runs on its own goroutine per connection.
func (c *Connection) WritePump(writer FrameWriter) {
	defer func() { _ = writer.Close() }()
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			if err := writer.WriteFrame(frame); err != nil {
				c.Close()
				return
			}
		}
	}
}
