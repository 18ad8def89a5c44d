package realtime

import (
	"sync"

	"github.com/google/uuid"
)

const sendBufferSize = 256

// Connection is one live transport session. The user identity comes from the
// handshake token; presence registration happens later, on the join event.
// The send channel is drained by the transport's write pump.
type Connection struct {
	id     string
	userID string
	role   string

	send      chan []byte
	closeOnce sync.Once
}

func NewConnection(userID, role string) *Connection {
	return &Connection{
		id:     uuid.New().String(),
		userID: userID,
		role:   role,
		send:   make(chan []byte, sendBufferSize),
	}
}

func (c *Connection) ID() string     { return c.id }
func (c *Connection) UserID() string { return c.userID }
func (c *Connection) Role() string   { return c.role }

// Outbox exposes the frames queued for this connection.
func (c *Connection) Outbox() <-chan []byte { return c.send }

// push queues a frame without blocking. A full buffer drops the frame;
// delivery is best effort.
func (c *Connection) push(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close releases the outbox, ending the write pump. Safe to call more than
// once; a disconnect may race a completing relay operation.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}
