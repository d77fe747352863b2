package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// Conn is one client connection. Outgoing messages are queued on a
// buffered channel and written by WritePump.
type Conn struct {
	id          string
	send        chan []byte
	done        chan struct{}
	closeOnce   sync.Once
	connectedAt time.Time
}

// NewConn creates a connection with an empty send queue
func NewConn(id string) *Conn {
	return &Conn{
		id:          id,
		send:        make(chan []byte, sendBufferSize),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
	}
}

// ID returns the connection id
func (c *Conn) ID() string {
	return c.id
}

// Messages exposes the send queue
func (c *Conn) Messages() <-chan []byte {
	return c.send
}

// enqueue queues a message without blocking. It returns false if the
// connection is closed or its buffer is full.
func (c *Conn) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close marks the connection closed; WritePump returns shortly after
func (c *Conn) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// WritePump writes queued messages to the websocket until the context ends,
// the connection is closed or a write fails
func (c *Conn) WritePump(ctx context.Context, ws *websocket.Conn) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-c.done:
			return nil

		case msg := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := ws.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return err
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := ws.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}
