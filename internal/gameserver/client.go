package gameserver

import (
	"errors"
	"sync"
)

// ErrClientClosed is returned by Push after Close.
var ErrClientClosed = errors.New("gameserver: client closed")

// ErrClientFull is returned by Push when the outbound buffer is full.
var ErrClientFull = errors.New("gameserver: client send buffer full")

// Client is the outbound side of one connected controller. Push never blocks,
// so the tick loop cannot be stalled by a slow connection.
type Client struct {
	id     string
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

// NewClient creates a Client with an outbound buffer of bufferSize frames.
//
// Postcondition: Returns a Client with an open send channel.
func NewClient(id string, bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Client{id: id, send: make(chan []byte, bufferSize)}
}

// ID returns the connection identifier.
func (c *Client) ID() string { return c.id }

// Push enqueues one encoded frame.
//
// Postcondition: data is enqueued, or ErrClientClosed / ErrClientFull is returned.
func (c *Client) Push(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrClientFull
	}
}

// Frames returns the read-only outbound channel drained by the write pump.
func (c *Client) Frames() <-chan []byte { return c.send }

// Close marks the client closed and closes the outbound channel. Close is idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
