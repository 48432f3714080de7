package bridge

import (
	"context"
	"sync"
)

// State is the connection state of the bridge.
type State int

const (
	StateDisconnected State = iota // No connection; a reconnect may be pending
	StateConnecting                // Dialing or handshaking
	StateReady                     // Handshake done, requests allowed
	StateClosed                    // Shut down or permanently refused
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ConnState tracks the connection state and notifies subscribers.
// Closed is terminal.
type ConnState struct {
	mu      sync.Mutex
	state   State
	changed chan struct{} // closed and replaced on every transition
	subs    []chan State
}

// NewConnState returns a ConnState in StateDisconnected.
func NewConnState() *ConnState {
	return &ConnState{changed: make(chan struct{})}
}

// Get returns the current state.
func (c *ConnState) Get() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Set moves to s and notifies subscribers. Transitions out of Closed are
// ignored.
func (c *ConnState) Set(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed || c.state == s {
		return
	}
	c.state = s
	close(c.changed)
	c.changed = make(chan struct{})

	for _, ch := range c.subs {
		// Subscribers only need the latest state; replace an unread one.
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
	if s == StateClosed {
		for _, ch := range c.subs {
			close(ch)
		}
		c.subs = nil
	}
}

// Subscribe returns a channel that receives the current state and then
// every transition. Unread intermediate states are coalesced. The channel
// is closed when the state becomes Closed.
func (c *ConnState) Subscribe() <-chan State {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan State, 1)
	ch <- c.state
	if c.state == StateClosed {
		close(ch)
		return ch
	}
	c.subs = append(c.subs, ch)
	return ch
}

// WaitReady blocks until the state is Ready, the state is Closed, or ctx
// is done.
func (c *ConnState) WaitReady(ctx context.Context) error {
	for {
		c.mu.Lock()
		state, changed := c.state, c.changed
		c.mu.Unlock()

		switch state {
		case StateReady:
			return nil
		case StateClosed:
			return ErrClosed
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}
