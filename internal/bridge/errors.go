package bridge

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned when a request is made while the connection is
// not ready, or when the connection drops before the response arrives.
var ErrNotReady = errors.New("bridge not ready")

// ErrTimeout is returned when the host does not answer within the
// request timeout.
var ErrTimeout = errors.New("bridge request timed out")

// ErrClosed is returned once the client has shut down for good.
var ErrClosed = errors.New("bridge closed")

// HostError is an error reported by the host, either as an "error"
// envelope or as a response whose payload carries status "error".
type HostError struct {
	Request string // request type that failed
	Message string
}

func (e *HostError) Error() string {
	if e.Request == "" {
		return fmt.Sprintf("host error: %s", e.Message)
	}
	return fmt.Sprintf("host error on %s: %s", e.Request, e.Message)
}

// ErrIncompatibleHost indicates that the host speaks a different major
// protocol version. The client does not reconnect after it.
type ErrIncompatibleHost struct {
	Client string
	Host   string
	Err    error
}

func (e *ErrIncompatibleHost) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("incompatible host protocol %q (client %s): %v", e.Host, e.Client, e.Err)
	}
	return fmt.Sprintf("incompatible host protocol %q (client %s)", e.Host, e.Client)
}

func (e *ErrIncompatibleHost) Unwrap() error { return e.Err }
