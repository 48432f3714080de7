package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"
)

// ProtocolVersion is the envelope protocol this client speaks. Hosts
// must share its major version.
const ProtocolVersion = "v1.1.0"

// legacyHostVersion is assumed for hosts whose hello_response carries no
// protocolVersion.
const legacyHostVersion = "v1.0.0"

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	maxFrameSize = 8 << 20
	sendQueue    = 64
)

// Options configures a Client.
type Options struct {
	// Timeout bounds each Request, including the wait for the response.
	Timeout time.Duration

	// HandshakeTimeout bounds the dial plus the hello exchange.
	HandshakeTimeout time.Duration

	Backoff Backoff
	Logger  *slog.Logger

	// ClientName is sent in the hello payload.
	ClientName string
}

// DefaultOptions returns the stock client options.
func DefaultOptions() Options {
	return Options{
		Timeout:          5 * time.Second,
		HandshakeTimeout: 5 * time.Second,
		Backoff:          DefaultBackoff(),
		ClientName:       "MathDrill",
	}
}

type result struct {
	env Envelope
	err error
}

// call is a request waiting for its response.
type call struct {
	id       string
	reqType  string
	respType string
	done     chan result
}

// Client is a reconnecting websocket connection to the host. Requests
// carry a uuid id that the host echoes as requestId; responses without
// one fall back to matching the oldest pending request of the expected
// response type.
type Client struct {
	url    string
	opts   Options
	logger *slog.Logger
	dialer *websocket.Dialer
	state  *ConnState
	out    chan []byte

	mu          sync.Mutex
	pending     []*call // oldest first
	hostVersion string

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewClient creates a client for the websocket at url. Call Start to
// connect.
func NewClient(url string, opts Options) *Client {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = def.HandshakeTimeout
	}
	if opts.Backoff.InitialWait <= 0 || opts.Backoff.Multiplier < 1 {
		opts.Backoff = def.Backoff
	}
	if opts.ClientName == "" {
		opts.ClientName = def.ClientName
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		url:    url,
		opts:   opts,
		logger: logger.With("component", "bridge"),
		dialer: &websocket.Dialer{HandshakeTimeout: opts.HandshakeTimeout},
		state:  NewConnState(),
		out:    make(chan []byte, sendQueue),
	}
}

// State returns the connection state tracker.
func (c *Client) State() *ConnState { return c.state }

// HostVersion returns the protocol version reported by the host in the
// last handshake.
func (c *Client) HostVersion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hostVersion
}

// Start launches the connect/reconnect loop. It returns immediately.
func (c *Client) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go func() {
		defer close(c.done)
		c.err = c.run(ctx)
	}()
}

// Close stops the client and waits for the connection to shut down. It
// returns the error that ended the loop, if it ended on its own.
func (c *Client) Close() error {
	if c.cancel == nil {
		c.state.Set(StateClosed)
		return nil
	}
	c.cancel()
	<-c.done
	c.failPending(ErrClosed)
	return c.err
}

// Request sends a request and waits for its response. A host error
// envelope, or a payload with status "error", is returned as *HostError.
// It fails fast with ErrNotReady when the connection is not ready.
func (c *Client) Request(ctx context.Context, typ string, payload any) (Envelope, error) {
	if s := c.state.Get(); s != StateReady {
		return Envelope{}, fmt.Errorf("%s: %w (%s)", typ, ErrNotReady, s)
	}
	env, err := newEnvelope(uuid.NewString(), typ, payload)
	if err != nil {
		return Envelope{}, err
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", typ, err)
	}

	cl := &call{id: env.ID, reqType: typ, respType: ResponseType(typ), done: make(chan result, 1)}
	c.mu.Lock()
	c.pending = append(c.pending, cl)
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	select {
	case c.out <- frame:
	case <-ctx.Done():
		c.removePending(cl.id)
		return Envelope{}, c.ctxErr(ctx, typ)
	}

	select {
	case r := <-cl.done:
		if r.err != nil {
			return Envelope{}, fmt.Errorf("%s: %w", typ, r.err)
		}
		if err := r.env.hostErr(typ); err != nil {
			return r.env, err
		}
		return r.env, nil
	case <-ctx.Done():
		c.removePending(cl.id)
		return Envelope{}, c.ctxErr(ctx, typ)
	}
}

func (c *Client) ctxErr(ctx context.Context, typ string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", typ, ErrTimeout)
	}
	return fmt.Errorf("%s: %w", typ, ctx.Err())
}

// Notify queues a message without waiting for a response.
func (c *Client) Notify(ctx context.Context, typ string, payload any) error {
	if s := c.state.Get(); s != StateReady {
		return fmt.Errorf("%s: %w (%s)", typ, ErrNotReady, s)
	}
	env, err := newEnvelope(uuid.NewString(), typ, payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", typ, err)
	}
	select {
	case c.out <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("%s: send queue full", typ)
	}
}

func (c *Client) removePending(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, cl := range c.pending {
		if cl.id == id {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

func (c *Client) failPending(err error) {
	c.mu.Lock()
	calls := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, cl := range calls {
		cl.done <- result{err: err}
	}
}

// dispatch hands env to the pending call it answers.
func (c *Client) dispatch(env Envelope) {
	c.mu.Lock()
	idx := -1
	for i, cl := range c.pending {
		switch {
		case env.RequestID != "":
			if cl.id == env.RequestID {
				idx = i
			}
		case env.Type == TypeError:
			idx = i
		case cl.respType == env.Type:
			idx = i
		}
		if idx >= 0 {
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		c.unmatched(env)
		return
	}
	cl := c.pending[idx]
	c.pending = append(c.pending[:idx], c.pending[idx+1:]...)
	c.mu.Unlock()

	cl.done <- result{env: env}
}

// unmatched logs a frame nobody is waiting for. Responses to Notify
// messages end up here, so host-side failures of best-effort writes are
// still visible in the log.
func (c *Client) unmatched(env Envelope) {
	if err := env.hostErr(""); err != nil {
		c.logger.Warn("unsolicited host error", "type", env.Type, "error", err)
		return
	}
	c.logger.Debug("dropping unmatched frame", "type", env.Type, "requestId", env.RequestID)
}

func (c *Client) run(ctx context.Context) error {
	defer c.state.Set(StateClosed)

	failures := 0
	for {
		c.state.Set(StateConnecting)
		conn, err := c.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var incompatible *ErrIncompatibleHost
			if errors.As(err, &incompatible) {
				c.logger.Error("host refused", "error", err)
				return err
			}
			failures++
			c.logger.Warn("connect failed", "url", c.url, "attempt", failures, "error", err)
			if c.opts.Backoff.exhausted(failures) {
				return fmt.Errorf("giving up after %d attempts: %w", failures, err)
			}
		} else {
			failures = 0
			c.state.Set(StateReady)
			c.logger.Info("connected", "url", c.url, "hostVersion", c.HostVersion())
			err := c.serve(ctx, conn)
			c.state.Set(StateDisconnected)
			c.failPending(ErrNotReady)
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("connection lost", "error", err)
		}

		c.state.Set(StateDisconnected)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.opts.Backoff.Delay(max(failures-1, 0))):
		}
	}
}

// connect dials the host and performs the hello handshake.
func (c *Client) connect(ctx context.Context) (*websocket.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.HandshakeTimeout)
	defer cancel()

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	if err := c.handshake(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

type helloPayload struct {
	Name            string `json:"name"`
	ProtocolVersion string `json:"protocolVersion"`
}

type helloResponse struct {
	Message         string `json:"message"`
	ProtocolVersion string `json:"protocolVersion"`
}

func (c *Client) handshake(ctx context.Context, conn *websocket.Conn) error {
	env, err := newEnvelope(uuid.NewString(), TypeHello, helloPayload{
		Name:            c.opts.ClientName,
		ProtocolVersion: ProtocolVersion,
	})
	if err != nil {
		return err
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal hello: %w", err)
	}

	deadline, _ := ctx.Deadline()
	conn.SetWriteDeadline(deadline)
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}

	conn.SetReadDeadline(deadline)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("await hello_response: %w", err)
		}
		resp, err := ParseEnvelope(raw)
		if err != nil {
			c.logger.Warn("dropping malformed frame during handshake", "error", err)
			continue
		}
		if resp.RequestID != "" && resp.RequestID != env.ID {
			continue
		}
		if resp.Type == TypeError {
			return resp.hostErr(TypeHello)
		}
		if resp.Type != ResponseType(TypeHello) {
			continue
		}

		var hello helloResponse
		if len(resp.Payload) > 0 {
			_ = json.Unmarshal(resp.Payload, &hello)
		}
		if err := CheckVersion(ProtocolVersion, hello.ProtocolVersion); err != nil {
			return err
		}
		c.mu.Lock()
		c.hostVersion = hello.ProtocolVersion
		if c.hostVersion == "" {
			c.hostVersion = legacyHostVersion
		}
		c.mu.Unlock()

		conn.SetReadDeadline(time.Time{})
		conn.SetWriteDeadline(time.Time{})
		return nil
	}
}

// CheckVersion reports whether host is compatible with client: both must
// be semantic versions with the same major. An empty host version is a
// legacy host and counts as v1.0.0. The "v" prefix is optional.
func CheckVersion(client, host string) error {
	hv := host
	if hv == "" {
		hv = legacyHostVersion
	}
	if !strings.HasPrefix(hv, "v") {
		hv = "v" + hv
	}
	if !semver.IsValid(hv) {
		return &ErrIncompatibleHost{Client: client, Host: host, Err: errors.New("not a semantic version")}
	}
	if semver.Major(hv) != semver.Major(client) {
		return &ErrIncompatibleHost{Client: client, Host: host}
	}
	return nil
}

// serve runs the read and write pumps until either fails or ctx ends.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readPump(conn) })
	g.Go(func() error { return c.writePump(gctx, conn) })
	g.Go(func() error {
		<-gctx.Done()
		return conn.Close()
	})
	return g.Wait()
}

func (c *Client) readPump(conn *websocket.Conn) error {
	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		env, err := ParseEnvelope(raw)
		if err != nil {
			c.logger.Warn("dropping malformed frame", "error", err)
			continue
		}
		c.dispatch(env)
	}
}

func (c *Client) writePump(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return ctx.Err()
		case frame := <-c.out:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}
