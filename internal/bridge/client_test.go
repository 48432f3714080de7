package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHost is a websocket host that answers hello itself and hands every
// other envelope to handle.
type fakeHost struct {
	srv     *httptest.Server
	version string // protocolVersion in hello_response; "" omits it
	handle  func(conn *websocket.Conn, env Envelope)
	conns   atomic.Int32

	mu       sync.Mutex
	received []Envelope
}

func newFakeHost(t *testing.T, version string, handle func(conn *websocket.Conn, env Envelope)) *fakeHost {
	t.Helper()
	h := &fakeHost{version: version, handle: handle}
	upgrader := websocket.Upgrader{}
	h.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		h.conns.Add(1)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var env Envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				continue
			}
			if env.Type == TypeHello {
				payload := map[string]any{"message": "hi", "timestamp": 1}
				if h.version != "" {
					payload["protocolVersion"] = h.version
				}
				reply(conn, env, ResponseType(TypeHello), payload)
				continue
			}
			h.mu.Lock()
			h.received = append(h.received, env)
			h.mu.Unlock()
			if h.handle != nil {
				h.handle(conn, env)
			}
		}
	}))
	t.Cleanup(h.srv.Close)
	return h
}

func (h *fakeHost) url() string {
	return "ws" + strings.TrimPrefix(h.srv.URL, "http")
}

func (h *fakeHost) receivedTypes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var types []string
	for _, env := range h.received {
		types = append(types, env.Type)
	}
	return types
}

// reply answers req, echoing its id as requestId.
func reply(conn *websocket.Conn, req Envelope, typ string, payload any) {
	b, _ := json.Marshal(payload)
	writeEnvelope(conn, Envelope{Type: typ, Payload: b, RequestID: req.ID})
}

func writeEnvelope(conn *websocket.Conn, env Envelope) {
	b, _ := json.Marshal(env)
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

// echo answers every request with {"ok": true} under its response type.
func echo(conn *websocket.Conn, env Envelope) {
	reply(conn, env, ResponseType(env.Type), map[string]any{"ok": true})
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Timeout = 2 * time.Second
	opts.Backoff = Backoff{InitialWait: 10 * time.Millisecond, MaxWait: 50 * time.Millisecond, Multiplier: 2}
	return opts
}

func startClient(t *testing.T, url string, opts Options) *Client {
	t.Helper()
	c := NewClient(url, opts)
	c.Start(context.Background())
	t.Cleanup(func() { c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.State().WaitReady(ctx))
	return c
}

func TestClient_HandshakeRecordsHostVersion(t *testing.T) {
	host := newFakeHost(t, "1.4.2", echo)
	c := startClient(t, host.url(), testOptions())
	assert.Equal(t, "1.4.2", c.HostVersion())
	assert.Equal(t, StateReady, c.State().Get())
}

func TestClient_LegacyHostWithoutVersion(t *testing.T) {
	host := newFakeHost(t, "", echo)
	c := startClient(t, host.url(), testOptions())
	assert.Equal(t, legacyHostVersion, c.HostVersion())
}

func TestClient_IncompatibleHostStopsReconnecting(t *testing.T) {
	host := newFakeHost(t, "v2.0.0", echo)
	c := NewClient(host.url(), testOptions())
	c.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.State().WaitReady(ctx)
	require.ErrorIs(t, err, ErrClosed)

	var incompatible *ErrIncompatibleHost
	require.ErrorAs(t, c.Close(), &incompatible)
	assert.Equal(t, "v2.0.0", incompatible.Host)
	assert.Equal(t, int32(1), host.conns.Load())
}

func TestClient_RequestMatchesRequestID(t *testing.T) {
	host := newFakeHost(t, ProtocolVersion, func(conn *websocket.Conn, env Envelope) {
		// A stray response for another request arrives first.
		writeEnvelope(conn, Envelope{Type: ResponseType(env.Type), Payload: json.RawMessage(`{"levelId":99}`), RequestID: "other"})
		reply(conn, env, ResponseType(env.Type), map[string]any{"levelId": 7})
	})
	c := startClient(t, host.url(), testOptions())

	env, err := c.Request(context.Background(), TypeGetLevel, levelRequest{LevelID: 7})
	require.NoError(t, err)
	assert.Equal(t, "get_level_response", env.Type)

	var got levelRequest
	require.NoError(t, env.Decode(&got))
	assert.Equal(t, 7, got.LevelID)
}

func TestClient_LegacyResponseMatchesByType(t *testing.T) {
	host := newFakeHost(t, "", func(conn *websocket.Conn, env Envelope) {
		writeEnvelope(conn, Envelope{Type: TypeStatisticsResponse, Payload: json.RawMessage(`{"totalAttempts":3}`)})
	})
	c := startClient(t, host.url(), testOptions())

	env, err := c.Request(context.Background(), TypeGetStatistics, nil)
	require.NoError(t, err)
	assert.Equal(t, TypeStatisticsResponse, env.Type)
	assert.JSONEq(t, `{"totalAttempts":3}`, string(env.Payload))
}

func TestClient_HostErrors(t *testing.T) {
	t.Run("error envelope", func(t *testing.T) {
		host := newFakeHost(t, ProtocolVersion, func(conn *websocket.Conn, env Envelope) {
			writeEnvelope(conn, Envelope{Type: TypeError, Payload: json.RawMessage(`{"message":"Level 99 not found"}`)})
		})
		c := startClient(t, host.url(), testOptions())

		_, err := c.Request(context.Background(), TypeGetLevel, levelRequest{LevelID: 99})
		var hostErr *HostError
		require.ErrorAs(t, err, &hostErr)
		assert.Equal(t, TypeGetLevel, hostErr.Request)
		assert.Equal(t, "Level 99 not found", hostErr.Message)
	})

	t.Run("status error payload", func(t *testing.T) {
		host := newFakeHost(t, ProtocolVersion, func(conn *websocket.Conn, env Envelope) {
			reply(conn, env, ResponseType(env.Type), map[string]any{"status": "error", "error": "disk full"})
		})
		c := startClient(t, host.url(), testOptions())

		_, err := c.Request(context.Background(), TypeSaveSettings, map[string]any{})
		var hostErr *HostError
		require.ErrorAs(t, err, &hostErr)
		assert.Equal(t, "disk full", hostErr.Message)
	})
}

func TestClient_RequestTimeout(t *testing.T) {
	host := newFakeHost(t, ProtocolVersion, nil)
	opts := testOptions()
	opts.Timeout = 100 * time.Millisecond
	c := startClient(t, host.url(), opts)

	start := time.Now()
	_, err := c.Request(context.Background(), TypeLoadLevels, nil)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)

	c.mu.Lock()
	assert.Empty(t, c.pending)
	c.mu.Unlock()
}

func TestClient_NotReadyFailsFast(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1", testOptions())

	_, err := c.Request(context.Background(), TypeLoadLevels, nil)
	require.ErrorIs(t, err, ErrNotReady)
	require.ErrorIs(t, c.Notify(context.Background(), TypeSaveAttempts, nil), ErrNotReady)
}

func TestClient_DropsMalformedFrames(t *testing.T) {
	host := newFakeHost(t, ProtocolVersion, func(conn *websocket.Conn, env Envelope) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"payload":{}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":{}}`))
		reply(conn, env, ResponseType(env.Type), map[string]any{"ok": true})
	})
	c := startClient(t, host.url(), testOptions())

	env, err := c.Request(context.Background(), TypeLoadLevels, nil)
	require.NoError(t, err)
	assert.Equal(t, "load_levels_response", env.Type)
	assert.Equal(t, StateReady, c.State().Get())
}

func TestClient_NotifyDoesNotWait(t *testing.T) {
	host := newFakeHost(t, ProtocolVersion, nil)
	c := startClient(t, host.url(), testOptions())

	require.NoError(t, c.Notify(context.Background(), TypeSaveAttempts, map[string]any{"attempts": map[string]any{}}))
	assert.Eventually(t, func() bool {
		types := host.receivedTypes()
		return len(types) == 1 && types[0] == TypeSaveAttempts
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClient_NilPayloadSentAsObject(t *testing.T) {
	var got atomic.Value
	host := newFakeHost(t, ProtocolVersion, func(conn *websocket.Conn, env Envelope) {
		got.Store(string(env.Payload))
		echo(conn, env)
	})
	c := startClient(t, host.url(), testOptions())

	_, err := c.Request(context.Background(), TypeLoadAttempts, nil)
	require.NoError(t, err)
	assert.Equal(t, `{}`, got.Load())
}

func TestClient_Reconnects(t *testing.T) {
	var dropped atomic.Bool
	host := newFakeHost(t, ProtocolVersion, func(conn *websocket.Conn, env Envelope) {
		if dropped.CompareAndSwap(false, true) {
			conn.Close()
			return
		}
		echo(conn, env)
	})
	c := startClient(t, host.url(), testOptions())

	_, err := c.Request(context.Background(), TypeLoadLevels, nil)
	require.ErrorIs(t, err, ErrNotReady)

	require.Eventually(t, func() bool {
		return host.conns.Load() >= 2 && c.State().Get() == StateReady
	}, 5*time.Second, 10*time.Millisecond)

	env, err := c.Request(context.Background(), TypeLoadLevels, nil)
	require.NoError(t, err)
	assert.Equal(t, "load_levels_response", env.Type)
}

func TestClient_GivesUpAfterMaxAttempts(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	opts := testOptions()
	opts.Backoff.MaxAttempts = 2
	c := NewClient(url, opts)
	c.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.ErrorIs(t, c.State().WaitReady(ctx), ErrClosed)
	err := c.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up after 2 attempts")
}

func TestClient_CloseFailsPendingRequests(t *testing.T) {
	host := newFakeHost(t, ProtocolVersion, nil)
	c := startClient(t, host.url(), testOptions())

	errc := make(chan error, 1)
	go func() {
		_, err := c.Request(context.Background(), TypeLoadLevels, nil)
		errc <- err
	}()
	require.Eventually(t, func() bool {
		return len(host.receivedTypes()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Close())
	err := <-errc
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotReady) || errors.Is(err, ErrClosed), "got %v", err)
	assert.Equal(t, StateClosed, c.State().Get())
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		host string
		ok   bool
	}{
		{"v1.1.0", true},
		{"1.0.0", true},
		{"v1.9.3", true},
		{"", true},
		{"v2.0.0", false},
		{"v0.9.0", false},
		{"banana", false},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			err := CheckVersion(ProtocolVersion, tt.host)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var incompatible *ErrIncompatibleHost
			assert.ErrorAs(t, err, &incompatible)
		})
	}
}

func TestResponseType(t *testing.T) {
	assert.Equal(t, "statistics_response", ResponseType(TypeGetStatistics))
	assert.Equal(t, "hello_response", ResponseType(TypeHello))
	assert.Equal(t, "load_levels_response", ResponseType(TypeLoadLevels))
}

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"response", `{"type":"load_levels_response","payload":{"levels":[]},"requestId":"a"}`, true},
		{"array payload", `{"type":"load_attempts_response","payload":[]}`, true},
		{"no payload", `{"type":"clear_attempts_response"}`, true},
		{"error", `{"type":"error","payload":{"message":"boom"}}`, true},
		{"error without message", `{"type":"error","payload":{}}`, false},
		{"missing type", `{"payload":{}}`, false},
		{"bad type", `{"type":"Load-Levels"}`, false},
		{"string payload", `{"type":"hello_response","payload":"hi"}`, false},
		{"not json", `{`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEnvelope([]byte(tt.raw))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestBackoff_Delay(t *testing.T) {
	b := DefaultBackoff()
	for range 20 {
		d := b.Delay(0)
		assert.GreaterOrEqual(t, d, 400*time.Millisecond)
		assert.LessOrEqual(t, d, 600*time.Millisecond)

		d = b.Delay(20)
		assert.GreaterOrEqual(t, d, 24*time.Second)
		assert.LessOrEqual(t, d, 36*time.Second)
	}

	assert.False(t, b.exhausted(1000))
	b.MaxAttempts = 3
	assert.False(t, b.exhausted(2))
	assert.True(t, b.exhausted(3))
}
