package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/governor/errors"
	"github.com/c360/governor/health"
	"github.com/c360/governor/notify"
)

func TestInitializeValidation(t *testing.T) {
	assert.Error(t, NewEventServer(0).Initialize())
	assert.Error(t, NewEventServer(70000).Initialize())

	err := NewEventServer(0).Initialize()
	assert.True(t, errors.IsInvalid(err))

	assert.NoError(t, NewEventServer(8080).Initialize())
}

func TestHealthEndpoint(t *testing.T) {
	s := NewEventServer(8080, WithHealthSource(func() health.Status {
		return health.NewHealthy("governor", "all good")
	}))

	ts := httptest.NewServer(http.HandlerFunc(s.handleHealth))
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var status health.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "governor", status.Component)
	assert.True(t, status.Healthy)
}

func TestHealthEndpointDegraded(t *testing.T) {
	s := NewEventServer(8080, WithHealthSource(func() health.Status {
		return health.NewDegraded("governor", "task queue saturated")
	}))

	ts := httptest.NewServer(http.HandlerFunc(s.handleHealth))
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealthEndpointWithoutSource(t *testing.T) {
	s := NewEventServer(8080)

	ts := httptest.NewServer(http.HandlerFunc(s.handleHealth))
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func dialWebSocket(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	return conn
}

func TestBroadcastQualityWarning(t *testing.T) {
	s := NewEventServer(8080)

	ts := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	defer ts.Close()

	conn := dialWebSocket(t, ts)
	defer conn.Close()

	// Wait for the server to register the client.
	require.Eventually(t, func() bool {
		return s.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	warning := notify.QualityWarning{
		Component: "pipeline",
		FPS:       20,
		Budget:    75,
		Timestamp: time.Now().UTC(),
	}
	require.NoError(t, s.NotifyQuality(context.Background(), warning))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, EventTypeQuality, event.Type)
	assert.NotZero(t, event.Timestamp)

	var got notify.QualityWarning
	require.NoError(t, json.Unmarshal(event.Payload, &got))
	assert.Equal(t, "pipeline", got.Component)
	assert.Equal(t, 75, got.Budget)

	assert.Equal(t, int64(1), s.EventsSent())
}

func TestBroadcastSessionOutcome(t *testing.T) {
	s := NewEventServer(8080)

	ts := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	defer ts.Close()

	conn := dialWebSocket(t, ts)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return s.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	event := notify.SessionEvent{
		Component: "render",
		Outcome:   notify.OutcomeExhausted,
		Attempts:  3,
		Error:     "no attempt succeeded after 3 attempts",
	}
	require.NoError(t, s.NotifySession(context.Background(), event))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var envelope Event
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Equal(t, EventTypeSession, envelope.Type)

	var got notify.SessionEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &got))
	assert.Equal(t, notify.OutcomeExhausted, got.Outcome)
	assert.Equal(t, 3, got.Attempts)
}

func TestBroadcastWithNoClients(t *testing.T) {
	s := NewEventServer(8080)

	require.NoError(t, s.NotifyQuality(context.Background(), notify.QualityWarning{Component: "x"}))
	assert.Zero(t, s.EventsSent())
}

func TestDisconnectedClientsPruned(t *testing.T) {
	s := NewEventServer(8080)

	ts := httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	defer ts.Close()

	conn := dialWebSocket(t, ts)

	require.Eventually(t, func() bool {
		return s.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	// The read pump notices the close and removes the client.
	assert.Eventually(t, func() bool {
		return s.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestLifecycle(t *testing.T) {
	s := NewEventServer(18473)
	require.NoError(t, s.Initialize())

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), errors.ErrAlreadyStarted)

	require.NoError(t, s.Stop(2*time.Second))
	require.NoError(t, s.Stop(2*time.Second)) // idempotent
}
