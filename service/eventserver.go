// Package service exposes governor state over HTTP and WebSocket.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/c360/governor/errors"
	"github.com/c360/governor/health"
	"github.com/c360/governor/notify"
)

// Event types broadcast to WebSocket clients
const (
	EventTypeQuality = "quality_warning"
	EventTypeSession = "session_outcome"
)

// Event wraps all WebSocket messages with type discrimination
type Event struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"` // Unix milliseconds
	Payload   json.RawMessage `json:"payload"`
}

// HealthSource supplies the status served at /healthz
type HealthSource func() health.Status

// EventServer broadcasts governor events to WebSocket clients and serves
// health over HTTP. It implements notify.Notifier, so it can sit in a
// notification fanout alongside the log and NATS sinks, and
// component.Lifecycle for managed startup and shutdown.
type EventServer struct {
	port         int
	path         string
	healthSource HealthSource
	logger       *slog.Logger

	server   *http.Server
	upgrader websocket.Upgrader

	clients   map[*websocket.Conn]*client
	clientsMu sync.RWMutex

	mu       sync.Mutex
	running  bool
	shutdown chan struct{}
	wg       *sync.WaitGroup

	eventsSent atomic.Int64
	sendErrors atomic.Int64
}

// client tracks one WebSocket connection
type client struct {
	conn        *websocket.Conn
	connectedAt time.Time
	writeMu     sync.Mutex
	closed      atomic.Bool
}

// EventServerOption configures an EventServer
type EventServerOption func(*EventServer)

// WithPath overrides the WebSocket endpoint path; defaults to /ws
func WithPath(path string) EventServerOption {
	return func(s *EventServer) {
		if path != "" {
			s.path = path
		}
	}
}

// WithHealthSource sets the status provider for /healthz
func WithHealthSource(source HealthSource) EventServerOption {
	return func(s *EventServer) {
		s.healthSource = source
	}
}

// WithLogger sets the logger; defaults to slog.Default()
func WithLogger(logger *slog.Logger) EventServerOption {
	return func(s *EventServer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewEventServer creates an event server listening on the given port
func NewEventServer(port int, opts ...EventServerOption) *EventServer {
	s := &EventServer{
		port:   port,
		path:   "/ws",
		logger: slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		clients: make(map[*websocket.Conn]*client),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize validates the server configuration
func (s *EventServer) Initialize() error {
	if s.port < 1 || s.port > 65535 {
		return errors.WrapInvalid(
			fmt.Errorf("port %d out of range", s.port),
			"EventServer", "Initialize", "validate port")
	}
	return nil
}

// Start begins serving. It returns once the listener goroutine is running.
func (s *EventServer) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.ErrAlreadyStarted
	}

	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.shutdown = make(chan struct{})
	s.wg = &sync.WaitGroup{}
	s.running = true

	s.wg.Add(1)
	go s.runServer()

	s.logger.Info("Event server started",
		"port", s.port,
		"path", s.path)

	return nil
}

// Stop shuts the server down, closing all client connections
func (s *EventServer) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.shutdown)
	server := s.server
	wg := s.wg
	s.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("Event server shutdown error", "error", err)
	}

	s.closeAllClients()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return errors.ErrShuttingDown
	}
}

func (s *EventServer) runServer() {
	defer s.wg.Done()

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Event server failed", "error", err)
	}
}

// handleWebSocket upgrades connections and registers clients
func (s *EventServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.sendErrors.Add(1)
		return
	}

	c := &client{
		conn:        conn,
		connectedAt: time.Now(),
	}

	s.clientsMu.Lock()
	s.clients[conn] = c
	count := len(s.clients)
	s.clientsMu.Unlock()

	s.logger.Debug("WebSocket client connected",
		"remote", r.RemoteAddr,
		"clients", count)

	// Reader loop: we ignore inbound payloads but need the read pump to
	// detect closed connections.
	go s.readUntilClosed(c)
}

func (s *EventServer) readUntilClosed(c *client) {
	defer s.removeClient(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *EventServer) removeClient(c *client) {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	_ = c.conn.Close()

	s.clientsMu.Lock()
	delete(s.clients, c.conn)
	s.clientsMu.Unlock()
}

func (s *EventServer) closeAllClients() {
	s.clientsMu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.clients = make(map[*websocket.Conn]*client)
	s.clientsMu.Unlock()

	for _, c := range clients {
		c.closed.Store(true)
		_ = c.conn.Close()
	}
}

// handleHealth serves the current health status as JSON. Degraded and
// unhealthy statuses map to 503.
func (s *EventServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	var status health.Status
	if s.healthSource != nil {
		status = s.healthSource()
	} else {
		status = health.NewHealthy("governor", "no health source configured")
	}

	w.Header().Set("Content-Type", "application/json")
	if !status.IsHealthy() {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}

// NotifyQuality broadcasts a quality warning to all connected clients
func (s *EventServer) NotifyQuality(_ context.Context, warning notify.QualityWarning) error {
	return s.broadcast(EventTypeQuality, warning)
}

// NotifySession broadcasts a session outcome to all connected clients
func (s *EventServer) NotifySession(_ context.Context, event notify.SessionEvent) error {
	return s.broadcast(EventTypeSession, event)
}

func (s *EventServer) broadcast(eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.WrapInvalid(err, "EventServer", "broadcast", "marshal payload")
	}

	event, err := json.Marshal(Event{
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		Payload:   data,
	})
	if err != nil {
		return errors.WrapInvalid(err, "EventServer", "broadcast", "marshal event")
	}

	s.clientsMu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.clientsMu.RUnlock()

	for _, c := range clients {
		if c.closed.Load() {
			continue
		}

		c.writeMu.Lock()
		err := c.conn.WriteMessage(websocket.TextMessage, event)
		c.writeMu.Unlock()

		if err != nil {
			s.sendErrors.Add(1)
			s.removeClient(c)
			continue
		}
		s.eventsSent.Add(1)
	}

	return nil
}

// ClientCount returns the number of connected WebSocket clients
func (s *EventServer) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// EventsSent returns the total events delivered across all clients
func (s *EventServer) EventsSent() int64 {
	return s.eventsSent.Load()
}
