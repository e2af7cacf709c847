// Package server is the WebSocket transport adapter for the tracker:
// it upgrades connections, decodes envelope messages, and maps them
// onto tracker operations. All user-facing text is rendered here via
// the i18n bundle; the engine only ever returns tagged values.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Server accepts WebSocket clients and runs their message loops.
type Server struct {
	addr     string
	upgrader websocket.Upgrader
	handler  *Handler
	logger   *log.Logger

	mu          sync.RWMutex
	connections map[*Connection]bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a WebSocket server on addr.
func NewServer(addr string, handler *Handler, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			// Single-user sessions keyed by opaque IDs; origin checks
			// add nothing here.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		handler:     handler,
		logger:      logger.WithPrefix("server"),
		connections: make(map[*Connection]bool),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start serves until the listener fails or Stop is called.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-s.ctx.Done()
		_ = httpServer.Close()
	}()

	s.logger.Info("listening", "addr", s.addr)
	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop closes every connection and stops the listener.
func (s *Server) Stop() {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "err", err)
		return
	}

	conn := NewConnection(ws, s.handler, s.logger)
	s.track(conn)
	conn.Start()
}

func (s *Server) track(conn *Connection) {
	s.mu.Lock()
	s.connections[conn] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("client connected", "total", total)

	go func() {
		<-conn.ctx.Done()
		s.mu.Lock()
		delete(s.connections, conn)
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("client disconnected", "total", total)
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	total := len(s.connections)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      "ok",
		"connections": total,
	})
}
