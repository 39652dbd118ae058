package debug

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/lumen/pkg/app"
)

// StreamMessageType is the type of a stream message.
type StreamMessageType string

const (
	StreamTypeFrame StreamMessageType = "frame"
	StreamTypeHello StreamMessageType = "hello"
)

// StreamMessage is sent to websocket clients.
type StreamMessage struct {
	Type  StreamMessageType `json:"type"`
	Frame *app.FrameReport  `json:"frame,omitempty"`
}

// Stream manages websocket clients receiving frame reports.
type Stream struct {
	clients  map[*websocket.Conn]*sync.Mutex
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewStream creates a Stream.
func NewStream(logger *slog.Logger) *Stream {
	return &Stream{
		clients: make(map[*websocket.Conn]*sync.Mutex),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades the connection and keeps it registered until the
// client disconnects.
func (s *Stream) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	writeMu := &sync.Mutex{}
	hello, _ := json.Marshal(StreamMessage{Type: StreamTypeHello})
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		conn.Close()
		return
	}

	s.mu.Lock()
	s.clients[conn] = writeMu
	s.mu.Unlock()
	s.logger.Debug("stream client connected", "remote", req.RemoteAddr)

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.remove(conn)
}

// PublishFrame sends report to every client.
func (s *Stream) PublishFrame(report app.FrameReport) {
	s.broadcast(StreamMessage{Type: StreamTypeFrame, Frame: &report})
}

func (s *Stream) broadcast(msg StreamMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	type client struct {
		conn    *websocket.Conn
		writeMu *sync.Mutex
	}
	s.mu.RLock()
	clients := make([]client, 0, len(s.clients))
	for conn, mu := range s.clients {
		clients = append(clients, client{conn, mu})
	}
	s.mu.RUnlock()

	for _, c := range clients {
		c.writeMu.Lock()
		err := c.conn.WriteMessage(websocket.TextMessage, data)
		c.writeMu.Unlock()
		if err != nil {
			s.remove(c.conn)
		}
	}
}

func (s *Stream) remove(conn *websocket.Conn) {
	s.mu.Lock()
	_, ok := s.clients[conn]
	delete(s.clients, conn)
	s.mu.Unlock()
	if ok {
		conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (s *Stream) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close closes all client connections.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
}
