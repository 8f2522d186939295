package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Front-end may be served from a different origin during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsClient wraps a websocket connection with a write lock, since the status
// seed and the event stream write from different goroutines.
type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(v)
}

// wsHandler streams engine events over a websocket, an alternative to SSE
// for front-ends that keep a bidirectional channel open.
func (s *Server) wsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := &wsClient{conn: conn}
		defer conn.Close()

		events := s.sseHub.Register()
		defer s.sseHub.Unregister(events)

		if err := client.writeJSON(SSEEvent{Type: "status", Data: map[string]interface{}{"snapshot": s.engine.Status()}}); err != nil {
			return
		}

		// Drain reads so close frames are processed.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					conn.Close()
					return
				}
			}
		}()

		for event := range events {
			if err := client.writeJSON(event); err != nil {
				return
			}
		}
	}
}
