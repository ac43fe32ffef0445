package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// lockOf returns the write mutex for a connection, creating it on
// first use. gorilla/websocket allows only one concurrent writer.
func (h *Handler) lockOf(conn *websocket.Conn) *sync.Mutex {
	v, _ := h.writeLocks.LoadOrStore(conn, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (h *Handler) writeJSON(conn *websocket.Conn, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return h.wsWriteMessage(conn, websocket.TextMessage, payload)
}

func (h *Handler) wsWriteMessage(conn *websocket.Conn, messageType int, data []byte) error {
	mu := h.lockOf(conn)
	mu.Lock()
	defer mu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(messageType, data)
}

func (h *Handler) wsWriteClose(conn *websocket.Conn, code int, reason string) {
	mu := h.lockOf(conn)
	mu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	mu.Unlock()
	// give the peer a moment to ack the close frame
	time.Sleep(wsCloseAckWindow)
}
