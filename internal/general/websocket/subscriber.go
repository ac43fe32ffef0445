package websocket

import (
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wsSubscriber adapts one websocket connection to the registry's
// Subscriber interface. The id is connection-scoped, not user-scoped.
type wsSubscriber struct {
	id      string
	conn    *websocket.Conn
	handler *Handler
}

func newSubscriber(conn *websocket.Conn, h *Handler) *wsSubscriber {
	return &wsSubscriber{id: uuid.NewString(), conn: conn, handler: h}
}

func (s *wsSubscriber) ID() string { return s.id }

func (s *wsSubscriber) Send(v any) error {
	return s.handler.writeJSON(s.conn, v)
}
