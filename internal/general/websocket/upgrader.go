package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"courier-track/internal/general/contracts"
	"courier-track/internal/general/logger"
	"courier-track/internal/tracking"

	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout   = 5 * time.Second
	wsCloseAckWindow = 2 * time.Second
	ctrlTimeout      = 5 * time.Second
	readIdleTimeout  = 60 * time.Second
	pingInterval     = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the dashboard and courier apps are served from other origins
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler owns the websocket endpoint. Connections are anonymous: a
// connection may claim any courier id in its events, matching the
// dispatch frontend's existing contract.
type Handler struct {
	coord      *tracking.Coordinator
	logger     *logger.Logger
	writeLocks sync.Map // *websocket.Conn -> *sync.Mutex
}

// NewHandler wires the websocket transport around the coordinator.
func NewHandler(coord *tracking.Coordinator, log *logger.Logger) *Handler {
	return &Handler{coord: coord, logger: log}
}

// envelope is the minimal frame every inbound message uses.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Connect handles one websocket connection for its whole lifetime:
// upgrade, read loop, channel membership, teardown.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(r.Context(), "websocket_upgrade_failed", "Failed to upgrade to WebSocket", err, nil)
		return
	}

	sub := newSubscriber(conn, h)

	// Teardown order (LIFO on return):
	defer conn.Close()                      // 3) close the socket last
	defer h.writeLocks.Delete(conn)         // 2) forget per-connection mutex
	defer h.coord.HandleDisconnect(sub)     // 1) leave all channels first

	h.logger.Info(r.Context(), "ws_connected", "WebSocket connection established",
		map[string]any{"connection_id": sub.ID()})

	conn.SetReadLimit(1 << 20) // 1 MiB
	_ = conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
	conn.SetPongHandler(func(_ string) error {
		return conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
	})

	// ping loop using the per-connection writer lock
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				mu := h.lockOf(conn)
				mu.Lock()
				err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctrlTimeout))
				mu.Unlock()
				if err != nil {
					// close the socket to unblock the reader
					_ = conn.Close()
					return
				}
			}
		}
	}()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				h.logger.Error(r.Context(), "ws_unexpected_close", "Connection closed unexpectedly", err,
					map[string]any{"connection_id": sub.ID()})
				h.wsWriteClose(conn, websocket.CloseInternalServerErr, "internal error")
			} else {
				h.logger.Info(r.Context(), "ws_connection_closed", "Connection closed",
					map[string]any{"connection_id": sub.ID()})
				h.wsWriteClose(conn, websocket.CloseNormalClosure, "bye")
			}
			break
		}

		var msg envelope
		if err := json.Unmarshal(payload, &msg); err != nil {
			_ = h.wsWriteMessage(conn, websocket.TextMessage, []byte(`{"type":"error","error":"bad json"}`))
			continue
		}

		switch msg.Type {
		case contracts.EventJoinCourierChannel:
			var join contracts.JoinCourierData
			if err := json.Unmarshal(msg.Data, &join); err != nil || join.CourierID == "" {
				_ = h.wsWriteMessage(conn, websocket.TextMessage, []byte(`{"type":"error","error":"courierId required"}`))
				continue
			}
			h.coord.HandleJoinCourier(sub, join.CourierID)

		case contracts.EventJoinAdminChannel:
			h.coord.HandleJoinAdmin(sub)

		case contracts.EventLocationUpdate:
			// fire and forget: ingestion errors are logged by the
			// coordinator and never reported back to the sender
			_ = h.coord.HandleLocationUpdate(r.Context(), msg.Data)

		default:
			_ = h.wsWriteMessage(conn, websocket.TextMessage, []byte(`{"type":"error","error":"unknown message type"}`))
		}
	}
}
