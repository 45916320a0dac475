package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/getpassword/getpassword-go/internal/middleware"
	"github.com/getpassword/getpassword-go/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// HandleEvents handles GET /api/v1/session/events: a WebSocket that receives
// the current state immediately and again after every change.
func (h *SessionHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	updates := make(chan session.State, 1)
	unsubscribe, err := h.service.Subscribe(id, latest(updates))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	defer unsubscribe()

	current, err := h.service.State(id)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "session_id", id, "error", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	last := current
	if err := writeState(conn, current); err != nil {
		return
	}

	for {
		select {
		case st := <-updates:
			if isStale(st, last) {
				continue
			}
			last = st
			if err := writeState(conn, st); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeState(conn *websocket.Conn, st session.State) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(st)
}

// isStale reports whether st is older than the state already sent.
func isStale(st, sent session.State) bool {
	if st.Generation != sent.Generation {
		return st.Generation < sent.Generation
	}
	return st == sent
}
