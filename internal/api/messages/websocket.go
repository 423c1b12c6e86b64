package messages

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/CaioAP/scuderia/internal/api/response"
	"github.com/CaioAP/scuderia/internal/auth"
	"github.com/CaioAP/scuderia/internal/ws"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == h.AllowedOrigin || origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}
}

// ServeWS streams feed events to the viewer. Clients only listen; anything
// they send is discarded.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.UserFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "missing auth")
		return
	}
	conn, err := h.upgrader().Upgrade(w, r, nil)
	if err != nil {
		h.Log.Debugw("websocket upgrade failed", "error", err)
		return
	}

	client := ws.NewClient(viewer.ID, conn)
	if err := h.Hub.Subscribe(r.Context(), client); err != nil {
		conn.Close()
		return
	}

	// Read pump
	go func() {
		defer func() {
			h.Hub.Leave(client)
			conn.Close()
		}()
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
	// Write pump
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer func() {
			ticker.Stop()
			conn.Close()
		}()
		for {
			select {
			case message, ok := <-client.Send:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if !ok {
					conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
}
