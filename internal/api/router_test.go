package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CaioAP/scuderia/internal/auth"
	"github.com/CaioAP/scuderia/internal/metrics"
	"github.com/CaioAP/scuderia/internal/middleware"
	"github.com/CaioAP/scuderia/internal/models"
	"github.com/CaioAP/scuderia/internal/storage/memory"
	"github.com/CaioAP/scuderia/internal/storage/seed"
	"github.com/CaioAP/scuderia/internal/ws"
)

const secret = "router-secret"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := zap.NewNop().Sugar()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m := metrics.New()
	hub := ws.NewHub(log, m.WSClients)
	go hub.Run(ctx)

	srv := httptest.NewServer(NewRouter(Deps{
		Messages:      memory.NewSeededMessageStore(log),
		Notifications: memory.NewNotificationStore(log, seed.Notifications()),
		Hub:           hub,
		Metrics:       m,
		Verifier:      auth.NewVerifier(secret),
		Limiter:       middleware.NewRateLimiter(0, log),
		CORSOrigin:    "http://127.0.0.1:5173",
		Log:           log,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func token(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := auth.NewSigner(secret).Sign(u, time.Minute)
	require.NoError(t, err)
	return tok
}

func TestRouter_PublicEndpoints(t *testing.T) {
	srv := newServer(t)

	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get(middleware.RequestIDHeader))

	res, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "feed_websocket_clients")

	res, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestRouter_Preflight(t *testing.T) {
	srv := newServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/messages/1/like", nil)
	req.Header.Set("Origin", "http://127.0.0.1:5173")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "http://127.0.0.1:5173", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_ProtectedRequiresToken(t *testing.T) {
	srv := newServer(t)

	for _, path := range []string{"/api/v1/messages", "/api/v1/notifications/recent"} {
		res, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode, path)
	}
}

func TestRouter_WebsocketReceivesFeedEvents(t *testing.T) {
	srv := newServer(t)
	alice := &models.User{ID: 1, Name: "Alice Johnson"}

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/feed?token=" + token(t, alice)
	conn, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	res.Body.Close()
	defer conn.Close()

	// the hub registers asynchronously; publish until the client sees an event
	var evt ws.Event
	deadline := time.Now().Add(3 * time.Second)
	conn.SetReadDeadline(deadline)
	received := make(chan error, 1)
	go func() {
		_, data, err := conn.ReadMessage()
		if err == nil {
			err = json.Unmarshal(data, &evt)
		}
		received <- err
	}()

	for {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/messages/3/like", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, alice))
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		require.Equal(t, http.StatusNoContent, res.StatusCode)

		select {
		case err := <-received:
			require.NoError(t, err)
			assert.Equal(t, ws.EventMessageLiked, evt.Type)
			assert.Equal(t, int64(3), evt.MessageID)
			assert.Equal(t, int64(1), evt.UserID)
			return
		case <-time.After(50 * time.Millisecond):
		}
		require.True(t, time.Now().Before(deadline), "no websocket event received")
	}
}

func TestRouter_WebsocketRejectsForeignOrigin(t *testing.T) {
	srv := newServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/feed?token=" + token(t, &models.User{ID: 1})
	header := http.Header{"Origin": {"https://evil.example"}}
	_, res, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}
