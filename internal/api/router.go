// Package api assembles the HTTP surface of the feed service.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/CaioAP/scuderia/internal/api/messages"
	"github.com/CaioAP/scuderia/internal/api/notifications"
	"github.com/CaioAP/scuderia/internal/api/response"
	"github.com/CaioAP/scuderia/internal/auth"
	"github.com/CaioAP/scuderia/internal/metrics"
	"github.com/CaioAP/scuderia/internal/middleware"
	"github.com/CaioAP/scuderia/internal/storage"
	"github.com/CaioAP/scuderia/internal/ws"
)

type Deps struct {
	Messages      storage.MessageStore
	Notifications storage.NotificationStore
	Hub           *ws.Hub
	Metrics       *metrics.Metrics
	Verifier      *auth.Verifier
	Limiter       *middleware.RateLimiter
	CORSOrigin    string
	Log           *zap.SugaredLogger
}

// NewRouter wires every route. /healthz and /metrics are public; everything
// else requires a bearer token.
func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", d.Metrics.Handler()).Methods(http.MethodGet)

	protected := r.NewRoute().Subrouter()
	protected.Use(middleware.Auth(d.Verifier, d.Log), d.Limiter.Handler)

	messages.RegisterMessageRoutes(protected, &messages.Handler{
		Store:         d.Messages,
		Hub:           d.Hub,
		Metrics:       d.Metrics,
		Log:           d.Log,
		AllowedOrigin: d.CORSOrigin,
	})
	notifications.RegisterNotificationRoutes(protected, &notifications.Handler{
		Store: d.Notifications,
		Log:   d.Log,
	})

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	var h http.Handler = r
	h = middleware.CORS(d.CORSOrigin, d.Log)(h)
	h = middleware.AccessLog(d.Log)(h)
	h = middleware.RequestID(h)
	return h
}
