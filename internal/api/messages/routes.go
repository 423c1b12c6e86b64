package messages

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterMessageRoutes registers the feed REST and websocket routes on r.
// r is expected to run the auth middleware already.
func RegisterMessageRoutes(r *mux.Router, handler *Handler) {
	r.HandleFunc("/api/v1/messages", handler.List).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/messages", handler.Create).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/messages/{id:[0-9]+}/like", handler.Like).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/messages/{id:[0-9]+}/like", handler.Unlike).Methods(http.MethodDelete)
	r.HandleFunc("/ws/feed", handler.ServeWS).Methods(http.MethodGet)
}
