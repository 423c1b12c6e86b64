package notifications

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterNotificationRoutes registers the notification bell routes on r.
func RegisterNotificationRoutes(r *mux.Router, handler *Handler) {
	r.HandleFunc("/api/v1/notifications/recent", handler.Recent).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/notifications/read", handler.MarkAllRead).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/notifications/read", handler.MarkRead).Methods(http.MethodPatch)
}
