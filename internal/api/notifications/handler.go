package notifications

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/CaioAP/scuderia/internal/api/response"
	"github.com/CaioAP/scuderia/internal/storage"
)

type Handler struct {
	Store storage.NotificationStore
	Log   *zap.SugaredLogger
}

func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.Recent(r.Context())
	if err != nil {
		h.Log.Errorw("failed to load notifications", "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.MarkAllRead(r.Context()); err != nil {
		h.Log.Errorw("failed to mark notifications read", "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID <= 0 {
		response.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	err := h.Store.MarkRead(r.Context(), req.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.Error(w, http.StatusNotFound, "notification not found")
	case err != nil:
		h.Log.Errorw("failed to mark notification read", "notification_id", req.ID, "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
