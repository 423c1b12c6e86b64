package messages

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/CaioAP/scuderia/internal/api/response"
	"github.com/CaioAP/scuderia/internal/auth"
	"github.com/CaioAP/scuderia/internal/feed"
	"github.com/CaioAP/scuderia/internal/metrics"
	"github.com/CaioAP/scuderia/internal/models"
	"github.com/CaioAP/scuderia/internal/sanitize"
	"github.com/CaioAP/scuderia/internal/storage"
	"github.com/CaioAP/scuderia/internal/timefmt"
	"github.com/CaioAP/scuderia/internal/ws"
)

const publishTimeout = time.Second

type Handler struct {
	Store   storage.MessageStore
	Hub     *ws.Hub
	Metrics *metrics.Metrics
	Log     *zap.SugaredLogger

	// AllowedOrigin is accepted on websocket handshakes besides same-origin.
	AllowedOrigin string
	// Now is the clock used for timeAgo; nil means time.Now.
	Now func() time.Time
}

// FeedItem is a message ready for display.
type FeedItem struct {
	*models.Message
	SafeContent string `json:"safeContent"` // Sanitized Content, safe to inject as markup
	TimeAgo     string `json:"timeAgo"`
	AuthorName  string `json:"authorName"`
}

func (h *Handler) item(m *models.Message, now time.Time) FeedItem {
	return FeedItem{
		Message:     m,
		SafeContent: sanitize.Sanitize(m.Content),
		TimeAgo:     timefmt.FormatAt(m.CreatedAt, now),
		AuthorName:  m.AuthorName(),
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// ParseQuery reads the list filters: author, q, from, to (RFC 3339) and min_likes.
func ParseQuery(r *http.Request) (feed.Query, error) {
	var q feed.Query
	v := r.URL.Query()

	if s := v.Get("author"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return q, errors.New("author must be a positive integer")
		}
		q.AuthorID = id
	}
	q.Term = v.Get("q")
	if s := v.Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, errors.New("from must be an RFC 3339 timestamp")
		}
		q.From = t
	}
	if s := v.Get("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, errors.New("to must be an RFC 3339 timestamp")
		}
		q.To = t
	}
	if s := v.Get("min_likes"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return q, errors.New("min_likes must be an integer")
		}
		q.MinLikes, q.HasMinLikes = n, true
	}
	return q, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	viewer, ok := auth.UserFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "missing auth")
		return
	}
	q, err := ParseQuery(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	msgs, err := h.Store.List(r.Context(), viewer.ID)
	if err != nil {
		h.fail(w, r, "list messages", err)
		return
	}

	now := h.now()
	msgs = q.Apply(msgs)
	items := make([]FeedItem, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, h.item(m, now))
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	author, ok := auth.UserFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "missing auth")
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		response.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	msg, err := h.Store.Create(r.Context(), author, req.Content)
	if err != nil {
		h.fail(w, r, "create message", err)
		return
	}
	h.Metrics.MessagesCreated.Inc()

	evt := ws.NewEvent(ws.EventMessageCreated, msg.ID, author.ID)
	evt.Message = msg
	h.publish(r.Context(), evt)

	response.JSON(w, http.StatusCreated, h.item(msg, h.now()))
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "like", h.Store.Like, ws.EventMessageLiked)
}

func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, "unlike", h.Store.Unlike, ws.EventMessageUnliked)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, op string, apply func(ctx context.Context, viewerID, messageID int64) error, event string) {
	viewer, ok := auth.UserFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "missing auth")
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid message id")
		return
	}

	if err := apply(r.Context(), viewer.ID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.Metrics.ObserveLike(op, metrics.ResultNotFound)
		} else {
			h.Metrics.ObserveLike(op, metrics.ResultError)
		}
		h.fail(w, r, op+" message", err)
		return
	}
	h.Metrics.ObserveLike(op, metrics.ResultOK)
	h.publish(r.Context(), ws.NewEvent(event, id, viewer.ID))
	w.WriteHeader(http.StatusNoContent)
}

// publish is best effort: a slow or stopped hub never fails the request.
func (h *Handler) publish(ctx context.Context, evt ws.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := h.Hub.Publish(ctx, evt); err != nil {
		h.Log.Warnw("failed to publish feed event", "type", evt.Type, "message_id", evt.MessageID, "error", err)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.Error(w, http.StatusNotFound, "message not found")
	case errors.Is(err, storage.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.Log.Errorw("failed to "+op, "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "internal error")
	}
}
