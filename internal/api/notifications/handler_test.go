package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CaioAP/scuderia/internal/models"
	"github.com/CaioAP/scuderia/internal/storage/memory"
	"github.com/CaioAP/scuderia/internal/storage/seed"
)

func newRouter() *mux.Router {
	log := zap.NewNop().Sugar()
	r := mux.NewRouter()
	RegisterNotificationRoutes(r, &Handler{Store: memory.NewNotificationStore(log, seed.Notifications()), Log: log})
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func recent(t *testing.T, r http.Handler) []models.Notification {
	t.Helper()
	rec := do(t, r, http.MethodGet, "/api/v1/notifications/recent", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out []models.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestNotifications(t *testing.T) {
	r := newRouter()

	items := recent(t, r)
	require.Len(t, items, 5)
	assert.False(t, items[1].Read)

	rec := do(t, r, http.MethodPatch, "/api/v1/notifications/read", `{"id":2}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, recent(t, r)[1].Read)

	rec = do(t, r, http.MethodPost, "/api/v1/notifications/read", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	for _, n := range recent(t, r) {
		assert.True(t, n.Read)
	}
}

func TestMarkRead_Errors(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "unknown id", body: `{"id":99}`, want: http.StatusNotFound},
		{name: "missing id", body: `{}`, want: http.StatusBadRequest},
		{name: "malformed", body: `{"id":`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, http.MethodPatch, "/api/v1/notifications/read", tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newRouter(), http.MethodDelete, "/api/v1/notifications/read", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
