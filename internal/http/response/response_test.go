package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/seohyun-lee/bookduck-backend/internal/errors"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	Success(w, map[string]string{"message": "test"}, discard())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	out := decode(t, w)
	assert.EqualValues(t, 1, out["v"])
	assert.Equal(t, true, out["success"])
	assert.Equal(t, map[string]any{"message": "test"}, out["data"])
	assert.NotContains(t, out, "error")
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	NotFound(w, "nothing here", discard())

	assert.Equal(t, http.StatusNotFound, w.Code)
	out := decode(t, w)
	assert.Equal(t, false, out["success"])
	assert.NotContains(t, out, "data")
	assert.Equal(t, map[string]any{"code": "NOT_FOUND", "message": "nothing here"}, out["error"])
}

func TestTooManyRequests(t *testing.T) {
	w := httptest.NewRecorder()
	TooManyRequests(w, "slow down", nil)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	out := decode(t, w)
	assert.Equal(t, CodeRateLimited, out["error"].(map[string]any)["code"])
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"domain", domainerrors.Conflict("taken"), http.StatusConflict, "CONFLICT", "taken"},
		{"wrapped domain", errors.Join(errors.New("ctx"), domainerrors.Unauthorized("not yours")), http.StatusForbidden, "UNAUTHORIZED", "not yours"},
		{"upstream", domainerrors.UpstreamUnavailable("catalog down", errors.New("dial")), http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "catalog down"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, discard())

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)["error"].(map[string]any)
			assert.Equal(t, tt.wantCode, body["code"])
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestHandleError_Details(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, domainerrors.InvalidArgumentWithDetails("bad input", map[string]string{"email": "required"}), discard())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)["error"].(map[string]any)
	assert.Equal(t, map[string]any{"email": "required"}, body["details"])
}
