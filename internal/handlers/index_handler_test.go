package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayjournal/backend/web"
)

func TestIndexHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("renders page", func(t *testing.T) {
		h, err := NewIndexHandler(web.Templates, "1.0.0", false, logger)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "<title>Journal</title>")
		assert.Contains(t, w.Body.String(), "/static/app.js")
		assert.NotContains(t, w.Body.String(), `id="token"`)
	})

	t.Run("asks for a token when auth is on", func(t *testing.T) {
		h, err := NewIndexHandler(web.Templates, "1.0.0", true, logger)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Contains(t, w.Body.String(), `id="token"`)
	})
}
