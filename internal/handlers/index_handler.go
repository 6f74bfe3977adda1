package handlers

import (
	"bytes"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
)

type indexData struct {
	Title        string
	Version      string
	AuthRequired bool
}

// IndexHandler renders the landing page.
type IndexHandler struct {
	tmpl   *template.Template
	data   indexData
	logger *slog.Logger
}

// NewIndexHandler parses templates/index.html from fsys.
func NewIndexHandler(fsys fs.FS, version string, authRequired bool, logger *slog.Logger) (*IndexHandler, error) {
	tmpl, err := template.ParseFS(fsys, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &IndexHandler{
		tmpl:   tmpl,
		data:   indexData{Title: "Journal", Version: version, AuthRequired: authRequired},
		logger: logger,
	}, nil
}

func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, h.data); err != nil {
		h.logger.ErrorContext(r.Context(), "render index", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
