package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dayjournal/backend/internal/database"
	"github.com/dayjournal/backend/internal/models"
	"github.com/dayjournal/backend/internal/services"
)

const maxBodyBytes = 1_048_576

const (
	msgInvalidBody   = "Invalid request body"
	msgRequired      = "Title and content are required"
	msgTitleTooLong  = "Title must be at most 255 characters"
	msgEntryNotFound = "Entry not found"
	msgDeleted       = "Entry deleted successfully"
)

// EntryStore is the persistence the entry endpoints need.
type EntryStore interface {
	List(ctx context.Context) ([]models.JournalEntry, error)
	Create(ctx context.Context, title, content string) (models.JournalEntry, error)
	Update(ctx context.Context, id int64, title, content string) (models.JournalEntry, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// EntryRequest is the body of create and update calls.
// @Description Entry payload
type EntryRequest struct {
	Title   string `json:"title" validate:"required,max=255" example:"Day 1"` // Entry title
	Content string `json:"content" validate:"required" example:"Hello"`       // Entry body
}

// EntryListResponse is returned by GET /api/entries.
type EntryListResponse struct {
	Success bool                  `json:"success" example:"true"`
	Entries []models.JournalEntry `json:"entries"`
}

// EntryResponse is returned by create and update.
type EntryResponse struct {
	Success bool                `json:"success" example:"true"`
	Entry   models.JournalEntry `json:"entry"`
}

// MessageResponse is returned by delete.
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Entry deleted successfully"`
}

type EntryHandler struct {
	store     EntryStore
	validator *services.ValidationHelper
	logger    *slog.Logger
}

func NewEntryHandler(store EntryStore, logger *slog.Logger) *EntryHandler {
	return &EntryHandler{
		store:     store,
		validator: services.NewValidationHelper(),
		logger:    logger,
	}
}

// ListEntries returns all journal entries
// @Summary List entries
// @Description Return every journal entry, newest first
// @Tags Entries
// @Produce json
// @Security BearerAuth
// @Success 200 {object} EntryListResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 429 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /entries [get]
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.List(r.Context())
	if err != nil {
		h.sendStoreError(w, r, err)
		return
	}

	services.SendJSON(w, http.StatusOK, EntryListResponse{Success: true, Entries: entries})
}

// CreateEntry creates a journal entry
// @Summary Create entry
// @Description Create a journal entry from a title and content
// @Tags Entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EntryRequest true "Entry payload"
// @Success 201 {object} EntryResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 429 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /entries [post]
func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}

	entry, err := h.store.Create(r.Context(), req.Title, req.Content)
	if err != nil {
		h.sendStoreError(w, r, err)
		return
	}

	services.SendJSON(w, http.StatusCreated, EntryResponse{Success: true, Entry: entry})
}

// UpdateEntry replaces title and content of an entry
// @Summary Update entry
// @Description Replace title and content of an existing entry
// @Tags Entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Param request body EntryRequest true "Entry payload"
// @Success 200 {object} EntryResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 429 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /entries/{id} [put]
func (h *EntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(r)
	if !ok {
		services.SendErrorResponse(w, msgEntryNotFound, http.StatusNotFound, nil)
		return
	}

	req, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}

	entry, err := h.store.Update(r.Context(), id, req.Title, req.Content)
	if err != nil {
		h.sendStoreError(w, r, err)
		return
	}

	services.SendJSON(w, http.StatusOK, EntryResponse{Success: true, Entry: entry})
}

// DeleteEntry deletes an entry
// @Summary Delete entry
// @Description Permanently delete an entry
// @Tags Entries
// @Produce json
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 429 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /entries/{id} [delete]
func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(r)
	if !ok {
		services.SendErrorResponse(w, msgEntryNotFound, http.StatusNotFound, nil)
		return
	}

	if _, err := h.store.Delete(r.Context(), id); err != nil {
		h.sendStoreError(w, r, err)
		return
	}

	services.SendJSON(w, http.StatusOK, MessageResponse{Success: true, Message: msgDeleted})
}

// decodeEntry reads and validates the request body. It writes the 400
// response itself and returns false when the body is unusable.
func (h *EntryHandler) decodeEntry(w http.ResponseWriter, r *http.Request) (EntryRequest, bool) {
	var req *EntryRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil || req == nil {
		services.SendErrorResponse(w, msgInvalidBody, http.StatusBadRequest, nil)
		return EntryRequest{}, false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, msgInvalidBody, http.StatusBadRequest, nil)
		return EntryRequest{}, false
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)

	if err := h.validator.ValidateStruct(req); err != nil {
		services.SendErrorResponse(w, validationMessage(err), http.StatusBadRequest, err)
		return EntryRequest{}, false
	}

	return *req, true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				return msgRequired
			}
		}
		return msgTitleTooLong
	}
	return msgInvalidBody
}

func (h *EntryHandler) sendStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrEntryNotFound):
		services.SendErrorResponse(w, msgEntryNotFound, http.StatusNotFound, nil)
	case errors.Is(err, database.ErrAcquireTimeout):
		h.logger.WarnContext(r.Context(), "database connection unavailable", slog.String("error", err.Error()))
		services.SendErrorResponse(w, err.Error(), http.StatusServiceUnavailable, nil)
	default:
		h.logger.ErrorContext(r.Context(), "entry store failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
	}
}

// entryID parses the {id} route parameter. Values that do not fit in an
// int64 cannot name an existing entry.
func entryID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
