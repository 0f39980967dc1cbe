// Package api exposes the todo and category services over HTTP. The layer
// is deliberately thin: it decodes input, resolves the acting user, maps
// service errors to status codes, and contains no ordering or recurrence
// logic of its own.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"taskdesk/internal/model"
	"taskdesk/internal/repository"
	"taskdesk/internal/service"
)

// Handler handles task-management HTTP requests.
type Handler struct {
	users      *repository.UserRepository
	todos      *service.TodoService
	categories *service.CategoryService
}

// NewHandler creates a new API handler.
func NewHandler(users *repository.UserRepository, todos *service.TodoService, categories *service.CategoryService) *Handler {
	return &Handler{users: users, todos: todos, categories: categories}
}

// user resolves the acting user from the X-User-ID header. Session
// mechanics live outside this service; the header is the contract with the
// fronting auth layer.
func (h *Handler) user(ctx context.Context, r *http.Request) (*model.User, bool) {
	raw := r.Header.Get("X-User-ID")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, false
	}
	user, err := h.users.FindByID(ctx, uint(id))
	if err != nil {
		return nil, false
	}
	return user, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(out)
}

// writeServiceErr maps the service error taxonomy onto status codes.
func writeServiceErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		writeErr(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrInvalidInput):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}

// pathID parses the {id} segment of the request path.
func pathID(r *http.Request) (uint, bool) {
	return parseUintParam(r.PathValue("id"))
}

func parseUintParam(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
