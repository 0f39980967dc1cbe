package api

import (
	"net/http"

	"taskdesk/internal/model"
)

type CategoryResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
}

func categoryResponse(category *model.Category) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		SortOrder: category.SortOrder,
	}
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

// POST /api/categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(r.Context(), r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unknown user")
		return
	}
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed body")
		return
	}

	category, err := h.categories.Create(r.Context(), user, req.Name)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse(category))
}

// GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(r.Context(), r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unknown user")
		return
	}

	categories, err := h.categories.List(r.Context(), user)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, categoryResponse(&categories[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

type moveCategoryRequest struct {
	Index *int `json:"index"`
}

// POST /api/categories/{id}/move
func (h *Handler) MoveCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(r.Context(), r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unknown user")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "malformed id")
		return
	}
	var req moveCategoryRequest
	if err := decodeJSON(r, &req); err != nil || req.Index == nil {
		writeErr(w, http.StatusBadRequest, "index is required")
		return
	}

	moved, err := h.categories.Move(r.Context(), user, id, *req.Index)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse(moved))
}

// DELETE /api/categories/{id}
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(r.Context(), r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unknown user")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "malformed id")
		return
	}

	if err := h.categories.Delete(r.Context(), user, id); err != nil {
		writeServiceErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
