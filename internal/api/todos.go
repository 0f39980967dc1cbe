package api

import (
	"net/http"
	"time"

	"taskdesk/internal/model"
	"taskdesk/internal/recurrence"
	"taskdesk/internal/service"
)

// TodoResponse is the wire shape of a todo. RecurrenceLabel is the display
// form of the rule ("Daily", "Weekly on Mon, Fri", "Custom", ...).
type TodoResponse struct {
	ID              uint           `json:"id"`
	CategoryID      *uint          `json:"categoryId,omitempty"`
	CategoryName    string         `json:"categoryName,omitempty"`
	ParentID        *uint          `json:"parentId,omitempty"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	Priority        model.Priority `json:"priority"`
	Completed       bool           `json:"completed"`
	DueDate         *time.Time     `json:"dueDate,omitempty"`
	SortOrder       int            `json:"sortOrder"`
	RecurrenceRule  string         `json:"recurrenceRule,omitempty"`
	RecurrenceLabel string         `json:"recurrenceLabel,omitempty"`
	RecurrenceEnd   *time.Time     `json:"recurrenceEnd,omitempty"`
}

func todoResponse(todo *model.Todo) TodoResponse {
	resp := TodoResponse{
		ID:             todo.ID,
		CategoryID:     todo.CategoryID,
		ParentID:       todo.ParentID,
		Title:          todo.Title,
		Description:    todo.Description,
		Priority:       todo.Priority,
		Completed:      todo.Completed,
		DueDate:        todo.DueDate,
		SortOrder:      todo.SortOrder,
		RecurrenceRule: todo.RecurrenceRule,
		RecurrenceEnd:  todo.RecurrenceEnd,
	}
	if todo.Category != nil {
		resp.CategoryName = todo.Category.Name
	}
	if todo.RecurrenceRule != "" {
		resp.RecurrenceLabel = recurrence.Describe(todo.RecurrenceRule)
	}
	return resp
}

type createTodoRequest struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Priority       model.Priority `json:"priority"`
	CategoryID     *uint          `json:"categoryId"`
	ParentID       *uint          `json:"parentId"`
	DueDate        *time.Time     `json:"dueDate"`
	RecurrenceRule string         `json:"recurrenceRule"`
	RecurrenceEnd  *time.Time     `json:"recurrenceEnd"`
}

// POST /api/todos
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(r.Context(), r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unknown user")
		return
	}
	var req createTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "malformed body")
		return
	}

	todo, err := h.todos.Create(r.Context(), user, service.TodoInput{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		CategoryID:     req.CategoryID,
		ParentID:       req.ParentID,
		DueDate:        req.DueDate,
		RecurrenceRule: req.RecurrenceRule,
		RecurrenceEnd:  req.RecurrenceEnd,
	})
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, todoResponse(todo))
}

// GET /api/todos[?category=<id>|none]
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(r.Context(), r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unknown user")
		return
	}

	var categoryID *uint
	scoped := false
	if raw := r.URL.Query().Get("category"); raw != "" {
		scoped = true
		if raw != "none" {
			id, ok := parseUintParam(raw)
			if !ok {
				writeErr(w, http.StatusBadRequest, "malformed category")
				return
			}
			categoryID = &id
		}
	}

	todos, err := h.todos.List(r.Context(), user, categoryID, scoped)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	out := make([]TodoResponse, 0, len(todos))
	for i := range todos {
		out = append(out, todoResponse(&todos[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

type moveTodoRequest struct {
	Index      *int  `json:"index"`
	CategoryID *uint `json:"categoryId"`
	// MoveCategory distinguishes "move into the uncategorized scope"
	// (true, CategoryID null) from a same-scope move (false).
	MoveCategory bool `json:"moveCategory"`
}

// POST /api/todos/{id}/move
func (h *Handler) MoveTodo(w http.ResponseWriter, r *http.Request) {
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
	var req moveTodoRequest
	if err := decodeJSON(r, &req); err != nil || req.Index == nil {
		writeErr(w, http.StatusBadRequest, "index is required")
		return
	}

	changeCategory := req.MoveCategory || req.CategoryID != nil
	moved, err := h.todos.Move(r.Context(), user, id, *req.Index, req.CategoryID, changeCategory)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todoResponse(moved))
}

// POST /api/todos/{id}/complete
func (h *Handler) CompleteTodo(w http.ResponseWriter, r *http.Request) {
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

	completed, successor, err := h.todos.Complete(r.Context(), user, id, time.Now())
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	resp := map[string]any{"todo": todoResponse(completed)}
	if successor != nil {
		resp["successor"] = todoResponse(successor)
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/todos/{id}/recurrence/stop
func (h *Handler) StopTodoRecurrence(w http.ResponseWriter, r *http.Request) {
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

	todo, err := h.todos.StopRecurrence(r.Context(), user, id)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todoResponse(todo))
}

// DELETE /api/todos/{id}
func (h *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
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

	if err := h.todos.Delete(r.Context(), user, id); err != nil {
		writeServiceErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
