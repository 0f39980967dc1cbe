package api

import "net/http"

// Routes builds the API mux, wrapped in the request-ID/access-log
// middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/todos", h.ListTodos)
	mux.HandleFunc("POST /api/todos", h.CreateTodo)
	mux.HandleFunc("POST /api/todos/{id}/move", h.MoveTodo)
	mux.HandleFunc("POST /api/todos/{id}/complete", h.CompleteTodo)
	mux.HandleFunc("POST /api/todos/{id}/recurrence/stop", h.StopTodoRecurrence)
	mux.HandleFunc("DELETE /api/todos/{id}", h.DeleteTodo)

	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("POST /api/categories", h.CreateCategory)
	mux.HandleFunc("POST /api/categories/{id}/move", h.MoveCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", h.DeleteCategory)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return withRequestLog(mux)
}
