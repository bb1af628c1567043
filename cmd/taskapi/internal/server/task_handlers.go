package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/models"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/services/task"
)

// TaskResponse is the JSON representation of a task.
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Completed   bool       `json:"completed"`
	Overdue     bool       `json:"overdue"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskListResponse wraps GET /tasks results.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

func toTaskResponse(t *models.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Completed:   t.Completed,
		Overdue:     t.IsOverdue(now),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TaskHandlers serves the /tasks resource.
type TaskHandlers struct {
	service *task.Service
	logger  *zap.Logger
}

// NewTaskHandlers binds handlers to service.
func NewTaskHandlers(service *task.Service, logger *zap.Logger) *TaskHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandlers{service: service, logger: logger}
}

// Mount registers the task routes on r.
func (h *TaskHandlers) Mount(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles GET /tasks?filter=<bexpr>.
func (h *TaskHandlers) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.ListTasks(r.Context(), r.URL.Query().Get("filter"))
	if err != nil {
		writeTaskError(w, h.logger, err)
		return
	}

	now := time.Now()
	resp := TaskListResponse{Tasks: make([]TaskResponse, 0, len(tasks))}
	for i := range tasks {
		resp.Tasks = append(resp.Tasks, toTaskResponse(&tasks[i], now))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /tasks.
func (h *TaskHandlers) Create(w http.ResponseWriter, r *http.Request) {
	in, err := h.service.DecodeInput(r.Body)
	if err != nil {
		writeTaskError(w, h.logger, err)
		return
	}

	created, err := h.service.CreateTask(r.Context(), in)
	if err != nil {
		writeTaskError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/tasks/"+created.ID)
	writeJSON(w, http.StatusCreated, toTaskResponse(created, time.Now()))
}

// Get handles GET /tasks/{id}.
func (h *TaskHandlers) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeTaskError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(t, time.Now()))
}

// Update handles PUT /tasks/{id}.
func (h *TaskHandlers) Update(w http.ResponseWriter, r *http.Request) {
	in, err := h.service.DecodeInput(r.Body)
	if err != nil {
		writeTaskError(w, h.logger, err)
		return
	}

	updated, err := h.service.UpdateTask(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeTaskError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(updated, time.Now()))
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeTaskError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
