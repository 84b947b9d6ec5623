package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"viralio/internal/api/v1/dto"
	"viralio/internal/middleware"
	"viralio/internal/model"
	"viralio/internal/repository"
	"viralio/internal/service"

	"github.com/go-playground/validator/v10"
)

// TaskHandler handles task, category and inspiration link endpoints
type TaskHandler struct {
	taskService service.TaskService
	validate    *validator.Validate
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, validate *validator.Validate) *TaskHandler {
	return &TaskHandler{taskService: taskService, validate: validate}
}

// RegisterRoutes mounts task routes
func (h *TaskHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/tasks", authMw(http.HandlerFunc(h.handleTasks)))
	mux.Handle("/tasks/", authMw(http.HandlerFunc(h.handleTask)))
	mux.Handle("/categories", authMw(http.HandlerFunc(h.handleCategories)))
	mux.Handle("/categories/", authMw(http.HandlerFunc(h.deleteCategory)))
}

func taskResponse(t *model.Task) dto.TaskResponseDTO {
	return dto.TaskResponseDTO{
		ID:               t.ID,
		UserID:           t.UserID,
		Title:            t.Title,
		Niche:            t.Niche,
		Format:           string(t.Format),
		Status:           string(t.Status),
		Hook:             t.Hook,
		Body:             t.Body,
		CTA:              t.CTA,
		PublishDate:      t.PublishDate,
		CategoryID:       t.CategoryID,
		IsAdminCaseStudy: t.IsAdminCaseStudy,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func (h *TaskHandler) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listTasks(w, r)
	case http.MethodPost:
		h.createTask(w, r)
	default:
		http.NotFound(w, r)
	}
}

// listTasks godoc
// @Summary List the user's tasks
// @Description Returns the authenticated user's tasks, newest first.
// @Tags tasks
// @Produce json
// @Success 200 {array} dto.TaskResponseDTO
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Failure 500 {string} string "Failed to list tasks"
// @Router /tasks [get]
func (h *TaskHandler) listTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	tasks, err := h.taskService.List(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to list tasks: "+err.Error(), http.StatusInternalServerError)
		return
	}
	resp := make([]dto.TaskResponseDTO, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, taskResponse(&tasks[i]))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// createTask godoc
// @Summary Create a task
// @Description Creates a task for the authenticated user, subject to the plan's task limit.
// @Tags tasks
// @Accept json
// @Produce json
// @Param task body dto.TaskCreateDTO true "Task creation request"
// @Success 201 {object} dto.TaskResponseDTO
// @Failure 400 {string} string "Invalid JSON payload, validation failed or task limit reached"
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Failure 500 {string} string "Failed to create task"
// @Router /tasks [post]
func (h *TaskHandler) createTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.TaskCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	task := &model.Task{
		UserID:      userID,
		Title:       req.Title,
		Niche:       req.Niche,
		Format:      model.Format(req.Format),
		PublishDate: req.PublishDate,
		CategoryID:  req.CategoryID,
	}
	if req.Status != nil {
		task.Status = model.TaskStatus(*req.Status)
	}
	if req.Hook != nil {
		task.Hook = *req.Hook
	}
	if req.Body != nil {
		task.Body = *req.Body
	}
	if req.CTA != nil {
		task.CTA = *req.CTA
	}
	err := h.taskService.Create(r.Context(), task)
	var limitErr *service.TaskLimitError
	switch {
	case errors.As(err, &limitErr):
		http.Error(w, limitErr.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, repository.ErrCategoryNotOwned):
		// The task was created; only the category was dropped.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(taskResponse(task))
		return
	case err != nil:
		http.Error(w, "Failed to create task: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(taskResponse(task))
}

func (h *TaskHandler) handleTask(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/tasks/")
	if rest == "" {
		http.NotFound(w, r)
		return
	}
	// /tasks/{id}/links and /tasks/{id}/links/{linkId}
	if parts := strings.SplitN(rest, "/", 3); len(parts) >= 2 && parts[1] == "links" {
		h.handleLinks(w, r, parts)
		return
	}
	switch r.Method {
	case http.MethodPut:
		h.updateTask(w, r, rest)
	case http.MethodDelete:
		h.deleteTask(w, r, rest)
	default:
		http.NotFound(w, r)
	}
}

// updateTask godoc
// @Summary Update a task
// @Description Updates a task; Kanban status moves are limited to adjacent columns.
// @Tags tasks
// @Accept json
// @Produce json
// @Param taskId path string true "Task ID"
// @Param task body dto.TaskUpdateDTO true "Task update request"
// @Success 200 {object} dto.TaskResponseDTO
// @Failure 400 {string} string "Invalid JSON payload, validation failed or invalid status transition"
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Failure 404 {string} string "Task not found"
// @Failure 500 {string} string "Failed to update task"
// @Router /tasks/{taskId} [put]
func (h *TaskHandler) updateTask(w http.ResponseWriter, r *http.Request, taskID string) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req dto.TaskUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	existing, err := h.fetchOwned(r, taskID, userID)
	if err != nil {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	if req.Title != nil {
		existing.Title = *req.Title
	}
	if req.Niche != nil {
		existing.Niche = *req.Niche
	}
	if req.Format != nil {
		existing.Format = model.Format(*req.Format)
	}
	if req.Status != nil {
		existing.Status = model.TaskStatus(*req.Status)
	}
	if req.Hook != nil {
		existing.Hook = *req.Hook
	}
	if req.Body != nil {
		existing.Body = *req.Body
	}
	if req.CTA != nil {
		existing.CTA = *req.CTA
	}
	if req.PublishDate != nil {
		existing.PublishDate = req.PublishDate
	}
	if req.CategoryID != nil {
		existing.CategoryID = req.CategoryID
	}

	err = h.taskService.Update(r.Context(), userID, existing)
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	case errors.Is(err, service.ErrInvalidTransition):
		http.Error(w, "Invalid status transition", http.StatusBadRequest)
		return
	case errors.Is(err, service.ErrCaseStudyReadOnly):
		http.Error(w, "Case studies are read-only", http.StatusForbidden)
		return
	case errors.Is(err, repository.ErrCategoryNotOwned):
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(taskResponse(existing))
		return
	case err != nil:
		http.Error(w, "Failed to update task: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(taskResponse(existing))
}

// fetchOwned finds the task among the user's own list.
func (h *TaskHandler) fetchOwned(r *http.Request, taskID, userID string) (*model.Task, error) {
	tasks, err := h.taskService.List(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == taskID {
			return &tasks[i], nil
		}
	}
	return nil, service.ErrTaskNotFound
}

// deleteTask godoc
// @Summary Delete a task
// @Description Deletes a task owned by the authenticated user, freeing a plan slot.
// @Tags tasks
// @Param taskId path string true "Task ID"
// @Success 204 {string} string "Deleted"
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Failure 404 {string} string "Task not found"
// @Failure 500 {string} string "Failed to delete task"
// @Router /tasks/{taskId} [delete]
func (h *TaskHandler) deleteTask(w http.ResponseWriter, r *http.Request, taskID string) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	err := h.taskService.Delete(r.Context(), taskID, userID)
	if errors.Is(err, service.ErrTaskNotFound) {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to delete task: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) handleCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	switch r.Method {
	case http.MethodGet:
		categories, err := h.taskService.ListCategories(r.Context(), userID)
		if err != nil {
			http.Error(w, "Failed to list categories: "+err.Error(), http.StatusInternalServerError)
			return
		}
		resp := make([]dto.CategoryResponseDTO, 0, len(categories))
		for _, c := range categories {
			resp = append(resp, dto.CategoryResponseDTO{ID: c.ID, Name: c.Name, Color: c.Color, CreatedAt: c.CreatedAt})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)

	case http.MethodPost:
		var req dto.CategoryCreateDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := h.validate.Struct(&req); err != nil {
			http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
			return
		}
		category := &model.TaskCategory{UserID: userID, Name: req.Name, Color: req.Color}
		err := h.taskService.CreateCategory(r.Context(), category)
		if errors.Is(err, repository.ErrCategoryLimitReached) {
			http.Error(w, "Category limit reached", http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, "Failed to create category: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(dto.CategoryResponseDTO{ID: category.ID, Name: category.Name, Color: category.Color, CreatedAt: category.CreatedAt})

	default:
		http.NotFound(w, r)
	}
}

// deleteCategory godoc
// @Summary Delete a category
// @Description Deletes a category; tasks keep existing with their category cleared.
// @Tags tasks
// @Param categoryId path string true "Category ID"
// @Success 204 {string} string "Deleted"
// @Failure 401 {string} string "Unauthorized: User ID not found in context"
// @Failure 404 {string} string "Category not found"
// @Router /categories/{categoryId} [delete]
func (h *TaskHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	categoryID := strings.TrimPrefix(r.URL.Path, "/categories/")
	if err := h.taskService.DeleteCategory(r.Context(), categoryID, userID); err != nil {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) handleLinks(w http.ResponseWriter, r *http.Request, parts []string) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		http.Error(w, "Unauthorized: User ID not found in context", http.StatusUnauthorized)
		return
	}
	taskID := parts[0]

	switch {
	case r.Method == http.MethodGet && len(parts) == 2:
		links, err := h.taskService.ListLinks(r.Context(), taskID, userID)
		if errors.Is(err, service.ErrTaskNotFound) {
			http.Error(w, "Task not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Failed to list links: "+err.Error(), http.StatusInternalServerError)
			return
		}
		resp := make([]dto.LinkResponseDTO, 0, len(links))
		for _, l := range links {
			resp = append(resp, dto.LinkResponseDTO{ID: l.ID, TaskID: l.TaskID, URL: l.URL, ThumbnailURL: l.ThumbnailURL, CreatedAt: l.CreatedAt})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)

	case r.Method == http.MethodPost && len(parts) == 2:
		var req dto.LinkCreateDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := h.validate.Struct(&req); err != nil {
			http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
			return
		}
		link, err := h.taskService.AddLink(r.Context(), taskID, userID, req.URL)
		if errors.Is(err, service.ErrTaskNotFound) {
			http.Error(w, "Task not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Failed to add link: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(dto.LinkResponseDTO{ID: link.ID, TaskID: link.TaskID, URL: link.URL, ThumbnailURL: link.ThumbnailURL, CreatedAt: link.CreatedAt})

	case r.Method == http.MethodDelete && len(parts) == 3:
		if err := h.taskService.DeleteLink(r.Context(), parts[2], taskID, userID); err != nil {
			http.Error(w, "Link not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.NotFound(w, r)
	}
}
