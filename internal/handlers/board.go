package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/askar/teamboard/internal/logger"
	"github.com/askar/teamboard/internal/middleware"
	"github.com/askar/teamboard/internal/models"
	boardservice "github.com/askar/teamboard/internal/service/board"
	"github.com/askar/teamboard/internal/store"
)

// BoardHandler exposes task CRUD for the kanban board.
type BoardHandler struct {
	service  *boardservice.Service
	validate *validator.Validate
	log      *logger.Logger
}

func NewBoardHandler(service *boardservice.Service, validate *validator.Validate) *BoardHandler {
	return &BoardHandler{
		service:  service,
		validate: validate,
		log:      logger.NewLogger("board-handler"),
	}
}

type createTaskRequest struct {
	Title        string `json:"title" validate:"required,max=255"`
	Description  string `json:"description"`
	Status       string `json:"status" validate:"omitempty,oneof=backlog todo doing review done"`
	Priority     string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	AssigneeName string `json:"assignee_name" validate:"max=128"`
	Color        string `json:"color" validate:"max=16"`
	TeamID       *int64 `json:"team_id"`
	DueDate      *int64 `json:"due_date"`
}

type updateTaskRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description  *string `json:"description"`
	Status       *string `json:"status" validate:"omitempty,oneof=backlog todo doing review done"`
	Priority     *string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	AssigneeName *string `json:"assignee_name" validate:"omitempty,max=128"`
	Color        *string `json:"color" validate:"omitempty,max=16"`
	DueDate      *int64  `json:"due_date"`
}

type moveTaskRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *BoardHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.CurrentUserID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	task := &models.Task{
		TeamID:       req.TeamID,
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		AssigneeName: req.AssigneeName,
		Color:        req.Color,
		DueDate:      req.DueDate,
	}
	// The creating user owns the task for reward purposes; a task without a
	// team lands on their personal board, so every task has exactly one
	// owning room.
	task.UserID = &userID

	created, err := h.service.CreateTask(r.Context(), task)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *BoardHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	var filter store.TaskFilter
	if v := r.URL.Query().Get("team_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid team_id")
			return
		}
		filter.TeamID = &id
	}
	if v := r.URL.Query().Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid user_id")
			return
		}
		filter.UserID = &id
	}
	filter.Status = r.URL.Query().Get("status")
	if filter.Status != "" && !models.ValidTaskStatus(filter.Status) {
		respondWithServiceError(w, boardservice.ErrInvalidStatus)
		return
	}

	tasks, err := h.service.ListTasks(r.Context(), filter)
	if err != nil {
		h.log.WithContext(r.Context()).Error("list tasks failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	respondWithJSON(w, http.StatusOK, tasks)
}

func (h *BoardHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.service.UpdateTask(r.Context(), taskID, boardservice.TaskPatch{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		AssigneeName: req.AssigneeName,
		Color:        req.Color,
		DueDate:      req.DueDate,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, task)
}

func (h *BoardHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req moveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.service.MoveTask(r.Context(), taskID, req.Status)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"id":     task.ID,
		"status": task.Status,
	})
}

func (h *BoardHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if err := h.service.DeleteTask(r.Context(), taskID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}
