// Package boardservice implements task CRUD bound to a broadcast room.
// Every durable mutation is followed by a sync event pushed into the
// realtime hub for the task's room.
package boardservice

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/askar/teamboard/internal/logger"
	"github.com/askar/teamboard/internal/models"
	"github.com/askar/teamboard/internal/store"
)

// Reward for completing a task, granted once per task on the transition
// into done.
const doneRewardXP = 15

// Typed failures for board operations.
var (
	ErrNotFound      = errors.New("task not found")
	ErrInvalidStatus = errors.New("invalid task status")
)

// Broadcaster is the slice of the hub the board depends on.
type Broadcaster interface {
	Publish(room string, payload []byte)
}

type Service struct {
	tasks  store.TaskStore
	ledger store.RewardLedger
	hub    Broadcaster
	log    *logger.Logger
}

func New(tasks store.TaskStore, ledger store.RewardLedger, hub Broadcaster, log *logger.Logger) *Service {
	return &Service{
		tasks:  tasks,
		ledger: ledger,
		hub:    hub,
		log:    log,
	}
}

// TaskPatch carries the fields of an update; nil fields are left unchanged.
type TaskPatch struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	AssigneeName *string
	Color        *string
	DueDate      *int64
}

// CreateTask persists a new task (backlog by default) and broadcasts
// task_created to the task's room.
func (s *Service) CreateTask(ctx context.Context, t *models.Task) (*models.Task, error) {
	if t.Status == "" {
		t.Status = models.TaskBacklog
	}
	if !models.ValidTaskStatus(t.Status) {
		return nil, ErrInvalidStatus
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Color == "" {
		t.Color = "#7c3aed"
	}

	if err := s.tasks.CreateTask(ctx, t); err != nil {
		return nil, err
	}

	s.broadcastTask(t, "task_created")
	return t, nil
}

// ListTasks returns tasks filtered by team, user and/or status.
func (s *Service) ListTasks(ctx context.Context, f store.TaskFilter) ([]models.Task, error) {
	return s.tasks.ListTasks(ctx, f)
}

// UpdateTask applies only the present patch fields, persists, and
// broadcasts task_updated.
func (s *Service) UpdateTask(ctx context.Context, taskID int64, patch TaskPatch) (*models.Task, error) {
	t, err := s.tasks.TaskByID(ctx, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		if !models.ValidTaskStatus(*patch.Status) {
			return nil, ErrInvalidStatus
		}
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !models.ValidTaskPriority(*patch.Priority) {
			return nil, ErrInvalidStatus
		}
		t.Priority = *patch.Priority
	}
	if patch.AssigneeName != nil {
		t.AssigneeName = *patch.AssigneeName
	}
	if patch.Color != nil {
		t.Color = *patch.Color
	}
	if patch.DueDate != nil {
		t.DueDate = patch.DueDate
	}

	if err := s.tasks.UpdateTask(ctx, t); err != nil {
		return nil, err
	}

	s.broadcastTask(t, "task_updated")
	return t, nil
}

// MoveTask sets the task's status column. Transitions are free-form: any
// status to any other. The only side effect is the XP reward, which fires
// on the edge into done for user-owned tasks — moving an already-done task
// to done again grants nothing.
func (s *Service) MoveTask(ctx context.Context, taskID int64, status string) (*models.Task, error) {
	if !models.ValidTaskStatus(status) {
		return nil, ErrInvalidStatus
	}

	t, err := s.tasks.TaskByID(ctx, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	prevStatus := t.Status
	if err := s.tasks.UpdateTaskStatus(ctx, taskID, status); err != nil {
		return nil, err
	}
	t.Status = status

	if status == models.TaskDone && prevStatus != models.TaskDone && t.UserID != nil {
		reason := "task completed: " + truncate(t.Title, 40)
		if err := s.ledger.Grant(ctx, *t.UserID, doneRewardXP, reason); err != nil {
			// The move already committed; a ledger hiccup must not fail it.
			s.log.Error("xp grant failed", "task_id", taskID, "user_id", *t.UserID, "error", err)
		}
	}

	s.publish(t.Room(), map[string]interface{}{
		"type":   "task_moved",
		"id":     t.ID,
		"status": t.Status,
	})
	return t, nil
}

// DeleteTask removes the task and broadcasts task_deleted.
func (s *Service) DeleteTask(ctx context.Context, taskID int64) error {
	t, err := s.tasks.TaskByID(ctx, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := s.tasks.DeleteTask(ctx, taskID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.publish(t.Room(), map[string]interface{}{
		"type": "task_deleted",
		"id":   t.ID,
	})
	return nil
}

func (s *Service) broadcastTask(t *models.Task, eventType string) {
	s.publish(t.Room(), map[string]interface{}{
		"type": eventType,
		"task": t,
	})
}

func (s *Service) publish(room string, event map[string]interface{}) {
	if room == "" {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error("marshal sync event", "error", err)
		return
	}
	s.hub.Publish(room, payload)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
