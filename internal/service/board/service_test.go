package boardservice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askar/teamboard/internal/logger"
	"github.com/askar/teamboard/internal/models"
	"github.com/askar/teamboard/internal/store"
)

type fakeTaskStore struct {
	nextID int64
	tasks  map[int64]*models.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[int64]*models.Task)}
}

func (f *fakeTaskStore) CreateTask(_ context.Context, t *models.Task) error {
	f.nextID++
	t.ID = f.nextID
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTaskStore) TaskByID(_ context.Context, id int64) (*models.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTaskStore) ListTasks(_ context.Context, filter store.TaskFilter) ([]models.Task, error) {
	var out []models.Task
	for _, t := range f.tasks {
		if filter.TeamID != nil && (t.TeamID == nil || *t.TeamID != *filter.TeamID) {
			continue
		}
		if filter.UserID != nil && (t.UserID == nil || *t.UserID != *filter.UserID) {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTaskStore) UpdateTask(_ context.Context, t *models.Task) error {
	if _, ok := f.tasks[t.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTaskStore) UpdateTaskStatus(_ context.Context, id int64, status string) error {
	t, ok := f.tasks[id]
	if !ok {
		return store.ErrNotFound
	}
	t.Status = status
	return nil
}

func (f *fakeTaskStore) DeleteTask(_ context.Context, id int64) error {
	if _, ok := f.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

type grant struct {
	userID int64
	amount int
	reason string
}

type fakeLedger struct {
	grants []grant
	err    error
}

func (f *fakeLedger) Grant(_ context.Context, userID int64, amount int, reason string) error {
	if f.err != nil {
		return f.err
	}
	f.grants = append(f.grants, grant{userID, amount, reason})
	return nil
}

type published struct {
	room    string
	payload []byte
}

type fakeBroadcaster struct {
	events []published
}

func (f *fakeBroadcaster) Publish(room string, payload []byte) {
	f.events = append(f.events, published{room, payload})
}

func (f *fakeBroadcaster) eventTypes() []string {
	var types []string
	for _, e := range f.events {
		var envelope struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(e.payload, &envelope); err == nil {
			types = append(types, envelope.Type)
		}
	}
	return types
}

func newTestService(t *testing.T) (*Service, *fakeTaskStore, *fakeLedger, *fakeBroadcaster) {
	t.Helper()
	tasks := newFakeTaskStore()
	ledger := &fakeLedger{}
	hub := &fakeBroadcaster{}
	return New(tasks, ledger, hub, logger.NewLogger("board-service-test")), tasks, ledger, hub
}

func ptr[T any](v T) *T { return &v }

func TestCreateTaskDefaults(t *testing.T) {
	svc, _, _, hub := newTestService(t)

	task, err := svc.CreateTask(context.Background(), &models.Task{
		Title:  "write the report",
		TeamID: ptr(int64(7)),
	})
	require.NoError(t, err)

	assert.Equal(t, models.TaskBacklog, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, "#7c3aed", task.Color)
	assert.NotZero(t, task.ID)

	require.Len(t, hub.events, 1)
	assert.Equal(t, "team:7", hub.events[0].room)
	assert.Equal(t, []string{"task_created"}, hub.eventTypes())
}

func TestCreateTaskInvalidStatus(t *testing.T) {
	svc, _, _, hub := newTestService(t)

	_, err := svc.CreateTask(context.Background(), &models.Task{
		Title:  "x",
		Status: "archived",
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Empty(t, hub.events)
}

func TestCreateTaskPersonalRoom(t *testing.T) {
	svc, _, _, hub := newTestService(t)

	_, err := svc.CreateTask(context.Background(), &models.Task{
		Title:  "solo task",
		UserID: ptr(int64(42)),
	})
	require.NoError(t, err)
	require.Len(t, hub.events, 1)
	assert.Equal(t, "user:42", hub.events[0].room)
}

func TestUpdateTaskPatch(t *testing.T) {
	svc, tasks, _, hub := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, &models.Task{
		Title:       "initial",
		Description: "original description",
		TeamID:      ptr(int64(1)),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateTask(ctx, created.ID, TaskPatch{
		Title:    ptr("renamed"),
		Priority: ptr(models.PriorityHigh),
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	// Absent patch fields are left alone.
	assert.Equal(t, "original description", updated.Description)

	stored, err := tasks.TaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Title)

	assert.Equal(t, []string{"task_created", "task_updated"}, hub.eventTypes())
}

func TestUpdateTaskInvalidPatch(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, &models.Task{Title: "t", TeamID: ptr(int64(1))})
	require.NoError(t, err)

	_, err = svc.UpdateTask(ctx, created.ID, TaskPatch{Status: ptr("nope")})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateTask(ctx, created.ID, TaskPatch{Priority: ptr("urgent-ish")})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateTaskNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.UpdateTask(context.Background(), 99, TaskPatch{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoveTaskRewardsOnDoneEdgeOnly(t *testing.T) {
	svc, _, ledger, hub := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, &models.Task{
		Title:  "finish the deck",
		TeamID: ptr(int64(1)),
		UserID: ptr(int64(5)),
	})
	require.NoError(t, err)

	_, err = svc.MoveTask(ctx, created.ID, models.TaskDoing)
	require.NoError(t, err)
	assert.Empty(t, ledger.grants)

	moved, err := svc.MoveTask(ctx, created.ID, models.TaskDone)
	require.NoError(t, err)
	assert.Equal(t, models.TaskDone, moved.Status)
	require.Len(t, ledger.grants, 1)
	assert.Equal(t, grant{userID: 5, amount: 15, reason: "task completed: finish the deck"}, ledger.grants[0])

	// Re-committing done is a no-op for the ledger.
	_, err = svc.MoveTask(ctx, created.ID, models.TaskDone)
	require.NoError(t, err)
	assert.Len(t, ledger.grants, 1)

	// Moving out of done and back in rewards again: the edge re-fires.
	_, err = svc.MoveTask(ctx, created.ID, models.TaskReview)
	require.NoError(t, err)
	_, err = svc.MoveTask(ctx, created.ID, models.TaskDone)
	require.NoError(t, err)
	assert.Len(t, ledger.grants, 2)

	assert.Equal(t,
		[]string{"task_created", "task_moved", "task_moved", "task_moved", "task_moved", "task_moved"},
		hub.eventTypes())
}

func TestMoveTaskNoRewardWithoutOwner(t *testing.T) {
	svc, _, ledger, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, &models.Task{Title: "team chore", TeamID: ptr(int64(1))})
	require.NoError(t, err)

	_, err = svc.MoveTask(ctx, created.ID, models.TaskDone)
	require.NoError(t, err)
	assert.Empty(t, ledger.grants)
}

func TestMoveTaskLedgerFailureDoesNotFailMove(t *testing.T) {
	svc, tasks, ledger, hub := newTestService(t)
	ctx := context.Background()
	ledger.err = errors.New("ledger down")

	created, err := svc.CreateTask(ctx, &models.Task{
		Title:  "t",
		TeamID: ptr(int64(1)),
		UserID: ptr(int64(5)),
	})
	require.NoError(t, err)

	moved, err := svc.MoveTask(ctx, created.ID, models.TaskDone)
	require.NoError(t, err)
	assert.Equal(t, models.TaskDone, moved.Status)

	stored, err := tasks.TaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskDone, stored.Status)

	// The sync event still goes out.
	assert.Equal(t, []string{"task_created", "task_moved"}, hub.eventTypes())
}

func TestMoveTaskInvalidStatus(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.MoveTask(context.Background(), 1, "paused")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestMoveTaskNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.MoveTask(context.Background(), 99, models.TaskDone)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoveTaskEventShape(t *testing.T) {
	svc, _, _, hub := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, &models.Task{Title: "t", TeamID: ptr(int64(3))})
	require.NoError(t, err)

	_, err = svc.MoveTask(ctx, created.ID, models.TaskReview)
	require.NoError(t, err)

	var event struct {
		Type   string `json:"type"`
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(hub.events[1].payload, &event))
	assert.Equal(t, "task_moved", event.Type)
	assert.Equal(t, created.ID, event.ID)
	assert.Equal(t, models.TaskReview, event.Status)
}

func TestDeleteTask(t *testing.T) {
	svc, tasks, _, hub := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, &models.Task{Title: "t", TeamID: ptr(int64(1))})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, created.ID))
	_, err = tasks.TaskByID(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Equal(t, []string{"task_created", "task_deleted"}, hub.eventTypes())

	assert.ErrorIs(t, svc.DeleteTask(ctx, created.ID), ErrNotFound)
}

func TestListTasksFiltered(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, &models.Task{Title: "a", TeamID: ptr(int64(1))})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, &models.Task{Title: "b", TeamID: ptr(int64(1)), Status: models.TaskDoing})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, &models.Task{Title: "c", TeamID: ptr(int64(2))})
	require.NoError(t, err)

	all, err := svc.ListTasks(ctx, store.TaskFilter{TeamID: ptr(int64(1))})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	doing, err := svc.ListTasks(ctx, store.TaskFilter{TeamID: ptr(int64(1)), Status: models.TaskDoing})
	require.NoError(t, err)
	require.Len(t, doing, 1)
	assert.Equal(t, "b", doing[0].Title)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 40))
	assert.Equal(t, "сделать презентацию", truncate("сделать презентацию к демо", 19))
}
