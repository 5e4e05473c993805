package models

import "fmt"

// Task statuses, in board column order. Transitions are free-form: any
// status may be set to any other. Only the move into done carries a side
// effect, and it is edge-triggered.
const (
	TaskBacklog = "backlog"
	TaskTodo    = "todo"
	TaskDoing   = "doing"
	TaskReview  = "review"
	TaskDone    = "done"
)

// Task priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

var validStatuses = map[string]bool{
	TaskBacklog: true,
	TaskTodo:    true,
	TaskDoing:   true,
	TaskReview:  true,
	TaskDone:    true,
}

var validPriorities = map[string]bool{
	PriorityLow:      true,
	PriorityMedium:   true,
	PriorityHigh:     true,
	PriorityCritical: true,
}

// ValidTaskStatus reports whether s is one of the board columns.
func ValidTaskStatus(s string) bool {
	return validStatuses[s]
}

// ValidTaskPriority reports whether p is a known priority.
func ValidTaskPriority(p string) bool {
	return validPriorities[p]
}

// Task is a board item. It belongs to exactly one room, derived from
// TeamID, or from UserID for a personal board.
type Task struct {
	ID           int64  `json:"id"`
	TeamID       *int64 `json:"team_id,omitempty"`
	UserID       *int64 `json:"user_id,omitempty"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	AssigneeName string `json:"assignee_name,omitempty"`
	Color        string `json:"color"`
	DueDate      *int64 `json:"due_date,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

// Room returns the broadcast room id owning this task: "team:<id>" when the
// task is team-bound, otherwise "user:<id>". Empty when the task is orphaned.
func (t *Task) Room() string {
	if t.TeamID != nil {
		return TeamRoom(*t.TeamID)
	}
	if t.UserID != nil {
		return UserRoom(*t.UserID)
	}
	return ""
}

// TeamRoom builds the room id for a team board.
func TeamRoom(teamID int64) string {
	return fmt.Sprintf("team:%d", teamID)
}

// UserRoom builds the room id for a personal board.
func UserRoom(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}
