package model

import "time"

// Task enumerations and their defaults.
var (
	TaskCategories = []string{"studia", "praca", "osobiste"}
	TaskPriorities = []string{"wysoki", "sredni", "niski"}
	TaskStatuses   = []string{"todo", "done"}
)

const (
	DefaultTaskCategory = "osobiste"
	DefaultTaskPriority = "sredni"
	TaskTodo            = "todo"
	TaskDone            = "done"
)

// Task is a to-do item owned by a user.  DueDate is a YYYY-MM-DD string.
type Task struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"userId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Category    string    `json:"category"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	DueDate     *string   `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTask returns a todo task with default category and priority.
func NewTask(userID uint64, title string) *Task {
	return &Task{
		UserID:   userID,
		Title:    title,
		Category: DefaultTaskCategory,
		Priority: DefaultTaskPriority,
		Status:   TaskTodo,
	}
}

func (t *Task) SetCategory(v string) { t.Category = clamp(v, TaskCategories, DefaultTaskCategory) }
func (t *Task) SetPriority(v string) { t.Priority = clamp(v, TaskPriorities, DefaultTaskPriority) }
func (t *Task) SetStatus(v string)   { t.Status = clamp(v, TaskStatuses, TaskTodo) }

// Normalize clamps every enumerated field.  Rows read from storage go
// through it so hand-edited data never leaks an unknown value.
func (t *Task) Normalize() {
	t.SetCategory(t.Category)
	t.SetPriority(t.Priority)
	t.SetStatus(t.Status)
}

// IsDone reports whether the task is completed.
func (t *Task) IsDone() bool { return t.Status == TaskDone }

// ToggledStatus returns the status the task would have after a toggle.
func (t *Task) ToggledStatus() string {
	if t.IsDone() {
		return TaskTodo
	}
	return TaskDone
}
