package model

import "time"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

type Task struct {
	ID            int64      `json:"id"`
	ProjectID     int64      `json:"project_id"`
	Title         string     `json:"title" validate:"required"`
	Status        TaskStatus `json:"status"`
	AssigneeID    *int64     `json:"assignee_id,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	EstimateHours float64    `json:"estimate_hours,omitempty"`
}
