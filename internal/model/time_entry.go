package model

import "time"

type TimeEntry struct {
	ID     int64     `json:"id"`
	TaskID int64     `json:"task_id"`
	UserID int64     `json:"user_id"`
	Date   time.Time `json:"date"`
	Hours  float64   `json:"hours" validate:"required,gt=0"`
	Note   string    `json:"note,omitempty"`
}

// UserHours is the per-user slice of a project's logged time.
type UserHours struct {
	UserID   int64   `json:"user_id"`
	FullName string  `json:"full_name,omitempty"`
	Hours    float64 `json:"hours"`
}

type ProjectTimeSummary struct {
	ProjectID  int64        `json:"project_id"`
	TotalHours float64      `json:"total_hours"`
	ByUser     []*UserHours `json:"by_user"`
}
