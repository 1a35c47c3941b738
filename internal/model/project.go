package model

import "time"

type ProjectStatus string

const (
	ProjectStatusPlanning ProjectStatus = "PLANNING"
	ProjectStatusActive   ProjectStatus = "ACTIVE"
	ProjectStatusOnHold   ProjectStatus = "ON_HOLD"
	ProjectStatusClosed   ProjectStatus = "CLOSED"
)

type HealthStatus string

const (
	HealthOnTrack  HealthStatus = "ON_TRACK"
	HealthAtRisk   HealthStatus = "AT_RISK"
	HealthOffTrack HealthStatus = "OFF_TRACK"
)

// Project is owned by exactly one team. Access to it is always mediated
// through the owning team's memberships; there is no direct user grant.
type Project struct {
	ID          int64         `json:"id"`
	TeamID      int64         `json:"team_id" validate:"required"`
	Name        string        `json:"name" validate:"required"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	Health      HealthStatus  `json:"health"`
	StartDate   *time.Time    `json:"start_date,omitempty"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
}
