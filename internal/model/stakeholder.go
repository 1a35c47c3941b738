package model

type InfluenceLevel string

const (
	InfluenceLow    InfluenceLevel = "LOW"
	InfluenceMedium InfluenceLevel = "MEDIUM"
	InfluenceHigh   InfluenceLevel = "HIGH"
)

type Stakeholder struct {
	ID           int64          `json:"id"`
	ProjectID    int64          `json:"project_id"`
	Name         string         `json:"name" validate:"required"`
	Organization string         `json:"organization,omitempty"`
	Email        string         `json:"email,omitempty" validate:"omitempty,email"`
	Influence    InfluenceLevel `json:"influence,omitempty"`
}
