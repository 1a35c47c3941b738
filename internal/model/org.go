package model

type Organization struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required"`
}

// Unit is a division inside an organization; teams hang off units.
type Unit struct {
	ID             int64  `json:"id"`
	OrganizationID int64  `json:"organization_id"`
	Name           string `json:"name" validate:"required"`
}
