package model

type Team struct {
	ID      int64         `json:"id"`
	UnitID  *int64        `json:"unit_id,omitempty"`
	Name    string        `json:"name" validate:"required"`
	Members []*TeamMember `json:"members,omitempty"`
}

// TeamMember is one membership row surfaced to callers: who is on the team,
// what they do there, and what access level that grants on the team's
// projects. At most one membership exists per (user, team) pair.
type TeamMember struct {
	UserID      int64       `json:"user_id" validate:"required"`
	FullName    string      `json:"full_name,omitempty"`
	Role        TeamRole    `json:"role" validate:"required"`
	AccessLevel AccessLevel `json:"access_level"`
}
