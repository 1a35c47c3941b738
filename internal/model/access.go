package model

import "github.com/pkg/errors"

// AccessLevel is the privilege tier a membership grants on the projects of a
// team. Levels form a total order, so "meets or exceeds" is an ordinal
// comparison rather than a string match.
type AccessLevel int

const (
	AccessReadOnly AccessLevel = iota
	AccessReadWrite
	AccessFullAccess
)

var accessLevelNames = map[AccessLevel]string{
	AccessReadOnly:   "READ_ONLY",
	AccessReadWrite:  "READ_WRITE",
	AccessFullAccess: "FULL_ACCESS",
}

func (l AccessLevel) String() string {
	if name, ok := accessLevelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// Meets reports whether the level satisfies the required threshold.
func (l AccessLevel) Meets(required AccessLevel) bool {
	return l >= required
}

func (l AccessLevel) IsValid() bool {
	_, ok := accessLevelNames[l]
	return ok
}

func ParseAccessLevel(s string) (AccessLevel, error) {
	for level, name := range accessLevelNames {
		if name == s {
			return level, nil
		}
	}
	return AccessReadOnly, errors.Errorf("unknown access level %q", s)
}

func (l AccessLevel) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, errors.Errorf("invalid access level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *AccessLevel) UnmarshalText(text []byte) error {
	level, err := ParseAccessLevel(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// TeamRole describes what a member does on the team. It is informational
// only; access is decided by AccessLevel alone.
type TeamRole string

const (
	TeamRoleLead        TeamRole = "TEAM_LEAD"
	TeamRoleMember      TeamRole = "TEAM_MEMBER"
	TeamRoleContributor TeamRole = "CONTRIBUTOR"
	TeamRoleStakeholder TeamRole = "STAKEHOLDER"
	TeamRoleObserver    TeamRole = "OBSERVER"
)

func (r TeamRole) IsValid() bool {
	switch r {
	case TeamRoleLead, TeamRoleMember, TeamRoleContributor, TeamRoleStakeholder, TeamRoleObserver:
		return true
	}
	return false
}

// GlobalRole is the organization-wide role carried by a user account,
// independent of any team membership.
type GlobalRole string

const (
	RoleAdmin   GlobalRole = "ADMIN"
	RoleManager GlobalRole = "MANAGER"
	RoleUser    GlobalRole = "USER"
)

// Identity is the resolved caller of a request: the output of token
// verification, passed explicitly through guards and services.
type Identity struct {
	UserID int64      `json:"user_id"`
	Role   GlobalRole `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// AccessDecision is the resolver's answer for one (user, project, level)
// question. It is computed per request and never persisted.
type AccessDecision struct {
	HasAccess      bool         `json:"has_access"`
	Role           TeamRole     `json:"role,omitempty"`
	AccessLevel    *AccessLevel `json:"access_level,omitempty"`
	Message        string       `json:"message,omitempty"`
	CurrentAccess  *AccessLevel `json:"current_access,omitempty"`
	RequiredAccess *AccessLevel `json:"required_access,omitempty"`
}
