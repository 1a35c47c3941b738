package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/pkg/logger"
)

func (h *Handler) CreateTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	identity, serr := h.identity(e)
	if serr != nil {
		return h.transportError(e, serr)
	}

	team := &model.Team{}

	if serr := h.decodeRequest(e, team); serr != nil {
		l.Error("invalid request", zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	l.Info("creating team", zap.String("team_name", team.Name))

	created, serr := h.teams.CreateTeam(e.Request().Context(), identity, team)
	if serr != nil {
		l.Error("failed to create team", zap.String("team_name", team.Name), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusCreated, created)
}

func (h *Handler) GetTeam(e echo.Context) error {
	teamID, serr := h.pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	team, serr := h.teams.GetTeam(e.Request().Context(), teamID)
	if serr != nil {
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, team)
}

func (h *Handler) ListTeams(e echo.Context) error {
	teams, serr := h.teams.ListTeams(e.Request().Context())
	if serr != nil {
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, teams)
}

func (h *Handler) AddTeamMember(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	identity, serr := h.identity(e)
	if serr != nil {
		return h.transportError(e, serr)
	}

	teamID, serr := h.pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	member := &model.TeamMember{}

	if serr := h.decodeRequest(e, member); serr != nil {
		l.Error("invalid request", zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	l.Info("adding team member", zap.Int64("team_id", teamID), zap.Int64("user_id", member.UserID))

	if serr := h.teams.AddMember(e.Request().Context(), identity, teamID, member); serr != nil {
		l.Error("failed to add team member",
			zap.Int64("team_id", teamID),
			zap.Int64("user_id", member.UserID),
			zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.NoContent(http.StatusCreated)
}

func (h *Handler) UpdateTeamMember(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	identity, serr := h.identity(e)
	if serr != nil {
		return h.transportError(e, serr)
	}

	teamID, serr := h.pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}
	userID, serr := h.pathID(e, "user_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	member := &model.TeamMember{}

	if serr := h.decodeRequest(e, member); serr != nil {
		l.Error("invalid request", zap.Any("error", serr))
		return h.transportError(e, serr)
	}
	member.UserID = userID

	if serr := h.teams.UpdateMember(e.Request().Context(), identity, teamID, member); serr != nil {
		l.Error("failed to update team member",
			zap.Int64("team_id", teamID),
			zap.Int64("user_id", userID),
			zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.NoContent(http.StatusNoContent)
}

func (h *Handler) RemoveTeamMember(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	identity, serr := h.identity(e)
	if serr != nil {
		return h.transportError(e, serr)
	}

	teamID, serr := h.pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}
	userID, serr := h.pathID(e, "user_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	if serr := h.teams.RemoveMember(e.Request().Context(), identity, teamID, userID); serr != nil {
		l.Error("failed to remove team member",
			zap.Int64("team_id", teamID),
			zap.Int64("user_id", userID),
			zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.NoContent(http.StatusNoContent)
}
