package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/service"
	"github.com/okatenko/planhub/pkg/logger"
)

func (h *Handler) AddStakeholder(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	stakeholder := &model.Stakeholder{}

	if serr := h.decodeRequest(e, stakeholder); serr != nil {
		l.Error("invalid request", zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	l.Info("adding stakeholder", zap.Int64("project_id", projectID), zap.String("name", stakeholder.Name))

	created, serr := h.stakeholders.AddStakeholder(e.Request().Context(), projectID, stakeholder)
	if serr != nil {
		l.Error("failed to add stakeholder", zap.Int64("project_id", projectID), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusCreated, created)
}

func (h *Handler) GetStakeholder(e echo.Context) error {
	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}
	stakeholderID, serr := h.pathID(e, "stakeholder_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	stakeholder, serr := h.stakeholders.GetStakeholder(e.Request().Context(), projectID, stakeholderID)
	if serr != nil {
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, stakeholder)
}

func (h *Handler) ListStakeholders(e echo.Context) error {
	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	stakeholders, serr := h.stakeholders.ListStakeholders(e.Request().Context(), projectID)
	if serr != nil {
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, stakeholders)
}

func (h *Handler) UpdateStakeholder(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}
	stakeholderID, serr := h.pathID(e, "stakeholder_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	update := &service.StakeholderUpdate{}

	if serr := h.decodeRequest(e, update); serr != nil {
		l.Error("invalid request", zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	stakeholder, serr := h.stakeholders.UpdateStakeholder(e.Request().Context(), projectID, stakeholderID, update)
	if serr != nil {
		l.Error("failed to update stakeholder", zap.Int64("stakeholder_id", stakeholderID), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, stakeholder)
}

func (h *Handler) DeleteStakeholder(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}
	stakeholderID, serr := h.pathID(e, "stakeholder_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	if serr := h.stakeholders.DeleteStakeholder(e.Request().Context(), projectID, stakeholderID); serr != nil {
		l.Error("failed to delete stakeholder", zap.Int64("stakeholder_id", stakeholderID), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.NoContent(http.StatusNoContent)
}
