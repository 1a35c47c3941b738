package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/pkg/logger"
)

func (h *Handler) CreateOrganization(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	org := &model.Organization{}

	if serr := h.decodeRequest(e, org); serr != nil {
		l.Error("invalid request", zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	l.Info("creating organization", zap.String("name", org.Name))

	created, serr := h.orgs.CreateOrganization(e.Request().Context(), org)
	if serr != nil {
		l.Error("failed to create organization", zap.String("name", org.Name), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusCreated, created)
}

func (h *Handler) GetOrganization(e echo.Context) error {
	orgID, serr := h.pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	org, serr := h.orgs.GetOrganization(e.Request().Context(), orgID)
	if serr != nil {
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, org)
}

func (h *Handler) ListOrganizations(e echo.Context) error {
	orgs, serr := h.orgs.ListOrganizations(e.Request().Context())
	if serr != nil {
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, orgs)
}

func (h *Handler) RenameOrganization(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	orgID, serr := h.pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	var req struct {
		Name string `json:"name" validate:"required"`
	}

	if serr := h.decodeRequest(e, &req); serr != nil {
		l.Error("invalid request", zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	org, serr := h.orgs.RenameOrganization(e.Request().Context(), orgID, req.Name)
	if serr != nil {
		l.Error("failed to rename organization", zap.Int64("org_id", orgID), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, org)
}

func (h *Handler) DeleteOrganization(e echo.Context) error {
	orgID, serr := h.pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	if serr := h.orgs.DeleteOrganization(e.Request().Context(), orgID); serr != nil {
		return h.transportError(e, serr)
	}

	return e.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateUnit(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	orgID, serr := h.pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	unit := &model.Unit{}

	if serr := h.decodeRequest(e, unit); serr != nil {
		l.Error("invalid request", zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	created, serr := h.orgs.CreateUnit(e.Request().Context(), orgID, unit)
	if serr != nil {
		l.Error("failed to create unit", zap.Int64("org_id", orgID), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusCreated, created)
}

func (h *Handler) ListUnits(e echo.Context) error {
	orgID, serr := h.pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	units, serr := h.orgs.ListUnits(e.Request().Context(), orgID)
	if serr != nil {
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, units)
}

func (h *Handler) DeleteUnit(e echo.Context) error {
	unitID, serr := h.pathID(e, "unit_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	if serr := h.orgs.DeleteUnit(e.Request().Context(), unitID); serr != nil {
		return h.transportError(e, serr)
	}

	return e.NoContent(http.StatusNoContent)
}
