package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/service"
	"github.com/okatenko/planhub/pkg/logger"
)

func (h *Handler) CreateProject(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	identity, serr := h.identity(e)
	if serr != nil {
		return h.transportError(e, serr)
	}

	project := &model.Project{}

	if serr := h.decodeRequest(e, project); serr != nil {
		l.Error("invalid request", zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	l.Info("creating project", zap.String("name", project.Name), zap.Int64("team_id", project.TeamID))

	created, serr := h.projects.CreateProject(e.Request().Context(), identity, project)
	if serr != nil {
		l.Error("failed to create project", zap.String("name", project.Name), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusCreated, created)
}

func (h *Handler) GetProject(e echo.Context) error {
	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	project, serr := h.projects.GetProject(e.Request().Context(), projectID)
	if serr != nil {
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, project)
}

func (h *Handler) ListProjects(e echo.Context) error {
	identity, serr := h.identity(e)
	if serr != nil {
		return h.transportError(e, serr)
	}

	projects, serr := h.projects.ListProjects(e.Request().Context(), identity)
	if serr != nil {
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, projects)
}

func (h *Handler) UpdateProject(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	update := &service.ProjectUpdate{}

	if serr := h.decodeRequest(e, update); serr != nil {
		l.Error("invalid request", zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	project, serr := h.projects.UpdateProject(e.Request().Context(), projectID, update)
	if serr != nil {
		l.Error("failed to update project", zap.Int64("project_id", projectID), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, project)
}

func (h *Handler) SetProjectHealth(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	var req struct {
		Health string `json:"health" validate:"required"`
	}

	if serr := h.decodeRequest(e, &req); serr != nil {
		l.Error("invalid request", zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	l.Info("setting project health", zap.Int64("project_id", projectID), zap.String("health", req.Health))

	project, serr := h.projects.SetHealth(e.Request().Context(), projectID, model.HealthStatus(req.Health))
	if serr != nil {
		l.Error("failed to set project health", zap.Int64("project_id", projectID), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, project)
}

func (h *Handler) DeleteProject(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	l.Info("deleting project", zap.Int64("project_id", projectID))

	if serr := h.projects.DeleteProject(e.Request().Context(), projectID); serr != nil {
		l.Error("failed to delete project", zap.Int64("project_id", projectID), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.NoContent(http.StatusNoContent)
}

// GetProjectAccess returns the caller's access decision for the project.
// Deliberately unguarded: a denial is a readable decision here, not a 403.
func (h *Handler) GetProjectAccess(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	identity, serr := h.identity(e)
	if serr != nil {
		return h.transportError(e, serr)
	}

	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	decision, err := h.access.CheckAccess(e.Request().Context(), identity, projectID, model.AccessReadOnly)
	if err != nil {
		l.Error("access check failed", zap.Int64("project_id", projectID), zap.Error(err))
		return h.transportError(e, service.NewError(service.ErrorCodeUnspecified, "failed to check access"))
	}

	return e.JSON(http.StatusOK, decision)
}
