package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/pkg/logger"
)

func (h *Handler) LogTime(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	identity, serr := h.identity(e)
	if serr != nil {
		return h.transportError(e, serr)
	}

	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}
	taskID, serr := h.pathID(e, "task_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	entry := &model.TimeEntry{}

	if serr := h.decodeRequest(e, entry); serr != nil {
		l.Error("invalid request", zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	created, serr := h.timeEntries.LogTime(e.Request().Context(), identity, projectID, taskID, entry)
	if serr != nil {
		l.Error("failed to log time", zap.Int64("task_id", taskID), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusCreated, created)
}

func (h *Handler) ListTimeEntries(e echo.Context) error {
	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}
	taskID, serr := h.pathID(e, "task_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	entries, serr := h.timeEntries.ListTaskEntries(e.Request().Context(), projectID, taskID)
	if serr != nil {
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, entries)
}

func (h *Handler) DeleteTimeEntry(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	identity, serr := h.identity(e)
	if serr != nil {
		return h.transportError(e, serr)
	}

	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}
	entryID, serr := h.pathID(e, "entry_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	if serr := h.timeEntries.DeleteEntry(e.Request().Context(), identity, projectID, entryID); serr != nil {
		l.Error("failed to delete time entry", zap.Int64("entry_id", entryID), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.NoContent(http.StatusNoContent)
}

func (h *Handler) ProjectTimeSummary(e echo.Context) error {
	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	summary, serr := h.timeEntries.ProjectSummary(e.Request().Context(), projectID)
	if serr != nil {
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, summary)
}
