package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/service"
	"github.com/okatenko/planhub/pkg/logger"
)

func (h *Handler) CreateTask(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	task := &model.Task{}

	if serr := h.decodeRequest(e, task); serr != nil {
		l.Error("invalid request", zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	l.Info("creating task", zap.Int64("project_id", projectID), zap.String("title", task.Title))

	created, serr := h.tasks.CreateTask(e.Request().Context(), projectID, task)
	if serr != nil {
		l.Error("failed to create task", zap.Int64("project_id", projectID), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusCreated, created)
}

func (h *Handler) GetTask(e echo.Context) error {
	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}
	taskID, serr := h.pathID(e, "task_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	task, serr := h.tasks.GetTask(e.Request().Context(), projectID, taskID)
	if serr != nil {
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, task)
}

func (h *Handler) ListTasks(e echo.Context) error {
	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	tasks, serr := h.tasks.ListTasks(e.Request().Context(), projectID)
	if serr != nil {
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, tasks)
}

func (h *Handler) UpdateTask(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}
	taskID, serr := h.pathID(e, "task_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	update := &service.TaskUpdate{}

	if serr := h.decodeRequest(e, update); serr != nil {
		l.Error("invalid request", zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	task, serr := h.tasks.UpdateTask(e.Request().Context(), projectID, taskID, update)
	if serr != nil {
		l.Error("failed to update task", zap.Int64("task_id", taskID), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}
	taskID, serr := h.pathID(e, "task_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	if serr := h.tasks.DeleteTask(e.Request().Context(), projectID, taskID); serr != nil {
		l.Error("failed to delete task", zap.Int64("task_id", taskID), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.NoContent(http.StatusNoContent)
}
