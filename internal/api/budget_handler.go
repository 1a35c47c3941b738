package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/pkg/logger"
)

func (h *Handler) AddBudgetEntry(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	entry := &model.BudgetEntry{}

	if serr := h.decodeRequest(e, entry); serr != nil {
		l.Error("invalid request", zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	l.Info("adding budget entry",
		zap.Int64("project_id", projectID),
		zap.String("category", entry.Category),
		zap.String("amount", entry.Amount))

	created, serr := h.budgets.AddEntry(e.Request().Context(), projectID, entry)
	if serr != nil {
		l.Error("failed to add budget entry", zap.Int64("project_id", projectID), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusCreated, created)
}

func (h *Handler) ListBudgetEntries(e echo.Context) error {
	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	entries, serr := h.budgets.ListEntries(e.Request().Context(), projectID)
	if serr != nil {
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, entries)
}

func (h *Handler) DeleteBudgetEntry(e echo.Context) error {
	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}
	entryID, serr := h.pathID(e, "entry_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	if serr := h.budgets.DeleteEntry(e.Request().Context(), projectID, entryID); serr != nil {
		return h.transportError(e, serr)
	}

	return e.NoContent(http.StatusNoContent)
}

func (h *Handler) BudgetSummary(e echo.Context) error {
	projectID, serr := h.pathID(e, "project_id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	summary, serr := h.budgets.Summary(e.Request().Context(), projectID)
	if serr != nil {
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, summary)
}
