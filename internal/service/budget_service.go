package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/repository"
	"github.com/okatenko/planhub/pkg/logger"
)

type BudgetService struct {
	budgets repository.BudgetRepository
}

func NewBudgetService() *BudgetService {
	return &BudgetService{}
}

func (b *BudgetService) AddEntry(ctx context.Context, projectID int64, entry *model.BudgetEntry) (*model.BudgetEntry, *Error) {
	l := logger.FromContext(ctx)

	id, err := b.budgets.Create(ctx, &repository.BudgetEntry{
		ProjectID: projectID,
		Category:  entry.Category,
		Amount:    entry.Amount,
		Spent:     entry.Spent,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "project not found")
	}
	if err != nil {
		l.Error("failed to add budget entry", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to add budget entry")
	}

	entry.ID = id
	entry.ProjectID = projectID
	return entry, nil
}

func (b *BudgetService) ListEntries(ctx context.Context, projectID int64) ([]*model.BudgetEntry, *Error) {
	l := logger.FromContext(ctx)

	entriesRepo, err := b.budgets.ListByProject(ctx, projectID)
	if err != nil {
		l.Error("failed to list budget entries", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list budget entries")
	}

	entries := make([]*model.BudgetEntry, 0, len(entriesRepo))
	for _, entry := range entriesRepo {
		entries = append(entries, &model.BudgetEntry{
			ID:        entry.ID,
			ProjectID: entry.ProjectID,
			Category:  entry.Category,
			Amount:    entry.Amount,
			Spent:     entry.Spent,
		})
	}
	return entries, nil
}

// DeleteEntry removes a budget entry. The entry must belong to the project
// named in the route; otherwise write access on one project would reach into
// another project's budget.
func (b *BudgetService) DeleteEntry(ctx context.Context, projectID, entryID int64) *Error {
	l := logger.FromContext(ctx)

	entry, err := b.budgets.Get(ctx, entryID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeNotFound, "budget entry not found")
	}
	if err != nil {
		l.Error("failed to get budget entry", zap.Int64("entry_id", entryID), zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to get budget entry")
	}
	if entry.ProjectID != projectID {
		return NewError(ErrorCodeNotFound, "budget entry not found")
	}

	err = b.budgets.Delete(ctx, entryID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeNotFound, "budget entry not found")
	}
	if err != nil {
		l.Error("failed to delete budget entry", zap.Int64("entry_id", entryID), zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to delete budget entry")
	}
	return nil
}

func (b *BudgetService) Summary(ctx context.Context, projectID int64) (*model.BudgetSummary, *Error) {
	l := logger.FromContext(ctx)

	summary, err := b.budgets.Summary(ctx, projectID)
	if err != nil {
		l.Error("failed to summarize budget", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to summarize budget")
	}

	return &model.BudgetSummary{
		ProjectID: projectID,
		Allocated: summary.Allocated,
		Spent:     summary.Spent,
	}, nil
}

func (b *BudgetService) WithBudgetRepo(r repository.BudgetRepository) *BudgetService {
	b.budgets = r
	return b
}
