package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/repository"
	"github.com/okatenko/planhub/pkg/logger"
)

type TimeEntryService struct {
	entries repository.TimeEntryRepository
	tasks   repository.TaskRepository
}

func NewTimeEntryService() *TimeEntryService {
	return &TimeEntryService{}
}

// LogTime records hours spent by the caller on a task. Entries always
// belong to the caller; there is no logging time on someone's behalf.
func (t *TimeEntryService) LogTime(ctx context.Context, identity model.Identity, projectID, taskID int64, entry *model.TimeEntry) (*model.TimeEntry, *Error) {
	l := logger.FromContext(ctx)

	if entry.Hours <= 0 {
		return nil, NewError(ErrorCodeInvalidBody, "hours must be positive")
	}

	if serr := t.requireTaskInProject(ctx, projectID, taskID); serr != nil {
		return nil, serr
	}

	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC().Truncate(24 * time.Hour)
	}

	id, err := t.entries.Create(ctx, &repository.TimeEntry{
		TaskID: taskID,
		UserID: identity.UserID,
		Date:   entry.Date,
		Hours:  entry.Hours,
		Note:   entry.Note,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "task not found")
	}
	if err != nil {
		l.Error("failed to log time", zap.Int64("task_id", taskID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to log time")
	}

	created, err := t.entries.Get(ctx, id)
	if err != nil {
		l.Error("failed to read back time entry", zap.Int64("entry_id", id), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to log time")
	}
	return timeEntryToModel(created), nil
}

func (t *TimeEntryService) ListTaskEntries(ctx context.Context, projectID, taskID int64) ([]*model.TimeEntry, *Error) {
	l := logger.FromContext(ctx)

	if serr := t.requireTaskInProject(ctx, projectID, taskID); serr != nil {
		return nil, serr
	}

	entriesRepo, err := t.entries.ListByTask(ctx, taskID)
	if err != nil {
		l.Error("failed to list time entries", zap.Int64("task_id", taskID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list time entries")
	}

	entries := make([]*model.TimeEntry, 0, len(entriesRepo))
	for _, entry := range entriesRepo {
		entries = append(entries, timeEntryToModel(entry))
	}
	return entries, nil
}

// DeleteEntry removes a time entry. The entry's task must belong to the
// project named in the route, and users delete only their own entries;
// admins may delete any.
func (t *TimeEntryService) DeleteEntry(ctx context.Context, identity model.Identity, projectID, entryID int64) *Error {
	l := logger.FromContext(ctx)

	entry, err := t.entries.Get(ctx, entryID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeNotFound, "time entry not found")
	}
	if err != nil {
		l.Error("failed to get time entry", zap.Int64("entry_id", entryID), zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to get time entry")
	}

	if serr := t.requireTaskInProject(ctx, projectID, entry.TaskID); serr != nil {
		return serr
	}

	if !identity.IsAdmin() && entry.UserID != identity.UserID {
		return NewError(ErrorCodeAccessDenied, "cannot delete another user's time entry")
	}

	if err = t.entries.Delete(ctx, entryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewError(ErrorCodeNotFound, "time entry not found")
		}
		l.Error("failed to delete time entry", zap.Int64("entry_id", entryID), zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to delete time entry")
	}
	return nil
}

// ProjectSummary aggregates hours across all tasks of a project by user.
func (t *TimeEntryService) ProjectSummary(ctx context.Context, projectID int64) (*model.ProjectTimeSummary, *Error) {
	l := logger.FromContext(ctx)

	totals, err := t.entries.ProjectTotals(ctx, projectID)
	if err != nil {
		l.Error("failed to aggregate project time", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to aggregate project time")
	}

	summary := &model.ProjectTimeSummary{
		ProjectID: projectID,
		ByUser:    make([]*model.UserHours, 0, len(totals)),
	}
	for _, uh := range totals {
		summary.TotalHours += uh.Hours
		summary.ByUser = append(summary.ByUser, &model.UserHours{
			UserID:   uh.UserID,
			FullName: uh.FullName,
			Hours:    uh.Hours,
		})
	}
	return summary, nil
}

func (t *TimeEntryService) requireTaskInProject(ctx context.Context, projectID, taskID int64) *Error {
	task, err := t.tasks.Get(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeNotFound, "task not found")
	}
	if err != nil {
		logger.FromContext(ctx).Error("failed to get task", zap.Int64("task_id", taskID), zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to get task")
	}
	if task.ProjectID != projectID {
		return NewError(ErrorCodeNotFound, "task not found")
	}
	return nil
}

func timeEntryToModel(e *repository.TimeEntry) *model.TimeEntry {
	return &model.TimeEntry{
		ID:     e.ID,
		TaskID: e.TaskID,
		UserID: e.UserID,
		Date:   e.Date,
		Hours:  e.Hours,
		Note:   e.Note,
	}
}

func (t *TimeEntryService) WithTimeEntryRepo(r repository.TimeEntryRepository) *TimeEntryService {
	t.entries = r
	return t
}

func (t *TimeEntryService) WithTaskRepo(r repository.TaskRepository) *TimeEntryService {
	t.tasks = r
	return t
}
