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

type TaskService struct {
	tasks repository.TaskRepository
}

func NewTaskService() *TaskService {
	return &TaskService{}
}

func (t *TaskService) CreateTask(ctx context.Context, projectID int64, task *model.Task) (*model.Task, *Error) {
	l := logger.FromContext(ctx)

	if task.Status == "" {
		task.Status = model.TaskStatusTodo
	}
	switch task.Status {
	case model.TaskStatusTodo, model.TaskStatusInProgress, model.TaskStatusDone:
	default:
		return nil, NewError(ErrorCodeInvalidBody, "unknown task status")
	}

	id, err := t.tasks.Create(ctx, &repository.Task{
		ProjectID:     projectID,
		Title:         task.Title,
		Status:        string(task.Status),
		AssigneeID:    task.AssigneeID,
		DueDate:       task.DueDate,
		EstimateHours: task.EstimateHours,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "project not found")
	}
	if err != nil {
		l.Error("failed to create task", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to create task")
	}

	return t.getTask(ctx, projectID, id)
}

func (t *TaskService) GetTask(ctx context.Context, projectID, taskID int64) (*model.Task, *Error) {
	return t.getTask(ctx, projectID, taskID)
}

func (t *TaskService) ListTasks(ctx context.Context, projectID int64) ([]*model.Task, *Error) {
	l := logger.FromContext(ctx)

	tasksRepo, err := t.tasks.ListByProject(ctx, projectID)
	if err != nil {
		l.Error("failed to list tasks", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list tasks")
	}

	tasks := make([]*model.Task, 0, len(tasksRepo))
	for _, task := range tasksRepo {
		tasks = append(tasks, taskToModel(task))
	}
	return tasks, nil
}

type TaskUpdate struct {
	Title         *string    `json:"title,omitempty"`
	Status        *string    `json:"status,omitempty"`
	AssigneeID    *int64     `json:"assignee_id,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	EstimateHours *float64   `json:"estimate_hours,omitempty"`
}

func (u *TaskUpdate) isEmpty() bool {
	return u.Title == nil && u.Status == nil && u.AssigneeID == nil &&
		u.DueDate == nil && u.EstimateHours == nil
}

func (t *TaskService) UpdateTask(ctx context.Context, projectID, taskID int64, update *TaskUpdate) (*model.Task, *Error) {
	l := logger.FromContext(ctx)

	// An all-nil patch would build an UPDATE with no SET clause.
	if update.isEmpty() {
		return nil, NewError(ErrorCodeInvalidBody, "no fields to update")
	}

	// The task must belong to the project named in the route; otherwise a
	// caller could reach another project's task through a project it can
	// access.
	if serr := t.requireInProject(ctx, projectID, taskID); serr != nil {
		return nil, serr
	}

	task, err := t.tasks.Patch(ctx, &repository.TaskPatch{
		ID:            taskID,
		Title:         update.Title,
		Status:        update.Status,
		AssigneeID:    update.AssigneeID,
		DueDate:       update.DueDate,
		EstimateHours: update.EstimateHours,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "task not found")
	}
	if err != nil {
		l.Error("failed to update task", zap.Int64("task_id", taskID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to update task")
	}

	return taskToModel(task), nil
}

func (t *TaskService) DeleteTask(ctx context.Context, projectID, taskID int64) *Error {
	l := logger.FromContext(ctx)

	if serr := t.requireInProject(ctx, projectID, taskID); serr != nil {
		return serr
	}

	err := t.tasks.Delete(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeNotFound, "task not found")
	}
	if err != nil {
		l.Error("failed to delete task", zap.Int64("task_id", taskID), zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to delete task")
	}
	return nil
}

func (t *TaskService) getTask(ctx context.Context, projectID, taskID int64) (*model.Task, *Error) {
	l := logger.FromContext(ctx)

	task, err := t.tasks.Get(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "task not found")
	}
	if err != nil {
		l.Error("failed to get task", zap.Int64("task_id", taskID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get task")
	}
	if task.ProjectID != projectID {
		return nil, NewError(ErrorCodeNotFound, "task not found")
	}

	return taskToModel(task), nil
}

func (t *TaskService) requireInProject(ctx context.Context, projectID, taskID int64) *Error {
	_, serr := t.getTask(ctx, projectID, taskID)
	return serr
}

func taskToModel(t *repository.Task) *model.Task {
	return &model.Task{
		ID:            t.ID,
		ProjectID:     t.ProjectID,
		Title:         t.Title,
		Status:        model.TaskStatus(t.Status),
		AssigneeID:    t.AssigneeID,
		DueDate:       t.DueDate,
		EstimateHours: t.EstimateHours,
	}
}

func (t *TaskService) WithTaskRepo(r repository.TaskRepository) *TaskService {
	t.tasks = r
	return t
}
