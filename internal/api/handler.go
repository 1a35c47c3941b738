package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/service"
)

type Handler struct {
	users        *service.UserService
	teams        *service.TeamService
	projects     *service.ProjectService
	tasks        *service.TaskService
	timeEntries  *service.TimeEntryService
	budgets      *service.BudgetService
	stakeholders *service.StakeholderService
	orgs         *service.OrganizationService

	access        AccessChecker
	healthChecker HealthChecker

	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

func (h *Handler) WithHealthChecker(c HealthChecker) *Handler {
	h.healthChecker = c
	return h
}

func (h *Handler) WithUserService(s *service.UserService) *Handler {
	h.users = s
	return h
}

func (h *Handler) WithTeamService(s *service.TeamService) *Handler {
	h.teams = s
	return h
}

func (h *Handler) WithProjectService(s *service.ProjectService) *Handler {
	h.projects = s
	return h
}

func (h *Handler) WithTaskService(s *service.TaskService) *Handler {
	h.tasks = s
	return h
}

func (h *Handler) WithTimeEntryService(s *service.TimeEntryService) *Handler {
	h.timeEntries = s
	return h
}

func (h *Handler) WithBudgetService(s *service.BudgetService) *Handler {
	h.budgets = s
	return h
}

func (h *Handler) WithStakeholderService(s *service.StakeholderService) *Handler {
	h.stakeholders = s
	return h
}

func (h *Handler) WithOrganizationService(s *service.OrganizationService) *Handler {
	h.orgs = s
	return h
}

func (h *Handler) WithAccessChecker(c AccessChecker) *Handler {
	h.access = c
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Validator = NewValidator()
	e.Use(middleware.RequestID())
	e.Use(ZapLoggerMiddleware(h.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/health", h.healthChecker.HealthCheck())

	e.POST("/auth/register", h.Register)
	e.POST("/auth/login", h.Login)

	authed := e.Group("", AuthMiddleware())

	authed.GET("/users/me", h.GetMe)

	admin := e.Group("", AuthMiddleware(model.RoleAdmin))

	admin.GET("/users", h.ListUsers)
	admin.PUT("/users/:id/role", h.SetUserRole)

	admin.POST("/orgs", h.CreateOrganization)
	admin.GET("/orgs", h.ListOrganizations)
	admin.GET("/orgs/:id", h.GetOrganization)
	admin.PUT("/orgs/:id", h.RenameOrganization)
	admin.DELETE("/orgs/:id", h.DeleteOrganization)
	admin.POST("/orgs/:id/units", h.CreateUnit)
	admin.GET("/orgs/:id/units", h.ListUnits)
	admin.DELETE("/orgs/:id/units/:unit_id", h.DeleteUnit)

	authed.POST("/teams", h.CreateTeam)
	authed.GET("/teams", h.ListTeams)
	authed.GET("/teams/:id", h.GetTeam)
	authed.POST("/teams/:id/members", h.AddTeamMember)
	authed.PUT("/teams/:id/members/:user_id", h.UpdateTeamMember)
	authed.DELETE("/teams/:id/members/:user_id", h.RemoveTeamMember)

	authed.POST("/projects", h.CreateProject)
	authed.GET("/projects", h.ListProjects)

	readAccess := RequireProjectAccess(h.access, model.AccessReadOnly)
	writeAccess := RequireProjectAccess(h.access, model.AccessReadWrite)
	fullAccess := RequireProjectAccess(h.access, model.AccessFullAccess)

	authed.GET("/projects/:project_id", h.GetProject, readAccess)
	authed.PATCH("/projects/:project_id", h.UpdateProject, writeAccess)
	authed.PUT("/projects/:project_id/health", h.SetProjectHealth, writeAccess)
	authed.DELETE("/projects/:project_id", h.DeleteProject, fullAccess)
	authed.GET("/projects/:project_id/access", h.GetProjectAccess)

	authed.GET("/projects/:project_id/tasks", h.ListTasks, readAccess)
	authed.POST("/projects/:project_id/tasks", h.CreateTask, writeAccess)
	authed.GET("/projects/:project_id/tasks/:task_id", h.GetTask, readAccess)
	authed.PATCH("/projects/:project_id/tasks/:task_id", h.UpdateTask, writeAccess)
	authed.DELETE("/projects/:project_id/tasks/:task_id", h.DeleteTask, writeAccess)

	authed.GET("/projects/:project_id/tasks/:task_id/time", h.ListTimeEntries, readAccess)
	authed.POST("/projects/:project_id/tasks/:task_id/time", h.LogTime, writeAccess)
	authed.DELETE("/projects/:project_id/time/:entry_id", h.DeleteTimeEntry, writeAccess)
	authed.GET("/projects/:project_id/time/summary", h.ProjectTimeSummary, readAccess)

	authed.GET("/projects/:project_id/budget", h.ListBudgetEntries, readAccess)
	authed.POST("/projects/:project_id/budget", h.AddBudgetEntry, writeAccess)
	authed.DELETE("/projects/:project_id/budget/:entry_id", h.DeleteBudgetEntry, writeAccess)
	authed.GET("/projects/:project_id/budget/summary", h.BudgetSummary, readAccess)

	stakeholderAccess := StakeholderAccessGuard(h.access)

	authed.GET("/projects/:project_id/stakeholders", h.ListStakeholders, stakeholderAccess)
	authed.POST("/projects/:project_id/stakeholders", h.AddStakeholder, stakeholderAccess)
	authed.GET("/projects/:project_id/stakeholders/:stakeholder_id", h.GetStakeholder, stakeholderAccess)
	authed.PATCH("/projects/:project_id/stakeholders/:stakeholder_id", h.UpdateStakeholder, stakeholderAccess)
	authed.DELETE("/projects/:project_id/stakeholders/:stakeholder_id", h.DeleteStakeholder, stakeholderAccess)
}

func (h *Handler) decodeRequest(e echo.Context, req any) *service.Error {
	if err := e.Bind(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, "invalid request body")
	}

	if err := e.Validate(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, errors.Wrap(err, "request validation failed").Error())
	}
	return nil
}

func (h *Handler) pathID(e echo.Context, name string) (int64, *service.Error) {
	id, err := strconv.ParseInt(e.Param(name), 10, 64)
	if err != nil {
		return 0, service.NewError(service.ErrorCodeInvalidBody, "invalid "+name)
	}
	return id, nil
}

func (h *Handler) identity(e echo.Context) (model.Identity, *service.Error) {
	identity, ok := identityFrom(e)
	if !ok {
		return model.Identity{}, service.NewError(service.ErrorCodeUnauthorized, "missing bearer token")
	}
	return identity, nil
}

func (h *Handler) transportError(e echo.Context, err *service.Error) error {
	switch err.Code {
	case service.ErrorCodeNotFound:
		return writeError(e, http.StatusNotFound, err)
	case service.ErrorCodeAlreadyExists:
		return writeError(e, http.StatusConflict, err)
	case service.ErrorCodeAccessDenied:
		return writeError(e, http.StatusForbidden, err)
	case service.ErrorCodeUnauthorized, service.ErrorCodeInvalidCredentials:
		return writeError(e, http.StatusUnauthorized, err)
	case service.ErrorCodeInvalidBody:
		return writeError(e, http.StatusBadRequest, err)
	default:
		return writeError(e, http.StatusInternalServerError, err)
	}
}
