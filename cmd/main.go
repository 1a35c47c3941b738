package main

import (
	"context"
	"time"

	"github.com/hellofresh/health-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/api"
	"github.com/okatenko/planhub/internal/auth"
	"github.com/okatenko/planhub/internal/config"
	"github.com/okatenko/planhub/internal/db"
	"github.com/okatenko/planhub/internal/repository"
	"github.com/okatenko/planhub/internal/service"
	"github.com/okatenko/planhub/pkg/logger"
)

func main() {
	l, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer l.Sync()

	l.Info("starting planhub")

	cfg, err := config.Load()
	if err != nil {
		l.Fatal("failed to load config", zap.Error(err))
	}

	auth.SetSecret(cfg.TokenSecret)

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		l.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err = pool.Ping(context.Background()); err != nil {
		l.Fatal("failed to ping database", zap.Error(err))
	}

	l.Info("database connection established")

	transactor := db.NewPgxTransactor(pool)

	userRepo := repository.NewPgxUserRepository(pool)
	teamRepo := repository.NewPgxTeamRepository(pool)
	projectRepo := repository.NewPgxProjectRepository(pool)
	taskRepo := repository.NewPgxTaskRepository(pool)
	timeEntryRepo := repository.NewPgxTimeEntryRepository(pool)
	budgetRepo := repository.NewPgxBudgetRepository(pool)
	stakeholderRepo := repository.NewPgxStakeholderRepository(pool)
	orgRepo := repository.NewPgxOrganizationRepository(pool)

	access := service.NewAccessService().
		WithProjectRepo(projectRepo).
		WithTeamRepo(teamRepo)
	users := service.NewUserService(cfg.TokenTTL).
		WithUserRepo(userRepo)
	teams := service.NewTeamService(transactor).
		WithTeamRepo(teamRepo)
	projects := service.NewProjectService().
		WithProjectRepo(projectRepo).
		WithTeamRepo(teamRepo)
	tasks := service.NewTaskService().
		WithTaskRepo(taskRepo)
	timeEntries := service.NewTimeEntryService().
		WithTimeEntryRepo(timeEntryRepo).
		WithTaskRepo(taskRepo)
	budgets := service.NewBudgetService().
		WithBudgetRepo(budgetRepo)
	stakeholders := service.NewStakeholderService().
		WithStakeholderRepo(stakeholderRepo)
	orgs := service.NewOrganizationService().
		WithOrganizationRepo(orgRepo)

	healthChecker := api.MustNewHealthChecker(health.Config{
		Name:      "postgres",
		Timeout:   5 * time.Second,
		SkipOnErr: false,
		Check:     pool.Ping,
	})

	e := echo.New()

	handler := api.NewHandler(l).
		WithUserService(users).
		WithTeamService(teams).
		WithProjectService(projects).
		WithTaskService(tasks).
		WithTimeEntryService(timeEntries).
		WithBudgetService(budgets).
		WithStakeholderService(stakeholders).
		WithOrganizationService(orgs).
		WithAccessChecker(access).
		WithHealthChecker(healthChecker)

	handler.RegisterRoutes(e)

	l.Info("server starting", zap.String("addr", cfg.ListenAddr))
	if err = e.Start(cfg.ListenAddr); err != nil {
		l.Fatal("failed to start server", zap.Error(err))
	}
}
