package main

import (
	"log"

	"github.com/spf13/cobra"

	"studytimer/backend/internal/config"
	"studytimer/backend/internal/db"
	"studytimer/backend/internal/handler"
	"studytimer/backend/internal/reporter"
	"studytimer/backend/internal/repository"
	"studytimer/backend/internal/router"
	"studytimer/backend/internal/service"
	"studytimer/backend/internal/timer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(database)
	sessionRepo := repository.NewSessionRepository(database)
	goalRepo := repository.NewGoalRepository(database)
	taskRepo := repository.NewTaskRepository(database)

	sessionReporter := reporter.New(reporter.ContextIdentity{}, sessionRepo)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	timerService := service.NewTimerService(timer.Durations{
		FocusSeconds:      cfg.FocusSeconds,
		ShortBreakSeconds: cfg.ShortBreakSeconds,
		LongBreakSeconds:  cfg.LongBreakSeconds,
	}, nil, sessionReporter)
	taskService := service.NewTaskService(taskRepo, nil)
	reportService := service.NewReportService(sessionRepo, goalRepo, nil)

	authHandler := handler.NewAuthHandler(authService)
	timerHandler := handler.NewTimerHandler(timerService)
	taskHandler := handler.NewTaskHandler(taskService)
	reportHandler := handler.NewReportHandler(reportService)

	engine := router.New(authService, authHandler, timerHandler, taskHandler, reportHandler, cfg.CORSOrigins)
	log.Printf("backend listening on :%s", cfg.Port)
	return engine.Run(":" + cfg.Port)
}
