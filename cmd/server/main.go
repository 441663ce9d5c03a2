package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eu_records/config"
	"eu_records/handlers"
	"eu_records/middleware"
	"eu_records/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func main() {
	// Load configuration
	cfg := config.Load()
	config.SetupLogging(cfg.LogLevel)

	// Initialize storage
	services.InitializeStorage(cfg)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(config.ParseLogLevel(cfg.LogLevel))

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit("25M"))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Generation is charged against a per-IP record budget
	budget := middleware.NewRowBudget(middleware.RowBudgetConfig{
		Rows:   cfg.MaxExportCount * 5,
		Window: 1 * time.Minute,
	})
	defer budget.Close()

	e.GET("/health", handlers.HealthHandler)

	api := e.Group("/api/records")
	{
		api.GET("/export", handlers.ExportRecordsHandler, budget.Middleware())
		api.POST("/import", handlers.ImportRecordsHandler)
		api.POST("/snapshots", handlers.CreateSnapshotHandler, budget.Middleware())
		api.GET("/snapshots/*", handlers.GetSnapshotHandler)
		api.DELETE("/snapshots/*", handlers.DeleteSnapshotHandler)
	}

	go func() {
		log.Infof("Starting server on :%s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
	}
}
