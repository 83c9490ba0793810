package main

import (
	"log"
	"net/http"

	_ "flowdeck/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"flowdeck/internal/auth"
	"flowdeck/internal/cache"
	"flowdeck/internal/config"
	"flowdeck/internal/db"
	"flowdeck/internal/handler"
	"flowdeck/internal/logging"
	"flowdeck/internal/model"
	"flowdeck/internal/repository"
	"flowdeck/internal/router"
	"flowdeck/internal/service"
)

// @title Flowdeck API
// @version 1.0
// @description Workflow tracking API with JWT authentication.
// @host localhost:5001
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Workflow{},
	); err != nil {
		logger.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	workflowRepo := repository.NewWorkflowRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTLifetime)

	// Initialize services
	userService := service.NewUserService(userRepo, jwtService, cacheClient)
	workflowService := service.NewWorkflowService(workflowRepo)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService, logger)
	workflowHandler := handler.NewWorkflowHandler(workflowService, logger)

	// Register routes
	router.Register(e, cfg, jwtService, userHandler, workflowHandler)

	swaggerHost := cfg.SwaggerHost
	if swaggerHost == "" {
		swaggerHost = "localhost:" + cfg.ServerPort
	}
	logger.Info("swagger available", zap.String("url", "http://"+swaggerHost+"/swagger/index.html"))

	addr := ":" + cfg.ServerPort
	logger.Info("server starting",
		zap.String("addr", addr),
		zap.Duration("token_lifetime", cfg.JWTLifetime),
	)
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server start", zap.Error(err))
	}
}
