package main

import (
	"context"
	"log"
	"net/http"

	_ "usermanager/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"usermanager/internal/auth"
	"usermanager/internal/cache"
	"usermanager/internal/config"
	"usermanager/internal/db"
	"usermanager/internal/handler"
	"usermanager/internal/model"
	"usermanager/internal/repository"
	"usermanager/internal/router"
	"usermanager/internal/service"
)

// @title User Manager API
// @version 1.0
// @description Admin user management API with JWT authentication, user CRUD, and dashboard analytics.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey TokenAuth
// @in header
// @name x-access-token
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.Role{}, &model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	roleRepo := repository.NewRoleRepository(gormDB)

	// Roles must exist before any user row is created.
	if err := roleRepo.Seed(context.Background()); err != nil {
		log.Fatalf("seed roles: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Initialize services
	authService := service.NewAuthService(userRepo, roleRepo, jwtService)
	userService := service.NewUserService(userRepo, roleRepo, cacheClient)
	analyticsService := service.NewAnalyticsService(userRepo, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)

	// Register routes
	router.Register(e, jwtService, userRepo, authHandler, userHandler, analyticsHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
