package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"usermanager/internal/auth"
	"usermanager/internal/handler"
	"usermanager/internal/middleware"
	"usermanager/internal/repository"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	jwtService *auth.JWTService,
	userRepo repository.UserRepository,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	analyticsHandler *handler.AnalyticsHandler,
) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes. register-admin is bootstrap-only and must be deployment-gated.
	api.POST("/auth/register-admin", authHandler.RegisterAdmin)
	api.POST("/auth/login", authHandler.Login)

	// Protected routes: token gate plus a live admin-role check.
	secured := api.Group("", middleware.RequireToken(jwtService), middleware.RequireAdmin(userRepo))

	secured.GET("/users", userHandler.ListUsers)
	secured.POST("/users", userHandler.CreateUser)
	secured.GET("/users/:id", userHandler.GetUser)
	secured.PUT("/users/:id", userHandler.UpdateUser)
	secured.DELETE("/users/:id", userHandler.DeleteUser)

	secured.GET("/analytics/stats", analyticsHandler.GetStats)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
