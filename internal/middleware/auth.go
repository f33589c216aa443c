package middleware

import (
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"usermanager/internal/auth"
	apperrors "usermanager/internal/errors"
	"usermanager/internal/model"
	"usermanager/internal/repository"
)

const (
	// TokenHeader is the request header carrying the access token.
	TokenHeader = "x-access-token"
	// ContextUserIDKey is the echo context key holding the verified user id.
	ContextUserIDKey = "userID"
)

// RequireToken verifies the access token from the x-access-token header and
// stores the verified user id in the request context. A missing header is a
// 403; a token that fails verification is a 401.
func RequireToken(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + TokenHeader,
		ParseTokenFunc: func(c echo.Context, tokenString string) (interface{}, error) {
			return jwtService.Verify(tokenString)
		},
		SuccessHandler: func(c echo.Context) {
			if claims, ok := c.Get("user").(*auth.Claims); ok {
				c.Set(ContextUserIDKey, claims.UserID)
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			kind := apperrors.ErrInvalidToken
			if c.Request().Header.Get(TokenHeader) == "" {
				kind = apperrors.ErrNoToken
			}
			httpErr := apperrors.MapErrorToHTTP(kind)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		},
	})
}

// RequireAdmin continues only if the authenticated user currently holds the
// admin role. The role is re-read from storage on every request, so a role
// downgrade takes effect immediately even while the token stays valid. A user
// deleted after issuance is treated as unauthenticated, not as a server fault.
func RequireAdmin(userRepo repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(ContextUserIDKey).(uint)
			if !ok {
				httpErr := apperrors.MapErrorToHTTP(apperrors.ErrInvalidToken)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			user, err := userRepo.FindByIDWithRole(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					httpErr := apperrors.MapErrorToHTTP(apperrors.ErrInvalidToken)
					return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
				}
				httpErr := apperrors.MapErrorToHTTP(err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			if user.Role.Name != model.RoleAdmin {
				httpErr := apperrors.MapErrorToHTTP(apperrors.ErrNotAdmin)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			return next(c)
		}
	}
}
