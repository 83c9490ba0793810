package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "flowdeck/internal/errors"
)

const identityContextKey = "identity"

const bearerScheme = "Bearer "

// Identity is the verified caller identity attached to the request context.
type Identity struct {
	ID    uuid.UUID
	Email string
	Role  string
}

// Middleware returns the authorization gate. It walks the header through
// missing -> wrong scheme -> empty token -> verification, each with its own
// 401 outcome, and attaches the Identity on success. Verifier faults that are
// neither expiry nor malformation surface as 500 so clients can tell a bad
// credential from a broken server.
func Middleware(jwtService *JWTService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return unauthorized("no authorization token provided", "NO_TOKEN")
			}

			if !strings.HasPrefix(header, bearerScheme) {
				return unauthorized("invalid token format", "BAD_TOKEN_FORMAT")
			}

			tokenString := strings.TrimSpace(strings.TrimPrefix(header, bearerScheme))
			if tokenString == "" {
				return unauthorized("access denied", "ACCESS_DENIED")
			}

			claims, err := jwtService.Verify(tokenString)
			if err != nil {
				switch err {
				case ErrTokenExpired:
					return unauthorized("token has expired", "TOKEN_EXPIRED")
				case ErrTokenMalformed:
					return unauthorized("invalid token", "INVALID_TOKEN")
				default:
					return echo.NewHTTPError(http.StatusInternalServerError, apperrors.ErrorResponse{
						Error: "internal server error during authentication",
						Code:  "INTERNAL_ERROR",
					})
				}
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return unauthorized("invalid token", "INVALID_TOKEN")
			}

			SetIdentity(c, Identity{
				ID:    userID,
				Email: claims.Email,
				Role:  claims.Role,
			})

			return next(c)
		}
	}
}

func unauthorized(message, code string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// SetIdentity attaches an identity to the request context.
func SetIdentity(c echo.Context, identity Identity) {
	c.Set(identityContextKey, identity)
}

// IdentityFrom returns the verified identity set by Middleware.
func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityContextKey).(Identity)
	return id, ok
}
