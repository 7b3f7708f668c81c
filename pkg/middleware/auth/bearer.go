package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// PrincipalKey is the echo.Context key holding whatever VerifyFunc returned.
const PrincipalKey = "principal"

// ErrUnauthenticated marks a VerifyFunc failure caused by the token itself.
var ErrUnauthenticated = errors.New("unauthenticated")

type VerifyFunc func(ctx context.Context, token string) (any, error)

// RequireBearer rejects requests without a valid "Authorization: Bearer" token.
// Only verify errors wrapping ErrUnauthenticated become 401; anything else is
// passed on to the error handler.
func RequireBearer(verify VerifyFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorized(c, "not authenticated")
			}
			p, err := verify(c.Request().Context(), token)
			if errors.Is(err, ErrUnauthenticated) {
				return unauthorized(c, "could not validate credentials")
			}
			if err != nil {
				return fmt.Errorf("verify bearer token: %w", err)
			}
			c.Set(PrincipalKey, p)
			return next(c)
		}
	}
}

func bearerToken(h string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(h), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}
