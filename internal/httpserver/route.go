package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/receipts/internal/metrics"
	"github.com/Skotchmaster/receipts/internal/service"
	"github.com/Skotchmaster/receipts/pkg/logging"
	mw "github.com/Skotchmaster/receipts/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/receipts/pkg/middleware/logging"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	ReceiptHandler *ReceiptHTTP
	PublicHandler  *PublicHTTP
	// Ready backs /health/ready; nil means always ready.
	Ready func(ctx context.Context) error
}

// New builds the echo instance with the standard middleware chain and routes.
func New(base *slog.Logger, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(metrics.Middleware())
	e.Use(loggingmw.RequestLogger(base))

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Receipts service"})
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				logging.FromContext(c.Request().Context()).Error("ready_check_failed", "status", 503, "error", err)
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	users := e.Group("/users")
	users.POST("/signup", d.AuthHandler.SignUp)
	users.POST("/signin", d.AuthHandler.SignIn)

	requireUser := mw.RequireBearer(func(ctx context.Context, token string) (any, error) {
		u, err := d.AuthHandler.Svc.Authenticate(ctx, token)
		if errors.Is(err, service.ErrUnauthorized) {
			return nil, errors.Join(mw.ErrUnauthenticated, err)
		}
		if err != nil {
			return nil, err
		}
		return u, nil
	})
	receipts := e.Group("/receipts", requireUser)
	receipts.POST("", d.ReceiptHandler.Create)
	receipts.GET("", d.ReceiptHandler.List)
	receipts.GET("/search", d.ReceiptHandler.Search)
	receipts.GET("/:id", d.ReceiptHandler.Get)

	e.GET("/public/:code", d.PublicHandler.Slip)
}
