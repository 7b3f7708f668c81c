package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/receipts/internal/service"
	"github.com/Skotchmaster/receipts/pkg/logging"
)

type PublicHTTP struct {
	Svc *service.PublicService
}

func (h *PublicHTTP) Slip(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "public.slip")

	text, err := h.Svc.Render(ctx, c.Param("code"))
	if err != nil {
		return serviceError(c, l, "public_slip_error", err)
	}
	return c.String(http.StatusOK, text)
}
