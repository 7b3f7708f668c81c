package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/receipts/internal/models"
	"github.com/Skotchmaster/receipts/internal/service"
	"github.com/Skotchmaster/receipts/internal/transport"
	"github.com/Skotchmaster/receipts/pkg/logging"
	mw "github.com/Skotchmaster/receipts/pkg/middleware/auth"
)

type ReceiptHTTP struct {
	Svc *service.ReceiptService
	// PublicHost overrides the request host in public_url.
	PublicHost string
}

func (h *ReceiptHTTP) host(c echo.Context) string {
	if h.PublicHost != "" {
		return h.PublicHost
	}
	return c.Request().Host
}

func currentUser(c echo.Context) (*models.User, error) {
	u, ok := c.Get(mw.PrincipalKey).(*models.User)
	if !ok || u == nil {
		return nil, errors.New("no authenticated user in context")
	}
	return u, nil
}

func (h *ReceiptHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "receipt.create")

	u, err := currentUser(c)
	if err != nil {
		return serviceError(c, l, "create_receipt_error", err)
	}

	var req transport.CreateReceiptRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_receipt_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	in := service.CreateReceiptInput{
		Products: make([]service.ProductInput, len(req.Products)),
		Payment: service.PaymentInput{
			Type:   models.PaymentType(req.Payment.Type),
			Amount: req.Payment.Amount,
		},
	}
	for i, p := range req.Products {
		in.Products[i] = service.ProductInput{Name: p.Name, Price: p.Price, Quantity: p.Quantity}
	}

	rc, err := h.Svc.Create(ctx, u.ID, in)
	if err != nil {
		return serviceError(c, l, "create_receipt_error", err)
	}
	return c.JSON(http.StatusCreated, transport.NewReceiptResponse(rc, h.host(c)))
}

func (h *ReceiptHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "receipt.get")

	u, err := currentUser(c)
	if err != nil {
		return serviceError(c, l, "get_receipt_error", err)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_receipt_error", "status", 404, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "receipt not found")
	}

	rc, err := h.Svc.Get(ctx, id, u.ID)
	if err != nil {
		return serviceError(c, l, "get_receipt_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewReceiptResponse(rc, h.host(c)))
}

// List returns the caller's receipts oldest first. A missing, zero or negative
// limit means 10, a limit above 100 is capped at 100 and a negative skip is 0.
func (h *ReceiptHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "receipt.list")

	u, err := currentUser(c)
	if err != nil {
		return serviceError(c, l, "list_receipts_error", err)
	}

	f, err := parseListFilter(c)
	if err != nil {
		l.Warn("list_receipts_error", "status", 400, "reason", "invalid query", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rcs, err := h.Svc.List(ctx, u.ID, f)
	if err != nil {
		return serviceError(c, l, "list_receipts_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewReceiptList(rcs, h.host(c)))
}

// Search applies the same skip/limit bounds as List.
func (h *ReceiptHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "receipt.search")

	u, err := currentUser(c)
	if err != nil {
		return serviceError(c, l, "search_receipts_error", err)
	}

	skip, err := queryInt(c, "skip")
	if err != nil {
		l.Warn("search_receipts_error", "status", 400, "reason", "invalid query", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		l.Warn("search_receipts_error", "status", 400, "reason", "invalid query", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rcs, err := h.Svc.Search(ctx, u.ID, c.QueryParam("q"), skip, limit)
	if err != nil {
		return serviceError(c, l, "search_receipts_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewReceiptList(rcs, h.host(c)))
}

func parseListFilter(c echo.Context) (service.ListFilter, error) {
	var f service.ListFilter
	var err error

	if f.Skip, err = queryInt(c, "skip"); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(c, "limit"); err != nil {
		return f, err
	}
	if f.StartDate, err = queryTime(c, "start_date", false); err != nil {
		return f, err
	}
	if f.EndDate, err = queryTime(c, "end_date", true); err != nil {
		return f, err
	}
	if f.MinAmount, err = queryDecimal(c, "min_amount"); err != nil {
		return f, err
	}
	if f.MaxAmount, err = queryDecimal(c, "max_amount"); err != nil {
		return f, err
	}
	if v := c.QueryParam("payment_type"); v != "" {
		pt := models.PaymentType(v)
		f.PaymentType = &pt
	}
	return f, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

func queryDecimal(c echo.Context, name string) (*decimal.Decimal, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &d, nil
}

// queryTime accepts YYYY-MM-DD or RFC 3339. A bare end date covers the
// whole day.
func queryTime(c echo.Context, name string, endOfDay bool) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Microsecond)
		}
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD or RFC 3339", name)
	}
	return &t, nil
}
