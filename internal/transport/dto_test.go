package transport

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/receipts/internal/models"
)

func TestCreateReceiptRequestDecodesNumbers(t *testing.T) {
	var req CreateReceiptRequest
	body := `{"products":[{"name":"Widget","price":10.1,"quantity":2}],"payment":{"type":"cash","amount":25}}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	require.Len(t, req.Products, 1)
	assert.True(t, req.Products[0].Price.Equal(decimal.RequireFromString("10.1")))
	assert.True(t, req.Payment.Amount.Equal(decimal.NewFromInt(25)))
}

func TestNewReceiptResponse(t *testing.T) {
	rc := &models.Receipt{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		PaymentType:   models.PaymentCashless,
		PaymentAmount: decimal.RequireFromString("15"),
		Total:         decimal.RequireFromString("20"),
		Rest:          decimal.RequireFromString("-5"),
		CreatedAt:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Products: []models.Product{
			{Name: "Widget", Price: decimal.RequireFromString("10"), Quantity: decimal.RequireFromString("2")},
		},
		ShortLink: &models.ShortLink{Code: "Ab12Cd34"},
	}

	out := NewReceiptResponse(rc, "receipts.example")
	assert.Equal(t, "http://receipts.example/public/Ab12Cd34", out.PublicURL)
	assert.Equal(t, 20.0, out.Total)
	assert.Equal(t, -5.0, out.Rest)
	assert.Equal(t, PaymentResponse{Type: "cashless", Amount: 15}, out.Payment)
	assert.Equal(t, []ProductResponse{{Name: "Widget", Price: 10, Quantity: 2, Total: 20}}, out.Products)

	list := NewReceiptList([]models.Receipt{*rc}, "h")
	require.Len(t, list, 1)
	assert.Equal(t, rc.ID, list[0].ID)
	assert.NotNil(t, NewReceiptList(nil, "h"))
}
