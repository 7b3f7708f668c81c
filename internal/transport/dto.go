package transport

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/receipts/internal/models"
)

type SignUpRequest struct {
	Username string  `json:"username" form:"username"`
	FullName *string `json:"full_name" form:"full_name"`
	Password string  `json:"password" form:"password"`
}

type SignInRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName *string   `json:"full_name"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Money and quantities are decoded straight into decimals so 0.1 stays 0.1.
type ProductRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

type PaymentRequest struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

type CreateReceiptRequest struct {
	Products []ProductRequest `json:"products"`
	Payment  PaymentRequest   `json:"payment"`
}

type ProductResponse struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	Total    float64 `json:"total"`
}

type PaymentResponse struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

type ReceiptResponse struct {
	ID        uuid.UUID         `json:"id"`
	Products  []ProductResponse `json:"products"`
	Payment   PaymentResponse   `json:"payment"`
	Total     float64           `json:"total"`
	Rest      float64           `json:"rest"`
	UserID    uuid.UUID         `json:"user_id"`
	PublicURL string            `json:"public_url"`
	CreatedAt time.Time         `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, FullName: u.FullName}
}

// NewReceiptResponse renders rc with public_url built as http://{host}/public/{code}.
func NewReceiptResponse(rc *models.Receipt, host string) ReceiptResponse {
	out := ReceiptResponse{
		ID:       rc.ID,
		Products: make([]ProductResponse, 0, len(rc.Products)),
		Payment: PaymentResponse{
			Type:   string(rc.PaymentType),
			Amount: rc.PaymentAmount.InexactFloat64(),
		},
		Total:     rc.Total.InexactFloat64(),
		Rest:      rc.Rest.InexactFloat64(),
		UserID:    rc.UserID,
		PublicURL: fmt.Sprintf("http://%s/public/%s", host, rc.ShortCode()),
		CreatedAt: rc.CreatedAt,
	}
	for _, p := range rc.Products {
		out.Products = append(out.Products, ProductResponse{
			Name:     p.Name,
			Price:    p.Price.InexactFloat64(),
			Quantity: p.Quantity.InexactFloat64(),
			Total:    p.LineTotal().InexactFloat64(),
		})
	}
	return out
}

func NewReceiptList(rcs []models.Receipt, host string) []ReceiptResponse {
	out := make([]ReceiptResponse, 0, len(rcs))
	for i := range rcs {
		out = append(out, NewReceiptResponse(&rcs[i], host))
	}
	return out
}
