package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/receipts/internal/models"
)

type ProductInput struct {
	Name     string
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

type PaymentInput struct {
	Type   models.PaymentType
	Amount decimal.Decimal
}

type CreateReceiptInput struct {
	Products []ProductInput
	Payment  PaymentInput
}

// normalize checks inputs as given. Prices and quantities keep their full
// precision; only total and rest are rounded to cents.
func (in CreateReceiptInput) normalize() (CreateReceiptInput, error) {
	out := CreateReceiptInput{
		Products: make([]ProductInput, len(in.Products)),
		Payment:  in.Payment,
	}
	for i, p := range in.Products {
		if strings.TrimSpace(p.Name) == "" {
			return out, fmt.Errorf("%w: products[%d].name required", ErrValidation, i)
		}
		if !p.Price.IsPositive() {
			return out, fmt.Errorf("%w: products[%d].price must be > 0", ErrValidation, i)
		}
		if !p.Quantity.IsPositive() {
			return out, fmt.Errorf("%w: products[%d].quantity must be > 0", ErrValidation, i)
		}
		out.Products[i] = p
	}
	if !out.Payment.Type.Valid() {
		return out, fmt.Errorf("%w: payment.type must be cash or cashless", ErrValidation)
	}
	if !out.Payment.Amount.IsPositive() {
		return out, fmt.Errorf("%w: payment.amount must be > 0", ErrValidation)
	}
	return out, nil
}

type SignUpInput struct {
	Username string
	FullName *string
	Password string
}

const minPasswordLen = 8

func (in SignUpInput) validate() error {
	if strings.TrimSpace(in.Username) == "" {
		return fmt.Errorf("%w: username required", ErrValidation)
	}
	if len([]rune(in.Password)) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	return nil
}
