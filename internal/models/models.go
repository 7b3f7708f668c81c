package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentType string

const (
	PaymentCash     PaymentType = "cash"
	PaymentCashless PaymentType = "cashless"
)

func (p PaymentType) Valid() bool {
	return p == PaymentCash || p == PaymentCashless
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"          json:"username"`
	FullName     *string   `                                     json:"full_name"`
	PasswordHash string    `gorm:"not null"                      json:"-"`
	Receipts     []Receipt `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Receipt struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"               json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;index;not null"           json:"user_id"`
	PaymentType   PaymentType     `gorm:"type:varchar(16);not null"          json:"payment_type"`
	PaymentAmount decimal.Decimal `gorm:"type:numeric;not null"              json:"payment_amount"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null;index"  json:"total"`
	Rest          decimal.Decimal `gorm:"type:numeric(12,2);not null"        json:"rest"`
	CreatedAt     time.Time       `gorm:"not null;index"                     json:"created_at"`
	Products      []Product       `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"products"`
	ShortLink     *ShortLink      `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"short_link,omitempty"`
}

func (r *Receipt) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ShortCode returns the public code, or "" when the link was not loaded.
func (r *Receipt) ShortCode() string {
	if r.ShortLink == nil {
		return ""
	}
	return r.ShortLink.Code
}

type Product struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"     json:"-"`
	ReceiptID uuid.UUID       `gorm:"type:uuid;index;not null"     json:"-"`
	Position  int             `gorm:"not null"                     json:"-"`
	Name      string          `gorm:"not null"                     json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric;not null"        json:"price"`
	Quantity  decimal.Decimal `gorm:"type:numeric;not null"        json:"quantity"`
}

// LineTotal is price × quantity rounded half away from zero to cents.
func (p Product) LineTotal() decimal.Decimal {
	return p.Price.Mul(p.Quantity).Round(2)
}

type ShortLink struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                 json:"-"`
	ReceiptID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"           json:"-"`
	Code      string    `gorm:"column:short_code;uniqueIndex;size:32;not null" json:"short_code"`
}
