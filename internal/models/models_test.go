package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentTypeValid(t *testing.T) {
	assert.True(t, PaymentCash.Valid())
	assert.True(t, PaymentCashless.Valid())
	assert.False(t, PaymentType("card").Valid())
	assert.False(t, PaymentType("").Valid())
}

func TestLineTotalRoundsHalfAwayFromZero(t *testing.T) {
	p := Product{Price: decimal.RequireFromString("0.15"), Quantity: decimal.RequireFromString("0.5")}
	assert.Equal(t, "0.08", p.LineTotal().StringFixed(2))

	p = Product{Price: decimal.RequireFromString("10"), Quantity: decimal.RequireFromString("2")}
	assert.True(t, p.LineTotal().Equal(decimal.NewFromInt(20)))
}

func TestBeforeCreateAssignsIDs(t *testing.T) {
	u := &User{}
	require.NoError(t, u.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, u.ID)

	id := uuid.New()
	r := &Receipt{ID: id}
	require.NoError(t, r.BeforeCreate(nil))
	assert.Equal(t, id, r.ID)
}

func TestShortCode(t *testing.T) {
	r := &Receipt{}
	assert.Empty(t, r.ShortCode())
	r.ShortLink = &ShortLink{Code: "Ab3dEf9h"}
	assert.Equal(t, "Ab3dEf9h", r.ShortCode())
}
