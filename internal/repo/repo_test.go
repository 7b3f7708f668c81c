package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/receipts/internal/models"
	"github.com/Skotchmaster/receipts/internal/testutil"
)

func newRepo(t *testing.T) *GormRepo {
	t.Helper()
	db := testutil.NewDB(t)
	require.NoError(t, AutoMigrate(db))
	return &GormRepo{DB: db}
}

func mustUser(t *testing.T, r *GormRepo, name string) *models.User {
	t.Helper()
	u, err := r.CreateUser(context.Background(), &models.User{Username: name, PasswordHash: "x"})
	require.NoError(t, err)
	return u
}

func mustReceipt(t *testing.T, r *GormRepo, userID uuid.UUID, total string, pt models.PaymentType, at time.Time, code string) *models.Receipt {
	t.Helper()
	ctx := context.Background()
	tot := decimal.RequireFromString(total)
	rc := &models.Receipt{
		UserID:        userID,
		PaymentType:   pt,
		PaymentAmount: tot,
		Total:         tot,
		Rest:          decimal.Zero,
		CreatedAt:     at.UTC(),
		Products: []models.Product{
			{Position: 1, Name: "second", Price: tot, Quantity: decimal.NewFromInt(1)},
			{Position: 0, Name: "first", Price: decimal.Zero, Quantity: decimal.NewFromInt(1)},
		},
	}
	_, err := r.CreateReceipt(ctx, rc)
	require.NoError(t, err)
	_, err = r.InsertShortLink(ctx, rc.ID, code)
	require.NoError(t, err)
	return rc
}

func TestCreateUserDuplicate(t *testing.T) {
	r := newRepo(t)
	mustUser(t, r, "alice")

	_, err := r.CreateUser(context.Background(), &models.User{Username: "alice", PasswordHash: "y"})
	require.ErrorIs(t, err, ErrDuplicate)

	u, err := r.FindUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "x", u.PasswordHash)

	_, err = r.FindUserByUsername(context.Background(), "bob")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetReceiptOwnershipAndOrdering(t *testing.T) {
	r := newRepo(t)
	alice := mustUser(t, r, "alice")
	bob := mustUser(t, r, "bob")
	rc := mustReceipt(t, r, alice.ID, "12.50", models.PaymentCash, time.Now(), "AAAAAAAA")

	got, err := r.GetReceipt(context.Background(), rc.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, got.Products, 2)
	assert.Equal(t, "first", got.Products[0].Name)
	assert.Equal(t, "second", got.Products[1].Name)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "AAAAAAAA", got.ShortCode())

	_, err = r.GetReceipt(context.Background(), rc.ID, bob.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInsertShortLinkDuplicateKeepsTxUsable(t *testing.T) {
	r := newRepo(t)
	alice := mustUser(t, r, "alice")
	mustReceipt(t, r, alice.ID, "1", models.PaymentCash, time.Now(), "DUPLICAT")

	ctx := context.Background()
	var id uuid.UUID
	err := r.WithTx(ctx, func(tx *GormRepo) error {
		rc := &models.Receipt{UserID: alice.ID, PaymentType: models.PaymentCash, CreatedAt: time.Now().UTC()}
		if _, err := tx.CreateReceipt(ctx, rc); err != nil {
			return err
		}
		id = rc.ID
		_, err := tx.InsertShortLink(ctx, rc.ID, "DUPLICAT")
		require.ErrorIs(t, err, ErrDuplicate)
		_, err = tx.InsertShortLink(ctx, rc.ID, "UNIQUE01")
		return err
	})
	require.NoError(t, err)

	got, err := r.GetReceiptByShortCode(ctx, "UNIQUE01")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestWithTxRollsBack(t *testing.T) {
	r := newRepo(t)
	alice := mustUser(t, r, "alice")
	ctx := context.Background()

	var id uuid.UUID
	err := r.WithTx(ctx, func(tx *GormRepo) error {
		rc := &models.Receipt{UserID: alice.ID, PaymentType: models.PaymentCash, CreatedAt: time.Now().UTC()}
		if _, err := tx.CreateReceipt(ctx, rc); err != nil {
			return err
		}
		id = rc.ID
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = r.GetReceipt(ctx, id, alice.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetReceiptByShortCodeMissing(t *testing.T) {
	r := newRepo(t)
	_, err := r.GetReceiptByShortCode(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListReceiptsFilters(t *testing.T) {
	r := newRepo(t)
	alice := mustUser(t, r, "alice")
	bob := mustUser(t, r, "bob")
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	r1 := mustReceipt(t, r, alice.ID, "20.00", models.PaymentCash, base, "CODE0001")
	r2 := mustReceipt(t, r, alice.ID, "35.10", models.PaymentCashless, base.Add(24*time.Hour), "CODE0002")
	r3 := mustReceipt(t, r, alice.ID, "50.00", models.PaymentCash, base.Add(48*time.Hour), "CODE0003")
	mustReceipt(t, r, bob.ID, "99.00", models.PaymentCash, base, "CODE0004")

	ids := func(rs []models.Receipt) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(rs))
		for _, rc := range rs {
			out = append(out, rc.ID)
		}
		return out
	}
	ctx := context.Background()
	dec := func(s string) *decimal.Decimal { d := decimal.RequireFromString(s); return &d }
	ts := func(t time.Time) *time.Time { return &t }
	cash := models.PaymentCash

	all, err := r.ListReceipts(ctx, alice.ID, ReceiptFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{r1.ID, r2.ID, r3.ID}, ids(all))

	got, err := r.ListReceipts(ctx, alice.ID, ReceiptFilter{MinTotal: dec("21"), Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{r2.ID, r3.ID}, ids(got))

	got, err = r.ListReceipts(ctx, alice.ID, ReceiptFilter{MinTotal: dec("20"), MaxTotal: dec("35.10"), Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{r1.ID, r2.ID}, ids(got))

	got, err = r.ListReceipts(ctx, alice.ID, ReceiptFilter{MinTotal: dec("21"), PaymentType: &cash, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{r3.ID}, ids(got))

	got, err = r.ListReceipts(ctx, alice.ID, ReceiptFilter{
		CreatedFrom: ts(base.Add(time.Hour)),
		CreatedTo:   ts(base.Add(24 * time.Hour)),
		Limit:       10,
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{r2.ID}, ids(got))

	got, err = r.ListReceipts(ctx, alice.ID, ReceiptFilter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{r2.ID}, ids(got))
}

func TestGetReceiptsByIDsKeepsOrderAndOwnership(t *testing.T) {
	r := newRepo(t)
	alice := mustUser(t, r, "alice")
	bob := mustUser(t, r, "bob")
	now := time.Now()
	a1 := mustReceipt(t, r, alice.ID, "1", models.PaymentCash, now, "IDS00001")
	a2 := mustReceipt(t, r, alice.ID, "2", models.PaymentCash, now, "IDS00002")
	b1 := mustReceipt(t, r, bob.ID, "3", models.PaymentCash, now, "IDS00003")

	got, err := r.GetReceiptsByIDs(context.Background(), alice.ID, []uuid.UUID{a2.ID, b1.ID, uuid.New(), a1.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a2.ID, got[0].ID)
	assert.Equal(t, a1.ID, got[1].ID)

	got, err = r.GetReceiptsByIDs(context.Background(), alice.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
