package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/receipts/internal/models"
	"github.com/Skotchmaster/receipts/internal/repo"
	"github.com/Skotchmaster/receipts/internal/shortcode"
	"github.com/Skotchmaster/receipts/internal/testutil"
	"github.com/Skotchmaster/receipts/pkg/tokens"
)

type fakeEvents struct {
	mu     sync.Mutex
	topics []string
	events []map[string]any
	err    error
}

func (f *fakeEvents) PublishEvent(_ context.Context, topic, _ string, event map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.events = append(f.events, event)
	return f.err
}

type fakeIndex struct {
	indexed []uuid.UUID
	hits    []uuid.UUID
	err     error
}

func (f *fakeIndex) IndexReceipt(_ context.Context, rc *models.Receipt) error {
	f.indexed = append(f.indexed, rc.ID)
	return f.err
}

func (f *fakeIndex) SearchReceipts(context.Context, uuid.UUID, string, int, int) ([]uuid.UUID, error) {
	return f.hits, f.err
}

type env struct {
	repo     *repo.GormRepo
	receipts *ReceiptService
	auth     *AuthService
	events   *fakeEvents
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	require.NoError(t, repo.AutoMigrate(db))
	r := &repo.GormRepo{DB: db}
	ev := &fakeEvents{}
	return &env{
		repo:   r,
		events: ev,
		receipts: &ReceiptService{
			Repo:   r,
			Codes:  &shortcode.Allocator{},
			Events: ev,
		},
		auth: &AuthService{
			Repo:   r,
			Tokens: &tokens.Issuer{Secret: []byte("test-jwt-secret"), TTL: 30 * time.Minute},
			Events: ev,
		},
	}
}

func (e *env) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.auth.SignUp(context.Background(), SignUpInput{Username: name, Password: "password123"})
	require.NoError(t, err)
	return u
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func widget(price, qty string) ProductInput {
	return ProductInput{Name: "Widget", Price: dec(price), Quantity: dec(qty)}
}

func cash(amount string) PaymentInput {
	return PaymentInput{Type: models.PaymentCash, Amount: dec(amount)}
}

var errBoom = errors.New("boom")
