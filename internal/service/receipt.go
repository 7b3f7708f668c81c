package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/receipts/internal/metrics"
	"github.com/Skotchmaster/receipts/internal/models"
	"github.com/Skotchmaster/receipts/internal/repo"
	"github.com/Skotchmaster/receipts/internal/shortcode"
	"github.com/Skotchmaster/receipts/internal/util"
	"github.com/Skotchmaster/receipts/pkg/logging"
)

const sideEffectTimeout = 5 * time.Second

type ReceiptService struct {
	Repo  *repo.GormRepo
	Codes *shortcode.Allocator
	// Events and Index are optional.
	Events EventPublisher
	Index  ReceiptIndexer
	Now    func() time.Time
}

type ListFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	PaymentType *models.PaymentType
	Skip        int
	Limit       int
}

func (s *ReceiptService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ReceiptService) Create(ctx context.Context, userID uuid.UUID, in CreateReceiptInput) (*models.Receipt, error) {
	l := logging.FromContext(ctx).With("svc", "receipt.create", "user_id", userID)

	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	total, rest := Totals(in.Products, in.Payment.Amount)
	rc := &models.Receipt{
		UserID:        userID,
		PaymentType:   in.Payment.Type,
		PaymentAmount: in.Payment.Amount,
		Total:         total,
		Rest:          rest,
		CreatedAt:     s.now().UTC().Truncate(time.Microsecond),
		Products:      make([]models.Product, len(in.Products)),
	}
	for i, p := range in.Products {
		rc.Products[i] = models.Product{
			Position: i,
			Name:     p.Name,
			Price:    p.Price,
			Quantity: p.Quantity,
		}
	}

	err = s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.CreateReceipt(ctx, rc); err != nil {
			return err
		}
		link, err := s.Codes.Allocate(ctx, tx, rc.ID)
		if err != nil {
			return err
		}
		rc.ShortLink = link
		return nil
	})
	if err != nil {
		l.Error("create_receipt_error", "status", 500, "reason", "transaction failed", "error", err)
		return nil, fmt.Errorf("create receipt: %w", err)
	}

	metrics.ReceiptsCreated.WithLabelValues(string(rc.PaymentType)).Inc()
	l.Info("receipt_created", "receipt_id", rc.ID, "total", rc.Total.StringFixed(2))
	s.afterCreate(ctx, rc)
	return rc, nil
}

// afterCreate publishes and indexes the committed receipt. Failures are logged
// and never reach the caller.
func (s *ReceiptService) afterCreate(ctx context.Context, rc *models.Receipt) {
	l := logging.FromContext(ctx).With("svc", "receipt.after_create", "receipt_id", rc.ID)

	if s.Events != nil {
		pctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
		event := map[string]any{
			"type":         "receipt_created",
			"receipt_id":   rc.ID.String(),
			"user_id":      rc.UserID.String(),
			"payment_type": string(rc.PaymentType),
			"total":        rc.Total.StringFixed(2),
			"short_code":   rc.ShortCode(),
			"created_at":   rc.CreatedAt.Format(time.RFC3339Nano),
		}
		if err := s.Events.PublishEvent(pctx, TopicReceiptEvents, rc.UserID.String(), event); err != nil {
			l.Warn("publish_error", "topic", TopicReceiptEvents, "error", err)
		}
		cancel()
	}

	if s.Index != nil {
		ictx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
		if err := s.Index.IndexReceipt(ictx, rc); err != nil {
			l.Warn("index_error", "error", err)
		}
		cancel()
	}
}

func (s *ReceiptService) Get(ctx context.Context, id, userID uuid.UUID) (*models.Receipt, error) {
	rc, err := s.Repo.GetReceipt(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: receipt %s", ErrNotFound, id)
		}
		return nil, err
	}
	return rc, nil
}

func (s *ReceiptService) List(ctx context.Context, userID uuid.UUID, f ListFilter) ([]models.Receipt, error) {
	if f.PaymentType != nil && !f.PaymentType.Valid() {
		return nil, fmt.Errorf("%w: payment_type must be cash or cashless", ErrValidation)
	}
	offset, limit := util.Clamp(f.Skip, f.Limit)
	return s.Repo.ListReceipts(ctx, userID, repo.ReceiptFilter{
		CreatedFrom: f.StartDate,
		CreatedTo:   f.EndDate,
		MinTotal:    f.MinAmount,
		MaxTotal:    f.MaxAmount,
		PaymentType: f.PaymentType,
		Offset:      offset,
		Limit:       limit,
	})
}

func (s *ReceiptService) GetByShortCode(ctx context.Context, code string) (*models.Receipt, error) {
	rc, err := s.Repo.GetReceiptByShortCode(ctx, code)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: short code %q", ErrNotFound, code)
		}
		return nil, err
	}
	return rc, nil
}

// Search ranks the user's receipts by product name through the search index
// and loads them from the database in rank order.
func (s *ReceiptService) Search(ctx context.Context, userID uuid.UUID, query string, skip, limit int) ([]models.Receipt, error) {
	if s.Index == nil {
		return nil, ErrSearchDisabled
	}
	if query == "" {
		return nil, fmt.Errorf("%w: q required", ErrValidation)
	}
	offset, size := util.Clamp(skip, limit)
	ids, err := s.Index.SearchReceipts(ctx, userID, query, offset, size)
	if err != nil {
		return nil, fmt.Errorf("search receipts: %w", err)
	}
	return s.Repo.GetReceiptsByIDs(ctx, userID, ids)
}
