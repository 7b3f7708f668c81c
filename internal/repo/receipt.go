package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/receipts/internal/models"
)

// ReceiptFilter bounds are inclusive; nil fields are not applied.
type ReceiptFilter struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	MinTotal    *decimal.Decimal
	MaxTotal    *decimal.Decimal
	PaymentType *models.PaymentType
	Offset      int
	Limit       int
}

func withLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("ShortLink")
}

// CreateReceipt inserts the receipt with its products. The short link is
// allocated separately through InsertShortLink.
func (r *GormRepo) CreateReceipt(ctx context.Context, rc *models.Receipt) (*models.Receipt, error) {
	if err := r.DB.WithContext(ctx).Omit("ShortLink").Create(rc).Error; err != nil {
		return nil, translate(err)
	}
	return rc, nil
}

// InsertShortLink runs in its own savepoint so a duplicate code leaves the
// enclosing transaction usable.
func (r *GormRepo) InsertShortLink(ctx context.Context, receiptID uuid.UUID, code string) (*models.ShortLink, error) {
	link := &models.ShortLink{ReceiptID: receiptID, Code: code}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(link).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return link, nil
}

func (r *GormRepo) GetReceipt(ctx context.Context, id, userID uuid.UUID) (*models.Receipt, error) {
	var rc models.Receipt
	err := withLines(r.DB.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, userID).
		First(&rc).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rc, nil
}

func (r *GormRepo) ListReceipts(ctx context.Context, userID uuid.UUID, f ReceiptFilter) ([]models.Receipt, error) {
	q := r.DB.WithContext(ctx).Model(&models.Receipt{}).Where("user_id = ?", userID)
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", f.CreatedFrom.UTC())
	}
	if f.CreatedTo != nil {
		q = q.Where("created_at <= ?", f.CreatedTo.UTC())
	}
	if f.MinTotal != nil {
		q = q.Where("total >= ?", *f.MinTotal)
	}
	if f.MaxTotal != nil {
		q = q.Where("total <= ?", *f.MaxTotal)
	}
	if f.PaymentType != nil {
		q = q.Where("payment_type = ?", *f.PaymentType)
	}

	var out []models.Receipt
	err := withLines(q).
		Order("created_at ASC").Order("id ASC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) GetReceiptByShortCode(ctx context.Context, code string) (*models.Receipt, error) {
	var link models.ShortLink
	if err := r.DB.WithContext(ctx).Where("short_code = ?", code).First(&link).Error; err != nil {
		return nil, translate(err)
	}

	var rc models.Receipt
	if err := withLines(r.DB.WithContext(ctx)).Where("id = ?", link.ReceiptID).First(&rc).Error; err != nil {
		return nil, translate(err)
	}
	return &rc, nil
}

// GetReceiptsByIDs returns the user's receipts among ids, in the order of ids.
// Unknown or foreign ids are skipped.
func (r *GormRepo) GetReceiptsByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.Receipt, error) {
	if len(ids) == 0 {
		return []models.Receipt{}, nil
	}
	var found []models.Receipt
	err := withLines(r.DB.WithContext(ctx)).
		Where("id IN ? AND user_id = ?", ids, userID).
		Find(&found).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Receipt, len(found))
	for _, rc := range found {
		byID[rc.ID] = rc
	}
	out := make([]models.Receipt, 0, len(found))
	for _, id := range ids {
		if rc, ok := byID[id]; ok {
			out = append(out, rc)
			delete(byID, id)
		}
	}
	return out, nil
}
