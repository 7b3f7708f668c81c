package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/receipts/internal/models"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event map[string]any) error
}

type ReceiptIndexer interface {
	IndexReceipt(ctx context.Context, rc *models.Receipt) error
	SearchReceipts(ctx context.Context, userID uuid.UUID, query string, offset, limit int) ([]uuid.UUID, error)
}

// SlipCache stores rendered public slips. A miss is ("", false, nil).
type SlipCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

const (
	TopicReceiptEvents = "receipt_events"
	TopicUserEvents    = "user_events"
)
