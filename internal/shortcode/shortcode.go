// Package shortcode generates public receipt codes and allocates them
// against the storage unique index.
package shortcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/Skotchmaster/receipts/internal/metrics"
	"github.com/Skotchmaster/receipts/internal/models"
	"github.com/Skotchmaster/receipts/internal/repo"
	"github.com/Skotchmaster/receipts/pkg/logging"
)

const (
	Alphabet           = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	DefaultLength      = 8
	DefaultMaxAttempts = 10
)

var ErrExhausted = errors.New("short code attempts exhausted")

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generate draws length characters uniformly from Alphabet using crypto/rand.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid short code length %d", length)
	}
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		b[i] = Alphabet[n.Int64()]
	}
	return string(b), nil
}

type Inserter interface {
	InsertShortLink(ctx context.Context, receiptID uuid.UUID, code string) (*models.ShortLink, error)
}

type Allocator struct {
	Length      int
	MaxAttempts int
	// Generate defaults to the package Generate.
	Generate func(length int) (string, error)
}

func (a *Allocator) length() int {
	if a.Length > 0 {
		return a.Length
	}
	return DefaultLength
}

func (a *Allocator) maxAttempts() int {
	if a.MaxAttempts > 0 {
		return a.MaxAttempts
	}
	return DefaultMaxAttempts
}

// Allocate inserts fresh codes until one is accepted by the unique index.
// There is no existence pre-check; a duplicate insert is the collision signal.
func (a *Allocator) Allocate(ctx context.Context, ins Inserter, receiptID uuid.UUID) (*models.ShortLink, error) {
	gen := a.Generate
	if gen == nil {
		gen = Generate
	}
	l := logging.FromContext(ctx)

	for attempt := 1; attempt <= a.maxAttempts(); attempt++ {
		code, err := gen(a.length())
		if err != nil {
			return nil, fmt.Errorf("generate short code: %w", err)
		}
		link, err := ins.InsertShortLink(ctx, receiptID, code)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("insert short code: %w", err)
		}
		metrics.ShortCodeCollisions.Inc()
		l.Debug("short_code_collision", "attempt", attempt, "receipt_id", receiptID)
	}
	return nil, ErrExhausted
}
