package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/receipts/internal/metrics"
	"github.com/Skotchmaster/receipts/internal/render"
	"github.com/Skotchmaster/receipts/pkg/logging"
)

// PublicService serves rendered slips by short code. Receipts never change,
// so a cached slip stays valid until its TTL.
type PublicService struct {
	Receipts *ReceiptService
	Cache    SlipCache // optional
	Slip     render.Options
}

func (s *PublicService) cacheKey(code string) string {
	w := s.Slip.Width
	if w <= 0 {
		w = render.DefaultWidth
	}
	return fmt.Sprintf("slip:%s:%d", code, w)
}

func (s *PublicService) Render(ctx context.Context, code string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "public.slip", "short_code", code)
	key := s.cacheKey(code)

	if s.Cache != nil {
		text, ok, err := s.Cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.SlipCacheLookups.WithLabelValues("error").Inc()
			l.Warn("slip_cache_error", "op", "get", "error", err)
		case ok:
			metrics.SlipCacheLookups.WithLabelValues("hit").Inc()
			return text, nil
		default:
			metrics.SlipCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	rc, err := s.Receipts.GetByShortCode(ctx, code)
	if err != nil {
		return "", err
	}
	text := render.Render(rc, s.Slip)

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, text); err != nil {
			l.Warn("slip_cache_error", "op", "set", "error", err)
		}
	}
	return text, nil
}
