// Package render formats a receipt as a fixed-width plain-text slip.
package render

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/receipts/internal/models"
)

const (
	DefaultWidth  = 40
	DefaultHeader = "ФОП Checkbox Test Task"
	DefaultFooter = "Дякуємо за покупку!"

	timeLayout = "02.01.2006 15:04"
)

type Options struct {
	Width     int
	Header    string
	StoreName string // omitted when empty
	Footer    string
	Location  *time.Location
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Header == "" {
		o.Header = DefaultHeader
	}
	if o.Footer == "" {
		o.Footer = DefaultFooter
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

func Render(rc *models.Receipt, opt Options) string {
	opt = opt.withDefaults()
	w := opt.Width
	eq := strings.Repeat("=", w)

	lines := []string{center(opt.Header, w)}
	if opt.StoreName != "" {
		lines = append(lines, center(opt.StoreName, w))
	}
	lines = append(lines, eq)

	for i, p := range rc.Products {
		lines = append(lines, wrap(p.Name, w)...)
		left := fmt.Sprintf("%4s x %6s =", p.Quantity.StringFixed(2), p.Price.StringFixed(2))
		right := fmt.Sprintf("%7s", p.LineTotal().StringFixed(2))
		lines = append(lines, spread(left, right, w))
		if i < len(rc.Products)-1 {
			lines = append(lines, strings.Repeat("-", w))
		}
	}
	lines = append(lines, eq)

	lines = append(lines,
		summary("СУМА", rc.Total, w),
		summary(paymentLabel(rc.PaymentType), rc.PaymentAmount, w),
		summary("Решта", rc.Rest, w),
		eq,
		center(rc.CreatedAt.In(opt.Location).Format(timeLayout), w),
		center(opt.Footer, w),
	)
	return strings.Join(lines, "\n")
}

func paymentLabel(pt models.PaymentType) string {
	if pt == models.PaymentCashless {
		return "Картка"
	}
	return "Готівка"
}

func summary(label string, amount decimal.Decimal, w int) string {
	return spread(label, fmt.Sprintf("%9s", amount.StringFixed(2)), w)
}

// spread places right flush to the margin with at least one space of gap.
func spread(left, right string, w int) string {
	gap := w - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func center(s string, w int) string {
	pad := w - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	l := pad / 2
	return strings.Repeat(" ", l) + s + strings.Repeat(" ", pad-l)
}

// wrap cuts s into w-rune chunks, padding the last one to w.
func wrap(s string, w int) []string {
	var out []string
	r := []rune(s)
	for len(r) > 0 {
		n := min(w, len(r))
		chunk := string(r[:n])
		out = append(out, chunk+strings.Repeat(" ", w-n))
		r = r[n:]
	}
	return out
}
