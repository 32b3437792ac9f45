package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/backend-vlyx/internal/common"
)

// Lead is a stored quote submission.
type Lead struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Mobile          string    `db:"mobile" json:"mobile"`
	Currency        string    `db:"currency" json:"currency"`
	Tier            string    `db:"tier" json:"tier"`
	MainDomain      string    `db:"main_domain" json:"mainDomain"`
	Redirects       []string  `db:"redirects" json:"redirects"`
	SEO             bool      `db:"seo" json:"seo"`
	CouponCode      *string   `db:"coupon_code" json:"couponCode,omitempty"`
	DiscountPercent int       `db:"discount_percent" json:"discountPercent"`
	PreDiscount     string    `db:"pre_discount" json:"preDiscountTotal"`
	FinalTotal      string    `db:"final_total" json:"finalTotal"`
	BillDetails     string    `db:"bill_details" json:"billDetails"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// Querier is the subset of pgxpool.Pool used to read leads.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LeadStore reads persisted quote leads.
type LeadStore struct {
	DB Querier
}

const listLeads = `SELECT id::text AS id, name, mobile, currency, tier, main_domain, redirects, seo,
	coupon_code, discount_percent, pre_discount::text AS pre_discount, final_total::text AS final_total,
	bill_details, created_at
FROM quote_leads
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`

// List returns the newest leads first.
func (s LeadStore) List(ctx context.Context, page common.Pagination) ([]Lead, error) {
	rows, err := s.DB.Query(ctx, listLeads, page.PerPage, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("quote: list leads: %w", err)
	}
	leads, err := pgx.CollectRows(rows, pgx.RowToStructByName[Lead])
	if err != nil {
		return nil, fmt.Errorf("quote: scan leads: %w", err)
	}
	return leads, nil
}
