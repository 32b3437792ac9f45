package quote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-vlyx/internal/resilience"
)

// Sink receives accepted quote submissions.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, sub Submission) error
}

// ContactLine formats the contact as it appears in lead notifications.
func ContactLine(c Contact) string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Mobile)
}

// FormSink posts each submission to a hosted form endpoint as url-encoded fields.
type FormSink struct {
	Client       resilience.HTTPClient
	URL          string
	ContactField string
	DetailsField string
}

// Name implements Sink.
func (s FormSink) Name() string { return "form" }

// Deliver implements Sink. Any status of 400 or above is a delivery failure.
func (s FormSink) Deliver(ctx context.Context, sub Submission) error {
	if s.URL == "" {
		return fmt.Errorf("quote: form sink url not configured")
	}
	values := url.Values{}
	values.Set(s.ContactField, ContactLine(sub.Contact))
	values.Set(s.DetailsField, sub.BillDetails)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, strings.NewReader(values.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.Client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("quote: form delivery: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusBadRequest {
		return &resilience.StatusError{Target: s.Client.Breaker.Target(), StatusCode: resp.StatusCode}
	}
	return nil
}

// Execer is the subset of pgxpool.Pool used to persist leads.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresSink stores each submission as a row in quote_leads. Re-delivering the same quote is a no-op.
type PostgresSink struct {
	DB Execer
}

const insertLead = `INSERT INTO quote_leads (
	id, name, mobile, currency, tier, main_domain, redirects, seo,
	coupon_code, discount_percent, pre_discount, final_total, bill_details, created_at
) VALUES (
	$1::text::uuid, $2, $3, $4, $5, $6, $7, $8,
	$9, $10, $11::text::numeric, $12::text::numeric, $13, $14
) ON CONFLICT (id) DO NOTHING`

// Name implements Sink.
func (s PostgresSink) Name() string { return "postgres" }

// Deliver implements Sink.
func (s PostgresSink) Deliver(ctx context.Context, sub Submission) error {
	if s.DB == nil {
		return fmt.Errorf("quote: postgres sink not configured")
	}
	q := sub.Quote
	b := q.Breakdown
	redirects := make([]string, len(b.Redirects))
	for i, d := range b.Redirects {
		redirects[i] = string(d)
	}
	var couponCode *string
	if q.Coupon != nil {
		couponCode = &q.Coupon.Code
	}
	_, err := s.DB.Exec(ctx, insertLead,
		q.ID.String(),
		sub.Contact.Name,
		sub.Contact.Mobile,
		string(b.Currency),
		string(b.Tier),
		string(b.MainDomain),
		redirects,
		b.AddOnCost.IsPositive(),
		couponCode,
		b.DiscountPercent,
		b.PreDiscountTotal.String(),
		b.FinalTotal.String(),
		sub.BillDetails,
		q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("quote: insert lead: %w", err)
	}
	return nil
}

// LogSink writes submissions to the structured log. It is the development default.
type LogSink struct {
	Logger zerolog.Logger
}

// Name implements Sink.
func (s LogSink) Name() string { return "log" }

// Deliver implements Sink.
func (s LogSink) Deliver(_ context.Context, sub Submission) error {
	s.Logger.Info().
		Str("quote_id", sub.Quote.ID.String()).
		Str("contact", ContactLine(sub.Contact)).
		Str("final_total", sub.Quote.Breakdown.FinalTotal.String()).
		Str("bill_details", sub.BillDetails).
		Msg("quote submitted")
	return nil
}
