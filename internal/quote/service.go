package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-vlyx/internal/common"
	"github.com/noah-isme/backend-vlyx/internal/coupon"
	"github.com/noah-isme/backend-vlyx/internal/obs"
	"github.com/noah-isme/backend-vlyx/internal/pricing"
)

var (
	// ErrInvalidContact is returned when the submitted name or mobile number is malformed.
	ErrInvalidContact = errors.New("invalid contact details")
	// ErrTermsNotAccepted is returned when a quote is submitted without accepting the terms.
	ErrTermsNotAccepted = errors.New("terms and conditions must be accepted")
)

var (
	namePattern   = regexp.MustCompile(`^[\p{L}\s]+$`)
	mobilePattern = regexp.MustCompile(`^\+[0-9\s\-()]+$`)
)

// Request is a price selection as submitted by a client. Enumerations are parsed leniently
// (case-insensitive, optional leading dot on domains).
type Request struct {
	Tier       string   `json:"tier" validate:"required"`
	Currency   string   `json:"currency" validate:"required"`
	MainDomain string   `json:"mainDomain" validate:"required"`
	Redirects  []string `json:"redirects" validate:"max=8,dive,required"`
	SEO        bool     `json:"seo"`
	Hosting    *bool    `json:"hosting,omitempty"`
	SSL        *bool    `json:"ssl,omitempty"`
	Coupon     string   `json:"coupon" validate:"max=64"`
}

// SubmitRequest is a selection plus the contact details of the prospective client.
type SubmitRequest struct {
	Request
	Name        string `json:"name" validate:"required,max=100"`
	Mobile      string `json:"mobile" validate:"required,max=32"`
	AcceptTerms bool   `json:"acceptTerms"`
}

// Quote is a priced selection. It is derived afresh for every request and never mutated.
type Quote struct {
	ID        uuid.UUID         `json:"id"`
	Breakdown pricing.Breakdown `json:"breakdown"`
	Savings   pricing.Money     `json:"savings"`
	Coupon    *coupon.Outcome   `json:"coupon,omitempty"`
	Deposit   pricing.Deposit   `json:"deposit"`
	Notices   []string          `json:"notices,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Contact identifies who asked for a quote.
type Contact struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

// Submission is a quote handed to a sink.
type Submission struct {
	Quote       Quote   `json:"quote"`
	Contact     Contact `json:"contact"`
	BillDetails string  `json:"billDetails"`
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Dispatcher Dispatcher
	Logger     zerolog.Logger
	Now        func() time.Time
}

// Service prices selections and hands accepted quotes to a dispatcher.
type Service struct {
	dispatcher Dispatcher
	logger     zerolog.Logger
	now        func() time.Time
}

// NewService constructs a Service. A nil dispatcher is not allowed.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Dispatcher == nil {
		return nil, errors.New("quote: dispatcher is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{dispatcher: cfg.Dispatcher, logger: cfg.Logger, now: now}, nil
}

// Preview resolves the coupon, prices the selection and returns the quote.
// An unknown coupon does not fail the quote; it is reported with a zero discount.
func (s *Service) Preview(ctx context.Context, req Request) (Quote, error) {
	sel, notices, err := selectionFrom(req)
	if err != nil {
		return Quote{}, err
	}

	var outcome *coupon.Outcome
	if strings.TrimSpace(req.Coupon) != "" {
		applied := coupon.Apply(req.Coupon)
		outcome = &applied
		sel = sel.WithDiscount(applied.DiscountPercent)
	}

	breakdown, err := pricing.Compute(sel)
	if err != nil {
		obs.IncCounter(obs.QuotesComputedTotal, string(sel.Currency), string(sel.Tier), "invalid")
		return Quote{}, invalidSelection(err)
	}
	obs.IncCounter(obs.QuotesComputedTotal, string(sel.Currency), string(sel.Tier), "ok")

	q := Quote{
		ID:        uuid.New(),
		Breakdown: breakdown,
		Savings:   breakdown.Savings(),
		Coupon:    outcome,
		Deposit:   pricing.SecurityDeposit(sel.Currency),
		Notices:   notices,
		CreatedAt: s.now().UTC(),
	}
	zerolog.Ctx(ctx).Debug().
		Str("quote_id", q.ID.String()).
		Str("currency", string(sel.Currency)).
		Str("final_total", breakdown.FinalTotal.String()).
		Msg("quote computed")
	return q, nil
}

// Submit validates the contact details, prices the selection and dispatches it to the sink.
// The quote is returned even when it was priced but could not be dispatched, together with the
// dispatch error.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (Quote, error) {
	contact, err := validateContact(req)
	if err != nil {
		return Quote{}, err
	}
	q, err := s.Preview(ctx, req.Request)
	if err != nil {
		return Quote{}, err
	}
	sub := Submission{Quote: q, Contact: contact, BillDetails: BillDetails(q)}
	if err := s.dispatcher.Dispatch(ctx, sub); err != nil {
		s.logger.Error().Err(err).Str("quote_id", q.ID.String()).Msg("quote dispatch failed")
		return q, common.NewAppError(common.CodeUnavailable, "Something went wrong. Please try again.", http.StatusServiceUnavailable, err)
	}
	return q, nil
}

func selectionFrom(req Request) (pricing.Selection, []string, error) {
	currency, err := pricing.ParseCurrency(req.Currency)
	if err != nil {
		return pricing.Selection{}, nil, invalidSelection(err)
	}
	tier, err := pricing.ParseTier(req.Tier)
	if err != nil {
		return pricing.Selection{}, nil, invalidSelection(err)
	}
	main, err := pricing.ParseDomain(req.MainDomain)
	if err != nil {
		return pricing.Selection{}, nil, invalidSelection(err)
	}
	redirects := make([]pricing.Domain, 0, len(req.Redirects))
	for _, raw := range req.Redirects {
		d, err := pricing.ParseDomain(raw)
		if err != nil {
			return pricing.Selection{}, nil, invalidSelection(err)
		}
		redirects = append(redirects, d)
	}

	sel := pricing.Selection{Tier: tier, Currency: currency, MainDomain: main, Redirects: redirects}
	var notices []string
	toggles := []struct {
		addOn pricing.AddOn
		value *bool
	}{
		{pricing.AddOnSEO, &req.SEO},
		{pricing.AddOnHosting, req.Hosting},
		{pricing.AddOnSSL, req.SSL},
	}
	for _, t := range toggles {
		if t.value == nil {
			continue
		}
		next, err := sel.WithAddOn(t.addOn, *t.value)
		if errors.Is(err, pricing.ErrRequiredAddOn) {
			notices = append(notices, RequiredAddOnNotice)
			continue
		}
		if err != nil {
			return pricing.Selection{}, nil, invalidSelection(err)
		}
		sel = next
	}
	return sel, dedupe(notices), nil
}

// RequiredAddOnNotice is returned when a client tries to remove hosting or SSL.
const RequiredAddOnNotice = "Hosting and SSL certificate are included in all plans for your security and convenience."

func validateContact(req SubmitRequest) (Contact, error) {
	if !req.AcceptTerms {
		return Contact{}, common.BadRequest("TERMS_NOT_ACCEPTED",
			"Please accept the terms and conditions before submitting your plan.", ErrTermsNotAccepted)
	}
	name := strings.TrimSpace(req.Name)
	mobile := strings.TrimSpace(req.Mobile)
	details := map[string]string{}
	switch {
	case name == "":
		details["name"] = "Name is required"
	case !namePattern.MatchString(name):
		details["name"] = "Name can only contain letters and spaces"
	}
	switch {
	case mobile == "":
		details["mobile"] = "Mobile number is required"
	case !mobilePattern.MatchString(mobile):
		details["mobile"] = "Invalid mobile number format"
	}
	if len(details) > 0 {
		return Contact{}, common.BadRequest(common.CodeValidation,
			"Please correct the errors in the form before submitting.", ErrInvalidContact).WithDetails(details)
	}
	return Contact{Name: name, Mobile: mobile}, nil
}

func invalidSelection(err error) error {
	if common.IsAppError(err) {
		return err
	}
	return common.BadRequest(common.CodeInvalidSelection, fmt.Sprint(err), err)
}

func dedupe(in []string) []string {
	if len(in) < 2 {
		return in
	}
	out := in[:1]
	for _, v := range in[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
