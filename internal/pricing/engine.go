package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrRequiredAddOn signals an attempt to disable an add-on that every plan includes.
// It is informational: the selection is returned unchanged.
var ErrRequiredAddOn = errors.New("add-on is included in every plan and cannot be removed")

// MaxDiscountPercent is the largest discount a selection may carry.
const MaxDiscountPercent = 99

// AddOn names an optional or included plan feature.
type AddOn string

const (
	AddOnSEO     AddOn = "seo"
	AddOnHosting AddOn = "hosting"
	AddOnSSL     AddOn = "ssl"
)

// Included lists the add-ons bundled with every plan at no extra cost.
type Included struct {
	Hosting bool `json:"hosting"`
	SSL     bool `json:"ssl"`
}

// Selection is an immutable price request. Modify it through the With* helpers.
type Selection struct {
	Tier            Tier     `json:"tier"`
	Currency        Currency `json:"currency"`
	MainDomain      Domain   `json:"mainDomain"`
	Redirects       []Domain `json:"redirects,omitempty"`
	SEO             bool     `json:"seo"`
	DiscountPercent int      `json:"discountPercent"`
}

// Included reports the always-on add-ons. Hosting and SSL cannot be excluded.
func (s Selection) Included() Included {
	return Included{Hosting: true, SSL: true}
}

// WithAddOn returns a copy of the selection with the add-on toggled. Disabling hosting or SSL
// leaves the selection unchanged and returns ErrRequiredAddOn.
func (s Selection) WithAddOn(addOn AddOn, enabled bool) (Selection, error) {
	switch addOn {
	case AddOnSEO:
		s.SEO = enabled
		return s, nil
	case AddOnHosting, AddOnSSL:
		if !enabled {
			return s, fmt.Errorf("%s: %w", addOn, ErrRequiredAddOn)
		}
		return s, nil
	default:
		return s, fmt.Errorf("%w: unknown add-on %q", ErrInvalidSelection, string(addOn))
	}
}

// WithDiscount returns a copy of the selection carrying the discount percent.
func (s Selection) WithDiscount(percent int) Selection {
	s.DiscountPercent = percent
	return s
}

// Breakdown is the itemised result of Compute. It is recomputed from scratch for every selection.
type Breakdown struct {
	Currency           Currency `json:"currency"`
	Tier               Tier     `json:"tier"`
	MainDomain         Domain   `json:"mainDomain"`
	Redirects          []Domain `json:"redirects"`
	BasePrice          Money    `json:"basePrice"`
	MainDomainCost     Money    `json:"mainDomainCost"`
	RedirectDomainCost Money    `json:"redirectDomainCost"`
	AddOnCost          Money    `json:"addOnCost"`
	DiscountPercent    int      `json:"discountPercent"`
	PreDiscountTotal   Money    `json:"preDiscountTotal"`
	FinalTotal         Money    `json:"finalTotal"`
	Included           Included `json:"included"`
	CustomDomainNote   string   `json:"customDomainNote,omitempty"`
}

// Savings is the amount taken off by the discount.
func (b Breakdown) Savings() Money {
	return b.PreDiscountTotal.Sub(b.FinalTotal)
}

// Validate checks that every enumerated field of the selection is known.
func (s Selection) Validate() error {
	if !s.Currency.Valid() {
		return fmt.Errorf("%w: unknown currency %q", ErrInvalidSelection, string(s.Currency))
	}
	if !s.Tier.Valid() {
		return fmt.Errorf("%w: unknown tier %q", ErrInvalidSelection, string(s.Tier))
	}
	if !s.MainDomain.Valid() {
		return fmt.Errorf("%w: unknown main domain %q", ErrInvalidSelection, string(s.MainDomain))
	}
	for _, r := range s.Redirects {
		if !r.Redirectable() {
			return fmt.Errorf("%w: %q cannot be used as a redirect", ErrInvalidSelection, string(r))
		}
	}
	if s.DiscountPercent < 0 || s.DiscountPercent > MaxDiscountPercent {
		return fmt.Errorf("%w: discount %d outside 0-%d", ErrInvalidSelection, s.DiscountPercent, MaxDiscountPercent)
	}
	return nil
}

// Compute prices the selection. Every USD line is grossed up and rounded to cents before summation;
// INR lines are flat and only the final INR total is rounded to whole units.
func Compute(sel Selection) (Breakdown, error) {
	if err := sel.Validate(); err != nil {
		return Breakdown{}, err
	}
	rates, err := RateTable(sel.Currency, sel.Tier)
	if err != nil {
		return Breakdown{}, err
	}

	base := rates.Base
	note := ""
	if sel.MainDomain == DomainCustom {
		base = rates.CustomBase
		note = CustomDomainNote(sel.Currency)
	}
	mainDomain := rates.mainDomainCost(sel.MainDomain)

	redirects := billableRedirects(sel.MainDomain, sel.Redirects)
	redirectCost := decimal.Zero
	for _, r := range redirects {
		redirectCost = redirectCost.Add(rates.redirectCost(r, sel.SEO))
	}

	addOns := decimal.Zero
	if sel.SEO {
		addOns = rates.SEO
	}

	pre := sel.Currency.roundTotal(decimal.Sum(base, mainDomain, redirectCost, addOns))
	final := pre
	if sel.DiscountPercent > 0 {
		keep := decimal.NewFromInt(int64(100 - sel.DiscountPercent))
		final = pre.Mul(keep).Div(hundred)
	}
	final = sel.Currency.roundTotal(final)

	return Breakdown{
		Currency:           sel.Currency,
		Tier:               sel.Tier,
		MainDomain:         sel.MainDomain,
		Redirects:          redirects,
		BasePrice:          base,
		MainDomainCost:     mainDomain,
		RedirectDomainCost: redirectCost,
		AddOnCost:          addOns,
		DiscountPercent:    sel.DiscountPercent,
		PreDiscountTotal:   pre,
		FinalTotal:         final,
		Included:           sel.Included(),
		CustomDomainNote:   note,
	}, nil
}

// billableRedirects drops duplicates and any redirect equal to the main domain, keeping input order.
func billableRedirects(main Domain, redirects []Domain) []Domain {
	out := make([]Domain, 0, len(redirects))
	seen := make(map[Domain]struct{}, len(redirects))
	for _, r := range redirects {
		if r == main {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
