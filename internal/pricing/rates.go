package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Tier is the structural size class of the website product.
type Tier string

const (
	TierSinglePage Tier = "single-page"
	TierMultiPage  Tier = "multi-page"
)

// Tiers lists the supported tiers in display order.
var Tiers = []Tier{TierSinglePage, TierMultiPage}

// ParseTier normalises a tier value.
func ParseTier(value string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(value)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown tier %q", ErrInvalidSelection, value)
	}
	return t, nil
}

// Valid reports whether the tier is supported.
func (t Tier) Valid() bool {
	return t == TierSinglePage || t == TierMultiPage
}

// Label returns the human readable tier name.
func (t Tier) Label() string {
	if t == TierMultiPage {
		return "Multi-Page Website"
	}
	return "1-Page Website"
}

// Domain is a main or redirect domain option.
type Domain string

const (
	// DomainBlogspot is the free placeholder domain.
	DomainBlogspot Domain = ".blogspot.com"
	DomainNetlify  Domain = ".netlify.app"
	DomainWebApp   Domain = ".web.app"
	// DomainCustom is an externally purchased domain; its registrar cost is never part of the total.
	DomainCustom Domain = "Custom Domain"
)

// FreeDomain is the placeholder domain that carries no main-domain surcharge.
const FreeDomain = DomainBlogspot

// Domains lists the main domain options in display order.
var Domains = []Domain{DomainBlogspot, DomainNetlify, DomainWebApp, DomainCustom}

// RedirectDomains lists the suffixes that may be added as redirects.
var RedirectDomains = []Domain{DomainWebApp, DomainNetlify, DomainBlogspot}

// ParseDomain normalises a domain option.
func ParseDomain(value string) (Domain, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	switch trimmed {
	case "custom domain", "custom":
		return DomainCustom, nil
	case "free":
		return FreeDomain, nil
	}
	if trimmed != "" && !strings.HasPrefix(trimmed, ".") {
		trimmed = "." + trimmed
	}
	if d := Domain(trimmed); d.Redirectable() {
		return d, nil
	}
	return "", fmt.Errorf("%w: unknown domain %q", ErrInvalidSelection, value)
}

// Valid reports whether the domain is a known option.
func (d Domain) Valid() bool {
	switch d {
	case DomainBlogspot, DomainNetlify, DomainWebApp, DomainCustom:
		return true
	}
	return false
}

// Redirectable reports whether the domain may be used as a redirect.
func (d Domain) Redirectable() bool {
	return d.Valid() && d != DomainCustom
}

// Rates is the quoted rate record for one currency and tier. USD amounts are grossed up
// and rounded to cents; INR amounts are flat.
type Rates struct {
	Currency   Currency         `json:"currency"`
	Tier       Tier             `json:"tier"`
	Base       Money            `json:"base"`
	CustomBase Money            `json:"customBase"`
	MainDomain map[Domain]Money `json:"mainDomain"`
	Redirect   map[Domain]Money `json:"redirect"`
	// FreeRedirectNoSEO is charged for a placeholder-domain redirect when SEO is off.
	FreeRedirectNoSEO Money `json:"freeRedirectNoSeo"`
	SEO               Money `json:"seo"`
}

type netRates struct {
	grossUp       bool
	base          map[Tier]int64
	customBase    map[Tier]int64
	mainDomain    map[Domain]int64
	redirect      map[Domain]int64
	blogspotNoSEO int64
	seo           int64
}

var rateBook = map[Currency]netRates{
	INR: {
		base:          map[Tier]int64{TierSinglePage: 3000, TierMultiPage: 5000},
		customBase:    map[Tier]int64{TierSinglePage: 3200, TierMultiPage: 5200},
		mainDomain:    map[Domain]int64{DomainNetlify: 200, DomainWebApp: 500},
		redirect:      map[Domain]int64{DomainWebApp: 75, DomainNetlify: 60},
		blogspotNoSEO: 45,
		seo:           200,
	},
	USD: {
		grossUp:       true,
		base:          map[Tier]int64{TierSinglePage: 39, TierMultiPage: 69},
		customBase:    map[Tier]int64{TierSinglePage: 39 + 3, TierMultiPage: 69 + 3},
		mainDomain:    map[Domain]int64{DomainNetlify: 3, DomainWebApp: 7},
		redirect:      map[Domain]int64{DomainWebApp: 7, DomainNetlify: 3},
		blogspotNoSEO: 0,
		seo:           3,
	},
}

// RateTable returns the quoted rates for the currency and tier.
func RateTable(c Currency, t Tier) (Rates, error) {
	book, ok := rateBook[c]
	if !ok {
		return Rates{}, fmt.Errorf("%w: unknown currency %q", ErrInvalidSelection, string(c))
	}
	if !t.Valid() {
		return Rates{}, fmt.Errorf("%w: unknown tier %q", ErrInvalidSelection, string(t))
	}
	quote := func(net int64) Money {
		m := decimal.NewFromInt(net)
		if book.grossUp {
			m = GrossUp(m)
		}
		return c.roundLine(m)
	}
	r := Rates{
		Currency:          c,
		Tier:              t,
		Base:              quote(book.base[t]),
		CustomBase:        quote(book.customBase[t]),
		MainDomain:        make(map[Domain]Money, len(book.mainDomain)),
		Redirect:          make(map[Domain]Money, len(book.redirect)+1),
		FreeRedirectNoSEO: quote(book.blogspotNoSEO),
		SEO:               quote(book.seo),
	}
	for d, net := range book.mainDomain {
		r.MainDomain[d] = quote(net)
	}
	for d, net := range book.redirect {
		r.Redirect[d] = quote(net)
	}
	r.Redirect[FreeDomain] = r.FreeRedirectNoSEO
	return r, nil
}

// mainDomainCost returns the surcharge for the chosen main domain.
func (r Rates) mainDomainCost(d Domain) Money {
	if cost, ok := r.MainDomain[d]; ok {
		return cost
	}
	return decimal.Zero
}

// redirectCost returns the cost of one redirect that differs from the main domain.
func (r Rates) redirectCost(d Domain, seo bool) Money {
	if d == FreeDomain {
		if seo {
			return decimal.Zero
		}
		return r.FreeRedirectNoSEO
	}
	if cost, ok := r.Redirect[d]; ok {
		return cost
	}
	return decimal.Zero
}

// Deposit is the security deposit collected before a project starts.
type Deposit struct {
	Amount     Money `json:"amount"`
	Refundable bool  `json:"refundable"`
}

// SecurityDeposit returns the deposit terms for the currency.
func SecurityDeposit(c Currency) Deposit {
	if c == USD {
		return Deposit{Amount: decimal.NewFromInt(15), Refundable: true}
	}
	return Deposit{Amount: decimal.NewFromInt(1000), Refundable: false}
}

// CustomDomainNote describes the out-of-band registrar cost of a custom domain.
func CustomDomainNote(c Currency) string {
	span := "₹700-₹900"
	if c == USD {
		span = "$8-$10"
	}
	return "Custom domains (e.g., .com, .in, .org, .net) cost around " + span +
		" annually and are paid separately to the domain registrar."
}
