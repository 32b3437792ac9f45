package quote

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-vlyx/internal/pricing"
)

func priced(t *testing.T, sel pricing.Selection) Quote {
	t.Helper()
	b, err := pricing.Compute(sel)
	require.NoError(t, err)
	return Quote{Breakdown: b, Savings: b.Savings(), Deposit: pricing.SecurityDeposit(sel.Currency)}
}

func TestBillDetailsINRCustomDomain(t *testing.T) {
	q := priced(t, pricing.Selection{
		Tier:       pricing.TierSinglePage,
		Currency:   pricing.INR,
		MainDomain: pricing.DomainCustom,
		Redirects:  []pricing.Domain{pricing.DomainWebApp, pricing.DomainNetlify},
	})

	want := "Bill Details:\n" +
		"- Currency: INR\n" +
		"- Website Type: 1-Page Website\n" +
		"- Main Domain: Custom Domain\n" +
		"- Redirect Domains: .web.app, .netlify.app\n" +
		"- SEO: No\n" +
		"- Hosting: Included (Unlimited visitors)\n" +
		"- SSL Certificate: Included\n" +
		"- Total Cost: ₹3335 + custom domain cost\n" +
		"- Security Deposit: ₹1000 (non-refundable)\n" +
		"\nNote: Custom domains (e.g., .com, .in, .org, .net) cost around ₹700-₹900 annually and are paid separately to the domain registrar.\n" +
		"\n" + TaxNote + "\n"
	require.Equal(t, want, BillDetails(q))
}

func TestBillDetailsUSDWithDiscount(t *testing.T) {
	q := priced(t, pricing.Selection{
		Tier:            pricing.TierSinglePage,
		Currency:        pricing.USD,
		MainDomain:      pricing.FreeDomain,
		SEO:             true,
		DiscountPercent: 20,
	})

	bill := BillDetails(q)
	require.Contains(t, bill, "- Redirect Domains: None\n")
	require.Contains(t, bill, "- SEO: Yes (+$3.45)\n")
	require.Contains(t, bill, "- Applied Discount: 20% (you save $8.91)\n")
	require.Contains(t, bill, "- Total Cost: $35.65\n")
	require.Contains(t, bill, "- Security Deposit: $15.00 (refundable)\n")
	require.NotContains(t, bill, TaxNote)
	require.NotContains(t, bill, "custom domain cost")
}

func TestBillDetailsINRSEOLabel(t *testing.T) {
	q := priced(t, pricing.Selection{
		Tier:       pricing.TierMultiPage,
		Currency:   pricing.INR,
		MainDomain: pricing.DomainWebApp,
		SEO:        true,
	})
	bill := BillDetails(q)
	require.Contains(t, bill, "- Website Type: Multi-Page Website\n")
	require.Contains(t, bill, "- SEO: Yes (+₹200)\n")
	require.Contains(t, bill, "- Total Cost: ₹5700\n")
	require.NotContains(t, bill, "Applied Discount")
}
