package quote

import (
	"fmt"
	"strings"

	"github.com/noah-isme/backend-vlyx/internal/pricing"
)

// TaxNote is appended to INR bills.
const TaxNote = "Note: Clients are responsible for any applicable taxes based on their country."

// BillDetails renders the plain-text bill summary sent with a submission.
func BillDetails(q Quote) string {
	b := q.Breakdown
	c := b.Currency

	redirects := "None"
	if len(b.Redirects) > 0 {
		names := make([]string, len(b.Redirects))
		for i, d := range b.Redirects {
			names[i] = string(d)
		}
		redirects = strings.Join(names, ", ")
	}

	seo := "No"
	if b.AddOnCost.IsPositive() {
		seo = fmt.Sprintf("Yes (+%s)", c.Format(b.AddOnCost))
	}

	total := c.Format(b.FinalTotal)
	if b.MainDomain == pricing.DomainCustom {
		total += " + custom domain cost"
	}

	refundable := "non-refundable"
	if q.Deposit.Refundable {
		refundable = "refundable"
	}

	var sb strings.Builder
	sb.WriteString("Bill Details:\n")
	fmt.Fprintf(&sb, "- Currency: %s\n", c)
	fmt.Fprintf(&sb, "- Website Type: %s\n", b.Tier.Label())
	fmt.Fprintf(&sb, "- Main Domain: %s\n", b.MainDomain)
	fmt.Fprintf(&sb, "- Redirect Domains: %s\n", redirects)
	fmt.Fprintf(&sb, "- SEO: %s\n", seo)
	sb.WriteString("- Hosting: Included (Unlimited visitors)\n")
	sb.WriteString("- SSL Certificate: Included\n")
	if b.DiscountPercent > 0 {
		fmt.Fprintf(&sb, "- Applied Discount: %d%% (you save %s)\n", b.DiscountPercent, c.Format(q.Savings))
	}
	fmt.Fprintf(&sb, "- Total Cost: %s\n", total)
	fmt.Fprintf(&sb, "- Security Deposit: %s (%s)\n", c.Format(q.Deposit.Amount), refundable)
	if b.CustomDomainNote != "" {
		sb.WriteString("\nNote: " + b.CustomDomainNote + "\n")
	}
	if c == pricing.INR {
		sb.WriteString("\n" + TaxNote + "\n")
	}
	return sb.String()
}
