package assistant

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/noah-isme/backend-vlyx/internal/pricing"
)

// Company contact details quoted in canned replies.
const (
	ContactEmail = "vlyxcodes@gmail.com"
	ContactPhone = "+91 82710 81338"
	Instagram    = "@vlyxcodes"
	YouTube      = "@VlyxCodes"
)

var aboutPattern = regexp.MustCompile(`\b(ai|luna)\b`)

// StaticResponder picks a canned reply by keyword. Rules are checked in order.
type StaticResponder struct{}

// Respond returns the canned reply for message.
func (StaticResponder) Respond(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "price") || strings.Contains(lower, "cost"):
		return pricingReply()
	case strings.Contains(lower, "service") || strings.Contains(lower, "what do you do"):
		return servicesReply
	case strings.Contains(lower, "contact") || strings.Contains(lower, "reach"):
		return contactReply
	case aboutPattern.MatchString(lower):
		return aboutReply
	}
	return greetingReply
}

// plan is one advertised package, priced from the rate table.
type plan struct {
	name   string
	tier   pricing.Tier
	custom bool
	blurb  string
}

var plans = []plan{
	{name: "Basic", tier: pricing.TierSinglePage, blurb: "1-Page Website + Free Hosting & SSL"},
	{name: "Standard", tier: pricing.TierMultiPage, blurb: "Multi-Page Website + Advanced SEO"},
	{name: "Premium", tier: pricing.TierMultiPage, custom: true, blurb: "Custom Domain + All Features"},
}

func planPrice(c pricing.Currency, p plan) string {
	rates, err := pricing.RateTable(c, p.tier)
	if err != nil {
		return "?"
	}
	if p.custom {
		return c.Format(rates.CustomBase) + "+"
	}
	return c.Format(rates.Base)
}

func pricingReply() string {
	var sb strings.Builder
	sb.WriteString("**Vlyx Codes Pricing:**\n")
	for _, p := range plans {
		fmt.Fprintf(&sb, "\n**%s Plan: %s (%s)**\n- %s\n", p.name,
			planPrice(pricing.INR, p), planPrice(pricing.USD, p), p.blurb)
	}
	inr, usd := pricing.SecurityDeposit(pricing.INR), pricing.SecurityDeposit(pricing.USD)
	fmt.Fprintf(&sb, "\nA %s/%s security deposit is required before a project starts.\n",
		pricing.INR.Format(inr.Amount), pricing.USD.Format(usd.Amount))
	fmt.Fprintf(&sb, "\nContact: %s | %s", ContactEmail, ContactPhone)
	return sb.String()
}

const servicesReply = `**Vlyx Codes Services:**

- Custom Website Development
- AI Integration & Chatbots
- SEO & Performance Optimization
- Dashboard Development
- Innovative Hosting Solutions

Ready to build something amazing? Contact us!`

var contactReply = fmt.Sprintf(`**Contact Vlyx Codes:**

Email: %s
Phone: %s
Instagram: %s
YouTube: %s

Founders: Brajesh & Aadish`, ContactEmail, ContactPhone, Instagram, YouTube)

const aboutReply = `**About Luna AI:**

I'm Luna, the AI assistant created by Brajesh for Vlyx Codes!

**AI Services We Offer:**
- Custom AI Chatbots
- AI-powered Dashboards
- Smart website assistants

Want full AI integration? Let's talk!`

const greetingReply = `Hi! I'm Luna from Vlyx Codes!

I can help with:
- Services & Pricing
- Contact Information
- AI Integration Options
- Project Examples

What would you like to know?`
