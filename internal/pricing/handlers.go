package pricing

import (
	"net/http"

	"github.com/noah-isme/backend-vlyx/internal/common"
)

// RateSheet is the public rate card for one currency.
type RateSheet struct {
	Currency         Currency `json:"currency"`
	Tiers            []Rates  `json:"tiers"`
	MainDomains      []Domain `json:"mainDomains"`
	RedirectDomains  []Domain `json:"redirectDomains"`
	Deposit          Deposit  `json:"deposit"`
	CustomDomainNote string   `json:"customDomainNote"`
	Included         Included `json:"included"`
}

// Sheet assembles the rate card for the currency.
func Sheet(c Currency) (RateSheet, error) {
	sheet := RateSheet{
		Currency:         c,
		Tiers:            make([]Rates, 0, len(Tiers)),
		MainDomains:      Domains,
		RedirectDomains:  RedirectDomains,
		Deposit:          SecurityDeposit(c),
		CustomDomainNote: CustomDomainNote(c),
		Included:         Selection{}.Included(),
	}
	for _, t := range Tiers {
		rates, err := RateTable(c, t)
		if err != nil {
			return RateSheet{}, err
		}
		sheet.Tiers = append(sheet.Tiers, rates)
	}
	return sheet, nil
}

// Handler exposes the rate card.
type Handler struct{}

// NewHandler constructs a Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Rates handles GET /api/v1/pricing/rates. The currency query parameter defaults to INR.
func (h *Handler) Rates(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("currency")
	c := INR
	if raw != "" {
		parsed, err := ParseCurrency(raw)
		if err != nil {
			common.WriteError(w, common.BadRequest(common.CodeInvalidSelection, "unsupported currency", err))
			return
		}
		c = parsed
	}
	sheet, err := Sheet(c)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, sheet)
}
