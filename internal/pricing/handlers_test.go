package pricing_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-vlyx/internal/pricing"
)

type sheetResponse struct {
	Data pricing.RateSheet `json:"data"`
}

func TestRatesHandlerUSD(t *testing.T) {
	rec := httptest.NewRecorder()
	pricing.NewHandler().Rates(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/rates?currency=usd", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp sheetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, pricing.USD, resp.Data.Currency)
	require.Len(t, resp.Data.Tiers, 2)
	require.Equal(t, "41.11", resp.Data.Tiers[0].Base.StringFixed(2))
	require.Equal(t, "7.64", resp.Data.Tiers[0].Redirect[pricing.DomainWebApp].StringFixed(2))
	require.True(t, resp.Data.Deposit.Refundable)
	require.True(t, resp.Data.Included.Hosting)
}

func TestRatesHandlerDefaultsToINR(t *testing.T) {
	rec := httptest.NewRecorder()
	pricing.NewHandler().Rates(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/rates", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp sheetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, pricing.INR, resp.Data.Currency)
	require.Equal(t, "5000", resp.Data.Tiers[1].Base.String())
	require.Equal(t, "45", resp.Data.Tiers[1].Redirect[pricing.DomainBlogspot].String())
	require.NotContains(t, resp.Data.RedirectDomains, pricing.DomainCustom)
	require.Contains(t, resp.Data.MainDomains, pricing.DomainCustom)
}

func TestRatesHandlerRejectsUnknownCurrency(t *testing.T) {
	rec := httptest.NewRecorder()
	pricing.NewHandler().Rates(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/rates?currency=EUR", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_SELECTION")
}
