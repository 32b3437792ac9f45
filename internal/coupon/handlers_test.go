package coupon_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-vlyx/internal/coupon"
)

type resolveResponse struct {
	Data coupon.Outcome `json:"data"`
}

func TestResolveHandler(t *testing.T) {
	h := coupon.NewHandler()

	cases := []struct {
		name    string
		body    string
		valid   bool
		percent int
		code    string
	}{
		{name: "named code is trimmed", body: `{"code":"  save20 "}`, valid: true, percent: 20, code: "save20"},
		{name: "cipher", body: `{"code":"vlyxBYCX"}`, valid: true, percent: 23, code: "vlyxBYCX"},
		{name: "zero discount is valid", body: `{"code":"XXXXOPOP"}`, valid: true, percent: 0, code: "XXXXOPOP"},
		{name: "unknown pairs", body: `{"code":"XXXXAAZZ"}`, valid: false, percent: 0, code: "XXXXAAZZ"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/coupons/resolve", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.Resolve(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			var resp resolveResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Equal(t, tc.valid, resp.Data.Valid)
			require.Equal(t, tc.percent, resp.Data.DiscountPercent)
			require.Equal(t, tc.code, resp.Data.Code)
			require.Equal(t, coupon.Message(resp.Data.Result), resp.Data.Message)
		})
	}
}

func TestResolveHandlerRejectsMissingCode(t *testing.T) {
	h := coupon.NewHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/coupons/resolve", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Resolve(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestMessage(t *testing.T) {
	require.Equal(t, "18% discount has been applied to your order.", coupon.Message(coupon.Resolve("AZHS")))
	require.Equal(t, coupon.InvalidMessage, coupon.Message(coupon.Resolve("AB")))
}
