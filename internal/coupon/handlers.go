package coupon

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/noah-isme/backend-vlyx/internal/common"
	"github.com/noah-isme/backend-vlyx/internal/obs"
)

// InvalidMessage is shown for any coupon that does not resolve.
const InvalidMessage = "Invalid coupon code. Please check and try again."

// Message returns the user-facing description of a resolution.
func Message(res Result) string {
	if !res.Valid {
		return InvalidMessage
	}
	return fmt.Sprintf("%d%% discount has been applied to your order.", res.DiscountPercent)
}

// Outcome is the resolution of a submitted code as returned to clients.
type Outcome struct {
	Code string `json:"code"`
	Result
	Message string `json:"message"`
}

// Apply trims the submitted code, resolves it and records the outcome metric.
func Apply(code string) Outcome {
	trimmed := strings.TrimSpace(code)
	res := Resolve(trimmed)
	label := "invalid"
	if res.Valid {
		label = "valid"
	}
	obs.IncCounter(obs.CouponResolutionsTotal, label)
	return Outcome{Code: trimmed, Result: res, Message: Message(res)}
}

// Handler exposes the coupon resolution endpoint.
type Handler struct{}

// NewHandler constructs a Handler.
func NewHandler() *Handler {
	return &Handler{}
}

type resolveRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// Resolve handles POST /api/v1/coupons/resolve. An unknown code is a 200 with valid=false.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, Apply(req.Code))
}
