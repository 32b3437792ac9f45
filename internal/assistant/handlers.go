package assistant

import (
	"errors"
	"net/http"

	"github.com/noah-isme/backend-vlyx/internal/common"
)

// Handler exposes the assistant endpoint.
type Handler struct {
	svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Chat handles POST /api/v1/assistant. The reply is returned unwrapped as {response, mode}.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	reply, err := h.svc.Reply(r.Context(), req)
	if errors.Is(err, ErrEmptyMessage) {
		common.WriteError(w, common.BadRequest(common.CodeValidation, "message is required", err))
		return
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, reply)
}
