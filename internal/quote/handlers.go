package quote

import (
	"net/http"

	"github.com/noah-isme/backend-vlyx/internal/common"
)

// Handler exposes quote endpoints.
type Handler struct {
	svc   *Service
	leads *LeadStore
	async bool
}

// NewHandler constructs a Handler. leads may be nil when submissions are not persisted.
func NewHandler(svc *Service, leads *LeadStore) *Handler {
	return &Handler{svc: svc, leads: leads, async: Async(svc.dispatcher)}
}

// Preview handles POST /api/v1/quotes/preview.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	q, err := h.svc.Preview(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, q)
}

type submitResponse struct {
	Quote       Quote  `json:"quote"`
	BillDetails string `json:"billDetails"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// Submit handles POST /api/v1/quotes. It answers 201 once the sink accepted the quote, or 202
// when delivery was queued for the worker.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	q, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	status, label := http.StatusCreated, "submitted"
	if h.async {
		status, label = http.StatusAccepted, "queued"
	}
	common.Data(w, status, submitResponse{
		Quote:       q,
		BillDetails: BillDetails(q),
		Status:      label,
		Message:     "Your plan has been submitted.",
	})
}

// ListLeads handles GET /api/v1/admin/quotes.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	if h.leads == nil {
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "lead storage is not enabled", nil)
		return
	}
	page := common.ParsePagination(r, 20, 100)
	leads, err := h.leads.List(r.Context(), page)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": leads, "pagination": page})
}
