package settlement

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitsettle/internal/group"
	"github.com/fkhayef/splitsettle/internal/ledger"
	"github.com/fkhayef/splitsettle/internal/money"
	"github.com/fkhayef/splitsettle/internal/splitbill"
	"github.com/fkhayef/splitsettle/pkg/response"
)

// Handler handles HTTP requests for settlement queries
type Handler struct {
	service *Service
	codec   money.Codec
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service, codec money.Codec) *Handler {
	return &Handler{service: service, codec: codec}
}

// GroupRoutes registers the settlement routes nested under /groups/{groupId}
func (h *Handler) GroupRoutes(r chi.Router) {
	r.Get("/settlement", h.GetGroupSettlement)
	r.Get("/balances", h.GetGroupBalances)
}

// SplitBillRoutes registers the settlement routes nested under /split-bills/{id}
func (h *Handler) SplitBillRoutes(r chi.Router) {
	r.Get("/payment-summary", h.GetPaymentSummary)
}

// GetGroupSettlement handles GET /groups/{groupId}/settlement
// @Summary      Settlement plan
// @Description  The payments that settle every balance of the group.
// @Tags         settlement
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /groups/{groupId}/settlement [get]
func (h *Handler) GetGroupSettlement(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.GetGroupSettlement(r.Context(), chi.URLParam(r, "groupId"))
	if err != nil {
		h.writeError(w, err, "Failed to compute settlement")
		return
	}

	response.Fields(w, http.StatusOK, map[string]any{
		"settlement": toTransactionResponses(plan, h.codec),
	})
}

// GetGroupBalances handles GET /groups/{groupId}/balances
// @Summary      Group balances
// @Tags         settlement
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupBalancesResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/balances [get]
func (h *Handler) GetGroupBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.service.GetGroupBalances(r.Context(), chi.URLParam(r, "groupId"))
	if err != nil {
		h.writeError(w, err, "Failed to compute balances")
		return
	}

	response.JSON(w, http.StatusOK, balances.ToResponse(h.codec))
}

// GetPaymentSummary handles GET /split-bills/{id}/payment-summary
// @Summary      Split bill payment summary
// @Tags         split-bills
// @Produce      json
// @Param        id path string true "Split bill ID"
// @Success      200 {object} response.APIResponse{data=PaymentSummaryResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /split-bills/{id}/payment-summary [get]
func (h *Handler) GetPaymentSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetPaymentSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "Failed to get payment summary")
		return
	}

	response.JSON(w, http.StatusOK, summary.ToResponse(h.codec))
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, group.ErrGroupNotFound):
		response.Error(w, http.StatusNotFound, group.CodeGroupNotFound, err.Error())
	case errors.Is(err, splitbill.ErrSplitBillNotFound):
		response.Error(w, http.StatusNotFound, splitbill.CodeSplitBillNotFound, err.Error())
	case errors.Is(err, ledger.ErrLedgerInconsistency):
		// already logged at error level by the service
		response.Error(w, http.StatusInternalServerError, response.CodeLedgerInconsistency, "Ledger is inconsistent")
	case errors.Is(err, money.ErrInvalidAmount):
		slog.Error(fallback, "error", err)
		response.InvalidAmount(w, err.Error())
	default:
		slog.Error(fallback, "error", err)
		response.InternalError(w, fallback)
	}
}
