package splitbill

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitsettle/internal/group"
	"github.com/fkhayef/splitsettle/internal/money"
	"github.com/fkhayef/splitsettle/internal/splitbill/split"
	"github.com/fkhayef/splitsettle/pkg/middleware"
	"github.com/fkhayef/splitsettle/pkg/response"
)

// Error codes for split bill failures
const (
	CodeAlreadySettled      = "ALREADY_SETTLED"
	CodeRejectionOfPaidBill = "REJECTION_OF_PAID_BILL"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeSplitBillNotFound   = "SPLIT_BILL_NOT_FOUND"
	CodeParticipantNotFound = "PARTICIPANT_NOT_FOUND"
	CodeInvalidSplit        = "INVALID_SPLIT"
)

// Handler handles HTTP requests for split bill operations
type Handler struct {
	service *Service
	codec   money.Codec
}

// NewHandler creates a new split bill handler
func NewHandler(service *Service, codec money.Codec) *Handler {
	return &Handler{service: service, codec: codec}
}

// Routes returns the router for split bill endpoints. Extensions register
// additional routes under /{id}.
func (h *Handler) Routes(extensions ...func(chi.Router)) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetByID)
		r.Post("/participants/{userId}/paid", h.MarkAsPaid)
		r.Post("/reject", h.Reject)

		for _, ext := range extensions {
			ext(r)
		}
	})

	return r
}

// GroupRoutes registers the split bill routes nested under /groups/{groupId}
func (h *Handler) GroupRoutes(r chi.Router) {
	r.Get("/split-bills", h.ListByGroup)
}

// Create handles POST /split-bills
// @Summary      Create a split bill
// @Description  Divide a bill among group members. The caller paid the bill.
// @Tags         split-bills
// @Accept       json
// @Produce      json
// @Param        request body CreateSplitBillRequest true "Split bill"
// @Success      201 {object} response.APIResponse{data=SplitBillResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /split-bills [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateSplitBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	bill, err := h.service.Create(r.Context(), creatorID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to create split bill")
		return
	}

	response.JSON(w, http.StatusCreated, bill.ToResponse(h.codec))
}

// GetByID handles GET /split-bills/{id}
// @Summary      Get a split bill
// @Tags         split-bills
// @Produce      json
// @Param        id path string true "Split bill ID"
// @Success      200 {object} response.APIResponse{data=SplitBillResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /split-bills/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	bill, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "Failed to get split bill")
		return
	}

	response.JSON(w, http.StatusOK, bill.ToResponse(h.codec))
}

// ListByGroup handles GET /groups/{groupId}/split-bills
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	bills, err := h.service.ListByGroup(r.Context(), chi.URLParam(r, "groupId"))
	if err != nil {
		h.writeError(w, err, "Failed to list split bills")
		return
	}

	resp := make([]*SplitBillResponse, len(bills))
	for i, b := range bills {
		resp[i] = b.ToResponse(h.codec)
	}

	response.JSON(w, http.StatusOK, resp)
}

// MarkAsPaid handles POST /split-bills/{id}/participants/{userId}/paid
// @Summary      Mark a share as paid
// @Description  The participant, or the bill's creator confirming receipt, settles a pending share.
// @Tags         split-bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Split bill ID"
// @Param        userId path string true "Participant user ID"
// @Param        request body MarkPaidRequest false "Payment details"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /split-bills/{id}/participants/{userId}/paid [post]
func (h *Handler) MarkAsPaid(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req MarkPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body")
		return
	}

	participant, err := h.service.MarkAsPaidBy(r.Context(), actorID,
		chi.URLParam(r, "id"), chi.URLParam(r, "userId"), req.Method, req.Note)
	if err != nil {
		h.writeError(w, err, "Failed to mark share as paid")
		return
	}

	response.Fields(w, http.StatusOK, map[string]any{
		"status":      participant.Status,
		"participant": participant.ToResponse(h.codec),
	})
}

// Reject handles POST /split-bills/{id}/reject
// @Summary      Reject a share
// @Description  The caller declines their pending share of the bill.
// @Tags         split-bills
// @Produce      json
// @Param        id path string true "Split bill ID"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /split-bills/{id}/reject [post]
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	participant, err := h.service.Reject(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeError(w, err, "Failed to reject share")
		return
	}

	response.Fields(w, http.StatusOK, map[string]any{
		"status": participant.Status,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, money.ErrInvalidAmount):
		response.InvalidAmount(w, err.Error())
	case errors.Is(err, ErrAlreadySettled):
		response.Error(w, http.StatusConflict, CodeAlreadySettled, err.Error())
	case errors.Is(err, ErrRejectionOfPaidBill):
		response.Error(w, http.StatusConflict, CodeRejectionOfPaidBill, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		response.Error(w, http.StatusConflict, CodeInvalidTransition, err.Error())
	case errors.Is(err, ErrSplitBillNotFound):
		response.Error(w, http.StatusNotFound, CodeSplitBillNotFound, err.Error())
	case errors.Is(err, ErrParticipantNotFound):
		response.Error(w, http.StatusNotFound, CodeParticipantNotFound, err.Error())
	case errors.Is(err, group.ErrGroupNotFound):
		response.Error(w, http.StatusNotFound, group.CodeGroupNotFound, err.Error())
	case errors.Is(err, ErrNotAllowed), errors.Is(err, ErrNotGroupMember):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrInvalidSplitBill), isSplitError(err):
		response.Error(w, http.StatusBadRequest, CodeInvalidSplit, err.Error())
	default:
		slog.Error(fallback, "error", err)
		response.InternalError(w, fallback)
	}
}

func isSplitError(err error) bool {
	for _, target := range []error{
		split.ErrUnknownSplitType,
		split.ErrNoParticipants,
		split.ErrDuplicateParticipant,
		split.ErrUnknownHolder,
		split.ErrInvalidPercentages,
		split.ErrInvalidExactAmounts,
		split.ErrMissingPercentage,
		split.ErrMissingExactAmount,
		split.ErrPercentageOutOfRange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
