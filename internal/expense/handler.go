package expense

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitsettle/internal/group"
	"github.com/fkhayef/splitsettle/internal/money"
	"github.com/fkhayef/splitsettle/internal/splitbill"
	"github.com/fkhayef/splitsettle/pkg/middleware"
	"github.com/fkhayef/splitsettle/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
	codec   money.Codec
}

// NewHandler creates a new expense handler
func NewHandler(service *Service, codec money.Codec) *Handler {
	return &Handler{service: service, codec: codec}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)

	return r
}

// GroupRoutes registers the expense routes nested under /groups/{groupId}
func (h *Handler) GroupRoutes(r chi.Router) {
	r.Get("/expenses", h.ListByGroup)
}

// Create handles POST /expenses
// @Summary      Record an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	expense, err := h.service.Create(r.Context(), payerID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to create expense")
		return
	}

	response.JSON(w, http.StatusCreated, expense.ToResponse(h.codec))
}

// GetByID handles GET /expenses/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	expense, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "Failed to get expense")
		return
	}

	response.JSON(w, http.StatusOK, expense.ToResponse(h.codec))
}

// ListByGroup handles GET /groups/{groupId}/expenses
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.service.ListByGroupID(r.Context(), chi.URLParam(r, "groupId"))
	if err != nil {
		h.writeError(w, err, "Failed to list expenses")
		return
	}

	resp := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = e.ToResponse(h.codec)
	}

	response.JSON(w, http.StatusOK, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, money.ErrInvalidAmount):
		response.InvalidAmount(w, err.Error())
	case errors.Is(err, ErrInvalidExpense):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotGroupMember):
		response.Forbidden(w, err.Error())
	case errors.Is(err, splitbill.ErrSplitBillNotFound):
		response.Error(w, http.StatusNotFound, splitbill.CodeSplitBillNotFound, err.Error())
	case errors.Is(err, ErrExpenseNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, group.ErrGroupNotFound):
		response.Error(w, http.StatusNotFound, group.CodeGroupNotFound, err.Error())
	default:
		slog.Error(fallback, "error", err)
		response.InternalError(w, fallback)
	}
}
