package activity

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitsettle/internal/splitbill"
	"github.com/fkhayef/splitsettle/pkg/response"
)

// Handler handles HTTP requests for activity
type Handler struct {
	service *Service
}

// NewHandler creates a new activity handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SplitBillRoutes registers the activity routes nested under /split-bills/{id}
func (h *Handler) SplitBillRoutes(r chi.Router) {
	r.Get("/activity", h.ListBySplitBill)
}

// ListBySplitBill handles GET /split-bills/{id}/activity
// @Summary      Split bill activity
// @Description  Payments and rejections on a split bill, newest first.
// @Tags         split-bills
// @Produce      json
// @Param        id path string true "Split bill ID"
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} response.APIResponse{data=[]EventResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /split-bills/{id}/activity [get]
func (h *Handler) ListBySplitBill(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	events, total, err := h.service.ListBySplitBill(r.Context(), chi.URLParam(r, "id"), page, perPage)
	if err != nil {
		if errors.Is(err, splitbill.ErrSplitBillNotFound) {
			response.Error(w, http.StatusNotFound, splitbill.CodeSplitBillNotFound, err.Error())
			return
		}
		slog.Error("Failed to list activity", "error", err)
		response.InternalError(w, "Failed to list activity")
		return
	}

	resp := make([]*EventResponse, len(events))
	for i, e := range events {
		resp[i] = e.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, resp, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}
