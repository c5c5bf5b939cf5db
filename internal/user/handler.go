package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitsettle/internal/ledger"
	"github.com/fkhayef/splitsettle/internal/money"
	"github.com/fkhayef/splitsettle/pkg/middleware"
	"github.com/fkhayef/splitsettle/pkg/response"
)

// Handler handles HTTP requests about the calling user
type Handler struct {
	service *Service
	codec   money.Codec
}

// NewHandler creates a new user handler
func NewHandler(service *Service, codec money.Codec) *Handler {
	return &Handler{service: service, codec: codec}
}

// Routes returns the router for user endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/me", h.Me)

	return r
}

// PositionResponse represents the caller's balance in one group
type PositionResponse struct {
	GroupID        string `json:"group_id"`
	GroupName      string `json:"group_name"`
	Balance        int64  `json:"balance"`
	BalanceDisplay string `json:"balance_display"`
}

// OverviewResponse represents the response for GET /users/me
type OverviewResponse struct {
	UserID      string              `json:"user_id"`
	Owed        int64               `json:"owed"`
	OwedDisplay string              `json:"owed_display"`
	Owes        int64               `json:"owes"`
	OwesDisplay string              `json:"owes_display"`
	Net         int64               `json:"net"`
	NetDisplay  string              `json:"net_display"`
	Groups      []*PositionResponse `json:"groups"`
}

// Me handles GET /users/me
// @Summary      Caller overview
// @Description  The caller's net balance in each of their groups and overall.
// @Tags         users
// @Produce      json
// @Success      200 {object} response.APIResponse{data=OverviewResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	overview, err := h.service.Overview(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ledger.ErrLedgerInconsistency) {
			response.Error(w, http.StatusInternalServerError, response.CodeLedgerInconsistency, "Ledger is inconsistent")
			return
		}
		slog.Error("Failed to build user overview", "error", err)
		response.InternalError(w, "Failed to build user overview")
		return
	}

	groups := make([]*PositionResponse, len(overview.Groups))
	for i, g := range overview.Groups {
		groups[i] = &PositionResponse{
			GroupID:        g.GroupID,
			GroupName:      g.GroupName,
			Balance:        g.Balance,
			BalanceDisplay: h.codec.Format(g.Balance),
		}
	}

	response.JSON(w, http.StatusOK, &OverviewResponse{
		UserID:      overview.UserID,
		Owed:        overview.Owed,
		OwedDisplay: h.codec.Format(overview.Owed),
		Owes:        overview.Owes,
		OwesDisplay: h.codec.Format(overview.Owes),
		Net:         overview.Net,
		NetDisplay:  h.codec.Format(overview.Net),
		Groups:      groups,
	})
}
