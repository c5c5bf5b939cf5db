package group

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitsettle/pkg/middleware"
	"github.com/fkhayef/splitsettle/pkg/response"
)

// CodeGroupNotFound is the error code for requests naming an unknown group
const CodeGroupNotFound = "GROUP_NOT_FOUND"

// Handler handles HTTP requests for group operations
type Handler struct {
	service *Service
}

// NewHandler creates a new group handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for group endpoints. Extensions register
// additional routes under /{groupId} for other features.
func (h *Handler) Routes(extensions ...func(chi.Router)) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)

	r.Route("/{groupId}", func(r chi.Router) {
		r.Get("/", h.GetByID)
		r.Post("/members", h.AddMember)
		r.Get("/members", h.GetMembers)

		for _, ext := range extensions {
			ext(r)
		}
	})

	return r
}

// Create handles POST /groups
// @Summary      Create a new group
// @Description  Create a new group and add creator as admin
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	group, members, err := h.service.Create(r.Context(), creatorID, &req)
	if err != nil {
		if errors.Is(err, ErrInvalidGroup) {
			response.BadRequest(w, "Group name is required")
			return
		}
		slog.Error("Failed to create group", "error", err)
		response.InternalError(w, "Failed to create group")
		return
	}

	response.JSON(w, http.StatusCreated, withMembers(group, members))
}

// GetByID handles GET /groups/{groupId}
// @Summary      Get group by ID
// @Description  Get a group with all its members
// @Tags         groups
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	group, members, err := h.service.GetByIDWithMembers(r.Context(), chi.URLParam(r, "groupId"))
	if err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			response.Error(w, http.StatusNotFound, CodeGroupNotFound, err.Error())
			return
		}
		slog.Error("Failed to get group", "error", err)
		response.InternalError(w, "Failed to get group")
		return
	}

	response.JSON(w, http.StatusOK, withMembers(group, members))
}

// List handles GET /groups
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	groups, total, err := h.service.ListByUserID(r.Context(), userID, page, perPage)
	if err != nil {
		slog.Error("Failed to list groups", "error", err)
		response.InternalError(w, "Failed to list groups")
		return
	}

	groupResponses := make([]*GroupResponse, len(groups))
	for i, group := range groups {
		groupResponses[i] = group.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, groupResponses, meta)
}

// AddMember handles POST /groups/{groupId}/members
// @Summary      Add member to group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        request body AddMemberRequest true "Member to add"
// @Success      201 {object} response.APIResponse{data=MemberResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{groupId}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	member, err := h.service.AddMember(r.Context(), chi.URLParam(r, "groupId"), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrGroupNotFound):
			response.Error(w, http.StatusNotFound, CodeGroupNotFound, err.Error())
		case errors.Is(err, ErrMemberAlreadyExists):
			response.Conflict(w, err.Error())
		case errors.Is(err, ErrInvalidGroup):
			response.BadRequest(w, "user_id is required")
		default:
			slog.Error("Failed to add member", "error", err)
			response.InternalError(w, "Failed to add member")
		}
		return
	}

	response.JSON(w, http.StatusCreated, member.ToResponse())
}

// GetMembers handles GET /groups/{groupId}/members
func (h *Handler) GetMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.GetMembers(r.Context(), chi.URLParam(r, "groupId"))
	if err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			response.Error(w, http.StatusNotFound, CodeGroupNotFound, err.Error())
			return
		}
		slog.Error("Failed to get members", "error", err)
		response.InternalError(w, "Failed to get members")
		return
	}

	memberResponses := make([]*MemberResponse, len(members))
	for i, m := range members {
		memberResponses[i] = m.ToResponse()
	}

	response.JSON(w, http.StatusOK, memberResponses)
}

func withMembers(group *Group, members []*GroupMember) *GroupResponse {
	resp := group.ToResponse()
	resp.Members = make([]*MemberResponse, len(members))
	for i, m := range members {
		resp.Members[i] = m.ToResponse()
	}
	return resp
}
