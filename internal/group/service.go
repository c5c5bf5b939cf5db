package group

import (
	"context"
	"errors"
	"strings"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("user is already a member of this group")
	ErrInvalidGroup        = errors.New("invalid group")
)

// Service handles group business logic
type Service struct {
	repo *Repository
}

// NewService creates a new group service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new group with the creator as admin and the listed users as members
func (s *Service) Create(ctx context.Context, creatorID string, req *CreateGroupRequest) (*Group, []*GroupMember, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, nil, ErrInvalidGroup
	}

	members := []*GroupMember{{UserID: creatorID, Role: MemberRoleAdmin}}
	seen := map[string]bool{creatorID: true}
	for _, id := range req.MemberIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, &GroupMember{UserID: id, Role: MemberRoleMember})
	}

	return s.repo.Create(ctx, req, members)
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id string) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetByIDWithMembers retrieves a group with all its members
func (s *Service) GetByIDWithMembers(ctx context.Context, id string) (*Group, []*GroupMember, error) {
	group, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.repo.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return group, members, nil
}

// ListByUserID retrieves all groups for a user
func (s *Service) ListByUserID(ctx context.Context, userID string, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByUserID(ctx, userID, perPage, offset)
}

// AddMember adds a user to a group
func (s *Service) AddMember(ctx context.Context, groupID string, req *AddMemberRequest) (*GroupMember, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	if req.UserID == "" {
		return nil, ErrInvalidGroup
	}
	if req.Role == "" {
		req.Role = MemberRoleMember
	}

	existing, err := s.repo.GetMember(ctx, groupID, req.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMemberAlreadyExists
	}

	return s.repo.AddMember(ctx, groupID, req)
}

// GetMembers retrieves all members of a group
func (s *Service) GetMembers(ctx context.Context, groupID string) ([]*GroupMember, error) {
	if _, err := s.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repo.GetMembers(ctx, groupID)
}

// IsMember reports whether userID belongs to the group
func (s *Service) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}

// Exists returns ErrGroupNotFound when the group does not exist
func (s *Service) Exists(ctx context.Context, groupID string) error {
	_, err := s.GetByID(ctx, groupID)
	return err
}
