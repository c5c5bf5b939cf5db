package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/splitsettle/internal/database"
)

// Repository handles group data persistence
type Repository struct {
	db *database.DB
}

// NewRepository creates a new group repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a group together with its initial members in one transaction.
func (r *Repository) Create(ctx context.Context, req *CreateGroupRequest, members []*GroupMember) (*Group, []*GroupMember, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	group := &Group{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
		group.ID, group.Name, group.Description, now.UnixMilli(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create group: %w", err)
	}

	for _, m := range members {
		m.GroupID = group.ID
		m.JoinedAt = now
		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_members (group_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4)`,
			m.GroupID, m.UserID, m.Role, now.UnixMilli(),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to add member %s: %w", m.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return group, members, nil
}

// GetByID retrieves a group by its ID
func (r *Repository) GetByID(ctx context.Context, id string) (*Group, error) {
	query := `
		SELECT id, name, description, created_at
		FROM groups
		WHERE id = $1
	`

	group := &Group{}
	var createdAt int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.CreatedAt = time.UnixMilli(createdAt).UTC()

	return group, nil
}

// ListByUserID retrieves all groups for a user
func (r *Repository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*Group, int, error) {
	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM group_members
		WHERE user_id = $1
	`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	query := `
		SELECT g.id, g.name, g.description, g.created_at
		FROM groups g
		JOIN group_members gm ON g.id = gm.group_id
		WHERE gm.user_id = $1
		ORDER BY g.created_at DESC, g.id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		group := &Group{}
		var createdAt int64
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &createdAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan group: %w", err)
		}
		group.CreatedAt = time.UnixMilli(createdAt).UTC()
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, total, nil
}

// AddMember adds a user to a group
func (r *Repository) AddMember(ctx context.Context, groupID string, req *AddMemberRequest) (*GroupMember, error) {
	member := &GroupMember{
		GroupID:  groupID,
		UserID:   req.UserID,
		Role:     req.Role,
		JoinedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4)`,
		member.GroupID, member.UserID, member.Role, member.JoinedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// GetMember retrieves one membership, or nil when the user is not a member.
func (r *Repository) GetMember(ctx context.Context, groupID, userID string) (*GroupMember, error) {
	query := `
		SELECT group_id, user_id, role, joined_at
		FROM group_members
		WHERE group_id = $1 AND user_id = $2
	`

	member := &GroupMember{}
	var joinedAt int64
	err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(
		&member.GroupID,
		&member.UserID,
		&member.Role,
		&joinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	member.JoinedAt = time.UnixMilli(joinedAt).UTC()

	return member, nil
}

// GetMembers retrieves all members of a group ordered by user ID
func (r *Repository) GetMembers(ctx context.Context, groupID string) ([]*GroupMember, error) {
	query := `
		SELECT group_id, user_id, role, joined_at
		FROM group_members
		WHERE group_id = $1
		ORDER BY user_id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []*GroupMember
	for rows.Next() {
		member := &GroupMember{}
		var joinedAt int64
		if err := rows.Scan(&member.GroupID, &member.UserID, &member.Role, &joinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		member.JoinedAt = time.UnixMilli(joinedAt).UTC()
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}
