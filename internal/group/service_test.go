package group

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/splitsettle/internal/database"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewRepository(database.NewTestDB(t)))
}

func TestService_CreateAddsCreatorAsAdmin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	group, members, err := svc.Create(ctx, "alice", &CreateGroupRequest{
		Name:      "Goa trip",
		MemberIDs: []string{"bob", "carol", "bob", "alice"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, group.ID)
	require.Len(t, members, 3)
	assert.Equal(t, MemberRoleAdmin, members[0].Role)

	got, stored, err := svc.GetByIDWithMembers(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Goa trip", got.Name)

	ids := make([]string, len(stored))
	for i, m := range stored {
		ids[i] = m.UserID
	}
	assert.Equal(t, []string{"alice", "bob", "carol"}, ids)
}

func TestService_CreateRequiresName(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.Create(context.Background(), "alice", &CreateGroupRequest{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidGroup)
}

func TestService_GetByIDNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestService_AddMember(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	group, _, err := svc.Create(ctx, "alice", &CreateGroupRequest{Name: "Flat"})
	require.NoError(t, err)

	member, err := svc.AddMember(ctx, group.ID, &AddMemberRequest{UserID: "dave"})
	require.NoError(t, err)
	assert.Equal(t, MemberRoleMember, member.Role)

	_, err = svc.AddMember(ctx, group.ID, &AddMemberRequest{UserID: "dave"})
	assert.ErrorIs(t, err, ErrMemberAlreadyExists)

	_, err = svc.AddMember(ctx, "missing", &AddMemberRequest{UserID: "dave"})
	assert.ErrorIs(t, err, ErrGroupNotFound)

	ok, err := svc.IsMember(ctx, group.ID, "dave")
	require.NoError(t, err)
	assert.True(t, ok)

	groups, total, err := svc.ListByUserID(ctx, "dave", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, groups, 1)
	assert.Equal(t, group.ID, groups[0].ID)
}
