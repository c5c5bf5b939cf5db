package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/splitsettle/internal/group"
	"github.com/fkhayef/splitsettle/internal/ledger"
	"github.com/fkhayef/splitsettle/internal/settlement"
)

type stubGroups []*group.Group

func (s stubGroups) ListByUserID(_ context.Context, _ string, page, perPage int) ([]*group.Group, int, error) {
	start := (page - 1) * perPage
	if start >= len(s) {
		return nil, len(s), nil
	}
	end := min(start+perPage, len(s))
	return s[start:end], len(s), nil
}

type stubBalances map[string][]ledger.Entry

func (s stubBalances) GetGroupBalances(_ context.Context, groupID string) (*settlement.GroupBalances, error) {
	entries, ok := s[groupID]
	if !ok {
		return nil, errors.New("unexpected group")
	}
	return &settlement.GroupBalances{Balances: entries}, nil
}

func TestService_Overview(t *testing.T) {
	groups := stubGroups{
		{ID: "g1", Name: "Flat"},
		{ID: "g2", Name: "Trip"},
		{ID: "g3", Name: "Office"},
	}
	balances := stubBalances{
		"g1": {{UserID: "alice", Balance: 500}, {UserID: "bob", Balance: -500}},
		"g2": {{UserID: "alice", Balance: -200}, {UserID: "carol", Balance: 200}},
		"g3": {},
	}

	overview, err := NewService(groups, balances).Overview(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(500), overview.Owed)
	assert.Equal(t, int64(200), overview.Owes)
	assert.Equal(t, int64(300), overview.Net)
	assert.Equal(t, []GroupPosition{
		{GroupID: "g1", GroupName: "Flat", Balance: 500},
		{GroupID: "g2", GroupName: "Trip", Balance: -200},
		{GroupID: "g3", GroupName: "Office", Balance: 0},
	}, overview.Groups)
}

func TestService_OverviewWithoutGroups(t *testing.T) {
	overview, err := NewService(stubGroups{}, stubBalances{}).Overview(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, overview.Groups)
	assert.Zero(t, overview.Net)
}
