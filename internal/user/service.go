package user

import (
	"context"

	"github.com/fkhayef/splitsettle/internal/group"
	"github.com/fkhayef/splitsettle/internal/money"
	"github.com/fkhayef/splitsettle/internal/settlement"
)

const pageSize = 100

// GroupLister lists the groups a user belongs to
type GroupLister interface {
	ListByUserID(ctx context.Context, userID string, page, perPage int) ([]*group.Group, int, error)
}

// BalanceReader computes a group's balances
type BalanceReader interface {
	GetGroupBalances(ctx context.Context, groupID string) (*settlement.GroupBalances, error)
}

// Service answers questions about the calling user
type Service struct {
	groups   GroupLister
	balances BalanceReader
}

// NewService creates a new user service
func NewService(groups GroupLister, balances BalanceReader) *Service {
	return &Service{groups: groups, balances: balances}
}

// Overview sums the user's balances across all of their groups
func (s *Service) Overview(ctx context.Context, userID string) (*Overview, error) {
	overview := &Overview{UserID: userID, Groups: []GroupPosition{}}

	for page := 1; ; page++ {
		groups, total, err := s.groups.ListByUserID(ctx, userID, page, pageSize)
		if err != nil {
			return nil, err
		}

		for _, g := range groups {
			balances, err := s.balances.GetGroupBalances(ctx, g.ID)
			if err != nil {
				return nil, err
			}

			position := GroupPosition{GroupID: g.ID, GroupName: g.Name}
			for _, e := range balances.Balances {
				if e.UserID == userID {
					position.Balance = e.Balance
					break
				}
			}
			overview.Groups = append(overview.Groups, position)

			switch {
			case position.Balance > 0:
				overview.Owed, err = money.Add(overview.Owed, position.Balance)
			case position.Balance < 0:
				overview.Owes, err = money.Sub(overview.Owes, position.Balance)
			}
			if err != nil {
				return nil, err
			}
		}

		if len(groups) == 0 || page*pageSize >= total {
			break
		}
	}

	net, err := money.Sub(overview.Owed, overview.Owes)
	if err != nil {
		return nil, err
	}
	overview.Net = net
	return overview, nil
}
