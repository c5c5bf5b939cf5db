package user

// GroupPosition is the caller's net balance in one group
type GroupPosition struct {
	GroupID   string
	GroupName string
	Balance   int64
}

// Overview is the caller's position across every group they belong to.
// Owed sums the positive balances, Owes the negative ones as a positive
// amount.
type Overview struct {
	UserID string
	Owed   int64
	Owes   int64
	Net    int64
	Groups []GroupPosition
}
