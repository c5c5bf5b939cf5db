// Package planner turns net balances into a short list of payments that
// settles them.
package planner

import (
	"container/heap"
	"errors"
	"fmt"
	"math"

	"github.com/fkhayef/splitsettle/internal/ledger"
	"github.com/fkhayef/splitsettle/internal/money"
)

// ErrInvalidTransaction is returned by Apply for a self-payment or a
// non-positive amount.
var ErrInvalidTransaction = errors.New("invalid settlement transaction")

// Transaction is a single payment from a debtor to a creditor
type Transaction struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// Plan settles balances greedily: the largest debtor pays the largest
// creditor until everyone is at zero. Ties go to the lower user ID, so the
// same balances always give the same plan. Each payment zeroes at least
// one party, so a plan for N non-zero balances has at most N-1 payments.
func Plan(balances ledger.Balances) ([]Transaction, error) {
	sum, err := ledger.Sum(balances)
	if err != nil {
		return nil, err
	}
	if sum != 0 {
		return nil, &ledger.InconsistencyError{Sum: sum}
	}

	creditors := &parties{}
	debtors := &parties{}
	for id, net := range balances {
		switch {
		case net > 0:
			*creditors = append(*creditors, party{id: id, amount: net})
		case net == math.MinInt64:
			return nil, fmt.Errorf("%w: balance of %s cannot be settled", money.ErrInvalidAmount, id)
		case net < 0:
			*debtors = append(*debtors, party{id: id, amount: -net})
		}
	}
	heap.Init(creditors)
	heap.Init(debtors)

	plan := make([]Transaction, 0, max(creditors.Len()+debtors.Len()-1, 0))
	for creditors.Len() > 0 && debtors.Len() > 0 {
		c := heap.Pop(creditors).(party)
		d := heap.Pop(debtors).(party)

		amount := min(c.amount, d.amount)
		plan = append(plan, Transaction{From: d.id, To: c.id, Amount: amount})

		if c.amount -= amount; c.amount > 0 {
			heap.Push(creditors, c)
		}
		if d.amount -= amount; d.amount > 0 {
			heap.Push(debtors, d)
		}
	}

	if creditors.Len() > 0 || debtors.Len() > 0 {
		return nil, fmt.Errorf("%w: unmatched balances remain", ledger.ErrLedgerInconsistency)
	}
	return plan, nil
}

// Apply returns a copy of balances with every transaction of plan paid
func Apply(balances ledger.Balances, plan []Transaction) (ledger.Balances, error) {
	out := make(ledger.Balances, len(balances))
	for id, v := range balances {
		out[id] = v
	}

	for _, tx := range plan {
		if tx.From == tx.To || tx.Amount <= 0 {
			return nil, fmt.Errorf("%w: %s -> %s %d", ErrInvalidTransaction, tx.From, tx.To, tx.Amount)
		}
		from, err := money.Add(out[tx.From], tx.Amount)
		if err != nil {
			return nil, err
		}
		to, err := money.Sub(out[tx.To], tx.Amount)
		if err != nil {
			return nil, err
		}
		out[tx.From] = from
		out[tx.To] = to
	}
	return out, nil
}

// Settled reports whether every balance is zero
func Settled(balances ledger.Balances) bool {
	for _, v := range balances {
		if v != 0 {
			return false
		}
	}
	return true
}

type party struct {
	id     string
	amount int64
}

// parties is a max-heap on amount, ties broken by ascending id
type parties []party

func (p parties) Len() int { return len(p) }

func (p parties) Less(i, j int) bool {
	if p[i].amount != p[j].amount {
		return p[i].amount > p[j].amount
	}
	return p[i].id < p[j].id
}

func (p parties) Swap(i, j int) { p[i], p[j] = p[j], p[i] }

func (p *parties) Push(x any) { *p = append(*p, x.(party)) }

func (p *parties) Pop() any {
	old := *p
	n := len(old)
	x := old[n-1]
	*p = old[:n-1]
	return x
}
