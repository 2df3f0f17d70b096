package services

import (
	"context"
	"time"

	"github.com/cardosoccc/bud/internal/core"
	"github.com/cardosoccc/bud/internal/storage"
)

// Period is an inclusive date interval.
type Period struct {
	Start time.Time
	End   time.Time
}

// Balances derives account and project balances from the stored ledger rows.
// Because counterparts encode the inverse flow, an account's balance is the
// sum of signed values over the rows whose destination it is.
type Balances struct {
	repo *storage.Repository
}

func NewBalances(repo *storage.Repository) *Balances {
	return &Balances{repo: repo}
}

// AccountBalance returns the account's net flow within the period, or, when
// period is nil, its initial balance plus all-time net flow.
func (b *Balances) AccountBalance(ctx context.Context, accountID string, period *Period) (core.Money, error) {
	q := b.repo.Queries()

	acct, err := q.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	if acct == nil {
		return 0, &core.NotFoundError{Entity: "account", Ref: accountID}
	}

	if period == nil {
		flow, err := q.SumIntoAccount(ctx, accountID)
		if err != nil {
			return 0, err
		}
		return acct.InitialBalance + flow, nil
	}

	return q.SumIntoAccountInPeriod(ctx, accountID, period.Start, period.End)
}

// TotalEarnings sums flows arriving from the outside world in the period.
func (b *Balances) TotalEarnings(ctx context.Context, projectID string, period Period) (core.Money, error) {
	return b.repo.Queries().SumEarnings(ctx, projectID, period.Start, period.End)
}

// TotalExpenses sums flows leaving to the outside world, as a magnitude.
func (b *Balances) TotalExpenses(ctx context.Context, projectID string, period Period) (core.Money, error) {
	return b.repo.Queries().SumExpenses(ctx, projectID, period.Start, period.End)
}

// NetBalance is earnings minus expenses for the period.
func (b *Balances) NetBalance(ctx context.Context, projectID string, period Period) (core.Money, error) {
	earnings, err := b.TotalEarnings(ctx, projectID, period)
	if err != nil {
		return 0, err
	}
	expenses, err := b.TotalExpenses(ctx, projectID, period)
	if err != nil {
		return 0, err
	}
	return earnings - expenses, nil
}
