// Package services implements the core operations of the ledger: the
// double-entry transaction engine, balance calculation, budget and forecast
// management, and report projection.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cardosoccc/bud/internal/core"
	"github.com/cardosoccc/bud/internal/log"
	"github.com/cardosoccc/bud/internal/storage"
)

// Ledger is the double-entry transaction engine. Every mutation keeps the
// pairing invariant: one primary row, one counterpart row with negated value
// and swapped endpoints, both sharing a pair id, written atomically.
type Ledger struct {
	repo   *storage.Repository
	logger *log.Logger
}

func NewLedger(repo *storage.Repository, logger *log.Logger) *Ledger {
	return &Ledger{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentLedger),
	}
}

// CreateTransactionParams carries the caller-resolved identifiers for a new
// transaction. At least one of SourceID and DestinationID must be set; the
// missing one defaults to the nil account.
type CreateTransactionParams struct {
	Value         core.Money
	Description   string
	Date          time.Time
	SourceID      string
	DestinationID string
	ProjectID     string
	CategoryID    string
	Tags          []string
}

// CreateTransaction inserts a primary/counterpart pair and updates the cached
// balances of the touched accounts, all in one store transaction.
func (l *Ledger) CreateTransaction(ctx context.Context, p CreateTransactionParams) (*core.Transaction, *core.Transaction, error) {
	q := l.repo.Queries()

	if p.SourceID == "" && p.DestinationID == "" {
		return nil, nil, &core.ValidationError{Field: "accounts", Reason: "at least one of source and destination is required"}
	}

	project, err := q.GetProject(ctx, p.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if project == nil {
		return nil, nil, &core.NotFoundError{Entity: "project", Ref: p.ProjectID}
	}

	// Default the missing endpoint to the sentinel account.
	if p.SourceID == "" || p.DestinationID == "" {
		nilAcct, err := q.GetNilAccount(ctx)
		if err != nil {
			return nil, nil, err
		}
		if nilAcct == nil {
			return nil, nil, &core.ConsistencyError{Entity: "account", Ref: "nil", Detail: "sentinel account missing"}
		}
		if p.SourceID == "" {
			p.SourceID = nilAcct.ID
		}
		if p.DestinationID == "" {
			p.DestinationID = nilAcct.ID
		}
	}

	for _, id := range []string{p.SourceID, p.DestinationID} {
		acct, err := q.GetAccount(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if acct == nil {
			return nil, nil, &core.ValidationError{Field: "account", Ref: id, Reason: "does not resolve to an existing account"}
		}
	}

	if p.CategoryID != "" {
		cat, err := q.GetCategory(ctx, p.CategoryID)
		if err != nil {
			return nil, nil, err
		}
		if cat == nil {
			return nil, nil, &core.NotFoundError{Entity: "category", Ref: p.CategoryID}
		}
	}

	primary := core.Transaction{
		ID:            uuid.NewString(),
		PairID:        uuid.NewString(),
		Value:         p.Value,
		Description:   p.Description,
		Date:          p.Date,
		Tags:          p.Tags,
		SourceID:      p.SourceID,
		DestinationID: p.DestinationID,
		CategoryID:    p.CategoryID,
		ProjectID:     p.ProjectID,
	}
	if err := primary.Validate(); err != nil {
		return nil, nil, err
	}

	if p.Value == 0 {
		l.logger.WarnContext(ctx, "Zero-value transaction recorded",
			log.FieldProject, p.ProjectID, "description", p.Description)
	}

	counterpart := primary.Mirror()
	counterpart.ID = uuid.NewString()

	err = l.repo.InTx(ctx, func(q *storage.Queries) error {
		if err := q.InsertTransaction(ctx, primary); err != nil {
			return err
		}
		if err := q.InsertTransaction(ctx, counterpart); err != nil {
			return err
		}
		return adjustBalances(ctx, q, primary, counterpart, +1)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create transaction: %w", err)
	}

	l.logger.InfoContext(ctx, "Transaction created",
		log.FieldTransaction, primary.ID,
		log.FieldPair, primary.PairID,
		log.FieldValueCents, int64(primary.Value),
		log.FieldProject, primary.ProjectID)

	return &primary, &counterpart, nil
}

// TransactionPatch lists the fields an edit may change. Nil fields are left
// untouched. The counterpart is always recomputed from the patched primary;
// the pair link and the counterpart flag are not editable.
type TransactionPatch struct {
	Value         *core.Money
	Description   *string
	Date          *time.Time
	SourceID      *string
	DestinationID *string
	CategoryID    *string // empty string clears the category
	Tags          *[]string
}

// EditTransaction applies a patch to a primary transaction and overwrites the
// counterpart's mirrored fields so the pair stays consistent. Editing via a
// counterpart id is refused.
func (l *Ledger) EditTransaction(ctx context.Context, id string, patch TransactionPatch) (*core.Transaction, error) {
	q := l.repo.Queries()

	primary, counterpart, err := l.loadPair(ctx, id)
	if err != nil {
		return nil, err
	}

	old := *primary
	oldCounterpart := *counterpart

	if patch.Value != nil {
		primary.Value = *patch.Value
	}
	if patch.Description != nil {
		primary.Description = *patch.Description
	}
	if patch.Date != nil {
		primary.Date = *patch.Date
	}
	if patch.SourceID != nil {
		primary.SourceID = *patch.SourceID
	}
	if patch.DestinationID != nil {
		primary.DestinationID = *patch.DestinationID
	}
	if patch.CategoryID != nil {
		primary.CategoryID = *patch.CategoryID
	}
	if patch.Tags != nil {
		primary.Tags = *patch.Tags
	}

	if err := primary.Validate(); err != nil {
		return nil, err
	}
	for _, acctID := range []string{primary.SourceID, primary.DestinationID} {
		acct, err := q.GetAccount(ctx, acctID)
		if err != nil {
			return nil, err
		}
		if acct == nil {
			return nil, &core.ValidationError{Field: "account", Ref: acctID, Reason: "does not resolve to an existing account"}
		}
	}
	if primary.CategoryID != "" && patch.CategoryID != nil {
		cat, err := q.GetCategory(ctx, primary.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, &core.NotFoundError{Entity: "category", Ref: primary.CategoryID}
		}
	}

	mirrored := primary.Mirror()
	mirrored.ID = counterpart.ID
	mirrored.PairID = counterpart.PairID

	err = l.repo.InTx(ctx, func(q *storage.Queries) error {
		if err := adjustBalances(ctx, q, old, oldCounterpart, -1); err != nil {
			return err
		}
		if err := q.UpdateTransaction(ctx, *primary); err != nil {
			return err
		}
		if err := q.UpdateTransaction(ctx, mirrored); err != nil {
			return err
		}
		return adjustBalances(ctx, q, *primary, mirrored, +1)
	})
	if err != nil {
		return nil, fmt.Errorf("edit transaction: %w", err)
	}

	l.logger.InfoContext(ctx, "Transaction edited",
		log.FieldTransaction, primary.ID, log.FieldPair, primary.PairID)

	return primary, nil
}

// DeleteTransaction removes a primary transaction and its counterpart as one
// atomic unit.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	primary, counterpart, err := l.loadPair(ctx, id)
	if err != nil {
		return err
	}

	err = l.repo.InTx(ctx, func(q *storage.Queries) error {
		n, err := q.DeletePair(ctx, primary.PairID)
		if err != nil {
			return err
		}
		if n != 2 {
			return &core.ConsistencyError{Entity: "transaction", Ref: id,
				Detail: fmt.Sprintf("pair delete removed %d rows, want 2", n)}
		}
		return adjustBalances(ctx, q, *primary, *counterpart, -1)
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	l.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldTransaction, id, log.FieldPair, primary.PairID)
	return nil
}

// GetTransaction returns one row by id, primary or counterpart.
func (l *Ledger) GetTransaction(ctx context.Context, id string) (*core.Transaction, error) {
	t, err := l.repo.Queries().GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &core.NotFoundError{Entity: "transaction", Ref: id}
	}
	return t, nil
}

// ListTransactions returns the primary rows of a project for a month, date
// ascending, keeping mirrored noise out of the user-facing view.
func (l *Ledger) ListTransactions(ctx context.Context, month core.Month, projectID string) ([]core.Transaction, error) {
	project, err := l.repo.Queries().GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, &core.NotFoundError{Entity: "project", Ref: projectID}
	}
	start, end := month.Bounds()
	return l.repo.Queries().ListPrimaryByPeriod(ctx, projectID, start, end)
}

// loadPair resolves an id that must name a primary row, and returns it with
// its counterpart. A missing or corrupted counterpart is a ConsistencyError.
func (l *Ledger) loadPair(ctx context.Context, id string) (*core.Transaction, *core.Transaction, error) {
	t, err := l.repo.Queries().GetTransaction(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if t == nil || t.IsCounterpart {
		// Counterpart rows are not addressable for mutation.
		return nil, nil, &core.NotFoundError{Entity: "transaction", Ref: id}
	}

	pair, err := l.repo.Queries().GetPair(ctx, t.PairID)
	if err != nil {
		return nil, nil, err
	}
	if len(pair) != 2 {
		return nil, nil, &core.ConsistencyError{Entity: "transaction", Ref: id,
			Detail: fmt.Sprintf("pair has %d rows, want 2", len(pair))}
	}

	var counterpart *core.Transaction
	for i := range pair {
		if pair[i].IsCounterpart {
			counterpart = &pair[i]
		}
	}
	if counterpart == nil {
		return nil, nil, &core.ConsistencyError{Entity: "transaction", Ref: id, Detail: "counterpart row missing"}
	}
	if counterpart.Value != -t.Value {
		return nil, nil, &core.ConsistencyError{Entity: "transaction", Ref: id,
			Detail: "counterpart value is not the negation of the primary"}
	}
	return t, counterpart, nil
}

// adjustBalances applies (sign=+1) or reverts (sign=-1) a pair's effect on
// the cached balances. Each row credits its destination with its signed
// value, so the pair nets to zero across the ledger.
func adjustBalances(ctx context.Context, q *storage.Queries, primary, counterpart core.Transaction, sign int64) error {
	if err := q.AdjustAccountBalance(ctx, primary.DestinationID, primary.Value*core.Money(sign)); err != nil {
		return err
	}
	return q.AdjustAccountBalance(ctx, counterpart.DestinationID, counterpart.Value*core.Money(sign))
}
