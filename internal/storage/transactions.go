package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cardosoccc/bud/internal/core"
)

const transactionColumns = `id, pair_id, value, description, date, tags,
	source_account_id, destination_account_id, category_id, project_id,
	is_counterpart, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t         core.Transaction
		date      string
		tags      string
		category  sql.NullString
		createdAt string
	)
	err := row.Scan(&t.ID, &t.PairID, &t.Value, &t.Description, &date, &tags,
		&t.SourceID, &t.DestinationID, &category, &t.ProjectID,
		&t.IsCounterpart, &createdAt)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.Date, err = decodeDate(date); err != nil {
		return core.Transaction{}, err
	}
	if t.Tags, err = decodeTags(tags); err != nil {
		return core.Transaction{}, err
	}
	t.CategoryID = category.String
	return t, nil
}

func (q *Queries) InsertTransaction(ctx context.Context, t core.Transaction) error {
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx,
		`INSERT INTO transactions
		 (id, pair_id, value, description, date, tags,
		  source_account_id, destination_account_id, category_id, project_id, is_counterpart)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.PairID, t.Value, t.Description, encodeDate(t.Date), tags,
		t.SourceID, t.DestinationID, nullStr(t.CategoryID), t.ProjectID, t.IsCounterpart)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (q *Queries) GetTransaction(ctx context.Context, id string) (*core.Transaction, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

// GetPair returns both rows sharing a pair id.
func (q *Queries) GetPair(ctx context.Context, pairID string) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE pair_id = ? ORDER BY is_counterpart", pairID)
	if err != nil {
		return nil, fmt.Errorf("get pair: %w", err)
	}
	defer rows.Close()

	var pair []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pair row: %w", err)
		}
		pair = append(pair, t)
	}
	return pair, rows.Err()
}

// UpdateTransaction rewrites the mutable fields of one ledger row. The pair
// link and the counterpart flag are never touched here.
func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return err
	}
	res, err := q.db.ExecContext(ctx,
		`UPDATE transactions
		 SET value = ?, description = ?, date = ?, tags = ?,
		     source_account_id = ?, destination_account_id = ?, category_id = ?
		 WHERE id = ?`,
		t.Value, t.Description, encodeDate(t.Date), tags,
		t.SourceID, t.DestinationID, nullStr(t.CategoryID), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Entity: "transaction", Ref: t.ID}
	}
	return nil
}

// DeletePair removes both rows of a pair and reports how many went.
func (q *Queries) DeletePair(ctx context.Context, pairID string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE pair_id = ?", pairID)
	if err != nil {
		return 0, fmt.Errorf("delete pair: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete pair: %w", err)
	}
	return n, nil
}

// ListPrimaryByPeriod returns the user-facing rows of a project within
// [start, end], date ascending. Counterpart rows stay hidden.
func (q *Queries) ListPrimaryByPeriod(ctx context.Context, projectID string, start, end time.Time) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE project_id = ? AND is_counterpart = 0 AND date >= ? AND date <= ?
		 ORDER BY date ASC, created_at ASC`,
		projectID, encodeDate(start), encodeDate(end))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// SumIntoAccount sums the signed values of every row whose destination is the
// account. Counterpart rows carry the outflow side, so this single sum is the
// account's net flow.
func (q *Queries) SumIntoAccount(ctx context.Context, accountID string) (core.Money, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(value), 0) FROM transactions WHERE destination_account_id = ?",
		accountID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum account flow: %w", err)
	}
	return core.Money(sum), nil
}

// SumIntoAccountInPeriod is SumIntoAccount restricted to [start, end].
func (q *Queries) SumIntoAccountInPeriod(ctx context.Context, accountID string, start, end time.Time) (core.Money, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(value), 0) FROM transactions
		 WHERE destination_account_id = ? AND date >= ? AND date <= ?`,
		accountID, encodeDate(start), encodeDate(end)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum account flow: %w", err)
	}
	return core.Money(sum), nil
}

// SumEarnings totals primary flows arriving from the outside world: source is
// a nil account, destination is not.
func (q *Queries) SumEarnings(ctx context.Context, projectID string, start, end time.Time) (core.Money, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(t.value), 0)
		 FROM transactions t
		 JOIN accounts src ON src.id = t.source_account_id
		 JOIN accounts dst ON dst.id = t.destination_account_id
		 WHERE t.project_id = ? AND t.is_counterpart = 0
		   AND src.type = 'nil' AND dst.type <> 'nil'
		   AND t.date >= ? AND t.date <= ?`,
		projectID, encodeDate(start), encodeDate(end)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum earnings: %w", err)
	}
	return core.Money(sum), nil
}

// SumExpenses totals primary flows leaving to the outside world, as a
// positive magnitude.
func (q *Queries) SumExpenses(ctx context.Context, projectID string, start, end time.Time) (core.Money, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(ABS(t.value)), 0)
		 FROM transactions t
		 JOIN accounts src ON src.id = t.source_account_id
		 JOIN accounts dst ON dst.id = t.destination_account_id
		 WHERE t.project_id = ? AND t.is_counterpart = 0
		   AND dst.type = 'nil' AND src.type <> 'nil'
		   AND t.date >= ? AND t.date <= ?`,
		projectID, encodeDate(start), encodeDate(end)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money(sum), nil
}

// SumCategoryInPeriod totals primary values of a category within the period,
// the "actual" side of a forecast comparison.
func (q *Queries) SumCategoryInPeriod(ctx context.Context, projectID, categoryID string, start, end time.Time) (core.Money, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(value), 0) FROM transactions
		 WHERE project_id = ? AND is_counterpart = 0 AND category_id = ?
		   AND date >= ? AND date <= ?`,
		projectID, categoryID, encodeDate(start), encodeDate(end)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum category: %w", err)
	}
	return core.Money(sum), nil
}

// SumAllRows totals every row in a project, primaries and counterparts both.
// A healthy ledger always sums to zero.
func (q *Queries) SumAllRows(ctx context.Context, projectID string) (core.Money, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(value), 0) FROM transactions WHERE project_id = ?",
		projectID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum ledger: %w", err)
	}
	return core.Money(sum), nil
}

// CountCategoryTransactions counts rows referencing a category.
func (q *Queries) CountCategoryTransactions(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE category_id = ?", categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count category transactions: %w", err)
	}
	return n, nil
}
