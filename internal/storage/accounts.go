package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cardosoccc/bud/internal/core"
)

const accountColumns = "id, name, type, initial_balance, current_balance"

func scanAccount(row *sql.Row) (*core.Account, error) {
	var a core.Account
	err := row.Scan(&a.ID, &a.Name, &a.Type, &a.InitialBalance, &a.CurrentBalance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return &a, nil
}

func (q *Queries) InsertAccount(ctx context.Context, a core.Account) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, type, initial_balance, current_balance)
		 VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Type, a.InitialBalance, a.CurrentBalance,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (q *Queries) GetAccount(ctx context.Context, id string) (*core.Account, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	return scanAccount(row)
}

// GetAccountByName resolves an account by its name within a project scope.
func (q *Queries) GetAccountByName(ctx context.Context, projectID, name string) (*core.Account, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT a.id, a.name, a.type, a.initial_balance, a.current_balance
		 FROM accounts a
		 JOIN project_accounts pa ON pa.account_id = a.id
		 WHERE pa.project_id = ? AND a.name = ?`,
		projectID, name)
	return scanAccount(row)
}

// GetNilAccount returns the singleton sentinel account, or nil before seeding.
func (q *Queries) GetNilAccount(ctx context.Context) (*core.Account, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE type = ? LIMIT 1", core.AccountNil)
	return scanAccount(row)
}

func (q *Queries) ListAccountsByProject(ctx context.Context, projectID string) ([]core.Account, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT a.id, a.name, a.type, a.initial_balance, a.current_balance
		 FROM accounts a
		 JOIN project_accounts pa ON pa.account_id = a.id
		 WHERE pa.project_id = ?
		 ORDER BY a.name`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.InitialBalance, &a.CurrentBalance); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (q *Queries) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ?, initial_balance = ? WHERE id = ?`,
		a.Name, a.Type, a.InitialBalance, a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Entity: "account", Ref: a.ID}
	}
	return nil
}

// AdjustAccountBalance moves the cached current balance by delta.
func (q *Queries) AdjustAccountBalance(ctx context.Context, id string, delta core.Money) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE accounts SET current_balance = current_balance + ? WHERE id = ?", delta, id)
	if err != nil {
		return fmt.Errorf("adjust account balance: %w", err)
	}
	return nil
}

func (q *Queries) DeleteAccount(ctx context.Context, id string) error {
	if _, err := q.db.ExecContext(ctx,
		"DELETE FROM project_accounts WHERE account_id = ?", id); err != nil {
		return fmt.Errorf("detach account: %w", err)
	}
	res, err := q.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Entity: "account", Ref: id}
	}
	return nil
}

// AttachAccount links an account to a project; attaching twice is a no-op.
func (q *Queries) AttachAccount(ctx context.Context, projectID, accountID string) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO project_accounts (project_id, account_id) VALUES (?, ?)
		 ON CONFLICT (project_id, account_id) DO NOTHING`,
		projectID, accountID)
	if err != nil {
		return fmt.Errorf("attach account: %w", err)
	}
	return nil
}

// RecomputeAccountBalances rebuilds every cached balance from initial balance
// plus recorded flows. Used after bulk deletes that bypass per-row balance
// adjustments.
func (q *Queries) RecomputeAccountBalances(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET current_balance = initial_balance + COALESCE(
		   (SELECT SUM(value) FROM transactions WHERE destination_account_id = accounts.id), 0)`)
	if err != nil {
		return fmt.Errorf("recompute account balances: %w", err)
	}
	return nil
}

// CountAccountTransactions counts ledger rows touching the account on either
// endpoint, used for the restrict-on-delete rule.
func (q *Queries) CountAccountTransactions(ctx context.Context, accountID string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions
		 WHERE source_account_id = ? OR destination_account_id = ?`,
		accountID, accountID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count account transactions: %w", err)
	}
	return n, nil
}
