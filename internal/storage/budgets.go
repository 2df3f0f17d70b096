package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cardosoccc/bud/internal/core"
)

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b          core.Budget
		start, end string
		createdAt  string
	)
	err := row.Scan(&b.ID, &b.Name, &start, &end, &b.ProjectID, &createdAt)
	if err != nil {
		return core.Budget{}, err
	}
	if b.StartDate, err = decodeDate(start); err != nil {
		return core.Budget{}, err
	}
	if b.EndDate, err = decodeDate(end); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

const budgetColumns = "id, name, start_date, end_date, project_id, created_at"

func (q *Queries) InsertBudget(ctx context.Context, b core.Budget) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO budgets (id, name, start_date, end_date, project_id)
		 VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Name, encodeDate(b.StartDate), encodeDate(b.EndDate), b.ProjectID)
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (q *Queries) GetBudget(ctx context.Context, id string) (*core.Budget, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE id = ?", id)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return &b, nil
}

func (q *Queries) GetBudgetByName(ctx context.Context, projectID, name string) (*core.Budget, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE project_id = ? AND name = ?",
		projectID, name)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget by name: %w", err)
	}
	return &b, nil
}

func (q *Queries) ListBudgets(ctx context.Context, projectID string) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE project_id = ? ORDER BY name",
		projectID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// ListBudgetsByProjectForDelete returns budget ids of a project, used when
// cascading a project delete.
func (q *Queries) ListBudgetIDs(ctx context.Context, projectID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id FROM budgets WHERE project_id = ?", projectID)
	if err != nil {
		return nil, fmt.Errorf("list budget ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan budget id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (q *Queries) UpdateBudget(ctx context.Context, b core.Budget) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE budgets SET name = ?, start_date = ?, end_date = ? WHERE id = ?",
		b.Name, encodeDate(b.StartDate), encodeDate(b.EndDate), b.ID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Entity: "budget", Ref: b.ID}
	}
	return nil
}

func (q *Queries) DeleteBudget(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Entity: "budget", Ref: id}
	}
	return nil
}

// DeleteBudgetForecasts cascades a budget delete to its forecasts.
func (q *Queries) DeleteBudgetForecasts(ctx context.Context, budgetID string) error {
	_, err := q.db.ExecContext(ctx,
		"DELETE FROM forecasts WHERE budget_id = ?", budgetID)
	if err != nil {
		return fmt.Errorf("delete budget forecasts: %w", err)
	}
	return nil
}
