package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cardosoccc/bud/internal/core"
)

const forecastColumns = `id, budget_id, description, value, min_value, max_value,
	tags, category_id, is_recurrent, recurrent_start, recurrent_end, created_at`

func scanForecast(row rowScanner) (core.Forecast, error) {
	var (
		f          core.Forecast
		minV, maxV sql.NullInt64
		tags       string
		category   sql.NullString
		recStart   sql.NullString
		recEnd     sql.NullString
		createdAt  string
	)
	err := row.Scan(&f.ID, &f.BudgetID, &f.Description, &f.Value, &minV, &maxV,
		&tags, &category, &f.IsRecurrent, &recStart, &recEnd, &createdAt)
	if err != nil {
		return core.Forecast{}, err
	}
	f.MinValue = moneyFromNull(minV)
	f.MaxValue = moneyFromNull(maxV)
	if f.Tags, err = decodeTags(tags); err != nil {
		return core.Forecast{}, err
	}
	f.CategoryID = category.String
	if f.RecurrentStart, err = monthFromNull(recStart); err != nil {
		return core.Forecast{}, err
	}
	if f.RecurrentEnd, err = monthFromNull(recEnd); err != nil {
		return core.Forecast{}, err
	}
	return f, nil
}

func (q *Queries) InsertForecast(ctx context.Context, f core.Forecast) error {
	tags, err := encodeTags(f.Tags)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx,
		`INSERT INTO forecasts
		 (id, budget_id, description, value, min_value, max_value,
		  tags, category_id, is_recurrent, recurrent_start, recurrent_end)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.BudgetID, f.Description, f.Value, nullMoney(f.MinValue), nullMoney(f.MaxValue),
		tags, nullStr(f.CategoryID), f.IsRecurrent, nullMonth(f.RecurrentStart), nullMonth(f.RecurrentEnd))
	if err != nil {
		return fmt.Errorf("insert forecast: %w", err)
	}
	return nil
}

func (q *Queries) GetForecast(ctx context.Context, id string) (*core.Forecast, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+forecastColumns+" FROM forecasts WHERE id = ?", id)
	f, err := scanForecast(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get forecast: %w", err)
	}
	return &f, nil
}

func (q *Queries) ListForecastsByBudget(ctx context.Context, budgetID string) ([]core.Forecast, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+forecastColumns+" FROM forecasts WHERE budget_id = ? ORDER BY created_at",
		budgetID)
	if err != nil {
		return nil, fmt.Errorf("list forecasts: %w", err)
	}
	defer rows.Close()

	var forecasts []core.Forecast
	for rows.Next() {
		f, err := scanForecast(rows)
		if err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		forecasts = append(forecasts, f)
	}
	return forecasts, rows.Err()
}

// OwnedForecast is a forecast together with the month of its owning budget,
// which anchors implicit recurrence windows.
type OwnedForecast struct {
	Forecast    core.Forecast
	OwningMonth core.Month
}

// ListProjectForecasts returns every forecast of a project with the owning
// budget's month, for recurrence-aware applicability checks.
func (q *Queries) ListProjectForecasts(ctx context.Context, projectID string) ([]OwnedForecast, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT f.id, f.budget_id, f.description, f.value, f.min_value, f.max_value,
		        f.tags, f.category_id, f.is_recurrent, f.recurrent_start, f.recurrent_end,
		        f.created_at, b.name
		 FROM forecasts f
		 JOIN budgets b ON b.id = f.budget_id
		 WHERE b.project_id = ?
		 ORDER BY b.name, f.created_at`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("list project forecasts: %w", err)
	}
	defer rows.Close()

	var out []OwnedForecast
	for rows.Next() {
		var (
			f          core.Forecast
			minV, maxV sql.NullInt64
			tags       string
			category   sql.NullString
			recStart   sql.NullString
			recEnd     sql.NullString
			createdAt  string
			budgetName string
		)
		err := rows.Scan(&f.ID, &f.BudgetID, &f.Description, &f.Value, &minV, &maxV,
			&tags, &category, &f.IsRecurrent, &recStart, &recEnd, &createdAt, &budgetName)
		if err != nil {
			return nil, fmt.Errorf("scan project forecast: %w", err)
		}
		f.MinValue = moneyFromNull(minV)
		f.MaxValue = moneyFromNull(maxV)
		if f.Tags, err = decodeTags(tags); err != nil {
			return nil, err
		}
		f.CategoryID = category.String
		if f.RecurrentStart, err = monthFromNull(recStart); err != nil {
			return nil, err
		}
		if f.RecurrentEnd, err = monthFromNull(recEnd); err != nil {
			return nil, err
		}
		owning, err := core.ParseMonth(budgetName)
		if err != nil {
			return nil, fmt.Errorf("budget %q has a malformed month name: %w", f.BudgetID, err)
		}
		out = append(out, OwnedForecast{Forecast: f, OwningMonth: owning})
	}
	return out, rows.Err()
}

func (q *Queries) UpdateForecast(ctx context.Context, f core.Forecast) error {
	tags, err := encodeTags(f.Tags)
	if err != nil {
		return err
	}
	res, err := q.db.ExecContext(ctx,
		`UPDATE forecasts
		 SET description = ?, value = ?, min_value = ?, max_value = ?, tags = ?,
		     category_id = ?, is_recurrent = ?, recurrent_start = ?, recurrent_end = ?
		 WHERE id = ?`,
		f.Description, f.Value, nullMoney(f.MinValue), nullMoney(f.MaxValue), tags,
		nullStr(f.CategoryID), f.IsRecurrent, nullMonth(f.RecurrentStart), nullMonth(f.RecurrentEnd), f.ID)
	if err != nil {
		return fmt.Errorf("update forecast: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Entity: "forecast", Ref: f.ID}
	}
	return nil
}

func (q *Queries) DeleteForecast(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM forecasts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete forecast: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Entity: "forecast", Ref: id}
	}
	return nil
}

// CountCategoryForecasts counts forecasts referencing a category.
func (q *Queries) CountCategoryForecasts(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM forecasts WHERE category_id = ?", categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count category forecasts: %w", err)
	}
	return n, nil
}
