package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cardosoccc/bud/internal/core"
)

func scanCategory(row *sql.Row) (*core.Category, error) {
	var c core.Category
	var createdAt string
	err := row.Scan(&c.ID, &c.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return &c, nil
}

func (q *Queries) InsertCategory(ctx context.Context, c core.Category) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO categories (id, name) VALUES (?, ?)", c.ID, c.Name)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (q *Queries) GetCategory(ctx context.Context, id string) (*core.Category, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM categories WHERE id = ?", id)
	return scanCategory(row)
}

func (q *Queries) GetCategoryByName(ctx context.Context, name string) (*core.Category, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM categories WHERE name = ?", name)
	return scanCategory(row)
}

func (q *Queries) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (q *Queries) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE categories SET name = ? WHERE id = ?", c.Name, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Entity: "category", Ref: c.ID}
	}
	return nil
}

func (q *Queries) DeleteCategory(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Entity: "category", Ref: id}
	}
	return nil
}

// NullifyCategoryRefs implements the set-null rule: referencing transactions
// and forecasts lose the category but are kept.
func (q *Queries) NullifyCategoryRefs(ctx context.Context, categoryID string) error {
	if _, err := q.db.ExecContext(ctx,
		"UPDATE transactions SET category_id = NULL WHERE category_id = ?", categoryID); err != nil {
		return fmt.Errorf("clear transaction category refs: %w", err)
	}
	if _, err := q.db.ExecContext(ctx,
		"UPDATE forecasts SET category_id = NULL WHERE category_id = ?", categoryID); err != nil {
		return fmt.Errorf("clear forecast category refs: %w", err)
	}
	return nil
}
