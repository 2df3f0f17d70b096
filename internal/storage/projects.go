package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cardosoccc/bud/internal/core"
)

func scanProject(row *sql.Row) (*core.Project, error) {
	var p core.Project
	var createdAt string
	err := row.Scan(&p.ID, &p.Name, &p.IsDefault, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return &p, nil
}

func (q *Queries) InsertProject(ctx context.Context, p core.Project) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO projects (id, name, is_default) VALUES (?, ?, ?)",
		p.ID, p.Name, p.IsDefault)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (q *Queries) GetProject(ctx context.Context, id string) (*core.Project, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT id, name, is_default, created_at FROM projects WHERE id = ?", id)
	return scanProject(row)
}

func (q *Queries) GetProjectByName(ctx context.Context, name string) (*core.Project, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT id, name, is_default, created_at FROM projects WHERE name = ?", name)
	return scanProject(row)
}

func (q *Queries) ListProjects(ctx context.Context) ([]core.Project, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, name, is_default, created_at FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []core.Project
	for rows.Next() {
		var p core.Project
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.IsDefault, &createdAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (q *Queries) UpdateProject(ctx context.Context, p core.Project) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE projects SET name = ?, is_default = ? WHERE id = ?",
		p.Name, p.IsDefault, p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Entity: "project", Ref: p.ID}
	}
	return nil
}

func (q *Queries) DeleteProject(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Entity: "project", Ref: id}
	}
	return nil
}

// DetachProjectAccounts clears the many-to-many links for a project being
// deleted. The accounts themselves survive.
func (q *Queries) DetachProjectAccounts(ctx context.Context, projectID string) error {
	_, err := q.db.ExecContext(ctx,
		"DELETE FROM project_accounts WHERE project_id = ?", projectID)
	if err != nil {
		return fmt.Errorf("detach project accounts: %w", err)
	}
	return nil
}

// DeleteProjectTransactions removes every ledger row of the project, both
// primary and counterpart, as part of the cascade.
func (q *Queries) DeleteProjectTransactions(ctx context.Context, projectID string) error {
	_, err := q.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE project_id = ?", projectID)
	if err != nil {
		return fmt.Errorf("delete project transactions: %w", err)
	}
	return nil
}
