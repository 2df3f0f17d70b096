package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cardosoccc/bud/internal/core"
	"github.com/cardosoccc/bud/internal/log"
	"github.com/cardosoccc/bud/internal/storage"
)

// Projects manages the top of the containment tree. Deleting a project
// cascades to its budgets, forecasts and transactions; attached accounts and
// global categories survive.
type Projects struct {
	repo   *storage.Repository
	logger *log.Logger
}

func NewProjects(repo *storage.Repository, logger *log.Logger) *Projects {
	return &Projects{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentLedger),
	}
}

func (p *Projects) CreateProject(ctx context.Context, name string, isDefault bool) (*core.Project, error) {
	q := p.repo.Queries()

	existing, err := q.GetProjectByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &core.ValidationError{Field: "name", Ref: name, Reason: "project already exists"}
	}

	project := core.Project{ID: uuid.NewString(), Name: name, IsDefault: isDefault}
	if err := project.Validate(); err != nil {
		return nil, err
	}
	if err := q.InsertProject(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	p.logger.InfoContext(ctx, "Project created", log.FieldProject, project.ID, "name", name)
	return &project, nil
}

func (p *Projects) RenameProject(ctx context.Context, id, name string) (*core.Project, error) {
	q := p.repo.Queries()

	project, err := q.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, &core.NotFoundError{Entity: "project", Ref: id}
	}

	dup, err := q.GetProjectByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if dup != nil && dup.ID != id {
		return nil, &core.ValidationError{Field: "name", Ref: name, Reason: "project already exists"}
	}

	project.Name = name
	if err := project.Validate(); err != nil {
		return nil, err
	}
	if err := q.UpdateProject(ctx, *project); err != nil {
		return nil, fmt.Errorf("rename project: %w", err)
	}
	return project, nil
}

// DeleteProject cascades the whole containment tree in one transaction:
// forecasts, budgets, transactions, account links, then the project itself.
// Cached account balances are rebuilt afterwards since the bulk delete
// bypasses per-pair adjustments.
func (p *Projects) DeleteProject(ctx context.Context, id string) error {
	project, err := p.repo.Queries().GetProject(ctx, id)
	if err != nil {
		return err
	}
	if project == nil {
		return &core.NotFoundError{Entity: "project", Ref: id}
	}

	err = p.repo.InTx(ctx, func(q *storage.Queries) error {
		budgetIDs, err := q.ListBudgetIDs(ctx, id)
		if err != nil {
			return err
		}
		for _, budgetID := range budgetIDs {
			if err := q.DeleteBudgetForecasts(ctx, budgetID); err != nil {
				return err
			}
			if err := q.DeleteBudget(ctx, budgetID); err != nil {
				return err
			}
		}
		if err := q.DeleteProjectTransactions(ctx, id); err != nil {
			return err
		}
		if err := q.DetachProjectAccounts(ctx, id); err != nil {
			return err
		}
		if err := q.DeleteProject(ctx, id); err != nil {
			return err
		}
		return q.RecomputeAccountBalances(ctx)
	})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	p.logger.InfoContext(ctx, "Project deleted", log.FieldProject, id, "name", project.Name)
	return nil
}

func (p *Projects) GetProject(ctx context.Context, id string) (*core.Project, error) {
	project, err := p.repo.Queries().GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, &core.NotFoundError{Entity: "project", Ref: id}
	}
	return project, nil
}

func (p *Projects) GetProjectByName(ctx context.Context, name string) (*core.Project, error) {
	project, err := p.repo.Queries().GetProjectByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, &core.NotFoundError{Entity: "project", Ref: name}
	}
	return project, nil
}

func (p *Projects) ListProjects(ctx context.Context) ([]core.Project, error) {
	return p.repo.Queries().ListProjects(ctx)
}
