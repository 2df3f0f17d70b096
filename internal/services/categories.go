package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cardosoccc/bud/internal/core"
	"github.com/cardosoccc/bud/internal/log"
	"github.com/cardosoccc/bud/internal/storage"
)

// Categories manages the global category list. Deleting a category nulls the
// references on transactions and forecasts instead of removing them.
type Categories struct {
	repo   *storage.Repository
	logger *log.Logger
}

func NewCategories(repo *storage.Repository, logger *log.Logger) *Categories {
	return &Categories{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentLedger),
	}
}

func (c *Categories) CreateCategory(ctx context.Context, name string) (*core.Category, error) {
	q := c.repo.Queries()

	existing, err := q.GetCategoryByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &core.ValidationError{Field: "name", Ref: name, Reason: "category already exists"}
	}

	cat := core.Category{ID: uuid.NewString(), Name: name}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	if err := q.InsertCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	c.logger.InfoContext(ctx, "Category created", log.FieldCategory, cat.ID, "name", name)
	return &cat, nil
}

func (c *Categories) RenameCategory(ctx context.Context, id, name string) (*core.Category, error) {
	q := c.repo.Queries()

	cat, err := q.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, &core.NotFoundError{Entity: "category", Ref: id}
	}

	dup, err := q.GetCategoryByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if dup != nil && dup.ID != id {
		return nil, &core.ValidationError{Field: "name", Ref: name, Reason: "category already exists"}
	}

	cat.Name = name
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	if err := q.UpdateCategory(ctx, *cat); err != nil {
		return nil, fmt.Errorf("rename category: %w", err)
	}
	return cat, nil
}

// DeleteCategory removes a category and clears the references pointing at it,
// in one transaction. Referencing rows survive uncategorized.
func (c *Categories) DeleteCategory(ctx context.Context, id string) error {
	cat, err := c.repo.Queries().GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if cat == nil {
		return &core.NotFoundError{Entity: "category", Ref: id}
	}

	err = c.repo.InTx(ctx, func(q *storage.Queries) error {
		if err := q.NullifyCategoryRefs(ctx, id); err != nil {
			return err
		}
		return q.DeleteCategory(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	c.logger.InfoContext(ctx, "Category deleted", log.FieldCategory, id, "name", cat.Name)
	return nil
}

func (c *Categories) GetCategory(ctx context.Context, id string) (*core.Category, error) {
	cat, err := c.repo.Queries().GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, &core.NotFoundError{Entity: "category", Ref: id}
	}
	return cat, nil
}

func (c *Categories) ListCategories(ctx context.Context) ([]core.Category, error) {
	return c.repo.Queries().ListCategories(ctx)
}
