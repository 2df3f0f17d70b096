package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cardosoccc/bud/internal/core"
	"github.com/cardosoccc/bud/internal/log"
	"github.com/cardosoccc/bud/internal/storage"
)

// Budgets owns budget period computation and forecast recurrence rules.
type Budgets struct {
	repo   *storage.Repository
	logger *log.Logger
}

func NewBudgets(repo *storage.Repository, logger *log.Logger) *Budgets {
	return &Budgets{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentBudget),
	}
}

// CreateBudget creates the budget for a YYYY-MM month inside a project. The
// period boundaries are the first and last calendar day of that month.
func (b *Budgets) CreateBudget(ctx context.Context, month, projectID string) (*core.Budget, error) {
	q := b.repo.Queries()

	m, err := core.ParseMonth(month)
	if err != nil {
		return nil, err
	}

	project, err := q.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, &core.NotFoundError{Entity: "project", Ref: projectID}
	}

	existing, err := q.GetBudgetByName(ctx, projectID, m.String())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &core.ValidationError{Field: "month", Ref: m.String(), Reason: "budget already exists for this month"}
	}

	start, end := m.Bounds()
	budget := core.Budget{
		ID:        uuid.NewString(),
		Name:      m.String(),
		StartDate: start,
		EndDate:   end,
		ProjectID: projectID,
	}
	if err := q.InsertBudget(ctx, budget); err != nil {
		return nil, fmt.Errorf("create budget: %w", err)
	}

	b.logger.InfoContext(ctx, "Budget created",
		log.FieldBudget, budget.ID, log.FieldMonth, budget.Name, log.FieldProject, projectID)
	return &budget, nil
}

// EditBudget moves a budget to a different month, recomputing its period
// boundaries. Owned forecasts keep their own recurrence semantics.
func (b *Budgets) EditBudget(ctx context.Context, id, newMonth string) (*core.Budget, error) {
	q := b.repo.Queries()

	budget, err := q.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, &core.NotFoundError{Entity: "budget", Ref: id}
	}
	if newMonth == "" {
		return budget, nil
	}

	m, err := core.ParseMonth(newMonth)
	if err != nil {
		return nil, err
	}
	if m.String() != budget.Name {
		dup, err := q.GetBudgetByName(ctx, budget.ProjectID, m.String())
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, &core.ValidationError{Field: "month", Ref: m.String(), Reason: "budget already exists for this month"}
		}
	}

	budget.Name = m.String()
	budget.StartDate, budget.EndDate = m.Bounds()
	if err := q.UpdateBudget(ctx, *budget); err != nil {
		return nil, fmt.Errorf("edit budget: %w", err)
	}
	return budget, nil
}

// DeleteBudget removes a budget and cascades to its forecasts atomically.
func (b *Budgets) DeleteBudget(ctx context.Context, id string) error {
	budget, err := b.repo.Queries().GetBudget(ctx, id)
	if err != nil {
		return err
	}
	if budget == nil {
		return &core.NotFoundError{Entity: "budget", Ref: id}
	}

	err = b.repo.InTx(ctx, func(q *storage.Queries) error {
		if err := q.DeleteBudgetForecasts(ctx, id); err != nil {
			return err
		}
		return q.DeleteBudget(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}

	b.logger.InfoContext(ctx, "Budget deleted", log.FieldBudget, id, log.FieldMonth, budget.Name)
	return nil
}

func (b *Budgets) GetBudget(ctx context.Context, id string) (*core.Budget, error) {
	budget, err := b.repo.Queries().GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, &core.NotFoundError{Entity: "budget", Ref: id}
	}
	return budget, nil
}

// GetBudgetByMonth resolves a budget by its YYYY-MM name within a project.
func (b *Budgets) GetBudgetByMonth(ctx context.Context, projectID, month string) (*core.Budget, error) {
	m, err := core.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	budget, err := b.repo.Queries().GetBudgetByName(ctx, projectID, m.String())
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, &core.NotFoundError{Entity: "budget", Ref: month}
	}
	return budget, nil
}

func (b *Budgets) ListBudgets(ctx context.Context, projectID string) ([]core.Budget, error) {
	return b.repo.Queries().ListBudgets(ctx, projectID)
}

// CreateForecastParams carries a new forecast line for a budget.
type CreateForecastParams struct {
	BudgetID       string
	Description    string
	Value          core.Money
	MinValue       *core.Money
	MaxValue       *core.Money
	Tags           []string
	CategoryID     string
	IsRecurrent    bool
	RecurrentStart core.Month
	RecurrentEnd   core.Month
}

func (b *Budgets) CreateForecast(ctx context.Context, p CreateForecastParams) (*core.Forecast, error) {
	q := b.repo.Queries()

	budget, err := q.GetBudget(ctx, p.BudgetID)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, &core.NotFoundError{Entity: "budget", Ref: p.BudgetID}
	}
	if p.CategoryID != "" {
		cat, err := q.GetCategory(ctx, p.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, &core.NotFoundError{Entity: "category", Ref: p.CategoryID}
		}
	}

	forecast := core.Forecast{
		ID:             uuid.NewString(),
		BudgetID:       p.BudgetID,
		Description:    p.Description,
		Value:          p.Value,
		MinValue:       p.MinValue,
		MaxValue:       p.MaxValue,
		Tags:           p.Tags,
		CategoryID:     p.CategoryID,
		IsRecurrent:    p.IsRecurrent,
		RecurrentStart: p.RecurrentStart,
		RecurrentEnd:   p.RecurrentEnd,
	}
	if err := forecast.Validate(); err != nil {
		return nil, err
	}

	if err := q.InsertForecast(ctx, forecast); err != nil {
		return nil, fmt.Errorf("create forecast: %w", err)
	}

	b.logger.InfoContext(ctx, "Forecast created",
		log.FieldForecast, forecast.ID, log.FieldBudget, p.BudgetID,
		log.FieldValueCents, int64(forecast.Value))
	return &forecast, nil
}

// ForecastPatch lists the fields a forecast edit may change.
type ForecastPatch struct {
	Description    *string
	Value          *core.Money
	MinValue       **core.Money
	MaxValue       **core.Money
	Tags           *[]string
	CategoryID     *string
	IsRecurrent    *bool
	RecurrentStart *core.Month
	RecurrentEnd   *core.Month
}

func (b *Budgets) EditForecast(ctx context.Context, id string, patch ForecastPatch) (*core.Forecast, error) {
	q := b.repo.Queries()

	forecast, err := q.GetForecast(ctx, id)
	if err != nil {
		return nil, err
	}
	if forecast == nil {
		return nil, &core.NotFoundError{Entity: "forecast", Ref: id}
	}

	if patch.Description != nil {
		forecast.Description = *patch.Description
	}
	if patch.Value != nil {
		forecast.Value = *patch.Value
	}
	if patch.MinValue != nil {
		forecast.MinValue = *patch.MinValue
	}
	if patch.MaxValue != nil {
		forecast.MaxValue = *patch.MaxValue
	}
	if patch.Tags != nil {
		forecast.Tags = *patch.Tags
	}
	if patch.CategoryID != nil {
		forecast.CategoryID = *patch.CategoryID
	}
	if patch.IsRecurrent != nil {
		forecast.IsRecurrent = *patch.IsRecurrent
	}
	if patch.RecurrentStart != nil {
		forecast.RecurrentStart = *patch.RecurrentStart
	}
	if patch.RecurrentEnd != nil {
		forecast.RecurrentEnd = *patch.RecurrentEnd
	}

	if err := forecast.Validate(); err != nil {
		return nil, err
	}
	if forecast.CategoryID != "" && patch.CategoryID != nil {
		cat, err := q.GetCategory(ctx, forecast.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, &core.NotFoundError{Entity: "category", Ref: forecast.CategoryID}
		}
	}

	if err := q.UpdateForecast(ctx, *forecast); err != nil {
		return nil, fmt.Errorf("edit forecast: %w", err)
	}
	return forecast, nil
}

func (b *Budgets) DeleteForecast(ctx context.Context, id string) error {
	err := b.repo.Queries().DeleteForecast(ctx, id)
	if err != nil {
		return err
	}
	b.logger.InfoContext(ctx, "Forecast deleted", log.FieldForecast, id)
	return nil
}

func (b *Budgets) ListForecasts(ctx context.Context, budgetID string) ([]core.Forecast, error) {
	budget, err := b.repo.Queries().GetBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, &core.NotFoundError{Entity: "budget", Ref: budgetID}
	}
	return b.repo.Queries().ListForecastsByBudget(ctx, budgetID)
}

// ForecastsForMonth returns the forecasts that count for a month from the
// perspective of one budget: the budget's own one-time lines, plus every
// recurrent forecast in the project whose window contains the month.
func (b *Budgets) ForecastsForMonth(ctx context.Context, month core.Month, budgetID string) ([]core.Forecast, error) {
	budget, err := b.repo.Queries().GetBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, &core.NotFoundError{Entity: "budget", Ref: budgetID}
	}

	owned, err := b.repo.Queries().ListProjectForecasts(ctx, budget.ProjectID)
	if err != nil {
		return nil, err
	}

	var out []core.Forecast
	for _, of := range owned {
		f := of.Forecast
		if !f.IsRecurrent {
			if f.BudgetID == budgetID {
				out = append(out, f)
			}
			continue
		}
		if f.AppliesTo(month, of.OwningMonth) {
			out = append(out, f)
		}
	}
	return out, nil
}
