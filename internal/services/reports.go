package services

import (
	"context"
	"fmt"

	"github.com/cardosoccc/bud/internal/core"
	"github.com/cardosoccc/bud/internal/log"
	"github.com/cardosoccc/bud/internal/storage"
)

// Reports combines balances, forecasts and recurrence into a budget report.
// For months after the current one it adds a forward projection built from
// forecast values alone.
type Reports struct {
	repo     *storage.Repository
	balances *Balances
	budgets  *Budgets
	clock    Clock
	logger   *log.Logger
}

func NewReports(repo *storage.Repository, balances *Balances, budgets *Budgets, clock Clock, logger *log.Logger) *Reports {
	return &Reports{
		repo:     repo,
		balances: balances,
		budgets:  budgets,
		clock:    clock,
		logger:   logger.WithComponent(log.ComponentReport),
	}
}

// BuildReport assembles the report for one budget month: per-account period
// balances, earnings/expenses totals, forecast-vs-actual lines, and the
// projected net balance when the budget lies in the future.
func (r *Reports) BuildReport(ctx context.Context, budgetID string) (*core.Report, error) {
	q := r.repo.Queries()

	budget, err := q.GetBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, &core.NotFoundError{Entity: "budget", Ref: budgetID}
	}

	period := Period{Start: budget.StartDate, End: budget.EndDate}
	report := &core.Report{
		BudgetID:   budget.ID,
		BudgetName: budget.Name,
		StartDate:  budget.StartDate,
		EndDate:    budget.EndDate,
	}

	accounts, err := q.ListAccountsByProject(ctx, budget.ProjectID)
	if err != nil {
		return nil, err
	}
	for _, acct := range accounts {
		if acct.Type == core.AccountNil {
			continue
		}
		balance, err := r.balances.AccountBalance(ctx, acct.ID, &period)
		if err != nil {
			return nil, fmt.Errorf("balance for account %s: %w", acct.ID, err)
		}
		report.AccountBalances = append(report.AccountBalances, core.AccountBalance{
			AccountID:   acct.ID,
			AccountName: acct.Name,
			Balance:     balance,
		})
		report.TotalBalance += balance
	}

	if report.TotalEarnings, err = r.balances.TotalEarnings(ctx, budget.ProjectID, period); err != nil {
		return nil, err
	}
	if report.TotalExpenses, err = r.balances.TotalExpenses(ctx, budget.ProjectID, period); err != nil {
		return nil, err
	}
	report.NetBalance = report.TotalEarnings - report.TotalExpenses

	forecasts, err := r.budgets.ForecastsForMonth(ctx, budget.Month(), budgetID)
	if err != nil {
		return nil, err
	}
	for _, f := range forecasts {
		var actual core.Money
		if f.CategoryID != "" {
			actual, err = q.SumCategoryInPeriod(ctx, budget.ProjectID, f.CategoryID, period.Start, period.End)
			if err != nil {
				return nil, err
			}
		}
		report.Forecasts = append(report.Forecasts, core.ForecastActual{
			ForecastID:    f.ID,
			Description:   f.Description,
			CategoryID:    f.CategoryID,
			ForecastValue: f.Value,
			ActualValue:   actual,
			Difference:    actual - f.Value,
		})
	}

	current := r.clock.CurrentMonth()
	if budget.Month().After(current) {
		projected, err := r.projectNetBalance(ctx, budget.ProjectID, current, budget.Month())
		if err != nil {
			return nil, err
		}
		report.IsProjected = true
		report.ProjectedNetBalance = &projected
	}

	r.logger.InfoContext(ctx, "Report built",
		log.FieldBudget, budgetID, log.FieldMonth, budget.Name,
		"projected", report.IsProjected)

	return report, nil
}

// projectNetBalance walks every calendar month from the current month through
// the target month inclusive and accumulates the values of all forecasts
// applicable to each month. Past months are never projected; they are served
// by actual transactions.
func (r *Reports) projectNetBalance(ctx context.Context, projectID string, from, through core.Month) (core.Money, error) {
	owned, err := r.repo.Queries().ListProjectForecasts(ctx, projectID)
	if err != nil {
		return 0, err
	}

	var cumulative core.Money
	for m := from; !m.After(through); m = m.Next() {
		for _, of := range owned {
			if of.Forecast.AppliesTo(m, of.OwningMonth) {
				cumulative += of.Forecast.Value
			}
		}
	}
	return cumulative, nil
}
