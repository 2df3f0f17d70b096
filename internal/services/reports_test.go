package services

import (
	"context"
	"testing"
	"time"

	"github.com/cardosoccc/bud/internal/core"
)

func TestBuildReport_CurrentMonth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat, err := f.categories.CreateCategory(ctx, "groceries")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	f.earn(t, 300000, "salary", date(2025, time.March, 25), f.bank.ID)
	if _, _, err := f.ledger.CreateTransaction(ctx, CreateTransactionParams{
		Value:       5000,
		Description: "weekly shop",
		Date:        date(2025, time.March, 10),
		SourceID:    f.bank.ID,
		ProjectID:   f.project.ID,
		CategoryID:  cat.ID,
	}); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	budget, err := f.budgets.CreateBudget(ctx, "2025-03", f.project.ID)
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if _, err := f.budgets.CreateForecast(ctx, CreateForecastParams{
		BudgetID: budget.ID, Description: "groceries", Value: 6000, CategoryID: cat.ID,
	}); err != nil {
		t.Fatalf("create forecast: %v", err)
	}

	reports := f.reports(FixedClock{Month: core.Month{Year: 2025, Mon: time.March}})
	report, err := reports.BuildReport(ctx, budget.ID)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}

	if report.IsProjected || report.ProjectedNetBalance != nil {
		t.Error("current-month report must not be projected")
	}
	if report.TotalEarnings != 300000 {
		t.Errorf("earnings = %d, want 300000", report.TotalEarnings)
	}
	if report.TotalExpenses != 5000 {
		t.Errorf("expenses = %d, want 5000", report.TotalExpenses)
	}
	if report.NetBalance != 295000 {
		t.Errorf("net = %d, want 295000", report.NetBalance)
	}

	// The nil account never shows up as a user account.
	for _, ab := range report.AccountBalances {
		if ab.AccountID == f.nilAcct.ID {
			t.Error("nil account leaked into the report")
		}
	}

	if len(report.Forecasts) != 1 {
		t.Fatalf("forecast lines = %d, want 1", len(report.Forecasts))
	}
	line := report.Forecasts[0]
	if line.ForecastValue != 6000 || line.ActualValue != 5000 {
		t.Errorf("forecast/actual = %d/%d, want 6000/5000", line.ForecastValue, line.ActualValue)
	}
	if line.Difference != -1000 {
		t.Errorf("difference = %d, want -1000", line.Difference)
	}
}

func TestBuildReport_FutureMonthIsProjected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	january, err := f.budgets.CreateBudget(ctx, "2025-01", f.project.ID)
	if err != nil {
		t.Fatalf("create january: %v", err)
	}
	april, err := f.budgets.CreateBudget(ctx, "2025-04", f.project.ID)
	if err != nil {
		t.Fatalf("create april: %v", err)
	}

	// 200.00 out every month, no window end.
	if _, err := f.budgets.CreateForecast(ctx, CreateForecastParams{
		BudgetID: january.ID, Description: "rent", Value: -20000, IsRecurrent: true,
	}); err != nil {
		t.Fatalf("create recurrence: %v", err)
	}

	reports := f.reports(FixedClock{Month: core.Month{Year: 2025, Mon: time.January}})
	report, err := reports.BuildReport(ctx, april.ID)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}

	if !report.IsProjected {
		t.Fatal("future-month report should be projected")
	}
	if report.ProjectedNetBalance == nil {
		t.Fatal("projected net balance missing")
	}
	// January through April inclusive: four hits of -200.00.
	if *report.ProjectedNetBalance != -80000 {
		t.Errorf("projected net = %d, want -80000", *report.ProjectedNetBalance)
	}
}

func TestBuildReport_ProjectionRespectsWindows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	january, err := f.budgets.CreateBudget(ctx, "2025-01", f.project.ID)
	if err != nil {
		t.Fatalf("create january: %v", err)
	}
	april, err := f.budgets.CreateBudget(ctx, "2025-04", f.project.ID)
	if err != nil {
		t.Fatalf("create april: %v", err)
	}

	// Recurrence closed after february: only two hits inside the walk.
	if _, err := f.budgets.CreateForecast(ctx, CreateForecastParams{
		BudgetID:     january.ID,
		Description:  "short lease",
		Value:        -10000,
		IsRecurrent:  true,
		RecurrentEnd: core.Month{Year: 2025, Mon: time.February},
	}); err != nil {
		t.Fatalf("create recurrence: %v", err)
	}
	// One-time line in april counts once, in its own month.
	if _, err := f.budgets.CreateForecast(ctx, CreateForecastParams{
		BudgetID: april.ID, Description: "car service", Value: -30000,
	}); err != nil {
		t.Fatalf("create one-time: %v", err)
	}

	reports := f.reports(FixedClock{Month: core.Month{Year: 2025, Mon: time.January}})
	report, err := reports.BuildReport(ctx, april.ID)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.ProjectedNetBalance == nil {
		t.Fatal("projected net balance missing")
	}
	if *report.ProjectedNetBalance != -50000 {
		t.Errorf("projected net = %d, want -50000", *report.ProjectedNetBalance)
	}
}

func TestBuildReport_PastMonthNotProjected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	budget, err := f.budgets.CreateBudget(ctx, "2025-01", f.project.ID)
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}

	reports := f.reports(FixedClock{Month: core.Month{Year: 2025, Mon: time.June}})
	report, err := reports.BuildReport(ctx, budget.ID)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.IsProjected || report.ProjectedNetBalance != nil {
		t.Error("past-month report must not be projected")
	}
}

func TestBuildReport_UnknownBudget(t *testing.T) {
	f := newFixture(t)

	reports := f.reports(SystemClock{})
	if _, err := reports.BuildReport(context.Background(), "no-such-budget"); !core.IsNotFound(err) {
		t.Errorf("got %v, want NotFoundError", err)
	}
}
