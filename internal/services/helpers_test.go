package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/cardosoccc/bud/internal/core"
	"github.com/cardosoccc/bud/internal/log"
	"github.com/cardosoccc/bud/internal/storage"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError})
}

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "bud.db"), testLogger())
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

// fixture wires every service around one repository and seeds a project with
// a Bank account.
type fixture struct {
	repo       *storage.Repository
	ledger     *Ledger
	balances   *Balances
	accounts   *Accounts
	categories *Categories
	projects   *Projects
	budgets    *Budgets

	project *core.Project
	bank    *core.Account
	nilAcct *core.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newTestRepo(t)
	logger := testLogger()

	f := &fixture{
		repo:       repo,
		ledger:     NewLedger(repo, logger),
		balances:   NewBalances(repo),
		accounts:   NewAccounts(repo, logger),
		categories: NewCategories(repo, logger),
		projects:   NewProjects(repo, logger),
		budgets:    NewBudgets(repo, logger),
	}

	ctx := context.Background()
	project, err := f.projects.CreateProject(ctx, "personal", true)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	f.project = project

	bank, err := f.accounts.CreateAccount(ctx, CreateAccountParams{
		Name: "Bank", Type: core.AccountDebit, ProjectID: project.ID,
	})
	if err != nil {
		t.Fatalf("create bank account: %v", err)
	}
	f.bank = bank

	nilAcct, err := repo.Queries().GetNilAccount(ctx)
	if err != nil || nilAcct == nil {
		t.Fatalf("nil account not seeded: %v", err)
	}
	f.nilAcct = nilAcct
	if err := repo.Queries().AttachAccount(ctx, project.ID, nilAcct.ID); err != nil {
		t.Fatalf("attach nil account: %v", err)
	}

	return f
}

func (f *fixture) reports(clock Clock) *Reports {
	return NewReports(f.repo, f.balances, f.budgets, clock, testLogger())
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// earn records money arriving into account from the outside world.
func (f *fixture) earn(t *testing.T, value core.Money, desc string, day time.Time, accountID string) *core.Transaction {
	t.Helper()
	primary, _, err := f.ledger.CreateTransaction(context.Background(), CreateTransactionParams{
		Value:         value,
		Description:   desc,
		Date:          day,
		DestinationID: accountID,
		ProjectID:     f.project.ID,
	})
	if err != nil {
		t.Fatalf("create inflow: %v", err)
	}
	return primary
}

// spend records money leaving account to the outside world.
func (f *fixture) spend(t *testing.T, value core.Money, desc string, day time.Time, accountID string) *core.Transaction {
	t.Helper()
	primary, _, err := f.ledger.CreateTransaction(context.Background(), CreateTransactionParams{
		Value:       value,
		Description: desc,
		Date:        day,
		SourceID:    accountID,
		ProjectID:   f.project.ID,
	})
	if err != nil {
		t.Fatalf("create outflow: %v", err)
	}
	return primary
}
