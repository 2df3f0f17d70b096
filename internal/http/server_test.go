package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/cardosoccc/bud/internal/core"
	"github.com/cardosoccc/bud/internal/log"
	"github.com/cardosoccc/bud/internal/services"
	"github.com/cardosoccc/bud/internal/storage"
)

type testServer struct {
	*Server
	project core.Project
	bank    core.Account
}

func newTestServer(t *testing.T, clock services.Clock) *testServer {
	t.Helper()
	logger := log.New(log.Config{Level: slog.LevelError})

	repo, err := storage.Open(filepath.Join(t.TempDir(), "bud.db"), logger)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	balances := services.NewBalances(repo)
	budgets := services.NewBudgets(repo, logger)
	svc := Services{
		Ledger:     services.NewLedger(repo, logger),
		Balances:   balances,
		Accounts:   services.NewAccounts(repo, logger),
		Categories: services.NewCategories(repo, logger),
		Projects:   services.NewProjects(repo, logger),
		Budgets:    budgets,
		Reports:    services.NewReports(repo, balances, budgets, clock, logger),
	}
	srv := NewServer(":0", svc, logger, 5*time.Second, 5*time.Second)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	ctx := context.Background()
	project, err := svc.Projects.CreateProject(ctx, "personal", true)
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}
	bank, err := svc.Accounts.CreateAccount(ctx, services.CreateAccountParams{
		Name: "Bank", Type: core.AccountDebit, ProjectID: project.ID,
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return &testServer{Server: srv, project: *project, bank: *bank}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, services.SystemClock{})
	rec := ts.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestTransactionEndpoints(t *testing.T) {
	ts := newTestServer(t, services.SystemClock{})

	rec := ts.do(t, http.MethodPost, "/projects/"+ts.project.ID+"/transactions", createTransactionRequest{
		Value:         300000,
		Description:   "salary",
		Date:          "2025-03-25",
		DestinationID: ts.bank.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[transactionResponse](t, rec)
	if created.IsCounterpart {
		t.Error("create returned the counterpart row")
	}
	if created.SourceID == "" {
		t.Error("missing source not defaulted to the nil account")
	}

	rec = ts.do(t, http.MethodGet, "/projects/"+ts.project.ID+"/transactions?month=2025-03", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	listed := decode[[]transactionResponse](t, rec)
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Errorf("listed %d transactions", len(listed))
	}

	rec = ts.do(t, http.MethodPut, "/transactions/"+created.ID, createTransactionRequest{
		Value:       320000,
		Description: "salary with bonus",
		Date:        "2025-03-25",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d, body %s", rec.Code, rec.Body.String())
	}
	edited := decode[transactionResponse](t, rec)
	if edited.Value != 320000 {
		t.Errorf("edited value = %d", edited.Value)
	}

	rec = ts.do(t, http.MethodDelete, "/transactions/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = ts.do(t, http.MethodGet, "/transactions/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rec.Code)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	ts := newTestServer(t, services.SystemClock{})

	// Rejected input: no endpoint at all.
	rec := ts.do(t, http.MethodPost, "/projects/"+ts.project.ID+"/transactions", createTransactionRequest{
		Value: 100, Description: "nowhere", Date: "2025-03-01",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("validation status = %d, want 422", rec.Code)
	}

	// Unresolved identifier.
	rec = ts.do(t, http.MethodGet, "/budgets/no-such-budget/report", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("not found status = %d, want 404", rec.Code)
	}

	// Blocked delete: account still referenced by the ledger.
	rec = ts.do(t, http.MethodPost, "/projects/"+ts.project.ID+"/transactions", createTransactionRequest{
		Value: 100, Description: "inflow", Date: "2025-03-01", DestinationID: ts.bank.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	rec = ts.do(t, http.MethodDelete, "/accounts/"+ts.bank.ID, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("referential status = %d, want 409", rec.Code)
	}

	// Malformed body.
	req := httptest.NewRequest(http.MethodPost, "/categories", bytes.NewBufferString("{not json"))
	rec2 := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec2.Code)
	}
}

func TestBudgetAndForecastEndpoints(t *testing.T) {
	ts := newTestServer(t, services.SystemClock{})

	rec := ts.do(t, http.MethodPost, "/projects/"+ts.project.ID+"/budgets", budgetRequest{Month: "2025-03"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget status = %d, body %s", rec.Code, rec.Body.String())
	}
	budget := decode[budgetResponse](t, rec)
	if budget.StartDate != "2025-03-01" || budget.EndDate != "2025-03-31" {
		t.Errorf("budget period = [%s, %s]", budget.StartDate, budget.EndDate)
	}

	rec = ts.do(t, http.MethodPost, "/projects/"+ts.project.ID+"/budgets", budgetRequest{Month: "2025-03"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("duplicate budget status = %d, want 422", rec.Code)
	}

	minV := int64(-90000)
	rec = ts.do(t, http.MethodPost, "/budgets/"+budget.ID+"/forecasts", forecastRequest{
		Description: "rent", Value: -80000, MinValue: &minV, IsRecurrent: true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create forecast status = %d, body %s", rec.Code, rec.Body.String())
	}
	forecast := decode[forecastResponse](t, rec)

	rec = ts.do(t, http.MethodGet, "/budgets/"+budget.ID+"/forecasts", nil)
	listed := decode[[]forecastResponse](t, rec)
	if len(listed) != 1 || listed[0].ID != forecast.ID {
		t.Errorf("listed %d forecasts", len(listed))
	}

	rec = ts.do(t, http.MethodDelete, "/budgets/"+budget.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete budget status = %d", rec.Code)
	}
	rec = ts.do(t, http.MethodGet, "/budgets/"+budget.ID+"/forecasts", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("forecasts after cascade status = %d, want 404", rec.Code)
	}
}

func TestReportEndpoint(t *testing.T) {
	clock := services.FixedClock{Month: core.Month{Year: 2025, Mon: time.January}}
	ts := newTestServer(t, clock)

	for _, month := range []string{"2025-01", "2025-04"} {
		rec := ts.do(t, http.MethodPost, "/projects/"+ts.project.ID+"/budgets", budgetRequest{Month: month})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create budget %s: %d", month, rec.Code)
		}
	}
	rec := ts.do(t, http.MethodGet, "/projects/"+ts.project.ID+"/budgets", nil)
	budgets := decode[[]budgetResponse](t, rec)
	var january, april budgetResponse
	for _, b := range budgets {
		switch b.Month {
		case "2025-01":
			january = b
		case "2025-04":
			april = b
		}
	}

	rec = ts.do(t, http.MethodPost, "/budgets/"+january.ID+"/forecasts", forecastRequest{
		Description: "rent", Value: -20000, IsRecurrent: true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create forecast: %d", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/budgets/"+april.ID+"/report", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report status = %d, body %s", rec.Code, rec.Body.String())
	}
	report := decode[reportResponse](t, rec)
	if !report.IsProjected || report.ProjectedNetBalance == nil {
		t.Fatal("future budget report should carry a projection")
	}
	if *report.ProjectedNetBalance != -80000 {
		t.Errorf("projected net = %d, want -80000", *report.ProjectedNetBalance)
	}

	// Second read is served from cache and identical.
	rec = ts.do(t, http.MethodGet, "/budgets/"+april.ID+"/report", nil)
	cached := decode[reportResponse](t, rec)
	if fmt.Sprint(cached) != fmt.Sprint(report) {
		t.Error("cached report differs from the built one")
	}

	// A mutation purges the cache; the next report reflects it.
	rec = ts.do(t, http.MethodPost, "/budgets/"+january.ID+"/forecasts", forecastRequest{
		Description: "insurance", Value: -5000, IsRecurrent: true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create forecast: %d", rec.Code)
	}
	rec = ts.do(t, http.MethodGet, "/budgets/"+april.ID+"/report", nil)
	report = decode[reportResponse](t, rec)
	if report.ProjectedNetBalance == nil || *report.ProjectedNetBalance != -100000 {
		t.Errorf("projected net after new forecast = %v, want -100000", report.ProjectedNetBalance)
	}
}
