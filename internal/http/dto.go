package http

import (
	"time"

	"github.com/cardosoccc/bud/internal/core"
)

// Monetary fields travel as integer cents on the wire, matching the core
// representation. Dates are YYYY-MM-DD strings, months YYYY-MM.

const dateLayout = "2006-01-02"

type projectResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

func toProjectResponse(p core.Project) projectResponse {
	return projectResponse{ID: p.ID, Name: p.Name, IsDefault: p.IsDefault}
}

type accountResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	InitialBalance int64  `json:"initial_balance"`
	CurrentBalance int64  `json:"current_balance"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Type:           string(a.Type),
		InitialBalance: int64(a.InitialBalance),
		CurrentBalance: int64(a.CurrentBalance),
	}
}

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name}
}

type transactionResponse struct {
	ID            string   `json:"id"`
	PairID        string   `json:"pair_id"`
	Value         int64    `json:"value"`
	Description   string   `json:"description"`
	Date          string   `json:"date"`
	Tags          []string `json:"tags,omitempty"`
	SourceID      string   `json:"source_account_id"`
	DestinationID string   `json:"destination_account_id"`
	CategoryID    string   `json:"category_id,omitempty"`
	ProjectID     string   `json:"project_id"`
	IsCounterpart bool     `json:"is_counterpart"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		PairID:        t.PairID,
		Value:         int64(t.Value),
		Description:   t.Description,
		Date:          t.Date.Format(dateLayout),
		Tags:          t.Tags,
		SourceID:      t.SourceID,
		DestinationID: t.DestinationID,
		CategoryID:    t.CategoryID,
		ProjectID:     t.ProjectID,
		IsCounterpart: t.IsCounterpart,
	}
}

type budgetResponse struct {
	ID        string `json:"id"`
	Month     string `json:"month"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	ProjectID string `json:"project_id"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:        b.ID,
		Month:     b.Name,
		StartDate: b.StartDate.Format(dateLayout),
		EndDate:   b.EndDate.Format(dateLayout),
		ProjectID: b.ProjectID,
	}
}

type forecastResponse struct {
	ID             string   `json:"id"`
	BudgetID       string   `json:"budget_id"`
	Description    string   `json:"description"`
	Value          int64    `json:"value"`
	MinValue       *int64   `json:"min_value,omitempty"`
	MaxValue       *int64   `json:"max_value,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	CategoryID     string   `json:"category_id,omitempty"`
	IsRecurrent    bool     `json:"is_recurrent"`
	RecurrentStart string   `json:"recurrent_start,omitempty"`
	RecurrentEnd   string   `json:"recurrent_end,omitempty"`
}

func toForecastResponse(f core.Forecast) forecastResponse {
	resp := forecastResponse{
		ID:          f.ID,
		BudgetID:    f.BudgetID,
		Description: f.Description,
		Value:       int64(f.Value),
		Tags:        f.Tags,
		CategoryID:  f.CategoryID,
		IsRecurrent: f.IsRecurrent,
	}
	if f.MinValue != nil {
		v := int64(*f.MinValue)
		resp.MinValue = &v
	}
	if f.MaxValue != nil {
		v := int64(*f.MaxValue)
		resp.MaxValue = &v
	}
	if !f.RecurrentStart.IsZero() {
		resp.RecurrentStart = f.RecurrentStart.String()
	}
	if !f.RecurrentEnd.IsZero() {
		resp.RecurrentEnd = f.RecurrentEnd.String()
	}
	return resp
}

type accountBalanceResponse struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	Balance     int64  `json:"balance"`
}

type forecastActualResponse struct {
	ForecastID    string `json:"forecast_id"`
	Description   string `json:"description"`
	CategoryID    string `json:"category_id,omitempty"`
	ForecastValue int64  `json:"forecast_value"`
	ActualValue   int64  `json:"actual_value"`
	Difference    int64  `json:"difference"`
}

type reportResponse struct {
	BudgetID   string `json:"budget_id"`
	Month      string `json:"month"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`

	AccountBalances []accountBalanceResponse `json:"account_balances"`
	TotalBalance    int64                    `json:"total_balance"`
	TotalEarnings   int64                    `json:"total_earnings"`
	TotalExpenses   int64                    `json:"total_expenses"`
	NetBalance      int64                    `json:"net_balance"`

	Forecasts []forecastActualResponse `json:"forecasts"`

	IsProjected         bool   `json:"is_projected"`
	ProjectedNetBalance *int64 `json:"projected_net_balance,omitempty"`
}

func toReportResponse(rep *core.Report) reportResponse {
	resp := reportResponse{
		BudgetID:      rep.BudgetID,
		Month:         rep.BudgetName,
		StartDate:     rep.StartDate.Format(dateLayout),
		EndDate:       rep.EndDate.Format(dateLayout),
		TotalBalance:  int64(rep.TotalBalance),
		TotalEarnings: int64(rep.TotalEarnings),
		TotalExpenses: int64(rep.TotalExpenses),
		NetBalance:    int64(rep.NetBalance),
		IsProjected:   rep.IsProjected,
	}
	for _, ab := range rep.AccountBalances {
		resp.AccountBalances = append(resp.AccountBalances, accountBalanceResponse{
			AccountID:   ab.AccountID,
			AccountName: ab.AccountName,
			Balance:     int64(ab.Balance),
		})
	}
	for _, fa := range rep.Forecasts {
		resp.Forecasts = append(resp.Forecasts, forecastActualResponse{
			ForecastID:    fa.ForecastID,
			Description:   fa.Description,
			CategoryID:    fa.CategoryID,
			ForecastValue: int64(fa.ForecastValue),
			ActualValue:   int64(fa.ActualValue),
			Difference:    int64(fa.Difference),
		})
	}
	if rep.ProjectedNetBalance != nil {
		v := int64(*rep.ProjectedNetBalance)
		resp.ProjectedNetBalance = &v
	}
	return resp
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, &core.ValidationError{Field: "date", Ref: s, Reason: "must be YYYY-MM-DD"}
	}
	return t, nil
}
