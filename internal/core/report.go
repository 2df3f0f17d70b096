package core

import "time"

// AccountBalance is one account's net flow over a report period.
type AccountBalance struct {
	AccountID   string
	AccountName string
	Balance     Money
}

// ForecastActual pairs a forecast with the actual flow recorded against its
// category during the budget period.
type ForecastActual struct {
	ForecastID    string
	Description   string
	CategoryID    string
	ForecastValue Money
	ActualValue   Money
	Difference    Money // actual minus forecast
}

// Report is the projection of a budget month: balances per account, period
// totals, forecast-vs-actual lines, and, for future months only, the
// accumulated projected net balance.
type Report struct {
	BudgetID   string
	BudgetName string
	StartDate  time.Time
	EndDate    time.Time

	AccountBalances []AccountBalance
	TotalBalance    Money
	TotalEarnings   Money
	TotalExpenses   Money
	NetBalance      Money

	Forecasts []ForecastActual

	IsProjected         bool
	ProjectedNetBalance *Money
}
