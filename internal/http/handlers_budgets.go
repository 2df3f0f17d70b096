package http

import (
	"net/http"

	"github.com/cardosoccc/bud/internal/core"
	"github.com/cardosoccc/bud/internal/services"
)

type budgetRequest struct {
	Month string `json:"month"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	budget, err := s.svc.Budgets.CreateBudget(r.Context(), req.Month, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, toBudgetResponse(*budget))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.svc.Budgets.ListBudgets(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	budget, err := s.svc.Budgets.GetBudget(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, toBudgetResponse(*budget))
}

func (s *Server) handleEditBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	budget, err := s.svc.Budgets.EditBudget(r.Context(), r.PathValue("id"), req.Month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateReports()
	s.writeJSON(w, r, http.StatusOK, toBudgetResponse(*budget))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Budgets.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateReports()
	s.writeJSON(w, r, http.StatusNoContent, nil)
}

type forecastRequest struct {
	Description    string   `json:"description"`
	Value          int64    `json:"value"`
	MinValue       *int64   `json:"min_value"`
	MaxValue       *int64   `json:"max_value"`
	Tags           []string `json:"tags"`
	CategoryID     string   `json:"category_id"`
	IsRecurrent    bool     `json:"is_recurrent"`
	RecurrentStart string   `json:"recurrent_start"`
	RecurrentEnd   string   `json:"recurrent_end"`
}

func (r forecastRequest) params() (services.CreateForecastParams, error) {
	p := services.CreateForecastParams{
		Description: r.Description,
		Value:       core.Money(r.Value),
		Tags:        r.Tags,
		CategoryID:  r.CategoryID,
		IsRecurrent: r.IsRecurrent,
	}
	if r.MinValue != nil {
		v := core.Money(*r.MinValue)
		p.MinValue = &v
	}
	if r.MaxValue != nil {
		v := core.Money(*r.MaxValue)
		p.MaxValue = &v
	}
	if r.RecurrentStart != "" {
		m, err := core.ParseMonth(r.RecurrentStart)
		if err != nil {
			return p, err
		}
		p.RecurrentStart = m
	}
	if r.RecurrentEnd != "" {
		m, err := core.ParseMonth(r.RecurrentEnd)
		if err != nil {
			return p, err
		}
		p.RecurrentEnd = m
	}
	return p, nil
}

func (s *Server) handleCreateForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	params, err := req.params()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	params.BudgetID = r.PathValue("id")
	forecast, err := s.svc.Budgets.CreateForecast(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateReports()
	s.writeJSON(w, r, http.StatusCreated, toForecastResponse(*forecast))
}

func (s *Server) handleListForecasts(w http.ResponseWriter, r *http.Request) {
	forecasts, err := s.svc.Budgets.ListForecasts(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]forecastResponse, 0, len(forecasts))
	for _, f := range forecasts {
		out = append(out, toForecastResponse(f))
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

// handleEditForecast replaces a forecast's editable fields. Omitted bounds
// and windows clear the previous values.
func (s *Server) handleEditForecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	params, err := req.params()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	forecast, err := s.svc.Budgets.EditForecast(r.Context(), r.PathValue("id"), services.ForecastPatch{
		Description:    &params.Description,
		Value:          &params.Value,
		MinValue:       &params.MinValue,
		MaxValue:       &params.MaxValue,
		Tags:           &params.Tags,
		CategoryID:     &params.CategoryID,
		IsRecurrent:    &params.IsRecurrent,
		RecurrentStart: &params.RecurrentStart,
		RecurrentEnd:   &params.RecurrentEnd,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateReports()
	s.writeJSON(w, r, http.StatusOK, toForecastResponse(*forecast))
}

func (s *Server) handleDeleteForecast(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Budgets.DeleteForecast(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidateReports()
	s.writeJSON(w, r, http.StatusNoContent, nil)
}
