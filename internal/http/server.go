// Package http exposes the ledger over a JSON API. Handlers stay thin:
// request decoding, service call, typed-error translation.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cardosoccc/bud/internal/cache"
	"github.com/cardosoccc/bud/internal/log"
	"github.com/cardosoccc/bud/internal/middleware/trace"
	"github.com/cardosoccc/bud/internal/services"
)

// Services bundles the engines the API fronts.
type Services struct {
	Ledger     *services.Ledger
	Balances   *services.Balances
	Accounts   *services.Accounts
	Categories *services.Categories
	Projects   *services.Projects
	Budgets    *services.Budgets
	Reports    *services.Reports
}

type Server struct {
	http.Server
	svc    Services
	logger *log.Logger

	// Built reports are cached per budget and purged on every mutation.
	reportCache *cache.LRU[reportResponse]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, svc Services, logger *log.Logger, readTimeout, writeTimeout time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      trace.Middleware(mux),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		svc:              svc,
		logger:           logger.WithComponent(log.ComponentHTTP),
		reportCache:      cache.NewLRU[reportResponse](64, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}
	go s.cacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("POST /projects", s.handleCreateProject)
	mux.HandleFunc("GET /projects", s.handleListProjects)
	mux.HandleFunc("GET /projects/{id}", s.handleGetProject)
	mux.HandleFunc("PUT /projects/{id}", s.handleRenameProject)
	mux.HandleFunc("DELETE /projects/{id}", s.handleDeleteProject)

	mux.HandleFunc("POST /projects/{id}/accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /projects/{id}/accounts", s.handleListAccounts)
	mux.HandleFunc("PUT /projects/{id}/accounts/{accountID}", s.handleAttachAccount)
	mux.HandleFunc("GET /accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("PUT /accounts/{id}", s.handleEditAccount)
	mux.HandleFunc("DELETE /accounts/{id}", s.handleDeleteAccount)

	mux.HandleFunc("POST /categories", s.handleCreateCategory)
	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("PUT /categories/{id}", s.handleRenameCategory)
	mux.HandleFunc("DELETE /categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("POST /projects/{id}/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /projects/{id}/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /transactions/{id}", s.handleEditTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("POST /projects/{id}/budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /projects/{id}/budgets", s.handleListBudgets)
	mux.HandleFunc("GET /budgets/{id}", s.handleGetBudget)
	mux.HandleFunc("PUT /budgets/{id}", s.handleEditBudget)
	mux.HandleFunc("DELETE /budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("POST /budgets/{id}/forecasts", s.handleCreateForecast)
	mux.HandleFunc("GET /budgets/{id}/forecasts", s.handleListForecasts)
	mux.HandleFunc("PUT /forecasts/{id}", s.handleEditForecast)
	mux.HandleFunc("DELETE /forecasts/{id}", s.handleDeleteForecast)

	mux.HandleFunc("GET /budgets/{id}/report", s.handleGetReport)

	return s
}

// invalidateReports drops every cached report. Any write can change balances,
// totals or projections, so the whole cache goes.
func (s *Server) invalidateReports() {
	s.reportCache.Purge()
}

func (s *Server) cacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.reportCache.CleanExpired(); n > 0 {
				s.logger.Debug("Report cache cleanup", "entries_removed", n)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cache cleanup goroutine and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
