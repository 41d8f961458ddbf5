// Package http serves the bill API, printable invoices and the dashboard
// summary over gorilla/mux.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"invoicer/internal/cache"
	"invoicer/internal/invoice"
	"invoicer/internal/log"
	"invoicer/internal/services"
)

const (
	// ShutdownTimeout bounds graceful shutdown in Run.
	ShutdownTimeout = 10 * time.Second
	sweepInterval   = 5 * time.Minute
)

type Server struct {
	http.Server
	bills    *services.BillService
	invoices *invoice.Cache
	logger   *log.Logger
	limiter  *rateLimiter
}

type Option func(*Server)

// WithRateLimit sets how many mutating requests a client may make per
// minute.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) {
		if perMinute > 0 {
			s.limiter = newRateLimiter(perMinute)
		}
	}
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, bills *services.BillService, invoices *invoice.Cache, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		bills:    bills,
		invoices: invoices,
		logger:   logger.WithComponent(log.ComponentHTTP),
		limiter:  newRateLimiter(DefaultMutationsPerMinute),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(log.Middleware(s.logger), securityHeaders, s.limiter.middleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/bills", s.handleListBills).Methods(http.MethodGet)
	api.HandleFunc("/bills/corporate", s.handleCreateCorporate).Methods(http.MethodPost)
	api.HandleFunc("/bills/event", s.handleCreateEvent).Methods(http.MethodPost)
	api.HandleFunc("/bills/corporate/{id}", s.handleUpdateCorporate).Methods(http.MethodPut)
	api.HandleFunc("/bills/event/{id}", s.handleUpdateEvent).Methods(http.MethodPut)
	api.HandleFunc("/bills/{id}", s.handleGetBill).Methods(http.MethodGet)
	api.HandleFunc("/bills/{id}", s.handleDeleteBill).Methods(http.MethodDelete)
	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/packages", handlePackages).Methods(http.MethodGet)
	api.HandleFunc("/format", handleFormat).Methods(http.MethodGet)

	r.HandleFunc("/bills/{id}/invoice", s.handleInvoiceHTML).Methods(http.MethodGet)
	r.HandleFunc("/bills/{id}/invoice.pdf", s.handleInvoicePDF).Methods(http.MethodGet)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully. Expired
// invoice renderings and idle rate-limit entries are swept meanwhile.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting HTTP server", "addr", s.Addr, log.FieldOperation, log.OpStartup)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		cache.NewJanitor(s.logger.Slog(), s.invoices, s.limiter).Run(gctx, sweepInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.logger.Info("Shutting down HTTP server", log.FieldOperation, log.OpShutdown)
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
