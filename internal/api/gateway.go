package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/engagehub/internal/catalog"
	"github.com/engagehub/internal/clock"
	"github.com/engagehub/internal/health"
	"github.com/engagehub/internal/incident"
	"github.com/engagehub/internal/ledger"
	"github.com/engagehub/internal/onboarding"
	"github.com/engagehub/internal/outreach"
	"github.com/engagehub/internal/playbook"
	"github.com/engagehub/internal/reporting"
	"github.com/engagehub/pkg/models"
)

// Gateway exposes the service over HTTP.
type Gateway struct {
	server     *http.Server
	router     *mux.Router
	catalog    *catalog.Service
	ledger     *ledger.Service
	outreach   *outreach.Service
	reporting  *reporting.Service
	onboarding *onboarding.Service
	incidents  *incident.Manager
	playbooks  *playbook.Service
	health     *health.Checker
	clock      clock.Clock
	config     GatewayConfig
	metrics    *GatewayMetrics
}

// GatewayConfig represents gateway configuration
type GatewayConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	ReadTimeout    time.Duration `json:"read_timeout"`
	WriteTimeout   time.Duration `json:"write_timeout"`
	IdleTimeout    time.Duration `json:"idle_timeout"`
	EnableCORS     bool          `json:"enable_cors"`
	AllowedOrigins []string      `json:"allowed_origins"`
}

// DefaultGatewayConfig returns default gateway configuration
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
	}
}

// GatewayMetrics tracks basic request counters.
type GatewayMetrics struct {
	mu sync.Mutex
	metricsSnapshot
}

type metricsSnapshot struct {
	RequestsTotal    int64            `json:"requests_total"`
	RequestsByMethod map[string]int64 `json:"requests_by_method"`
	RequestsByStatus map[int]int64    `json:"requests_by_status"`
	LastRequest      time.Time        `json:"last_request"`
}

// Services bundles the gateway's dependencies.
type Services struct {
	Catalog    *catalog.Service
	Ledger     *ledger.Service
	Outreach   *outreach.Service
	Reporting  *reporting.Service
	Onboarding *onboarding.Service
	Incidents  *incident.Manager
	Playbooks  *playbook.Service
	Health     *health.Checker
	Clock      clock.Clock
}

// NewGateway creates a new API gateway
func NewGateway(config GatewayConfig, services Services) *Gateway {
	router := mux.NewRouter()

	clk := services.Clock
	if clk == nil {
		clk = clock.System{}
	}

	gateway := &Gateway{
		router:     router,
		catalog:    services.Catalog,
		ledger:     services.Ledger,
		outreach:   services.Outreach,
		reporting:  services.Reporting,
		onboarding: services.Onboarding,
		incidents:  services.Incidents,
		playbooks:  services.Playbooks,
		health:     services.Health,
		clock:      clk,
		config:     config,
		metrics: &GatewayMetrics{
			metricsSnapshot: metricsSnapshot{
				RequestsByMethod: make(map[string]int64),
				RequestsByStatus: make(map[int]int64),
			},
		},
	}

	gateway.setupRoutes()
	gateway.setupMiddleware()

	gateway.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return gateway
}

// setupRoutes configures all API routes
func (g *Gateway) setupRoutes() {
	api := g.router.PathPrefix("/api/v1").Subrouter()

	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.HandleFunc("", g.handleScheduleSession).Methods("POST")
	sessions.HandleFunc("", g.handleUpcomingSessions).Methods("GET")
	sessions.HandleFunc("/{id}", g.handleGetSession).Methods("GET")
	sessions.HandleFunc("/{id}/registrations", g.handleRegister).Methods("POST")
	sessions.HandleFunc("/{id}/registrations", g.handleListRegistrations).Methods("GET")
	sessions.HandleFunc("/{id}/registrations/{customerId}/attendance", g.handleRecordAttendance).Methods("POST")
	sessions.HandleFunc("/{id}/follow-ups", g.handleAddFollowUp).Methods("POST")

	api.HandleFunc("/follow-ups/{id}", g.handleUpdateFollowUp).Methods("PATCH")

	customers := api.PathPrefix("/customers").Subrouter()
	customers.HandleFunc("", g.handleOnboardCustomer).Methods("POST")
	customers.HandleFunc("/{id}/outreach", g.handleOutreachHistory).Methods("GET")
	customers.HandleFunc("/{id}/playbooks", g.handlePlaybookHistory).Methods("GET")

	outreachRoutes := api.PathPrefix("/outreach").Subrouter()
	outreachRoutes.HandleFunc("", g.handleScheduleOutreach).Methods("POST")
	outreachRoutes.HandleFunc("/{id}/complete", g.handleCompleteOutreach).Methods("POST")

	incidents := api.PathPrefix("/incidents").Subrouter()
	incidents.HandleFunc("", g.handleRecordIncident).Methods("POST")
	incidents.HandleFunc("/{id}", g.handleGetIncident).Methods("GET")

	api.HandleFunc("/reports", g.handleReport).Methods("GET")
	api.HandleFunc("/metrics", g.handleMetrics).Methods("GET")

	if g.health != nil {
		g.router.HandleFunc("/healthz", g.health.HTTPHandler()).Methods("GET")
	}
}

// setupMiddleware configures HTTP middleware
func (g *Gateway) setupMiddleware() {
	if g.config.EnableCORS {
		c := cors.New(cors.Options{
			AllowedOrigins:   g.config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		})
		g.router.Use(c.Handler)
	}

	g.router.Use(g.metricsMiddleware)
}

// Start starts the API gateway
func (g *Gateway) Start() error {
	log.Printf("Starting API gateway on %s", g.server.Addr)
	return g.server.ListenAndServe()
}

// Stop stops the API gateway
func (g *Gateway) Stop(ctx context.Context) error {
	log.Printf("Stopping API gateway")
	return g.server.Shutdown(ctx)
}

// Handler returns the underlying router, for tests.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Response types

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type APIMeta struct {
	Total   int  `json:"total,omitempty"`
	Limit   int  `json:"limit,omitempty"`
	HasMore bool `json:"has_more,omitempty"`
}

// Helper functions

func writeJSONResponse(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message, details string) {
	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	writeJSONResponse(w, status, response)
}

func writeSuccessResponse(w http.ResponseWriter, status int, data interface{}, meta *APIMeta) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	}
	writeJSONResponse(w, status, response)
}

func parseRequestBody(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// writeDomainError maps the shared error kinds onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeErrorResponse(w, http.StatusNotFound, "NOT_FOUND", message, err.Error())
	case errors.Is(err, models.ErrSessionFull):
		writeErrorResponse(w, http.StatusConflict, "SESSION_FULL", message, err.Error())
	case errors.Is(err, models.ErrDuplicateRegistration):
		writeErrorResponse(w, http.StatusConflict, "DUPLICATE_REGISTRATION", message, err.Error())
	case errors.Is(err, models.ErrAlreadyCompleted):
		writeErrorResponse(w, http.StatusConflict, "ALREADY_COMPLETED", message, err.Error())
	case errors.Is(err, models.ErrInvalidSegment):
		writeErrorResponse(w, http.StatusUnprocessableEntity, "INVALID_SEGMENT", message, err.Error())
	case errors.Is(err, models.ErrInvalidRange):
		writeErrorResponse(w, http.StatusUnprocessableEntity, "INVALID_RANGE", message, err.Error())
	default:
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", message, err.Error())
	}
}

// Middleware implementations

func (g *Gateway) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		g.updateMetrics(r, wrapped.statusCode)
	})
}

func (g *Gateway) updateMetrics(r *http.Request, statusCode int) {
	g.metrics.mu.Lock()
	defer g.metrics.mu.Unlock()

	g.metrics.RequestsTotal++
	g.metrics.RequestsByMethod[r.Method]++
	g.metrics.RequestsByStatus[statusCode]++
	g.metrics.LastRequest = time.Now()
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (g *Gateway) handleMetrics(w http.ResponseWriter, r *http.Request) {
	g.metrics.mu.Lock()
	snapshot := metricsSnapshot{
		RequestsTotal:    g.metrics.RequestsTotal,
		RequestsByMethod: make(map[string]int64, len(g.metrics.RequestsByMethod)),
		RequestsByStatus: make(map[int]int64, len(g.metrics.RequestsByStatus)),
		LastRequest:      g.metrics.LastRequest,
	}
	for k, v := range g.metrics.RequestsByMethod {
		snapshot.RequestsByMethod[k] = v
	}
	for k, v := range g.metrics.RequestsByStatus {
		snapshot.RequestsByStatus[k] = v
	}
	g.metrics.mu.Unlock()

	writeSuccessResponse(w, http.StatusOK, snapshot, nil)
}
