// Package http exposes the router over a small JSON API.
package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
	"github.com/aretw0/sluice/pkg/registry"
)

// Engine defines the router surface the HTTP layer needs.
type Engine interface {
	Execute(ctx context.Context, caller domain.Address, supplied uint64, steps []domain.Step) (*domain.Receipt, error)
	Paused() bool
	Pause(ctx context.Context, caller domain.Address) error
	Unpause(ctx context.Context, caller domain.Address) error
	SweepNative(ctx context.Context, caller, recipient domain.Address, amount uint64) error
	SweepFungible(ctx context.Context, caller domain.Address, token domain.Token, recipient domain.Address, amount uint64) error
	SweepNonFungible(ctx context.Context, caller domain.Address, token domain.Token, recipient domain.Address, ids []uint64) error
	SweepSemiFungible(ctx context.Context, caller domain.Address, token domain.Token, recipient domain.Address, ids, amounts []uint64) error
	Registry() *registry.Registry
}

// Server routes HTTP requests to an Engine.
type Server struct {
	engine  Engine
	admin   domain.Address
	apiKey  string
	logger  *slog.Logger
	catalog map[string]ports.Adapter
}

// Option configures the handler.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	catalog  map[string]ports.Adapter
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics mounts /metrics for the given gatherer.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(o *options) { o.gatherer = g }
}

// WithCatalog enables registering adapters over the API by name.
func WithCatalog(catalog map[string]ports.Adapter) Option {
	return func(o *options) { o.catalog = catalog }
}

// NewHandler builds the HTTP handler. Admin routes require the X-Api-Key
// header to match apiKey and run as the admin address.
func NewHandler(engine Engine, admin domain.Address, apiKey string, opts ...Option) http.Handler {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	s := &Server{engine: engine, admin: admin, apiKey: apiKey, logger: o.logger, catalog: o.catalog}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Post("/execute", s.execute)
	r.Get("/adapters", s.listAdapters)

	r.Group(func(r chi.Router) {
		r.Use(s.requireKey)
		r.Post("/adapters", s.registerAdapter)
		r.Patch("/adapters/{id}", s.patchAdapter)
		r.Post("/pause", s.pause)
		r.Post("/unpause", s.unpause)
		r.Post("/sweep/{class}", s.sweep)
	})

	if o.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get("X-Api-Key")
		if s.apiKey == "" || subtle.ConstantTimeCompare([]byte(got), []byte(s.apiKey)) != 1 {
			s.writeError(w, http.StatusForbidden, domain.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type executeRequest struct {
	Caller string        `json:"caller"`
	Value  uint64        `json:"value"`
	Steps  []domain.Step `json:"steps"`
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request) {
	var body executeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		s.logger.Warn("execute: invalid request body", "err", err)
		return
	}
	if body.Caller == "" {
		http.Error(w, "caller is required", http.StatusBadRequest)
		return
	}

	receipt, err := s.engine.Execute(r.Context(), domain.Address(body.Caller), body.Value, body.Steps)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, receipt)
}

type adapterView struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func (s *Server) listAdapters(w http.ResponseWriter, r *http.Request) {
	entries := s.engine.Registry().Entries()
	views := make([]adapterView, len(entries))
	for i, e := range entries {
		views[i] = adapterView{ID: e.ID, Name: e.Adapter.Name(), Active: e.Active}
	}
	s.writeJSON(w, http.StatusOK, views)
}

type registerAdapterRequest struct {
	Name string `json:"name"`
}

func (s *Server) registerAdapter(w http.ResponseWriter, r *http.Request) {
	var body registerAdapterRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	adapter, ok := s.catalog[body.Name]
	if !ok {
		http.Error(w, "no adapter named "+body.Name, http.StatusNotFound)
		return
	}
	id, err := s.engine.Registry().Register(r.Context(), s.admin, adapter)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	entry, err := s.engine.Registry().Lookup(id)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusCreated, adapterView{ID: entry.ID, Name: entry.Adapter.Name(), Active: entry.Active})
}

type patchAdapterRequest struct {
	Active bool `json:"active"`
}

func (s *Server) patchAdapter(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid adapter id", http.StatusBadRequest)
		return
	}
	var body patchAdapterRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.engine.Registry().SetActive(r.Context(), s.admin, id, body.Active); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	entry, err := s.engine.Registry().Lookup(id)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, adapterView{ID: entry.ID, Name: entry.Adapter.Name(), Active: entry.Active})
}

func (s *Server) pause(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Pause(r.Context(), s.admin); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"paused": true})
}

func (s *Server) unpause(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Unpause(r.Context(), s.admin); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"paused": false})
}

type sweepRequest struct {
	Token     string   `json:"token"`
	Recipient string   `json:"recipient"`
	Amount    uint64   `json:"amount"`
	IDs       []uint64 `json:"ids"`
	Amounts   []uint64 `json:"amounts"`
}

func (s *Server) sweep(w http.ResponseWriter, r *http.Request) {
	var body sweepRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Recipient == "" {
		http.Error(w, "recipient is required", http.StatusBadRequest)
		return
	}

	recipient := domain.Address(body.Recipient)
	token := domain.Token(body.Token)
	ctx := r.Context()

	var err error
	switch class := chi.URLParam(r, "class"); class {
	case "native":
		err = s.engine.SweepNative(ctx, s.admin, recipient, body.Amount)
	case "fungible":
		err = s.engine.SweepFungible(ctx, s.admin, token, recipient, body.Amount)
	case "non_fungible":
		err = s.engine.SweepNonFungible(ctx, s.admin, token, recipient, body.IDs)
	case "semi_fungible":
		err = s.engine.SweepSemiFungible(ctx, s.admin, token, recipient, body.IDs, body.Amounts)
	default:
		http.Error(w, "unknown asset class", http.StatusNotFound)
		return
	}
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "swept"})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"paused": s.engine.Paused(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrRouterPaused):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnknownAdapter):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAdapterInactive),
		errors.Is(err, domain.ErrInsufficientValue),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInsufficientAuthorization):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
