// Package runtime is the action router: it interprets an ordered sequence
// of (adapter id, payload) steps, dispatching each against the router's own
// identity so effects compose in place, with all-or-nothing rollback and
// end-of-call settlement.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/sluice/internal/logging"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ledger"
	"github.com/aretw0/sluice/pkg/ports"
	"github.com/aretw0/sluice/pkg/registry"
)

// lockTTL bounds how long a crashed replica can hold the execute lock.
const lockTTL = 30 * time.Second

// Engine is the core dispatch loop and the owner of the pause flag.
type Engine struct {
	mu       sync.Mutex
	registry *registry.Registry
	ledger   *ledger.Ledger
	admin    domain.Address
	router   domain.Address
	paused   bool

	snapshotters []ports.Snapshotter
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	locker       ports.DistributedLocker
	journal      ports.Journal
}

// Option configures an Engine.
type Option func(*Engine)

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithLocker serializes Execute across replicas through a distributed lock.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) { e.locker = locker }
}

// WithJournal records executions and sweeps to an audit log.
func WithJournal(journal ports.Journal) Option {
	return func(e *Engine) { e.journal = journal }
}

// WithSnapshotters registers stores that roll back with a failed execution,
// in addition to the ledger itself.
func WithSnapshotters(snaps ...ports.Snapshotter) Option {
	return func(e *Engine) { e.snapshotters = append(e.snapshotters, snaps...) }
}

// NewEngine creates an engine administered by admin, executing as router.
func NewEngine(reg *registry.Registry, l *ledger.Ledger, admin, router domain.Address, opts ...Option) *Engine {
	e := &Engine{
		registry: reg,
		ledger:   l,
		admin:    admin,
		router:   router,
		logger:   logging.NewNop(),
	}
	e.snapshotters = append(e.snapshotters, l)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Router returns the identity steps execute as.
func (e *Engine) Router() domain.Address { return e.router }

// Registry returns the adapter table.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Paused reports whether the router refuses requests.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Pause suspends Execute. Administrator only; already-completed executions
// are unaffected.
func (e *Engine) Pause(ctx context.Context, caller domain.Address) error {
	if err := e.authorize(caller); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = true
	e.logger.InfoContext(ctx, "router paused", "by", caller)
	return nil
}

// Unpause resumes Execute. Administrator only.
func (e *Engine) Unpause(ctx context.Context, caller domain.Address) error {
	if err := e.authorize(caller); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = false
	e.logger.InfoContext(ctx, "router unpaused", "by", caller)
	return nil
}

// ApproveFungible grants a standing allowance from the router to a venue
// (exchange, pools, vault). Administrator only; mirrors deploy-time venue
// approvals.
func (e *Engine) ApproveFungible(caller domain.Address, token domain.Token, spender domain.Address, amount uint64) error {
	if err := e.authorize(caller); err != nil {
		return err
	}
	e.ledger.Approve(token, e.router, spender, amount)
	return nil
}

// ApproveCollection grants or revokes a venue's operator approval over the
// router's non-fungible and semi-fungible holdings. Administrator only.
func (e *Engine) ApproveCollection(caller domain.Address, token domain.Token, operator domain.Address, approved bool) error {
	if err := e.authorize(caller); err != nil {
		return err
	}
	e.ledger.SetOperator(token, e.router, operator, approved)
	return nil
}

func (e *Engine) authorize(caller domain.Address) error {
	if caller != e.admin {
		return domain.ErrUnauthorized
	}
	return nil
}
