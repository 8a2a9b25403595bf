package sluice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/sluice/internal/logging"
	"github.com/aretw0/sluice/internal/runtime"
	"github.com/aretw0/sluice/pkg/adapters/bank"
	"github.com/aretw0/sluice/pkg/adapters/market"
	"github.com/aretw0/sluice/pkg/adapters/swap"
	"github.com/aretw0/sluice/pkg/adapters/transfer"
	"github.com/aretw0/sluice/pkg/amm"
	"github.com/aretw0/sluice/pkg/conduit"
	"github.com/aretw0/sluice/pkg/custody"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/exchange"
	"github.com/aretw0/sluice/pkg/ledger"
	"github.com/aretw0/sluice/pkg/ports"
	"github.com/aretw0/sluice/pkg/registry"
	"github.com/aretw0/sluice/pkg/vault"
)

// Version is the library version, overridable at link time.
var Version = "dev"

// Router is the high-level entry point. It wires the ledger, the custody
// surfaces, the built-in venues and the dispatch engine behind a single API.
type Router struct {
	ledger   *ledger.Ledger
	conduits *conduit.Controller
	vault    *vault.Vault
	exchange *exchange.Exchange
	pools    *amm.Pools
	resolver *custody.Resolver
	registry *registry.Registry
	engine   *runtime.Engine

	admin   domain.Address
	router  domain.Address
	wrapped domain.Token
	logger  *slog.Logger

	store         ports.RegistryStore
	locker        ports.DistributedLocker
	journal       ports.Journal
	hooks         domain.LifecycleHooks
	defaultActive bool

	vaultAddr    domain.Address
	exchangeAddr domain.Address
	poolsAddr    domain.Address
}

// Option configures the Router.
type Option func(*Router)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

// WithLifecycleHooks registers observability hooks on the engine.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Router) { r.hooks = hooks }
}

// WithRegistryStore persists adapter entries through the given store.
func WithRegistryStore(store ports.RegistryStore) Option {
	return func(r *Router) { r.store = store }
}

// WithLocker serializes Execute across processes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(r *Router) { r.locker = locker }
}

// WithJournal records executions and sweeps.
func WithJournal(journal ports.Journal) Option {
	return func(r *Router) { r.journal = journal }
}

// WithDefaultActive controls whether newly registered adapters start enabled.
func WithDefaultActive(active bool) Option {
	return func(r *Router) { r.defaultActive = active }
}

// WithWrappedNative sets the token the transfer adapter wraps native value
// into.
func WithWrappedNative(token domain.Token) Option {
	return func(r *Router) { r.wrapped = token }
}

// New builds a Router. admin gates the management surface; routerAddr is the
// identity adapters execute under and must differ from admin.
func New(admin, routerAddr domain.Address, opts ...Option) (*Router, error) {
	if admin == domain.Zero || routerAddr == domain.Zero {
		return nil, fmt.Errorf("admin and router addresses are required")
	}
	if admin == routerAddr {
		return nil, fmt.Errorf("admin and router addresses must differ")
	}

	r := &Router{
		admin:         admin,
		router:        routerAddr,
		wrapped:       "WNATIVE",
		defaultActive: true,
		vaultAddr:     "vault",
		exchangeAddr:  "exchange",
		poolsAddr:     "amm",
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}

	r.ledger = ledger.New()
	r.conduits = conduit.NewController(r.ledger)
	r.vault = vault.New(r.ledger, r.vaultAddr)
	r.exchange = exchange.New(r.ledger, r.conduits, r.exchangeAddr)
	r.pools = amm.New(r.ledger, r.poolsAddr)
	r.resolver = custody.NewResolver(r.ledger, r.conduits, r.vault, r.router)

	regOpts := []registry.Option{
		registry.WithDefaultActive(r.defaultActive),
		registry.WithLogger(r.logger),
	}
	if r.store != nil {
		regOpts = append(regOpts, registry.WithStore(r.store))
	}
	r.registry = registry.New(admin, regOpts...)

	engOpts := []runtime.Option{
		runtime.WithLogger(r.logger),
		runtime.WithHooks(r.hooks),
		runtime.WithSnapshotters(r.vault, r.exchange, r.pools),
	}
	if r.locker != nil {
		engOpts = append(engOpts, runtime.WithLocker(r.locker))
	}
	if r.journal != nil {
		engOpts = append(engOpts, runtime.WithJournal(r.journal))
	}
	r.engine = runtime.NewEngine(r.registry, r.ledger, admin, routerAddr, engOpts...)

	return r, nil
}

// RegisterBuiltins registers the bundled adapters in a fixed order: transfer,
// swap, market, bank. Returns the assigned ids.
func (r *Router) RegisterBuiltins(ctx context.Context) ([]uint64, error) {
	ids := make([]uint64, 0, 4)
	for _, a := range r.builtins() {
		id, err := r.registry.Register(ctx, r.admin, a)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// BuiltinCatalog returns fresh instances of the bundled adapters keyed by
// name, for registration surfaces that address adapters by name.
func (r *Router) BuiltinCatalog() map[string]ports.Adapter {
	byName := make(map[string]ports.Adapter, 4)
	for _, a := range r.builtins() {
		byName[a.Name()] = a
	}
	return byName
}

// Rehydrate restores persisted registry entries, resolving the bundled
// adapter names back to live instances.
func (r *Router) Rehydrate(ctx context.Context) error {
	byName := r.BuiltinCatalog()
	return r.registry.Rehydrate(ctx, func(name string) (ports.Adapter, error) {
		a, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("no adapter named %q", name)
		}
		return a, nil
	})
}

func (r *Router) builtins() []ports.Adapter {
	return []ports.Adapter{
		transfer.New(r.resolver, r.ledger, r.wrapped),
		swap.New(r.pools, r.ledger),
		market.New(r.exchange, r.ledger),
		bank.New(r.vault, r.ledger),
	}
}

// Execute dispatches the steps atomically under the router's identity.
func (r *Router) Execute(ctx context.Context, caller domain.Address, supplied uint64, steps []domain.Step) (*domain.Receipt, error) {
	return r.engine.Execute(ctx, caller, supplied, steps)
}

// Paused reports whether the router is halted.
func (r *Router) Paused() bool { return r.engine.Paused() }

// Pause halts Execute. Admin only.
func (r *Router) Pause(ctx context.Context, caller domain.Address) error {
	return r.engine.Pause(ctx, caller)
}

// Unpause resumes Execute. Admin only.
func (r *Router) Unpause(ctx context.Context, caller domain.Address) error {
	return r.engine.Unpause(ctx, caller)
}

// SweepNative recovers stranded native value. Admin only.
func (r *Router) SweepNative(ctx context.Context, caller, recipient domain.Address, amount uint64) error {
	return r.engine.SweepNative(ctx, caller, recipient, amount)
}

// SweepFungible recovers stranded fungible tokens. Admin only.
func (r *Router) SweepFungible(ctx context.Context, caller domain.Address, token domain.Token, recipient domain.Address, amount uint64) error {
	return r.engine.SweepFungible(ctx, caller, token, recipient, amount)
}

// SweepNonFungible recovers stranded collection items. Admin only.
func (r *Router) SweepNonFungible(ctx context.Context, caller domain.Address, token domain.Token, recipient domain.Address, ids []uint64) error {
	return r.engine.SweepNonFungible(ctx, caller, token, recipient, ids)
}

// SweepSemiFungible recovers stranded semi-fungible balances. Admin only.
func (r *Router) SweepSemiFungible(ctx context.Context, caller domain.Address, token domain.Token, recipient domain.Address, ids, amounts []uint64) error {
	return r.engine.SweepSemiFungible(ctx, caller, token, recipient, ids, amounts)
}

// ApproveFungible pre-authorizes a venue to spend the router's tokens. Admin
// only.
func (r *Router) ApproveFungible(caller domain.Address, token domain.Token, spender domain.Address, amount uint64) error {
	return r.engine.ApproveFungible(caller, token, spender, amount)
}

// ApproveCollection pre-authorizes a venue as operator over the router's
// collection holdings. Admin only.
func (r *Router) ApproveCollection(caller domain.Address, token domain.Token, operator domain.Address, approved bool) error {
	return r.engine.ApproveCollection(caller, token, operator, approved)
}

// Ledger exposes the asset ledger backing every component.
func (r *Router) Ledger() *ledger.Ledger { return r.ledger }

// Conduits exposes the conduit controller.
func (r *Router) Conduits() *conduit.Controller { return r.conduits }

// Vault exposes the share-accounted vault.
func (r *Router) Vault() *vault.Vault { return r.vault }

// Exchange exposes the order venue.
func (r *Router) Exchange() *exchange.Exchange { return r.exchange }

// Pools exposes the swap venue.
func (r *Router) Pools() *amm.Pools { return r.pools }

// Registry exposes the adapter arena.
func (r *Router) Registry() *registry.Registry { return r.registry }

// RouterAddress returns the identity adapters execute under.
func (r *Router) RouterAddress() domain.Address { return r.router }
