package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cloudwalk/lending-registry/internal/access"
	"github.com/cloudwalk/lending-registry/internal/factory"
	"github.com/cloudwalk/lending-registry/internal/identity"
	"github.com/cloudwalk/lending-registry/internal/ledger"
	"github.com/cloudwalk/lending-registry/internal/log"
	"github.com/cloudwalk/lending-registry/internal/pubsub"
	"github.com/cloudwalk/lending-registry/internal/tracing"
)

// Snapshot is the externally readable (and persisted) view of the
// container: registry state, pause flag, active module, and policy.
type Snapshot struct {
	Initialized          bool
	Ledger               identity.Address
	CreditLineFactory    identity.Address
	LiquidityPoolFactory identity.Address
	Paused               bool
	ModuleFamily         string
	ModuleVersion        string
	Policy               string
	Holders              []identity.Address
}

// StateStore persists snapshots across process restarts.
type StateStore interface {
	// Load returns the stored snapshot, or ok=false when none exists.
	Load() (snap Snapshot, ok bool, err error)

	// Save overwrites the stored snapshot.
	Save(snap Snapshot) error
}

// Config assembles a Container. Gate is required; everything else has an
// in-memory default.
type Config struct {
	Gate     *access.Gate
	Creation *access.CreationPolicy
	Logic    Logic
	Catalog  *Catalog
	Journal  Journal
	Store    StateStore
	Tracer   trace.Tracer
}

// Container is the stable registry object: it owns the persistent State
// and delegates behavior to the active Logic module. All mutating
// operations are serialized behind one lock, so an operation either fully
// completes or fully aborts with no interleaving.
type Container struct {
	mu       sync.RWMutex
	state    *State
	gate     *access.Gate
	creation *access.CreationPolicy
	collab   Collaborators
	active   Logic
	family   string
	journal  Journal
	store    StateStore
	broker   *pubsub.Broker[Event]
	tracer   trace.Tracer
}

// NewContainer builds a container around the initial logic module. When a
// StateStore is given and holds a snapshot, registry state and the pause
// flag are restored from it, and the recorded module version is resolved
// through the catalog so an upgraded deployment resumes on the module it
// upgraded to.
func NewContainer(cfg Config) (*Container, error) {
	if cfg.Gate == nil {
		return nil, fmt.Errorf("container requires an access gate")
	}
	if cfg.Logic == nil {
		cfg.Logic = NewLogicV1()
	}
	if cfg.Logic.Family() == "" {
		return nil, &ImplementationInvalidError{Reason: "initial module declares no family marker"}
	}
	if cfg.Journal == nil {
		cfg.Journal = NewMemoryJournal()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer("registry")
	}
	if cfg.Creation == nil {
		creation, err := access.NewCreationPolicy("")
		if err != nil {
			return nil, err
		}
		cfg.Creation = creation
	}

	c := &Container{
		state:    NewState(),
		gate:     cfg.Gate,
		creation: cfg.Creation,
		active:   cfg.Logic,
		family:   cfg.Logic.Family(),
		journal:  cfg.Journal,
		store:    cfg.Store,
		broker:   pubsub.NewBroker[Event](),
		tracer:   cfg.Tracer,
	}

	if cfg.Store != nil {
		snap, ok, err := cfg.Store.Load()
		if err != nil {
			return nil, fmt.Errorf("load registry state: %w", err)
		}
		if ok {
			c.state.Initialized = snap.Initialized
			c.state.Ledger = snap.Ledger
			c.state.Factories[CategoryCreditLine] = snap.CreditLineFactory
			c.state.Factories[CategoryLiquidityPool] = snap.LiquidityPoolFactory
			c.gate.Restore(snap.Paused)

			// The active pointer is mutated only by UpgradeTo, so a
			// restart must resume the persisted module, not the default.
			if snap.ModuleVersion != "" && snap.ModuleVersion != c.active.Version() {
				if cfg.Catalog == nil {
					return nil, fmt.Errorf("stored module version %q needs a catalog to resolve", snap.ModuleVersion)
				}
				active, resolveErr := cfg.Catalog.Resolve(snap.ModuleVersion)
				if resolveErr != nil {
					return nil, fmt.Errorf("restore active module: %w", resolveErr)
				}
				if active.Family() != c.family {
					return nil, &ImplementationInvalidError{
						Family: active.Family(),
						Reason: fmt.Sprintf("stored module %s declares a foreign family, expected %q", snap.ModuleVersion, c.family),
					}
				}
				c.active = active
			}
		}
	}

	return c, nil
}

// Close shuts down the event broker. The journal stays readable.
func (c *Container) Close() {
	c.broker.Close()
}

// Subscribe returns a channel of audit events. The subscription ends when
// ctx is cancelled.
func (c *Container) Subscribe(ctx context.Context) <-chan pubsub.Event[Event] {
	return c.broker.Subscribe(ctx)
}

// Status returns a point-in-time view of the container.
func (c *Container) Status() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// ActiveModule returns the family and version of the active logic module.
func (c *Container) ActiveModule() (family, version string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active.Family(), c.active.Version()
}

// Initialize binds the ledger collaborator and marks the registry live.
// Callable exactly once per instance; the ledger identity must be
// concrete.
func (c *Container) Initialize(ctx context.Context, caller identity.Address, l ledger.Ledger) error {
	_, span := c.startSpan(ctx, tracing.SpanInitialize, attribute.String(tracing.AttrCaller, caller.String()))
	var err error
	defer func() { endSpan(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err = c.gate.Require(caller); err != nil {
		return err
	}
	if c.state.Initialized {
		err = ErrAlreadyInitialized
		return err
	}
	if l == nil || l.Address().IsZero() {
		err = &identity.ZeroAddressError{Field: "ledger"}
		return err
	}

	c.state.Ledger = l.Address()
	c.state.Initialized = true
	c.collab.Ledger = l

	err = c.commit(Event{
		Type:    EventInitialized,
		Payload: Initialized{Market: l.Address(), By: caller},
	}, func() {
		c.state.Ledger = identity.Zero
		c.state.Initialized = false
		c.collab.Ledger = nil
	})
	if err == nil {
		log.Info(log.CatRegistry, "registry initialized", "market", l.Address(), "by", caller)
	}
	return err
}

// BindLedger attaches the live ledger collaborator after a restart. The
// collaborator's identity must match the recorded one.
func (c *Container) BindLedger(l ledger.Ledger) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Initialized {
		return ErrNotInitialized
	}
	if l == nil || l.Address() != c.state.Ledger {
		return fmt.Errorf("ledger collaborator does not match recorded identity %s", c.state.Ledger)
	}
	c.collab.Ledger = l
	return nil
}

// BindCreditLineFactory attaches the live factory collaborator matching
// the configured identity. Unlike ConfigureCreditLineFactory this is
// process wiring, not a state change.
func (c *Container) BindCreditLineFactory(f factory.CreditLineFactory) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	configured := c.state.Factory(CategoryCreditLine)
	if f == nil || f.Address() != configured {
		return fmt.Errorf("factory collaborator does not match configured identity %s", configured)
	}
	c.collab.CreditLines = f
	return nil
}

// BindLiquidityPoolFactory is the pool analog of BindCreditLineFactory.
func (c *Container) BindLiquidityPoolFactory(f factory.LiquidityPoolFactory) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	configured := c.state.Factory(CategoryLiquidityPool)
	if f == nil || f.Address() != configured {
		return fmt.Errorf("factory collaborator does not match configured identity %s", configured)
	}
	c.collab.LiquidityPools = f
	return nil
}

// ConfigureCreditLineFactory sets the credit line factory. A nil factory
// unconfigures the category.
func (c *Container) ConfigureCreditLineFactory(ctx context.Context, caller identity.Address, f factory.CreditLineFactory) error {
	next := identity.Zero
	if f != nil {
		next = f.Address()
	}
	return c.configureFactory(ctx, caller, CategoryCreditLine, next, func() {
		c.collab.CreditLines = f
	}, func() {
		c.collab.CreditLines = nil
	})
}

// ConfigureLiquidityPoolFactory sets the liquidity pool factory. A nil
// factory unconfigures the category.
func (c *Container) ConfigureLiquidityPoolFactory(ctx context.Context, caller identity.Address, f factory.LiquidityPoolFactory) error {
	next := identity.Zero
	if f != nil {
		next = f.Address()
	}
	return c.configureFactory(ctx, caller, CategoryLiquidityPool, next, func() {
		c.collab.LiquidityPools = f
	}, func() {
		c.collab.LiquidityPools = nil
	})
}

func (c *Container) configureFactory(ctx context.Context, caller identity.Address, category Category, next identity.Address, bind, unbind func()) error {
	_, span := c.startSpan(ctx, tracing.SpanConfigureFactory,
		attribute.String(tracing.AttrCaller, caller.String()),
		attribute.String(tracing.AttrCategory, string(category)),
		attribute.String(tracing.AttrFactory, next.String()),
	)
	var err error
	defer func() { endSpan(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err = c.gate.Require(caller); err != nil {
		return err
	}
	if err = c.gate.RequireUnpaused(); err != nil {
		return err
	}
	if !c.state.Initialized {
		err = ErrNotInitialized
		return err
	}

	old, configErr := c.active.ConfigureFactory(c.state, category, next)
	if configErr != nil {
		err = configErr
		return err
	}
	bind()
	span.SetAttributes(attribute.String(tracing.AttrFactoryOld, old.String()))

	err = c.commit(Event{
		Type:    EventFactoryConfigured,
		Payload: FactoryConfigured{Category: category, New: next, Old: old},
	}, func() {
		c.state.Factories[category] = old
		unbind()
	})
	if err == nil {
		log.Info(log.CatRegistry, "factory configured", "category", category, "new", next, "old", old)
	}
	return err
}

// CreateCreditLine runs the creation protocol for a credit line on behalf
// of caller, who becomes the creator of record.
func (c *Container) CreateCreditLine(ctx context.Context, caller, token identity.Address, kind factory.Kind, data []byte) (identity.Address, error) {
	ctx, span := c.startSpan(ctx, tracing.SpanCreateCreditLine,
		attribute.String(tracing.AttrCaller, caller.String()),
		attribute.Int(tracing.AttrResourceKind, int(kind)),
	)
	var err error
	defer func() { endSpan(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err = c.requireCreation(caller); err != nil {
		return identity.Zero, err
	}

	resource, createErr := c.active.CreateCreditLine(ctx, c.state, c.collab, caller, token, kind, data)
	if createErr != nil {
		err = createErr
		return identity.Zero, err
	}
	span.SetAttributes(attribute.String(tracing.AttrResource, resource.String()))

	// The ledger is authoritative once registration succeeded; a journal
	// failure surfaces as an error without unwinding the creation.
	err = c.commit(Event{
		Type: EventCreditLineCreated,
		Payload: CreditLineCreated{
			Market:     c.state.Ledger,
			Creator:    caller,
			Token:      token,
			Kind:       kind,
			Data:       data,
			CreditLine: resource,
		},
	}, nil)
	if err != nil {
		return identity.Zero, err
	}

	log.Info(log.CatRegistry, "credit line created", "creator", caller, "resource", resource, "kind", kind)
	return resource, nil
}

// CreateLiquidityPool runs the creation protocol for a liquidity pool.
func (c *Container) CreateLiquidityPool(ctx context.Context, caller identity.Address, kind factory.Kind, data []byte) (identity.Address, error) {
	ctx, span := c.startSpan(ctx, tracing.SpanCreatePool,
		attribute.String(tracing.AttrCaller, caller.String()),
		attribute.Int(tracing.AttrResourceKind, int(kind)),
	)
	var err error
	defer func() { endSpan(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err = c.requireCreation(caller); err != nil {
		return identity.Zero, err
	}

	resource, createErr := c.active.CreateLiquidityPool(ctx, c.state, c.collab, caller, kind, data)
	if createErr != nil {
		err = createErr
		return identity.Zero, err
	}
	span.SetAttributes(attribute.String(tracing.AttrResource, resource.String()))

	err = c.commit(Event{
		Type: EventLiquidityPoolCreated,
		Payload: LiquidityPoolCreated{
			Market:  c.state.Ledger,
			Creator: caller,
			Kind:    kind,
			Data:    data,
			Pool:    resource,
		},
	}, nil)
	if err != nil {
		return identity.Zero, err
	}

	log.Info(log.CatRegistry, "liquidity pool created", "creator", caller, "resource", resource, "kind", kind)
	return resource, nil
}

// requireCreation gates a creation call: initialized, creation-authorized,
// not paused. Callers hold the write lock.
func (c *Container) requireCreation(caller identity.Address) error {
	if !c.state.Initialized {
		return ErrNotInitialized
	}
	if err := c.creation.Authorize(caller, c.gate.Policy()); err != nil {
		return err
	}
	return c.gate.RequireUnpaused()
}

// UpgradeTo replaces the active logic module. The candidate must declare
// the container's family marker; initData, when non-empty, is applied in
// the same atomic step. Persistent state survives the swap.
func (c *Container) UpgradeTo(ctx context.Context, caller identity.Address, candidate Logic, initData []byte) error {
	_, span := c.startSpan(ctx, tracing.SpanUpgrade, attribute.String(tracing.AttrCaller, caller.String()))
	var err error
	defer func() { endSpan(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err = c.gate.Require(caller); err != nil {
		return err
	}
	if err = c.gate.RequireUnpaused(); err != nil {
		return err
	}

	if candidate == nil {
		err = &ImplementationInvalidError{Reason: "candidate module is nil"}
		return err
	}
	declared := candidate.Family()
	if declared == "" {
		err = &ImplementationInvalidError{Reason: "candidate declares no family marker"}
		return err
	}
	if declared != c.family {
		err = &ImplementationInvalidError{Family: declared, Reason: fmt.Sprintf("expected family %q", c.family)}
		return err
	}
	span.SetAttributes(
		attribute.String(tracing.AttrModuleFamily, declared),
		attribute.String(tracing.AttrModuleVersion, candidate.Version()),
	)

	// Init runs against a staged copy so a failure leaves both the state
	// and the active pointer untouched.
	staged := c.state.Clone()
	if len(initData) > 0 {
		if initErr := candidate.Init(staged, initData); initErr != nil {
			err = fmt.Errorf("apply init data to %s %s: %w", declared, candidate.Version(), initErr)
			return err
		}
	}

	prevState, prevActive := c.state, c.active
	c.state = staged
	c.active = candidate

	err = c.commit(Event{
		Type:    EventModuleUpgraded,
		Payload: ModuleUpgraded{Family: declared, Version: candidate.Version()},
	}, func() {
		c.state = prevState
		c.active = prevActive
	})
	if err == nil {
		log.Info(log.CatUpgrade, "logic module upgraded", "family", declared, "version", candidate.Version())
	}
	return err
}

// Pause blocks all pausable operations until Unpause.
func (c *Container) Pause(ctx context.Context, caller identity.Address) error {
	_, span := c.startSpan(ctx, tracing.SpanPause, attribute.String(tracing.AttrCaller, caller.String()))
	var err error
	defer func() { endSpan(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err = c.gate.Pause(caller); err != nil {
		return err
	}
	err = c.commit(Event{Type: EventPaused, Payload: Paused{By: caller}}, func() {
		c.gate.Restore(false)
	})
	if err == nil {
		log.Info(log.CatAccess, "registry paused", "by", caller)
	}
	return err
}

// Unpause re-enables pausable operations.
func (c *Container) Unpause(ctx context.Context, caller identity.Address) error {
	_, span := c.startSpan(ctx, tracing.SpanUnpause, attribute.String(tracing.AttrCaller, caller.String()))
	var err error
	defer func() { endSpan(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err = c.gate.Unpause(caller); err != nil {
		return err
	}
	err = c.commit(Event{Type: EventUnpaused, Payload: Unpaused{By: caller}}, func() {
		c.gate.Restore(true)
	})
	if err == nil {
		log.Info(log.CatAccess, "registry unpaused", "by", caller)
	}
	return err
}

// TransferOwnership moves the owner role to next. Only meaningful under
// the single-owner policy.
func (c *Container) TransferOwnership(ctx context.Context, caller, next identity.Address) error {
	_, span := c.startSpan(ctx, tracing.SpanTransferOwner,
		attribute.String(tracing.AttrCaller, caller.String()),
		attribute.String(tracing.AttrPrincipal, next.String()),
	)
	var err error
	defer func() { endSpan(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	policy, ok := c.gate.Policy().(*access.OwnerPolicy)
	if !ok {
		err = fmt.Errorf("ownership transfer requires the single-owner policy (active: %s)", c.gate.Policy().Name())
		return err
	}

	old := policy.Owner()
	if err = policy.TransferOwnership(caller, next); err != nil {
		return err
	}
	err = c.commit(Event{
		Type:    EventOwnershipTransferred,
		Payload: OwnershipTransferred{Old: old, New: next},
	}, func() {
		// restore cannot go through TransferOwnership: next may not
		// cooperate, so swap back directly via a second transfer
		_ = policy.TransferOwnership(next, old)
	})
	if err == nil {
		log.Info(log.CatAccess, "ownership transferred", "old", old, "new", next)
	}
	return err
}

// GrantRole adds member to the privileged role. Only meaningful under the
// role-based policy.
func (c *Container) GrantRole(ctx context.Context, caller, member identity.Address) error {
	_, span := c.startSpan(ctx, tracing.SpanGrantRole,
		attribute.String(tracing.AttrCaller, caller.String()),
		attribute.String(tracing.AttrPrincipal, member.String()),
	)
	var err error
	defer func() { endSpan(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	policy, ok := c.gate.Policy().(*access.RolePolicy)
	if !ok {
		err = fmt.Errorf("role grants require the role-based policy (active: %s)", c.gate.Policy().Name())
		return err
	}

	if err = policy.Grant(caller, member); err != nil {
		return err
	}
	err = c.commit(Event{
		Type:    EventRoleGranted,
		Payload: RoleGranted{Role: policy.Name(), Member: member, By: caller},
	}, func() {
		_ = policy.Revoke(caller, member)
	})
	if err == nil {
		log.Info(log.CatAccess, "role granted", "role", policy.Name(), "member", member, "by", caller)
	}
	return err
}

// RevokeRole removes member from the privileged role.
func (c *Container) RevokeRole(ctx context.Context, caller, member identity.Address) error {
	_, span := c.startSpan(ctx, tracing.SpanRevokeRole,
		attribute.String(tracing.AttrCaller, caller.String()),
		attribute.String(tracing.AttrPrincipal, member.String()),
	)
	var err error
	defer func() { endSpan(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	policy, ok := c.gate.Policy().(*access.RolePolicy)
	if !ok {
		err = fmt.Errorf("role revocations require the role-based policy (active: %s)", c.gate.Policy().Name())
		return err
	}

	if err = policy.Revoke(caller, member); err != nil {
		return err
	}
	err = c.commit(Event{
		Type:    EventRoleRevoked,
		Payload: RoleRevoked{Role: policy.Name(), Member: member, By: caller},
	}, func() {
		_ = policy.Grant(caller, member)
	})
	if err == nil {
		log.Info(log.CatAccess, "role revoked", "role", policy.Name(), "member", member, "by", caller)
	}
	return err
}

// commit persists the snapshot, then journals and publishes the event.
// A failure on either step runs revert and aborts the operation, re-saving
// the reverted snapshot so durable state never diverges from the journal.
// Operations with no revert (creation, where the ledger is authoritative)
// surface the journal error without unwinding.
func (c *Container) commit(ev Event, revert func()) error {
	if c.store != nil {
		if err := c.store.Save(c.snapshotLocked()); err != nil {
			if revert != nil {
				revert()
			}
			return fmt.Errorf("persist registry state: %w", err)
		}
	}

	ev.OccurredAt = time.Now().UTC()
	if err := c.journal.Append(ev); err != nil {
		if revert != nil {
			revert()
			if c.store != nil {
				if saveErr := c.store.Save(c.snapshotLocked()); saveErr != nil {
					log.ErrorErr(log.CatRegistry, "failed to re-save snapshot after journal failure", saveErr, "event", ev.Type)
				}
			}
		}
		return fmt.Errorf("journal %s event: %w", ev.Type, err)
	}
	c.broker.Publish(pubsub.EventType(ev.Type), ev)
	return nil
}

func (c *Container) snapshotLocked() Snapshot {
	policy := c.gate.Policy()
	return Snapshot{
		Initialized:          c.state.Initialized,
		Ledger:               c.state.Ledger,
		CreditLineFactory:    c.state.Factory(CategoryCreditLine),
		LiquidityPoolFactory: c.state.Factory(CategoryLiquidityPool),
		Paused:               c.gate.Paused(),
		ModuleFamily:         c.active.Family(),
		ModuleVersion:        c.active.Version(),
		Policy:               policy.Name(),
		Holders:              policy.Holders(),
	}
}

func (c *Container) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
