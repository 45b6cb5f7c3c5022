package cmd

import (
	"context"
	"fmt"

	"github.com/cloudwalk/lending-registry/internal/access"
	"github.com/cloudwalk/lending-registry/internal/config"
	"github.com/cloudwalk/lending-registry/internal/factory"
	"github.com/cloudwalk/lending-registry/internal/flags"
	"github.com/cloudwalk/lending-registry/internal/identity"
	"github.com/cloudwalk/lending-registry/internal/infrastructure/sqlite"
	"github.com/cloudwalk/lending-registry/internal/log"
	"github.com/cloudwalk/lending-registry/internal/registry"
	"github.com/cloudwalk/lending-registry/internal/tracing"
)

// runtime bundles the wired registry for one command invocation.
type runtime struct {
	cfg       config.Config
	db        *sqlite.DB
	container *registry.Container
	catalog   *registry.Catalog
	journal   *sqlite.JournalRepository
	ledger    *sqlite.LedgerRepository
	features  *flags.Registry

	cleanups []func()
}

// caller resolves the acting identity from --caller or the config.
func caller() (identity.Address, error) {
	if callerFlag != "" {
		return identity.Address(callerFlag), nil
	}
	if cfg.Caller != "" {
		return identity.Address(cfg.Caller), nil
	}
	return identity.Zero, fmt.Errorf("no acting identity: set --caller or 'caller' in the config")
}

// openRuntime validates the config, opens the database, and assembles
// the container from the persisted snapshot.
func openRuntime() (*runtime, error) {
	r := &runtime{cfg: cfg}

	if err := config.ValidateCreationPolicy(cfg.CreationPolicy); err != nil {
		return nil, err
	}
	if err := config.ValidateLog(cfg.Log); err != nil {
		return nil, err
	}
	if err := config.ValidateTracing(cfg.Tracing); err != nil {
		return nil, err
	}

	if cfg.Log.Path != "" {
		closeLog, err := log.Init(cfg.Log.Path)
		if err != nil {
			return nil, fmt.Errorf("initializing log: %w", err)
		}
		r.cleanups = append(r.cleanups, closeLog)
	}
	log.SetMinLevel(log.ParseLevel(cfg.Log.Level))

	tracingCfg := tracing.DefaultConfig()
	tracingCfg.Enabled = cfg.Tracing.Enabled
	tracingCfg.Exporter = cfg.Tracing.Exporter
	tracingCfg.FilePath = cfg.Tracing.FilePath
	if tracingCfg.FilePath == "" {
		tracingCfg.FilePath = config.DefaultTracesFilePath()
	}
	tracingCfg.OTLPEndpoint = cfg.Tracing.OTLPEndpoint
	tracingCfg.SampleRate = cfg.Tracing.SampleRate
	provider, err := tracing.NewProvider(tracingCfg)
	if err != nil {
		r.close()
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}
	r.cleanups = append(r.cleanups, func() { _ = provider.Shutdown(context.Background()) })

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		r.close()
		return nil, err
	}
	r.db = db
	r.cleanups = append(r.cleanups, func() { _ = db.Close() })

	store := sqlite.NewStateRepository(db)
	snap, restored, err := store.Load()
	if err != nil {
		r.close()
		return nil, err
	}

	policy, err := buildPolicy(snap, restored, cfg.Access)
	if err != nil {
		r.close()
		return nil, err
	}

	creation, err := access.NewCreationPolicy(cfg.CreationPolicy)
	if err != nil {
		r.close()
		return nil, err
	}

	r.journal = sqlite.NewJournalRepository(db)
	r.catalog = registry.NewCatalog()
	r.container, err = registry.NewContainer(registry.Config{
		Gate:     access.NewGate(policy),
		Creation: creation,
		Catalog:  r.catalog,
		Journal:  r.journal,
		Store:    store,
		Tracer:   provider.Tracer(),
	})
	if err != nil {
		r.close()
		return nil, err
	}
	r.cleanups = append(r.cleanups, r.container.Close)

	r.features = flags.New(cfg.Flags)

	// Rebind durable collaborators recorded in the snapshot.
	if restored && snap.Initialized {
		ledger, err := sqlite.NewLedgerRepository(db, snap.Ledger)
		if err != nil {
			r.close()
			return nil, err
		}
		if err := r.container.BindLedger(ledger); err != nil {
			r.close()
			return nil, err
		}
		r.ledger = ledger

		if !snap.CreditLineFactory.IsZero() {
			clf := factory.NewInMemoryCreditLineFactory(snap.CreditLineFactory)
			if err := r.container.BindCreditLineFactory(clf); err != nil {
				r.close()
				return nil, err
			}
		}
		if !snap.LiquidityPoolFactory.IsZero() {
			lpf := factory.NewInMemoryLiquidityPoolFactory(snap.LiquidityPoolFactory)
			if err := r.container.BindLiquidityPoolFactory(lpf); err != nil {
				r.close()
				return nil, err
			}
		}
	}

	return r, nil
}

// buildPolicy reconstructs the access policy. A persisted snapshot wins
// over the config so ownership transfers and role grants survive
// restarts; the config seeds the very first run.
func buildPolicy(snap registry.Snapshot, restored bool, a config.AccessConfig) (access.Policy, error) {
	if restored && snap.Policy != "" {
		if snap.Policy == "owner" {
			if len(snap.Holders) != 1 {
				return nil, fmt.Errorf("corrupt snapshot: owner policy with %d holders", len(snap.Holders))
			}
			return access.NewOwnerPolicy(snap.Holders[0])
		}
		return access.RestoreRolePolicy(snap.Policy, snap.Holders)
	}

	if err := config.ValidateAccess(a); err != nil {
		return nil, err
	}
	if a.Policy == "role" {
		return access.NewRolePolicy(a.Role, identity.Address(a.Owner))
	}
	return access.NewOwnerPolicy(identity.Address(a.Owner))
}

// newLedger opens the durable market ledger for a not-yet-initialized
// registry and caches it on the runtime.
func newLedger(r *runtime, market identity.Address) (*sqlite.LedgerRepository, error) {
	ledger, err := sqlite.NewLedgerRepository(r.db, market)
	if err != nil {
		return nil, err
	}
	r.ledger = ledger
	return ledger, nil
}

// close releases runtime resources in reverse acquisition order.
func (r *runtime) close() {
	for i := len(r.cleanups) - 1; i >= 0; i-- {
		r.cleanups[i]()
	}
	r.cleanups = nil
}
