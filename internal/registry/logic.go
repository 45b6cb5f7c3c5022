package registry

import (
	"context"
	"fmt"

	"github.com/cloudwalk/lending-registry/internal/factory"
	"github.com/cloudwalk/lending-registry/internal/identity"
	"github.com/cloudwalk/lending-registry/internal/ledger"
	"github.com/cloudwalk/lending-registry/internal/log"
)

// Family is the introspection marker shared by every logic module of this
// contract family. UpgradeTo rejects candidates declaring anything else.
const Family = "cloudwalk.lending.registry"

// Collaborators bundles the live external collaborators the active logic
// invokes during creation.
type Collaborators struct {
	Ledger         ledger.Ledger
	CreditLines    factory.CreditLineFactory
	LiquidityPools factory.LiquidityPoolFactory
}

// Logic is the replaceable module holding the registry's executable
// protocol. Modules must be stateless: everything persistent lives in the
// State passed to each call, so swapping modules never loses data.
//
// Family and Version form the introspection surface consulted during an
// upgrade; Init applies module-specific initialization data in the same
// atomic step as the swap.
type Logic interface {
	Family() string
	Version() string
	Init(s *State, data []byte) error

	// ConfigureFactory sets the factory identity for a category and
	// returns the previous value. Setting the current value again is
	// rejected with *AlreadyConfiguredError.
	ConfigureFactory(s *State, category Category, next identity.Address) (old identity.Address, err error)

	// CreateCreditLine runs the two-phase create-then-register sequence
	// for a credit line and returns the new resource identity.
	CreateCreditLine(ctx context.Context, s *State, c Collaborators, creator, token identity.Address, kind factory.Kind, data []byte) (identity.Address, error)

	// CreateLiquidityPool is the liquidity pool analog.
	CreateLiquidityPool(ctx context.Context, s *State, c Collaborators, creator identity.Address, kind factory.Kind, data []byte) (identity.Address, error)
}

// logicV1 is the current protocol implementation.
type logicV1 struct{}

// NewLogicV1 returns the v1 logic module.
func NewLogicV1() Logic {
	return logicV1{}
}

func (logicV1) Family() string { return Family }

func (logicV1) Version() string { return "v1" }

func (logicV1) Init(*State, []byte) error { return nil }

func (logicV1) ConfigureFactory(s *State, category Category, next identity.Address) (identity.Address, error) {
	if !category.Valid() {
		return identity.Zero, fmt.Errorf("unknown category %q", category)
	}
	old := s.Factory(category)
	if next == old {
		return identity.Zero, &AlreadyConfiguredError{Category: category, Factory: next}
	}
	s.Factories[category] = next
	return old, nil
}

func (logicV1) CreateCreditLine(ctx context.Context, s *State, c Collaborators, creator, token identity.Address, kind factory.Kind, data []byte) (identity.Address, error) {
	configured := s.Factory(CategoryCreditLine)
	if configured.IsZero() {
		return identity.Zero, &FactoryNotConfiguredError{Category: CategoryCreditLine}
	}
	if c.CreditLines == nil {
		return identity.Zero, &FactoryNotBoundError{Category: CategoryCreditLine, Factory: configured}
	}
	if c.Ledger == nil {
		return identity.Zero, &LedgerNotBoundError{Ledger: s.Ledger}
	}

	resource, err := c.CreditLines.CreateCreditLine(ctx, s.Ledger, creator, token, kind, data)
	if err != nil {
		return identity.Zero, fmt.Errorf("create credit line: %w", err)
	}

	if err := c.Ledger.RegisterCreditLine(ctx, creator, resource); err != nil {
		discard(ctx, c.CreditLines, resource)
		return identity.Zero, fmt.Errorf("register credit line %s: %w", resource, err)
	}
	return resource, nil
}

func (logicV1) CreateLiquidityPool(ctx context.Context, s *State, c Collaborators, creator identity.Address, kind factory.Kind, data []byte) (identity.Address, error) {
	configured := s.Factory(CategoryLiquidityPool)
	if configured.IsZero() {
		return identity.Zero, &FactoryNotConfiguredError{Category: CategoryLiquidityPool}
	}
	if c.LiquidityPools == nil {
		return identity.Zero, &FactoryNotBoundError{Category: CategoryLiquidityPool, Factory: configured}
	}
	if c.Ledger == nil {
		return identity.Zero, &LedgerNotBoundError{Ledger: s.Ledger}
	}

	resource, err := c.LiquidityPools.CreateLiquidityPool(ctx, s.Ledger, creator, kind, data)
	if err != nil {
		return identity.Zero, fmt.Errorf("create liquidity pool: %w", err)
	}

	if err := c.Ledger.RegisterLiquidityPool(ctx, creator, resource); err != nil {
		discard(ctx, c.LiquidityPools, resource)
		return identity.Zero, fmt.Errorf("register liquidity pool %s: %w", resource, err)
	}
	return resource, nil
}

// discard runs the factory's compensating rollback after a failed
// registration. The returned registration error is what the caller sees; a
// discard failure is logged because there is nothing further to unwind.
func discard(ctx context.Context, f any, resource identity.Address) {
	comp, ok := f.(factory.Compensator)
	if !ok {
		return
	}
	if err := comp.Discard(ctx, resource); err != nil {
		log.ErrorErr(log.CatRegistry, "compensating discard failed", err, "resource", resource)
	}
}
