package factory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwalk/lending-registry/internal/identity"
)

// CreditLineSpec captures the creation arguments a reference factory was
// invoked with, for inspection by tests and the CLI.
type CreditLineSpec struct {
	Market  identity.Address
	Creator identity.Address
	Token   identity.Address
	Kind    Kind
	Data    []byte
}

// LiquidityPoolSpec captures liquidity pool creation arguments.
type LiquidityPoolSpec struct {
	Market  identity.Address
	Creator identity.Address
	Kind    Kind
	Data    []byte
}

// inMemoryCreditLineFactory mints uuid-derived credit line identities and
// keeps its own bookkeeping so Discard has something to roll back.
type inMemoryCreditLineFactory struct {
	addr    identity.Address
	mu      sync.Mutex
	created map[identity.Address]CreditLineSpec
}

// NewInMemoryCreditLineFactory creates a reference factory. A zero addr
// mints a fresh factory identity.
func NewInMemoryCreditLineFactory(addr identity.Address) CreditLineFactory {
	if addr.IsZero() {
		addr = identity.New("clf")
	}
	return &inMemoryCreditLineFactory{
		addr:    addr,
		created: make(map[identity.Address]CreditLineSpec),
	}
}

var _ Compensator = (*inMemoryCreditLineFactory)(nil)

func (f *inMemoryCreditLineFactory) Address() identity.Address {
	return f.addr
}

func (f *inMemoryCreditLineFactory) CreateCreditLine(_ context.Context, market, creator, token identity.Address, kind Kind, data []byte) (identity.Address, error) {
	if market.IsZero() {
		return identity.Zero, &identity.ZeroAddressError{Field: "market"}
	}
	if creator.IsZero() {
		return identity.Zero, &identity.ZeroAddressError{Field: "creator"}
	}
	if token.IsZero() {
		return identity.Zero, &identity.ZeroAddressError{Field: "token"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	resource := identity.New("credit-line")
	f.created[resource] = CreditLineSpec{Market: market, Creator: creator, Token: token, Kind: kind, Data: data}
	return resource, nil
}

func (f *inMemoryCreditLineFactory) Discard(_ context.Context, resource identity.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.created[resource]; !ok {
		return fmt.Errorf("discard: unknown credit line %s", resource)
	}
	delete(f.created, resource)
	return nil
}

// CreditLine returns the recorded spec for a created credit line.
func (f *inMemoryCreditLineFactory) CreditLine(resource identity.Address) (CreditLineSpec, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	spec, ok := f.created[resource]
	return spec, ok
}

// inMemoryLiquidityPoolFactory is the pool analog of the credit line
// reference factory.
type inMemoryLiquidityPoolFactory struct {
	addr    identity.Address
	mu      sync.Mutex
	created map[identity.Address]LiquidityPoolSpec
}

// NewInMemoryLiquidityPoolFactory creates a reference pool factory. A zero
// addr mints a fresh factory identity.
func NewInMemoryLiquidityPoolFactory(addr identity.Address) LiquidityPoolFactory {
	if addr.IsZero() {
		addr = identity.New("lpf")
	}
	return &inMemoryLiquidityPoolFactory{
		addr:    addr,
		created: make(map[identity.Address]LiquidityPoolSpec),
	}
}

var _ Compensator = (*inMemoryLiquidityPoolFactory)(nil)

func (f *inMemoryLiquidityPoolFactory) Address() identity.Address {
	return f.addr
}

func (f *inMemoryLiquidityPoolFactory) CreateLiquidityPool(_ context.Context, market, creator identity.Address, kind Kind, data []byte) (identity.Address, error) {
	if market.IsZero() {
		return identity.Zero, &identity.ZeroAddressError{Field: "market"}
	}
	if creator.IsZero() {
		return identity.Zero, &identity.ZeroAddressError{Field: "creator"}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	resource := identity.New("pool")
	f.created[resource] = LiquidityPoolSpec{Market: market, Creator: creator, Kind: kind, Data: data}
	return resource, nil
}

func (f *inMemoryLiquidityPoolFactory) Discard(_ context.Context, resource identity.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.created[resource]; !ok {
		return fmt.Errorf("discard: unknown liquidity pool %s", resource)
	}
	delete(f.created, resource)
	return nil
}

// LiquidityPool returns the recorded spec for a created pool.
func (f *inMemoryLiquidityPoolFactory) LiquidityPool(resource identity.Address) (LiquidityPoolSpec, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	spec, ok := f.created[resource]
	return spec, ok
}
