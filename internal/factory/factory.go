// Package factory defines the consumed interfaces of the per-category
// factory collaborators, plus in-memory reference implementations used by
// the CLI and tests.
package factory

import (
	"context"

	"github.com/cloudwalk/lending-registry/internal/identity"
)

// Kind discriminates sub-types within a resource category. Its meaning is
// owned by the configured factory; the registry only carries it through to
// the factory and the creation event.
type Kind uint8

// CreditLineFactory constructs credit lines.
type CreditLineFactory interface {
	// Address returns the factory identity recorded by the registry.
	Address() identity.Address

	// CreateCreditLine builds a new credit line under market for creator
	// and returns its identity.
	CreateCreditLine(ctx context.Context, market, creator, token identity.Address, kind Kind, data []byte) (identity.Address, error)
}

// LiquidityPoolFactory constructs liquidity pools.
type LiquidityPoolFactory interface {
	Address() identity.Address

	// CreateLiquidityPool builds a new pool under market for creator and
	// returns its identity.
	CreateLiquidityPool(ctx context.Context, market, creator identity.Address, kind Kind, data []byte) (identity.Address, error)
}

// Compensator rolls a factory's own bookkeeping back for a resource whose
// ledger registration failed. The registry invokes it to keep the combined
// create-then-register sequence all-or-nothing on a substrate with no
// transactional rollback across collaborators. Factories that keep no
// state of their own need not implement it.
type Compensator interface {
	Discard(ctx context.Context, resource identity.Address) error
}
