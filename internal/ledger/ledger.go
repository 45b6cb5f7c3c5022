// Package ledger defines the consumed interface of the external market
// collaborator: the system of record that must learn about every created
// sub-resource through an explicit registration call.
package ledger

import (
	"context"
	"fmt"

	"github.com/cloudwalk/lending-registry/internal/identity"
)

// Ledger is the registration entry point of the market collaborator.
// Implementations must fail on invalid input rather than silently no-op;
// the registry relies on a returned error to abort the whole creation.
type Ledger interface {
	// Address returns the market identity resources are created under.
	Address() identity.Address

	// RegisterCreditLine records a credit line for its creator.
	RegisterCreditLine(ctx context.Context, creator, creditLine identity.Address) error

	// RegisterLiquidityPool records a liquidity pool for its creator.
	RegisterLiquidityPool(ctx context.Context, creator, pool identity.Address) error
}

// AlreadyRegisteredError reports a resource the ledger has already
// recorded. Registration is not idempotent: the registry never retries,
// so a duplicate means two creations produced the same identity.
type AlreadyRegisteredError struct {
	Resource identity.Address
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("resource %s is already registered", e.Resource)
}
