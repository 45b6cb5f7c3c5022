package registry

import (
	"errors"
	"fmt"

	"github.com/cloudwalk/lending-registry/internal/identity"
)

var (
	// ErrAlreadyInitialized is returned when Initialize is called a
	// second time.
	ErrAlreadyInitialized = errors.New("registry is already initialized")

	// ErrNotInitialized is returned by operations that require the
	// ledger to have been set.
	ErrNotInitialized = errors.New("registry is not initialized")
)

// AlreadyConfiguredError reports a factory configuration that would set a
// category to its current value. Configuration changes must be observably
// different each time.
type AlreadyConfiguredError struct {
	Category Category
	Factory  identity.Address
}

func (e *AlreadyConfiguredError) Error() string {
	if e.Factory.IsZero() {
		return fmt.Sprintf("%s factory is already unconfigured", e.Category)
	}
	return fmt.Sprintf("%s factory is already configured as %s", e.Category, e.Factory)
}

// FactoryNotConfiguredError reports a creation attempt for a category
// whose factory is unset.
type FactoryNotConfiguredError struct {
	Category Category
}

func (e *FactoryNotConfiguredError) Error() string {
	return fmt.Sprintf("%s factory is not configured", e.Category)
}

// FactoryNotBoundError reports a category whose factory identity is
// recorded but whose collaborator has not been bound in this process.
type FactoryNotBoundError struct {
	Category Category
	Factory  identity.Address
}

func (e *FactoryNotBoundError) Error() string {
	return fmt.Sprintf("%s factory %s is not bound to a collaborator", e.Category, e.Factory)
}

// LedgerNotBoundError reports a creation attempt on a registry whose
// ledger identity is recorded but whose collaborator has not been bound
// in this process.
type LedgerNotBoundError struct {
	Ledger identity.Address
}

func (e *LedgerNotBoundError) Error() string {
	return fmt.Sprintf("ledger %s is not bound to a collaborator", e.Ledger)
}

// ImplementationInvalidError reports an upgrade candidate that failed
// introspection: it is not a member of the container's implementation
// family, or did not answer the introspection call at all.
type ImplementationInvalidError struct {
	Family string // family the candidate declared, empty when it declared none
	Reason string
}

func (e *ImplementationInvalidError) Error() string {
	if e.Family == "" {
		return fmt.Sprintf("implementation address invalid: %s", e.Reason)
	}
	return fmt.Sprintf("implementation address invalid: %s (declared family %q)", e.Reason, e.Family)
}
