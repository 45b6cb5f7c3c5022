package registry

import (
	"github.com/cloudwalk/lending-registry/internal/identity"
)

// State is the registry's persistent storage. It is owned by the Container
// and survives logic module replacement untouched: modules read and write
// it but never hold state of their own.
type State struct {
	// Ledger is the market collaborator identity. Set once at
	// initialization, never zero afterwards.
	Ledger identity.Address

	// Factories maps each category to its configured factory identity.
	// The zero address means "unconfigured".
	Factories map[Category]identity.Address

	// Initialized is set by the one-shot initialization entry point.
	Initialized bool
}

// NewState creates empty, uninitialized state.
func NewState() *State {
	return &State{
		Factories: make(map[Category]identity.Address, len(Categories())),
	}
}

// Factory returns the configured factory identity for a category.
func (s *State) Factory(c Category) identity.Address {
	return s.Factories[c]
}

// Clone returns a deep copy. Upgrades stage init-data application on a
// clone so a failed Init leaves the original state untouched.
func (s *State) Clone() *State {
	factories := make(map[Category]identity.Address, len(s.Factories))
	for c, f := range s.Factories {
		factories[c] = f
	}
	return &State{
		Ledger:      s.Ledger,
		Factories:   factories,
		Initialized: s.Initialized,
	}
}
