package access

import (
	"errors"
	"sync"

	"github.com/cloudwalk/lending-registry/internal/identity"
)

var (
	// ErrPaused is returned by pausable operations while the registry
	// is paused.
	ErrPaused = errors.New("registry is paused")

	// ErrAlreadyPaused is returned when pausing an already paused registry.
	ErrAlreadyPaused = errors.New("registry is already paused")

	// ErrNotPaused is returned when unpausing a registry that is not paused.
	ErrNotPaused = errors.New("registry is not paused")
)

// Gate is the single access-control object consulted by every mutating
// entry point. It combines the privileged-role policy with the pause flag.
// Pause and Unpause stay callable while paused; only operations that go
// through RequireUnpaused are blocked.
type Gate struct {
	mu     sync.RWMutex
	policy Policy
	paused bool
}

// NewGate creates a gate over the given policy.
func NewGate(policy Policy) *Gate {
	return &Gate{policy: policy}
}

// Require returns an *UnauthorizedError unless caller holds the
// privileged role.
func (g *Gate) Require(caller identity.Address) error {
	return g.policy.Authorize(caller)
}

// RequireUnpaused returns ErrPaused while the registry is paused.
func (g *Gate) RequireUnpaused() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.paused {
		return ErrPaused
	}
	return nil
}

// Pause blocks pausable operations. Pausing while already paused is
// rejected so every pause is an observable transition.
func (g *Gate) Pause(caller identity.Address) error {
	if err := g.policy.Authorize(caller); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.paused {
		return ErrAlreadyPaused
	}
	g.paused = true
	return nil
}

// Unpause re-enables pausable operations.
func (g *Gate) Unpause(caller identity.Address) error {
	if err := g.policy.Authorize(caller); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.paused {
		return ErrNotPaused
	}
	g.paused = false
	return nil
}

// Paused reports the pause flag.
func (g *Gate) Paused() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.paused
}

// Policy exposes the underlying policy for status output and for
// policy-specific administration (ownership transfer, role grants).
func (g *Gate) Policy() Policy {
	return g.policy
}

// Restore sets the pause flag from persisted state without an
// authorization check. Used only while rebuilding a gate at startup.
func (g *Gate) Restore(paused bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = paused
}
