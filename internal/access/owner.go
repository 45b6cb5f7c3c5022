package access

import (
	"sync"

	"github.com/cloudwalk/lending-registry/internal/identity"
)

// OwnerPolicy is the single-owner policy: exactly one principal is owner,
// and ownership is transferable by the current owner to exactly one new
// non-zero principal atomically.
type OwnerPolicy struct {
	mu    sync.RWMutex
	owner identity.Address
}

// NewOwnerPolicy creates the policy with its initial owner.
func NewOwnerPolicy(owner identity.Address) (*OwnerPolicy, error) {
	if owner.IsZero() {
		return nil, &identity.ZeroAddressError{Field: "owner"}
	}
	return &OwnerPolicy{owner: owner}, nil
}

// Ensure OwnerPolicy implements Policy.
var _ Policy = (*OwnerPolicy)(nil)

// Authorize returns an *UnauthorizedError unless caller is the owner.
func (p *OwnerPolicy) Authorize(caller identity.Address) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if caller != p.owner {
		return &UnauthorizedError{Caller: caller}
	}
	return nil
}

// Owner returns the current owner.
func (p *OwnerPolicy) Owner() identity.Address {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.owner
}

// Holders returns the owner as a one-element set.
func (p *OwnerPolicy) Holders() []identity.Address {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return []identity.Address{p.owner}
}

// Name identifies the policy kind.
func (p *OwnerPolicy) Name() string {
	return "owner"
}

// TransferOwnership moves ownership from caller to next. Only the current
// owner may transfer, and next must be a concrete principal; no two owners
// ever coexist.
func (p *OwnerPolicy) TransferOwnership(caller, next identity.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if caller != p.owner {
		return &UnauthorizedError{Caller: caller}
	}
	if next.IsZero() {
		return &identity.ZeroAddressError{Field: "new owner"}
	}
	p.owner = next
	return nil
}
