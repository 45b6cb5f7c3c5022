package access

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cloudwalk/lending-registry/internal/identity"
)

// DefaultRole is the role name used when a deployment does not configure
// its own.
const DefaultRole = "OWNER_ROLE"

// RolePolicy is the role-based policy: a named role held by a set of
// principals, granted and revoked by existing holders. The initializer is
// granted the role at construction and the holder set is never empty.
type RolePolicy struct {
	mu      sync.RWMutex
	role    string
	members map[identity.Address]struct{}
}

// NewRolePolicy creates the policy with the initializer as first holder.
func NewRolePolicy(role string, initializer identity.Address) (*RolePolicy, error) {
	if initializer.IsZero() {
		return nil, &identity.ZeroAddressError{Field: "initializer"}
	}
	if role == "" {
		role = DefaultRole
	}
	return &RolePolicy{
		role:    role,
		members: map[identity.Address]struct{}{initializer: {}},
	}, nil
}

// RestoreRolePolicy rebuilds a policy from persisted holders.
func RestoreRolePolicy(role string, holders []identity.Address) (*RolePolicy, error) {
	if len(holders) == 0 {
		return nil, fmt.Errorf("restore role %s: holder set must not be empty", role)
	}
	p := &RolePolicy{role: role, members: make(map[identity.Address]struct{}, len(holders))}
	for _, h := range holders {
		if h.IsZero() {
			return nil, &identity.ZeroAddressError{Field: "role holder"}
		}
		p.members[h] = struct{}{}
	}
	return p, nil
}

// Ensure RolePolicy implements Policy.
var _ Policy = (*RolePolicy)(nil)

// Authorize returns an *UnauthorizedError naming the missing role unless
// caller holds it.
func (p *RolePolicy) Authorize(caller identity.Address) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if _, ok := p.members[caller]; !ok {
		return &UnauthorizedError{Caller: caller, Role: p.role}
	}
	return nil
}

// Holders returns the role members sorted for deterministic output.
func (p *RolePolicy) Holders() []identity.Address {
	p.mu.RLock()
	defer p.mu.RUnlock()

	holders := make([]identity.Address, 0, len(p.members))
	for m := range p.members {
		holders = append(holders, m)
	}
	sort.Slice(holders, func(i, j int) bool { return holders[i] < holders[j] })
	return holders
}

// Name returns the role name.
func (p *RolePolicy) Name() string {
	return p.role
}

// Grant adds member to the role. The role is self-administered: only an
// existing holder may grant it.
func (p *RolePolicy) Grant(granter, member identity.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.members[granter]; !ok {
		return &UnauthorizedError{Caller: granter, Role: p.role}
	}
	if member.IsZero() {
		return &identity.ZeroAddressError{Field: "member"}
	}
	if _, ok := p.members[member]; ok {
		return fmt.Errorf("grant %s to %s: %w", p.role, member, ErrAlreadyHolder)
	}
	p.members[member] = struct{}{}
	return nil
}

// Revoke removes member from the role. Revoking the last holder is
// rejected so the privileged set is never empty.
func (p *RolePolicy) Revoke(revoker, member identity.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.members[revoker]; !ok {
		return &UnauthorizedError{Caller: revoker, Role: p.role}
	}
	if _, ok := p.members[member]; !ok {
		return fmt.Errorf("revoke %s from %s: %w", p.role, member, ErrNotHolder)
	}
	if len(p.members) == 1 {
		return fmt.Errorf("revoke %s from %s: %w", p.role, member, ErrLastHolder)
	}
	delete(p.members, member)
	return nil
}
