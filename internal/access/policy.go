// Package access implements the authorization gate consulted by every
// mutating registry operation: who holds the privileged role, and whether
// the registry is accepting state-mutating calls at all (pause flag).
//
// Two policies are supported, chosen at initialization and fixed for the
// registry's lifetime: a single transferable owner, or a self-administered
// role held by a set of principals.
package access

import (
	"errors"
	"fmt"

	"github.com/cloudwalk/lending-registry/internal/identity"
)

var (
	// ErrAlreadyHolder is returned when granting a role to a principal
	// that already holds it.
	ErrAlreadyHolder = errors.New("principal already holds the role")

	// ErrNotHolder is returned when revoking a role from a principal
	// that does not hold it.
	ErrNotHolder = errors.New("principal does not hold the role")

	// ErrLastHolder is returned when a revocation would leave the
	// privileged role with no holders.
	ErrLastHolder = errors.New("cannot revoke the last role holder")
)

// UnauthorizedError reports a caller that lacks the privileged role.
// Role is empty under the single-owner policy.
type UnauthorizedError struct {
	Caller identity.Address
	Role   string
}

func (e *UnauthorizedError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("caller %s is not the owner", e.Caller)
	}
	return fmt.Sprintf("caller %s is missing role %s", e.Caller, e.Role)
}

// Policy answers whether a principal holds the privileged role.
type Policy interface {
	// Authorize returns an *UnauthorizedError naming the caller when the
	// caller does not hold the privileged role.
	Authorize(caller identity.Address) error

	// Holders returns the current privileged principals.
	Holders() []identity.Address

	// Name identifies the policy for status output and persistence:
	// "owner" for the single-owner policy, the role name otherwise.
	Name() string
}
