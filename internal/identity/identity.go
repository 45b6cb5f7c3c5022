// Package identity defines the addressable identities used across the
// registry: principals subject to access control, collaborators (market
// ledger, factories), and created sub-resources.
package identity

import (
	"fmt"

	"github.com/google/uuid"
)

// Address identifies a principal, collaborator, or created resource.
// The zero value is the "unset" sentinel.
type Address string

// Zero is the unset sentinel address.
const Zero Address = ""

// New mints a fresh address with a readable prefix, e.g. "pool-5f3a...".
func New(prefix string) Address {
	return Address(prefix + "-" + uuid.NewString())
}

// IsZero reports whether the address is the unset sentinel.
func (a Address) IsZero() bool {
	return a == Zero
}

func (a Address) String() string {
	return string(a)
}

// Short returns a truncated form for log output.
func (a Address) Short() string {
	if len(a) <= 12 {
		return string(a)
	}
	return string(a[:12]) + "…"
}

// ZeroAddressError reports a zero address supplied where a concrete
// identity is required.
type ZeroAddressError struct {
	Field string
}

func (e *ZeroAddressError) Error() string {
	return fmt.Sprintf("%s address must not be zero", e.Field)
}
