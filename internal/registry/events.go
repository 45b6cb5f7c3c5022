package registry

import (
	"sync"
	"time"

	"github.com/cloudwalk/lending-registry/internal/factory"
	"github.com/cloudwalk/lending-registry/internal/identity"
)

// EventType names a registry audit event.
type EventType string

const (
	EventInitialized          EventType = "initialized"
	EventFactoryConfigured    EventType = "factory_configured"
	EventCreditLineCreated    EventType = "credit_line_created"
	EventLiquidityPoolCreated EventType = "liquidity_pool_created"
	EventModuleUpgraded       EventType = "module_upgraded"
	EventPaused               EventType = "paused"
	EventUnpaused             EventType = "unpaused"
	EventOwnershipTransferred EventType = "ownership_transferred"
	EventRoleGranted          EventType = "role_granted"
	EventRoleRevoked          EventType = "role_revoked"
)

// Event is the journaled envelope around a typed payload. Events are the
// sole durable audit trail of registry activity; observers reconstruct the
// full creation history by filtering on the payload's creator field.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Initialized is emitted once, when the ledger is bound.
type Initialized struct {
	Market identity.Address `json:"market"`
	By     identity.Address `json:"by"`
}

// FactoryConfigured carries the new and previous factory for a category.
type FactoryConfigured struct {
	Category Category         `json:"category"`
	New      identity.Address `json:"new"`
	Old      identity.Address `json:"old"`
}

// CreditLineCreated records a successful credit line creation.
type CreditLineCreated struct {
	Market     identity.Address `json:"market"`
	Creator    identity.Address `json:"creator"`
	Token      identity.Address `json:"token"`
	Kind       factory.Kind     `json:"kind"`
	Data       []byte           `json:"data,omitempty"`
	CreditLine identity.Address `json:"credit_line"`
}

// LiquidityPoolCreated records a successful liquidity pool creation.
type LiquidityPoolCreated struct {
	Market  identity.Address `json:"market"`
	Creator identity.Address `json:"creator"`
	Kind    factory.Kind     `json:"kind"`
	Data    []byte           `json:"data,omitempty"`
	Pool    identity.Address `json:"pool"`
}

// ModuleUpgraded notifies observers of a logic replacement.
type ModuleUpgraded struct {
	Family  string `json:"family"`
	Version string `json:"version"`
}

// Paused and Unpaused record pause-flag transitions.
type Paused struct {
	By identity.Address `json:"by"`
}

type Unpaused struct {
	By identity.Address `json:"by"`
}

// OwnershipTransferred records an owner change under the single-owner
// policy.
type OwnershipTransferred struct {
	Old identity.Address `json:"old"`
	New identity.Address `json:"new"`
}

// RoleGranted and RoleRevoked record membership changes under the
// role-based policy.
type RoleGranted struct {
	Role   string           `json:"role"`
	Member identity.Address `json:"member"`
	By     identity.Address `json:"by"`
}

type RoleRevoked struct {
	Role   string           `json:"role"`
	Member identity.Address `json:"member"`
	By     identity.Address `json:"by"`
}

// Journal is the durable, append-only audit sink.
type Journal interface {
	Append(ev Event) error
}

// MemoryJournal keeps events in memory. It backs tests and deployments
// that opt out of persistence.
type MemoryJournal struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

var _ Journal = (*MemoryJournal)(nil)

// Append records an event.
func (j *MemoryJournal) Append(ev Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, ev)
	return nil
}

// Events returns a copy of the journal.
func (j *MemoryJournal) Events() []Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Event, len(j.events))
	copy(out, j.events)
	return out
}
