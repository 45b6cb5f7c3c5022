// Package registry implements the market registry: the coordination of
// credit line and liquidity pool creation through configured factories,
// and the governed in-place replacement of the registry's own logic.
//
// # Container and Logic
//
// Persistent storage (the ledger identity and per-category factory
// references) lives in the Container, the stable object callers hold a
// reference to. Behavior lives in a replaceable Logic module resolved
// through the container's active pointer. UpgradeTo validates that a
// candidate module declares the same family marker before installing it,
// so an authorized but mistaken upgrade cannot point the container at an
// unrelated implementation. State survives the swap untouched.
//
// # Creation protocol
//
// Creating a resource is a two-phase sequence: the configured factory
// builds the resource and returns its identity, then the ledger
// collaborator's registration entry point is invoked with the creator and
// that identity. The combined sequence is all-or-nothing: a registration
// failure triggers the factory's compensating Discard so no resource stays
// live in the factory's bookkeeping without being registered.
//
// # Audit trail
//
// Every state transition is appended to the Journal and fanned out to
// in-process subscribers. The journal is the sole durable record of
// registry activity.
package registry
