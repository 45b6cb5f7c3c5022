// Package testutil provides test helpers for wiring a registry container
// against a real SQLite database.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwalk/lending-registry/internal/access"
	"github.com/cloudwalk/lending-registry/internal/identity"
	"github.com/cloudwalk/lending-registry/internal/infrastructure/sqlite"
	"github.com/cloudwalk/lending-registry/internal/registry"
)

// NewTestDB opens a registry database in a per-test temp directory.
// The caller does not need to close it; cleanup is registered on t.
func NewTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Harness bundles a container with its durable collaborators.
type Harness struct {
	DB        *sqlite.DB
	Container *registry.Container
	Ledger    *sqlite.LedgerRepository
	Journal   *sqlite.JournalRepository
}

// NewHarness builds an owner-gated container persisted on db. The
// container is not initialized; call Initialize with the harness ledger.
func NewHarness(t *testing.T, db *sqlite.DB, owner, market identity.Address) *Harness {
	t.Helper()

	policy, err := access.NewOwnerPolicy(owner)
	require.NoError(t, err)

	ledger, err := sqlite.NewLedgerRepository(db, market)
	require.NoError(t, err)

	journal := sqlite.NewJournalRepository(db)
	container, err := registry.NewContainer(registry.Config{
		Gate:    access.NewGate(policy),
		Journal: journal,
		Store:   sqlite.NewStateRepository(db),
	})
	require.NoError(t, err)
	t.Cleanup(container.Close)

	return &Harness{DB: db, Container: container, Ledger: ledger, Journal: journal}
}
