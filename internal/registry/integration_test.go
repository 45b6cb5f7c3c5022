package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwalk/lending-registry/internal/factory"
	"github.com/cloudwalk/lending-registry/internal/identity"
	"github.com/cloudwalk/lending-registry/internal/infrastructure/sqlite"
	"github.com/cloudwalk/lending-registry/internal/registry"
	"github.com/cloudwalk/lending-registry/internal/testutil"
)

// The full stack: container, SQLite snapshot store, durable journal and
// ledger, in-memory factories. Mirrors how the CLI wires a registry.
func TestRegistry_EndToEnd(t *testing.T) {
	ctx := context.Background()
	const owner identity.Address = "ops-admin"

	db := testutil.NewTestDB(t)
	h := testutil.NewHarness(t, db, owner, "market-main")

	require.NoError(t, h.Container.Initialize(ctx, owner, h.Ledger))

	clf := factory.NewInMemoryCreditLineFactory("clf-main")
	lpf := factory.NewInMemoryLiquidityPoolFactory("lpf-main")
	require.NoError(t, h.Container.ConfigureCreditLineFactory(ctx, owner, clf))
	require.NoError(t, h.Container.ConfigureLiquidityPoolFactory(ctx, owner, lpf))

	creditLine, err := h.Container.CreateCreditLine(ctx, owner, "token-brl", 1, []byte(`{"limit":5000}`))
	require.NoError(t, err)
	pool, err := h.Container.CreateLiquidityPool(ctx, owner, 2, nil)
	require.NoError(t, err)

	// the ledger is the system of record
	lines, err := h.Ledger.CreditLines(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, creditLine, lines[0].Resource)

	pools, err := h.Ledger.LiquidityPools(ctx, owner)
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, pool, pools[0].Resource)

	// the journal holds the complete audit trail in order
	records, err := h.Journal.List(sqlite.ListFilter{})
	require.NoError(t, err)
	types := make([]string, len(records))
	for i, rec := range records {
		types[i] = rec.Type
	}
	assert.Equal(t, []string{
		string(registry.EventInitialized),
		string(registry.EventFactoryConfigured),
		string(registry.EventFactoryConfigured),
		string(registry.EventCreditLineCreated),
		string(registry.EventLiquidityPoolCreated),
	}, types)

	// restart: a fresh container on the same database resumes where the
	// old one stopped
	restarted := testutil.NewHarness(t, db, owner, "market-main")
	snap := restarted.Container.Status()
	require.True(t, snap.Initialized)
	assert.Equal(t, identity.Address("clf-main"), snap.CreditLineFactory)

	require.NoError(t, restarted.Container.BindLedger(restarted.Ledger))
	require.NoError(t, restarted.Container.BindCreditLineFactory(clf))

	second, err := restarted.Container.CreateCreditLine(ctx, owner, "token-usd", 1, nil)
	require.NoError(t, err)
	assert.NotEqual(t, creditLine, second)

	lines, err = restarted.Ledger.CreditLines(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}
