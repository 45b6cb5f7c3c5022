package registry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwalk/lending-registry/internal/factory"
	"github.com/cloudwalk/lending-registry/internal/identity"
)

// === Module Introspection ===

func TestLogicV1_Introspection(t *testing.T) {
	l := NewLogicV1()
	assert.Equal(t, Family, l.Family())
	assert.Equal(t, "v1", l.Version())
	assert.NoError(t, l.Init(NewState(), []byte("anything")))
}

// === ConfigureFactory ===

func TestLogicV1_ConfigureFactory(t *testing.T) {
	t.Run("first configuration returns zero old value", func(t *testing.T) {
		s := NewState()
		old, err := NewLogicV1().ConfigureFactory(s, CategoryCreditLine, "clf-1")
		require.NoError(t, err)
		assert.Equal(t, identity.Zero, old)
		assert.Equal(t, identity.Address("clf-1"), s.Factory(CategoryCreditLine))
	})

	t.Run("replacement returns previous factory", func(t *testing.T) {
		s := NewState()
		_, err := NewLogicV1().ConfigureFactory(s, CategoryCreditLine, "clf-1")
		require.NoError(t, err)

		old, err := NewLogicV1().ConfigureFactory(s, CategoryCreditLine, "clf-2")
		require.NoError(t, err)
		assert.Equal(t, identity.Address("clf-1"), old)
		assert.Equal(t, identity.Address("clf-2"), s.Factory(CategoryCreditLine))
	})

	t.Run("same value is rejected", func(t *testing.T) {
		s := NewState()
		_, err := NewLogicV1().ConfigureFactory(s, CategoryLiquidityPool, "lpf-1")
		require.NoError(t, err)

		_, err = NewLogicV1().ConfigureFactory(s, CategoryLiquidityPool, "lpf-1")
		var dup *AlreadyConfiguredError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, CategoryLiquidityPool, dup.Category)
	})

	t.Run("zero to zero is rejected", func(t *testing.T) {
		// clearing an already-clear slot is a no-op request, same dedupe rule
		s := NewState()
		_, err := NewLogicV1().ConfigureFactory(s, CategoryCreditLine, identity.Zero)
		var dup *AlreadyConfiguredError
		require.ErrorAs(t, err, &dup)
	})

	t.Run("categories are independent", func(t *testing.T) {
		s := NewState()
		_, err := NewLogicV1().ConfigureFactory(s, CategoryCreditLine, "shared")
		require.NoError(t, err)
		_, err = NewLogicV1().ConfigureFactory(s, CategoryLiquidityPool, "shared")
		require.NoError(t, err)
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		_, err := NewLogicV1().ConfigureFactory(NewState(), Category("bond"), "f-1")
		require.Error(t, err)
	})
}

// === Creation Protocol ===

func creationFixture(t *testing.T) (*State, Collaborators, *fakeLedger, *fakeCreditLineFactory, *fakePoolFactory) {
	t.Helper()
	l := newFakeLedger()
	clf := newFakeCreditLineFactory("clf-1")
	lpf := newFakePoolFactory("lpf-1")

	s := NewState()
	s.Initialized = true
	s.Ledger = l.Address()
	s.Factories[CategoryCreditLine] = clf.Address()
	s.Factories[CategoryLiquidityPool] = lpf.Address()

	return s, Collaborators{Ledger: l, CreditLines: clf, LiquidityPools: lpf}, l, clf, lpf
}

func TestLogicV1_CreateCreditLine(t *testing.T) {
	t.Run("creates then registers", func(t *testing.T) {
		s, collab, l, clf, _ := creationFixture(t)

		resource, err := NewLogicV1().CreateCreditLine(context.Background(), s, collab, bob, "token-1", 2, []byte(`{"limit":100}`))
		require.NoError(t, err)
		require.False(t, resource.IsZero())

		require.Len(t, clf.calls, 1)
		call := clf.calls[0]
		assert.Equal(t, testMarket, call.Market)
		assert.Equal(t, bob, call.Creator)
		assert.Equal(t, identity.Address("token-1"), call.Token)
		assert.Equal(t, factory.Kind(2), call.Kind)
		assert.Equal(t, []byte(`{"limit":100}`), call.Data)

		require.Len(t, l.creditLines, 1)
		assert.Equal(t, registration{Creator: bob, Resource: resource}, l.creditLines[0])
	})

	t.Run("unconfigured category fails before the factory is called", func(t *testing.T) {
		s, collab, _, clf, _ := creationFixture(t)
		s.Factories[CategoryCreditLine] = identity.Zero

		_, err := NewLogicV1().CreateCreditLine(context.Background(), s, collab, bob, "token-1", 0, nil)
		var notConfigured *FactoryNotConfiguredError
		require.ErrorAs(t, err, &notConfigured)
		assert.Empty(t, clf.calls)
	})

	t.Run("configured but unbound collaborator fails", func(t *testing.T) {
		s, collab, _, _, _ := creationFixture(t)
		collab.CreditLines = nil

		_, err := NewLogicV1().CreateCreditLine(context.Background(), s, collab, bob, "token-1", 0, nil)
		var notBound *FactoryNotBoundError
		require.ErrorAs(t, err, &notBound)
		assert.Equal(t, identity.Address("clf-1"), notBound.Factory)
	})

	t.Run("unbound ledger fails before the factory is called", func(t *testing.T) {
		s, collab, _, clf, _ := creationFixture(t)
		collab.Ledger = nil

		_, err := NewLogicV1().CreateCreditLine(context.Background(), s, collab, bob, "token-1", 0, nil)
		var notBound *LedgerNotBoundError
		require.ErrorAs(t, err, &notBound)
		assert.Equal(t, testMarket, notBound.Ledger)
		assert.Empty(t, clf.calls)
	})

	t.Run("factory failure leaves the ledger untouched", func(t *testing.T) {
		s, collab, l, clf, _ := creationFixture(t)
		clf.failNext = errors.New("collateral rejected")

		_, err := NewLogicV1().CreateCreditLine(context.Background(), s, collab, bob, "token-1", 0, nil)
		require.ErrorContains(t, err, "collateral rejected")
		assert.Empty(t, l.creditLines)
		assert.Empty(t, clf.discarded)
	})

	t.Run("registration failure discards the created resource", func(t *testing.T) {
		s, collab, l, clf, _ := creationFixture(t)
		l.failNext = errors.New("market closed")

		_, err := NewLogicV1().CreateCreditLine(context.Background(), s, collab, bob, "token-1", 0, nil)
		require.ErrorContains(t, err, "market closed")

		require.Len(t, clf.calls, 1)
		require.Len(t, clf.discarded, 1)
		assert.Empty(t, l.creditLines)
	})
}

func TestLogicV1_CreateLiquidityPool(t *testing.T) {
	t.Run("creates then registers", func(t *testing.T) {
		s, collab, l, _, lpf := creationFixture(t)

		resource, err := NewLogicV1().CreateLiquidityPool(context.Background(), s, collab, carol, 1, []byte("x"))
		require.NoError(t, err)

		require.Len(t, lpf.calls, 1)
		assert.Equal(t, poolCall{Market: testMarket, Creator: carol, Kind: 1, Data: []byte("x")}, lpf.calls[0])
		require.Len(t, l.pools, 1)
		assert.Equal(t, registration{Creator: carol, Resource: resource}, l.pools[0])
	})

	t.Run("registration failure discards the created resource", func(t *testing.T) {
		s, collab, l, _, lpf := creationFixture(t)
		l.failNext = errors.New("market closed")

		_, err := NewLogicV1().CreateLiquidityPool(context.Background(), s, collab, carol, 0, nil)
		require.ErrorContains(t, err, "market closed")
		require.Len(t, lpf.discarded, 1)
		assert.Empty(t, l.pools)
	})

	t.Run("unbound ledger fails before the factory is called", func(t *testing.T) {
		s, collab, _, _, lpf := creationFixture(t)
		collab.Ledger = nil

		_, err := NewLogicV1().CreateLiquidityPool(context.Background(), s, collab, carol, 0, nil)
		var notBound *LedgerNotBoundError
		require.ErrorAs(t, err, &notBound)
		assert.Empty(t, lpf.calls)
	})

	t.Run("unconfigured category is rejected", func(t *testing.T) {
		s, collab, _, _, _ := creationFixture(t)
		s.Factories[CategoryLiquidityPool] = identity.Zero

		_, err := NewLogicV1().CreateLiquidityPool(context.Background(), s, collab, carol, 0, nil)
		var notConfigured *FactoryNotConfiguredError
		require.ErrorAs(t, err, &notConfigured)
		assert.Equal(t, CategoryLiquidityPool, notConfigured.Category)
	})
}

// === Compensation Without Compensator ===

type plainPoolFactory struct {
	addr identity.Address
}

func (f *plainPoolFactory) Address() identity.Address { return f.addr }

func (f *plainPoolFactory) CreateLiquidityPool(context.Context, identity.Address, identity.Address, factory.Kind, []byte) (identity.Address, error) {
	return identity.Address(fmt.Sprintf("%s-lp", f.addr)), nil
}

func TestLogicV1_RegistrationFailureWithoutCompensator(t *testing.T) {
	// a factory without rollback support still surfaces the registration
	// error; there is just nothing to unwind
	s, collab, l, _, _ := creationFixture(t)
	plain := &plainPoolFactory{addr: "plain-1"}
	s.Factories[CategoryLiquidityPool] = plain.Address()
	collab.LiquidityPools = plain
	l.failNext = errors.New("market closed")

	_, err := NewLogicV1().CreateLiquidityPool(context.Background(), s, collab, carol, 0, nil)
	require.ErrorContains(t, err, "market closed")
}
