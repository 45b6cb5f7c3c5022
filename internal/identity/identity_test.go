package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_UsesPrefix(t *testing.T) {
	addr := New("credit-line")

	require.False(t, addr.IsZero())
	require.Contains(t, addr.String(), "credit-line-")
}

func TestNew_IsUnique(t *testing.T) {
	seen := make(map[Address]bool)
	for range 100 {
		addr := New("pool")
		require.False(t, seen[addr])
		seen[addr] = true
	}
}

func TestZero_IsZero(t *testing.T) {
	require.True(t, Zero.IsZero())
	require.False(t, Address("owner-1").IsZero())
}

func TestShort_TruncatesLongAddresses(t *testing.T) {
	require.Equal(t, "short", Address("short").Short())

	long := New("liquidity-pool")
	require.Len(t, []rune(long.Short()), 13)
}

func TestZeroAddressError_NamesField(t *testing.T) {
	err := &ZeroAddressError{Field: "ledger"}
	require.Equal(t, "ledger address must not be zero", err.Error())
}
