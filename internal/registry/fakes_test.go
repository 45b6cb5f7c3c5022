package registry

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudwalk/lending-registry/internal/access"
	"github.com/cloudwalk/lending-registry/internal/factory"
	"github.com/cloudwalk/lending-registry/internal/identity"
)

const (
	testMarket identity.Address = "market-1"
	alice      identity.Address = "alice"
	bob        identity.Address = "bob"
	carol      identity.Address = "carol"
)

// registration records one ledger registration call.
type registration struct {
	Creator  identity.Address
	Resource identity.Address
}

// fakeLedger records registrations and can be told to fail.
type fakeLedger struct {
	addr        identity.Address
	creditLines []registration
	pools       []registration
	failNext    error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{addr: testMarket}
}

func (l *fakeLedger) Address() identity.Address { return l.addr }

func (l *fakeLedger) RegisterCreditLine(_ context.Context, creator, creditLine identity.Address) error {
	if l.failNext != nil {
		err := l.failNext
		l.failNext = nil
		return err
	}
	l.creditLines = append(l.creditLines, registration{Creator: creator, Resource: creditLine})
	return nil
}

func (l *fakeLedger) RegisterLiquidityPool(_ context.Context, creator, pool identity.Address) error {
	if l.failNext != nil {
		err := l.failNext
		l.failNext = nil
		return err
	}
	l.pools = append(l.pools, registration{Creator: creator, Resource: pool})
	return nil
}

// creditLineCall records the full argument tuple the factory saw.
type creditLineCall struct {
	Market  identity.Address
	Creator identity.Address
	Token   identity.Address
	Kind    factory.Kind
	Data    []byte
}

type fakeCreditLineFactory struct {
	addr      identity.Address
	calls     []creditLineCall
	discarded []identity.Address
	next      int
	failNext  error
}

func newFakeCreditLineFactory(addr identity.Address) *fakeCreditLineFactory {
	return &fakeCreditLineFactory{addr: addr}
}

func (f *fakeCreditLineFactory) Address() identity.Address { return f.addr }

func (f *fakeCreditLineFactory) CreateCreditLine(_ context.Context, market, creator, token identity.Address, kind factory.Kind, data []byte) (identity.Address, error) {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return identity.Zero, err
	}
	f.calls = append(f.calls, creditLineCall{Market: market, Creator: creator, Token: token, Kind: kind, Data: data})
	f.next++
	return identity.Address(fmt.Sprintf("%s-cl-%d", f.addr, f.next)), nil
}

func (f *fakeCreditLineFactory) Discard(_ context.Context, resource identity.Address) error {
	f.discarded = append(f.discarded, resource)
	return nil
}

type poolCall struct {
	Market  identity.Address
	Creator identity.Address
	Kind    factory.Kind
	Data    []byte
}

type fakePoolFactory struct {
	addr      identity.Address
	calls     []poolCall
	discarded []identity.Address
	next      int
	failNext  error
}

func newFakePoolFactory(addr identity.Address) *fakePoolFactory {
	return &fakePoolFactory{addr: addr}
}

func (f *fakePoolFactory) Address() identity.Address { return f.addr }

func (f *fakePoolFactory) CreateLiquidityPool(_ context.Context, market, creator identity.Address, kind factory.Kind, data []byte) (identity.Address, error) {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return identity.Zero, err
	}
	f.calls = append(f.calls, poolCall{Market: market, Creator: creator, Kind: kind, Data: data})
	f.next++
	return identity.Address(fmt.Sprintf("%s-lp-%d", f.addr, f.next)), nil
}

func (f *fakePoolFactory) Discard(_ context.Context, resource identity.Address) error {
	f.discarded = append(f.discarded, resource)
	return nil
}

// failingStore rejects every save after the first n succeed.
type failingStore struct {
	allowed int
	saves   []Snapshot
}

func (s *failingStore) Load() (Snapshot, bool, error) { return Snapshot{}, false, nil }

func (s *failingStore) Save(snap Snapshot) error {
	if len(s.saves) >= s.allowed {
		return fmt.Errorf("disk full")
	}
	s.saves = append(s.saves, snap)
	return nil
}

// failingJournal rejects every append after the first n, delegating the
// allowed ones to an in-memory journal.
type failingJournal struct {
	inner   *MemoryJournal
	allowed int
	appends int
}

func newFailingJournal(allowed int) *failingJournal {
	return &failingJournal{inner: NewMemoryJournal(), allowed: allowed}
}

func (j *failingJournal) Append(ev Event) error {
	if j.appends >= j.allowed {
		return fmt.Errorf("journal unavailable")
	}
	j.appends++
	return j.inner.Append(ev)
}

// memoryStore is a working in-memory StateStore.
type memoryStore struct {
	snap Snapshot
	ok   bool
}

func (s *memoryStore) Load() (Snapshot, bool, error) { return s.snap, s.ok, nil }

func (s *memoryStore) Save(snap Snapshot) error {
	s.snap, s.ok = snap, true
	return nil
}

// newTestContainer builds a container owned by alice with no store.
func newTestContainer(t *testing.T) *Container {
	t.Helper()
	policy, err := access.NewOwnerPolicy(alice)
	require.NoError(t, err)
	c, err := NewContainer(Config{Gate: access.NewGate(policy)})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

// newInitializedContainer also runs Initialize against a fresh fake ledger.
func newInitializedContainer(t *testing.T) (*Container, *fakeLedger) {
	t.Helper()
	c := newTestContainer(t)
	l := newFakeLedger()
	require.NoError(t, c.Initialize(context.Background(), alice, l))
	return c, l
}
