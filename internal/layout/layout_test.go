package layout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	saveErr error
	hub     *notify.Hub[struct{}]
	entries []model.LayoutEntry
	saves   int
	mu      sync.Mutex
}

func newMemStore(entries ...model.LayoutEntry) *memStore {
	return &memStore{entries: entries, hub: notify.NewHub[struct{}]()}
}

func (m *memStore) Load(context.Context) ([]model.LayoutEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.LayoutEntry(nil), m.entries...), nil
}

func (m *memStore) Save(_ context.Context, entries []model.LayoutEntry) error {
	m.mu.Lock()
	if m.saveErr != nil {
		m.mu.Unlock()
		return m.saveErr
	}
	m.entries = append([]model.LayoutEntry(nil), entries...)
	m.saves++
	m.mu.Unlock()
	m.hub.Publish(struct{}{})
	return nil
}

func (m *memStore) Watch(fn func()) func() {
	return m.hub.Subscribe(func(struct{}) { fn() })
}

func (m *memStore) stored() []model.LayoutEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.LayoutEntry(nil), m.entries...)
}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func entry(id string, order int, visible bool) model.LayoutEntry {
	return model.LayoutEntry{ID: id, Order: order, Visible: visible}
}

func orders(entries []model.LayoutEntry) map[string]int {
	out := make(map[string]int, len(entries))
	for _, e := range entries {
		out[e.ID] = e.Order
	}
	return out
}

func TestReorder_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(entry("A", 0, true), entry("B", 1, true), entry("C", 2, true))
	r, err := New(ctx, store, []string{"A", "B", "C"})
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Reorder(ctx, []string{"C", "A", "B"}))

	assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 0}, orders(r.Entries()))
	assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 0}, orders(store.stored()))
	assert.Equal(t, []string{"C", "A", "B"}, r.OrderedVisibleIDs())
}

func TestReorder_LeavesHiddenAndUnknownEntriesAlone(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(
		entry("A", 0, true),
		entry("hidden", 1, false),
		entry("B", 2, true),
		entry("retired", 3, true),
		entry("C", 4, true),
	)
	r, err := New(ctx, store, []string{"A", "B", "C", "hidden"})
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Reorder(ctx, []string{"C", "B", "A"}))

	got := r.Entries()
	assert.Equal(t, map[string]int{"A": 4, "hidden": 1, "B": 2, "retired": 3, "C": 0}, orders(got))
	for _, e := range got {
		if e.ID == "hidden" {
			assert.False(t, e.Visible)
		}
	}
	assert.Equal(t, []string{"C", "B", "A"}, r.OrderedVisibleIDs())
}

func TestReorder_RejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(entry("A", 0, true), entry("B", 1, true))
	r, err := New(ctx, store, []string{"A", "B"})
	require.NoError(t, err)

	err = r.Reorder(ctx, []string{"A", "A"})
	require.ErrorIs(t, err, ErrInvalidReorder)
	assert.Equal(t, []string{"A", "B"}, r.OrderedVisibleIDs())
}

func TestReorder_IgnoresUnknownIDs(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(entry("A", 0, true), entry("B", 1, true))
	r, err := New(ctx, store, []string{"A", "B"})
	require.NoError(t, err)
	before := store.saveCount()

	require.NoError(t, r.Reorder(ctx, []string{"ghost"}))
	assert.Equal(t, before, store.saveCount())

	require.NoError(t, r.Reorder(ctx, []string{"B", "ghost", "A"}))
	assert.Equal(t, []string{"B", "A"}, r.OrderedVisibleIDs())
}

func TestReorder_TiedStoredOrders(t *testing.T) {
	tests := []struct {
		name    string
		stored  []model.LayoutEntry
		reorder []string
		want    []string
	}{
		{
			name:    "tie at the front",
			stored:  []model.LayoutEntry{entry("A", 1, true), entry("B", 1, true), entry("C", 2, true)},
			reorder: []string{"B", "A", "C"},
			want:    []string{"B", "A", "C"},
		},
		{
			name:    "all tied",
			stored:  []model.LayoutEntry{entry("A", 0, true), entry("B", 0, true), entry("C", 0, true)},
			reorder: []string{"C", "B", "A"},
			want:    []string{"C", "B", "A"},
		},
		{
			name:    "tie with a hidden card",
			stored:  []model.LayoutEntry{entry("A", 0, true), entry("hidden", 1, false), entry("B", 1, true)},
			reorder: []string{"B", "A"},
			want:    []string{"B", "A"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := newMemStore(tt.stored...)
			ids := make([]string, 0, len(tt.stored))
			for _, e := range tt.stored {
				ids = append(ids, e.ID)
			}
			r, err := New(ctx, store, ids)
			require.NoError(t, err)
			defer r.Close()

			require.NoError(t, r.Reorder(ctx, tt.reorder))
			assert.Equal(t, tt.want, r.OrderedVisibleIDs())

			stored := store.stored()
			seen := make(map[int]bool, len(stored))
			for _, e := range stored {
				assert.False(t, seen[e.Order], "order %d is shared", e.Order)
				seen[e.Order] = true
			}

			reloaded, err := New(ctx, store, ids)
			require.NoError(t, err)
			defer reloaded.Close()
			assert.Equal(t, tt.want, reloaded.OrderedVisibleIDs())
		})
	}
}

func TestReorder_FailedSaveKeepsState(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(entry("A", 0, true), entry("B", 1, true))
	r, err := New(ctx, store, []string{"A", "B"})
	require.NoError(t, err)

	store.mu.Lock()
	store.saveErr = errors.New("disk full")
	store.mu.Unlock()

	require.Error(t, r.Reorder(ctx, []string{"B", "A"}))
	assert.Equal(t, []string{"A", "B"}, r.OrderedVisibleIDs())
}

func TestNew_UpgradeTolerance(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(entry("A", 0, true), entry("retired", 1, true), entry("B", 5, true))

	r, err := New(ctx, store, []string{"A", "B", "new1", "new2"})
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"A", "B", "new1", "new2"}, r.OrderedVisibleIDs())

	stored := store.stored()
	assert.Equal(t, map[string]int{"A": 0, "retired": 1, "B": 5, "new1": 6, "new2": 7}, orders(stored))
	assert.Equal(t, 1, store.saveCount())
}

func TestNew_EmptyStoreGetsDefaults(t *testing.T) {
	store := newMemStore()

	r, err := New(context.Background(), store, []string{"x", "y", "z"})
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y", "z"}, r.OrderedVisibleIDs())
	assert.Equal(t, Default([]string{"x", "y", "z"}), store.stored())
}

func TestNew_NoSaveWhenNothingAdded(t *testing.T) {
	store := newMemStore(entry("A", 0, true))

	_, err := New(context.Background(), store, []string{"A"})
	require.NoError(t, err)

	assert.Equal(t, 0, store.saveCount())
}

func TestSetVisible(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(entry("A", 0, true), entry("B", 1, true), entry("C", 2, true))
	r, err := New(ctx, store, []string{"A", "B", "C"})
	require.NoError(t, err)

	require.NoError(t, r.SetVisible(ctx, "B", false))
	assert.Equal(t, []string{"A", "C"}, r.OrderedVisibleIDs())

	require.NoError(t, r.SetVisible(ctx, "B", true))
	assert.Equal(t, []string{"A", "B", "C"}, r.OrderedVisibleIDs())

	assert.ErrorIs(t, r.SetVisible(ctx, "ghost", true), ErrUnknownCard)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(entry("B", 0, true), entry("A", 1, false), entry("retired", 2, true))
	r, err := New(ctx, store, []string{"A", "B"})
	require.NoError(t, err)

	require.NoError(t, r.Reset(ctx))

	assert.Equal(t, []string{"A", "B"}, r.OrderedVisibleIDs())
	assert.Equal(t, Default([]string{"A", "B"}), store.stored())
}

func TestSubscribe_ReceivesNewOrder(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(entry("A", 0, true), entry("B", 1, true))
	r, err := New(ctx, store, []string{"A", "B"})
	require.NoError(t, err)
	defer r.Close()

	var mu sync.Mutex
	var got [][]string
	unsubscribe := r.Subscribe(func(ids []string) {
		mu.Lock()
		got = append(got, ids)
		mu.Unlock()
	})

	require.NoError(t, r.Reorder(ctx, []string{"B", "A"}))
	unsubscribe()
	require.NoError(t, r.Reorder(ctx, []string{"A", "B"}))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, [][]string{{"B", "A"}}, got)
}

func TestWatch_PicksUpExternalChanges(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(entry("A", 0, true), entry("B", 1, true))
	r, err := New(ctx, store, []string{"A", "B"})
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, store.Save(ctx, []model.LayoutEntry{entry("A", 1, true), entry("B", 0, true)}))

	assert.Eventually(t, func() bool {
		ids := r.OrderedVisibleIDs()
		return len(ids) == 2 && ids[0] == "B"
	}, time.Second, 10*time.Millisecond)
}

func TestConcurrentReorders(t *testing.T) {
	ctx := context.Background()
	ids := []string{"A", "B", "C", "D"}
	store := newMemStore()
	r, err := New(ctx, store, ids)
	require.NoError(t, err)
	defer r.Close()

	sequences := [][]string{
		{"D", "C", "B", "A"},
		{"B", "A", "D", "C"},
		{"C", "D", "A", "B"},
	}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(seq []string) {
			defer wg.Done()
			assert.NoError(t, r.Reorder(ctx, seq))
		}(sequences[i%len(sequences)])
	}
	wg.Wait()

	got := orders(r.Entries())
	seen := make(map[int]bool)
	for _, o := range got {
		assert.False(t, seen[o], "orders must stay a permutation")
		seen[o] = true
	}
	assert.Len(t, seen, len(ids))
}
