// Package layout owns the user's ordering and visibility of dashboard cards.
//
// The stored layout is the source of truth. The reconciler merges it against the
// set of card ids the running build knows about: unknown stored ids are kept but
// never shown, and known ids missing from storage are appended visible at the end.
package layout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Veraticus/budgly/internal/model"
	"github.com/Veraticus/budgly/internal/notify"
)

var (
	// ErrInvalidReorder is returned when a reorder names the same card twice.
	ErrInvalidReorder = errors.New("invalid reorder")
	// ErrUnknownCard is returned when an id is not in the registry.
	ErrUnknownCard = errors.New("unknown dashboard card")
)

// Store loads and saves the whole layout as one unit.
type Store interface {
	Load(ctx context.Context) ([]model.LayoutEntry, error)
	Save(ctx context.Context, entries []model.LayoutEntry) error
}

// Watcher is implemented by stores that can report changes made elsewhere,
// for example by another process sharing the same database.
type Watcher interface {
	Watch(fn func()) (cancel func())
}

// Reconciler serializes every read-modify-write of the layout.
type Reconciler struct {
	store     Store
	changes   *notify.Hub[[]string]
	known     map[string]struct{}
	stopWatch func()
	knownIDs  []string
	entries   []model.LayoutEntry
	mu        sync.Mutex
	closeOnce sync.Once
}

// New loads the stored layout and appends any known id it does not mention.
// knownIDs is the registry's card set in default order.
func New(ctx context.Context, store Store, knownIDs []string) (*Reconciler, error) {
	r := &Reconciler{
		store:    store,
		changes:  notify.NewHub[[]string](),
		known:    make(map[string]struct{}, len(knownIDs)),
		knownIDs: append([]string(nil), knownIDs...),
	}
	for _, id := range knownIDs {
		r.known[id] = struct{}{}
	}

	if err := r.load(ctx); err != nil {
		return nil, err
	}

	if w, ok := store.(Watcher); ok {
		// Stores may notify while a save is still in flight, so refresh off the caller's goroutine.
		r.stopWatch = w.Watch(func() {
			go func() {
				if err := r.Refresh(context.Background()); err != nil {
					slog.Warn("Failed to refresh dashboard layout", "error", err)
				}
			}()
		})
	}
	return r, nil
}

// Default returns the layout used when nothing is stored: every id visible in registry order.
func Default(ids []string) []model.LayoutEntry {
	entries := make([]model.LayoutEntry, len(ids))
	for i, id := range ids {
		entries[i] = model.LayoutEntry{ID: id, Order: i, Visible: true}
	}
	return entries
}

func (r *Reconciler) load(ctx context.Context) error {
	stored, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dashboard layout: %w", err)
	}

	merged, added := merge(stored, r.knownIDs)
	if added > 0 {
		slog.Debug("Appended new dashboard cards to layout", "count", added)
		if err := r.store.Save(ctx, merged); err != nil {
			return fmt.Errorf("failed to save dashboard layout: %w", err)
		}
	}

	r.mu.Lock()
	r.entries = merged
	r.mu.Unlock()
	return nil
}

// merge appends every known id missing from stored, visible, after the current maximum order.
func merge(stored []model.LayoutEntry, knownIDs []string) ([]model.LayoutEntry, int) {
	if len(stored) == 0 {
		return Default(knownIDs), len(knownIDs)
	}

	out := make([]model.LayoutEntry, 0, len(stored)+len(knownIDs))
	seen := make(map[string]struct{}, len(stored))
	next := 0
	for _, e := range stored {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
		if e.Order >= next {
			next = e.Order + 1
		}
	}

	added := 0
	for _, id := range knownIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		out = append(out, model.LayoutEntry{ID: id, Order: next, Visible: true})
		next++
		added++
	}
	return out, added
}

// OrderedVisibleIDs returns the ids to render, in render order.
// Stored ids the registry does not know are skipped.
func (r *Reconciler) OrderedVisibleIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orderedVisibleLocked()
}

func (r *Reconciler) orderedVisibleLocked() []string {
	visible := make([]model.LayoutEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if !e.Visible {
			continue
		}
		if _, ok := r.known[e.ID]; !ok {
			slog.Debug("Skipping unknown dashboard card", "id", e.ID)
			continue
		}
		visible = append(visible, e)
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].Order < visible[j].Order })

	ids := make([]string, len(visible))
	for i, e := range visible {
		ids[i] = e.ID
	}
	return ids
}

// Entries returns a copy of the full stored layout including hidden and unknown ids.
func (r *Reconciler) Entries() []model.LayoutEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.LayoutEntry(nil), r.entries...)
}

// Reorder assigns new orders to the given ids, which are the visible cards in their
// new sequence. The cards keep the slots they occupied before, so hidden and unknown
// entries do not move. Ids not in the layout are ignored.
func (r *Reconciler) Reorder(ctx context.Context, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate card %q", ErrInvalidReorder, id)
		}
		seen[id] = struct{}{}
	}

	return r.update(ctx, func(entries []model.LayoutEntry) bool {
		changed := renumberTies(entries)

		index := make(map[string]int, len(entries))
		for i, e := range entries {
			index[e.ID] = i
		}

		var positions []int
		var slots []int
		for _, id := range ids {
			i, ok := index[id]
			if !ok {
				continue
			}
			positions = append(positions, i)
			slots = append(slots, entries[i].Order)
		}
		if len(positions) == 0 {
			return changed
		}
		sort.Ints(slots)

		for n, i := range positions {
			if entries[i].Order != slots[n] {
				entries[i].Order = slots[n]
				changed = true
			}
		}
		return changed
	})
}

// renumberTies gives every entry a distinct order when two entries share one,
// keeping the current render order. It reports whether anything changed.
func renumberTies(entries []model.LayoutEntry) bool {
	seen := make(map[int]struct{}, len(entries))
	tied := false
	for _, e := range entries {
		if _, dup := seen[e.Order]; dup {
			tied = true
			break
		}
		seen[e.Order] = struct{}{}
	}
	if !tied {
		return false
	}

	byOrder := make([]int, len(entries))
	for i := range byOrder {
		byOrder[i] = i
	}
	sort.SliceStable(byOrder, func(a, b int) bool { return entries[byOrder[a]].Order < entries[byOrder[b]].Order })
	for n, i := range byOrder {
		entries[i].Order = n
	}
	return true
}

// SetVisible shows or hides a card.
func (r *Reconciler) SetVisible(ctx context.Context, id string, visible bool) error {
	if _, ok := r.known[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCard, id)
	}
	return r.update(ctx, func(entries []model.LayoutEntry) bool {
		for i := range entries {
			if entries[i].ID == id && entries[i].Visible != visible {
				entries[i].Visible = visible
				return true
			}
		}
		return false
	})
}

// Reset restores the default layout. Stored ids the registry does not know are dropped.
func (r *Reconciler) Reset(ctx context.Context) error {
	r.mu.Lock()
	defaults := Default(r.knownIDs)
	if err := r.store.Save(ctx, defaults); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("failed to save dashboard layout: %w", err)
	}
	r.entries = defaults
	ids := r.orderedVisibleLocked()
	r.mu.Unlock()

	r.changes.Publish(ids)
	return nil
}

// update runs fn on a copy of the layout and saves it when fn reports a change.
// The in-memory layout is only replaced after a successful save.
func (r *Reconciler) update(ctx context.Context, fn func([]model.LayoutEntry) bool) error {
	r.mu.Lock()
	next := append([]model.LayoutEntry(nil), r.entries...)
	if !fn(next) {
		r.mu.Unlock()
		return nil
	}
	if err := r.store.Save(ctx, next); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("failed to save dashboard layout: %w", err)
	}
	r.entries = next
	ids := r.orderedVisibleLocked()
	r.mu.Unlock()

	r.changes.Publish(ids)
	return nil
}

// Refresh reloads the layout from the store, typically after an external change.
// The load happens under the lock so a refresh never overwrites a newer local save.
func (r *Reconciler) Refresh(ctx context.Context) error {
	r.mu.Lock()
	stored, err := r.store.Load(ctx)
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("failed to load dashboard layout: %w", err)
	}
	merged, _ := merge(stored, r.knownIDs)
	if equalEntries(r.entries, merged) {
		r.mu.Unlock()
		return nil
	}
	r.entries = merged
	ids := r.orderedVisibleLocked()
	r.mu.Unlock()

	r.changes.Publish(ids)
	return nil
}

// Subscribe registers fn to receive the new ordered visible ids after every change.
func (r *Reconciler) Subscribe(fn func(ids []string)) (unsubscribe func()) {
	return r.changes.Subscribe(fn)
}

// Close stops watching the store.
func (r *Reconciler) Close() {
	r.closeOnce.Do(func() {
		if r.stopWatch != nil {
			r.stopWatch()
		}
	})
}

func equalEntries(a, b []model.LayoutEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
