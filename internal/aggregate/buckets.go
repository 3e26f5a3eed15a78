package aggregate

import (
	"sort"
	"strings"

	"github.com/Veraticus/budgly/internal/model"
)

// Bucket is one group of an aggregation: the display label and its value.
type Bucket struct {
	Label string  `json:"name"`
	Value float64 `json:"value"`
}

// Buckets is an ordered, read-only grouping result. Order is first-seen order
// over the input; the label is the casing of the first transaction in the group.
type Buckets struct {
	index   map[string]int
	entries []Bucket
}

// AggregateByKey sums amounts per key. Keys that differ only in case share a bucket.
func AggregateByKey(txns []model.Transaction, key func(model.Transaction) string) Buckets {
	return group(txns, key, func(t model.Transaction) float64 { return t.Amount })
}

// CountByKey counts transactions per key using the same case-insensitive rule.
func CountByKey(txns []model.Transaction, key func(model.Transaction) string) Buckets {
	return group(txns, key, func(model.Transaction) float64 { return 1 })
}

func group(txns []model.Transaction, key func(model.Transaction) string, value func(model.Transaction) float64) Buckets {
	b := Buckets{index: make(map[string]int)}
	for _, t := range txns {
		label := key(t)
		norm := strings.ToLower(label)
		i, ok := b.index[norm]
		if !ok {
			i = len(b.entries)
			b.index[norm] = i
			b.entries = append(b.entries, Bucket{Label: label})
		}
		b.entries[i].Value += value(t)
	}
	return b
}

// Len returns the number of buckets.
func (b Buckets) Len() int { return len(b.entries) }

// At returns the i-th bucket in first-seen order.
func (b Buckets) At(i int) Bucket { return b.entries[i] }

// Get looks a bucket up by label, ignoring case.
func (b Buckets) Get(label string) (Bucket, bool) {
	i, ok := b.index[strings.ToLower(label)]
	if !ok {
		return Bucket{}, false
	}
	return b.entries[i], true
}

// Entries returns a copy of the buckets in first-seen order.
func (b Buckets) Entries() []Bucket {
	out := make([]Bucket, len(b.entries))
	copy(out, b.entries)
	return out
}

// Map returns a fresh label to value map.
func (b Buckets) Map() map[string]float64 {
	out := make(map[string]float64, len(b.entries))
	for _, e := range b.entries {
		out[e.Label] = e.Value
	}
	return out
}

// Ranked returns buckets sorted by value, largest first, keeping first-seen order
// between equal values. A limit of zero or less returns all buckets.
func (b Buckets) Ranked(limit int) []Bucket {
	out := b.Entries()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Top returns the largest bucket, preferring the first seen on ties.
func (b Buckets) Top() (Bucket, bool) {
	if len(b.entries) == 0 {
		return Bucket{}, false
	}
	best := b.entries[0]
	for _, e := range b.entries[1:] {
		if e.Value > best.Value {
			best = e
		}
	}
	return best, true
}
