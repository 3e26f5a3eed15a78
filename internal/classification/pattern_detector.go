// Package classification suggests need or want for imported expenses by matching
// their reason against keyword patterns, and spots transfers between own accounts.
package classification

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/Veraticus/budgly/internal/model"
)

// PatternType is what a match says about a transaction.
type PatternType string

const (
	// PatternTypeNeed marks essential spending.
	PatternTypeNeed PatternType = "need"
	// PatternTypeWant marks discretionary spending.
	PatternTypeWant PatternType = "want"
	// PatternTypeTransfer marks money moving between the user's own accounts.
	PatternTypeTransfer PatternType = "transfer"
)

// Pattern is one keyword rule.
type Pattern struct {
	Name       string      `mapstructure:"name"`
	Type       PatternType `mapstructure:"type"`
	Regex      string      `mapstructure:"regex"`
	Priority   int         `mapstructure:"priority"`   // higher is checked first
	Confidence float64     `mapstructure:"confidence"` // 0.0-1.0
}

type compiledPattern struct {
	re *regexp.Regexp
	Pattern
}

// Match is the first pattern that matched a transaction.
type Match struct {
	PatternName string
	Type        PatternType
	Confidence  float64
}

// Detector classifies transactions against a prioritized pattern list.
type Detector struct {
	patterns []compiledPattern
	mu       sync.RWMutex
}

// NewDetector compiles patterns. Matching is case-insensitive.
func NewDetector(patterns []Pattern) (*Detector, error) {
	d := &Detector{}
	if err := d.UpdatePatterns(patterns); err != nil {
		return nil, err
	}
	return d, nil
}

// UpdatePatterns replaces the pattern list.
func (d *Detector) UpdatePatterns(patterns []Pattern) error {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		switch p.Type {
		case PatternTypeNeed, PatternTypeWant, PatternTypeTransfer:
		default:
			return fmt.Errorf("pattern %s: unknown type %q", p.Name, p.Type)
		}
		expr := p.Regex
		if !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}
		if p.Confidence == 0 {
			p.Confidence = 0.8
		}
		compiled = append(compiled, compiledPattern{Pattern: p, re: re})
	}

	slices.SortStableFunc(compiled, func(a, b compiledPattern) int {
		return cmp.Compare(b.Priority, a.Priority)
	})

	d.mu.Lock()
	d.patterns = compiled
	d.mu.Unlock()
	return nil
}

// Len returns the number of loaded patterns.
func (d *Detector) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.patterns)
}

// Classify returns the highest priority pattern matching txn's reason.
func (d *Detector) Classify(txn model.Transaction) (Match, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	text := strings.TrimSpace(txn.Reason)
	if text == "" {
		return Match{}, false
	}
	for _, p := range d.patterns {
		if !p.re.MatchString(text) {
			continue
		}
		confidence := p.Confidence
		// The pattern's own name appearing verbatim is a strong signal.
		if strings.Contains(strings.ToLower(text), strings.ToLower(p.Name)) {
			confidence = min(confidence+0.1, 1.0)
		}
		return Match{PatternName: p.Name, Type: p.Type, Confidence: confidence}, true
	}
	return Match{}, false
}

// Summary counts what Apply did.
type Summary struct {
	Classified int
	Transfers  int
}

// Apply fills in the necessity of uncategorized expenses whose match reaches
// minConfidence and drops transfers unless keepTransfers is set. Expenses that
// already carry a necessity and all income are left alone. txns is not modified.
func (d *Detector) Apply(txns []model.Transaction, minConfidence float64, keepTransfers bool) ([]model.Transaction, Summary) {
	var sum Summary
	out := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		m, ok := d.Classify(txn)
		if !ok || m.Confidence < minConfidence {
			out = append(out, txn)
			continue
		}
		switch m.Type {
		case PatternTypeTransfer:
			sum.Transfers++
			if !keepTransfers {
				continue
			}
		case PatternTypeNeed, PatternTypeWant:
			if txn.IsExpense() && txn.Necessity == model.NecessityNone {
				txn.Necessity = model.Necessity(m.Type)
				sum.Classified++
			}
		}
		out = append(out, txn)
	}
	return out, sum
}
