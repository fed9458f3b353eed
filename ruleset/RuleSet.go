// Package ruleset implements the ordered rule list a chain mutates
// during search: CapturedRule entries with precomputed, pairwise
// disjoint capture bitvectors, and the add/delete/swap/backup/restore
// operations spec.md §4.1 contracts.
package ruleset

import (
	"fmt"

	"github.com/hollowcreek/bayeslist/bitset"
	"github.com/hollowcreek/bayeslist/rule"
	xrand "golang.org/x/exp/rand"
)

// CapturedRule is a single RuleSet entry: the rule placed at this
// position, and the samples it captures there (fired by this rule and
// not captured by any earlier position).
type CapturedRule struct {
	RuleID    int
	Captures  bitset.Set
	NCaptured int
}

// RuleSet is an ordered, non-empty sequence of CapturedRule ending in
// the default rule (rule.DefaultID). Capture bitvectors are pairwise
// disjoint and their union is the full sample set.
type RuleSet struct {
	Entries  []CapturedRule
	NSamples int
}

// NRules returns the number of positions in the list, including the
// default rule.
func (rs *RuleSet) NRules() int { return len(rs.Entries) }

// CreateRandom builds a RuleSet of initSize distinct non-default rules
// in random order, terminated by the default rule, with captures
// derived from the chosen order (spec.md §4.1).
func CreateRandom(initSize int, data *rule.Dataset, rng *xrand.Rand) (*RuleSet, error) {
	if initSize < 1 || initSize > data.NRules {
		return nil, fmt.Errorf("createRandom: init_size %d out of range [1, %d]", initSize, data.NRules)
	}

	order := rng.Perm(data.NRules)[:initSize]
	rs := &RuleSet{
		Entries:  make([]CapturedRule, initSize+1),
		NSamples: data.NSamples,
	}
	for i, idx := range order {
		rs.Entries[i] = CapturedRule{RuleID: data.Rules[idx].ID}
	}
	rs.Entries[initSize] = CapturedRule{RuleID: rule.DefaultID}

	if err := rs.rederive(0, data); err != nil {
		return nil, fmt.Errorf("createRandom: %w", err)
	}
	return rs, nil
}

// Copy returns a deep copy of rs, including its bitvectors.
func (rs *RuleSet) Copy() *RuleSet {
	entries := make([]CapturedRule, len(rs.Entries))
	for i, e := range rs.Entries {
		entries[i] = CapturedRule{
			RuleID:    e.RuleID,
			Captures:  e.Captures.Clone(),
			NCaptured: e.NCaptured,
		}
	}
	return &RuleSet{Entries: entries, NSamples: rs.NSamples}
}

// Destroy releases rs's bitvectors. Go's GC makes this unnecessary for
// memory safety, but it is kept to mirror the BitCaptureOps ownership
// contract in spec.md §4.1/§5 and to make double-use of a destroyed
// RuleSet fail loudly rather than silently.
func (rs *RuleSet) Destroy() {
	rs.Entries = nil
}

// Add inserts ruleID at position, which must be in [0, NRules()-1];
// inserting at NRules()-1 places the rule just before the default,
// which always stays last. Captures are re-derived for position and
// everything after it.
func (rs *RuleSet) Add(ruleID, position int, data *rule.Dataset) error {
	if position < 0 || position >= len(rs.Entries) {
		return fmt.Errorf("add: position %d out of range [0, %d)", position, len(rs.Entries))
	}
	entries := make([]CapturedRule, 0, len(rs.Entries)+1)
	entries = append(entries, rs.Entries[:position]...)
	entries = append(entries, CapturedRule{RuleID: ruleID})
	entries = append(entries, rs.Entries[position:]...)
	rs.Entries = entries

	if err := rs.rederive(position, data); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// Delete removes the non-default entry at position and re-derives
// captures for position and everything after it. Delete cannot fail on
// allocation (spec.md §4.1) but can still report an invalid position,
// and refuses to shrink rs below the n_rules >= 2 invariant (at least
// one real rule plus the default, spec.md §3).
func (rs *RuleSet) Delete(position int, data *rule.Dataset) error {
	if len(rs.Entries) <= 2 {
		return fmt.Errorf("delete: ruleset already at the minimum size of 2 (1 rule + default)")
	}
	if position < 0 || position >= len(rs.Entries)-1 {
		return fmt.Errorf("delete: position %d out of range [0, %d)", position, len(rs.Entries)-1)
	}
	rs.Entries = append(rs.Entries[:position], rs.Entries[position+1:]...)

	if err := rs.rederive(position, data); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// SwapAny exchanges the non-default entries at positions i and j and
// re-derives captures from min(i, j) onward.
func (rs *RuleSet) SwapAny(i, j int, data *rule.Dataset) error {
	last := len(rs.Entries) - 1
	if i == j || i < 0 || j < 0 || i >= last || j >= last {
		return fmt.Errorf("swapAny: invalid non-default indices i=%d j=%d (n_rules=%d)", i, j, len(rs.Entries))
	}
	rs.Entries[i].RuleID, rs.Entries[j].RuleID = rs.Entries[j].RuleID, rs.Entries[i].RuleID

	from := i
	if j < from {
		from = j
	}
	if err := rs.rederive(from, data); err != nil {
		return fmt.Errorf("swapAny: %w", err)
	}
	return nil
}

// Backup returns the ordered rule ids of rs, the cheap representation
// kept as "best so far" (spec.md §3).
func (rs *RuleSet) Backup() []int {
	ids := make([]int, len(rs.Entries))
	for i, e := range rs.Entries {
		ids[i] = e.RuleID
	}
	return ids
}

// Restore rematerializes a RuleSet from a backed-up rule-id list.
func Restore(ids []int, data *rule.Dataset) (*RuleSet, error) {
	if len(ids) == 0 || ids[len(ids)-1] != rule.DefaultID {
		return nil, fmt.Errorf("restore: id list must end in the default rule")
	}
	rs := &RuleSet{
		Entries:  make([]CapturedRule, len(ids)),
		NSamples: data.NSamples,
	}
	for i, id := range ids {
		rs.Entries[i] = CapturedRule{RuleID: id}
	}
	if err := rs.rederive(0, data); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	return rs, nil
}

// rederive recomputes Captures/NCaptured for every position at and
// after from, leaving earlier positions untouched. data is consulted
// only for non-default positions, so it may be nil when
// from >= len(rs.Entries)-1.
func (rs *RuleSet) rederive(from int, data *rule.Dataset) error {
	union := bitset.New(rs.NSamples)
	for i := 0; i < from; i++ {
		union.OrInPlace(rs.Entries[i].Captures)
	}

	last := len(rs.Entries) - 1
	for i := from; i <= last; i++ {
		id := rs.Entries[i].RuleID
		var captures bitset.Set
		if i == last {
			if id != rule.DefaultID {
				return fmt.Errorf("rederive: position %d must hold the default rule, found id %d", i, id)
			}
			captures = union.Complement()
		} else {
			r, ok := data.RuleByID(id)
			if !ok {
				return fmt.Errorf("rederive: unknown rule id %d", id)
			}
			captures = r.Truthtable.AndNot(union)
		}
		rs.Entries[i].Captures = captures
		rs.Entries[i].NCaptured = captures.PopCount()
		union.OrInPlace(captures)
	}
	return nil
}
