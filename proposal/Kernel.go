// Package proposal implements the move kernel that picks a mutation
// kind and indices from the current RuleSet, and the Hastings jump
// ratio for that move (spec.md §4.4). A tagged Move variant is used in
// place of the source's character tag, per spec.md §9.
package proposal

import (
	"fmt"

	"github.com/hollowcreek/bayeslist/ruleset"
	"golang.org/x/exp/rand"
)

// Kind identifies a move's shape.
type Kind int

const (
	Swap Kind = iota
	Add
	Delete
)

func (k Kind) String() string {
	switch k {
	case Swap:
		return "Swap"
	case Add:
		return "Add"
	case Delete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// Move is the outcome of one kernel draw: a move kind, the indices or
// rule id it operates on, and the Hastings jump ratio to correct for
// asymmetric proposal probabilities.
type Move struct {
	Kind      Kind
	Idx1      int // Swap: i.            Add: insert position.    Delete: position.
	Idx2      int // Swap: j.            unused otherwise.
	RuleID    int // Add: the rule id to insert. unused otherwise.
	JumpRatio float64
}

// Next draws a move for a RuleSet of size m = rs.NRules() (including
// the default) against a pool of nrules candidate rules, per the regime
// table in spec.md §4.4.
func Next(rs *ruleset.RuleSet, nrules int, rng *rand.Rand) (Move, error) {
	m := rs.NRules()
	if m < 2 {
		return Move{}, fmt.Errorf("proposal.Next: ruleset must have at least 2 entries, got %d", m)
	}

	pSwap, pAdd, baseS, baseA, baseD := regime(m, nrules)

	u := rng.Float64()
	switch {
	case u < pSwap:
		return swapMove(rs, baseS, rng)
	case u < pSwap+pAdd:
		return addMove(rs, nrules, baseA, rng)
	default:
		return deleteMove(rs, nrules, baseD, rng)
	}
}

// regime returns P(Swap), P(Add) (P(Delete) = 1 - the two) and the
// jump-ratio bases for the current list size m against pool size
// nrules, per the table in spec.md §4.4. P(Delete) is implicit from
// the complement so that the three probabilities always sum to 1
// exactly in floating point.
//
// The table names m == nrules-1 as the point where P(Add) drops to
// zero (2 unused rules left), but leaves every m beyond that to
// "otherwise", where base_A = base_D = 1. Two of those fall-throughs
// produce an invalid Hastings ratio rather than just an unlikely one:
//   - m == nrules: addMove's jump_ratio = base_A*(nrules-1-m) is
//     -base_A, negative for any positive base_A, since there is exactly
//     one unused rule left.
//   - m == nrules+1: deleteMove's jump_ratio = base_D*(nrules-m) is -1
//     for the same reason in the other direction (zero unused rules).
// m == nrules reuses the m == nrules-1 regime: P(Add) stays zero
// (sidestepping the broken Add formula) and deleteMove's jump_ratio
// there is base_D*(nrules-m) = 0, which is conservative (Metropolis
// never accepts a zero jump ratio) but not invalid. m == nrules+1 (the
// list uses every rule in the pool) allows only Swap, since both Add
// and Delete have broken jump-ratio formulas at full saturation and
// Swap's base_S is a constant, unaffected by m.
//
// Symmetrically, the table gives m == 2 a 0.5 chance of Delete, but
// deleting the single non-default rule at m == 2 would shrink the list
// below the n_rules >= 2 invariant (at least one real rule plus the
// default). P(Delete) is zeroed there and folded into P(Add), matching
// how m == 1 is handled.
func regime(m, nrules int) (pSwap, pAdd, baseS, baseA, baseD float64) {
	switch {
	case m == 1:
		return 0, 1, 0, 0.5, 0
	case m == 2:
		return 0, 1, 0, 2.0 / 3.0, 2
	case m == nrules+1:
		return 1, 0, 1, 0, 0
	case m == nrules-1, m == nrules:
		return 0.5, 0, 1, 0, 2.0 / 3.0
	case m == nrules-2:
		return 1.0 / 3.0, 1.0 / 3.0, 1, 1.5, 1
	default:
		return 1.0 / 3.0, 1.0 / 3.0, 1, 1, 1
	}
}

func swapMove(rs *ruleset.RuleSet, baseS float64, rng *rand.Rand) (Move, error) {
	last := rs.NRules() - 1
	if last < 2 {
		return Move{}, fmt.Errorf("proposal.swapMove: need at least 2 non-default positions, have %d", last)
	}
	i := rng.Intn(last)
	j := rng.Intn(last - 1)
	if j >= i {
		j++
	}
	return Move{Kind: Swap, Idx1: i, Idx2: j, JumpRatio: baseS}, nil
}

func addMove(rs *ruleset.RuleSet, nrules int, baseA float64, rng *rand.Rand) (Move, error) {
	m := rs.NRules()
	present := make(map[int]bool, m)
	for _, e := range rs.Entries {
		present[e.RuleID] = true
	}

	unused := make([]int, 0, nrules-m+1)
	for id := 1; id <= nrules; id++ {
		if !present[id] {
			unused = append(unused, id)
		}
	}
	if len(unused) == 0 {
		return Move{}, fmt.Errorf("proposal.addMove: no unused rules remain")
	}

	ruleID := unused[rng.Intn(len(unused))]
	position := rng.Intn(m) // insert position in [0, m-1]

	jumpRatio := baseA * float64(nrules-1-m)
	return Move{Kind: Add, Idx1: position, RuleID: ruleID, JumpRatio: jumpRatio}, nil
}

func deleteMove(rs *ruleset.RuleSet, nrules int, baseD float64, rng *rand.Rand) (Move, error) {
	m := rs.NRules()
	last := m - 1
	if last < 1 {
		return Move{}, fmt.Errorf("proposal.deleteMove: no non-default position to delete")
	}
	position := rng.Intn(last)
	jumpRatio := baseD * float64(nrules-m)
	return Move{Kind: Delete, Idx1: position, JumpRatio: jumpRatio}, nil
}
