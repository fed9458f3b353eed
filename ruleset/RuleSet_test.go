package ruleset_test

import (
	"testing"

	"github.com/hollowcreek/bayeslist/bitset"
	"github.com/hollowcreek/bayeslist/rule"
	"github.com/hollowcreek/bayeslist/ruleset"
	"golang.org/x/exp/rand"
)

// smallDataset returns a 6-sample, 3-rule dataset with overlapping
// truth tables so that the capture-derivation logic is exercised.
func smallDataset(t *testing.T) *rule.Dataset {
	t.Helper()

	r1 := rule.NewRule(1, 1, bitset.FromBools([]bool{true, true, false, false, false, false}))
	r2 := rule.NewRule(2, 2, bitset.FromBools([]bool{false, true, true, true, false, false}))
	r3 := rule.NewRule(3, 1, bitset.FromBools([]bool{false, false, false, true, true, false}))

	label0 := rule.NewRule(0, 0, bitset.FromBools([]bool{true, false, true, false, true, false}))
	label1 := rule.NewRule(0, 0, bitset.FromBools([]bool{false, true, false, true, false, true}))

	data, err := rule.NewDataset([]rule.Rule{r1, r2, r3}, [2]rule.Rule{label0, label1}, 6)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	return data
}

func assertInvariants(t *testing.T, rs *ruleset.RuleSet) {
	t.Helper()

	union := bitset.New(rs.NSamples)
	for i, e := range rs.Entries {
		if e.NCaptured != e.Captures.PopCount() {
			t.Errorf("position %d: NCaptured = %d, want %d", i, e.NCaptured, e.Captures.PopCount())
		}
		overlap := union.And(e.Captures)
		if !overlap.IsZero() {
			t.Errorf("position %d: captures overlap an earlier position", i)
		}
		union.OrInPlace(e.Captures)
	}
	if union.PopCount() != rs.NSamples {
		t.Errorf("captures do not cover all %d samples, covered %d", rs.NSamples, union.PopCount())
	}
	if rs.Entries[len(rs.Entries)-1].RuleID != rule.DefaultID {
		t.Errorf("last entry must be the default rule")
	}
}

func TestCreateRandomInvariants(t *testing.T) {
	data := smallDataset(t)
	rng := rand.New(rand.NewSource(1))

	rs, err := ruleset.CreateRandom(2, data, rng)
	if err != nil {
		t.Fatalf("CreateRandom: %v", err)
	}
	if rs.NRules() != 3 {
		t.Errorf("NRules() = %d, want 3", rs.NRules())
	}
	assertInvariants(t, rs)
}

func TestAddPreservesEarlierCaptures(t *testing.T) {
	data := smallDataset(t)
	rng := rand.New(rand.NewSource(2))

	rs, err := ruleset.CreateRandom(2, data, rng)
	if err != nil {
		t.Fatalf("CreateRandom: %v", err)
	}
	before := make([]bitset.Set, rs.NRules())
	for i, e := range rs.Entries {
		before[i] = e.Captures.Clone()
	}

	// Insert the one unused rule at the end of the non-default prefix.
	used := map[int]bool{}
	for _, e := range rs.Entries {
		used[e.RuleID] = true
	}
	var unused int
	for _, r := range data.Rules {
		if !used[r.ID] {
			unused = r.ID
		}
	}

	position := 2 // append before default, which is at index rs.NRules()-1
	if err := rs.Add(unused, position, data); err != nil {
		t.Fatalf("Add: %v", err)
	}
	assertInvariants(t, rs)

	for i := 0; i < position; i++ {
		if !rs.Entries[i].Captures.Equal(before[i]) {
			t.Errorf("position %d changed after Add at %d", i, position)
		}
	}
}

func TestDeleteThenRefuseFurther(t *testing.T) {
	data := smallDataset(t)
	rng := rand.New(rand.NewSource(3))

	rs, err := ruleset.CreateRandom(3, data, rng)
	if err != nil {
		t.Fatalf("CreateRandom: %v", err)
	}
	for rs.NRules() > 2 {
		if err := rs.Delete(0, data); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		assertInvariants(t, rs)
	}
	if err := rs.Delete(0, data); err == nil {
		t.Errorf("Delete on a 2-entry ruleset (1 rule + default) should fail")
	}
}

func TestSwapEquivalentRulesPreservesCaptures(t *testing.T) {
	// Two rules with identical truth tables: swapping them should leave
	// the union/derived captures structurally equal (spec.md §8 #3).
	same := bitset.FromBools([]bool{true, false, true, false})
	r1 := rule.NewRule(1, 1, same)
	r2 := rule.NewRule(2, 1, same.Clone())
	label0 := rule.NewRule(0, 0, bitset.FromBools([]bool{true, false, false, false}))
	label1 := rule.NewRule(0, 0, bitset.FromBools([]bool{false, true, true, true}))

	data, err := rule.NewDataset([]rule.Rule{r1, r2}, [2]rule.Rule{label0, label1}, 4)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}

	rs, err := ruleset.Restore([]int{1, 2, rule.DefaultID}, data)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	before := rs.Copy()

	if err := rs.SwapAny(0, 1, data); err != nil {
		t.Fatalf("SwapAny: %v", err)
	}

	if rs.Entries[len(rs.Entries)-1].NCaptured != before.Entries[len(before.Entries)-1].NCaptured {
		t.Errorf("default capture count changed after swapping equivalent rules")
	}
	assertInvariants(t, rs)
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	data := smallDataset(t)
	rng := rand.New(rand.NewSource(4))

	rs, err := ruleset.CreateRandom(2, data, rng)
	if err != nil {
		t.Fatalf("CreateRandom: %v", err)
	}
	ids := rs.Backup()

	restored, err := ruleset.Restore(ids, data)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	assertInvariants(t, restored)
	for i := range rs.Entries {
		if !rs.Entries[i].Captures.Equal(restored.Entries[i].Captures) {
			t.Errorf("position %d: restored captures differ from original", i)
		}
	}
}
