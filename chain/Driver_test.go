package chain_test

import (
	"math"
	"testing"

	"github.com/hollowcreek/bayeslist/bitset"
	"github.com/hollowcreek/bayeslist/chain"
	"github.com/hollowcreek/bayeslist/posterior"
	"github.com/hollowcreek/bayeslist/prior"
	"github.com/hollowcreek/bayeslist/rule"
)

func driverDataset(t *testing.T) *rule.Dataset {
	t.Helper()

	bits := [][]bool{
		{true, true, false, false, false, false, false, false},
		{false, false, true, true, false, false, false, false},
		{false, false, false, false, true, true, false, false},
		{false, true, false, true, false, true, false, true},
	}
	rules := make([]rule.Rule, len(bits))
	for i, b := range bits {
		rules[i] = rule.NewRule(i+1, 1, bitset.FromBools(b))
	}
	label0 := rule.NewRule(0, 0, bitset.FromBools([]bool{true, false, true, false, true, false, true, false}))
	label1 := rule.NewRule(0, 0, bitset.FromBools([]bool{false, true, false, true, false, true, false, true}))

	data, err := rule.NewDataset(rules, [2]rule.Rule{label0, label1}, 8)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	return data
}

func newDriver(t *testing.T, data *rule.Dataset, seed uint64) *chain.Driver {
	t.Helper()
	cache, err := prior.New(data.NRules, 3, 1)
	if err != nil {
		t.Fatalf("prior.New: %v", err)
	}
	eval, err := posterior.New(cache, data, 1, 1)
	if err != nil {
		t.Fatalf("posterior.New: %v", err)
	}
	return chain.NewDriver(data, eval, data.NRules, seed)
}

func TestRunProducesValidRuleSet(t *testing.T) {
	data := driverDataset(t)
	d := newDriver(t, data, 42)

	result, err := d.Run(20, 1, math.Inf(-1))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Best.NRules() < 2 || result.Best.NRules() > data.NRules+1 {
		t.Errorf("Best.NRules() = %d, out of range [2, %d]", result.Best.NRules(), data.NRules+1)
	}
	if math.IsNaN(result.LogPosterior) || math.IsInf(result.LogPosterior, 0) {
		t.Errorf("LogPosterior = %v, want finite", result.LogPosterior)
	}

	union := bitset.New(data.NSamples)
	for _, e := range result.Best.Entries {
		union.OrInPlace(e.Captures)
	}
	if union.PopCount() != data.NSamples {
		t.Errorf("Best ruleset captures %d of %d samples", union.PopCount(), data.NSamples)
	}
}

func TestRunIsReproducibleForAFixedSeed(t *testing.T) {
	data := driverDataset(t)

	d1 := newDriver(t, data, 7)
	r1, err := d1.Run(15, 1, math.Inf(-1))
	if err != nil {
		t.Fatalf("Run 1: %v", err)
	}

	d2 := newDriver(t, data, 7)
	r2, err := d2.Run(15, 1, math.Inf(-1))
	if err != nil {
		t.Fatalf("Run 2: %v", err)
	}

	if r1.LogPosterior != r2.LogPosterior {
		t.Errorf("same seed produced different log-posteriors: %v vs %v", r1.LogPosterior, r2.LogPosterior)
	}
	if !backupsEqual(r1.Best.Backup(), r2.Best.Backup()) {
		t.Errorf("same seed produced different rule lists: %v vs %v", r1.Best.Backup(), r2.Best.Backup())
	}
}

func backupsEqual(a, b []int) bool {
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

func TestRunSimulatedAnnealingProducesValidRuleSet(t *testing.T) {
	data := driverDataset(t)
	d := newDriver(t, data, 99)

	result, err := d.RunSimulatedAnnealing(1, 5, 4)
	if err != nil {
		t.Fatalf("RunSimulatedAnnealing: %v", err)
	}
	if math.IsNaN(result.LogPosterior) || math.IsInf(result.LogPosterior, 0) {
		t.Errorf("LogPosterior = %v, want finite", result.LogPosterior)
	}

	wantSteps := len(chain.CoolingSchedule(4)) * 5
	if got := result.Counters.NAdd + result.Counters.NDelete + result.Counters.NSwap; got != wantSteps {
		t.Errorf("recorded %d total proposals, want exactly %d (one move kind per step)", got, wantSteps)
	}
}
