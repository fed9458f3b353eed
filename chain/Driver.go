package chain

import (
	"fmt"
	"math"
	"time"

	"github.com/hollowcreek/bayeslist/posterior"
	"github.com/hollowcreek/bayeslist/rule"
	"github.com/hollowcreek/bayeslist/ruleset"
	"github.com/samuelfneumann/progressbar"
	"golang.org/x/exp/rand"
)

// Result is what a finished chain hands back to the caller: the best
// RuleSet observed (re-materialized from its cheap backup), the
// log-posterior it scored, and the move counters collected along the
// way.
type Result struct {
	Best         *ruleset.RuleSet
	LogPosterior float64
	Counters     Counters
}

// Driver runs one sequential chain of proposal steps against a fixed
// Dataset and Evaluator. It owns no process-wide state: the RNG, prior
// cache (via Eval), and counters are all explicit, caller-constructed
// values (spec.md §5, §9).
type Driver struct {
	Data   *rule.Dataset
	Eval   *posterior.Evaluator
	NRules int
	Rng    *rand.Rand

	// ShowProgress enables a terminal progress bar over chain
	// iterations, grounded on experiment/Online.go's use of
	// github.com/samuelfneumann/progressbar. Left off by default so
	// tests run headless.
	ShowProgress bool
}

// NewDriver returns a Driver seeded from seed, matching the teacher's
// convention of building a fresh RNG source per component
// (agent/linear/policy/EGreedy.go's NewEGreedy) rather than sharing a
// package-level global.
func NewDriver(data *rule.Dataset, eval *posterior.Evaluator, nrules int, seed uint64) *Driver {
	return &Driver{
		Data:   data,
		Eval:   eval,
		NRules: nrules,
		Rng:    rand.New(rand.NewSource(seed)),
	}
}

// seed repeatedly draws a random RuleSet until its prefix bound clears
// vstar, per the warm-start gate in spec.md §4.7. vstar = -Inf accepts
// the first draw, which is how the first chain in a multi-chain run is
// expected to behave.
func (d *Driver) seed(initSize int, vstar float64) (*ruleset.RuleSet, float64, error) {
	for {
		candidate, err := ruleset.CreateRandom(initSize, d.Data, d.Rng)
		if err != nil {
			return nil, 0, fmt.Errorf("chain.seed: %w", err)
		}

		logPosterior, prefixBound, err := d.Eval.Evaluate(candidate, candidate.NRules()-1)
		if err != nil {
			return nil, 0, fmt.Errorf("chain.seed: %w", err)
		}

		if prefixBound >= vstar {
			return candidate, logPosterior, nil
		}
		candidate.Destroy()
	}
}

// Run executes one MCMC chain of iters proposal steps under Metropolis
// acceptance, starting from a warm-started random seed, and returns the
// best RuleSet observed (spec.md §4.7).
func (d *Driver) Run(iters, initSize int, vstar float64) (Result, error) {
	current, currentLP, err := d.seed(initSize, vstar)
	if err != nil {
		return Result{}, fmt.Errorf("chain.Run: %w", err)
	}

	bestIDs := current.Backup()
	bestLP := currentLP

	var counters Counters
	var bar *progressbar.ProgressBar
	if d.ShowProgress {
		bar = progressbar.New(50, iters, time.Second, true)
		bar.Display()
	}

	for i := 0; i < iters; i++ {
		current, currentLP, err = StepMetropolis(current, currentLP, d.Data, d.NRules, d.Eval, bestLP, d.Rng, &counters)
		if err != nil {
			return Result{}, fmt.Errorf("chain.Run: iteration %d: %w", i, err)
		}
		if currentLP > bestLP {
			bestLP = currentLP
			bestIDs = current.Backup()
		}
		if bar != nil {
			bar.Increment()
		}
	}
	if bar != nil {
		bar.Close()
	}
	current.Destroy()

	best, err := ruleset.Restore(bestIDs, d.Data)
	if err != nil {
		return Result{}, fmt.Errorf("chain.Run: restoring best: %w", err)
	}

	return Result{Best: best, LogPosterior: bestLP, Counters: counters}, nil
}

// RunSimulatedAnnealing executes the alternate SA-driven chain
// (spec.md §4.8): a single random seed (no warm-start gate), the
// precomputed cooling schedule, and itersPerStep SA proposals at each
// schedule time point.
func (d *Driver) RunSimulatedAnnealing(initSize, itersPerStep, plateaus int) (Result, error) {
	current, currentLP, err := d.seed(initSize, math.Inf(-1))
	if err != nil {
		return Result{}, fmt.Errorf("chain.RunSimulatedAnnealing: %w", err)
	}

	bestIDs := current.Backup()
	bestLP := currentLP

	schedule := CoolingSchedule(plateaus)
	var counters Counters
	var bar *progressbar.ProgressBar
	if d.ShowProgress {
		bar = progressbar.New(50, len(schedule)*itersPerStep, time.Second, true)
		bar.Display()
	}

	for _, temperature := range schedule {
		for j := 0; j < itersPerStep; j++ {
			current, currentLP, err = StepSA(current, currentLP, d.Data, d.NRules, d.Eval, bestLP, temperature, d.Rng, &counters)
			if err != nil {
				return Result{}, fmt.Errorf("chain.RunSimulatedAnnealing: %w", err)
			}
			if currentLP > bestLP {
				bestLP = currentLP
				bestIDs = current.Backup()
			}
			if bar != nil {
				bar.Increment()
			}
		}
	}
	if bar != nil {
		bar.Close()
	}
	current.Destroy()

	best, err := ruleset.Restore(bestIDs, d.Data)
	if err != nil {
		return Result{}, fmt.Errorf("chain.RunSimulatedAnnealing: restoring best: %w", err)
	}

	return Result{Best: best, LogPosterior: bestLP, Counters: counters}, nil
}
