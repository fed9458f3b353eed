// Package chain implements the unified proposal procedure (spec.md
// §4.6) and the MCMC and Simulated Annealing drivers built on top of
// it (spec.md §4.7, §4.8).
package chain

import (
	"fmt"

	"github.com/hollowcreek/bayeslist/accept"
	"github.com/hollowcreek/bayeslist/posterior"
	"github.com/hollowcreek/bayeslist/proposal"
	"github.com/hollowcreek/bayeslist/rule"
	"github.com/hollowcreek/bayeslist/ruleset"
	"golang.org/x/exp/rand"
)

// Counters accumulates per-chain move statistics for diagnostics only
// (spec.md §4.7); they never influence acceptance.
type Counters struct {
	NAdd          int
	NDelete       int
	NSwap         int
	NBoundRejects int
}

// applyMove deep-copies current, draws and applies a move, and scores
// the result, returning everything the caller's acceptance strategy
// needs. The original current RuleSet is left untouched; the caller
// owns destroying whichever of {current, proposed} it discards (spec.md
// §4.6, §5).
func applyMove(current *ruleset.RuleSet, data *rule.Dataset, nrules int,
	eval *posterior.Evaluator, maxLP float64, rng *rand.Rand, counters *Counters) (
	proposed *ruleset.RuleSet, newLP, jumpRatio float64, gatePassed bool, err error) {

	proposed = current.Copy()

	move, err := proposal.Next(proposed, nrules, rng)
	if err != nil {
		return nil, 0, 0, false, fmt.Errorf("applyMove: %w", err)
	}

	changeIndex, err := applyProposedMove(proposed, move, data, counters)
	if err != nil {
		return nil, 0, 0, false, fmt.Errorf("applyMove: %w", err)
	}

	length4bound := changeIndex - 1
	newLogPosterior, prefixBound, err := eval.Evaluate(proposed, length4bound)
	if err != nil {
		return nil, 0, 0, false, fmt.Errorf("applyMove: %w", err)
	}

	gatePassed = accept.GatePassed(prefixBound, maxLP)
	if !gatePassed {
		counters.NBoundRejects++
	}

	return proposed, newLogPosterior, move.JumpRatio, gatePassed, nil
}

// applyProposedMove mutates proposed in place per move, bumps the
// matching diagnostic counter, and returns the index at which proposed
// first diverges from current.
func applyProposedMove(proposed *ruleset.RuleSet, move proposal.Move, data *rule.Dataset,
	counters *Counters) (changeIndex int, err error) {

	switch move.Kind {
	case proposal.Swap:
		counters.NSwap++
		if err := proposed.SwapAny(move.Idx1, move.Idx2, data); err != nil {
			return 0, err
		}
		changeIndex = move.Idx1
		if move.Idx2 < changeIndex {
			changeIndex = move.Idx2
		}
	case proposal.Add:
		counters.NAdd++
		if err := proposed.Add(move.RuleID, move.Idx1, data); err != nil {
			return 0, err
		}
		changeIndex = move.Idx1
	case proposal.Delete:
		counters.NDelete++
		if err := proposed.Delete(move.Idx1, data); err != nil {
			return 0, err
		}
		changeIndex = move.Idx1
	default:
		return 0, fmt.Errorf("applyProposedMove: unhandled move kind %v", move.Kind)
	}
	return changeIndex, nil
}

// StepMetropolis runs one Metropolis-Hastings proposal-and-accept
// round, returning the RuleSet and log-posterior the chain should
// continue from.
func StepMetropolis(current *ruleset.RuleSet, currentLP float64, data *rule.Dataset, nrules int,
	eval *posterior.Evaluator, maxLP float64, rng *rand.Rand, counters *Counters) (
	*ruleset.RuleSet, float64, error) {

	proposed, newLP, jumpRatio, gatePassed, err := applyMove(current, data, nrules, eval, maxLP, rng, counters)
	if err != nil {
		return nil, 0, err
	}

	strategy := accept.Metropolis{JumpRatio: jumpRatio}
	if strategy.Accept(newLP, currentLP, gatePassed, rng) {
		current.Destroy()
		return proposed, newLP, nil
	}
	proposed.Destroy()
	return current, currentLP, nil
}

// StepSA runs one Simulated-Annealing proposal-and-accept round at
// the given temperature.
func StepSA(current *ruleset.RuleSet, currentLP float64, data *rule.Dataset, nrules int,
	eval *posterior.Evaluator, maxLP, temperature float64, rng *rand.Rand, counters *Counters) (
	*ruleset.RuleSet, float64, error) {

	proposed, newLP, _, gatePassed, err := applyMove(current, data, nrules, eval, maxLP, rng, counters)
	if err != nil {
		return nil, 0, err
	}

	strategy := accept.SimulatedAnnealing{Temperature: temperature}
	if strategy.Accept(newLP, currentLP, gatePassed, rng) {
		current.Destroy()
		return proposed, newLP, nil
	}
	proposed.Destroy()
	return current, currentLP, nil
}
