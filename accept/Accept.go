// Package accept implements the two acceptance strategies that decide
// whether a proposed RuleSet replaces the current one: Metropolis-
// Hastings and Simulated Annealing (spec.md §4.5). Both are modeled as
// a tagged Strategy variant rather than function-pointer dispatch, per
// spec.md §9.
package accept

import "golang.org/x/exp/rand"

// Strategy decides whether to accept a proposal. Every Strategy enforces
// the hard pruning gate `prefixBound > maxLogPosterior` before
// considering its own criterion (spec.md §4.5); proposals that fail the
// gate are rejected without evaluating the criterion, and the caller
// counts that as a bound rejection rather than an ordinary rejection.
type Strategy interface {
	// Accept reports whether the move from oldLP to newLP should be
	// taken. gatePassed is the already-evaluated pruning gate so that
	// callers can share the bound counter across strategies.
	Accept(newLP, oldLP float64, gatePassed bool, rng *rand.Rand) bool
}

// GatePassed evaluates the hard pruning gate shared by every Strategy.
func GatePassed(prefixBound, maxLogPosterior float64) bool {
	return prefixBound > maxLogPosterior
}

// Metropolis accepts with the standard Metropolis-Hastings criterion,
// corrected by the proposal's Hastings jump ratio.
type Metropolis struct {
	JumpRatio float64
}

// Accept implements Strategy.
func (m Metropolis) Accept(newLP, oldLP float64, gatePassed bool, rng *rand.Rand) bool {
	if !gatePassed {
		return false
	}
	u := rng.Float64()
	return logUniform(u) < (newLP-oldLP)+logJumpRatio(m.JumpRatio)
}

// SimulatedAnnealing accepts uphill moves unconditionally and downhill
// moves with probability exp((newLP-oldLP)/Temperature).
type SimulatedAnnealing struct {
	Temperature float64
}

// Accept implements Strategy.
func (s SimulatedAnnealing) Accept(newLP, oldLP float64, gatePassed bool, rng *rand.Rand) bool {
	if !gatePassed {
		return false
	}
	if newLP > oldLP {
		return true
	}
	u := rng.Float64()
	return logUniform(u) < (newLP-oldLP)/s.Temperature
}
