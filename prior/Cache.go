// Package prior implements the precomputed structural prior used by
// the posterior evaluator: the Poisson log-PMF over list length, the
// truncated Poisson log-PMF over rule cardinality, and the truncation
// normalizer (spec.md §4.2). It uses gonum's distuv.Poisson in place of
// a hand-rolled Poisson density, the way the teacher reaches for
// gonum/stat/distuv distributions (distuv.Categorical in
// environment/CategoricalStarter.go) rather than writing its own.
package prior

import (
	"fmt"

	"github.com/hollowcreek/bayeslist/rule"
	"gonum.org/v1/gonum/stat/distuv"
)

// Cache holds the log-PMFs and truncation normalizer for one
// (nrules, lambda, eta) configuration. It is computed once per training
// run and reused for every posterior evaluation in that run; a fresh
// Cache must be built whenever nrules, lambda, or eta change (spec.md
// §4.2, §9 — the source's lazy one-shot init across differing params is
// a latent bug this module avoids by making the Cache an explicit,
// caller-owned value instead of process-wide state).
type Cache struct {
	NRules int
	Lambda float64
	Eta    float64

	// LogLambdaPMF[k] = log Poisson_PMF(k; Lambda), for k in [0, NRules).
	LogLambdaPMF []float64

	// LogEtaPMF[c] = log Poisson_PMF(c; Eta), for c in [0, rule.MaxCardinality].
	LogEtaPMF []float64

	// EtaNorm = Poisson_CDF(MaxCardinality; Eta) - Poisson_PMF(0; Eta).
	EtaNorm float64
}

// New computes a Cache for the given (nrules, lambda, eta).
func New(nrules int, lambda, eta float64) (*Cache, error) {
	if nrules < 1 {
		return nil, fmt.Errorf("prior.New: nrules must be positive, got %d", nrules)
	}
	if lambda <= 0 {
		return nil, fmt.Errorf("prior.New: lambda must be positive, got %v", lambda)
	}
	if eta <= 0 {
		return nil, fmt.Errorf("prior.New: eta must be positive, got %v", eta)
	}

	lengthDist := distuv.Poisson{Lambda: lambda}
	logLambdaPMF := make([]float64, nrules)
	for k := 0; k < nrules; k++ {
		logLambdaPMF[k] = lengthDist.LogProb(float64(k))
	}

	cardDist := distuv.Poisson{Lambda: eta}
	logEtaPMF := make([]float64, rule.MaxCardinality+1)
	for c := 0; c <= rule.MaxCardinality; c++ {
		logEtaPMF[c] = cardDist.LogProb(float64(c))
	}

	etaNorm := cardDist.CDF(float64(rule.MaxCardinality)) - cardDist.Prob(0)
	if etaNorm <= 0 {
		return nil, fmt.Errorf("prior.New: truncated Poisson support over [1, %d] is empty for eta=%v",
			rule.MaxCardinality, eta)
	}

	return &Cache{
		NRules:       nrules,
		Lambda:       lambda,
		Eta:          eta,
		LogLambdaPMF: logLambdaPMF,
		LogEtaPMF:    logEtaPMF,
		EtaNorm:      etaNorm,
	}, nil
}

// LambdaPMFAt returns LogLambdaPMF[k], evaluating the Poisson log-PMF
// directly for k beyond the precomputed [0, NRules) range — needed by
// the prefix bound's max(m-1, floor(lambda)) length term (spec.md
// §4.3), which can exceed NRules-1 when lambda is large.
func (c *Cache) LambdaPMFAt(k int) float64 {
	if k >= 0 && k < len(c.LogLambdaPMF) {
		return c.LogLambdaPMF[k]
	}
	return distuv.Poisson{Lambda: c.Lambda}.LogProb(float64(k))
}

// Stale reports whether the Cache was built for a different
// (nrules, lambda, eta) than given, signalling the caller must
// rebuild it before reuse.
func (c *Cache) Stale(nrules int, lambda, eta float64) bool {
	return c == nil || c.NRules != nrules || c.Lambda != lambda || c.Eta != eta
}
