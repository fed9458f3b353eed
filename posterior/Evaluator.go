// Package posterior implements the log-posterior scoring function and
// its prefix upper bound (spec.md §4.3): log-prior over list length and
// rule cardinality, plus a Beta-Bernoulli log-likelihood per position.
package posterior

import (
	"fmt"
	"math"
	"os"

	"github.com/hollowcreek/bayeslist/prior"
	"github.com/hollowcreek/bayeslist/rule"
	"github.com/hollowcreek/bayeslist/ruleset"
)

// Evaluator scores RuleSets against a fixed Dataset, PriorCache, and
// Beta pseudocount pair.
type Evaluator struct {
	Cache  *prior.Cache
	Data   *rule.Dataset
	Alpha0 float64
	Alpha1 float64
}

// New returns an Evaluator, rejecting non-positive Beta pseudocounts
// (spec.md §7).
func New(cache *prior.Cache, data *rule.Dataset, alpha0, alpha1 float64) (*Evaluator, error) {
	if alpha0 <= 0 || alpha1 <= 0 {
		return nil, fmt.Errorf("posterior.New: alpha must be positive, got (%v, %v)", alpha0, alpha1)
	}
	return &Evaluator{Cache: cache, Data: data, Alpha0: alpha0, Alpha1: alpha1}, nil
}

// Evaluate returns the log-posterior of rs and, when length4bound >= 0,
// the prefix upper bound over positions [0, length4bound]. length4bound
// == -1 disables the bound, which is reported as +Inf so it always
// clears the `prefixBound > maxLogPosterior` pruning gate (spec.md
// §4.3, §4.5).
func (e *Evaluator) Evaluate(rs *ruleset.RuleSet, length4bound int) (logPosterior, prefixBound float64, err error) {
	m := rs.NRules()
	if m < 2 {
		return 0, 0, fmt.Errorf("evaluate: ruleset must have at least 2 entries, got %d", m)
	}
	boundEnabled := length4bound >= 0
	if boundEnabled && length4bound > m-1 {
		return 0, 0, fmt.Errorf("evaluate: length4bound %d exceeds last position %d", length4bound, m-1)
	}

	cardCount := e.cardinalityCounts()
	normConstant := e.Cache.EtaNorm

	logPrior := e.Cache.LambdaPMFAt(m - 1)
	var prefixPrior float64
	if boundEnabled {
		boundLen := m - 1
		if fl := int(math.Floor(e.Cache.Lambda)); fl > boundLen {
			boundLen = fl
		}
		prefixPrior = e.Cache.LambdaPMFAt(boundLen)
	}

	for i := 0; i <= m-2; i++ {
		r, ok := e.Data.RuleByID(rs.Entries[i].RuleID)
		if !ok {
			return 0, 0, fmt.Errorf("evaluate: unknown rule id %d at position %d", rs.Entries[i].RuleID, i)
		}
		c := r.Cardinality

		if cardCount[c] <= 0 {
			return 0, 0, fmt.Errorf("evaluate: cardinality %d pool exhausted", c)
		}
		if normConstant <= 0 {
			return 0, 0, fmt.Errorf("evaluate: truncated Poisson normalizer collapsed to <= 0; " +
				"no cardinality remains representable")
		}

		term := e.Cache.LogEtaPMF[c] - math.Log(normConstant) - math.Log(float64(cardCount[c]))
		logPrior += term
		if boundEnabled && i <= length4bound {
			prefixPrior += term
		}

		cardCount[c]--
		if cardCount[c] == 0 {
			normConstant -= math.Exp(e.Cache.LogEtaPMF[c])
		}
	}

	if math.IsNaN(logPrior) {
		fmt.Fprintf(os.Stderr, "posterior: NaN detected in log-prior accumulation; "+
			"this proposal will reject\n")
	}

	logLikelihood := 0.0
	for j := 0; j < m; j++ {
		n0, n1 := e.SplitCounts(rs, j)
		logLikelihood += betaBernoulli(n0, n1, e.Alpha0, e.Alpha1)
	}
	logPosterior = logPrior + logLikelihood

	if !boundEnabled {
		return logPosterior, math.Inf(1), nil
	}

	prefixLikelihood, err := e.prefixLogLikelihood(rs, length4bound)
	if err != nil {
		return 0, 0, err
	}
	return logPosterior, prefixPrior + prefixLikelihood, nil
}

// cardinalityCounts tallies how many rules of each cardinality exist in
// the full input pool (spec.md §4.3: "across all input rules").
func (e *Evaluator) cardinalityCounts() []int {
	counts := make([]int, rule.MaxCardinality+1)
	for _, r := range e.Data.Rules {
		counts[r.Cardinality]++
	}
	return counts
}

// SplitCounts returns the class-0 and class-1 sample counts captured at
// position j.
func (e *Evaluator) SplitCounts(rs *ruleset.RuleSet, j int) (n0, n1 int) {
	entry := rs.Entries[j]
	n0 = entry.Captures.And(e.Data.Labels[0].Truthtable).PopCount()
	n1 = entry.NCaptured - n0
	return n0, n1
}

// prefixLogLikelihood computes the flat (alpha=1) Beta-Bernoulli
// likelihood over positions [0, length4bound], plus the residual term
// at length4bound accounting for samples the prefix has not yet
// captured (spec.md §4.3).
func (e *Evaluator) prefixLogLikelihood(rs *ruleset.RuleSet, length4bound int) (float64, error) {
	total := 0.0
	n0Sum, n1Sum := 0, 0
	for j := 0; j <= length4bound; j++ {
		n0, n1 := e.SplitCounts(rs, j)
		total += betaBernoulli(n0, n1, 1, 1)
		n0Sum += n0
		n1Sum += n1
	}

	left0 := e.Data.Labels[0].Support - n0Sum
	left1 := e.Data.Labels[1].Support - n1Sum
	if left0 < 0 || left1 < 0 {
		return 0, fmt.Errorf("prefixLogLikelihood: captured more class samples than exist "+
			"(left0=%d, left1=%d)", left0, left1)
	}

	lg1, _ := math.Lgamma(1)
	residual := lgamma(float64(left0)+1) + lgamma(float64(left1)+1) -
		lgamma(float64(left0)+2) - lgamma(float64(left1)+2) + 2*lg1
	return total + residual, nil
}

// betaBernoulli is the Beta-Bernoulli marginal log-likelihood of n0
// class-0 and n1 class-1 samples under Beta(alpha0, alpha1) pseudocounts.
func betaBernoulli(n0, n1 int, alpha0, alpha1 float64) float64 {
	return lgamma(float64(n0)+alpha0) + lgamma(float64(n1)+alpha1) -
		lgamma(float64(n0)+float64(n1)+alpha0+alpha1)
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}
