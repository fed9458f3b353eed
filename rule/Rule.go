// Package rule defines the immutable inputs to a training run: the
// mined rule pool and the two label indicator rules. Rule mining itself
// is an external collaborator and out of scope for this module.
package rule

import (
	"fmt"

	"github.com/hollowcreek/bayeslist/bitset"
)

// MaxCardinality is the largest rule cardinality the cardinality prior
// supports (spec.md §3).
const MaxCardinality = 10

// DefaultID is the reserved id of the default (catch-all) rule, which
// is never present in Dataset.Rules.
const DefaultID = 0

// Rule is a single precomputed boolean predicate over samples.
type Rule struct {
	ID          int
	Cardinality int
	Truthtable  bitset.Set
	Support     int
}

// NewRule returns a Rule, deriving Support from the truth table.
func NewRule(id, cardinality int, truthtable bitset.Set) Rule {
	return Rule{
		ID:          id,
		Cardinality: cardinality,
		Truthtable:  truthtable,
		Support:     truthtable.PopCount(),
	}
}

// Dataset bundles the mined rule pool with the two label rules and the
// sample/rule counts describing it.
type Dataset struct {
	Rules     []Rule
	Labels    [2]Rule // Labels[0]: class-0 indicator, Labels[1]: class-1 indicator
	NSamples  int
	NRules    int // len(Rules); rule ids in Rules run 1..NRules
}

// NewDataset validates and returns a Dataset.
func NewDataset(rules []Rule, labels [2]Rule, nsamples int) (*Dataset, error) {
	if nsamples <= 0 {
		return nil, fmt.Errorf("newDataset: nsamples must be positive, got %d", nsamples)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("newDataset: rules must be non-empty")
	}
	for _, r := range rules {
		if r.ID == DefaultID {
			return nil, fmt.Errorf("newDataset: rule id %d is reserved for the default rule", DefaultID)
		}
		if r.Cardinality < 1 || r.Cardinality > MaxCardinality {
			return nil, fmt.Errorf("newDataset: rule %d has invalid cardinality %d", r.ID, r.Cardinality)
		}
		if r.Truthtable.Len() != nsamples {
			return nil, fmt.Errorf("newDataset: rule %d truthtable length %d != nsamples %d",
				r.ID, r.Truthtable.Len(), nsamples)
		}
	}
	for i, l := range labels {
		if l.Truthtable.Len() != nsamples {
			return nil, fmt.Errorf("newDataset: label %d truthtable length %d != nsamples %d",
				i, l.Truthtable.Len(), nsamples)
		}
	}

	return &Dataset{Rules: rules, Labels: labels, NSamples: nsamples, NRules: len(rules)}, nil
}

// RuleByID returns the Rule with the given id, or false if none exists.
func (d *Dataset) RuleByID(id int) (Rule, bool) {
	for _, r := range d.Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}
