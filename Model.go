package bayeslist

import "github.com/hollowcreek/bayeslist/ruleset"

// PredictionModel is the trained artifact Train returns: the winning
// RuleSet and the posterior predictive probability of class 1 at each
// of its positions (spec.md §4.9, §6).
type PredictionModel struct {
	RuleSet *ruleset.RuleSet
	Theta   []float64
}

// Predict returns the predicted class (0 or 1) for a sample captured at
// position j, thresholding Theta[j] against threshold (spec.md §4.9).
func (m *PredictionModel) Predict(j int, threshold float64) int {
	if m.Theta[j] >= threshold {
		return 1
	}
	return 0
}
