package bayeslist

import (
	"fmt"
	"math"

	"github.com/hollowcreek/bayeslist/chain"
	"github.com/hollowcreek/bayeslist/posterior"
	"github.com/hollowcreek/bayeslist/prior"
	"github.com/hollowcreek/bayeslist/rule"
)

// Train runs nchain independent chains over data and returns the
// highest-scoring RuleSet found, with its per-position posterior
// predictive probabilities (spec.md §4.9). seed makes the whole run
// reproducible: chain c is seeded from seed+c, so repeated calls with
// the same seed and data produce a bit-identical PredictionModel
// (spec.md §8).
func Train(data *rule.Dataset, params Params, seed uint64) (*PredictionModel, error) {
	if err := params.Validate(data.NRules); err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	cache, err := prior.New(data.NRules, params.Lambda, params.Eta)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	eval, err := posterior.New(cache, data, params.Alpha0, params.Alpha1)
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	var best chain.Result
	vstar := math.Inf(-1)

	for c := 0; c < params.NChain; c++ {
		driver := chain.NewDriver(data, eval, data.NRules, seed+uint64(c))

		var result chain.Result
		var err error
		switch params.Method {
		case SimulatedAnnealing:
			result, err = driver.RunSimulatedAnnealing(params.InitSize, params.saItersPerStep(), params.SAPlateaus)
		default:
			// Chain 1 (c == 0) uses v_star == -Inf; later chains steer
			// toward regions the bound says may still improve (spec.md
			// §4.7).
			result, err = driver.Run(params.Iters, params.InitSize, vstar)
		}
		if err != nil {
			return nil, fmt.Errorf("train: chain %d: %w", c, err)
		}

		if c == 0 || result.LogPosterior > best.LogPosterior {
			best = result
		}
		vstar = best.LogPosterior
	}

	theta := make([]float64, best.Best.NRules())
	for j := range theta {
		n0, n1 := eval.SplitCounts(best.Best, j)
		theta[j] = (float64(n1) + params.Alpha1) / (float64(n0) + float64(n1) + params.Alpha0 + params.Alpha1)
	}

	return &PredictionModel{RuleSet: best.Best, Theta: theta}, nil
}
