package bayeslist

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/hollowcreek/bayeslist/rule"
	"github.com/hollowcreek/bayeslist/ruleset"
)

// savedModel is the gob-serializable shape of a PredictionModel: the
// rule-id list a RuleSet backs up to (spec.md §4.1's backup/restore
// contract), not its live bitvectors. This follows the teacher's
// gob-based persistence idiom (experiment/checkpointer/NStep.go,
// experiment/tracker/Tracker.go's LoadFData/LoadIData) restricted, per
// spec.md's non-goal on persisting intermediate chain state, to a
// finished model only.
type savedModel struct {
	RuleIDs []int
	Theta   []float64
}

// SaveModel gob-encodes a finished PredictionModel to w.
func SaveModel(w io.Writer, m *PredictionModel) error {
	saved := savedModel{RuleIDs: m.RuleSet.Backup(), Theta: m.Theta}
	if err := gob.NewEncoder(w).Encode(saved); err != nil {
		return fmt.Errorf("saveModel: %w", err)
	}
	return nil
}

// LoadModel decodes a PredictionModel previously written by SaveModel,
// re-materializing its RuleSet's capture bitvectors against data. data
// must be the same Dataset (or an equivalent one) the model was trained
// on; this is why LoadModel cannot be a plain gob.GobDecoder like
// experiment/checkpointer.Serializable — restoring captures needs the
// rule pool, which gob's decode hook has no way to thread through.
func LoadModel(r io.Reader, data *rule.Dataset) (*PredictionModel, error) {
	var saved savedModel
	if err := gob.NewDecoder(r).Decode(&saved); err != nil {
		return nil, fmt.Errorf("loadModel: %w", err)
	}

	rs, err := ruleset.Restore(saved.RuleIDs, data)
	if err != nil {
		return nil, fmt.Errorf("loadModel: %w", err)
	}
	return &PredictionModel{RuleSet: rs, Theta: saved.Theta}, nil
}
