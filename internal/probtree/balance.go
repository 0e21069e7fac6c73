package probtree

import (
	"context"

	"github.com/deepanalytics/reasoning-engines/internal/engineerr"
)

// BalanceLeafs rebalances leaf probabilities per one of three
// uncertainty-driven algorithms. avg is computed once from
// the leaves' probabilities before any update is applied ("avg is frozen
// at the start, not recomputed per update").
func (e *Engine) BalanceLeafs(ctx context.Context, uncertaintyType UncertaintyType) (*BalanceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, engineerr.Internal("context cancelled: %v", err)
	}

	leaves := e.store.Leaves()
	result := &BalanceResult{UncertaintyType: uncertaintyType}
	if len(leaves) == 0 {
		return result, nil
	}

	var sum float64
	for _, l := range leaves {
		sum += l.Probability
	}
	avg := sum / float64(len(leaves))
	result.Average = avg

	for _, l := range leaves {
		old := l.Probability
		var next float64
		changed := false

		switch uncertaintyType {
		case InsufficientData:
			if old > avg+0.1 {
				next = (old + avg) / 2
				changed = true
			}
		case EqualLikelihood:
			if old < 0.8 {
				next = (old + 1) / 2
				changed = true
			}
		case CognitiveOverload:
			next = 0.7*old + 0.3*avg
			changed = next != old
		default:
			continue
		}

		if !changed {
			continue
		}
		e.store.SetProbability(l.ID, next)
		result.Changes = append(result.Changes, ProbabilityChange{NodeID: l.ID, Old: old, New: next})
	}

	return result, nil
}
