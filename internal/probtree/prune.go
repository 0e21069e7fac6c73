package probtree

import (
	"context"
	"sort"

	"github.com/deepanalytics/reasoning-engines/internal/engineerr"
)

// PruneTree invalidates every non-root node whose probability falls
// below a threshold derived from aggressiveness.
func (e *Engine) PruneTree(ctx context.Context, aggressiveness float64) (*PruneTreeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, engineerr.Internal("context cancelled: %v", err)
	}
	if aggressiveness < 0.0 || aggressiveness > 1.0 {
		return nil, engineerr.InvalidInput("aggressiveness", "must be in [0, 1], got %v", aggressiveness)
	}

	cfg := e.store.Config()
	threshold := cfg.MinProbability + aggressiveness*(1.0-cfg.MinProbability)

	result := &PruneTreeResult{Threshold: threshold}
	for _, n := range e.store.All() {
		if n.NodeType == Root {
			continue
		}
		result.TotalEligible++
		if n.IsInvalidated {
			result.RemovedIDs = append(result.RemovedIDs, n.ID)
			continue
		}
		if n.Probability < threshold {
			e.store.Invalidate(n.ID)
			result.RemovedIDs = append(result.RemovedIDs, n.ID)
			result.RemovedCount++
		} else {
			result.PreservedIDs = append(result.PreservedIDs, n.ID)
		}
	}
	return result, nil
}

// PruneLeafs caps the number of active leaves to maxLeafs, invalidating
// the lowest-probability overflow.
func (e *Engine) PruneLeafs(ctx context.Context, maxLeafs int) (*PruneLeafsResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, engineerr.Internal("context cancelled: %v", err)
	}
	if maxLeafs <= 0 {
		return nil, engineerr.InvalidInput("max_leafs", "must be > 0, got %d", maxLeafs)
	}

	leaves := e.store.Leaves()
	result := &PruneLeafsResult{LeafCountPre: len(leaves)}
	if len(leaves) <= maxLeafs {
		result.NoOp = true
		for _, l := range leaves {
			result.KeptIDs = append(result.KeptIDs, l.ID)
		}
		return result, nil
	}

	// Stable sort by probability descending; ties are broken by creation
	// time, so the earlier-inserted leaf is kept. Leaves with equal
	// timestamps keep Store.Leaves's order.
	sort.SliceStable(leaves, func(i, j int) bool {
		if leaves[i].Probability != leaves[j].Probability {
			return leaves[i].Probability > leaves[j].Probability
		}
		return leaves[i].CreatedAt.Before(leaves[j].CreatedAt)
	})

	for i, l := range leaves {
		if i < maxLeafs {
			result.KeptIDs = append(result.KeptIDs, l.ID)
			continue
		}
		e.store.Invalidate(l.ID)
		result.InvalidIDs = append(result.InvalidIDs, l.ID)
	}
	return result, nil
}
