package probtree

import (
	"context"
	"sort"

	"github.com/deepanalytics/reasoning-engines/internal/engineerr"
)

// siblingSumTolerance is the epsilon applied when checking whether a
// parent's children's probabilities sum to more than 1.
const siblingSumTolerance = 0.1

// truthDigestLimit bounds the coherence truth-table-like digest to the
// first five nodes encountered.
const truthDigestLimit = 5

// ValidateCoherence checks per-node bounds and sibling-probability sums
// across the whole tree and reports contradictions.
func (e *Engine) ValidateCoherence(ctx context.Context) (*CoherenceReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, engineerr.Internal("context cancelled: %v", err)
	}

	nodes := e.store.All()
	// Deterministic ordering for the digest and for test stability.
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	report := &CoherenceReport{TruthDigest: map[string]bool{}}
	cfg := e.store.Config()

	byParent := map[string][]*TreeNode{}
	for _, n := range nodes {
		if n.Probability < 0.0 || n.Probability > 1.0 {
			report.Violations = append(report.Violations, Violation{NodeID: n.ID, Field: "probability", Value: n.Probability})
		}
		if n.Confidence < 1 || n.Confidence > 10 {
			report.Violations = append(report.Violations, Violation{NodeID: n.ID, Field: "confidence", Value: float64(n.Confidence)})
		}
		if n.ParentID != nil {
			byParent[*n.ParentID] = append(byParent[*n.ParentID], n)
		}
		if len(report.TruthDigest) < truthDigestLimit {
			report.TruthDigest[n.Premise] = n.Probability > cfg.MinProbability
		}
	}

	for parentID, children := range byParent {
		if len(children) < 2 {
			continue
		}
		var sum float64
		premises := make([]string, 0, len(children))
		for _, c := range children {
			sum += c.Probability
			premises = append(premises, c.Premise)
		}
		if sum > 1.0+siblingSumTolerance {
			report.Contradictions = append(report.Contradictions, Contradiction{
				ParentID:       parentID,
				ChildPremises:  premises,
				ProbabilitySum: sum,
			})
		}
	}

	report.IsCoherent = len(report.Violations) == 0 && len(report.Contradictions) == 0
	return report, nil
}

// ProbabilityStatus reports every node whose probability or confidence
// falls outside its documented range, and flags nodes below the
// session's minimum-probability floor.
func (e *Engine) ProbabilityStatus(ctx context.Context) (*ProbabilityStatusReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, engineerr.Internal("context cancelled: %v", err)
	}

	cfg := e.store.Config()
	report := &ProbabilityStatusReport{MinProbability: cfg.MinProbability}

	for _, n := range e.store.All() {
		if n.Probability < 0.0 || n.Probability > 1.0 {
			report.Violations = append(report.Violations, Violation{NodeID: n.ID, Field: "probability", Value: n.Probability})
		}
		if n.Confidence < 1 || n.Confidence > 10 {
			report.Violations = append(report.Violations, Violation{NodeID: n.ID, Field: "confidence", Value: float64(n.Confidence)})
		}
		if !n.IsInvalidated && n.NodeType != Root && n.Probability < cfg.MinProbability {
			report.Violations = append(report.Violations, Violation{NodeID: n.ID, Field: "below_min_probability", Value: n.Probability})
		}
	}
	return report, nil
}
