package probtree

import (
	"strings"

	"context"

	"github.com/deepanalytics/reasoning-engines/internal/engineerr"
)

const minInsights = 3

// ExportPaths walks every active (non-invalidated) leaf back to the
// root, bundling the resulting paths with caller-supplied insights and a
// fresh InspectTree snapshot.
func (e *Engine) ExportPaths(ctx context.Context, style string, insights []string, confidence float64) (*ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, engineerr.Internal("context cancelled: %v", err)
	}
	if len(insights) < minInsights {
		return nil, engineerr.InvalidInput("insights", "need at least %d insights, got %d", minInsights, len(insights))
	}
	trimmed := make([]string, len(insights))
	for i, s := range insights {
		t := strings.TrimSpace(s)
		if t == "" {
			return nil, engineerr.InvalidInput("insights", "insight %d must not be empty after trimming", i)
		}
		trimmed[i] = t
	}
	if confidence < 0.0 || confidence > 1.0 {
		return nil, engineerr.ProbabilityOutOfRange(confidence)
	}

	snapshot, err := e.InspectTree(ctx)
	if err != nil {
		return nil, err
	}

	var paths []ExportedPath
	totalTokens := 0
	for _, leaf := range e.store.Leaves() {
		p := e.exportPath(leaf)
		paths = append(paths, p)
		totalTokens += p.ThoughtTokens
	}

	return &ExportResult{
		Style:              style,
		Paths:              paths,
		Insights:           trimmed,
		Confidence:         confidence,
		TotalThoughtTokens: totalTokens,
		Snapshot:           snapshot,
	}, nil
}

// exportPath walks from leaf to root, accumulating path probability,
// premises (root-first order), and the arrow-joined reasoning chain
//.
func (e *Engine) exportPath(leaf *TreeNode) ExportedPath {
	pathProb := leaf.Probability
	nodeIDs := []string{leaf.ID}
	premises := []string{leaf.Premise}
	reasoningChain := []string{leaf.Reasoning}
	thoughtTokens := len(strings.Fields(leaf.Reasoning))

	current := leaf
	for current.ParentID != nil {
		parent, ok := e.store.Get(*current.ParentID)
		if !ok {
			break
		}
		pathProb *= parent.Probability
		nodeIDs = append([]string{parent.ID}, nodeIDs...)
		premises = append([]string{parent.Premise}, premises...)
		reasoningChain = append([]string{parent.Reasoning}, reasoningChain...)
		current = parent
	}

	return ExportedPath{
		LeafID:           leaf.ID,
		NodeIDs:          nodeIDs,
		Premises:         premises,
		ReasoningChain:   strings.Join(reasoningChain, " -> "),
		FinalProbability: pathProb,
		ConfidenceScore:  float64(leaf.Confidence) / 10.0,
		ThoughtTokens:    thoughtTokens,
	}
}
