// Package toolcall implements the named tool surface consumed by an RPC
// collaborator, as a thin string-in/string-out dispatcher
// over the two engines. It is not a transport: argument decoding,
// authentication, and wire framing are explicitly out of scope here and
// belong to whatever RPC/HTTP layer a deployment wires in front of it.
package toolcall

import (
	"context"
	"fmt"
	"strings"

	"github.com/deepanalytics/reasoning-engines/internal/probtree"
)

// TreeTools adapts a probtree.Engine to the named tool surface.
type TreeTools struct {
	Engine *probtree.Engine
}

func (t TreeTools) CreateTree(ctx context.Context, premise string, complexity int) (string, error) {
	res, err := t.Engine.CreateTree(ctx, premise, complexity)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("tree created, root=%s", res.RootID), nil
}

func (t TreeTools) AddLeaf(ctx context.Context, premise, reasoning string, probability float64, confidence int) (string, error) {
	res, err := t.Engine.AddLeaf(ctx, premise, reasoning, probability, confidence)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("leaf added, node=%s parent=%s depth=%d", res.NodeID, res.ParentID, res.Depth), nil
}

func (t TreeTools) ExpandLeaf(ctx context.Context, nodeID, rationale string) (string, error) {
	res, err := t.Engine.ExpandLeaf(ctx, nodeID, rationale)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("node %s expanded, cursor moved", res.NodeID), nil
}

func (t TreeTools) NavigateTo(ctx context.Context, nodeID, justification string) (string, error) {
	res, err := t.Engine.NavigateTo(ctx, nodeID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("cursor now at %s (%s)", res.NodeID, justification), nil
}

func (t TreeTools) PruneTree(ctx context.Context, aggressiveness float64) (string, error) {
	res, err := t.Engine.PruneTree(ctx, aggressiveness)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("pruned %d/%d nodes at threshold %.4f", res.RemovedCount, res.TotalEligible, res.Threshold), nil
}

func (t TreeTools) ExportPaths(ctx context.Context, style string, insights []string, confidence float64) (string, error) {
	res, err := t.Engine.ExportPaths(ctx, style, insights, confidence)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "export (%s), %d path(s), confidence=%.2f thought_tokens=%d\n",
		res.Style, len(res.Paths), res.Confidence, res.TotalThoughtTokens)
	for _, p := range res.Paths {
		fmt.Fprintf(&b, "  leaf=%s final_probability=%.4f chain=%s\n", p.LeafID, p.FinalProbability, p.ReasoningChain)
	}
	for _, ins := range res.Insights {
		fmt.Fprintf(&b, "  insight: %s\n", ins)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (t TreeTools) InspectTree(ctx context.Context) (string, error) {
	snap, err := t.Engine.InspectTree(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "total_nodes=%d active_paths=%d max_depth=%d avg_probability=%.4f\n",
		snap.TotalNodes, snap.ActivePaths, snap.MaxDepth, snap.AvgProbability)
	for _, rec := range snap.Recommendations {
		fmt.Fprintf(&b, "  recommendation: %s\n", rec)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (t TreeTools) ValidateCoherence(ctx context.Context) (string, error) {
	report, err := t.Engine.ValidateCoherence(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("is_coherent=%v violations=%d contradictions=%d",
		report.IsCoherent, len(report.Violations), len(report.Contradictions)), nil
}

func (t TreeTools) ProbabilityStatus(ctx context.Context) (string, error) {
	report, err := t.Engine.ProbabilityStatus(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("min_probability=%.4f violations=%d", report.MinProbability, len(report.Violations)), nil
}
