package probtree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPruneTreeBuildAndExport drives a full build, prune, and export
// cycle and checks the exact numbers that fall out of it.
func TestPruneTreeBuildAndExport(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()

	root, err := e.CreateTree(ctx, "Should we expand to Europe?", 5)
	require.NoError(t, err)

	l1, err := e.AddLeaf(ctx, "Positive research", "Surveys show 70%", 0.7, 8)
	require.NoError(t, err)
	l2, err := e.AddLeaf(ctx, "Negative research", "Focus groups cold", 0.3, 6)
	require.NoError(t, err)

	_, err = e.ExpandLeaf(ctx, l1.NodeID, "Break down by segment")
	require.NoError(t, err)

	l3, err := e.AddLeaf(ctx, "B2B strong", "Enterprise demand", 0.8, 9)
	require.NoError(t, err)
	l4, err := e.AddLeaf(ctx, "B2C weak", "Unclear adoption", 0.3, 5)
	require.NoError(t, err)

	snap, err := e.InspectTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.TotalNodes)
	assert.Equal(t, 3, snap.ActivePaths)
	assert.Equal(t, 2, snap.MaxDepth)

	coherence, err := e.ValidateCoherence(ctx)
	require.NoError(t, err)
	assert.True(t, coherence.IsCoherent)

	pruned, err := e.PruneTree(ctx, 0.6)
	require.NoError(t, err)
	assert.InDelta(t, 0.66, pruned.Threshold, 1e-9)
	assert.ElementsMatch(t, []string{l2.NodeID, l4.NodeID}, pruned.RemovedIDs)
	assert.ElementsMatch(t, []string{l1.NodeID, l3.NodeID}, pruned.PreservedIDs)

	exported, err := e.ExportPaths(ctx, "Strategic", []string{"a", "b", "c"}, 0.8)
	require.NoError(t, err)
	require.Len(t, exported.Paths, 1)
	assert.Equal(t, l3.NodeID, exported.Paths[0].LeafID)
	assert.InDelta(t, 0.56, exported.Paths[0].FinalProbability, 1e-9)
	assert.Equal(t, root.RootID, exported.Paths[0].NodeIDs[0])

	rootNode, ok := e.Store().Get(root.RootID)
	require.True(t, ok)
	assert.False(t, rootNode.IsInvalidated)
}

// TestPruneTreeNeverInvalidatesRoot: even maximum aggressiveness spares the root.
func TestPruneTreeNeverInvalidatesRoot(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	root, err := e.CreateTree(ctx, "premise long enough for this test", 5)
	require.NoError(t, err)

	_, err = e.PruneTree(ctx, 1.0)
	require.NoError(t, err)

	node, ok := e.Store().Get(root.RootID)
	require.True(t, ok)
	assert.False(t, node.IsInvalidated)
}

func TestPruneTreeRejectsOutOfRangeAggressiveness(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	_, err := e.CreateTree(ctx, "premise long enough for this test", 5)
	require.NoError(t, err)

	_, err = e.PruneTree(ctx, -0.1)
	require.Error(t, err)
	_, err = e.PruneTree(ctx, 1.1)
	require.Error(t, err)
}

func TestPruneTreeThresholdInvariant(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	_, err := e.CreateTree(ctx, "premise long enough for this test", 5)
	require.NoError(t, err)

	for i, p := range []float64{0.1, 0.2, 0.5, 0.9} {
		_, err := e.AddLeaf(ctx, "premise", "reasoning", p, 5)
		require.NoError(t, err)
		_ = i
	}

	for _, aggressiveness := range []float64{0.0, 0.25, 0.5, 0.75, 1.0} {
		result, err := e.PruneTree(ctx, aggressiveness)
		require.NoError(t, err)
		threshold := DefaultMinProbability + aggressiveness*(1-DefaultMinProbability)
		for _, n := range e.Store().All() {
			if n.NodeType == Root {
				continue
			}
			if n.Probability >= threshold {
				assert.NotContains(t, result.RemovedIDs, n.ID)
			}
		}
	}
}

func TestPruneLeafsCapsActiveLeaves(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	_, err := e.CreateTree(ctx, "premise long enough for this test", 5)
	require.NoError(t, err)

	for _, p := range []float64{0.9, 0.5, 0.1, 0.7} {
		_, err := e.AddLeaf(ctx, "premise", "reasoning", p, 5)
		require.NoError(t, err)
	}

	result, err := e.PruneLeafs(ctx, 2)
	require.NoError(t, err)
	assert.False(t, result.NoOp)
	assert.Len(t, result.KeptIDs, 2)
	assert.Len(t, result.InvalidIDs, 2)
}

func TestPruneLeafsNoOpWhenUnderLimit(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	_, err := e.CreateTree(ctx, "premise long enough for this test", 5)
	require.NoError(t, err)
	_, err = e.AddLeaf(ctx, "premise", "reasoning", 0.5, 5)
	require.NoError(t, err)

	result, err := e.PruneLeafs(ctx, 10)
	require.NoError(t, err)
	assert.True(t, result.NoOp)
}
