package probtree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportPathsRequiresMinimumInsights(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	_, err := e.CreateTree(ctx, "premise long enough for this test", 5)
	require.NoError(t, err)

	_, err = e.ExportPaths(ctx, "Strategic", []string{"a", "b"}, 0.5)
	require.Error(t, err)

	_, err = e.ExportPaths(ctx, "Strategic", []string{"a", "b", "c"}, 0.5)
	require.NoError(t, err)
}

func TestExportPathsRejectsEmptyInsightAfterTrim(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	_, err := e.CreateTree(ctx, "premise long enough for this test", 5)
	require.NoError(t, err)

	_, err = e.ExportPaths(ctx, "Strategic", []string{"a", "  ", "c"}, 0.5)
	require.Error(t, err)
}

func TestExportPathsRejectsOutOfRangeConfidence(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	_, err := e.CreateTree(ctx, "premise long enough for this test", 5)
	require.NoError(t, err)

	_, err = e.ExportPaths(ctx, "Strategic", []string{"a", "b", "c"}, -0.1)
	require.Error(t, err)
	_, err = e.ExportPaths(ctx, "Strategic", []string{"a", "b", "c"}, 1.1)
	require.Error(t, err)
}

func TestExportPathsTotalsThoughtTokensAcrossLeaves(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	_, err := e.CreateTree(ctx, "premise long enough for this test", 5)
	require.NoError(t, err)

	_, err = e.AddLeaf(ctx, "p1", "alpha beta", 0.6, 6)
	require.NoError(t, err)
	_, err = e.AddLeaf(ctx, "p2", "gamma delta epsilon", 0.4, 4)
	require.NoError(t, err)

	result, err := e.ExportPaths(ctx, "Strategic", []string{"a", "b", "c"}, 0.5)
	require.NoError(t, err)
	require.Len(t, result.Paths, 2)
	assert.Equal(t, 5, result.TotalThoughtTokens)
}

func TestExportPathsChainIncludesEmptyAncestorReasoning(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	_, err := e.CreateTree(ctx, "premise long enough for this test", 5)
	require.NoError(t, err)

	_, err = e.AddLeaf(ctx, "p1", "leaf reasoning", 0.6, 6)
	require.NoError(t, err)

	result, err := e.ExportPaths(ctx, "Strategic", []string{"a", "b", "c"}, 0.5)
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	// The root's reasoning is empty but still anchors the chain.
	assert.Equal(t, " -> leaf reasoning", result.Paths[0].ReasoningChain)
}

func TestExportPathsExcludesInvalidatedLeaves(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	_, err := e.CreateTree(ctx, "premise long enough for this test", 5)
	require.NoError(t, err)

	survivor, err := e.AddLeaf(ctx, "keep", "r", 0.9, 9)
	require.NoError(t, err)
	doomed, err := e.AddLeaf(ctx, "drop", "r", 0.1, 3)
	require.NoError(t, err)

	_, err = e.PruneTree(ctx, 0.5)
	require.NoError(t, err)

	result, err := e.ExportPaths(ctx, "Strategic", []string{"a", "b", "c"}, 0.5)
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	assert.Equal(t, survivor.NodeID, result.Paths[0].LeafID)
	for _, p := range result.Paths {
		assert.NotEqual(t, doomed.NodeID, p.LeafID)
	}
}
