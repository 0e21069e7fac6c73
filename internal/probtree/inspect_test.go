package probtree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectTreeRequiresExistingTree(t *testing.T) {
	e := NewEngine(nil)
	_, err := e.InspectTree(context.Background())
	require.Error(t, err)
}

// TestInspectTreeIdempotent: two
// consecutive calls on an unchanged tree return equal snapshots.
func TestInspectTreeIdempotent(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	_, err := e.CreateTree(ctx, "premise long enough for this test", 5)
	require.NoError(t, err)
	_, err = e.AddLeaf(ctx, "p1", "r1", 0.6, 6)
	require.NoError(t, err)

	a, err := e.InspectTree(ctx)
	require.NoError(t, err)
	b, err := e.InspectTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestInspectTreeRecommendationsReactToShape(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	_, err := e.CreateTree(ctx, "premise long enough for this test", 5)
	require.NoError(t, err)
	_, err = e.AddLeaf(ctx, "p1", "r1", 0.1, 5)
	require.NoError(t, err)

	snap, err := e.InspectTree(ctx)
	require.NoError(t, err)
	assert.Contains(t, snap.Recommendations, "add more leaves")
	assert.Contains(t, snap.Recommendations, "expand deeper")
}

func TestInspectTreeComplexityScore(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	_, err := e.CreateTree(ctx, "premise long enough for this test", 5)
	require.NoError(t, err)

	snap, err := e.InspectTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.ComplexityScore)
}
