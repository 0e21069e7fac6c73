package probtree

import (
	"context"
	"testing"

	"pgregory.net/rapid"
)

// TestProperty_TreeShapeInvariants checks that every
// non-root node's parent exists, lists that node exactly once, and has
// depth = parent.depth + 1, across randomly generated sequences of
// add_leaf/navigate_to calls.
func TestProperty_TreeShapeInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := NewEngine(nil)
		ctx := context.Background()
		root, err := e.CreateTree(ctx, "a premise that is long enough", 7)
		if err != nil {
			t.Fatalf("create_tree failed: %v", err)
		}

		leafIDs := []string{root.RootID}
		steps := rapid.IntRange(1, 20).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0, 1:
				prob := rapid.Float64Range(0, 1).Draw(t, "probability")
				conf := rapid.IntRange(1, 10).Draw(t, "confidence")
				res, err := e.AddLeaf(ctx, "premise text", "reasoning text", prob, conf)
				if err == nil {
					leafIDs = append(leafIDs, res.NodeID)
				}
			case 2:
				if len(leafIDs) == 0 {
					continue
				}
				target := leafIDs[rapid.IntRange(0, len(leafIDs)-1).Draw(t, "navTarget")]
				_, _ = e.NavigateTo(ctx, target)
			}
		}

		for _, n := range e.Store().All() {
			if n.ParentID == nil {
				continue
			}
			parent, ok := e.Store().Get(*n.ParentID)
			if !ok {
				t.Fatalf("node %s references missing parent %s", n.ID, *n.ParentID)
			}
			if parent.Depth+1 != n.Depth {
				t.Fatalf("node %s has depth %d, parent %s has depth %d", n.ID, n.Depth, parent.ID, parent.Depth)
			}
			count := 0
			for _, c := range parent.Children {
				if c == n.ID {
					count++
				}
			}
			if count != 1 {
				t.Fatalf("parent %s lists child %s %d times, want exactly 1", parent.ID, n.ID, count)
			}
		}
	})
}

// TestProperty_PruneNeverInvalidatesAboveThreshold: no node at or above
// the derived threshold is ever invalidated by PruneTree, and the root
// is never invalidated.
func TestProperty_PruneNeverInvalidatesAboveThreshold(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := NewEngine(nil)
		ctx := context.Background()
		_, err := e.CreateTree(ctx, "a premise that is long enough", 7)
		if err != nil {
			t.Fatalf("create_tree failed: %v", err)
		}

		n := rapid.IntRange(0, 15).Draw(t, "leafCount")
		for i := 0; i < n; i++ {
			prob := rapid.Float64Range(0, 1).Draw(t, "probability")
			_, _ = e.AddLeaf(ctx, "premise", "reasoning", prob, 5)
		}

		aggressiveness := rapid.Float64Range(0, 1).Draw(t, "aggressiveness")
		threshold := DefaultMinProbability + aggressiveness*(1-DefaultMinProbability)

		if _, err := e.PruneTree(ctx, aggressiveness); err != nil {
			t.Fatalf("prune_tree failed: %v", err)
		}

		for _, node := range e.Store().All() {
			if node.NodeType == Root {
				if node.IsInvalidated {
					t.Fatalf("root must never be invalidated")
				}
				continue
			}
			if node.Probability >= threshold && node.IsInvalidated {
				t.Fatalf("node %s with probability %v >= threshold %v was invalidated", node.ID, node.Probability, threshold)
			}
		}
	})
}

// TestProperty_InvalidationIsMonotone: once a
// node is invalidated, it stays invalidated for the rest of the session.
func TestProperty_InvalidationIsMonotone(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := NewEngine(nil)
		ctx := context.Background()
		_, err := e.CreateTree(ctx, "a premise that is long enough", 7)
		if err != nil {
			t.Fatalf("create_tree failed: %v", err)
		}

		count := rapid.IntRange(1, 10).Draw(t, "leafCount")
		for i := 0; i < count; i++ {
			_, _ = e.AddLeaf(ctx, "premise", "reasoning", rapid.Float64Range(0, 1).Draw(t, "probability"), 5)
		}

		rounds := rapid.IntRange(1, 5).Draw(t, "rounds")
		invalidatedSoFar := map[string]bool{}
		for i := 0; i < rounds; i++ {
			aggressiveness := rapid.Float64Range(0, 1).Draw(t, "aggressiveness")
			if _, err := e.PruneTree(ctx, aggressiveness); err != nil {
				t.Fatalf("prune_tree failed: %v", err)
			}
			for _, node := range e.Store().All() {
				if invalidatedSoFar[node.ID] && !node.IsInvalidated {
					t.Fatalf("node %s was invalidated then became valid again", node.ID)
				}
				if node.IsInvalidated {
					invalidatedSoFar[node.ID] = true
				}
			}
		}
	})
}
