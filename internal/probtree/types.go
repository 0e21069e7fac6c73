// Package probtree implements the Probability Tree Engine: an in-memory,
// session-scoped store of annotated probability-tree nodes plus the
// cursor-driven operations that build, mutate, validate, prune, and
// export them.
package probtree

import "time"

// NodeType classifies a TreeNode's role in the tree.
type NodeType int

const (
	// Root is the single entry point of a tree; it has no parent.
	Root NodeType = iota
	// Branch is a node that has been expanded via ExpandLeaf.
	Branch
	// Leaf is a node with no children that has not been expanded.
	Leaf
)

func (t NodeType) String() string {
	switch t {
	case Root:
		return "root"
	case Branch:
		return "branch"
	case Leaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// UncertaintyType selects a BalanceLeafs rebalancing algorithm.
type UncertaintyType int

const (
	// InsufficientData pulls overconfident leaves toward the mean.
	InsufficientData UncertaintyType = iota
	// EqualLikelihood pulls underconfident leaves up toward certainty.
	EqualLikelihood
	// CognitiveOverload blends every leaf toward the mean.
	CognitiveOverload
)

func (u UncertaintyType) String() string {
	switch u {
	case InsufficientData:
		return "insufficient_data"
	case EqualLikelihood:
		return "equal_likelihood"
	case CognitiveOverload:
		return "cognitive_overload"
	default:
		return "unknown"
	}
}

// TreeNode is a single node in a session's probability tree.
// Nodes are never physically removed; IsInvalidated is the terminal
// soft-delete state.
type TreeNode struct {
	ID            string
	Premise       string
	Reasoning     string
	Probability   float64
	Confidence    int
	ParentID      *string
	Children      []string // ordered by insertion
	NodeType      NodeType
	IsInvalidated bool
	Depth         int
	CreatedAt     time.Time
	Metadata      map[string]string
}

// IsLeaf reports whether n is a leaf: no children and not the root.
// Invalidation is not considered; callers check IsInvalidated themselves. Derived from the children slice rather than the
// node_type field, which may lag during the ExpandLeaf type flip.
func (n *TreeNode) IsLeaf() bool {
	return n.NodeType != Root && len(n.Children) == 0
}

// clone returns a defensive copy of n so callers outside the store can
// never mutate engine state through an aliased pointer.
func (n *TreeNode) clone() *TreeNode {
	cp := *n
	if n.ParentID != nil {
		id := *n.ParentID
		cp.ParentID = &id
	}
	cp.Children = append([]string(nil), n.Children...)
	cp.Metadata = make(map[string]string, len(n.Metadata))
	for k, v := range n.Metadata {
		cp.Metadata[k] = v
	}
	return &cp
}

// TreeConfig is the per-session tree configuration.
type TreeConfig struct {
	RootID         *string
	MaxDepth       int
	MinProbability float64
	BranchLimit    int
	UseLaplace     bool
	Complexity     int
}

// DefaultMinProbability is the fixed minimum-probability floor used to
// derive prune thresholds.
const DefaultMinProbability = 0.15

// complexityTable maps complexity bands to (max_depth, branch_limit).
var complexityTable = []struct {
	lo, hi              int
	maxDepth, branchLim int
}{
	{1, 2, 3, 3},
	{3, 4, 4, 4},
	{5, 7, 6, 5},
	{8, 10, 8, 6},
}

// ComplexityToLimits returns the (max_depth, branch_limit) pair for a
// given complexity in [1, 10]. Complexity values outside the documented
// bands (which cannot occur once CreateTree validates its input) fall
// back to the widest band.
func ComplexityToLimits(complexity int) (maxDepth, branchLimit int) {
	for _, band := range complexityTable {
		if complexity >= band.lo && complexity <= band.hi {
			return band.maxDepth, band.branchLim
		}
	}
	return 8, 6
}

// NewTreeConfig builds the TreeConfig for a freshly created tree.
func NewTreeConfig(complexity int) TreeConfig {
	maxDepth, branchLimit := ComplexityToLimits(complexity)
	return TreeConfig{
		MaxDepth:       maxDepth,
		MinProbability: DefaultMinProbability,
		BranchLimit:    branchLimit,
		UseLaplace:     true,
		Complexity:     complexity,
	}
}
