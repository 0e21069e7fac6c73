package probtree

import (
	"strconv"
	"sync"
	"time"

	"github.com/deepanalytics/reasoning-engines/internal/friendlyid"
)

// Store is an in-memory keyed collection of TreeNodes with parent/child
// back-references by id (the arena+index pattern): nodes own no
// pointers to each other, only ids, so there is no reference-counted
// back-pointer to manage.
//
// A Store is the unit of session isolation: each session owns exactly
// one Store, created lazily by the session façade.
type Store struct {
	mu       sync.RWMutex
	nodes    map[string]*TreeNode
	config   TreeConfig
	cursor   *string
	revision uint64
	ids      *friendlyid.Generator
}

// NewStore returns an empty, unconfigured Store. It holds no tree until
// Reset is called by CreateTree.
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*TreeNode),
		ids:   friendlyid.New(),
	}
}

// Reset clears any existing tree and installs a fresh root node, per
// CreateTree's "clears any existing tree in session" contract.
func (s *Store) Reset(premise string, complexity int) *TreeNode {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := NewTreeConfig(complexity)
	s.nodes = make(map[string]*TreeNode)
	s.revision++

	id := s.newID()
	root := &TreeNode{
		ID:          id,
		Premise:     premise,
		Probability: 1.0,
		Confidence:  10,
		NodeType:    Root,
		Depth:       0,
		CreatedAt:   time.Now(),
		Metadata:    map[string]string{"complexity": strconv.Itoa(complexity)},
	}
	s.nodes[id] = root
	cfg.RootID = &id
	s.config = cfg
	s.cursor = &id
	return root.clone()
}

// newID allocates a friendly id not already present in the store. Caller
// must hold s.mu.
func (s *Store) newID() string {
	taken := make(map[string]bool, len(s.nodes))
	for id := range s.nodes {
		taken[id] = true
	}
	return s.ids.GenerateUnique(taken)
}

// InsertChild appends a new child node under parentID. Returns the new
// node and true, or (nil, false) if parentID does not exist.
func (s *Store) InsertChild(parentID, premise, reasoning string, probability float64, confidence int) (*TreeNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.nodes[parentID]
	if !ok {
		return nil, false
	}

	id := s.newID()
	child := &TreeNode{
		ID:          id,
		Premise:     premise,
		Reasoning:   reasoning,
		Probability: probability,
		Confidence:  confidence,
		ParentID:    &parentID,
		NodeType:    Leaf,
		Depth:       parent.Depth + 1,
		CreatedAt:   time.Now(),
		Metadata:    map[string]string{},
	}
	s.nodes[id] = child
	parent.Children = append(parent.Children, id)
	s.revision++
	return child.clone(), true
}

// Get returns a defensive copy of the node with the given id.
func (s *Store) Get(id string) (*TreeNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return nil, false
	}
	return n.clone(), true
}

// All returns defensive copies of every node, in no particular order.
func (s *Store) All() []*TreeNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*TreeNode, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n.clone())
	}
	return out
}

// Len returns the number of nodes currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// HasTree reports whether a tree has been created in this store.
func (s *Store) HasTree() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.RootID != nil
}

// Config returns a copy of the current tree configuration.
func (s *Store) Config() TreeConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Revision returns the current monotonic mutation counter, for callers
// that want to detect a stale cached snapshot.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Cursor returns the current cursor node id, if set.
func (s *Store) Cursor() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cursor == nil {
		return nil
	}
	id := *s.cursor
	return &id
}

// SetCursor moves the cursor to id. Returns false if id does not exist.
func (s *Store) SetCursor(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[id]; !ok {
		return false
	}
	s.cursor = &id
	return true
}

// SetCurrentNodeMetadata records the cursor target under the root's
// tree_state metadata, per navigate_to's "also recorded ... under key
// current_node" contract.
func (s *Store) SetCurrentNodeMetadata(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config.RootID == nil {
		return
	}
	root, ok := s.nodes[*s.config.RootID]
	if !ok {
		return
	}
	if root.Metadata == nil {
		root.Metadata = map[string]string{}
	}
	root.Metadata["current_node"] = id
	s.revision++
}

// ExpandLeaf flips a node's type to Branch and overwrites its reasoning.
// Returns false if id does not exist, is not a leaf, or is invalidated.
func (s *Store) ExpandLeaf(id, rationale string) (*TreeNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok || n.IsInvalidated || !n.IsLeaf() {
		return nil, false
	}
	n.NodeType = Branch
	n.Reasoning = rationale
	s.revision++
	return n.clone(), true
}

// Invalidate marks the node's IsInvalidated flag true (monotone; a
// second call is a harmless no-op). Returns false if id does not exist.
func (s *Store) Invalidate(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	n.IsInvalidated = true
	s.revision++
	return true
}

// SetProbability overwrites a node's probability (used by BalanceLeafs).
func (s *Store) SetProbability(id string, p float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	n.Probability = p
	s.revision++
	return true
}

// Leaves returns defensive copies of every active (non-invalidated) leaf
// node, in depth-first order from the root with siblings in insertion
// order.
func (s *Store) Leaves() []*TreeNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*TreeNode
	// Deterministic order: walk parents' children slices via a stable
	// traversal from root rather than ranging the map directly.
	if s.config.RootID == nil {
		return out
	}
	var walk func(id string)
	walk = func(id string) {
		n := s.nodes[id]
		if n == nil {
			return
		}
		if !n.IsInvalidated && n.IsLeaf() {
			out = append(out, n.clone())
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(*s.config.RootID)
	return out
}

// Root returns the tree's root node, if any.
func (s *Store) Root() (*TreeNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config.RootID == nil {
		return nil, false
	}
	n, ok := s.nodes[*s.config.RootID]
	if !ok {
		return nil, false
	}
	return n.clone(), true
}

// Parent returns the parent of the node with the given id, if any.
func (s *Store) Parent(id string) (*TreeNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok || n.ParentID == nil {
		return nil, false
	}
	p, ok := s.nodes[*n.ParentID]
	if !ok {
		return nil, false
	}
	return p.clone(), true
}
