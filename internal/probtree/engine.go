package probtree

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deepanalytics/reasoning-engines/internal/engineerr"
)

// Engine is the state machine over a session's Store implementing the
// cursor protocol and the create/add/expand/navigate/prune/balance/
// validate/inspect/export operations. One Engine is owned
// exclusively by one session; it performs no locking of its own beyond
// what Store already provides. Each Store call is locked on its own, so
// a public method that makes several Store calls is not atomic with
// respect to other calls on the same Engine; TreeSession does not
// serialize calls either.
type Engine struct {
	store *Store
	log   *slog.Logger
}

// NewEngine constructs an Engine with an empty Store. log may be nil, in
// which case a discard logger is used.
func NewEngine(log *slog.Logger) *Engine {
	if log == nil {
		log = discardLogger()
	}
	return &Engine{store: NewStore(), log: log}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

const minPremiseLen = 10

// CreateTree creates a new root node, replacing any existing tree in
// this session's store.
func (e *Engine) CreateTree(ctx context.Context, premise string, complexity int) (*CreateTreeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, engineerr.Internal("context cancelled: %v", err)
	}
	trimmed := strings.TrimSpace(premise)
	if len(trimmed) < minPremiseLen {
		return nil, engineerr.InvalidInput("premise", "must be at least %d characters after trimming, got %d", minPremiseLen, len(trimmed))
	}
	if complexity < 1 || complexity > 10 {
		return nil, engineerr.InvalidInput("complexity", "must be in [1, 10], got %d", complexity)
	}

	root := e.store.Reset(trimmed, complexity)
	e.log.Debug("tree created", "root_id", root.ID, "complexity", complexity)
	return &CreateTreeResult{RootID: root.ID}, nil
}

// AddLeaf appends a new child under the current cursor. It does not move the cursor.
func (e *Engine) AddLeaf(ctx context.Context, premise, reasoning string, probability float64, confidence int) (*AddLeafResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, engineerr.Internal("context cancelled: %v", err)
	}
	premise = strings.TrimSpace(premise)
	reasoning = strings.TrimSpace(reasoning)
	if premise == "" {
		return nil, engineerr.InvalidInput("premise", "must not be empty after trimming")
	}
	if reasoning == "" {
		return nil, engineerr.InvalidInput("reasoning", "must not be empty after trimming")
	}
	if probability < 0.0 || probability > 1.0 {
		return nil, engineerr.ProbabilityOutOfRange(probability)
	}
	if confidence < 1 || confidence > 10 {
		return nil, engineerr.InvalidInput("confidence", "must be in [1, 10], got %d", confidence)
	}

	cursorID := e.store.Cursor()
	if cursorID == nil {
		return nil, engineerr.OperationNotAllowed("no cursor set; call create_tree or navigate_to first")
	}
	cursor, ok := e.store.Get(*cursorID)
	if !ok {
		return nil, engineerr.NotFound("cursor", *cursorID)
	}

	cfg := e.store.Config()
	if cursor.Depth+1 >= cfg.MaxDepth {
		return nil, engineerr.OperationNotAllowed(fmt.Sprintf(
			"depth limit reached: cursor is at depth %d, max_depth is %d", cursor.Depth, cfg.MaxDepth))
	}

	child, ok := e.store.InsertChild(*cursorID, premise, reasoning, probability, confidence)
	if !ok {
		return nil, engineerr.NotFound("cursor", *cursorID)
	}
	return &AddLeafResult{NodeID: child.ID, ParentID: *cursorID, Depth: child.Depth}, nil
}

// ExpandLeaf flips a leaf into a Branch and moves the cursor to it.
func (e *Engine) ExpandLeaf(ctx context.Context, nodeID, rationale string) (*ExpandLeafResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, engineerr.Internal("context cancelled: %v", err)
	}
	rationale = strings.TrimSpace(rationale)
	if rationale == "" {
		return nil, engineerr.InvalidInput("rationale", "must not be empty after trimming")
	}

	node, ok := e.store.Get(nodeID)
	if !ok {
		return nil, engineerr.NotFound("node_id", nodeID)
	}
	if node.IsInvalidated {
		return nil, engineerr.OperationNotAllowed("node " + nodeID + " is invalidated")
	}
	if !node.IsLeaf() {
		return nil, engineerr.OperationNotAllowed("node " + nodeID + " is not a leaf")
	}
	cfg := e.store.Config()
	if node.Depth >= cfg.MaxDepth {
		return nil, engineerr.OperationNotAllowed("depth limit reached")
	}

	if _, ok := e.store.ExpandLeaf(nodeID, rationale); !ok {
		return nil, engineerr.NotFound("node_id", nodeID)
	}
	e.store.SetCursor(nodeID)
	return &ExpandLeafResult{NodeID: nodeID}, nil
}

// NavigateTo moves the cursor to an arbitrary existing node.
func (e *Engine) NavigateTo(ctx context.Context, nodeID string) (*NavigateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, engineerr.Internal("context cancelled: %v", err)
	}
	if _, ok := e.store.Get(nodeID); !ok {
		return nil, engineerr.NotFound("node_id", nodeID)
	}
	e.store.SetCursor(nodeID)
	e.store.SetCurrentNodeMetadata(nodeID)
	return &NavigateResult{NodeID: nodeID}, nil
}

// Store exposes the underlying Store for inspection by tests; the
// engine's own methods use the store field directly.
func (e *Engine) Store() *Store { return e.store }
