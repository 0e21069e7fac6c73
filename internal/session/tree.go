// Package session holds the per-connection façades that sit between the
// RPC/HTTP collaborator (out of scope here) and the two reasoning
// backends. Each façade hides lazy construction and pool eviction behind
// a small surface a transport layer can call directly.
package session

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/deepanalytics/reasoning-engines/internal/probtree"
)

// TreeSession lazily owns one probtree.Engine. The zero value is ready
// to use; Engine() constructs the underlying Engine on first call rather
// than at session creation.
type TreeSession struct {
	id  string
	log *slog.Logger

	once   sync.Once
	engine *probtree.Engine
}

// NewTreeSession returns a façade for id. An empty id means the
// transport did not supply one, so a fresh per-connection id is
// generated here. log may be nil.
func NewTreeSession(id string, log *slog.Logger) *TreeSession {
	if id == "" {
		id = uuid.NewString()
	}
	return &TreeSession{id: id, log: log}
}

// ID returns the session's identifier.
func (s *TreeSession) ID() string { return s.id }

// Engine returns the session's Tree Engine, constructing it on first
// call.
func (s *TreeSession) Engine() *probtree.Engine {
	s.once.Do(func() {
		s.engine = probtree.NewEngine(s.log)
	})
	return s.engine
}

// Shutdown is the authoritative cleanup path for a tree session. The
// tree engine holds no pooled resources of its own, so this only exists
// to give callers a symmetric lifecycle with LogicSession.
func (s *TreeSession) Shutdown() {}

// Close implements a best-effort drop-time cleanup hook; the explicit
// Shutdown call is the authoritative path and Close is only a fallback
// for callers that cannot invoke Shutdown synchronously.
func (s *TreeSession) Close() { s.Shutdown() }
