package session

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/deepanalytics/reasoning-engines/internal/nemo"
)

// LogicSession holds a session id and delegates every call to the
// process-wide worker pool. It carries no reasoner state of
// its own.
type LogicSession struct {
	id   string
	pool *nemo.Pool
	log  *slog.Logger

	evicted bool
}

// NewLogicSession returns a façade for id backed by pool. An empty id
// means the transport did not supply one, so a fresh per-connection id
// is generated here.
func NewLogicSession(id string, pool *nemo.Pool, log *slog.Logger) *LogicSession {
	if id == "" {
		id = uuid.NewString()
	}
	return &LogicSession{id: id, pool: pool, log: log}
}

// ID returns the session's identifier.
func (s *LogicSession) ID() string { return s.id }

// Worker returns the session's worker handle, lazily spawning it in the
// pool on first call.
func (s *LogicSession) Worker() *nemo.Worker {
	return s.pool.GetWorker(s.id)
}

// Shutdown evicts this session's worker from the pool. This is the
// authoritative eviction path; callers that terminate a
// session must call it explicitly.
func (s *LogicSession) Shutdown() {
	if s.evicted {
		return
	}
	s.evicted = true
	s.pool.RemoveWorker(s.id)
}

// Close is a best-effort drop-time cleanup hook. It performs the same
// eviction as Shutdown but logs a warning first: drop-time cleanup is
// best-effort, Shutdown is the authoritative path, and a caller relying
// on Close alone may be racing process exit.
func (s *LogicSession) Close() {
	if s.evicted {
		return
	}
	if s.log != nil {
		s.log.Warn("logic session dropped without explicit shutdown; evicting best-effort", "session_id", s.id)
	}
	s.Shutdown()
}
