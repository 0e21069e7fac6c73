package nemo

import (
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/deepanalytics/reasoning-engines/internal/nemo/reasoner"
)

// Pool is the process-wide map from session id to worker handle. It is created exactly once per process; callers share one Pool
// across every session.
type Pool struct {
	mu      sync.RWMutex
	workers map[string]*Worker
	group   singleflight.Group

	newBackend func() reasoner.Backend
	log        *slog.Logger
}

// NewPool constructs an empty Pool. newBackend is called once per worker
// to produce that worker's reasoner.Backend instance; pass
// reasoner.NewMemory if nil.
func NewPool(newBackend func() reasoner.Backend, log *slog.Logger) *Pool {
	if newBackend == nil {
		newBackend = func() reasoner.Backend { return reasoner.NewMemory() }
	}
	if log == nil {
		log = discardLogger()
	}
	return &Pool{
		workers:    map[string]*Worker{},
		newBackend: newBackend,
		log:        log,
	}
}

// GetWorker returns the existing worker for sessionID, or spawns and
// registers a new one. Concurrent first-touches for the same sessionID
// collapse into a single spawn via singleflight on top of the usual
// take-a-write-lock, double-check, spawn, insert sequence.
func (p *Pool) GetWorker(sessionID string) *Worker {
	p.mu.RLock()
	w, ok := p.workers[sessionID]
	p.mu.RUnlock()
	if ok {
		return w
	}

	v, _, _ := p.group.Do(sessionID, func() (any, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if existing, ok := p.workers[sessionID]; ok {
			return existing, nil
		}
		created := NewWorker(sessionID, p.newBackend(), p.log)
		p.workers[sessionID] = created
		return created, nil
	})
	return v.(*Worker)
}

// RemoveWorker evicts sessionID's worker, if any, and sends it a Shutdown
// signal.
func (p *Pool) RemoveWorker(sessionID string) {
	p.mu.Lock()
	w, ok := p.workers[sessionID]
	if ok {
		delete(p.workers, sessionID)
	}
	p.mu.Unlock()
	if ok {
		w.Shutdown()
	}
}

// WorkerCount returns the current number of live session entries.
func (p *Pool) WorkerCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.workers)
}
