package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepanalytics/reasoning-engines/internal/nemo"
)

func TestSessionGeneratesIDWhenMissing(t *testing.T) {
	ts := NewTreeSession("", nil)
	assert.NotEmpty(t, ts.ID())

	ls := NewLogicSession("", nemo.NewPool(nil, nil), nil)
	assert.NotEmpty(t, ls.ID())
	assert.NotEqual(t, ts.ID(), ls.ID())
}

func TestTreeSessionLazyConstruction(t *testing.T) {
	s := NewTreeSession("s1", nil)
	e1 := s.Engine()
	e2 := s.Engine()
	assert.Same(t, e1, e2, "Engine must be constructed once and reused")
}

func TestLogicSessionDelegatesToPool(t *testing.T) {
	pool := nemo.NewPool(nil, nil)
	s := NewLogicSession("s1", pool, nil)

	w1 := s.Worker()
	w2 := s.Worker()
	assert.Same(t, w1, w2)
	assert.Equal(t, 1, pool.WorkerCount())
}

func TestLogicSessionShutdownEvictsFromPool(t *testing.T) {
	pool := nemo.NewPool(nil, nil)
	s := NewLogicSession("s1", pool, nil)
	_ = s.Worker()
	require.Equal(t, 1, pool.WorkerCount())

	s.Shutdown()
	assert.Equal(t, 0, pool.WorkerCount())

	// A second shutdown must be a harmless no-op.
	s.Shutdown()
	assert.Equal(t, 0, pool.WorkerCount())
}

func TestLogicSessionIsolation(t *testing.T) {
	pool := nemo.NewPool(nil, nil)
	s1 := NewLogicSession("s1", pool, nil)
	s2 := NewLogicSession("s2", pool, nil)
	ctx := context.Background()

	_, err := s1.Worker().LoadFact(ctx, "only1(x).")
	require.NoError(t, err)
	_, err = s2.Worker().LoadFact(ctx, "only2(y).")
	require.NoError(t, err)

	p1, err := s1.Worker().ListPremises(ctx)
	require.NoError(t, err)
	assert.Contains(t, p1, "only1")
	assert.NotContains(t, p1, "only2")
}
