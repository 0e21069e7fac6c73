package reasoner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFactsAndRuleDerivation(t *testing.T) {
	m := NewMemory()
	prog, err := m.Load("alive(cat).\nliving(?X) :- alive(?X).")
	require.NoError(t, err)
	require.NoError(t, m.Reason(prog))

	rows, err := m.PredicateRows(prog, "living")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"cat"}, rows[0].Values)
}

func TestMemoryRejectsNonGroundFacts(t *testing.T) {
	m := NewMemory()
	_, err := m.Load("alive(?X).")
	require.Error(t, err)
}

func TestMemoryRejectsStatementMissingTerminator(t *testing.T) {
	m := NewMemory()
	_, err := m.Load("bad syntax")
	require.Error(t, err)
}

func TestMemoryDeduplicatesFacts(t *testing.T) {
	m := NewMemory()
	prog, err := m.Load("p(a).\np(a).\np(b).")
	require.NoError(t, err)
	rows, err := m.PredicateRows(prog, "p")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestMemoryNegationAsFailure(t *testing.T) {
	m := NewMemory()
	prog, err := m.Load(
		"bird(tweety).\nbird(penguin_pete).\nflightless(penguin_pete).\n" +
			"flies(?X) :- bird(?X), not flightless(?X).")
	require.NoError(t, err)
	require.NoError(t, m.Reason(prog))

	rows, err := m.PredicateRows(prog, "flies")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "tweety", rows[0].Values[0])
}

func TestMemoryJoinAcrossTwoPredicates(t *testing.T) {
	m := NewMemory()
	prog, err := m.Load(
		"parent(alice, bob).\nparent(bob, carol).\n" +
			"grandparent(?X, ?Z) :- parent(?X, ?Y), parent(?Y, ?Z).")
	require.NoError(t, err)
	require.NoError(t, m.Reason(prog))

	rows, err := m.PredicateRows(prog, "grandparent")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"alice", "carol"}, rows[0].Values)
}

func TestMemoryIgnoresExportDirective(t *testing.T) {
	m := NewMemory()
	prog, err := m.Load("alive(cat).\n@export alive.")
	require.NoError(t, err)
	require.NoError(t, m.Reason(prog))
	rows, err := m.PredicateRows(prog, "alive")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestMemoryStripsComments(t *testing.T) {
	m := NewMemory()
	prog, err := m.Load("alive(cat). % this is a fact")
	require.NoError(t, err)
	rows, err := m.PredicateRows(prog, "alive")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
