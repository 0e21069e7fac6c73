package nemo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripComments(t *testing.T) {
	in := "alive(cat). % a fact\n% full line comment\nliving(?X) :- alive(?X)."
	out := stripComments(in)
	assert.Equal(t, "alive(cat). \nliving(?X) :- alive(?X).", out)
}

func TestCheckDatalogSyntaxAcceptsFactsAndRules(t *testing.T) {
	assert.NoError(t, checkDatalogSyntax("alive(cat)."))
	assert.NoError(t, checkDatalogSyntax("living(?X) :- alive(?X)."))
}

func TestCheckDatalogSyntaxRejectsMalformed(t *testing.T) {
	assert.Error(t, checkDatalogSyntax("bad syntax"))
	assert.Error(t, checkDatalogSyntax("alive(cat)"))
}

func TestCheckVariableSyntaxRejectsUnprefixedUppercase(t *testing.T) {
	err := checkVariableSyntax("broken(X) :- alive(X).")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "X")
}

func TestCheckVariableSyntaxAcceptsPrefixed(t *testing.T) {
	assert.NoError(t, checkVariableSyntax("living(?X) :- alive(?X)."))
}

func TestCheckQuerySyntax(t *testing.T) {
	assert.NoError(t, checkQuerySyntax("?- living(cat)."))
	assert.Error(t, checkQuerySyntax("living(cat)."))
	assert.Error(t, checkQuerySyntax("?- living(cat)"))
}
