package reasoner

import (
	"fmt"
	"strings"
)

// maxFixpointIterations bounds Reason's bottom-up evaluation loop so a
// pathological program cannot hang the worker's blocking compute step
// forever; Materialize/Query still have their own timeout budgets on
// top of this.
const maxFixpointIterations = 10000

// memProgram is the Program handle returned by Memory.Load.
type memProgram struct {
	facts map[string][][]string // predicate -> ordered, deduped rows
	seen  map[string]map[string]bool
	rules []Clause
}

func newMemProgram() *memProgram {
	return &memProgram{
		facts: map[string][][]string{},
		seen:  map[string]map[string]bool{},
	}
}

func (p *memProgram) addFact(pred string, row []string) bool {
	key := strings.Join(row, "\x1f")
	if p.seen[pred] == nil {
		p.seen[pred] = map[string]bool{}
	}
	if p.seen[pred][key] {
		return false
	}
	p.seen[pred][key] = true
	p.facts[pred] = append(p.facts[pred], row)
	return true
}

// Memory is a minimal in-memory Datalog evaluator implementing Backend.
// It supports facts, positive-join rules, and negation-as-failure
// evaluated against the fixpoint reached so far. It is not a substitute
// for a production-grade stratified-negation engine; the real reasoner
// is a swappable collaborator behind Backend, so this type exists purely
// to give the rest of the module something concrete to exercise.
type Memory struct{}

// NewMemory returns a ready-to-use Memory backend. It holds no state of
// its own; all state lives in the Program handles it produces.
func NewMemory() *Memory { return &Memory{} }

// Load parses program text (facts, rules, and `@export pred.` directives,
// which are accepted and ignored) into a Program. Comment stripping is the worker's responsibility; Load still
// tolerates stray `%` comments defensively.
func (m *Memory) Load(text string) (Program, error) {
	prog := newMemProgram()
	lineNo := 0
	for _, rawLine := range strings.Split(text, "\n") {
		lineNo++
		line := stripComment(rawLine)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "@export") {
			continue
		}
		if !strings.HasSuffix(line, ".") {
			return nil, &ParseError{Line: lineNo, Detail: "statement must end with '.'"}
		}
		body := line[:len(line)-1]

		if idx := strings.Index(body, ":-"); idx >= 0 {
			head, err := parseLiteral(body[:idx])
			if err != nil {
				return nil, &ParseError{Line: lineNo, Detail: err.Error()}
			}
			var bodyLits []Literal
			for _, part := range splitTopLevel(body[idx+2:], ',') {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				lit, err := parseLiteral(part)
				if err != nil {
					return nil, &ParseError{Line: lineNo, Detail: err.Error()}
				}
				bodyLits = append(bodyLits, lit)
			}
			prog.rules = append(prog.rules, Clause{Head: head, Body: bodyLits})
			continue
		}

		lit, err := parseLiteral(body)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Detail: err.Error()}
		}
		row := make([]string, len(lit.Args))
		for i, a := range lit.Args {
			if a.IsVar {
				return nil, &ParseError{Line: lineNo, Detail: "facts must be ground, found variable ?" + a.Value}
			}
			row[i] = a.Value
		}
		prog.addFact(lit.Predicate, row)
	}
	return prog, nil
}

func stripComment(line string) string {
	if idx := strings.IndexByte(line, '%'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// Reason runs naive bottom-up fixpoint evaluation: repeatedly apply
// every rule against the current fact set until a pass adds nothing new.
func (m *Memory) Reason(p Program) error {
	prog, ok := p.(*memProgram)
	if !ok {
		return fmt.Errorf("reasoner: not a memory program handle")
	}

	for iter := 0; iter < maxFixpointIterations; iter++ {
		added := 0
		for _, rule := range prog.rules {
			for _, binding := range solveBody(prog, rule.Body, map[string]string{}) {
				row, ok := instantiate(rule.Head, binding)
				if !ok {
					continue
				}
				if prog.addFact(rule.Head.Predicate, row) {
					added++
				}
			}
		}
		if added == 0 {
			return nil
		}
	}
	return fmt.Errorf("reasoner: fixpoint did not converge within %d iterations", maxFixpointIterations)
}

// PredicateRows returns every materialized row for predicate.
func (m *Memory) PredicateRows(p Program, predicate string) ([]Row, error) {
	prog, ok := p.(*memProgram)
	if !ok {
		return nil, fmt.Errorf("reasoner: not a memory program handle")
	}
	rows := prog.facts[predicate]
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, Row{Values: append([]string(nil), r...)})
	}
	return out, nil
}

// solveBody enumerates every substitution that satisfies body against
// prog's current fact set, given an initial (possibly empty) binding.
func solveBody(prog *memProgram, body []Literal, binding map[string]string) []map[string]string {
	if len(body) == 0 {
		return []map[string]string{cloneBinding(binding)}
	}
	lit := body[0]
	rest := body[1:]

	if lit.Negated {
		grounded, ok := instantiate(lit, binding)
		if !ok {
			// Unsafe rule: negated literal not fully bound yet. Treat
			// as non-matching rather than hanging the evaluator.
			return nil
		}
		if rowExists(prog, lit.Predicate, grounded) {
			return nil
		}
		return solveBody(prog, rest, binding)
	}

	var results []map[string]string
	for _, row := range prog.facts[lit.Predicate] {
		if len(row) != len(lit.Args) {
			continue
		}
		next, ok := unify(lit.Args, row, binding)
		if !ok {
			continue
		}
		results = append(results, solveBody(prog, rest, next)...)
	}
	return results
}

func rowExists(prog *memProgram, pred string, row []string) bool {
	key := strings.Join(row, "\x1f")
	return prog.seen[pred] != nil && prog.seen[pred][key]
}

// unify attempts to match args against a concrete row under binding,
// returning an extended binding on success.
func unify(args []Term, row []string, binding map[string]string) (map[string]string, bool) {
	next := cloneBinding(binding)
	for i, a := range args {
		if a.IsVar {
			if existing, bound := next[a.Value]; bound {
				if existing != row[i] {
					return nil, false
				}
				continue
			}
			next[a.Value] = row[i]
			continue
		}
		if a.Value != row[i] {
			return nil, false
		}
	}
	return next, true
}

// instantiate substitutes binding into lit, returning (nil, false) if any
// variable in lit is unbound.
func instantiate(lit Literal, binding map[string]string) ([]string, bool) {
	row := make([]string, len(lit.Args))
	for i, a := range lit.Args {
		if a.IsVar {
			v, ok := binding[a.Value]
			if !ok {
				return nil, false
			}
			row[i] = v
		} else {
			row[i] = a.Value
		}
	}
	return row, true
}

func cloneBinding(b map[string]string) map[string]string {
	out := make(map[string]string, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
