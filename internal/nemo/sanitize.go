package nemo

import (
	"regexp"
	"strings"
)

// factPattern matches "lowercase_pred(args).".
var factPattern = regexp.MustCompile(`^[a-z][a-zA-Z0-9_]*\([^:]*\)\.$`)

// rulePattern matches "lowercase_pred(args) :- body.".
var rulePattern = regexp.MustCompile(`^[a-z][a-zA-Z0-9_]*\([^:]*\)\s*:-\s*.+\.$`)

// queryPattern matches "?- pred(args).".
var queryPattern = regexp.MustCompile(`^\?-\s*.+\.$`)

// upperToken matches any identifier that looks like it was meant to be a
// variable.
var upperToken = regexp.MustCompile(`[A-Z][a-zA-Z0-9_]*`)

// stripComments removes "% ... end of line" from every line of text and
// drops lines that become empty.
func stripComments(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	for _, line := range lines {
		if idx := strings.IndexByte(line, '%'); idx >= 0 {
			line = line[:idx]
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// checkDatalogSyntax enforces the syntactic gate: a statement must look
// like a fact or a rule.
func checkDatalogSyntax(statement string) error {
	s := strings.TrimSpace(statement)
	if factPattern.MatchString(s) || rulePattern.MatchString(s) {
		return nil
	}
	return invalidSyntaxf("statement does not match fact or rule grammar: %q", s)
}

// checkVariableSyntax enforces that every uppercase-initial token is
// immediately preceded by '?'.
func checkVariableSyntax(statement string) error {
	matches := upperToken.FindAllStringIndex(statement, -1)
	for _, m := range matches {
		start := m[0]
		if start == 0 || statement[start-1] != '?' {
			return invalidSyntaxf("identifier %q must be prefixed with '?' to be used as a variable", statement[m[0]:m[1]])
		}
	}
	return nil
}

// checkQuerySyntax enforces the query gate: must start with "?-" and end
// with ".".
func checkQuerySyntax(query string) error {
	s := strings.TrimSpace(query)
	if !strings.HasPrefix(s, "?-") {
		return invalidSyntaxf("query must start with '?-': %q", s)
	}
	if !strings.HasSuffix(s, ".") {
		return invalidSyntaxf("query must end with '.': %q", s)
	}
	if !queryPattern.MatchString(s) {
		return invalidSyntaxf("malformed query: %q", s)
	}
	return nil
}
