package nemo

import (
	"regexp"
	"strings"
)

// variableToken matches a valid datalog variable reference, e.g. "?X".
var variableToken = regexp.MustCompile(`\?[A-Z][a-zA-Z0-9_]*`)

// predicateNameToken matches the predicate name at the start of a
// literal, e.g. "living" in "living(?X)".
var predicateNameToken = regexp.MustCompile(`^[a-z][a-zA-Z0-9_]*`)

// RuleValidation is the result of a dry-run rule validation.
type RuleValidation struct {
	IsValid  bool
	Errors   []string
	Warnings []string
}

// validateRule performs the syntactic and variable-syntax gates without
// touching worker state, then — if the input is a rule — checks that
// every head variable also appears in the body.
func validateRule(statement string) (*RuleValidation, error) {
	s := strings.TrimSpace(statement)
	if err := checkDatalogSyntax(s); err != nil {
		return nil, err
	}
	if err := checkVariableSyntax(s); err != nil {
		return nil, err
	}

	result := &RuleValidation{IsValid: true}

	idx := strings.Index(s, ":-")
	if idx < 0 {
		// A bare fact is trivially valid; nothing to check.
		return result, nil
	}

	head := s[:idx]
	body := s[idx+2:]
	body = strings.TrimSuffix(strings.TrimSpace(body), ".")

	headVars := extractVariables(head)
	bodyVars := extractVariables(body)

	if strings.TrimSpace(body) == "" {
		result.Warnings = append(result.Warnings, "rule has an empty body")
	}

	bodySet := make(map[string]bool, len(bodyVars))
	for _, v := range bodyVars {
		bodySet[v] = true
	}
	for _, v := range headVars {
		if !bodySet[v] {
			result.IsValid = false
			result.Errors = append(result.Errors, "head variable ?"+v+" does not appear in the body")
		}
	}

	return result, nil
}

// extractVariables returns every distinct "?Name" token in s, in
// first-appearance order, without the leading '?'.
func extractVariables(s string) []string {
	matches := variableToken.FindAllString(s, -1)
	seen := map[string]bool{}
	var out []string
	for _, m := range matches {
		name := m[1:]
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// extractPredicateName returns the predicate name at the start of a
// literal like "living(?X)".
func extractPredicateName(literal string) string {
	return predicateNameToken.FindString(strings.TrimSpace(literal))
}
