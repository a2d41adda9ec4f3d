// Package text applies plain substring replacements, both to raw text and to
// Go string literals in their source form.
package text

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

// Rule replaces every occurrence of From with To
type Rule struct {
	From string
	To   string
}

// Result describes the outcome of applying rules to one piece of text
type Result struct {
	Original    string
	Modified    string
	Count       int
	WasModified bool
}

// Replacer applies replacement rules in order
type Replacer struct{}

// NewReplacer creates a new Replacer
func NewReplacer() *Replacer {
	return &Replacer{}
}

// Replace applies each rule in order to content
func (r *Replacer) Replace(content string, rules []Rule) *Result {
	result := &Result{
		Original: content,
		Modified: content,
	}

	current := content
	for _, rule := range rules {
		if rule.From == "" {
			continue
		}

		n := strings.Count(current, rule.From)
		if n == 0 {
			continue
		}

		current = strings.ReplaceAll(current, rule.From, rule.To)
		result.Count += n
	}

	result.Modified = current
	result.WasModified = current != content
	return result
}

// ReplaceLiteral applies rules to the value of a Go string literal given in
// source form (quoted or raw) and returns the new literal in source form.
// Raw literals stay raw unless the new value cannot be written raw.
func (r *Replacer) ReplaceLiteral(lit string, rules []Rule) (string, *Result, error) {
	value, err := strconv.Unquote(lit)
	if err != nil {
		return "", nil, errors.Errorf("unquoting literal %s: %w", lit, err)
	}

	result := r.Replace(value, rules)
	if !result.WasModified {
		return lit, result, nil
	}

	if strings.HasPrefix(lit, "`") && canRaw(result.Modified) {
		return "`" + result.Modified + "`", result, nil
	}
	return strconv.Quote(result.Modified), result, nil
}

// canRaw reports whether s can be written as a raw literal. Unlike
// strconv.CanBackquote it allows newlines and tabs.
func canRaw(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsAny(s, "`\r\uFEFF")
}

// ValidateRules checks that every rule has text to replace
func (r *Replacer) ValidateRules(rules []Rule) error {
	for i, rule := range rules {
		if rule.From == "" {
			return errors.Errorf("rule %d: from is required", i)
		}
	}
	return nil
}
