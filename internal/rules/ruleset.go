// Package rules implements the pattern-classification and rename-template
// engine: load-time rule validation, convention filename parsing,
// first-match classification, placeholder rendering, and the import
// dispatch decision. The whole package is pure; it performs no I/O.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ierg/nscsync/internal/model"
)

// compiledRule pairs a configured rule with its anchored pattern and the
// placeholder names its template references.
type compiledRule struct {
	re           *regexp.Regexp
	rule         model.Rule
	captureNames []string
}

// RuleSet is an ordered, immutable collection of compiled rename rules.
// Configuration order is precedence order: classification returns the
// first rule whose pattern matches.
type RuleSet struct {
	rules []compiledRule
}

// LoadRuleSet validates and compiles the configured rules. Every rule must
// carry a recognized mode tag, a pattern that compiles, and a replace
// template whose placeholders all resolve from the union of the pattern's
// named captures and the fixed convention fields. Any violation fails the
// whole load with a *ConfigError so a bad configuration never degrades
// into unmatched files at runtime.
func LoadRuleSet(defs []model.Rule) (*RuleSet, error) {
	set := &RuleSet{rules: make([]compiledRule, 0, len(defs))}
	seen := make(map[string]bool, len(defs))

	for _, def := range defs {
		if def.Name == "" {
			return nil, &ConfigError{Rule: def.Name, Reason: "missing name"}
		}
		if seen[def.Name] {
			return nil, &ConfigError{Rule: def.Name, Reason: "duplicate rule name"}
		}
		seen[def.Name] = true

		mode := strings.ToUpper(def.Mode)
		if !model.ValidReportMode(mode) {
			return nil, &ConfigError{Rule: def.Name, Reason: fmt.Sprintf("unknown mode %q", def.Mode)}
		}
		def.Mode = mode

		if def.Pattern == "" {
			return nil, &ConfigError{Rule: def.Name, Reason: "missing pattern"}
		}
		re, err := regexp.Compile(`\A(?:` + def.Pattern + `)\z`)
		if err != nil {
			return nil, &ConfigError{Rule: def.Name, Reason: fmt.Sprintf("invalid pattern: %v", err)}
		}

		captures := captureNames(re)
		resolvable := make(map[string]bool, len(captures)+8)
		for _, name := range model.PlaceholderNames() {
			resolvable[name] = true
		}
		for _, name := range captures {
			resolvable[name] = true
		}
		if def.Replace == "" {
			return nil, &ConfigError{Rule: def.Name, Reason: "missing replace template"}
		}
		for _, name := range placeholders(def.Replace) {
			if !resolvable[name] {
				return nil, &ConfigError{
					Rule:   def.Name,
					Reason: fmt.Sprintf("replace references {%s}, which is neither a capture group nor a convention field", name),
				}
			}
		}

		set.rules = append(set.rules, compiledRule{
			rule:         def,
			re:           re,
			captureNames: captures,
		})
	}

	return set, nil
}

// Rules returns the rules in configuration order.
func (s *RuleSet) Rules() []model.Rule {
	out := make([]model.Rule, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.rule
	}
	return out
}

// Len returns the number of rules in the set.
func (s *RuleSet) Len() int {
	return len(s.rules)
}

// Classify evaluates the submitted filename fragment against every rule in
// configuration order and returns the first whose pattern matches the
// entire fragment, with its named captures. Partial matches do not count.
// Returns ErrNoMatch when no rule matches. Pure function, safe for
// concurrent use.
func (s *RuleSet) Classify(fn string) (*model.MatchResult, error) {
	for _, r := range s.rules {
		m := r.re.FindStringSubmatch(fn)
		if m == nil {
			continue
		}
		captures := make(map[string]string, len(r.captureNames))
		for i, name := range r.re.SubexpNames() {
			if i == 0 || name == "" {
				continue
			}
			captures[name] = m[i]
		}
		return &model.MatchResult{Rule: r.rule, Captures: captures}, nil
	}
	return nil, fmt.Errorf("classify %q: %w", fn, ErrNoMatch)
}

// captureNames lists the named capture groups of a compiled pattern.
func captureNames(re *regexp.Regexp) []string {
	var names []string
	for i, name := range re.SubexpNames() {
		if i > 0 && name != "" {
			names = append(names, name)
		}
	}
	return names
}
