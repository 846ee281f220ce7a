package rules

import "github.com/ierg/nscsync/internal/model"

// Render produces the local filename for a classified file by substituting
// every placeholder in the matched rule's replace template. The resolution
// context merges the match's named captures over the convention fields;
// captures win on collision since they are rule-specific overrides.
// Deterministic: identical inputs always yield the identical string.
func Render(match *model.MatchResult, fields model.ConventionFields) (string, error) {
	values := fields.PlaceholderValues()
	for name, v := range match.Captures {
		values[name] = v
	}
	return expand(match.Rule.Replace, values, match.Rule.Name)
}
