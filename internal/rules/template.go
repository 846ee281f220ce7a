package rules

import (
	"regexp"
	"strings"
)

// placeholderPattern matches {name} tokens in rename and import templates.
var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// placeholders returns the distinct placeholder names referenced by a
// template, in order of first appearance.
func placeholders(template string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// expand substitutes every {name} placeholder in template from values. A
// placeholder with no value fails with a RenderError naming the rule it was
// rendered for; it is never left in the output.
func expand(template string, values map[string]string, rule string) (string, error) {
	var missing string
	out := placeholderPattern.ReplaceAllStringFunc(template, func(tok string) string {
		name := tok[1 : len(tok)-1]
		v, ok := values[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return tok
		}
		return v
	})
	if missing != "" {
		return "", &RenderError{Rule: rule, Placeholder: missing}
	}
	if strings.Contains(out, "{") && placeholderPattern.MatchString(out) {
		// A substituted value re-introduced a placeholder token; refuse
		// rather than emit something that still looks like a template.
		return "", &RenderError{Rule: rule, Placeholder: placeholders(out)[0]}
	}
	return out, nil
}
