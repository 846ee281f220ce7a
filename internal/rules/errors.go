package rules

import (
	"errors"
	"fmt"
)

// ErrNoMatch is returned by Classify when no configured rule matches the
// submitted filename fragment.
var ErrNoMatch = errors.New("no rule matches")

// ConfigError reports a malformed rule definition. It is only ever produced
// at load time; a rule set that loads cleanly cannot raise it later.
type ConfigError struct {
	Rule   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rule %q: %s", e.Rule, e.Reason)
}

// ParseError reports a filename that does not fit the delivery naming
// convention. Recoverable per file: the orchestrator quarantines the file
// and continues.
type ParseError struct {
	Filename string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Filename, e.Reason)
}

// RenderError reports a template placeholder with no value in the merged
// context. Unreachable for rule sets that passed load-time validation; if
// it occurs it indicates a validation bug and the file is left untouched.
type RenderError struct {
	Rule        string
	Placeholder string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rule %q: no value for placeholder {%s}", e.Rule, e.Placeholder)
}
