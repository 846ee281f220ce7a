package model

import "strings"

// MatchResult is the outcome of classifying a submitted filename fragment
// against the rule set: the winning rule plus its named captures.
type MatchResult struct {
	Captures map[string]string `json:"captures"`
	Rule     Rule              `json:"rule"`
}

// ImportInvocation describes one external import command, fully substituted
// and ready for the orchestrator to execute.
type ImportInvocation struct {
	Path string   `json:"path"`
	Args []string `json:"args"`
}

// String renders the invocation the way an operator would type it.
func (i ImportInvocation) String() string {
	if len(i.Args) == 0 {
		return i.Path
	}
	return i.Path + " " + strings.Join(i.Args, " ")
}
