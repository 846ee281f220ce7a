// Package model defines the core data structures for the nscsync application.
package model

// Rule is one configured rename rule: a pattern that classifies a submitted
// filename fragment and a template that produces the local filename.
type Rule struct {
	Name        string `json:"name"`
	Mode        string `json:"mode"`
	Pattern     string `json:"pattern"`
	Replace     string `json:"replace"`
	Description string `json:"desc"`
	Import      bool   `json:"import"`
}

// ReportType is the clearinghouse report type embedded in every delivered
// filename.
type ReportType string

// Report type constants.
const (
	ReportAggregate   ReportType = "AGGRRPT"
	ReportAnalysisRdy ReportType = "ANALYSISRDY"
	ReportControl     ReportType = "CNTLRPT"
	ReportDetail      ReportType = "DETLRPT"
)

// ReportMode is the submission mode embedded in every delivered filename.
type ReportMode string

// Report mode constants.
const (
	ModeStudentEnroll ReportMode = "SE"
	ModePriorAttend   ReportMode = "PA"
)

// ValidReportType reports whether s is one of the enumerated report types.
func ValidReportType(s string) bool {
	switch ReportType(s) {
	case ReportAggregate, ReportAnalysisRdy, ReportControl, ReportDetail:
		return true
	}
	return false
}

// ValidReportMode reports whether s is one of the enumerated submission modes.
func ValidReportMode(s string) bool {
	switch ReportMode(s) {
	case ModeStudentEnroll, ModePriorAttend:
		return true
	}
	return false
}
