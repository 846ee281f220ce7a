package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/ierg/nscsync/internal/model"
)

// conventionSegments is the number of underscore-delimited pieces a
// delivered filename must split into: the four fixed fields, the
// submission timestamp, and the free-form submitted remainder.
const conventionSegments = 6

// ParseFilename decomposes a delivered filename of the form
// CODE_IDX_TYPE_MODE_DATETIME_submittedname.ext into its convention
// fields. The submitted fragment is lower-cased unconditionally; the
// extension is everything after the last dot, empty when there is none.
// Pure and deterministic; failures are *ParseError.
func ParseFilename(raw string) (model.ConventionFields, error) {
	var fields model.ConventionFields

	parts := strings.SplitN(raw, "_", conventionSegments)
	if len(parts) < conventionSegments {
		return fields, &ParseError{
			Filename: raw,
			Reason:   fmt.Sprintf("expected %d underscore-delimited segments, found %d", conventionSegments, len(parts)),
		}
	}

	if !model.ValidReportType(parts[2]) {
		return fields, &ParseError{
			Filename: raw,
			Reason:   fmt.Sprintf("unknown report type %q", parts[2]),
		}
	}
	if !model.ValidReportMode(parts[3]) {
		return fields, &ParseError{
			Filename: raw,
			Reason:   fmt.Sprintf("unknown report mode %q", parts[3]),
		}
	}

	submittedAt, err := time.Parse(model.SubDateTimeLayout, parts[4])
	if err != nil {
		return fields, &ParseError{
			Filename: raw,
			Reason:   fmt.Sprintf("submission timestamp %q is not MMDDYYYYHHMMSS", parts[4]),
		}
	}

	fn := parts[5]
	ext := ""
	if dot := strings.LastIndex(fn, "."); dot >= 0 {
		ext = fn[dot+1:]
		fn = fn[:dot]
	}

	fields = model.ConventionFields{
		SchoolCode:    parts[0],
		Index:         parts[1],
		ReportType:    model.ReportType(parts[2]),
		ReportMode:    model.ReportMode(parts[3]),
		SubDateTime:   parts[4],
		SubmittedAt:   submittedAt,
		SubmittedName: strings.ToLower(fn),
		Extension:     ext,
	}
	return fields, nil
}
