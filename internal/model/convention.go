package model

import "time"

// SubDateTimeLayout is the timestamp layout the clearinghouse embeds in
// delivered filenames (MMDDYYYYHHMMSS).
const SubDateTimeLayout = "01022006150405"

// ImportDateTimeLayout is the layout the downstream import command expects
// for its dt argument (YYYYMMDD_HHMMSS).
const ImportDateTimeLayout = "20060102_150405"

// ConventionFields holds the fields decomposed from a delivered filename of
// the form CODE_IDX_TYPE_MODE_DATETIME_submittedname.ext.
type ConventionFields struct {
	SubmittedAt   time.Time  `json:"subdatetime_dt"`
	SchoolCode    string     `json:"schoolcode"`
	Index         string     `json:"idx"`
	ReportType    ReportType `json:"nsctype"`
	ReportMode    ReportMode `json:"nscmode"`
	SubDateTime   string     `json:"subdatetime"`
	SubmittedName string     `json:"fn"`
	Extension     string     `json:"ext"`
}

// PlaceholderValues returns the fixed placeholder context every rename
// template may reference, keyed by the configuration placeholder names.
func (f ConventionFields) PlaceholderValues() map[string]string {
	return map[string]string{
		"schoolcode":     f.SchoolCode,
		"idx":            f.Index,
		"nsctype":        string(f.ReportType),
		"nscmode":        string(f.ReportMode),
		"subdatetime":    f.SubDateTime,
		"subdatetime_dt": f.SubmittedAt.Format(ImportDateTimeLayout),
		"fn":             f.SubmittedName,
		"ext":            f.Extension,
	}
}

// PlaceholderNames lists the convention placeholder names in a stable order.
func PlaceholderNames() []string {
	return []string{
		"schoolcode", "idx", "nsctype", "nscmode",
		"subdatetime", "subdatetime_dt", "fn", "ext",
	}
}
