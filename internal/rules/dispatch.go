package rules

import (
	"fmt"
	"strings"
	"time"

	"github.com/ierg/nscsync/internal/model"
)

// ShouldImport decides whether a classified file triggers the external
// import command: the matched rule must carry the import flag and the
// file's derived report type must equal the single globally configured
// import type. The comparison uses the file's derived type, not anything
// declared on the rule; rules carry no type attribute of their own.
func ShouldImport(rule model.Rule, fields model.ConventionFields, importType string) bool {
	return rule.Import && importType != "" && string(fields.ReportType) == importType
}

// ValidateImportTemplate checks that an import command template references
// only the placeholders the dispatcher can supply.
func ValidateImportTemplate(cmdTemplate string) error {
	for _, name := range placeholders(cmdTemplate) {
		switch name {
		case "entry", "fn", "dt":
		default:
			return &ConfigError{
				Rule:   "import",
				Reason: fmt.Sprintf("cmd references {%s}; only {entry}, {fn} and {dt} are available", name),
			}
		}
	}
	return nil
}

// BuildImportInvocation renders the configured import command template
// into an executable descriptor. The template is split into argv tokens
// before substitution, so a placeholder value containing spaces (an entry
// path, typically) stays a single argument. Supported placeholders:
// {entry} the full local path, {fn} the submitted filename fragment,
// {dt} the submission timestamp as YYYYMMDD_HHMMSS.
func BuildImportInvocation(cmdTemplate, entry, fn string, dt time.Time) (model.ImportInvocation, error) {
	values := map[string]string{
		"entry": entry,
		"fn":    fn,
		"dt":    dt.Format(model.ImportDateTimeLayout),
	}

	tokens := strings.Fields(cmdTemplate)
	if len(tokens) == 0 {
		return model.ImportInvocation{}, &ConfigError{Rule: "import", Reason: "empty import command template"}
	}

	argv := make([]string, len(tokens))
	for i, tok := range tokens {
		sub, err := expand(tok, values, "import")
		if err != nil {
			return model.ImportInvocation{}, err
		}
		argv[i] = sub
	}

	return model.ImportInvocation{Path: argv[0], Args: argv[1:]}, nil
}
