package rules

import (
	"testing"

	"github.com/ierg/nscsync/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ipedsRule() model.Rule {
	return model.Rule{
		Name:        "IPEDS",
		Mode:        "SE",
		Pattern:     `ipeds_(?P<code>.*)_(?P<year>\d{4})_se`,
		Replace:     "{schoolcode}_{nsctype}_{nscmode}_{subdatetime}_ipeds_{code}_{year}_se.{ext}",
		Description: "IPEDS submission detail",
		Import:      true,
	}
}

func cohortRule(name string) model.Rule {
	return model.Rule{
		Name:    name,
		Mode:    "SE",
		Pattern: `.*_(?P<termidx>\d+)_(?P<termid>\d{4}[A-Za-z]{2})_(?P<desc>.*)`,
		Replace: "{termid}_{termidx}_{nsctype}_{nscmode}_{desc}.{ext}",
	}
}

func catchAllRule() model.Rule {
	return model.Rule{
		Name:    "CATCHALL",
		Mode:    "SE",
		Pattern: `.*`,
		Replace: "{schoolcode}_{nsctype}_{nscmode}_{subdatetime}_{fn}.{ext}",
	}
}

func TestLoadRuleSet(t *testing.T) {
	tests := []struct {
		name    string
		defs    []model.Rule
		wantErr string
	}{
		{
			name: "valid set",
			defs: []model.Rule{ipedsRule(), cohortRule("COHORT1"), catchAllRule()},
		},
		{
			name: "mode is normalized case-insensitively",
			defs: []model.Rule{{
				Name: "LOWER", Mode: "se", Pattern: `x`, Replace: "{fn}",
			}},
		},
		{
			name:    "unknown mode",
			defs:    []model.Rule{{Name: "BAD", Mode: "ZZ", Pattern: `x`, Replace: "{fn}"}},
			wantErr: `unknown mode "ZZ"`,
		},
		{
			name:    "pattern does not compile",
			defs:    []model.Rule{{Name: "BAD", Mode: "SE", Pattern: `ipeds_(`, Replace: "{fn}"}},
			wantErr: "invalid pattern",
		},
		{
			name: "unresolvable placeholder",
			defs: []model.Rule{{
				Name: "BAD", Mode: "SE",
				Pattern: `ipeds_(?P<code>.*)`,
				Replace: "{code}_{cohort}.{ext}",
			}},
			wantErr: "{cohort}",
		},
		{
			name:    "missing pattern",
			defs:    []model.Rule{{Name: "BAD", Mode: "SE", Replace: "{fn}"}},
			wantErr: "missing pattern",
		},
		{
			name:    "missing replace",
			defs:    []model.Rule{{Name: "BAD", Mode: "SE", Pattern: `x`}},
			wantErr: "missing replace",
		},
		{
			name:    "missing name",
			defs:    []model.Rule{{Mode: "SE", Pattern: `x`, Replace: "{fn}"}},
			wantErr: "missing name",
		},
		{
			name:    "duplicate name",
			defs:    []model.Rule{ipedsRule(), ipedsRule()},
			wantErr: "duplicate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := LoadRuleSet(tt.defs)
			if tt.wantErr != "" {
				require.Error(t, err)
				var cfgErr *ConfigError
				require.ErrorAs(t, err, &cfgErr)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, len(tt.defs), set.Len())
		})
	}
}

func TestRuleSetPreservesOrder(t *testing.T) {
	defs := []model.Rule{cohortRule("COHORT1"), ipedsRule(), catchAllRule()}
	set, err := LoadRuleSet(defs)
	require.NoError(t, err)

	var names []string
	for _, r := range set.Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"COHORT1", "IPEDS", "CATCHALL"}, names)
}

func TestClassify(t *testing.T) {
	set, err := LoadRuleSet([]model.Rule{ipedsRule(), cohortRule("COHORT1")})
	require.NoError(t, err)

	t.Run("ipeds match with captures", func(t *testing.T) {
		match, err := set.Classify("ipeds_98765_2023_se")
		require.NoError(t, err)
		assert.Equal(t, "IPEDS", match.Rule.Name)
		assert.Equal(t, map[string]string{"code": "98765", "year": "2023"}, match.Captures)
	})

	t.Run("cohort match with captures", func(t *testing.T) {
		match, err := set.Classify("sometext_7_2024FA_cohortdesc")
		require.NoError(t, err)
		assert.Equal(t, "COHORT1", match.Rule.Name)
		assert.Equal(t, map[string]string{
			"termidx": "7",
			"termid":  "2024FA",
			"desc":    "cohortdesc",
		}, match.Captures)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := set.Classify("gradrates_summary")
		require.ErrorIs(t, err, ErrNoMatch)
	})

	t.Run("partial match does not count", func(t *testing.T) {
		// The IPEDS pattern matches a prefix of this fragment but not the
		// whole string, and no cohort pattern fits either.
		_, err := set.Classify("ipeds_98765_2023_se_extra")
		require.ErrorIs(t, err, ErrNoMatch)
	})
}

func TestClassifyFirstMatchWins(t *testing.T) {
	specific := ipedsRule()
	catchAll := catchAllRule()

	t.Run("specific before catch-all", func(t *testing.T) {
		set, err := LoadRuleSet([]model.Rule{specific, catchAll})
		require.NoError(t, err)

		match, err := set.Classify("ipeds_98765_2023_se")
		require.NoError(t, err)
		assert.Equal(t, "IPEDS", match.Rule.Name)
	})

	t.Run("catch-all before specific shadows it", func(t *testing.T) {
		set, err := LoadRuleSet([]model.Rule{catchAll, specific})
		require.NoError(t, err)

		match, err := set.Classify("ipeds_98765_2023_se")
		require.NoError(t, err)
		assert.Equal(t, "CATCHALL", match.Rule.Name)
	})

	t.Run("reordering non-overlapping rules changes nothing", func(t *testing.T) {
		a := model.Rule{Name: "A", Mode: "SE", Pattern: `alpha_.*`, Replace: "{fn}.{ext}"}
		b := model.Rule{Name: "B", Mode: "SE", Pattern: `beta_.*`, Replace: "{fn}.{ext}"}

		forward, err := LoadRuleSet([]model.Rule{a, b})
		require.NoError(t, err)
		reversed, err := LoadRuleSet([]model.Rule{b, a})
		require.NoError(t, err)

		for _, fn := range []string{"alpha_one", "beta_two"} {
			m1, err := forward.Classify(fn)
			require.NoError(t, err)
			m2, err := reversed.Classify(fn)
			require.NoError(t, err)
			assert.Equal(t, m1.Rule.Name, m2.Rule.Name, "fn %s", fn)
		}
	})
}
