package match_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/match"
	"github.com/factline/registry/pkg/registry"
)

func seedRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()

	require.NoError(t, r.SetOrganization(&registry.Organization{
		ID:           "org-epa",
		OfficialName: "Environmental Protection Agency",
		Kind:         registry.OrgKindAgency,
		Branch:       registry.BranchExecutive,
		Aliases: []registry.Alias{
			{Name: "EPA", Acronym: true},
		},
	}))
	require.NoError(t, r.SetOrganization(&registry.Organization{
		ID:           "org-dhs",
		OfficialName: "Department of Homeland Security",
		Kind:         registry.OrgKindDepartment,
		Branch:       registry.BranchExecutive,
		Aliases: []registry.Alias{
			{Name: "DHS", Acronym: true},
		},
	}))
	require.NoError(t, r.SetOrganization(&registry.Organization{
		ID:           "org-senate",
		OfficialName: "United States Senate",
		Kind:         registry.OrgKindBranchOrg,
		Branch:       registry.BranchLegislative,
	}))
	return r
}

func TestMatchExactName(t *testing.T) {
	r := seedRegistry(t)

	tests := []struct {
		name      string
		candidate string
	}{
		{name: "verbatim", candidate: "Environmental Protection Agency"},
		{name: "case insensitive", candidate: "ENVIRONMENTAL PROTECTION AGENCY"},
		{name: "whitespace normalized", candidate: "  Environmental   Protection\tAgency "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := match.Match(match.CandidateRecord{
				Kind: registry.EntityOrganization,
				Name: tt.candidate,
			}, r)
			require.NoError(t, err)
			assert.Equal(t, "org-epa", got.MatchedID)
			assert.Equal(t, 1.0, got.Confidence)
			assert.Equal(t, match.MethodExact, got.Method)
		})
	}
}

func TestMatchAcronymAlias(t *testing.T) {
	r := seedRegistry(t)

	// A bare acronym carries no case information and is upper-cased
	// before alias comparison.
	for _, name := range []string{"EPA", "epa", "Epa"} {
		got, err := match.Match(match.CandidateRecord{
			Kind: registry.EntityOrganization,
			Name: name,
		}, r)
		require.NoError(t, err)
		assert.Equal(t, "org-epa", got.MatchedID, "candidate %q", name)
		assert.Equal(t, 0.95, got.Confidence)
		assert.Equal(t, match.MethodAlias, got.Method)
	}
}

func TestMatchTimeBoundedAlias(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.SetOrganization(&registry.Organization{
		ID:           "org-dod",
		OfficialName: "Department of Defense",
		Kind:         registry.OrgKindDepartment,
		Branch:       registry.BranchExecutive,
		Aliases: []registry.Alias{
			{
				Name:    "Department of War",
				ValidTo: registry.MustParseDate("1947-09-18"),
			},
		},
	}))

	candidate := match.CandidateRecord{
		Kind: registry.EntityOrganization,
		Name: "Department of War",
	}

	candidate.EffectiveDate = registry.MustParseDate("1945-05-08")
	got, err := match.Match(candidate, r)
	require.NoError(t, err)
	assert.Equal(t, "org-dod", got.MatchedID)
	assert.Equal(t, match.MethodAlias, got.Method)

	// After the rename the alias no longer applies; the name is far
	// enough from the current official name that fuzzy cannot rescue it.
	candidate.EffectiveDate = registry.MustParseDate("1950-01-01")
	got, err = match.Match(candidate, r)
	require.NoError(t, err)
	assert.NotEqual(t, match.MethodAlias, got.Method)
}

func TestMatchKnownNameVariant(t *testing.T) {
	// The registry carries only the acronym alias; the long-form name
	// resolves through the standard acronym table.
	r := registry.New()
	require.NoError(t, r.SetOrganization(&registry.Organization{
		ID:           "org-irs",
		OfficialName: "IRS",
		Kind:         registry.OrgKindAgency,
		Branch:       registry.BranchExecutive,
		Aliases: []registry.Alias{
			{Name: "IRS", Acronym: true},
		},
	}))

	got, err := match.Match(match.CandidateRecord{
		Kind: registry.EntityOrganization,
		Name: "Internal Revenue Service",
	}, r)
	require.NoError(t, err)
	assert.Equal(t, "org-irs", got.MatchedID)
	assert.Equal(t, match.MethodAlias, got.Method)
}

func TestMatchFuzzy(t *testing.T) {
	r := seedRegistry(t)

	got, err := match.Match(match.CandidateRecord{
		Kind: registry.EntityOrganization,
		Name: "Department of Homeland Protection",
	}, r)
	require.NoError(t, err)

	assert.Equal(t, "org-dhs", got.MatchedID)
	assert.Equal(t, match.MethodFuzzy, got.Method)
	assert.GreaterOrEqual(t, got.Confidence, 0.85)
	assert.Less(t, got.Confidence, 0.95)
}

func TestMatchFuzzyDeterministic(t *testing.T) {
	r := seedRegistry(t)
	candidate := match.CandidateRecord{
		Kind: registry.EntityOrganization,
		Name: "Department of Homeland Protection",
	}

	first, err := match.Match(candidate, r)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := match.Match(candidate, r)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMatchNoMatchWithSuggestions(t *testing.T) {
	r := seedRegistry(t)

	got, err := match.Match(match.CandidateRecord{
		Kind: registry.EntityOrganization,
		Name: "Bureau of Interplanetary Affairs",
	}, r)
	require.NoError(t, err)

	assert.False(t, got.Matched())
	assert.Zero(t, got.Confidence)
	assert.Equal(t, match.MethodNone, got.Method)
	assert.LessOrEqual(t, len(got.Suggestions), 3)
	for _, s := range got.Suggestions {
		assert.Less(t, s.Score, 0.85)
	}
}

func TestMatchEmptyName(t *testing.T) {
	r := seedRegistry(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		got, err := match.Match(match.CandidateRecord{
			Kind: registry.EntityOrganization,
			Name: name,
		}, r)
		require.NoError(t, err)
		assert.False(t, got.Matched())
		assert.Empty(t, got.Suggestions, "no fuzzy comparison for blank names")
	}
}

func TestMatchNilView(t *testing.T) {
	_, err := match.Match(match.CandidateRecord{
		Kind: registry.EntityOrganization,
		Name: "Environmental Protection Agency",
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestMatchPartition(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.SetOrganization(&registry.Organization{
		ID:           "org-court",
		OfficialName: "United States Court of Appeals",
		Kind:         registry.OrgKindBranchOrg,
		Branch:       registry.BranchJudicial,
	}))

	// A legislative candidate never fuzzy-matches a judicial record,
	// however similar the names.
	got, err := match.Match(match.CandidateRecord{
		Kind:   registry.EntityOrganization,
		Name:   "United States Court of Appeal",
		Branch: registry.BranchLegislative,
	}, r)
	require.NoError(t, err)
	assert.False(t, got.Matched())
	assert.Empty(t, got.Suggestions)
}

func TestMatchTieBreak(t *testing.T) {
	older := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	t.Run("parent beats root", func(t *testing.T) {
		r := registry.New()
		require.NoError(t, r.SetOrganization(&registry.Organization{
			ID: "org-root", OfficialName: "Office of Inspector General",
		}))
		require.NoError(t, r.SetOrganization(&registry.Organization{
			ID: "org-parented", OfficialName: "Office of Inspector General", ParentID: "org-root",
		}))

		got, err := match.Match(match.CandidateRecord{
			Kind: registry.EntityOrganization,
			Name: "Office of Inspector General",
		}, r)
		require.NoError(t, err)
		assert.Equal(t, "org-parented", got.MatchedID)
	})

	t.Run("latest updated beats stale", func(t *testing.T) {
		r := registry.New()
		require.NoError(t, r.SetOrganization(&registry.Organization{
			ID: "org-stale", OfficialName: "Office of Inspector General", UpdatedAt: older,
		}))
		require.NoError(t, r.SetOrganization(&registry.Organization{
			ID: "org-fresh", OfficialName: "Office of Inspector General", UpdatedAt: newer,
		}))

		got, err := match.Match(match.CandidateRecord{
			Kind: registry.EntityOrganization,
			Name: "Office of Inspector General",
		}, r)
		require.NoError(t, err)
		assert.Equal(t, "org-fresh", got.MatchedID)
	})

	t.Run("smallest id last", func(t *testing.T) {
		r := registry.New()
		require.NoError(t, r.SetOrganization(&registry.Organization{
			ID: "org-b", OfficialName: "Office of Inspector General", UpdatedAt: older,
		}))
		require.NoError(t, r.SetOrganization(&registry.Organization{
			ID: "org-a", OfficialName: "Office of Inspector General", UpdatedAt: older,
		}))

		got, err := match.Match(match.CandidateRecord{
			Kind: registry.EntityOrganization,
			Name: "Office of Inspector General",
		}, r)
		require.NoError(t, err)
		assert.Equal(t, "org-a", got.MatchedID)
	})
}

func TestMatchPersonByExternalID(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.SetPerson(&registry.Person{
		ID:          "p-sanders",
		GivenName:   "Bernard",
		FamilyName:  "Sanders",
		ExternalIDs: map[string]string{"bioguide": "S000033"},
	}))

	got, err := match.Match(match.CandidateRecord{
		Kind:        registry.EntityPerson,
		Name:        "Bernie Sanders",
		ExternalIDs: map[string]string{"bioguide": "S000033"},
	}, r)
	require.NoError(t, err)
	assert.Equal(t, "p-sanders", got.MatchedID)
	assert.Equal(t, 1.0, got.Confidence)
}

func TestMatchPersonByName(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.SetPerson(&registry.Person{
		ID:         "p-leahy",
		GivenName:  "Patrick",
		FamilyName: "Leahy",
	}))

	got, err := match.Match(match.CandidateRecord{
		Kind: registry.EntityPerson,
		Name: "patrick leahy",
	}, r)
	require.NoError(t, err)
	assert.Equal(t, "p-leahy", got.MatchedID)
	assert.Equal(t, match.MethodExact, got.Method)
}

func TestMatchThresholdOption(t *testing.T) {
	r := seedRegistry(t)
	candidate := match.CandidateRecord{
		Kind: registry.EntityOrganization,
		Name: "Department of Homeland Protection",
	}

	strict, err := match.Match(candidate, r, match.WithThreshold(0.99))
	require.NoError(t, err)
	assert.False(t, strict.Matched())
	require.NotEmpty(t, strict.Suggestions)
	assert.Equal(t, "Department of Homeland Security", strict.Suggestions[0].Name)

	_, err = match.Match(candidate, r, match.WithThreshold(1.5))
	assert.Error(t, err)
}

func TestScorer(t *testing.T) {
	assert.Equal(t, 1.0, match.Similarity("senate", "senate"))
	assert.Equal(t, 1.0, match.Similarity("", ""))
	assert.Zero(t, match.Similarity("a", "z"))

	// One edit in a ten-rune name scores 0.9.
	assert.InDelta(t, 0.9, match.Similarity("washington", "washingten"), 1e-9)

	assert.Equal(t, 1.0, match.JaroWinkler("epa", "epa"))
	assert.Zero(t, match.JaroWinkler("abc", "xyz"))
	assert.Greater(t, match.JaroWinkler("department", "departments"), 0.9)

	// Score never falls below plain Levenshtein similarity.
	a, b := "department of homeland protection", "department of homeland security"
	assert.GreaterOrEqual(t, match.Score(a, b), match.Similarity(a, b))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "environmental protection agency", match.Normalize(" Environmental\tProtection  AGENCY "))
	assert.Equal(t, "", match.Normalize("   "))
	assert.Equal(t, "EPA", match.NormalizeAcronym(" epa "))
}
