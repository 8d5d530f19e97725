package registry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/registry"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "valid date", input: "1995-06-01", want: "1995-06-01"},
		{name: "leap day", input: "2024-02-29", want: "2024-02-29"},
		{name: "empty", input: "", wantErr: true},
		{name: "time suffix rejected", input: "1995-06-01T00:00:00Z", wantErr: true},
		{name: "garbage", input: "June 1 1995", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := registry.ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestDateOrdering(t *testing.T) {
	a := registry.MustParseDate("1993-01-03")
	b := registry.MustParseDate("1995-06-01")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(registry.NewDate(1993, time.January, 3)))
	assert.True(t, registry.Date{}.IsZero())
	assert.False(t, a.IsZero())
}

func TestAliasValidOn(t *testing.T) {
	bounded := registry.Alias{
		Name:      "Department of War",
		ValidFrom: registry.MustParseDate("1789-08-07"),
		ValidTo:   registry.MustParseDate("1947-09-18"),
	}
	open := registry.Alias{Name: "EPA", Acronym: true}

	assert.True(t, bounded.ValidOn(registry.MustParseDate("1900-01-01")))
	assert.True(t, bounded.ValidOn(registry.MustParseDate("1947-09-18")), "end date inclusive")
	assert.False(t, bounded.ValidOn(registry.MustParseDate("1947-09-19")))
	assert.False(t, bounded.ValidOn(registry.MustParseDate("1789-08-06")))

	assert.True(t, open.ValidOn(registry.MustParseDate("1850-01-01")), "unbounded alias always valid")

	// Zero query date matches every alias regardless of bounds.
	assert.True(t, bounded.ValidOn(registry.Date{}))
	assert.True(t, open.ValidOn(registry.Date{}))
}

func TestSetOrganizationParentInvariants(t *testing.T) {
	t.Run("self parent rejected", func(t *testing.T) {
		r := registry.New()
		org := &registry.Organization{ID: "org-a", OfficialName: "Agency A", ParentID: "org-a"}
		err := r.SetOrganization(org)
		require.Error(t, err)
		assert.True(t, errors.IsInvariantViolation(err))
	})

	t.Run("missing parent rejected", func(t *testing.T) {
		r := registry.New()
		org := &registry.Organization{ID: "org-a", OfficialName: "Agency A", ParentID: "org-missing"}
		err := r.SetOrganization(org)
		require.Error(t, err)
		assert.True(t, errors.IsInvariantViolation(err))
	})

	t.Run("cycle rejected", func(t *testing.T) {
		r := registry.New()
		require.NoError(t, r.SetOrganization(&registry.Organization{ID: "org-a", OfficialName: "A"}))
		require.NoError(t, r.SetOrganization(&registry.Organization{ID: "org-b", OfficialName: "B", ParentID: "org-a"}))

		// Repointing A under B closes the loop.
		err := r.SetOrganization(&registry.Organization{ID: "org-a", OfficialName: "A", ParentID: "org-b"})
		require.Error(t, err)
		assert.True(t, errors.IsInvariantViolation(err))
	})

	t.Run("established after parent dissolved rejected", func(t *testing.T) {
		r := registry.New()
		require.NoError(t, r.SetOrganization(&registry.Organization{
			ID:           "org-war",
			OfficialName: "Department of War",
			Dissolved: registry.MustParseDate("1947-09-18"),
		}))
		err := r.SetOrganization(&registry.Organization{
			ID:           "org-child",
			OfficialName: "Later Office",
			ParentID:    "org-war",
			Established: registry.MustParseDate("1950-01-01"),
		})
		require.Error(t, err)
		assert.True(t, errors.IsInvariantViolation(err))
	})

	t.Run("valid chain accepted", func(t *testing.T) {
		r := registry.New()
		require.NoError(t, r.SetOrganization(&registry.Organization{ID: "org-dhs", OfficialName: "Department of Homeland Security"}))
		require.NoError(t, r.SetOrganization(&registry.Organization{ID: "org-fema", OfficialName: "FEMA", ParentID: "org-dhs"}))

		got, ok := r.Organization("org-fema")
		require.True(t, ok)
		assert.Equal(t, registry.OrgID("org-dhs"), got.ParentID)
	})
}

func TestSetPersonInvariants(t *testing.T) {
	r := registry.New()

	err := r.SetPerson(&registry.Person{
		ID:         "p-1",
		GivenName:  "Ada",
		FamilyName: "Example",
		BirthDate:  registry.MustParseDate("1950-01-01"),
		DeathDate:  registry.MustParseDate("1940-01-01"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsInvariantViolation(err))

	require.NoError(t, r.SetPerson(&registry.Person{
		ID:         "p-1",
		GivenName:  "Ada",
		FamilyName: "Example",
		BirthDate:  registry.MustParseDate("1950-01-01"),
	}))
}

func TestPeopleFindByExternalID(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.SetPerson(&registry.Person{
		ID:          "p-leahy",
		GivenName:   "Patrick",
		FamilyName:  "Leahy",
		ExternalIDs: map[string]string{"bioguide": "L000174"},
	}))

	got, ok := r.People().FindByExternalID("bioguide", "L000174")
	require.True(t, ok)
	assert.Equal(t, registry.PersonID("p-leahy"), got.ID)

	_, ok = r.People().FindByExternalID("bioguide", "X000000")
	assert.False(t, ok)
}

func TestPositionsAddOnly(t *testing.T) {
	r := registry.New()
	pos := &registry.Position{
		ID:      "VT-Sen-1",
		Title:   "Senator from VT (Class 1)",
		Kind:    registry.PositionElected,
		Branch:  registry.BranchLegislative,
		Chamber: registry.ChamberSenate,
		State:   "VT", SeatClass: 1,
	}
	require.NoError(t, r.AddPosition(pos))

	err := r.AddPosition(pos)
	require.Error(t, err)
	assert.True(t, errors.IsAlreadyExists(err))

	got, ok := r.Positions().FindBySeat(registry.ChamberSenate, "VT", 1)
	require.True(t, ok)
	assert.Equal(t, "VT-Sen-1", got.SeatCode())
}

func TestHoldingTemporalPredicates(t *testing.T) {
	h := &registry.PositionHolding{
		ID:         "h-1",
		PersonID:   "p-1",
		PositionID: "VT-Sen-1",
		Start:      registry.MustParseDate("1975-01-03"),
		End:        registry.MustParseDate("2023-01-03"),
	}

	assert.Equal(t, registry.HoldingClosed, h.State())
	assert.False(t, h.Current())
	assert.True(t, h.Covers(registry.MustParseDate("1995-06-01")))
	assert.True(t, h.Covers(registry.MustParseDate("2023-01-03")), "end date inclusive")
	assert.False(t, h.Covers(registry.MustParseDate("2023-01-04")))
	assert.False(t, h.Covers(registry.MustParseDate("1975-01-02")))

	open := &registry.PositionHolding{
		ID:         "h-2",
		PersonID:   "p-2",
		PositionID: "VT-Sen-1",
		Start:      registry.MustParseDate("2023-01-03"),
	}
	assert.Equal(t, registry.HoldingActive, open.State())
	assert.True(t, open.Current())
	assert.True(t, open.Covers(registry.Today()))

	assert.False(t, h.Overlaps(open), "a handover sharing the boundary day is not a conflict")
	assert.False(t, open.Overlaps(h))

	crossing := &registry.PositionHolding{
		ID:         "h-3",
		PersonID:   "p-3",
		PositionID: "VT-Sen-1",
		Start:      registry.MustParseDate("2023-01-02"),
	}
	assert.True(t, h.Overlaps(crossing), "starting before the incumbent's end conflicts")
	assert.True(t, crossing.Overlaps(h))

	disjoint := &registry.PositionHolding{
		ID:         "h-4",
		PersonID:   "p-4",
		PositionID: "VT-Sen-1",
		Start:      registry.MustParseDate("1960-01-03"),
		End:        registry.MustParseDate("1975-01-02"),
	}
	assert.False(t, h.Overlaps(disjoint))
}

func TestTermLabel(t *testing.T) {
	closed := func(term, startYear, endYear int) *registry.PositionHolding {
		return &registry.PositionHolding{
			Term:  term,
			Start: registry.NewDate(startYear, time.January, 3),
			End:   registry.NewDate(endYear, time.January, 3),
		}
	}

	tests := []struct {
		name string
		h    *registry.PositionHolding
		want string
	}{
		{name: "th", h: closed(118, 2023, 2025), want: "118th Congress (2023-2025)"},
		{name: "st", h: closed(101, 1989, 1991), want: "101st Congress (1989-1991)"},
		{name: "nd", h: closed(102, 1991, 1993), want: "102nd Congress (1991-1993)"},
		{name: "rd", h: closed(103, 1993, 1995), want: "103rd Congress (1993-1995)"},
		{name: "teens stay th", h: closed(111, 2009, 2011), want: "111th Congress (2009-2011)"},
		{name: "twelfth th", h: closed(112, 2011, 2013), want: "112th Congress (2011-2013)"},
		{
			name: "open term",
			h: &registry.PositionHolding{
				Term:  118,
				Start: registry.NewDate(2023, time.January, 3),
			},
			want: "118th Congress (2023-present)",
		},
		{name: "no term closed", h: closed(0, 2021, 2023), want: "2021-2023"},
		{
			name: "no term open",
			h: &registry.PositionHolding{
				Start: registry.NewDate(2021, time.March, 11),
			},
			want: "2021-present",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.h.TermLabel())
		})
	}
}

func TestHoldingsForPositionOrdering(t *testing.T) {
	r := registry.New()
	put := func(id registry.HoldingID, start string) {
		require.NoError(t, r.Holdings().Put(&registry.PositionHolding{
			ID:         id,
			PersonID:   "p-x",
			PositionID: "VT-Sen-1",
			Start:      registry.MustParseDate(start),
		}))
	}
	put("h-c", "2001-01-03")
	put("h-a", "1975-01-03")
	put("h-b", "1989-01-03")

	got := r.Holdings().ForPosition("VT-Sen-1")
	require.Len(t, got, 3)
	assert.Equal(t, registry.HoldingID("h-a"), got[0].ID)
	assert.Equal(t, registry.HoldingID("h-b"), got[1].ID)
	assert.Equal(t, registry.HoldingID("h-c"), got[2].ID)

	assert.Empty(t, r.Holdings().ForPosition("CA-12"))
}

func TestPropertiesMerge(t *testing.T) {
	existing := registry.Properties{
		registry.PropParty: "Democratic",
	}
	incoming := registry.Properties{
		registry.PropParty:            "Republican",
		registry.PropSeniorStatusDate: "2010-05-01",
	}

	merged := existing.Merge(incoming)

	party, ok := merged.Get(registry.PropParty)
	require.True(t, ok)
	assert.Equal(t, "Democratic", party, "merge never clobbers")

	senior, ok := merged.Get(registry.PropSeniorStatusDate)
	require.True(t, ok)
	assert.Equal(t, "2010-05-01", senior)
}

func TestProvenanceCorroborate(t *testing.T) {
	p := registry.Provenance{Source: "unitedstates"}

	assert.False(t, p.Corroborate("unitedstates"), "origin source never corroborates")
	assert.True(t, p.Corroborate("federal-register"))
	assert.False(t, p.Corroborate("federal-register"), "second sighting is a no-op")
	assert.Contains(t, p.CorroboratedBy, "federal-register")
}

func TestSeedCongressionalSeats(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.SetOrganization(&registry.Organization{ID: "org-senate", OfficialName: "United States Senate"}))
	require.NoError(t, r.SetOrganization(&registry.Organization{ID: "org-house", OfficialName: "United States House of Representatives"}))

	created, err := registry.SeedCongressionalSeats(r, "org-senate", "org-house")
	require.NoError(t, err)
	assert.Equal(t, 535, created)

	vt, ok := r.Positions().Get("VT-Sen-1")
	require.True(t, ok)
	assert.Equal(t, registry.ChamberSenate, vt.Chamber)
	assert.Equal(t, registry.OrgID("org-senate"), vt.OrganizationID)
	assert.True(t, vt.IsSenateSeat())

	ca, ok := r.Positions().Get("CA-52")
	require.True(t, ok)
	assert.Equal(t, 52, ca.District)
	assert.True(t, ca.IsHouseSeat())

	_, ok = r.Positions().Get("CA-53")
	assert.False(t, ok, "2020 apportionment caps California at 52")

	// Re-seeding is a no-op.
	again, err := registry.SeedCongressionalSeats(r, "org-senate", "org-house")
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestLoadSaveRoundTrip(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.SetOrganization(&registry.Organization{
		ID:           "org-epa",
		OfficialName: "Environmental Protection Agency",
		Kind: registry.OrgKindAgency,
		Aliases: []registry.Alias{
			{Name: "EPA", Acronym: true},
		},
		Established: registry.MustParseDate("1970-12-02"),
	}))
	require.NoError(t, r.SetPerson(&registry.Person{
		ID:         "p-1",
		GivenName:  "Jane",
		FamilyName: "Doe",
		BirthDate:  registry.MustParseDate("1960-04-15"),
	}))
	require.NoError(t, r.AddPosition(&registry.Position{
		ID:     "pos-admin",
		Title:  "Administrator",
		Kind:   registry.PositionAppointed,
		Branch: registry.BranchExecutive,
	}))
	require.NoError(t, r.Holdings().Put(&registry.PositionHolding{
		ID:         "h-1",
		PersonID:   "p-1",
		PositionID: "pos-admin",
		Start:      registry.MustParseDate("2021-03-11"),
	}))

	dir := t.TempDir()
	require.NoError(t, r.SaveTo(dir))

	loaded, err := registry.LoadFromPath(dir)
	require.NoError(t, err)

	stats := loaded.Stats()
	assert.Equal(t, 1, stats.Organizations)
	assert.Equal(t, 1, stats.People)
	assert.Equal(t, 1, stats.Positions)
	assert.Equal(t, 1, stats.Holdings)

	org, ok := loaded.Organization("org-epa")
	require.True(t, ok)
	assert.True(t, org.HasAlias("EPA", registry.Date{}))
	assert.Equal(t, "1970-12-02", org.Established.String())

	h, ok := loaded.Holdings().Get("h-1")
	require.True(t, ok)
	assert.True(t, h.Current())
}
