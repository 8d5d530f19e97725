package registry

import (
	"fmt"
	"time"
)

// senateClasses maps each state to its two Senate seat classes.
// Class assignments are fixed by history and never change.
var senateClasses = map[string][2]int{
	"AL": {2, 3}, "AK": {2, 3}, "AZ": {1, 3}, "AR": {2, 3}, "CA": {1, 3},
	"CO": {2, 3}, "CT": {1, 3}, "DE": {1, 2}, "FL": {1, 3}, "GA": {2, 3},
	"HI": {1, 3}, "ID": {2, 3}, "IL": {2, 3}, "IN": {1, 3}, "IA": {2, 3},
	"KS": {2, 3}, "KY": {2, 3}, "LA": {2, 3}, "ME": {1, 2}, "MD": {1, 3},
	"MA": {1, 2}, "MI": {1, 2}, "MN": {1, 2}, "MS": {1, 2}, "MO": {1, 3},
	"MT": {1, 2}, "NE": {1, 2}, "NV": {1, 3}, "NH": {2, 3}, "NJ": {1, 2},
	"NM": {1, 2}, "NY": {1, 3}, "NC": {2, 3}, "ND": {1, 3}, "OH": {1, 3},
	"OK": {2, 3}, "OR": {2, 3}, "PA": {1, 3}, "RI": {1, 2}, "SC": {2, 3},
	"SD": {2, 3}, "TN": {1, 2}, "TX": {1, 2}, "UT": {1, 3}, "VT": {1, 3},
	"VA": {1, 2}, "WA": {1, 3}, "WV": {1, 2}, "WI": {1, 3}, "WY": {1, 2},
}

// houseDistricts maps each state to its House district count under the
// 2020 apportionment (118th Congress).
var houseDistricts = map[string]int{
	"AL": 7, "AK": 1, "AZ": 9, "AR": 4, "CA": 52,
	"CO": 8, "CT": 5, "DE": 1, "FL": 28, "GA": 14,
	"HI": 2, "ID": 2, "IL": 17, "IN": 9, "IA": 4,
	"KS": 4, "KY": 6, "LA": 6, "ME": 2, "MD": 8,
	"MA": 9, "MI": 13, "MN": 8, "MS": 4, "MO": 8,
	"MT": 2, "NE": 3, "NV": 4, "NH": 2, "NJ": 12,
	"NM": 3, "NY": 26, "NC": 14, "ND": 1, "OH": 15,
	"OK": 5, "OR": 6, "PA": 17, "RI": 2, "SC": 7,
	"SD": 1, "TN": 9, "TX": 38, "UT": 4, "VT": 1,
	"VA": 11, "WA": 10, "WV": 2, "WI": 8, "WY": 1,
}

// SeedCongressionalSeats creates the 100 Senate seat positions and 435
// House district positions, owned by the given chamber organizations.
// Seat codes serve as position ids, so re-seeding an already seeded
// registry is a no-op and returns zero.
func SeedCongressionalSeats(r *Registry, senateOrg, houseOrg OrgID) (int, error) {
	now := time.Now()
	created := 0

	for state, classes := range senateClasses {
		for _, class := range classes {
			pos := &Position{
				ID:             PositionID(fmt.Sprintf("%s-Sen-%d", state, class)),
				Title:          fmt.Sprintf("Senator from %s (Class %d)", state, class),
				Kind:           PositionElected,
				Branch:         BranchLegislative,
				Chamber:        ChamberSenate,
				State:          state,
				SeatClass:      class,
				OrganizationID: senateOrg,
				Provenance:     Provenance{Source: "seed"},
				CreatedAt:      now,
			}
			if _, exists := r.positions.Get(pos.ID); exists {
				continue
			}
			if err := r.AddPosition(pos); err != nil {
				return created, err
			}
			created++
		}
	}

	for state, count := range houseDistricts {
		for district := 1; district <= count; district++ {
			pos := &Position{
				ID:             PositionID(fmt.Sprintf("%s-%02d", state, district)),
				Title:          fmt.Sprintf("Representative from %s-%d", state, district),
				Kind:           PositionElected,
				Branch:         BranchLegislative,
				Chamber:        ChamberHouse,
				State:          state,
				District:       district,
				OrganizationID: houseOrg,
				Provenance:     Provenance{Source: "seed"},
				CreatedAt:      now,
			}
			if _, exists := r.positions.Get(pos.ID); exists {
				continue
			}
			if err := r.AddPosition(pos); err != nil {
				return created, err
			}
			created++
		}
	}

	return created, nil
}
