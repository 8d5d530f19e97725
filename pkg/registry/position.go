package registry

import (
	"fmt"
	"time"
)

// Position is immutable reference data identifying a single office:
// one record per Senate seat per state and class, one per House
// district, one per appointed or career office.
type Position struct {
	ID    PositionID   `json:"id" yaml:"id"`
	Title string       `json:"title" yaml:"title"`
	Kind  PositionKind `json:"kind" yaml:"kind"`

	Branch  Branch  `json:"branch" yaml:"branch"`
	Chamber Chamber `json:"chamber,omitempty" yaml:"chamber,omitempty"`

	// State is the 2-letter code for legislative seats.
	State string `json:"state,omitempty" yaml:"state,omitempty"`
	// District is the House district number (0 when not applicable).
	District int `json:"district,omitempty" yaml:"district,omitempty"`
	// SeatClass is the Senate class (1-3, 0 when not applicable).
	SeatClass int `json:"seat_class,omitempty" yaml:"seat_class,omitempty"`

	// OrganizationID references the owning organization.
	OrganizationID OrgID `json:"organization_id,omitempty" yaml:"organization_id,omitempty"`

	// AllowsConcurrent permits overlapping holdings. Singly-held
	// offices leave this false; the exclusivity invariant applies.
	AllowsConcurrent bool `json:"allows_concurrent,omitempty" yaml:"allows_concurrent,omitempty"`

	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
	Provenance Provenance `json:"provenance" yaml:"provenance"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// SeatCode returns a short identifier for legislative seats, like
// "VT-Sen-1" or "CA-12". Empty for non-legislative positions.
func (p *Position) SeatCode() string {
	if p.Branch != BranchLegislative || p.State == "" {
		return ""
	}
	if p.Chamber == ChamberSenate {
		return fmt.Sprintf("%s-Sen-%d", p.State, p.SeatClass)
	}
	return fmt.Sprintf("%s-%02d", p.State, p.District)
}

// IsSenateSeat reports whether this is a Senate seat position.
func (p *Position) IsSenateSeat() bool {
	return p.Branch == BranchLegislative && p.Chamber == ChamberSenate
}

// IsHouseSeat reports whether this is a House district position.
func (p *Position) IsHouseSeat() bool {
	return p.Branch == BranchLegislative && p.Chamber == ChamberHouse
}
