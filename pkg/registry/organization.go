package registry

import (
	"time"
)

// OrgID uniquely identifies a canonical organization.
type OrgID string

// PersonID uniquely identifies a canonical person.
type PersonID string

// PositionID uniquely identifies a position.
type PositionID string

// HoldingID uniquely identifies a position holding.
type HoldingID string

// Alias is an alternative name or acronym with an optional validity
// window. A former official name becomes an alias bounded by the date
// of the rename.
type Alias struct {
	Name      string `json:"name" yaml:"name"`
	Acronym   bool   `json:"acronym,omitempty" yaml:"acronym,omitempty"`
	ValidFrom Date   `json:"valid_from,omitempty" yaml:"valid_from,omitempty"`
	ValidTo   Date   `json:"valid_to,omitempty" yaml:"valid_to,omitempty"`
}

// ValidOn reports whether the alias was in use on the given date.
// A zero date on either bound leaves that side open; a zero query date
// means "no effective date known" and matches any alias.
func (a Alias) ValidOn(d Date) bool {
	if d.IsZero() {
		return true
	}
	if !a.ValidFrom.IsZero() && d.Before(a.ValidFrom) {
		return false
	}
	if !a.ValidTo.IsZero() && d.After(a.ValidTo) {
		return false
	}
	return true
}

// Organization is a canonical master record for a government
// organization. The parent chain forms a tree; cycle and
// dissolved-parent checks are enforced at write time by the registry.
type Organization struct {
	ID           OrgID   `json:"id" yaml:"id"`
	OfficialName string  `json:"official_name" yaml:"official_name"`
	Aliases      []Alias `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Kind         OrgKind `json:"kind" yaml:"kind"`
	Branch       Branch  `json:"branch" yaml:"branch"`
	ParentID     OrgID   `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`

	Established Date `json:"established,omitempty" yaml:"established,omitempty"`
	Dissolved   Date `json:"dissolved,omitempty" yaml:"dissolved,omitempty"`

	// Curated fields. The merge policy only fills these when empty.
	MissionStatement  string   `json:"mission_statement,omitempty" yaml:"mission_statement,omitempty"`
	JurisdictionAreas []string `json:"jurisdiction_areas,omitempty" yaml:"jurisdiction_areas,omitempty"`

	// Source-owned fields. The merge policy overwrites these freely
	// when the incoming value is non-empty.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	WebsiteURL  string `json:"website_url,omitempty" yaml:"website_url,omitempty"`

	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`

	DataQuality float64    `json:"data_quality" yaml:"data_quality"`
	Provenance  Provenance `json:"provenance" yaml:"provenance"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Active reports whether the organization has not been dissolved.
func (o *Organization) Active() bool {
	return o.Dissolved.IsZero()
}

// AliasNames returns all alias names valid on the given date.
func (o *Organization) AliasNames(on Date) []string {
	names := make([]string, 0, len(o.Aliases))
	for _, a := range o.Aliases {
		if a.ValidOn(on) {
			names = append(names, a.Name)
		}
	}
	return names
}

// HasAlias reports whether name matches any alias valid on the date.
// Comparison is the caller's responsibility; this checks raw equality.
func (o *Organization) HasAlias(name string, on Date) bool {
	for _, a := range o.Aliases {
		if a.Name == name && a.ValidOn(on) {
			return true
		}
	}
	return false
}
