// Package registry defines the canonical master records (organizations,
// people, positions, position holdings) and the in-memory registry that
// owns them. The registry is the single source of truth: all mutation
// flows through its validated entry points or the temporal service built
// on top of it, never through ad hoc writes.
package registry

import (
	"github.com/google/uuid"

	"github.com/factline/registry/pkg/errors"
)

// View is the read-only resolve surface handed to the matching engine.
// Matching is a pure function of a candidate and a View, so it can be
// tested against a fixture registry with no live store.
type View interface {
	// Organization resolves an organization id.
	Organization(id OrgID) (*Organization, bool)
	// Person resolves a person id.
	Person(id PersonID) (*Person, bool)
	// Position resolves a position id.
	Position(id PositionID) (*Position, bool)
	// ListOrganizations returns all organizations, sorted by id.
	ListOrganizations() []*Organization
	// ListPeople returns all people, sorted by id.
	ListPeople() []*Person
	// ListPositions returns all positions, sorted by id.
	ListPositions() []*Position
}

// Registry is the in-memory canonical registry. Collections are
// individually concurrency safe; cross-record invariants (parent
// cycles, dissolved-parent ordering) are checked in the Set methods.
type Registry struct {
	organizations *Organizations
	people        *People
	positions     *Positions
	holdings      *Holdings
}

// Compile-time interface check.
var _ View = (*Registry)(nil)

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		organizations: NewOrganizations(),
		people:        NewPeople(),
		positions:     NewPositions(),
		holdings:      NewHoldings(),
	}
}

// NewOrgID mints an organization id.
func NewOrgID() OrgID { return OrgID(uuid.NewString()) }

// NewPersonID mints a person id.
func NewPersonID() PersonID { return PersonID(uuid.NewString()) }

// NewPositionID mints a position id.
func NewPositionID() PositionID { return PositionID(uuid.NewString()) }

// NewHoldingID mints a holding id.
func NewHoldingID() HoldingID { return HoldingID(uuid.NewString()) }

// Organization resolves an organization id.
func (r *Registry) Organization(id OrgID) (*Organization, bool) {
	return r.organizations.Get(id)
}

// Person resolves a person id.
func (r *Registry) Person(id PersonID) (*Person, bool) {
	return r.people.Get(id)
}

// Position resolves a position id.
func (r *Registry) Position(id PositionID) (*Position, bool) {
	return r.positions.Get(id)
}

// ListOrganizations returns all organizations, sorted by id.
func (r *Registry) ListOrganizations() []*Organization {
	return r.organizations.List()
}

// ListPeople returns all people, sorted by id.
func (r *Registry) ListPeople() []*Person {
	return r.people.List()
}

// ListPositions returns all positions, sorted by id.
func (r *Registry) ListPositions() []*Position {
	return r.positions.List()
}

// People exposes the people collection for secondary lookups.
func (r *Registry) People() *People { return r.people }

// Positions exposes the positions collection for seat lookups.
func (r *Registry) Positions() *Positions { return r.positions }

// Holdings exposes the holdings store. Mutation goes through the
// temporal service; direct Put is reserved for snapshot loading.
func (r *Registry) Holdings() *Holdings { return r.holdings }

// SetOrganization validates and stores an organization.
// Rejected writes return an InvariantError or ValidationError; the
// registry is never left partially updated.
func (r *Registry) SetOrganization(org *Organization) error {
	if org == nil {
		return errors.NewValidationError("organization", nil, "cannot be nil")
	}
	if org.ID == "" {
		return errors.NewValidationError("organization.id", "", "cannot be empty")
	}
	if org.OfficialName == "" {
		return errors.NewValidationError("organization.official_name", "", "cannot be empty")
	}
	if err := r.checkParentChain(org); err != nil {
		return err
	}
	return r.organizations.Set(org)
}

// checkParentChain enforces the hierarchy invariants: the parent must
// resolve, the chain must not loop back, and a dissolved organization
// cannot parent one established after its dissolution.
func (r *Registry) checkParentChain(org *Organization) error {
	if org.ParentID == "" {
		return nil
	}
	if org.ParentID == org.ID {
		return errors.NewInvariantError("organization", string(org.ID), "parent-cycle", "organization cannot be its own parent")
	}
	parent, ok := r.organizations.Get(org.ParentID)
	if !ok {
		return errors.NewInvariantError("organization", string(org.ID), "parent-missing",
			"parent "+string(org.ParentID)+" does not exist")
	}
	if !parent.Dissolved.IsZero() && !org.Established.IsZero() && org.Established.After(parent.Dissolved) {
		return errors.NewInvariantError("organization", string(org.ID), "dissolved-parent",
			"established after parent "+string(parent.ID)+" was dissolved")
	}

	// Walk upward; the tree is shallow so a simple visited set suffices.
	seen := map[OrgID]bool{org.ID: true}
	for cur := parent; cur != nil; {
		if seen[cur.ID] {
			return errors.NewInvariantError("organization", string(org.ID), "parent-cycle",
				"parent chain loops through "+string(cur.ID))
		}
		seen[cur.ID] = true
		if cur.ParentID == "" {
			break
		}
		next, ok := r.organizations.Get(cur.ParentID)
		if !ok {
			break
		}
		cur = next
	}
	return nil
}

// SetPerson validates and stores a person.
func (r *Registry) SetPerson(p *Person) error {
	if p == nil {
		return errors.NewValidationError("person", nil, "cannot be nil")
	}
	if p.ID == "" {
		return errors.NewValidationError("person.id", "", "cannot be empty")
	}
	if !p.DeathDate.IsZero() && !p.BirthDate.IsZero() && p.DeathDate.Before(p.BirthDate) {
		return errors.NewInvariantError("person", string(p.ID), "death-before-birth",
			"death date precedes birth date")
	}
	return r.people.Set(p)
}

// AddPosition stores a position. Positions are immutable reference
// data; adding an existing id is an error.
func (r *Registry) AddPosition(p *Position) error {
	if p == nil {
		return errors.NewValidationError("position", nil, "cannot be nil")
	}
	if p.ID == "" {
		return errors.NewValidationError("position.id", "", "cannot be empty")
	}
	if p.Title == "" {
		return errors.NewValidationError("position.title", "", "cannot be empty")
	}
	return r.positions.Add(p)
}

// Stats summarizes registry contents.
type Stats struct {
	Organizations int `json:"organizations" yaml:"organizations"`
	People        int `json:"people" yaml:"people"`
	Positions     int `json:"positions" yaml:"positions"`
	Holdings      int `json:"holdings" yaml:"holdings"`
}

// Stats returns counts per collection.
func (r *Registry) Stats() Stats {
	return Stats{
		Organizations: r.organizations.Len(),
		People:        r.people.Len(),
		Positions:     r.positions.Len(),
		Holdings:      r.holdings.Len(),
	}
}
