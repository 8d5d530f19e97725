package registry

import (
	"sort"
	"sync"

	"github.com/factline/registry/pkg/errors"
)

// Organizations is a concurrent safe map of organizations.
type Organizations struct {
	mu   sync.RWMutex
	orgs map[OrgID]*Organization
}

// NewOrganizations creates an empty organizations map.
func NewOrganizations() *Organizations {
	return &Organizations{orgs: make(map[OrgID]*Organization)}
}

// Get returns an organization by id and whether it exists.
func (c *Organizations) Get(id OrgID) (*Organization, bool) {
	c.mu.RLock()
	org, ok := c.orgs[id]
	c.mu.RUnlock()
	return org, ok
}

// Set stores an organization by id. Returns an error if org is nil.
func (c *Organizations) Set(org *Organization) error {
	if org == nil {
		return errors.NewValidationError("organization", nil, "cannot be nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orgs[org.ID] = org
	return nil
}

// Delete removes an organization by id.
func (c *Organizations) Delete(id OrgID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.orgs[id]; !ok {
		return errors.NewNotFoundError("organization", string(id))
	}
	delete(c.orgs, id)
	return nil
}

// List returns all organizations sorted by id for deterministic iteration.
func (c *Organizations) List() []*Organization {
	c.mu.RLock()
	out := make([]*Organization, 0, len(c.orgs))
	for _, org := range c.orgs {
		out = append(out, org)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of organizations.
func (c *Organizations) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.orgs)
}

// People is a concurrent safe map of people.
type People struct {
	mu     sync.RWMutex
	people map[PersonID]*Person
}

// NewPeople creates an empty people map.
func NewPeople() *People {
	return &People{people: make(map[PersonID]*Person)}
}

// Get returns a person by id and whether they exist.
func (c *People) Get(id PersonID) (*Person, bool) {
	c.mu.RLock()
	p, ok := c.people[id]
	c.mu.RUnlock()
	return p, ok
}

// Set stores a person by id. Returns an error if p is nil.
func (c *People) Set(p *Person) error {
	if p == nil {
		return errors.NewValidationError("person", nil, "cannot be nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.people[p.ID] = p
	return nil
}

// FindByExternalID returns the person a source knows by the given id.
func (c *People) FindByExternalID(source, externalID string) (*Person, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.people {
		if id, ok := p.ExternalIDs[source]; ok && id == externalID {
			return p, true
		}
	}
	return nil, false
}

// List returns all people sorted by id for deterministic iteration.
func (c *People) List() []*Person {
	c.mu.RLock()
	out := make([]*Person, 0, len(c.people))
	for _, p := range c.people {
		out = append(out, p)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of people.
func (c *People) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.people)
}

// Positions is a concurrent safe map of positions.
type Positions struct {
	mu        sync.RWMutex
	positions map[PositionID]*Position
}

// NewPositions creates an empty positions map.
func NewPositions() *Positions {
	return &Positions{positions: make(map[PositionID]*Position)}
}

// Get returns a position by id and whether it exists.
func (c *Positions) Get(id PositionID) (*Position, bool) {
	c.mu.RLock()
	p, ok := c.positions[id]
	c.mu.RUnlock()
	return p, ok
}

// Add inserts a position, returning an error if it already exists.
// Positions are reference data; there is no update path.
func (c *Positions) Add(p *Position) error {
	if p == nil {
		return errors.NewValidationError("position", nil, "cannot be nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.positions[p.ID]; exists {
		return errors.WrapResource("create", "position", string(p.ID), errors.ErrAlreadyExists)
	}
	c.positions[p.ID] = p
	return nil
}

// FindBySeat returns the legislative seat position for a state and
// chamber, disambiguated by Senate class or House district.
func (c *Positions) FindBySeat(chamber Chamber, state string, classOrDistrict int) (*Position, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.positions {
		if p.Chamber != chamber || p.State != state {
			continue
		}
		if chamber == ChamberSenate && p.SeatClass == classOrDistrict {
			return p, true
		}
		if chamber == ChamberHouse && p.District == classOrDistrict {
			return p, true
		}
	}
	return nil, false
}

// List returns all positions sorted by id for deterministic iteration.
func (c *Positions) List() []*Position {
	c.mu.RLock()
	out := make([]*Position, 0, len(c.positions))
	for _, p := range c.positions {
		out = append(out, p)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of positions.
func (c *Positions) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.positions)
}

// Holdings is a concurrent safe store of position holdings with a
// per-position index for interval queries.
type Holdings struct {
	mu         sync.RWMutex
	holdings   map[HoldingID]*PositionHolding
	byPosition map[PositionID][]HoldingID
}

// NewHoldings creates an empty holdings store.
func NewHoldings() *Holdings {
	return &Holdings{
		holdings:   make(map[HoldingID]*PositionHolding),
		byPosition: make(map[PositionID][]HoldingID),
	}
}

// Get returns a holding by id and whether it exists.
func (c *Holdings) Get(id HoldingID) (*PositionHolding, bool) {
	c.mu.RLock()
	h, ok := c.holdings[id]
	c.mu.RUnlock()
	return h, ok
}

// Put stores a holding. All external mutation goes through the temporal
// service's validated entry points; Put itself does not check intervals.
func (c *Holdings) Put(h *PositionHolding) error {
	if h == nil {
		return errors.NewValidationError("holding", nil, "cannot be nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.holdings[h.ID]; !exists {
		c.byPosition[h.PositionID] = append(c.byPosition[h.PositionID], h.ID)
	}
	c.holdings[h.ID] = h
	return nil
}

// ForPosition returns the holdings for a position ordered by start date.
func (c *Holdings) ForPosition(id PositionID) []*PositionHolding {
	c.mu.RLock()
	ids := c.byPosition[id]
	out := make([]*PositionHolding, 0, len(ids))
	for _, hid := range ids {
		if h, ok := c.holdings[hid]; ok {
			out = append(out, h)
		}
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// ForPerson returns the holdings for a person ordered by start date.
func (c *Holdings) ForPerson(id PersonID) []*PositionHolding {
	c.mu.RLock()
	out := make([]*PositionHolding, 0)
	for _, h := range c.holdings {
		if h.PersonID == id {
			out = append(out, h)
		}
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// List returns all holdings sorted by id for deterministic iteration.
func (c *Holdings) List() []*PositionHolding {
	c.mu.RLock()
	out := make([]*PositionHolding, 0, len(c.holdings))
	for _, h := range c.holdings {
		out = append(out, h)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of holdings.
func (c *Holdings) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.holdings)
}
