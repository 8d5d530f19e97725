// Package temporal implements the position-holding subsystem: validated
// inserts of time-bounded holdings and the point-in-time queries over
// them. All holding mutation goes through this service; nothing else
// writes holdings directly.
package temporal

import (
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/logging"
	"github.com/factline/registry/pkg/registry"
)

// Service validates and records position holdings against the registry.
// Writes for a single position are serialized; reads are lock-free on
// top of the registry's own collections.
type Service struct {
	reg   *registry.Registry
	newID func() registry.HoldingID
	locks sync.Map // PositionID -> *sync.Mutex
}

// Option configures the service.
type Option func(*Service)

// WithIDFunc overrides holding id generation.
func WithIDFunc(fn func() registry.HoldingID) Option {
	return func(s *Service) { s.newID = fn }
}

// New returns a temporal service over the given registry.
func New(reg *registry.Registry, opts ...Option) *Service {
	s := &Service{
		reg:   reg,
		newID: func() registry.HoldingID { return registry.NewHoldingID() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HoldingSpec describes a holding to record. A zero End means the
// holding is active.
type HoldingSpec struct {
	PersonID   registry.PersonID
	PositionID registry.PositionID
	Start      registry.Date
	End        registry.Date
	Term       int
	Properties registry.Properties
	Provenance registry.Provenance
}

// RecordHolding validates the spec and inserts a new holding. The
// interval must be well-formed (start set, start <= end when end is
// set) and, unless the position allows concurrent holders, must not
// overlap any existing holding for the position. On overlap the
// returned IntervalConflictError names the conflicting holding id; the
// service never truncates either interval, closing the incumbent is the
// caller's decision.
func (s *Service) RecordHolding(ctx context.Context, spec HoldingSpec) (registry.HoldingID, error) {
	if s == nil || s.reg == nil {
		return "", &errors.ValidationError{Field: "registry", Message: "temporal service requires a registry"}
	}

	if _, ok := s.reg.Person(spec.PersonID); !ok {
		return "", &errors.NotFoundError{Resource: "person", ID: string(spec.PersonID)}
	}
	pos, ok := s.reg.Position(spec.PositionID)
	if !ok {
		return "", &errors.NotFoundError{Resource: "position", ID: string(spec.PositionID)}
	}
	if spec.Start.IsZero() {
		return "", &errors.ValidationError{Field: "start", Message: "start date is required"}
	}
	if !spec.End.IsZero() && spec.End.Before(spec.Start) {
		return "", errors.NewInvariantError("holding", "", "interval-validity",
			"start date is after end date")
	}

	unlock := s.lock(spec.PositionID)
	defer unlock()

	candidate := &registry.PositionHolding{
		ID:         s.newID(),
		PersonID:   spec.PersonID,
		PositionID: spec.PositionID,
		Start:      spec.Start,
		End:        spec.End,
		Term:       spec.Term,
		Properties: spec.Properties.Clone(),
		Provenance: spec.Provenance,
	}

	if !pos.AllowsConcurrent {
		for _, existing := range s.reg.Holdings().ForPosition(spec.PositionID) {
			if existing.Overlaps(candidate) {
				return "", errors.NewIntervalConflictError(
					string(spec.PositionID), string(existing.ID),
					"interval overlaps an existing holding")
			}
		}
	}

	if err := s.reg.Holdings().Put(candidate); err != nil {
		return "", err
	}

	logging.Ctx(ctx).Debug().
		Str("position", string(spec.PositionID)).
		Str("person", string(spec.PersonID)).
		Str("holding", string(candidate.ID)).
		Msg("holding recorded")
	return candidate.ID, nil
}

// CloseHolding sets the end date of an active holding. Active to Closed
// is the only transition; holdings are never deleted or reopened, so
// history stays queryable.
func (s *Service) CloseHolding(ctx context.Context, id registry.HoldingID, end registry.Date) error {
	h, ok := s.reg.Holdings().Get(id)
	if !ok {
		return &errors.NotFoundError{Resource: "holding", ID: string(id)}
	}

	unlock := s.lock(h.PositionID)
	defer unlock()

	// Re-read under the lock.
	h, ok = s.reg.Holdings().Get(id)
	if !ok {
		return &errors.NotFoundError{Resource: "holding", ID: string(id)}
	}
	if h.State() != registry.HoldingActive {
		return errors.NewInvariantError("holding", string(id), "closed-is-final",
			"holding is already closed")
	}
	if end.IsZero() {
		return &errors.ValidationError{Field: "end", Message: "end date is required"}
	}
	if end.Before(h.Start) {
		return errors.NewInvariantError("holding", string(id), "interval-validity",
			"end date is before start date")
	}

	closed := *h
	closed.End = end
	if err := s.reg.Holdings().Put(&closed); err != nil {
		return err
	}

	logging.Ctx(ctx).Debug().
		Str("holding", string(id)).
		Str("end", end.String()).
		Msg("holding closed")
	return nil
}

// WhoHeld returns the person holding the position on the given date.
// For positions that allow concurrent holders it returns the holder
// whose tenure started first; Holders returns them all.
func (s *Service) WhoHeld(positionID registry.PositionID, on registry.Date) (registry.PersonID, bool) {
	holders := s.Holders(positionID, on)
	if len(holders) == 0 {
		return "", false
	}
	return holders[0], true
}

// Holders returns every person whose holding covers the date, ordered
// by start date. On a handover day the outgoing and incoming holdings
// both cover the date; for exclusive positions the incoming holder is
// the one reported, so the position never answers with two people.
func (s *Service) Holders(positionID registry.PositionID, on registry.Date) []registry.PersonID {
	var covering []*registry.PositionHolding
	for _, h := range s.reg.Holdings().ForPosition(positionID) {
		if h.Covers(on) {
			covering = append(covering, h)
		}
	}
	if len(covering) > 1 {
		if pos, ok := s.reg.Position(positionID); ok && !pos.AllowsConcurrent {
			// ForPosition orders by start date, so the last covering
			// holding is the incoming one.
			covering = covering[len(covering)-1:]
		}
	}
	var out []registry.PersonID
	for _, h := range covering {
		out = append(out, h.PersonID)
	}
	return out
}

// WhoWasInOffice returns the set of people in any position on the given
// date, sorted for deterministic output.
func (s *Service) WhoWasInOffice(on registry.Date) []registry.PersonID {
	seen := make(map[registry.PersonID]struct{})
	for _, h := range s.reg.Holdings().List() {
		if h.Covers(on) {
			seen[h.PersonID] = struct{}{}
		}
	}
	out := make([]registry.PersonID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// CurrentHolder returns the active holder of a position. A position
// with no active holding is vacant.
func (s *Service) CurrentHolder(positionID registry.PositionID) (registry.PersonID, bool) {
	for _, h := range s.reg.Holdings().ForPosition(positionID) {
		if h.Current() {
			return h.PersonID, true
		}
	}
	return "", false
}

// Vacant reports whether the position has no active holder.
func (s *Service) Vacant(positionID registry.PositionID) bool {
	_, held := s.CurrentHolder(positionID)
	return !held
}

// Vacancies returns every position with no active holder, sorted by id.
func (s *Service) Vacancies() []registry.PositionID {
	var out []registry.PositionID
	for _, pos := range s.reg.ListPositions() {
		if s.Vacant(pos.ID) {
			out = append(out, pos.ID)
		}
	}
	return out
}

// History returns the position's holdings ordered by start date as a
// lazy, restartable sequence. The sequence is bounded by the holdings
// recorded at the time of the call.
func (s *Service) History(positionID registry.PositionID) iter.Seq[*registry.PositionHolding] {
	return func(yield func(*registry.PositionHolding) bool) {
		for _, h := range s.reg.Holdings().ForPosition(positionID) {
			if !yield(h) {
				return
			}
		}
	}
}

// Tenure returns a person's holdings across all positions ordered by
// start date.
func (s *Service) Tenure(personID registry.PersonID) []*registry.PositionHolding {
	return s.reg.Holdings().ForPerson(personID)
}

func (s *Service) lock(id registry.PositionID) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
