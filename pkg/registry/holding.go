package registry

import (
	"fmt"
	"time"
)

// HoldingState is the lifecycle state of a position holding.
type HoldingState string

// Holding states. Active -> Closed is the only transition; holdings
// are never deleted, so history stays queryable.
const (
	HoldingActive HoldingState = "active"
	HoldingClosed HoldingState = "closed"
)

// PositionHolding is the temporal join asserting that a person held a
// position over [Start, End], end-inclusive. A zero End means the
// holding is current.
type PositionHolding struct {
	ID         HoldingID  `json:"id" yaml:"id"`
	PersonID   PersonID   `json:"person_id" yaml:"person_id"`
	PositionID PositionID `json:"position_id" yaml:"position_id"`

	Start Date `json:"start" yaml:"start"`
	End   Date `json:"end,omitempty" yaml:"end,omitempty"`

	// Term is an optional cycle identifier, e.g. the Congress number.
	Term int `json:"term,omitempty" yaml:"term,omitempty"`

	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
	Provenance Provenance `json:"provenance" yaml:"provenance"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// State returns Active while the holding has no end date.
func (h *PositionHolding) State() HoldingState {
	if h.End.IsZero() {
		return HoldingActive
	}
	return HoldingClosed
}

// Current reports whether the holding has no end date.
func (h *PositionHolding) Current() bool {
	return h.End.IsZero()
}

// Covers reports whether the holding was in effect on the given date.
// The end date is inclusive: a senator whose term ended January 3 was
// still in office on January 3.
func (h *PositionHolding) Covers(d Date) bool {
	if d.IsZero() || d.Before(h.Start) {
		return false
	}
	return h.End.IsZero() || !d.After(h.End)
}

// Overlaps reports whether two holdings' intervals conflict for
// exclusivity purposes. Exclusivity treats intervals as half-open:
// a holding ending on a date does not conflict with one starting that
// same date, so a seat handover or back-to-back re-election can share
// its boundary day. Coverage (Covers) stays end-inclusive. A zero End
// is open-ended.
func (h *PositionHolding) Overlaps(other *PositionHolding) bool {
	// h hands over on or before other starts
	if !h.End.IsZero() && !other.Start.Before(h.End) {
		return false
	}
	// other hands over on or before h starts
	if !other.End.IsZero() && !h.Start.Before(other.End) {
		return false
	}
	return true
}

// TermLabel returns a human-readable label like
// "118th Congress (2023-2025)" or "2007-present".
func (h *PositionHolding) TermLabel() string {
	if h.Term > 0 {
		suffix := ordinalSuffix(h.Term)
		if !h.End.IsZero() {
			return fmt.Sprintf("%d%s Congress (%d-%d)", h.Term, suffix, h.Start.Year(), h.End.Year())
		}
		return fmt.Sprintf("%d%s Congress (%d-present)", h.Term, suffix, h.Start.Year())
	}
	if !h.End.IsZero() {
		return fmt.Sprintf("%d-%d", h.Start.Year(), h.End.Year())
	}
	return fmt.Sprintf("%d-present", h.Start.Year())
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
