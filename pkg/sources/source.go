// Package sources defines the contract between upstream data feeds and
// the sync orchestrator. An adapter fetches one source's records and
// normalizes them into candidate batches; it never writes the registry
// itself.
package sources

import (
	"context"
	"slices"

	"github.com/factline/registry/pkg/match"
	"github.com/factline/registry/pkg/registry"
)

// ID identifies a data source.
type ID string

// String returns the string representation of a source id.
func (id ID) String() string { return string(id) }

// Known source ids.
const (
	LegislatorsID ID = "legislators"
	PlumID        ID = "plum"
	FedRegID      ID = "federal-register"
	GovManID      ID = "govman"
)

// IDs returns all known source ids.
func IDs() []ID {
	return []ID{LegislatorsID, PlumID, FedRegID, GovManID}
}

// IsValid reports whether the id is one of the defined constants.
func (id ID) IsValid() bool {
	return slices.Contains(IDs(), id)
}

// Adapter fetches and normalizes one upstream source. Fetch handles its
// own transport concerns (auth, pagination, throttling) and returns the
// full batch for the run; the orchestrator owns retries and the write
// pipeline.
type Adapter interface {
	// ID returns the source identifier used in reports and provenance.
	ID() ID

	// Fetch retrieves the source's records as a candidate batch.
	Fetch(ctx context.Context) (*Batch, error)
}

// Batch is one adapter run's output. Records feed the match/merge
// pipeline in source order; Holdings are applied afterwards, once the
// people they reference have canonical records.
type Batch struct {
	Records  []match.CandidateRecord
	Holdings []HoldingCandidate
}

// HoldingCandidate is a source's assertion that a person held a
// position over an interval. The person is referenced by external id
// (with name as a fallback) and the position by seat coordinates or
// directly by id; the orchestrator resolves both against the registry.
type HoldingCandidate struct {
	PersonName        string            `json:"person_name" yaml:"person_name"`
	PersonExternalIDs map[string]string `json:"person_external_ids,omitempty" yaml:"person_external_ids,omitempty"`

	// Seat coordinates for legislative positions.
	Chamber   registry.Chamber `json:"chamber,omitempty" yaml:"chamber,omitempty"`
	State     string           `json:"state,omitempty" yaml:"state,omitempty"`
	District  int              `json:"district,omitempty" yaml:"district,omitempty"`
	SeatClass int              `json:"seat_class,omitempty" yaml:"seat_class,omitempty"`

	// PositionID short-circuits seat resolution when the source knows
	// the position directly.
	PositionID registry.PositionID `json:"position_id,omitempty" yaml:"position_id,omitempty"`

	// Appointed-position description, for sources whose positions are
	// not seeded seats. The orchestrator creates the position on first
	// sight, attached to the named organization.
	PositionTitle    string                `json:"position_title,omitempty" yaml:"position_title,omitempty"`
	PositionKind     registry.PositionKind `json:"position_kind,omitempty" yaml:"position_kind,omitempty"`
	OrganizationName string                `json:"organization_name,omitempty" yaml:"organization_name,omitempty"`

	Start      registry.Date       `json:"start" yaml:"start"`
	End        registry.Date       `json:"end,omitempty" yaml:"end,omitempty"`
	Term       int                 `json:"term,omitempty" yaml:"term,omitempty"`
	Properties registry.Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Budget is a per-source rate limit: how hard an adapter may hit its
// upstream API.
type Budget struct {
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`
}

// DefaultBudget is a conservative default for public government APIs.
var DefaultBudget = Budget{RequestsPerSecond: 2, Burst: 4}
