// Package match implements the matching engine that resolves source
// candidate records against the canonical registry. Matching is a pure
// function of the candidate and a read-only registry view, so it can be
// tested without a live store.
package match

import (
	"github.com/factline/registry/pkg/registry"
)

// CandidateRecord is an unvalidated, source-specific record proposed
// for reconciliation. Candidates are ephemeral; they never enter the
// registry as-is.
type CandidateRecord struct {
	Kind registry.EntityKind `json:"kind" yaml:"kind"`
	Name string              `json:"name" yaml:"name"`

	Source         string        `json:"source" yaml:"source"`
	SourceRecordID string        `json:"source_record_id,omitempty" yaml:"source_record_id,omitempty"`
	EffectiveDate  registry.Date `json:"effective_date,omitempty" yaml:"effective_date,omitempty"`

	// Organization payload.
	Acronym           string           `json:"acronym,omitempty" yaml:"acronym,omitempty"`
	OrgKind           registry.OrgKind `json:"org_kind,omitempty" yaml:"org_kind,omitempty"`
	Branch            registry.Branch  `json:"branch,omitempty" yaml:"branch,omitempty"`
	ParentName        string           `json:"parent_name,omitempty" yaml:"parent_name,omitempty"`
	MissionStatement  string           `json:"mission_statement,omitempty" yaml:"mission_statement,omitempty"`
	JurisdictionAreas []string         `json:"jurisdiction_areas,omitempty" yaml:"jurisdiction_areas,omitempty"`
	Description       string           `json:"description,omitempty" yaml:"description,omitempty"`
	WebsiteURL        string           `json:"website_url,omitempty" yaml:"website_url,omitempty"`
	Dissolved         registry.Date    `json:"dissolved,omitempty" yaml:"dissolved,omitempty"`

	// Person payload.
	GivenName   string            `json:"given_name,omitempty" yaml:"given_name,omitempty"`
	MiddleName  string            `json:"middle_name,omitempty" yaml:"middle_name,omitempty"`
	FamilyName  string            `json:"family_name,omitempty" yaml:"family_name,omitempty"`
	Suffix      string            `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	BirthDate   registry.Date     `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	DeathDate   registry.Date     `json:"death_date,omitempty" yaml:"death_date,omitempty"`
	ExternalIDs map[string]string `json:"external_ids,omitempty" yaml:"external_ids,omitempty"`

	Properties registry.Properties `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Method identifies which strategy produced a match.
type Method string

// Match methods, in precedence order.
const (
	MethodExact Method = "exact"
	MethodAlias Method = "alias"
	MethodFuzzy Method = "fuzzy"
	MethodNone  Method = "none"
)

// Suggestion is a near-miss candidate offered for human triage.
type Suggestion struct {
	ID    string  `json:"id" yaml:"id"`
	Name  string  `json:"name" yaml:"name"`
	Score float64 `json:"score" yaml:"score"`
}

// MatchResult reports the outcome of matching one candidate. A no-match
// is a valid outcome, not an error: MatchedID is empty, Confidence is
// zero and Suggestions carries up to three nearest names.
type MatchResult struct {
	Kind        registry.EntityKind `json:"kind" yaml:"kind"`
	MatchedID   string              `json:"matched_id,omitempty" yaml:"matched_id,omitempty"`
	Confidence  float64             `json:"confidence" yaml:"confidence"`
	Method      Method              `json:"method" yaml:"method"`
	Suggestions []Suggestion        `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// Matched reports whether a canonical record was resolved.
func (r MatchResult) Matched() bool { return r.MatchedID != "" }
