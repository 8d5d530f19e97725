package registry

import (
	"strings"
	"time"
)

// Person is a canonical master record for an individual.
type Person struct {
	ID         PersonID `json:"id" yaml:"id"`
	GivenName  string   `json:"given_name" yaml:"given_name"`
	FamilyName string   `json:"family_name" yaml:"family_name"`
	MiddleName string   `json:"middle_name,omitempty" yaml:"middle_name,omitempty"`
	Suffix     string   `json:"suffix,omitempty" yaml:"suffix,omitempty"`

	BirthDate Date `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	DeathDate Date `json:"death_date,omitempty" yaml:"death_date,omitempty"`

	// ExternalIDs maps a source name to that source's identifier for
	// this person (e.g. "bioguide" -> "S000033").
	ExternalIDs map[string]string `json:"external_ids,omitempty" yaml:"external_ids,omitempty"`

	Properties Properties `json:"properties,omitempty" yaml:"properties,omitempty"`

	DataQuality float64    `json:"data_quality" yaml:"data_quality"`
	Provenance  Provenance `json:"provenance" yaml:"provenance"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// FullName returns the person's display name.
func (p *Person) FullName() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.GivenName, p.MiddleName, p.FamilyName, p.Suffix} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// ExternalID returns the identifier this source knows the person by.
func (p *Person) ExternalID(source string) (string, bool) {
	id, ok := p.ExternalIDs[source]
	return id, ok
}
