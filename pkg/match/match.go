package match

import (
	"cmp"
	"slices"
	"time"

	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/registry"
)

// DefaultThreshold is the minimum normalized similarity a fuzzy
// comparison must reach to count as a match.
const DefaultThreshold = 0.85

// maxSuggestions caps the runner-up list attached to a result.
const maxSuggestions = 3

// Option configures a Match call.
type Option func(*options)

type options struct {
	threshold float64
}

// WithThreshold overrides the fuzzy-match acceptance threshold.
func WithThreshold(t float64) Option {
	return func(o *options) { o.threshold = t }
}

// entry is one canonical record flattened for comparison. Matching
// works over entries so organizations and people share one pipeline.
type entry struct {
	id      string
	name    string // normalized
	display string
	aliases []alias
	branch  registry.Branch
	orgKind registry.OrgKind

	hasParent bool
	updatedAt time.Time
}

type alias struct {
	name    string // normalized, or uppercase for acronyms
	acronym bool
	valid   func(registry.Date) bool
}

// Match resolves a candidate against the registry view. Strategies run
// in strict precedence: exact official-name match (confidence 1.0),
// time-bounded alias or acronym match (0.95), then fuzzy similarity
// within the candidate's branch and kind partition (confidence = score,
// accepted at or above the threshold). When nothing reaches the
// threshold the result is a no-match carrying up to three nearest
// suggestions. No-match is a valid outcome, not an error; Match fails
// only on malformed input such as a nil view.
func Match(candidate CandidateRecord, view registry.View, opts ...Option) (MatchResult, error) {
	if view == nil {
		return MatchResult{}, &errors.ValidationError{Field: "view", Message: "registry view is required"}
	}

	o := options{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(&o)
	}
	if o.threshold <= 0 || o.threshold > 1 {
		return MatchResult{}, &errors.ValidationError{Field: "threshold", Message: "threshold must be in (0, 1]"}
	}

	kind := candidate.Kind
	if kind == "" || kind == registry.EntityUnknownKind {
		kind = registry.EntityOrganization
	}
	result := MatchResult{Kind: kind, Method: MethodNone}

	name := Normalize(candidate.Name)
	if name == "" {
		return result, nil
	}

	// External identifiers resolve people ahead of any name strategy.
	if kind == registry.EntityPerson {
		if id, ok := matchExternalID(candidate, view); ok {
			result.MatchedID = id
			result.Confidence = 1.0
			result.Method = MethodExact
			return result, nil
		}
	}

	entries := collect(kind, view)

	if hit := exactMatch(name, entries); hit != nil {
		result.MatchedID = hit.id
		result.Confidence = 1.0
		result.Method = MethodExact
		return result, nil
	}

	if hit := aliasMatch(candidate, name, entries); hit != nil {
		result.MatchedID = hit.id
		result.Confidence = 0.95
		result.Method = MethodAlias
		return result, nil
	}

	best, suggestions := fuzzyMatch(candidate, name, entries, o.threshold)
	result.Suggestions = suggestions
	if best != nil {
		result.MatchedID = best.ID
		result.Confidence = best.Score
		result.Method = MethodFuzzy
	}
	return result, nil
}

func matchExternalID(candidate CandidateRecord, view registry.View) (string, bool) {
	for source, extID := range candidate.ExternalIDs {
		if extID == "" {
			continue
		}
		for _, p := range view.ListPeople() {
			if got, ok := p.ExternalID(source); ok && got == extID {
				return string(p.ID), true
			}
		}
	}
	return "", false
}

func collect(kind registry.EntityKind, view registry.View) []entry {
	if kind == registry.EntityPerson {
		people := view.ListPeople()
		entries := make([]entry, 0, len(people))
		for _, p := range people {
			entries = append(entries, entry{
				id:        string(p.ID),
				name:      Normalize(p.FullName()),
				display:   p.FullName(),
				updatedAt: p.UpdatedAt,
			})
		}
		return entries
	}

	orgs := view.ListOrganizations()
	entries := make([]entry, 0, len(orgs))
	for _, org := range orgs {
		e := entry{
			id:        string(org.ID),
			name:      Normalize(org.OfficialName),
			display:   org.OfficialName,
			branch:    org.Branch,
			orgKind:   org.Kind,
			hasParent: org.ParentID != "",
			updatedAt: org.UpdatedAt,
		}
		for _, a := range org.Aliases {
			norm := Normalize(a.Name)
			if a.Acronym {
				norm = NormalizeAcronym(a.Name)
			}
			e.aliases = append(e.aliases, alias{name: norm, acronym: a.Acronym, valid: a.ValidOn})
		}
		entries = append(entries, e)
	}
	return entries
}

func exactMatch(name string, entries []entry) *entry {
	var hits []*entry
	for i := range entries {
		if entries[i].name == name {
			hits = append(hits, &entries[i])
		}
	}
	return pickBest(hits)
}

func aliasMatch(candidate CandidateRecord, name string, entries []entry) *entry {
	// A bare short letter token carries no case information; compare it
	// upper-cased against acronym aliases.
	acronym := ""
	if looksLikeAcronym(candidate.Name) {
		acronym = NormalizeAcronym(candidate.Name)
	} else if candidate.Acronym != "" {
		acronym = NormalizeAcronym(candidate.Acronym)
	}
	// A long-form name with a known standard acronym also matches the
	// acronym alias, so "Environmental Protection Agency" finds an
	// organization registered under "EPA".
	known, _ := KnownAcronym(name)

	var hits []*entry
	for i := range entries {
		e := &entries[i]
		for _, a := range e.aliases {
			if !a.valid(candidate.EffectiveDate) {
				continue
			}
			if a.acronym {
				if (acronym != "" && a.name == acronym) || (known != "" && a.name == known) {
					hits = append(hits, e)
					break
				}
				continue
			}
			if a.name == name {
				hits = append(hits, e)
				break
			}
		}
	}
	return pickBest(hits)
}

func fuzzyMatch(candidate CandidateRecord, name string, entries []entry, threshold float64) (*Suggestion, []Suggestion) {
	type scored struct {
		e     *entry
		score float64
	}
	var ranked []scored
	for i := range entries {
		e := &entries[i]
		if !samePartition(candidate, e) {
			continue
		}
		if e.name == "" {
			continue
		}
		s := Score(name, e.name)
		if s <= 0 {
			continue
		}
		ranked = append(ranked, scored{e: e, score: s})
	}

	slices.SortFunc(ranked, func(a, b scored) int {
		if a.score != b.score {
			return cmp.Compare(b.score, a.score)
		}
		return compareEntries(a.e, b.e)
	})

	var best *Suggestion
	var suggestions []Suggestion
	for _, s := range ranked {
		sg := Suggestion{ID: s.e.id, Name: s.e.display, Score: s.score}
		if best == nil && s.score >= threshold {
			b := sg
			best = &b
			continue
		}
		if len(suggestions) < maxSuggestions {
			suggestions = append(suggestions, sg)
		}
	}
	return best, suggestions
}

// samePartition reports whether fuzzy comparison is allowed between the
// candidate and a canonical entry. Branch and kind only partition when
// both sides declare them; an unknown side matches anything.
func samePartition(candidate CandidateRecord, e *entry) bool {
	if candidate.Branch != "" && candidate.Branch != registry.BranchUnknown &&
		e.branch != "" && e.branch != registry.BranchUnknown &&
		candidate.Branch != e.branch {
		return false
	}
	if candidate.OrgKind != "" && candidate.OrgKind != registry.OrgKindUnknown &&
		e.orgKind != "" && e.orgKind != registry.OrgKindUnknown &&
		candidate.OrgKind != e.orgKind {
		return false
	}
	return true
}

// pickBest applies the deterministic tie-break to equally scored hits:
// a record with a parent beats a root-level one, then the most recently
// updated, then the lexicographically smallest id.
func pickBest(hits []*entry) *entry {
	if len(hits) == 0 {
		return nil
	}
	best := hits[0]
	for _, h := range hits[1:] {
		if compareEntries(h, best) < 0 {
			best = h
		}
	}
	return best
}

func compareEntries(a, b *entry) int {
	if a.hasParent != b.hasParent {
		if a.hasParent {
			return -1
		}
		return 1
	}
	if !a.updatedAt.Equal(b.updatedAt) {
		if a.updatedAt.After(b.updatedAt) {
			return -1
		}
		return 1
	}
	return cmp.Compare(a.id, b.id)
}
