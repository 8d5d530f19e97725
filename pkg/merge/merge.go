// Package merge implements the reconcile orchestrator: it turns a
// matched candidate record into a canonical registry write, applying
// the curated versus source-owned field policy, and reports the outcome
// per record so a batch never aborts on one bad input.
package merge

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/logging"
	"github.com/factline/registry/pkg/match"
	"github.com/factline/registry/pkg/registry"
)

// Status is the per-record reconcile outcome.
type Status string

// Reconcile outcomes.
const (
	StatusCreated          Status = "created"
	StatusUpdated          Status = "updated"
	StatusFlaggedForReview Status = "flagged_for_review"
	StatusRejected         Status = "rejected"
)

// Data-quality scoring. A record starts low until a second independent
// source corroborates it.
const (
	InitialDataQuality = 0.5
	corroborationBoost = 0.25
	maxDataQuality     = 1.0
)

// AutoMergeConfidence is the floor above which a match writes directly
// to the canonical record. Fuzzy matches below it are flagged instead.
const AutoMergeConfidence = 0.95

// Outcome reports what Reconcile did with one candidate.
type Outcome struct {
	Status      Status             `json:"status" yaml:"status"`
	CanonicalID string             `json:"canonical_id,omitempty" yaml:"canonical_id,omitempty"`
	Reason      string             `json:"reason,omitempty" yaml:"reason,omitempty"`
	Suggestions []match.Suggestion `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithThreshold overrides the fuzzy acceptance threshold used when
// re-matching under the write lock.
func WithThreshold(t float64) Option {
	return func(o *Orchestrator) { o.threshold = t }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator serializes canonical writes per record id and applies
// the merge policy. Writes to distinct records proceed concurrently
// through independent lock stripes.
type Orchestrator struct {
	reg       *registry.Registry
	threshold float64
	now       func() time.Time
	locks     sync.Map // canonical id or normalized name -> *sync.Mutex
}

// New returns an orchestrator writing to the given registry.
func New(reg *registry.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		reg:       reg,
		threshold: match.DefaultThreshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Reconcile applies one matched candidate to the registry. The outcome
// is a typed status, never an error, for everything recoverable: a
// rejected write reports the violated invariant in Reason and the batch
// continues. Reconcile returns an error only for contract violations
// (nil registry) or a context canceled before the write began; an
// in-flight write always completes.
func (o *Orchestrator) Reconcile(ctx context.Context, candidate match.CandidateRecord, res match.MatchResult) (Outcome, error) {
	if o == nil || o.reg == nil {
		return Outcome{}, &errors.ValidationError{Field: "registry", Message: "orchestrator requires a registry"}
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, errors.ErrCanceled
	}

	log := logging.Ctx(ctx).With().
		Str("source", candidate.Source).
		Str("candidate", candidate.Name).
		Logger()

	switch {
	case res.Matched() && res.Confidence >= AutoMergeConfidence:
		return o.update(ctx, candidate, res, log)

	case res.Matched():
		log.Info().Float64("confidence", res.Confidence).Msg("flagged for review")
		return o.flag(res), nil

	default:
		return o.create(ctx, candidate, log)
	}
}

func (o *Orchestrator) update(ctx context.Context, candidate match.CandidateRecord, res match.MatchResult, log zerolog.Logger) (Outcome, error) {
	unlock := o.lock(res.MatchedID)
	defer unlock()

	var err error
	switch res.Kind {
	case registry.EntityPerson:
		err = o.applyPerson(registry.PersonID(res.MatchedID), candidate)
	default:
		err = o.applyOrganization(registry.OrgID(res.MatchedID), candidate)
	}
	if err != nil {
		return rejected(res.MatchedID, err, log), nil
	}

	log.Info().Str("id", res.MatchedID).Msg("canonical record updated")
	return Outcome{Status: StatusUpdated, CanonicalID: res.MatchedID}, nil
}

// create inserts a new canonical record. The lock stripe is keyed on
// the normalized candidate name so two concurrent creates of the same
// name serialize; the second one re-matches under the lock and applies
// the update policy against the record the first one wrote.
func (o *Orchestrator) create(ctx context.Context, candidate match.CandidateRecord, log zerolog.Logger) (Outcome, error) {
	unlock := o.lock(match.Normalize(candidate.Name))
	defer unlock()

	rematch, err := match.Match(candidate, o.reg, match.WithThreshold(o.threshold))
	if err != nil {
		return Outcome{}, err
	}
	if rematch.Matched() {
		if rematch.Confidence >= AutoMergeConfidence {
			return o.update(ctx, candidate, rematch, log)
		}
		// The stale no-match result raced a write that makes this
		// candidate ambiguous now; same verdict a fresh Reconcile
		// would reach.
		log.Info().Float64("confidence", rematch.Confidence).Msg("flagged for review")
		return o.flag(rematch), nil
	}

	var id string
	switch candidate.Kind {
	case registry.EntityPerson:
		id, err = o.createPerson(candidate)
	default:
		id, err = o.createOrganization(candidate)
	}
	if err != nil {
		return rejected("", err, log), nil
	}

	log.Info().Str("id", id).Msg("canonical record created")
	return Outcome{Status: StatusCreated, CanonicalID: id}, nil
}

func (o *Orchestrator) createOrganization(candidate match.CandidateRecord) (string, error) {
	now := o.now()
	org := &registry.Organization{
		ID:                registry.NewOrgID(),
		OfficialName:      candidate.Name,
		Kind:              candidate.OrgKind,
		Branch:            candidate.Branch,
		Established:       candidate.EffectiveDate,
		Dissolved:         candidate.Dissolved,
		MissionStatement:  candidate.MissionStatement,
		JurisdictionAreas: candidate.JurisdictionAreas,
		Description:       candidate.Description,
		WebsiteURL:        candidate.WebsiteURL,
		Properties:        candidate.Properties.Clone(),
		DataQuality:       InitialDataQuality,
		Provenance: registry.Provenance{
			Source:         candidate.Source,
			SourceRecordID: candidate.SourceRecordID,
			LastSynced:     now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if candidate.Acronym != "" {
		org.Aliases = append(org.Aliases, registry.Alias{
			Name:    match.NormalizeAcronym(candidate.Acronym),
			Acronym: true,
		})
	}
	if candidate.ParentName != "" {
		if parent, ok := findOrgByName(o.reg, candidate.ParentName); ok {
			org.ParentID = parent.ID
		}
	}
	if err := o.reg.SetOrganization(org); err != nil {
		return "", err
	}
	return string(org.ID), nil
}

func (o *Orchestrator) createPerson(candidate match.CandidateRecord) (string, error) {
	now := o.now()
	p := &registry.Person{
		ID:          registry.NewPersonID(),
		GivenName:   candidate.GivenName,
		MiddleName:  candidate.MiddleName,
		FamilyName:  candidate.FamilyName,
		Suffix:      candidate.Suffix,
		BirthDate:   candidate.BirthDate,
		DeathDate:   candidate.DeathDate,
		ExternalIDs: cloneIDs(candidate.ExternalIDs),
		Properties:  candidate.Properties.Clone(),
		DataQuality: InitialDataQuality,
		Provenance: registry.Provenance{
			Source:         candidate.Source,
			SourceRecordID: candidate.SourceRecordID,
			LastSynced:     now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.GivenName == "" && p.FamilyName == "" {
		p.FamilyName = candidate.Name
	}
	if err := o.reg.SetPerson(p); err != nil {
		return "", err
	}
	return string(p.ID), nil
}

// applyOrganization re-reads the canonical record under the lock and
// applies the field policy, so a concurrent earlier write is never
// lost.
func (o *Orchestrator) applyOrganization(id registry.OrgID, candidate match.CandidateRecord) error {
	cur, ok := o.reg.Organization(id)
	if !ok {
		return &errors.NotFoundError{Resource: "organization", ID: string(id)}
	}

	// Work on a copy so a rejected write leaves the stored record as-is.
	clone := *cur
	clone.Aliases = slices.Clone(cur.Aliases)
	clone.JurisdictionAreas = slices.Clone(cur.JurisdictionAreas)
	org := &clone

	if class, _ := classOf(OrgFieldPolicy, FieldMissionStatement); class == Curated {
		if org.MissionStatement == "" {
			org.MissionStatement = candidate.MissionStatement
		}
	}
	if class, _ := classOf(OrgFieldPolicy, FieldJurisdictionAreas); class == Curated {
		if len(org.JurisdictionAreas) == 0 {
			org.JurisdictionAreas = candidate.JurisdictionAreas
		}
	}
	if class, _ := classOf(OrgFieldPolicy, FieldParent); class == Curated {
		if org.ParentID == "" && candidate.ParentName != "" {
			if parent, ok := findOrgByName(o.reg, candidate.ParentName); ok && parent.ID != org.ID {
				org.ParentID = parent.ID
			}
		}
	}
	if class, _ := classOf(OrgFieldPolicy, FieldEstablished); class == Curated {
		if org.Established.IsZero() {
			org.Established = candidate.EffectiveDate
		}
	}
	if class, _ := classOf(OrgFieldPolicy, FieldDissolved); class == Curated {
		if org.Dissolved.IsZero() {
			org.Dissolved = candidate.Dissolved
		}
	}
	if class, _ := classOf(OrgFieldPolicy, FieldAcronym); class == Curated {
		if candidate.Acronym != "" && !hasAcronym(org) {
			org.Aliases = append(org.Aliases, registry.Alias{
				Name:    match.NormalizeAcronym(candidate.Acronym),
				Acronym: true,
			})
		}
	}

	if class, _ := classOf(OrgFieldPolicy, FieldDescription); class == SourceOwned {
		if candidate.Description != "" {
			org.Description = candidate.Description
		}
	}
	if class, _ := classOf(OrgFieldPolicy, FieldWebsiteURL); class == SourceOwned {
		if candidate.WebsiteURL != "" {
			org.WebsiteURL = candidate.WebsiteURL
		}
	}

	org.Properties = org.Properties.Merge(candidate.Properties)
	o.corroborate(&org.Provenance, &org.DataQuality, candidate.Source)
	org.UpdatedAt = o.now()

	return o.reg.SetOrganization(org)
}

func (o *Orchestrator) applyPerson(id registry.PersonID, candidate match.CandidateRecord) error {
	cur, ok := o.reg.Person(id)
	if !ok {
		return &errors.NotFoundError{Resource: "person", ID: string(id)}
	}

	clone := *cur
	clone.ExternalIDs = cloneIDs(cur.ExternalIDs)
	p := &clone

	if class, _ := classOf(PersonFieldPolicy, FieldMiddleName); class == Curated {
		if p.MiddleName == "" {
			p.MiddleName = candidate.MiddleName
		}
	}
	if class, _ := classOf(PersonFieldPolicy, FieldSuffix); class == Curated {
		if p.Suffix == "" {
			p.Suffix = candidate.Suffix
		}
	}
	if class, _ := classOf(PersonFieldPolicy, FieldBirthDate); class == Curated {
		if p.BirthDate.IsZero() {
			p.BirthDate = candidate.BirthDate
		}
	}
	if class, _ := classOf(PersonFieldPolicy, FieldDeathDate); class == Curated {
		if p.DeathDate.IsZero() {
			p.DeathDate = candidate.DeathDate
		}
	}

	// External identifiers accumulate; a source never removes another
	// source's identifier.
	for source, extID := range candidate.ExternalIDs {
		if extID == "" {
			continue
		}
		if _, exists := p.ExternalIDs[source]; !exists {
			if p.ExternalIDs == nil {
				p.ExternalIDs = make(map[string]string)
			}
			p.ExternalIDs[source] = extID
		}
	}

	p.Properties = p.Properties.Merge(candidate.Properties)
	o.corroborate(&p.Provenance, &p.DataQuality, candidate.Source)
	p.UpdatedAt = o.now()

	return o.reg.SetPerson(p)
}

// flag builds the review outcome for a fuzzy-band match. Never
// auto-merges; the matched record leads the suggestion list for triage.
func (o *Orchestrator) flag(res match.MatchResult) Outcome {
	suggestions := append([]match.Suggestion{{
		ID:    res.MatchedID,
		Name:  canonicalName(o.reg, res),
		Score: res.Confidence,
	}}, res.Suggestions...)
	return Outcome{
		Status:      StatusFlaggedForReview,
		Reason:      "fuzzy match below auto-merge confidence",
		Suggestions: suggestions,
	}
}

func (o *Orchestrator) corroborate(prov *registry.Provenance, quality *float64, source string) {
	if prov.Corroborate(source) {
		*quality += corroborationBoost
		if *quality > maxDataQuality {
			*quality = maxDataQuality
		}
	}
	prov.Touch(o.now())
}

// lock serializes writes keyed on a canonical id (updates) or a
// normalized name (creates). Distinct keys never share a mutex, so the
// create path can take the update lock for the record it rematched
// without deadlocking.
func (o *Orchestrator) lock(key string) func() {
	v, _ := o.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func rejected(id string, err error, log zerolog.Logger) Outcome {
	log.Warn().Err(err).Msg("canonical write rejected")
	return Outcome{Status: StatusRejected, CanonicalID: id, Reason: err.Error()}
}

func canonicalName(reg *registry.Registry, res match.MatchResult) string {
	if res.Kind == registry.EntityPerson {
		if p, ok := reg.Person(registry.PersonID(res.MatchedID)); ok {
			return p.FullName()
		}
		return ""
	}
	if org, ok := reg.Organization(registry.OrgID(res.MatchedID)); ok {
		return org.OfficialName
	}
	return ""
}

func findOrgByName(reg *registry.Registry, name string) (*registry.Organization, bool) {
	norm := match.Normalize(name)
	for _, org := range reg.ListOrganizations() {
		if match.Normalize(org.OfficialName) == norm {
			return org, true
		}
	}
	return nil, false
}

func hasAcronym(org *registry.Organization) bool {
	for _, a := range org.Aliases {
		if a.Acronym {
			return true
		}
	}
	return false
}

func cloneIDs(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
