// Package syncer orchestrates sync runs: it fans adapters out to a
// bounded worker pool, pushes each batch through the match and merge
// pipeline, then applies holding candidates once the people they
// reference have canonical records. One source failing never aborts
// the others.
package syncer

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/logging"
	"github.com/factline/registry/pkg/match"
	"github.com/factline/registry/pkg/merge"
	"github.com/factline/registry/pkg/registry"
	"github.com/factline/registry/pkg/sources"
	"github.com/factline/registry/pkg/temporal"
)

// Defaults.
const (
	DefaultWorkers       = 4
	DefaultFetchAttempts = 3
	DefaultSourceTimeout = 5 * time.Minute

	fetchBackoffBase = 500 * time.Millisecond
)

// Syncer runs sync cycles against one registry.
type Syncer struct {
	reg       *registry.Registry
	merger    *merge.Orchestrator
	holdings  *temporal.Service
	freshness *sources.Freshness

	workers       int
	fetchAttempts int
	sourceTimeout time.Duration
	now           func() time.Time
}

// Option configures the syncer.
type Option func(*Syncer)

// WithWorkers caps how many adapters fetch concurrently.
func WithWorkers(n int) Option {
	return func(s *Syncer) { s.workers = n }
}

// WithFetchAttempts bounds per-adapter fetch retries.
func WithFetchAttempts(n int) Option {
	return func(s *Syncer) { s.fetchAttempts = n }
}

// WithSourceTimeout bounds how long one adapter's run may take.
func WithSourceTimeout(d time.Duration) Option {
	return func(s *Syncer) { s.sourceTimeout = d }
}

// WithFreshness attaches a shared freshness tracker.
func WithFreshness(f *sources.Freshness) Option {
	return func(s *Syncer) { s.freshness = f }
}

// WithOrchestrator swaps the merge orchestrator.
func WithOrchestrator(m *merge.Orchestrator) Option {
	return func(s *Syncer) { s.merger = m }
}

// WithClock overrides time for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

// New builds a syncer over the registry.
func New(reg *registry.Registry, opts ...Option) *Syncer {
	s := &Syncer{
		reg:           reg,
		freshness:     sources.NewFreshness(),
		workers:       DefaultWorkers,
		fetchAttempts: DefaultFetchAttempts,
		sourceTimeout: DefaultSourceTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.merger == nil {
		s.merger = merge.New(reg, merge.WithClock(s.now))
	}
	s.holdings = temporal.New(reg)
	if s.workers < 1 {
		s.workers = 1
	}
	if s.fetchAttempts < 1 {
		s.fetchAttempts = 1
	}
	return s
}

// Freshness returns the per-source freshness tracker.
func (s *Syncer) Freshness() *sources.Freshness { return s.freshness }

// Run syncs every adapter and returns the aggregated report. Adapters
// run on a bounded worker pool; a failed source is reported and the
// rest continue. Cancellation stops dispatch and in-flight processing
// at the next candidate boundary.
func (s *Syncer) Run(ctx context.Context, adapters []sources.Adapter) *sources.SyncReport {
	report := sources.NewSyncReport(s.now())
	log := logging.Ctx(ctx)

	jobs := make(chan sources.Adapter)
	done := make(chan struct{})
	for i := 0; i < s.workers; i++ {
		go func() {
			for a := range jobs {
				report.Add(s.syncSource(ctx, a, log))
			}
			done <- struct{}{}
		}()
	}

dispatch:
	for _, a := range adapters {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- a:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	for i := 0; i < s.workers; i++ {
		<-done
	}

	report.Finished = s.now()
	total := report.Totals()
	log.Info().
		Int("added", total.Added).
		Int("updated", total.Updated).
		Int("flagged", total.Flagged).
		Int("rejected", total.Rejected).
		Int("holdings", total.HoldingsRecorded).
		Int("conflicts", total.Conflicts).
		Msg("sync run finished")
	return report
}

// syncSource runs one adapter end to end: fetch with retry, reconcile
// records in source order, then apply holdings.
func (s *Syncer) syncSource(ctx context.Context, a sources.Adapter, log *zerolog.Logger) *sources.SourceReport {
	start := s.now()
	rep := &sources.SourceReport{Source: a.ID()}
	defer func() { rep.Duration = s.now().Sub(start) }()

	ctx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
	defer cancel()

	batch, err := s.fetch(ctx, a)
	if err != nil {
		log.Error().Err(err).Str("source", a.ID().String()).Msg("fetch failed")
		rep.Errors = append(rep.Errors, err.Error())
		return rep
	}
	rep.Fetched = len(batch.Records)

	for _, candidate := range batch.Records {
		if ctx.Err() != nil {
			rep.Errors = append(rep.Errors, "run canceled")
			return rep
		}
		s.reconcile(ctx, candidate, rep, log)
	}

	for _, h := range batch.Holdings {
		if ctx.Err() != nil {
			rep.Errors = append(rep.Errors, "run canceled")
			return rep
		}
		s.applyHolding(ctx, a.ID(), h, rep, log)
	}

	rep.SyncedAt = s.now()
	if s.freshness != nil {
		s.freshness.Record(a.ID(), rep.SyncedAt)
	}
	log.Info().Str("source", a.ID().String()).Msg(rep.Summary())
	return rep
}

// fetch retries transient adapter failures with exponential backoff.
// Validation and parse failures are final on the first attempt.
func (s *Syncer) fetch(ctx context.Context, a sources.Adapter) (*sources.Batch, error) {
	var lastErr error
	for attempt := 1; attempt <= s.fetchAttempts; attempt++ {
		if attempt > 1 {
			backoff := fetchBackoffBase << (attempt - 2)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, lastErr
			}
		}
		batch, err := a.Fetch(ctx)
		if err == nil {
			return batch, nil
		}
		lastErr = err
		if !errors.IsTransient(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (s *Syncer) reconcile(ctx context.Context, candidate match.CandidateRecord, rep *sources.SourceReport, log *zerolog.Logger) {
	res, err := match.Match(candidate, s.reg)
	if err != nil {
		rep.Errors = append(rep.Errors, err.Error())
		return
	}
	out, err := s.merger.Reconcile(ctx, candidate, res)
	if err != nil {
		rep.Errors = append(rep.Errors, err.Error())
		return
	}
	switch out.Status {
	case merge.StatusCreated:
		rep.Added++
	case merge.StatusUpdated:
		rep.Updated++
	case merge.StatusFlaggedForReview:
		rep.Flagged++
		log.Info().
			Str("source", candidate.Source).
			Str("name", candidate.Name).
			Msg("candidate flagged for review")
	case merge.StatusRejected:
		rep.Rejected++
	}
}

// applyHolding resolves a holding candidate's person and position and
// records the holding. Conflicts are counted, never fatal: the sync
// does not decide which of two overlapping claims is right.
func (s *Syncer) applyHolding(ctx context.Context, source sources.ID, h sources.HoldingCandidate, rep *sources.SourceReport, log *zerolog.Logger) {
	person, ok := s.resolvePerson(h)
	if !ok {
		rep.Errors = append(rep.Errors, "holding: unknown person "+h.PersonName)
		return
	}
	pos, err := s.resolvePosition(source, h)
	if err != nil {
		rep.Errors = append(rep.Errors, err.Error())
		return
	}

	// Replayed batches repeat holdings; same person, position and
	// start is the same assertion.
	for _, existing := range s.reg.Holdings().ForPosition(pos.ID) {
		if existing.PersonID == person.ID && existing.Start.Equal(h.Start) {
			return
		}
	}

	_, err = s.holdings.RecordHolding(ctx, temporal.HoldingSpec{
		PersonID:   person.ID,
		PositionID: pos.ID,
		Start:      h.Start,
		End:        h.End,
		Term:       h.Term,
		Properties: h.Properties,
		Provenance: registry.Provenance{Source: source.String(), LastSynced: s.now()},
	})
	switch {
	case err == nil:
		rep.HoldingsRecorded++
	case errors.IsIntervalConflict(err):
		rep.Conflicts++
		log.Warn().
			Str("source", source.String()).
			Str("position", string(pos.ID)).
			Str("person", string(person.ID)).
			Err(err).
			Msg("holding conflicts with existing interval")
	default:
		rep.Errors = append(rep.Errors, err.Error())
	}
}

// resolvePerson finds the canonical person a holding refers to, by
// external id first, then by normalized full name.
func (s *Syncer) resolvePerson(h sources.HoldingCandidate) (*registry.Person, bool) {
	for scheme, id := range h.PersonExternalIDs {
		if p, ok := s.reg.People().FindByExternalID(scheme, id); ok {
			return p, true
		}
	}
	want := match.Normalize(h.PersonName)
	if want == "" {
		return nil, false
	}
	for _, p := range s.reg.ListPeople() {
		if match.Normalize(p.FullName()) == want {
			return p, true
		}
	}
	return nil, false
}

// resolvePosition finds the position a candidate names: directly by id,
// by seat coordinates for legislative seats, or by slug for appointed
// offices, creating the appointed position on first sight.
func (s *Syncer) resolvePosition(source sources.ID, h sources.HoldingCandidate) (*registry.Position, error) {
	if h.PositionID != "" {
		if pos, ok := s.reg.Position(h.PositionID); ok {
			return pos, nil
		}
		return nil, errors.NewNotFoundError("position", string(h.PositionID))
	}

	switch h.Chamber {
	case registry.ChamberSenate:
		if pos, ok := s.reg.Positions().FindBySeat(registry.ChamberSenate, h.State, h.SeatClass); ok {
			return pos, nil
		}
		return nil, errors.NewNotFoundError("position", h.State+" senate class "+strconv.Itoa(h.SeatClass))
	case registry.ChamberHouse:
		if pos, ok := s.reg.Positions().FindBySeat(registry.ChamberHouse, h.State, h.District); ok {
			return pos, nil
		}
		return nil, errors.NewNotFoundError("position", h.State+" district "+strconv.Itoa(h.District))
	}

	if h.PositionTitle == "" {
		return nil, errors.NewValidationError("holding", h.PersonName, "no position reference")
	}
	id := registry.PositionID(slug(h.OrganizationName + " " + h.PositionTitle))
	if pos, ok := s.reg.Position(id); ok {
		return pos, nil
	}

	pos := &registry.Position{
		ID:         id,
		Title:      h.PositionTitle,
		Kind:       h.PositionKind,
		Branch:     registry.BranchExecutive,
		Provenance: registry.Provenance{Source: source.String(), LastSynced: s.now()},
		CreatedAt:  s.now(),
	}
	if org, ok := s.findOrgByName(h.OrganizationName); ok {
		pos.OrganizationID = org.ID
	}
	if err := s.reg.AddPosition(pos); err != nil {
		// A concurrent worker can win the insert; re-read.
		if errors.IsAlreadyExists(err) {
			if existing, ok := s.reg.Position(id); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return pos, nil
}

func (s *Syncer) findOrgByName(name string) (*registry.Organization, bool) {
	want := match.Normalize(name)
	if want == "" {
		return nil, false
	}
	for _, org := range s.reg.ListOrganizations() {
		if match.Normalize(org.OfficialName) == want {
			return org, true
		}
	}
	return nil, false
}

// slug derives a stable position id from an organization and title so
// replayed syncs resolve the same appointed office.
func slug(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
