package sources

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// SourceReport counts what one adapter's run did to the registry.
type SourceReport struct {
	Source  ID `json:"source" yaml:"source"`
	Fetched int `json:"fetched" yaml:"fetched"`

	Added    int `json:"added" yaml:"added"`
	Updated  int `json:"updated" yaml:"updated"`
	Flagged  int `json:"flagged" yaml:"flagged"`
	Rejected int `json:"rejected" yaml:"rejected"`

	HoldingsRecorded int `json:"holdings_recorded" yaml:"holdings_recorded"`
	Conflicts        int `json:"conflicts" yaml:"conflicts"`

	Errors   []string      `json:"errors,omitempty" yaml:"errors,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	// SyncedAt is set only when the run committed successfully.
	SyncedAt time.Time `json:"synced_at,omitempty" yaml:"synced_at,omitempty"`
}

// Failed reports whether the adapter's run produced no commit at all.
func (r *SourceReport) Failed() bool {
	return r.SyncedAt.IsZero()
}

// Summary renders a one-line human-readable account of the run.
func (r *SourceReport) Summary() string {
	if r.Failed() {
		return fmt.Sprintf("%s: failed (%s)", r.Source, strings.Join(r.Errors, "; "))
	}
	return fmt.Sprintf("%s: %d fetched, %d added, %d updated, %d flagged, %d rejected, %d holdings, %d conflicts",
		r.Source, r.Fetched, r.Added, r.Updated, r.Flagged, r.Rejected, r.HoldingsRecorded, r.Conflicts)
}

// SyncReport aggregates every adapter's report for one orchestrator
// run. Reports arrive from concurrent workers; methods are safe for
// concurrent use.
type SyncReport struct {
	mu       sync.Mutex
	reports  map[ID]*SourceReport
	Started  time.Time
	Finished time.Time
}

// NewSyncReport creates an empty report for a run starting now.
func NewSyncReport(started time.Time) *SyncReport {
	return &SyncReport{
		reports: make(map[ID]*SourceReport),
		Started: started,
	}
}

// Add records one adapter's report.
func (s *SyncReport) Add(r *SourceReport) {
	s.mu.Lock()
	s.reports[r.Source] = r
	s.mu.Unlock()
}

// Source returns the report for one adapter, if it ran.
func (s *SyncReport) Source(id ID) (*SourceReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	return r, ok
}

// Sources returns all per-source reports ordered by source id.
func (s *SyncReport) Sources() []*SourceReport {
	s.mu.Lock()
	out := make([]*SourceReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// Totals sums the per-source counters.
func (s *SyncReport) Totals() SourceReport {
	var total SourceReport
	for _, r := range s.Sources() {
		total.Fetched += r.Fetched
		total.Added += r.Added
		total.Updated += r.Updated
		total.Flagged += r.Flagged
		total.Rejected += r.Rejected
		total.HoldingsRecorded += r.HoldingsRecorded
		total.Conflicts += r.Conflicts
		total.Errors = append(total.Errors, r.Errors...)
	}
	return total
}

// Freshness tracks the last successful sync per source, independent of
// other sources' status.
type Freshness struct {
	mu   sync.RWMutex
	last map[ID]time.Time
}

// NewFreshness creates an empty freshness tracker.
func NewFreshness() *Freshness {
	return &Freshness{last: make(map[ID]time.Time)}
}

// Record notes a successful sync for the source.
func (f *Freshness) Record(id ID, at time.Time) {
	f.mu.Lock()
	f.last[id] = at
	f.mu.Unlock()
}

// LastSynced returns when the source last synced successfully.
func (f *Freshness) LastSynced(id ID) (time.Time, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	at, ok := f.last[id]
	return at, ok
}

// Snapshot returns a copy of all freshness timestamps.
func (f *Freshness) Snapshot() map[ID]time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[ID]time.Time, len(f.last))
	for id, at := range f.last {
		out[id] = at
	}
	return out
}
