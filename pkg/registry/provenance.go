package registry

import "time"

// Provenance records where a canonical record came from and when it was
// last confirmed by a sync. Freshness reporting reads LastSynced.
type Provenance struct {
	// Source is the adapter name that created or last updated the record.
	Source string `json:"source" yaml:"source"`
	// SourceRecordID is the upstream identifier, when the source has one.
	SourceRecordID string `json:"source_record_id,omitempty" yaml:"source_record_id,omitempty"`
	// LastSynced is when the record was last written by a sync run.
	LastSynced time.Time `json:"last_synced,omitempty" yaml:"last_synced,omitempty"`
	// CorroboratedBy lists other sources that independently produced
	// a matching record. A second independent source raises data quality.
	CorroboratedBy []string `json:"corroborated_by,omitempty" yaml:"corroborated_by,omitempty"`
}

// Corroborate records that another source confirmed the record,
// ignoring repeats and the originating source itself.
func (p *Provenance) Corroborate(source string) bool {
	if source == "" || source == p.Source {
		return false
	}
	for _, s := range p.CorroboratedBy {
		if s == source {
			return false
		}
	}
	p.CorroboratedBy = append(p.CorroboratedBy, source)
	return true
}

// Touch updates the sync timestamp.
func (p *Provenance) Touch(now time.Time) {
	p.LastSynced = now
}
