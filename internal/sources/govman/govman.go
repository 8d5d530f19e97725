// Package govman adapts an organizational manual: a curated YAML org
// chart listing government organizations with parent references,
// mission text and lifecycle dates.
package govman

import (
	"context"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/factline/registry/internal/transport"
	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/match"
	"github.com/factline/registry/pkg/registry"
	"github.com/factline/registry/pkg/sources"
)

// Adapter reads the manual.
type Adapter struct {
	url    string
	path   string
	client *transport.Client
}

// Option configures the adapter.
type Option func(*Adapter)

// WithURL fetches the manual over HTTP.
func WithURL(url string) Option {
	return func(a *Adapter) { a.url = url }
}

// WithPath reads the manual from a local file.
func WithPath(path string) Option {
	return func(a *Adapter) { a.path = path }
}

// WithClient swaps the transport client.
func WithClient(c *transport.Client) Option {
	return func(a *Adapter) { a.client = c }
}

// New builds the manual adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{client: transport.New(string(sources.GovManID))}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ID implements sources.Adapter.
func (a *Adapter) ID() sources.ID { return sources.GovManID }

type manual struct {
	Organizations []entry `yaml:"organizations"`
}

type entry struct {
	Name         string   `yaml:"name"`
	Acronym      string   `yaml:"acronym"`
	Kind         string   `yaml:"kind"`
	Branch       string   `yaml:"branch"`
	Parent       string   `yaml:"parent"`
	Mission      string   `yaml:"mission"`
	Jurisdiction []string `yaml:"jurisdiction"`
	Website      string   `yaml:"website"`
	Established  string   `yaml:"established"`
	Dissolved    string   `yaml:"dissolved"`
}

// Fetch implements sources.Adapter.
func (a *Adapter) Fetch(ctx context.Context) (*sources.Batch, error) {
	raw, err := a.read(ctx)
	if err != nil {
		return nil, err
	}

	var m manual
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, errors.WrapParse("yaml", a.location(), err)
	}

	batch := &sources.Batch{}
	for _, e := range m.Organizations {
		record, err := normalize(e)
		if err != nil {
			return nil, err
		}
		batch.Records = append(batch.Records, record)
	}
	return batch, nil
}

func normalize(e entry) (match.CandidateRecord, error) {
	record := match.CandidateRecord{
		Kind:              registry.EntityOrganization,
		Name:              e.Name,
		Source:            string(sources.GovManID),
		SourceRecordID:    e.Name,
		Acronym:           e.Acronym,
		OrgKind:           registry.ParseOrgKind(e.Kind),
		Branch:            registry.ParseBranch(e.Branch),
		ParentName:        e.Parent,
		MissionStatement:  e.Mission,
		JurisdictionAreas: e.Jurisdiction,
		WebsiteURL:        e.Website,
	}
	if e.Name == "" {
		return record, errors.NewValidationError("name", "", "organization has no name")
	}
	if e.Established != "" {
		d, err := registry.ParseDate(e.Established)
		if err != nil {
			return record, errors.WrapParse("date", e.Established, err)
		}
		record.EffectiveDate = d
	}
	if e.Dissolved != "" {
		d, err := registry.ParseDate(e.Dissolved)
		if err != nil {
			return record, errors.WrapParse("date", e.Dissolved, err)
		}
		record.Dissolved = d
	}
	return record, nil
}

func (a *Adapter) read(ctx context.Context) ([]byte, error) {
	if a.path != "" {
		raw, err := os.ReadFile(a.path)
		if err != nil {
			return nil, errors.WrapIO("read", a.path, err)
		}
		return raw, nil
	}
	if a.url == "" {
		return nil, errors.NewValidationError("source", string(sources.GovManID), "no url or path configured")
	}
	return a.client.Get(ctx, a.url)
}

func (a *Adapter) location() string {
	if a.path != "" {
		return a.path
	}
	return a.url
}
