// Package fedreg adapts a regulatory agency list served as a paginated
// JSON API. Agencies reference their parent by numeric id, so the
// adapter collects every page before resolving parent names.
package fedreg

import (
	"context"
	"fmt"

	"github.com/factline/registry/internal/transport"
	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/match"
	"github.com/factline/registry/pkg/registry"
	"github.com/factline/registry/pkg/sources"
)

// DefaultBaseURL is the public agencies endpoint.
const DefaultBaseURL = "https://www.federalregister.gov/api/v1/agencies"

// maxPages bounds pagination so a misbehaving upstream cannot hold the
// sync open forever.
const maxPages = 100

// Adapter fetches the agency list.
type Adapter struct {
	baseURL string
	client  *transport.Client
}

// Option configures the adapter.
type Option func(*Adapter)

// WithBaseURL points the adapter at a different endpoint.
func WithBaseURL(url string) Option {
	return func(a *Adapter) { a.baseURL = url }
}

// WithClient swaps the transport client.
func WithClient(c *transport.Client) Option {
	return func(a *Adapter) { a.client = c }
}

// New builds the agency list adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		baseURL: DefaultBaseURL,
		client:  transport.New(string(sources.FedRegID)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ID implements sources.Adapter.
func (a *Adapter) ID() sources.ID { return sources.FedRegID }

type page struct {
	TotalPages int      `json:"total_pages"`
	Results    []agency `json:"results"`
}

type agency struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ParentID    *int   `json:"parent_id"`
}

// Fetch implements sources.Adapter.
func (a *Adapter) Fetch(ctx context.Context) (*sources.Batch, error) {
	var agencies []agency
	for n := 1; n <= maxPages; n++ {
		var p page
		url := fmt.Sprintf("%s?page=%d", a.baseURL, n)
		if err := a.client.GetJSON(ctx, url, &p); err != nil {
			return nil, err
		}
		agencies = append(agencies, p.Results...)
		if n >= p.TotalPages {
			break
		}
	}

	names := make(map[int]string, len(agencies))
	for _, ag := range agencies {
		names[ag.ID] = ag.Name
	}

	batch := &sources.Batch{}
	for _, ag := range agencies {
		if ag.Name == "" {
			return nil, errors.NewValidationError("name", fmt.Sprintf("agency %d", ag.ID), "agency has no name")
		}
		record := match.CandidateRecord{
			Kind:           registry.EntityOrganization,
			Name:           ag.Name,
			Source:         string(sources.FedRegID),
			SourceRecordID: fmt.Sprintf("%d", ag.ID),
			Acronym:        ag.ShortName,
			OrgKind:        registry.OrgKindAgency,
			Branch:         registry.BranchExecutive,
			Description:    ag.Description,
			WebsiteURL:     ag.URL,
		}
		if ag.ParentID != nil {
			record.ParentName = names[*ag.ParentID]
		}
		batch.Records = append(batch.Records, record)
	}
	return batch, nil
}
