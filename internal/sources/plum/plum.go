// Package plum adapts a CSV roll of executive-branch appointees. Each
// row names an agency, a position title, the incumbent and the dates
// of their appointment. Rows become person candidates plus holding
// candidates carrying enough position detail for the orchestrator to
// create appointed positions on first sight.
package plum

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/factline/registry/internal/transport"
	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/match"
	"github.com/factline/registry/pkg/registry"
	"github.com/factline/registry/pkg/sources"
)

// Expected header columns, in order.
var header = []string{
	"agency_name",
	"position_title",
	"appointment_type",
	"incumbent_first",
	"incumbent_last",
	"start_date",
	"end_date",
}

// Adapter reads the appointee roll.
type Adapter struct {
	url    string
	path   string
	client *transport.Client
}

// Option configures the adapter.
type Option func(*Adapter)

// WithURL fetches the roll over HTTP.
func WithURL(url string) Option {
	return func(a *Adapter) { a.url = url }
}

// WithPath reads the roll from a local file.
func WithPath(path string) Option {
	return func(a *Adapter) { a.path = path }
}

// WithClient swaps the transport client.
func WithClient(c *transport.Client) Option {
	return func(a *Adapter) { a.client = c }
}

// New builds the appointee roll adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{client: transport.New(string(sources.PlumID))}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ID implements sources.Adapter.
func (a *Adapter) ID() sources.ID { return sources.PlumID }

// Fetch implements sources.Adapter.
func (a *Adapter) Fetch(ctx context.Context) (*sources.Batch, error) {
	raw, err := a.read(ctx)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.TrimLeadingSpace = true

	head, err := r.Read()
	if err != nil {
		return nil, errors.WrapParse("csv", a.location(), err)
	}
	cols, err := mapHeader(head)
	if err != nil {
		return nil, err
	}

	batch := &sources.Batch{}
	seen := map[string]bool{}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapParse("csv", a.location(), err)
		}
		record, holding, err := a.normalize(cols, row)
		if err != nil {
			return nil, err
		}
		// An incumbent holding several positions repeats across rows;
		// the person candidate is emitted once.
		if !seen[record.SourceRecordID] {
			seen[record.SourceRecordID] = true
			batch.Records = append(batch.Records, record)
		}
		batch.Holdings = append(batch.Holdings, holding)
	}
	return batch, nil
}

func mapHeader(row []string) (map[string]int, error) {
	cols := make(map[string]int, len(row))
	for i, name := range row {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, want := range header {
		if _, ok := cols[want]; !ok {
			return nil, errors.NewValidationError("header", strings.Join(row, ","), "missing column "+want)
		}
	}
	return cols, nil
}

func (a *Adapter) normalize(cols map[string]int, row []string) (match.CandidateRecord, sources.HoldingCandidate, error) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	first := field("incumbent_first")
	last := field("incumbent_last")
	name := strings.TrimSpace(first + " " + last)

	record := match.CandidateRecord{
		Kind:           registry.EntityPerson,
		Name:           name,
		Source:         string(sources.PlumID),
		SourceRecordID: name,
		GivenName:      first,
		FamilyName:     last,
	}

	holding := sources.HoldingCandidate{
		PersonName:       name,
		PositionTitle:    field("position_title"),
		PositionKind:     registry.ParsePositionKind(field("appointment_type")),
		OrganizationName: field("agency_name"),
	}
	if name == "" {
		return record, holding, errors.NewValidationError("incumbent", "", "row has no incumbent name")
	}
	if holding.PositionTitle == "" {
		return record, holding, errors.NewValidationError("position_title", "", "row has no position title")
	}

	start := field("start_date")
	if start != "" {
		d, err := registry.ParseDate(start)
		if err != nil {
			return record, holding, errors.WrapParse("date", start, err)
		}
		holding.Start = d
	}
	if end := field("end_date"); end != "" {
		d, err := registry.ParseDate(end)
		if err != nil {
			return record, holding, errors.WrapParse("date", end, err)
		}
		holding.End = d
	}
	return record, holding, nil
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
		return nil, errors.NewValidationError("source", string(sources.PlumID), "no url or path configured")
	}
	return a.client.Get(ctx, a.url)
}

func (a *Adapter) location() string {
	if a.path != "" {
		return a.path
	}
	return a.url
}
