// Package legislators adapts a congressional roster feed in the
// unitedstates/congress-legislators YAML shape: one document per
// member, with identifiers, a bio block and a list of terms. Terms
// become position holdings against the seeded seat positions.
package legislators

import (
	"context"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/factline/registry/internal/transport"
	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/match"
	"github.com/factline/registry/pkg/registry"
	"github.com/factline/registry/pkg/sources"
)

// DefaultURL is the published current-legislators roster.
const DefaultURL = "https://unitedstates.github.io/congress-legislators/legislators-current.yaml"

// Adapter fetches and normalizes the roster.
type Adapter struct {
	url    string
	path   string
	client *transport.Client
}

// Option configures the adapter.
type Option func(*Adapter)

// WithURL points the adapter at a different roster URL.
func WithURL(url string) Option {
	return func(a *Adapter) { a.url = url }
}

// WithPath reads the roster from a local file instead of fetching.
func WithPath(path string) Option {
	return func(a *Adapter) { a.path = path }
}

// WithClient swaps the transport client.
func WithClient(c *transport.Client) Option {
	return func(a *Adapter) { a.client = c }
}

// New builds the roster adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		url:    DefaultURL,
		client: transport.New(string(sources.LegislatorsID)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ID implements sources.Adapter.
func (a *Adapter) ID() sources.ID { return sources.LegislatorsID }

// member mirrors one roster document.
type member struct {
	ID map[string]any `yaml:"id"`
	Name struct {
		First        string `yaml:"first"`
		Middle       string `yaml:"middle"`
		Last         string `yaml:"last"`
		Suffix       string `yaml:"suffix"`
		OfficialFull string `yaml:"official_full"`
	} `yaml:"name"`
	Bio struct {
		Birthday string `yaml:"birthday"`
	} `yaml:"bio"`
	Terms []term `yaml:"terms"`
}

type term struct {
	Type     string `yaml:"type"` // "sen" or "rep"
	Start    string `yaml:"start"`
	End      string `yaml:"end"`
	State    string `yaml:"state"`
	Class    int    `yaml:"class"`
	District int    `yaml:"district"`
	Party    string `yaml:"party"`
}

// Fetch implements sources.Adapter.
func (a *Adapter) Fetch(ctx context.Context) (*sources.Batch, error) {
	raw, err := a.read(ctx)
	if err != nil {
		return nil, err
	}

	var members []member
	if err := yaml.Unmarshal(raw, &members); err != nil {
		return nil, errors.WrapParse("yaml", a.location(), err)
	}

	batch := &sources.Batch{}
	for _, m := range members {
		record, holdings, err := a.normalize(m)
		if err != nil {
			return nil, err
		}
		batch.Records = append(batch.Records, record)
		batch.Holdings = append(batch.Holdings, holdings...)
	}
	return batch, nil
}

func (a *Adapter) normalize(m member) (match.CandidateRecord, []sources.HoldingCandidate, error) {
	ids := externalIDs(m.ID)

	name := m.Name.OfficialFull
	if name == "" {
		name = m.Name.First + " " + m.Name.Last
	}

	record := match.CandidateRecord{
		Kind:        registry.EntityPerson,
		Name:        name,
		Source:      string(sources.LegislatorsID),
		GivenName:   m.Name.First,
		MiddleName:  m.Name.Middle,
		FamilyName:  m.Name.Last,
		Suffix:      m.Name.Suffix,
		ExternalIDs: ids,
	}
	if bioguide, ok := ids["bioguide"]; ok {
		record.SourceRecordID = bioguide
	}
	if m.Bio.Birthday != "" {
		birth, err := registry.ParseDate(m.Bio.Birthday)
		if err != nil {
			return record, nil, errors.WrapParse("date", m.Bio.Birthday, err)
		}
		record.BirthDate = birth
	}

	var holdings []sources.HoldingCandidate
	for _, t := range m.Terms {
		h, err := normalizeTerm(name, ids, t)
		if err != nil {
			return record, nil, err
		}
		holdings = append(holdings, h)
	}
	if len(m.Terms) > 0 {
		record.Properties = registry.Properties{
			registry.PropParty: m.Terms[len(m.Terms)-1].Party,
		}
	}
	return record, holdings, nil
}

func normalizeTerm(name string, ids map[string]string, t term) (sources.HoldingCandidate, error) {
	h := sources.HoldingCandidate{
		PersonName:        name,
		PersonExternalIDs: ids,
		State:             t.State,
	}
	switch t.Type {
	case "sen":
		h.Chamber = registry.ChamberSenate
		h.SeatClass = t.Class
	case "rep":
		h.Chamber = registry.ChamberHouse
		h.District = t.District
	default:
		return h, errors.NewValidationError("term.type", t.Type, "must be sen or rep")
	}

	start, err := registry.ParseDate(t.Start)
	if err != nil {
		return h, errors.WrapParse("date", t.Start, err)
	}
	h.Start = start
	h.Term = congressNumber(start)

	if t.End != "" {
		end, err := registry.ParseDate(t.End)
		if err != nil {
			return h, errors.WrapParse("date", t.End, err)
		}
		h.End = end
	}
	if t.Party != "" {
		h.Properties = registry.Properties{registry.PropParty: t.Party}
	}
	return h, nil
}

// congressNumber derives the Congress a term belongs to from its start
// date. The 1st Congress convened in 1789; a new one starts in early
// January of each odd year.
func congressNumber(start registry.Date) int {
	year := start.Year()
	if year < 1789 {
		return 0
	}
	return (year-1789)/2 + 1
}

func externalIDs(raw map[string]any) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case int:
			out[k] = strconv.Itoa(val)
		case int64:
			out[k] = strconv.FormatInt(val, 10)
		case uint64:
			out[k] = strconv.FormatUint(val, 10)
		}
	}
	return out
}

func (a *Adapter) read(ctx context.Context) ([]byte, error) {
	if a.path != "" {
		raw, err := os.ReadFile(a.path)
		if err != nil {
			return nil, errors.WrapIO("read", a.path, err)
		}
		return raw, nil
	}
	return a.client.Get(ctx, a.url)
}

func (a *Adapter) location() string {
	if a.path != "" {
		return a.path
	}
	return a.url
}
