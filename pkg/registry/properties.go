package registry

// Properties is an explicit key-value extension map. The original data
// sources carry free-form extras; known keys are documented here so
// invariant checks and merges stay explicit instead of burying data in
// an opaque blob.
type Properties map[string]string

// Known property keys, versioned by convention: renaming a key requires
// a migration, never a silent change of meaning.
const (
	// PropSeniorStatusDate marks when a judge took senior status (YYYY-MM-DD).
	PropSeniorStatusDate = "senior_status_date"
	// PropParty is the political party affiliation at record time.
	PropParty = "party"
	// PropTenureCode is the employment tenure code from appointee rolls.
	PropTenureCode = "tenure_code"
	// PropAuthorizingLegislation cites the statute establishing an organization.
	PropAuthorizingLegislation = "authorizing_legislation"
	// PropSourceReference is a free-form pointer into the raw source payload.
	PropSourceReference = "source_reference"
)

// Get returns the value for a key and whether it is set.
func (p Properties) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p[key]
	return v, ok
}

// Clone returns a copy of the map, or nil for an empty one.
func (p Properties) Clone() Properties {
	if len(p) == 0 {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge returns a copy of p with non-empty values from other added.
// Existing keys keep their values; Merge never clobbers.
func (p Properties) Merge(other Properties) Properties {
	if len(other) == 0 {
		return p
	}
	out := p.Clone()
	if out == nil {
		out = make(Properties, len(other))
	}
	for k, v := range other {
		if v == "" {
			continue
		}
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}
