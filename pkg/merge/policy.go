package merge

// FieldClass controls how the merge policy treats a canonical field.
type FieldClass int

const (
	// Curated fields are hand-maintained; an incoming value only fills
	// them when the canonical field is empty, never overwrites.
	Curated FieldClass = iota
	// SourceOwned fields track the upstream source; a non-empty
	// incoming value overwrites freely.
	SourceOwned
)

// Org field names as used by the policy tables.
const (
	FieldMissionStatement  = "mission_statement"
	FieldJurisdictionAreas = "jurisdiction_areas"
	FieldParent            = "parent"
	FieldEstablished       = "established"
	FieldDissolved         = "dissolved"
	FieldAcronym           = "acronym"
	FieldDescription       = "description"
	FieldWebsiteURL        = "website_url"
)

// Person field names as used by the policy tables.
const (
	FieldMiddleName = "middle_name"
	FieldSuffix     = "suffix"
	FieldBirthDate  = "birth_date"
	FieldDeathDate  = "death_date"
)

// OrgFieldPolicy is the explicit curated versus source-owned partition
// for organization fields. Fields absent from the table are never
// written by the merge path.
var OrgFieldPolicy = map[string]FieldClass{
	FieldMissionStatement:  Curated,
	FieldJurisdictionAreas: Curated,
	FieldParent:            Curated,
	FieldEstablished:       Curated,
	FieldDissolved:         Curated,
	FieldAcronym:           Curated,
	FieldDescription:       SourceOwned,
	FieldWebsiteURL:        SourceOwned,
}

// PersonFieldPolicy is the partition for person fields. Identity fields
// are curated; nothing about a person is source-owned beyond external
// identifiers, which accumulate additively.
var PersonFieldPolicy = map[string]FieldClass{
	FieldMiddleName: Curated,
	FieldSuffix:     Curated,
	FieldBirthDate:  Curated,
	FieldDeathDate:  Curated,
}

func classOf(table map[string]FieldClass, field string) (FieldClass, bool) {
	c, ok := table[field]
	return c, ok
}
