package registry

import "strings"

// Branch identifies which branch of government an organization or
// position belongs to. Fuzzy matching never crosses branch partitions.
type Branch string

// Branch values.
const (
	BranchLegislative Branch = "legislative"
	BranchExecutive   Branch = "executive"
	BranchJudicial    Branch = "judicial"
	BranchUnknown     Branch = "unknown"
)

// ParseBranch maps an external vocabulary string to a Branch.
// Unrecognized input maps to BranchUnknown; callers must handle it.
func ParseBranch(s string) Branch {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legislative", "congress", "legislature":
		return BranchLegislative
	case "executive":
		return BranchExecutive
	case "judicial", "judiciary", "courts":
		return BranchJudicial
	default:
		return BranchUnknown
	}
}

// String returns the branch as its wire value.
func (b Branch) String() string { return string(b) }

// OrgKind classifies an organization.
type OrgKind string

// OrgKind values.
const (
	OrgKindDepartment  OrgKind = "department"
	OrgKindAgency      OrgKind = "agency"
	OrgKindBureau      OrgKind = "bureau"
	OrgKindOffice      OrgKind = "office"
	OrgKindCommission  OrgKind = "commission"
	OrgKindBoard       OrgKind = "board"
	OrgKindCorporation OrgKind = "corporation"
	OrgKindBranchOrg   OrgKind = "branch"
	OrgKindUnknown     OrgKind = "unknown"
)

// ParseOrgKind maps an external vocabulary string to an OrgKind.
// Unrecognized input maps to OrgKindUnknown; callers must handle it.
func ParseOrgKind(s string) OrgKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "department", "executive department":
		return OrgKindDepartment
	case "agency", "independent agency", "sub-agency":
		return OrgKindAgency
	case "bureau":
		return OrgKindBureau
	case "office":
		return OrgKindOffice
	case "commission":
		return OrgKindCommission
	case "board":
		return OrgKindBoard
	case "corporation", "government corporation":
		return OrgKindCorporation
	case "branch":
		return OrgKindBranchOrg
	default:
		return OrgKindUnknown
	}
}

// String returns the kind as its wire value.
func (k OrgKind) String() string { return string(k) }

// PositionKind classifies how a position is filled.
type PositionKind string

// PositionKind values.
const (
	PositionElected   PositionKind = "elected"
	PositionAppointed PositionKind = "appointed"
	PositionCareer    PositionKind = "career"
	PositionUnknown   PositionKind = "unknown"
)

// ParsePositionKind maps an external vocabulary string to a PositionKind.
// Unrecognized input maps to PositionUnknown; callers must handle it.
func ParsePositionKind(s string) PositionKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "elected":
		return PositionElected
	case "appointed", "presidential appointment", "pas", "pa":
		return PositionAppointed
	case "career", "career appointment", "ses":
		return PositionCareer
	default:
		return PositionUnknown
	}
}

// String returns the kind as its wire value.
func (k PositionKind) String() string { return string(k) }

// Chamber identifies a legislative chamber for seat positions.
type Chamber string

// Chamber values.
const (
	ChamberSenate  Chamber = "senate"
	ChamberHouse   Chamber = "house"
	ChamberNone    Chamber = ""
	ChamberUnknown Chamber = "unknown"
)

// ParseChamber maps an external vocabulary string to a Chamber.
// Empty input maps to ChamberNone (not applicable); unrecognized
// non-empty input maps to ChamberUnknown.
func ParseChamber(s string) Chamber {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ChamberNone
	case "senate", "sen", "upper":
		return ChamberSenate
	case "house", "rep", "house of representatives", "lower":
		return ChamberHouse
	default:
		return ChamberUnknown
	}
}

// String returns the chamber as its wire value.
func (c Chamber) String() string { return string(c) }

// EntityKind distinguishes what a candidate record refers to.
type EntityKind string

// EntityKind values.
const (
	EntityPerson       EntityKind = "person"
	EntityOrganization EntityKind = "organization"
	EntityUnknownKind  EntityKind = "unknown"
)

// ParseEntityKind maps an external vocabulary string to an EntityKind.
func ParseEntityKind(s string) EntityKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "person", "individual":
		return EntityPerson
	case "organization", "org", "agency":
		return EntityOrganization
	default:
		return EntityUnknownKind
	}
}
