package match

// knownAcronyms maps normalized common agency name variations to their
// standard acronyms. Source feeds frequently use a long-form name where
// the registry carries the acronym as an alias, or vice versa.
var knownAcronyms = map[string]string{
	"environmental protection agency":                 "EPA",
	"department of health and human services":         "HHS",
	"department of transportation":                    "DOT",
	"securities and exchange commission":              "SEC",
	"federal communications commission":               "FCC",
	"food and drug administration":                    "FDA",
	"centers for medicare & medicaid services":        "CMS",
	"centers for medicare and medicaid services":      "CMS",
	"internal revenue service":                        "IRS",
	"federal aviation administration":                 "FAA",
	"occupational safety and health administration":   "OSHA",
	"national aeronautics and space administration":   "NASA",
	"department of defense":                           "DOD",
	"department of agriculture":                       "USDA",
	"department of commerce":                          "DOC",
	"department of education":                         "ED",
	"department of energy":                            "DOE",
	"department of homeland security":                 "DHS",
	"department of housing and urban development":     "HUD",
	"department of the interior":                      "DOI",
	"department of justice":                           "DOJ",
	"department of labor":                             "DOL",
	"department of state":                             "DOS",
	"department of the treasury":                      "TREASURY",
	"department of veterans affairs":                  "VA",
	"federal reserve system":                          "FED",
	"federal trade commission":                        "FTC",
	"nuclear regulatory commission":                   "NRC",
	"consumer financial protection bureau":            "CFPB",
	"small business administration":                   "SBA",
	"social security administration":                  "SSA",
}

// KnownAcronym returns the standard acronym for a normalized agency
// name variation, if one is on record.
func KnownAcronym(normalizedName string) (string, bool) {
	a, ok := knownAcronyms[normalizedName]
	return a, ok
}
