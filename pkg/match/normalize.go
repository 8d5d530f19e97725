package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var folder = cases.Fold()

// Normalize lowercases a name with Unicode case folding and collapses
// runs of whitespace to single spaces. All name comparisons in this
// package go through Normalize first.
func Normalize(s string) string {
	return strings.Join(strings.Fields(folder.String(s)), " ")
}

// NormalizeAcronym uppercases a candidate acronym for comparison
// against the alias table.
func NormalizeAcronym(s string) string {
	return cases.Upper(language.AmericanEnglish).String(strings.TrimSpace(s))
}

// looksLikeAcronym reports whether a raw candidate name is a single
// short letter token, meaning it carries no case information and should
// be compared upper-cased against acronym aliases.
func looksLikeAcronym(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 10 || strings.ContainsAny(s, " \t") {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
