package usecase

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// foldText lowercases s and strips diacritics so that "económico" and
// "ECONOMICO" compare equal. A new transformer chain is built per call
// because chained transformers are not safe for concurrent use.
func foldText(s string) string {
	s = strings.ToLower(s)

	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(chain, s)
	if err != nil {
		return s
	}
	return folded
}

// foldedFields folds s and splits it into whitespace-delimited tokens
func foldedFields(s string) []string {
	return strings.Fields(foldText(s))
}
