package usecase

import (
	"errors"
	"sort"

	"github.com/buscaprecios/backend/internal/domain"
)

// Token frequency weights by vocabulary group. Brands are the strongest
// correction targets, generic categories next, model-line modifiers last.
const (
	weightBrand    = 3.0
	weightCategory = 2.0
	weightModifier = 1.0
)

// staticLexicon is an immutable in-memory vocabulary. Built once at
// startup; safe for unrestricted concurrent reads.
type staticLexicon struct {
	entries []domain.VocabEntry
	tokens  map[string]struct{}
}

// NewLexicon builds the correction vocabulary from the three weighted word
// groups. Tokens are folded (lowercase, no diacritics) and deduplicated;
// the first group a token appears in decides its weight. An empty
// vocabulary is a fatal configuration error.
func NewLexicon(brands, categories, modifiers []string) (domain.Lexicon, error) {
	lex := &staticLexicon{
		tokens: make(map[string]struct{}),
	}

	add := func(words []string, weight float64) {
		for _, w := range words {
			token := foldText(w)
			if token == "" {
				continue
			}
			if _, ok := lex.tokens[token]; ok {
				continue
			}
			lex.tokens[token] = struct{}{}
			lex.entries = append(lex.entries, domain.VocabEntry{Token: token, Weight: weight})
		}
	}

	add(brands, weightBrand)
	add(categories, weightCategory)
	add(modifiers, weightModifier)

	if len(lex.entries) == 0 {
		return nil, errors.New("lexicon vocabulary is empty")
	}

	// Deterministic iteration order for candidate scans
	sort.Slice(lex.entries, func(i, j int) bool {
		return lex.entries[i].Token < lex.entries[j].Token
	})

	return lex, nil
}

// Contains reports whether token is an exact vocabulary entry
func (l *staticLexicon) Contains(token string) bool {
	_, ok := l.tokens[token]
	return ok
}

// Entries returns the full weighted vocabulary in lexical order
func (l *staticLexicon) Entries() []domain.VocabEntry {
	return l.entries
}
