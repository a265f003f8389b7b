package usecase

import (
	"strings"

	"github.com/buscaprecios/backend/internal/domain"
	"github.com/buscaprecios/backend/pkg/logging"
)

// Corrector fixes misspelled query tokens against the domain vocabulary.
// It never discards information it is not confident about: tokens beyond
// the edit-distance bound pass through unchanged, and empty input is
// returned as-is.
type Corrector struct {
	lexicon domain.Lexicon
	logger  *logging.Logger
}

// NewCorrector creates a corrector over the given vocabulary
func NewCorrector(lexicon domain.Lexicon, logger *logging.Logger) *Corrector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Corrector{
		lexicon: lexicon,
		logger:  logger,
	}
}

// Correct corrects raw free text token by token. Each whitespace-delimited
// token is folded (lowercase, no diacritics) and matched against the
// vocabulary within a length-relative edit-distance bound. Exact hits emit
// the folded vocabulary form, near misses emit the closest entry, and
// everything else passes through unchanged, which makes correction
// idempotent: Correct(Correct(x)) == Correct(x).
func (c *Corrector) Correct(rawText string) string {
	fields := strings.Fields(rawText)
	if len(fields) == 0 {
		return rawText
	}

	corrected := make([]string, 0, len(fields))
	for _, tok := range fields {
		folded := foldText(tok)

		if c.lexicon.Contains(folded) {
			corrected = append(corrected, folded)
			continue
		}

		if best, ok := c.closestEntry(folded); ok {
			c.logger.Debug("query token corrected", "from", tok, "to", best)
			corrected = append(corrected, best)
			continue
		}

		corrected = append(corrected, tok)
	}

	return strings.Join(corrected, " ")
}

// closestEntry finds the vocabulary entry closest to token within the
// distance bound. Ranking is contractual: minimum edit distance first,
// then greater frequency weight, then lexical order.
func (c *Corrector) closestEntry(token string) (string, bool) {
	bound := editDistanceBound(token)

	var best string
	bestDist := bound + 1
	bestWeight := -1.0

	for _, entry := range c.lexicon.Entries() {
		// Quick length check - if lengths differ by more than the bound,
		// the distance cannot be within it either
		lenDiff := len(token) - len(entry.Token)
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		if lenDiff > bound {
			continue
		}

		dist := levenshteinDistance(token, entry.Token)
		if dist > bound {
			continue
		}

		switch {
		case dist < bestDist:
		case dist == bestDist && entry.Weight > bestWeight:
		case dist == bestDist && entry.Weight == bestWeight && entry.Token < best:
		default:
			continue
		}

		best = entry.Token
		bestDist = dist
		bestWeight = entry.Weight
	}

	if best == "" {
		return "", false
	}
	return best, true
}

// editDistanceBound returns the maximum accepted edit distance for a token
// of the given length. Short tokens tolerate a single edit; longer ones two.
func editDistanceBound(token string) int {
	if len(token) <= 4 {
		return 1
	}
	return 2
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	// Use two rows instead of a full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
