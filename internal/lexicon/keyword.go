package lexicon

import "strings"

// Keyword is one catalog entry. It may span several tokens ("looking
// forward"). Every term must equal a whole token; inflections are listed as
// separate keywords.
type Keyword struct {
	Terms  []string
	Weight float64
}

func parseKeyword(raw string, weight float64) Keyword {
	return Keyword{
		Terms:  strings.Fields(strings.ToLower(strings.TrimSpace(raw))),
		Weight: weight,
	}
}

func (k Keyword) String() string {
	return strings.Join(k.Terms, " ")
}

// Count returns how many times the keyword occurs in tokens. Matching is
// token based, so "cat" never matches inside "category".
func (k Keyword) Count(tokens []string) int {
	n := len(k.Terms)
	if n == 0 {
		return 0
	}
	count := 0
	for i := 0; i+n <= len(tokens); i++ {
		if k.matchAt(tokens, i) {
			count++
		}
	}
	return count
}

func (k Keyword) matchAt(tokens []string, at int) bool {
	for j, term := range k.Terms {
		if tokens[at+j] != term {
			return false
		}
	}
	return true
}

func countAll(keywords []Keyword, tokens []string) int {
	total := 0
	for _, k := range keywords {
		total += k.Count(tokens)
	}
	return total
}

func anyMatch(keywords []Keyword, tokens []string) bool {
	for _, k := range keywords {
		if k.Count(tokens) > 0 {
			return true
		}
	}
	return false
}
