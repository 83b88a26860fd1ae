package debate

import (
	"fmt"
	"strings"
)

// diversityThreshold is the overlap fraction above which a new argument
// is considered a near-duplicate of a prior one.
const diversityThreshold = 0.5

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"to": true, "of": true, "in": true, "for": true, "and": true,
	"but": true, "or": true,
}

// DiversityCheck is the result of comparing a candidate argument
// against an agent's prior arguments in the same session.
type DiversityCheck struct {
	Diverse    bool
	Similarity int // percentage, 0-100, of the worst overlap found
}

// CheckDiversity rejects a candidate whose significant-word overlap
// with any prior argument exceeds the threshold. Overlap is the shared
// word count divided by the smaller of the two word-set sizes.
func CheckDiversity(candidate string, prior []string) DiversityCheck {
	if len(prior) == 0 {
		return DiversityCheck{Diverse: true}
	}

	words := significantWords(candidate)
	for _, prev := range prior {
		if ov := overlap(words, significantWords(prev)); ov > diversityThreshold {
			return DiversityCheck{Similarity: int(ov*100 + 0.5)}
		}
	}
	return DiversityCheck{Diverse: true}
}

// significantWords lowercases, strips non-letters, and drops stop words
// and words of three characters or fewer.
func significantWords(text string) map[string]bool {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ', r == '\t', r == '\n', r == '\r':
			return ' '
		}
		return -1
	}, text)

	words := make(map[string]bool)
	for _, w := range strings.Fields(cleaned) {
		if len(w) <= 3 || stopWords[w] {
			continue
		}
		words[w] = true
	}
	return words
}

func overlap(a, b map[string]bool) float64 {
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	if smaller == 0 {
		return 0
	}

	shared := 0
	for w := range a {
		if b[w] {
			shared++
		}
	}
	return float64(shared) / float64(smaller)
}

// diversityHint tells the generator what not to repeat on a re-request.
func diversityHint(prior []string) string {
	var sb strings.Builder
	sb.WriteString("Your argument was too similar to previous ones. Make a DIFFERENT point.\nPrevious:\n")
	for i, p := range prior {
		if len(p) > 80 {
			p = p[:80] + "..."
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, p)
	}
	return sb.String()
}
