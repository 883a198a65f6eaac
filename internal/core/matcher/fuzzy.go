package matcher

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// fuzzyMatch is true when a keyword appears verbatim, or when some run of
// utterance words with the same word count as the keyword is within the
// keyword's edit budget.
func fuzzyMatch(keywords []string, utterance string) bool {
	text := strings.ToLower(utterance)
	tokens := tokenize(text)

	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if strings.Contains(text, kw) {
			return true
		}

		kwTokens := tokenize(kw)
		n := len(kwTokens)
		if n == 0 || n > len(tokens) {
			continue
		}
		target := strings.Join(kwTokens, " ")
		budget := editBudget(target)

		for i := 0; i+n <= len(tokens); i++ {
			window := strings.Join(tokens[i:i+n], " ")
			if levenshtein.ComputeDistance(window, target) <= budget {
				return true
			}
		}
	}
	return false
}

// editBudget is the number of edits tolerated for a keyword: none for very
// short words, one for medium ones, two beyond that.
func editBudget(keyword string) int {
	n := len([]rune(keyword))
	switch {
	case n <= 3:
		return 0
	case n <= 7:
		return 1
	default:
		return 2
	}
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
