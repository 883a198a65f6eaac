package resolver

import "strings"

// topic is one subject the context heuristic recognises
type topic struct {
	name     string
	triggers []string // words in the visitor utterance
	hints    []string // substrings searched for in context lines
	prefix   string
	missing  string
	refuse   bool
}

const (
	pricingPrefix = "Here's our pricing information: "
	codeRefusal   = "I'm not able to help with code or scripts here. Would you like me to connect you with a human agent?"
	genericAnswer = "That's a great question! A human agent can give you the best answer. Would you like to talk to one?"
)

// Evaluated in order; the first topic whose trigger appears wins.
var topics = []topic{
	{
		name:     "pricing",
		triggers: []string{"price", "cost", "pricing"},
		hints:    []string{"price", "cost", "pricing", "$", "fee"},
		prefix:   pricingPrefix,
		missing:  "I don't have pricing information at the moment. Would you like to talk to a human agent?",
	},
	{
		name:     "hours",
		triggers: []string{"hours", "open", "available"},
		hints:    []string{"hour", "open", "close", "monday", "daily"},
		missing:  "I don't have our opening hours at hand. Would you like to talk to a human agent?",
	},
	{
		name:     "location",
		triggers: []string{"location", "address", "where"},
		hints:    []string{"address", "located", "location", "street"},
		missing:  "I don't have our address at hand. Would you like to talk to a human agent?",
	},
	{
		name:     "code",
		triggers: []string{"code", "script", "program"},
		refuse:   true,
	},
}

// AnswerFromContext is the simulated AI responder: a deterministic scan of the
// business context for a line relevant to the utterance's topic.
func AnswerFromContext(utterance, context string) string {
	text := strings.ToLower(utterance)
	lines := contextLines(context)

	for _, tp := range topics {
		if !containsAny(text, tp.triggers) {
			continue
		}
		if tp.refuse {
			return codeRefusal
		}
		for _, line := range lines {
			if containsAny(strings.ToLower(line), tp.hints) {
				return tp.prefix + line
			}
		}
		return tp.missing
	}

	return genericAnswer
}

func contextLines(context string) []string {
	var lines []string
	for _, line := range strings.Split(context, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
