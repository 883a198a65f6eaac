package matcher

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

// Matcher evaluates one visitor utterance against one rule's keywords.
// All comparisons are case-insensitive. A Matcher is safe for concurrent use.
type Matcher struct {
	synonyms *SynonymTable
	legacy   bool

	// compiled patterns; a nil value marks a pattern that failed to compile
	regexes *lru.Cache[string, *regexp.Regexp]
}

// DefaultRegexCacheSize bounds the compiled pattern cache
const DefaultRegexCacheSize = 1024

// Option configures a Matcher
type Option func(*Matcher)

// WithSynonyms replaces the built-in synonym table
func WithSynonyms(table *SynonymTable) Option {
	return func(m *Matcher) {
		if table != nil {
			m.synonyms = table
		}
	}
}

// WithLegacyMatching makes fuzzy_match and synonym_match rules never match.
// Both types are then accepted by the store but inert.
func WithLegacyMatching() Option {
	return func(m *Matcher) {
		m.legacy = true
	}
}

// WithRegexCacheSize bounds how many compiled patterns are kept. The least
// recently used pattern is evicted first.
func WithRegexCacheSize(size int) Option {
	return func(m *Matcher) {
		if size > 0 {
			m.regexes = newRegexCache(size)
		}
	}
}

func newRegexCache(size int) *lru.Cache[string, *regexp.Regexp] {
	c, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return c
}

// New creates a matcher
func New(opts ...Option) *Matcher {
	m := &Matcher{
		synonyms: DefaultSynonyms(),
		regexes:  newRegexCache(DefaultRegexCacheSize),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CachedPatterns is the number of patterns currently cached
func (m *Matcher) CachedPatterns() int {
	return m.regexes.Len()
}

// Match reports whether any keyword matches the utterance under the given strategy.
// An empty keyword list never matches; an unknown strategy never matches.
func (m *Matcher) Match(matchingType models.MatchingType, keywords []string, utterance string) bool {
	if len(keywords) == 0 {
		return false
	}

	switch matchingType {
	case models.MatchWord:
		return wordMatch(keywords, utterance)
	case models.MatchRegex:
		return m.regexMatch(keywords, utterance)
	case models.MatchFuzzy:
		if m.legacy {
			return false
		}
		return fuzzyMatch(keywords, utterance)
	case models.MatchSynonym:
		if m.legacy {
			return false
		}
		return wordMatch(m.synonyms.Expand(keywords), utterance)
	default:
		log.Warn().Str("matching_type", string(matchingType)).Msg("unknown matching type, rule skipped")
		return false
	}
}

// wordMatch is true iff any lower-cased keyword is a substring of the lower-cased utterance
func wordMatch(keywords []string, utterance string) bool {
	text := strings.ToLower(utterance)
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// regexMatch compiles every keyword as a case-insensitive pattern. Keywords that
// fail to compile are skipped, never fatal to the rule.
func (m *Matcher) regexMatch(keywords []string, utterance string) bool {
	for _, kw := range keywords {
		re := m.compile(kw)
		if re == nil {
			continue
		}
		if re.MatchString(utterance) {
			return true
		}
	}
	return false
}

func (m *Matcher) compile(pattern string) *regexp.Regexp {
	if re, ok := m.regexes.Get(pattern); ok {
		return re
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		// logged again only after the pattern was evicted
		log.Warn().Err(err).Str("pattern", pattern).Msg("invalid regex keyword skipped")
	}
	m.regexes.Add(pattern, re)
	return re
}
