package resolver

import (
	"fmt"
	"html"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/matcher"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

// Kind is the shape of a resolution outcome
type Kind int

const (
	NoReply Kind = iota
	Reply
	DeferredReply
)

func (k Kind) String() string {
	switch k {
	case Reply:
		return "reply"
	case DeferredReply:
		return "deferred_reply"
	default:
		return "no_reply"
	}
}

// Source names the tier that produced an outcome
type Source string

const (
	SourceNone          Source = ""
	SourceAutoReply     Source = "auto_reply"
	SourceAdvancedReply Source = "advanced_reply"
	SourceAI            Source = "ai"
	SourceFallback      Source = "fallback"
)

const (
	DefaultButtonText = "Click here"

	minAIDelay  = 2000 * time.Millisecond
	aiDelaySpan = 2000 * time.Millisecond
)

// RuleSet is the ordered rules of one business
type RuleSet struct {
	AutoReplies     []models.AutoReplyRule
	AdvancedReplies []models.AdvancedReplyRule
}

// Outcome is at most one outbound reply for a visitor utterance
type Outcome struct {
	Kind   Kind
	Text   string
	IsHTML bool
	Delay  time.Duration // set for DeferredReply only
	Source Source
	RuleID uuid.UUID
}

// Engine applies the resolution tiers in strict priority: auto replies,
// advanced replies, the context heuristic, then the static fallback.
type Engine struct {
	matcher *matcher.Matcher

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures an Engine
type Option func(*Engine)

// WithRand injects the random source used for deferred reply delays
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rnd = r
		}
	}
}

// NewEngine creates a resolution engine
func NewEngine(m *matcher.Matcher, opts ...Option) *Engine {
	if m == nil {
		m = matcher.New()
	}
	e := &Engine{
		matcher: m,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolve decides how to answer one visitor utterance. Missing settings
// degrade to NoReply.
func (e *Engine) Resolve(utterance string, rules RuleSet, settings *models.WidgetSettings) Outcome {
	if settings == nil {
		return Outcome{Kind: NoReply}
	}

	for _, rule := range rules.AutoReplies {
		if e.matcher.Match(rule.MatchingType, rule.Keywords, utterance) {
			log.Debug().Str("rule_id", rule.ID.String()).Msg("auto reply matched")
			return Outcome{
				Kind:   Reply,
				Text:   rule.Response,
				IsHTML: false,
				Source: SourceAutoReply,
				RuleID: rule.ID,
			}
		}
	}

	for _, rule := range rules.AdvancedReplies {
		if !e.matcher.Match(rule.MatchingType, rule.Keywords, utterance) {
			continue
		}
		text, ok := renderAdvanced(rule)
		if !ok {
			log.Warn().
				Str("rule_id", rule.ID.String()).
				Str("response_type", string(rule.ResponseType)).
				Msg("advanced reply has unknown response type, skipped")
			continue
		}
		log.Debug().Str("rule_id", rule.ID.String()).Msg("advanced reply matched")
		return Outcome{
			Kind:   Reply,
			Text:   text,
			IsHTML: true,
			Source: SourceAdvancedReply,
			RuleID: rule.ID,
		}
	}

	if settings.AIConfigured() {
		return Outcome{
			Kind:   DeferredReply,
			Text:   AnswerFromContext(utterance, settings.Context()),
			IsHTML: false,
			Delay:  e.aiDelay(),
			Source: SourceAI,
		}
	}

	if settings.FallbackMessage != "" {
		return Outcome{
			Kind:   Reply,
			Text:   settings.FallbackMessage,
			IsHTML: false,
			Source: SourceFallback,
		}
	}

	return Outcome{Kind: NoReply}
}

// aiDelay is uniform in [2000, 4000) ms
func (e *Engine) aiDelay() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return minAIDelay + time.Duration(e.rnd.Int63n(int64(aiDelaySpan)))
}

func renderAdvanced(rule models.AdvancedReplyRule) (string, bool) {
	switch rule.ResponseType {
	case models.ResponseText:
		return rule.Response, true
	case models.ResponseURL:
		label := DefaultButtonText
		if rule.ButtonText != nil && *rule.ButtonText != "" {
			label = *rule.ButtonText
		}
		return RenderAnchor(rule.Response, label), true
	default:
		return "", false
	}
}

// RenderAnchor builds the link markup for a URL reply
func RenderAnchor(href, label string) string {
	return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`,
		html.EscapeString(href), html.EscapeString(label))
}
