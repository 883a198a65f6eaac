package resolver

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/matcher"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

func strPtr(s string) *string { return &s }

func autoRule(response string, keywords ...string) models.AutoReplyRule {
	return models.AutoReplyRule{
		ID:           uuid.New(),
		Keywords:     pq.StringArray(keywords),
		MatchingType: models.MatchWord,
		Response:     response,
	}
}

func advancedRule(rt models.ResponseType, response string, button *string, keywords ...string) models.AdvancedReplyRule {
	return models.AdvancedReplyRule{
		ID:           uuid.New(),
		Keywords:     pq.StringArray(keywords),
		MatchingType: models.MatchWord,
		ResponseType: rt,
		Response:     response,
		ButtonText:   button,
	}
}

func newEngine() *Engine {
	return NewEngine(matcher.New(), WithRand(rand.New(rand.NewSource(42))))
}

func TestAutoRepliesBeforeAdvancedReplies(t *testing.T) {
	e := newEngine()
	first := autoRule("auto one", "price")
	rules := RuleSet{
		AutoReplies: []models.AutoReplyRule{first, autoRule("auto two", "price")},
		AdvancedReplies: []models.AdvancedReplyRule{
			advancedRule(models.ResponseText, "advanced", nil, "price"),
		},
	}

	out := e.Resolve("What is the PRICE?", rules, &models.WidgetSettings{FallbackMessage: "F"})

	assert.Equal(t, Reply, out.Kind)
	assert.Equal(t, "auto one", out.Text)
	assert.False(t, out.IsHTML)
	assert.Equal(t, SourceAutoReply, out.Source)
	assert.Equal(t, first.ID, out.RuleID)
}

func TestAdvancedTextReplyIsHTML(t *testing.T) {
	e := newEngine()
	rules := RuleSet{
		AutoReplies: []models.AutoReplyRule{autoRule("never", "refund")},
		AdvancedReplies: []models.AdvancedReplyRule{
			advancedRule(models.ResponseText, "<b>Menu</b>", nil, "menu"),
			advancedRule(models.ResponseText, "second", nil, "menu"),
		},
	}

	out := e.Resolve("show me the menu", rules, &models.WidgetSettings{})

	assert.Equal(t, Reply, out.Kind)
	assert.Equal(t, "<b>Menu</b>", out.Text)
	assert.True(t, out.IsHTML)
	assert.Equal(t, SourceAdvancedReply, out.Source)
}

func TestAdvancedURLReplyRendersAnchor(t *testing.T) {
	e := newEngine()

	withLabel := RuleSet{AdvancedReplies: []models.AdvancedReplyRule{
		advancedRule(models.ResponseURL, "https://example.com/book", strPtr("Book now"), "book"),
	}}
	out := e.Resolve("can I book?", withLabel, &models.WidgetSettings{})
	assert.Equal(t, `<a href="https://example.com/book" target="_blank" rel="noopener noreferrer">Book now</a>`, out.Text)
	assert.True(t, out.IsHTML)

	noLabel := RuleSet{AdvancedReplies: []models.AdvancedReplyRule{
		advancedRule(models.ResponseURL, "https://example.com/book", nil, "book"),
	}}
	out = e.Resolve("can I book?", noLabel, &models.WidgetSettings{})
	assert.Contains(t, out.Text, ">Click here</a>")

	emptyLabel := RuleSet{AdvancedReplies: []models.AdvancedReplyRule{
		advancedRule(models.ResponseURL, "https://example.com/book", strPtr(""), "book"),
	}}
	out = e.Resolve("can I book?", emptyLabel, &models.WidgetSettings{})
	assert.Contains(t, out.Text, ">Click here</a>")
}

func TestRenderAnchorEscapes(t *testing.T) {
	got := RenderAnchor(`https://x.test/?a=1&b="2"`, "<script>")

	assert.Equal(t, `<a href="https://x.test/?a=1&amp;b=&#34;2&#34;" target="_blank" rel="noopener noreferrer">&lt;script&gt;</a>`, got)
}

func TestUnknownResponseTypeFallsThrough(t *testing.T) {
	e := newEngine()
	rules := RuleSet{AdvancedReplies: []models.AdvancedReplyRule{
		advancedRule(models.ResponseType("video"), "x", nil, "hi"),
		advancedRule(models.ResponseText, "hello!", nil, "hi"),
	}}

	out := e.Resolve("hi", rules, &models.WidgetSettings{})

	assert.Equal(t, "hello!", out.Text)
}

func TestAIModeTakesPriorityOverFallback(t *testing.T) {
	e := newEngine()
	settings := &models.WidgetSettings{
		AIModeEnabled:   true,
		AIAPIKey:        strPtr("key"),
		AIContext:       strPtr("We are open 9am-5pm"),
		FallbackMessage: "F",
	}

	out := e.Resolve("tell me something", RuleSet{}, settings)

	assert.Equal(t, DeferredReply, out.Kind)
	assert.Equal(t, SourceAI, out.Source)
	assert.GreaterOrEqual(t, out.Delay, 2000*time.Millisecond)
	assert.Less(t, out.Delay, 4000*time.Millisecond)

	settings.AIModeEnabled = false
	out = e.Resolve("tell me something", RuleSet{}, settings)

	assert.Equal(t, Reply, out.Kind)
	assert.Equal(t, "F", out.Text)
	assert.False(t, out.IsHTML)
	assert.Equal(t, SourceFallback, out.Source)
}

func TestAIModeRequiresKeyAndContext(t *testing.T) {
	e := newEngine()

	noKey := &models.WidgetSettings{AIModeEnabled: true, AIContext: strPtr("ctx"), FallbackMessage: "F"}
	assert.Equal(t, Reply, e.Resolve("x", RuleSet{}, noKey).Kind)

	noContext := &models.WidgetSettings{AIModeEnabled: true, AIAPIKey: strPtr("k"), FallbackMessage: "F"}
	assert.Equal(t, Reply, e.Resolve("x", RuleSet{}, noContext).Kind)
}

func TestDeferredDelayStaysInRange(t *testing.T) {
	e := newEngine()
	settings := &models.WidgetSettings{AIModeEnabled: true, AIAPIKey: strPtr("k"), AIContext: strPtr("c")}

	for i := 0; i < 200; i++ {
		out := e.Resolve("hello", RuleSet{}, settings)
		assert.GreaterOrEqual(t, out.Delay, 2000*time.Millisecond)
		assert.Less(t, out.Delay, 4000*time.Millisecond)
	}
}

func TestNoReplyWithoutFallback(t *testing.T) {
	e := newEngine()

	assert.Equal(t, NoReply, e.Resolve("hello", RuleSet{}, &models.WidgetSettings{}).Kind)
}

func TestNilSettingsIsNoReply(t *testing.T) {
	e := newEngine()
	rules := RuleSet{AutoReplies: []models.AutoReplyRule{autoRule("hi", "hi")}}

	assert.Equal(t, NoReply, e.Resolve("hi", rules, nil).Kind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "no_reply", NoReply.String())
	assert.Equal(t, "reply", Reply.String())
	assert.Equal(t, "deferred_reply", DeferredReply.String())
}
