package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

// Policy decides whether the visitor-side bot may still auto-reply once a
// human agent has joined a session.
type Policy string

const (
	// PolicyAlways lets the bot and the agent both answer
	PolicyAlways Policy = "always"
	// PolicySuppressAfterAgent silences the bot for good once an agent spoke
	PolicySuppressAfterAgent Policy = "suppress_after_agent"
	// PolicySuppressWhileAgentActive silences the bot while the last agent
	// message is younger than the active window
	PolicySuppressWhileAgentActive Policy = "suppress_while_agent_active"
)

// DefaultActiveWindow is how long an agent counts as active after a message
const DefaultActiveWindow = 10 * time.Minute

// ParsePolicy validates a configured policy name. Empty means PolicyAlways.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyAlways, nil
	case PolicyAlways, PolicySuppressAfterAgent, PolicySuppressWhileAgentActive:
		return p, nil
	default:
		return "", fmt.Errorf("unknown auto reply policy %q", s)
	}
}

// Gate applies a Policy to a session's message log
type Gate struct {
	policy Policy
	window time.Duration
	now    func() time.Time
}

// NewGate creates a gate. A non-positive window uses DefaultActiveWindow.
func NewGate(policy Policy, window time.Duration) *Gate {
	if policy == "" {
		policy = PolicyAlways
	}
	if window <= 0 {
		window = DefaultActiveWindow
	}
	return &Gate{policy: policy, window: window, now: time.Now}
}

// Policy returns the gate's policy
func (g *Gate) Policy() Policy {
	return g.policy
}

// NeedsFreshLog is true when the decision depends on the message log
func (g *Gate) NeedsFreshLog() bool {
	return g.policy != PolicyAlways
}

// AllowAutoReply reports whether the bot may answer given the session's log
func (g *Gate) AllowAutoReply(messages []models.Message) bool {
	switch g.policy {
	case PolicySuppressAfterAgent:
		for _, m := range messages {
			if m.SenderType == models.SenderAgent {
				return false
			}
		}
		return true
	case PolicySuppressWhileAgentActive:
		cutoff := g.now().Add(-g.window)
		for i := len(messages) - 1; i >= 0; i-- {
			m := messages[i]
			if m.SenderType == models.SenderAgent && m.CreatedAt.After(cutoff) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
