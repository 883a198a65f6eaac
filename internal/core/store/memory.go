package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

// Memory is an in-process Store. It backs STORE_MODE=memory runs and tests.
type Memory struct {
	mu              sync.RWMutex
	settings        []models.WidgetSettings
	autoReplies     map[uuid.UUID]models.AutoReplyRule
	advancedReplies map[uuid.UUID]models.AdvancedReplyRule
	sessions        map[uuid.UUID]models.Session
	messages        map[uuid.UUID][]models.Message
	messageIDs      map[uuid.UUID]struct{}
	seq             int64
	last            time.Time
	now             func() time.Time
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		autoReplies:     make(map[uuid.UUID]models.AutoReplyRule),
		advancedReplies: make(map[uuid.UUID]models.AdvancedReplyRule),
		sessions:        make(map[uuid.UUID]models.Session),
		messages:        make(map[uuid.UUID][]models.Message),
		messageIDs:      make(map[uuid.UUID]struct{}),
		now:             time.Now,
	}
}

// tick returns a strictly increasing timestamp so created_at ordering is
// stable. Callers hold the write lock.
func (m *Memory) tick() time.Time {
	now := m.now()
	if !now.After(m.last) {
		now = m.last.Add(time.Microsecond)
	}
	m.last = now
	return now
}

// ---- settings ----

func (m *Memory) LatestSettings(ctx context.Context, businessID uuid.UUID) (*models.WidgetSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.latestSettingsIndex(businessID)
	if idx < 0 {
		return nil, ErrNotFound
	}
	s := m.settings[idx]
	return &s, nil
}

func (m *Memory) latestSettingsIndex(businessID uuid.UUID) int {
	idx := -1
	for i, s := range m.settings {
		if s.BusinessID != businessID {
			continue
		}
		// Later inserts win ties
		if idx < 0 || !s.CreatedAt.Before(m.settings[idx].CreatedAt) {
			idx = i
		}
	}
	return idx
}

func (m *Memory) SaveSettings(ctx context.Context, settings *models.WidgetSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.tick()
	idx := m.latestSettingsIndex(settings.BusinessID)
	if idx < 0 {
		if settings.ID == uuid.Nil {
			settings.ID = uuid.New()
		}
		settings.CreatedAt = now
		settings.UpdatedAt = now
		m.settings = append(m.settings, *settings)
		return nil
	}

	existing := m.settings[idx]
	settings.ID = existing.ID
	settings.CreatedAt = existing.CreatedAt
	settings.UpdatedAt = now
	m.settings[idx] = *settings
	return nil
}

// AddSettingsRow inserts a row unconditionally, the way duplicate rows appear
// in a real store.
func (m *Memory) AddSettingsRow(settings models.WidgetSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if settings.ID == uuid.Nil {
		settings.ID = uuid.New()
	}
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = m.tick()
	}
	m.settings = append(m.settings, settings)
}

// ---- rules ----

func sortAutoReplies(rules []models.AutoReplyRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Position != rules[j].Position {
			return rules[i].Position < rules[j].Position
		}
		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})
}

func sortAdvancedReplies(rules []models.AdvancedReplyRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Position != rules[j].Position {
			return rules[i].Position < rules[j].Position
		}
		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})
}

func (m *Memory) ListAutoReplies(ctx context.Context, businessID uuid.UUID) ([]models.AutoReplyRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listAutoReplies(businessID), nil
}

func (m *Memory) listAutoReplies(businessID uuid.UUID) []models.AutoReplyRule {
	rules := make([]models.AutoReplyRule, 0)
	for _, r := range m.autoReplies {
		if r.BusinessID == businessID {
			rules = append(rules, r)
		}
	}
	sortAutoReplies(rules)
	return rules
}

func (m *Memory) autoPositions(businessID uuid.UUID) []int {
	var positions []int
	for _, r := range m.autoReplies {
		if r.BusinessID == businessID {
			positions = append(positions, r.Position)
		}
	}
	return positions
}

func (m *Memory) CreateAutoReply(ctx context.Context, rule *models.AutoReplyRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertAutoReply(rule)
	return nil
}

func (m *Memory) insertAutoReply(rule *models.AutoReplyRule) {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	if rule.Position <= 0 {
		rule.Position = NextPosition(m.autoPositions(rule.BusinessID))
	}
	now := m.tick()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	m.autoReplies[rule.ID] = *rule
}

func (m *Memory) UpdateAutoReply(ctx context.Context, rule *models.AutoReplyRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.autoReplies[rule.ID]
	if !ok {
		return ErrNotFound
	}
	rule.BusinessID = existing.BusinessID
	rule.CreatedAt = existing.CreatedAt
	if rule.Position <= 0 {
		rule.Position = existing.Position
	}
	rule.UpdatedAt = m.tick()
	m.autoReplies[rule.ID] = *rule
	return nil
}

func (m *Memory) DeleteAutoReply(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.autoReplies[id]; !ok {
		return ErrNotFound
	}
	delete(m.autoReplies, id)
	return nil
}

func (m *Memory) ImportAutoReplies(ctx context.Context, businessID uuid.UUID, rules []models.AutoReplyRule) ([]models.AutoReplyRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := make([]models.AutoReplyRule, 0, len(rules))
	for _, r := range rules {
		r.ID = uuid.Nil
		r.BusinessID = businessID
		r.Position = 0
		m.insertAutoReply(&r)
		created = append(created, r)
	}
	return created, nil
}

func (m *Memory) ListAdvancedReplies(ctx context.Context, businessID uuid.UUID) ([]models.AdvancedReplyRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rules := make([]models.AdvancedReplyRule, 0)
	for _, r := range m.advancedReplies {
		if r.BusinessID == businessID {
			rules = append(rules, r)
		}
	}
	sortAdvancedReplies(rules)
	return rules, nil
}

func (m *Memory) advancedPositions(businessID uuid.UUID) []int {
	var positions []int
	for _, r := range m.advancedReplies {
		if r.BusinessID == businessID {
			positions = append(positions, r.Position)
		}
	}
	return positions
}

func (m *Memory) CreateAdvancedReply(ctx context.Context, rule *models.AdvancedReplyRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertAdvancedReply(rule)
	return nil
}

func (m *Memory) insertAdvancedReply(rule *models.AdvancedReplyRule) {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	if rule.Position <= 0 {
		rule.Position = NextPosition(m.advancedPositions(rule.BusinessID))
	}
	now := m.tick()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	m.advancedReplies[rule.ID] = *rule
}

func (m *Memory) UpdateAdvancedReply(ctx context.Context, rule *models.AdvancedReplyRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.advancedReplies[rule.ID]
	if !ok {
		return ErrNotFound
	}
	rule.BusinessID = existing.BusinessID
	rule.CreatedAt = existing.CreatedAt
	if rule.Position <= 0 {
		rule.Position = existing.Position
	}
	rule.UpdatedAt = m.tick()
	m.advancedReplies[rule.ID] = *rule
	return nil
}

func (m *Memory) DeleteAdvancedReply(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.advancedReplies[id]; !ok {
		return ErrNotFound
	}
	delete(m.advancedReplies, id)
	return nil
}

func (m *Memory) ImportAdvancedReplies(ctx context.Context, businessID uuid.UUID, rules []models.AdvancedReplyRule) ([]models.AdvancedReplyRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := make([]models.AdvancedReplyRule, 0, len(rules))
	for _, r := range rules {
		r.ID = uuid.Nil
		r.BusinessID = businessID
		r.Position = 0
		m.insertAdvancedReply(&r)
		created = append(created, r)
	}
	return created, nil
}

// ---- sessions ----

func (m *Memory) ListSessions(ctx context.Context, businessID uuid.UUID, status models.SessionStatus) ([]models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]models.Session, 0)
	for _, s := range m.sessions {
		if s.BusinessID != businessID {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		sessions = append(sessions, s.Clone())
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].UpdatedAt.Equal(sessions[j].UpdatedAt) {
			return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
		}
		return sessions[i].ID.String() < sessions[j].ID.String()
	})
	return sessions, nil
}

func (m *Memory) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := s.Clone()
	return &clone, nil
}

func (m *Memory) CreateSession(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.Status == "" {
		session.Status = models.SessionStatusActive
	}
	if session.Metadata == nil {
		session.Metadata = models.Metadata{}
	}
	session.Version = 1
	now := m.tick()
	session.CreatedAt = now
	session.UpdatedAt = now
	m.sessions[session.ID] = session.Clone()
	return nil
}

func (m *Memory) PatchSession(ctx context.Context, id uuid.UUID, patch models.SessionPatch, ifVersion int) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s = s.Clone()
	if _, err := ApplyPatch(&s, patch, ifVersion, m.tick()); err != nil {
		return nil, err
	}
	m.sessions[id] = s
	out := s.Clone()
	return &out, nil
}

// ---- messages ----

func (m *Memory) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.messages[sessionID]
	out := make([]models.Message, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

func (m *Memory) AppendMessage(ctx context.Context, message *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[message.SessionID]; !ok {
		return ErrNotFound
	}
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if _, dup := m.messageIDs[message.ID]; dup {
		return nil
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = m.tick()
	}
	m.seq++
	message.Seq = m.seq
	m.messageIDs[message.ID] = struct{}{}
	m.messages[message.SessionID] = append(m.messages[message.SessionID], *message)
	return nil
}

var _ Store = (*Memory)(nil)
