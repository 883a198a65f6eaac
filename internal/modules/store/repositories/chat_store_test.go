package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

// openTestDB connects to TEST_DATABASE_URL; the tests skip without it
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.WidgetSettings{},
		&models.AutoReplyRule{},
		&models.AdvancedReplyRule{},
		&models.Session{},
		&models.Message{},
		&audit.Entry{},
	))
	return db
}

func TestChatStoreAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	s := NewChatStore(openTestDB(t))
	business := uuid.New()

	t.Run("settings", func(t *testing.T) {
		_, err := s.LatestSettings(ctx, business)
		assert.ErrorIs(t, err, store.ErrNotFound)

		require.NoError(t, s.SaveSettings(ctx, &models.WidgetSettings{BusinessID: business, BusinessName: "A"}))
		require.NoError(t, s.SaveSettings(ctx, &models.WidgetSettings{BusinessID: business, BusinessName: "B"}))

		latest, err := s.LatestSettings(ctx, business)
		require.NoError(t, err)
		assert.Equal(t, "B", latest.BusinessName)
	})

	t.Run("rules keep positions", func(t *testing.T) {
		first := &models.AutoReplyRule{BusinessID: business, Keywords: []string{"a"}, MatchingType: models.MatchWord, Response: "a"}
		require.NoError(t, s.CreateAutoReply(ctx, first))
		_, err := s.ImportAutoReplies(ctx, business, []models.AutoReplyRule{
			{Keywords: []string{"b"}, MatchingType: models.MatchWord, Response: "b"},
			{Keywords: []string{"c"}, MatchingType: models.MatchWord, Response: "c"},
		})
		require.NoError(t, err)

		rules, err := s.ListAutoReplies(ctx, business)
		require.NoError(t, err)
		require.Len(t, rules, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{rules[0].Response, rules[1].Response, rules[2].Response})

		first.Response = "A"
		require.NoError(t, s.UpdateAutoReply(ctx, first))
		assert.Equal(t, 1, first.Position)

		require.NoError(t, s.DeleteAutoReply(ctx, first.ID))
		assert.ErrorIs(t, s.DeleteAutoReply(ctx, first.ID), store.ErrNotFound)
	})

	t.Run("sessions and messages", func(t *testing.T) {
		session := &models.Session{BusinessID: business, VisitorID: "v1"}
		require.NoError(t, s.CreateSession(ctx, session))

		_, err := s.PatchSession(ctx, session.ID, models.SessionPatch{Metadata: models.Metadata{"note": "x"}}, 1)
		require.NoError(t, err)
		_, err = s.PatchSession(ctx, session.ID, models.SessionPatch{Metadata: models.Metadata{"note": "y"}}, 1)
		assert.ErrorIs(t, err, store.ErrVersionConflict)

		closed := models.SessionStatusClosed
		_, err = s.PatchSession(ctx, session.ID, models.SessionPatch{Status: &closed}, 0)
		require.NoError(t, err)

		history, err := s.SessionHistory(ctx, session.ID, 10)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, audit.ActionClose, history[0].Action)
		assert.Equal(t, audit.ActionUpdateMetadata, history[1].Action)
		assert.Equal(t, 3, history[0].Version)

		msg := models.NewMessage(session.ID, models.SenderUser, "hi", false)
		require.NoError(t, s.AppendMessage(ctx, &msg))
		require.NoError(t, s.AppendMessage(ctx, &msg))
		messages, err := s.ListMessages(ctx, session.ID)
		require.NoError(t, err)
		assert.Len(t, messages, 1)

		orphan := models.NewMessage(uuid.New(), models.SenderUser, "hi", false)
		assert.ErrorIs(t, s.AppendMessage(ctx, &orphan), store.ErrNotFound)
	})
}
