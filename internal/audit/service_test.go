package audit

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yahayabawa/maktaba/internal/database"
	auditrepo "github.com/yahayabawa/maktaba/internal/database/audit"
	"github.com/yahayabawa/maktaba/internal/entities"
)

func setupAuditTestDB(t *testing.T) (*Service, func()) {
	t.Helper()

	dbPath := "./test_audit_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewService(auditrepo.NewRepository(db.DB)), cleanup
}

func logEvent(t *testing.T, svc *Service, userID uint, eventType entities.AuditEventType, action string) {
	t.Helper()
	require.NoError(t, svc.Log(&entities.AuditEvent{
		UserID:    userID,
		EventType: eventType,
		Action:    action,
		Status:    entities.AuditStatusSuccess,
	}))
}

func TestLog(t *testing.T) {
	svc, cleanup := setupAuditTestDB(t)
	defer cleanup()

	t.Run("sets created at when missing", func(t *testing.T) {
		event := entities.AuditEvent{
			UserID:    1,
			EventType: entities.AuditEventCatalog,
			Action:    "book_create",
			Status:    entities.AuditStatusSuccess,
		}
		require.NoError(t, svc.Log(&event))
		assert.WithinDuration(t, time.Now(), event.CreatedAt, 5*time.Second)
	})

	t.Run("preserves an explicit created at", func(t *testing.T) {
		stamp := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		event := entities.AuditEvent{
			UserID:    1,
			EventType: entities.AuditEventAuth,
			Action:    "user_login",
			Status:    entities.AuditStatusFailed,
			CreatedAt: stamp,
		}
		require.NoError(t, svc.Log(&event))
		assert.True(t, event.CreatedAt.Equal(stamp))
	})
}

func TestList(t *testing.T) {
	svc, cleanup := setupAuditTestDB(t)
	defer cleanup()

	logEvent(t, svc, 1, entities.AuditEventCatalog, "book_create")
	logEvent(t, svc, 1, entities.AuditEventCatalog, "book_delete")
	logEvent(t, svc, 2, entities.AuditEventCirculation, "book_borrow")
	logEvent(t, svc, 2, entities.AuditEventAuth, "user_login")

	t.Run("all events", func(t *testing.T) {
		events, total, err := svc.List(auditrepo.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, events, 4)
	})

	t.Run("filter by type", func(t *testing.T) {
		events, total, err := svc.List(auditrepo.Filter{EventType: entities.AuditEventCatalog})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, event := range events {
			assert.Equal(t, entities.AuditEventCatalog, event.EventType)
		}
	})

	t.Run("filter by user", func(t *testing.T) {
		_, total, err := svc.List(auditrepo.Filter{UserID: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("pagination keeps the full total", func(t *testing.T) {
		events, total, err := svc.List(auditrepo.Filter{Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, events, 3)
	})
}

func TestCirculationHelper(t *testing.T) {
	svc, cleanup := setupAuditTestDB(t)
	defer cleanup()

	bookID := uint(7)
	require.NoError(t, svc.Log(&entities.AuditEvent{
		UserID:     3,
		EventType:  entities.AuditEventCirculation,
		Action:     "book_borrow",
		EntityType: "book",
		EntityID:   &bookID,
		Status:     entities.AuditStatusFailed,
		ErrorMsg:   "no copies available",
	}))

	events, _, err := svc.List(auditrepo.Filter{UserID: 3})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entities.AuditStatusFailed, events[0].Status)
	require.NotNil(t, events[0].EntityID)
	assert.Equal(t, uint(7), *events[0].EntityID)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcde", truncate("abcdefgh", 5))
}
