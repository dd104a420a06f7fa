// Package audit provides database operations for the append-only activity
// log shown on the admin dashboard.
package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/yahayabawa/maktaba/internal/database"
	"github.com/yahayabawa/maktaba/internal/entities"
)

const defaultPageSize = 50

// Repository handles audit event database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new audit repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent appends one event. Events are never updated or deleted.
func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return database.TranslateError(r.db.Create(event).Error, "audit event")
}

// Filter narrows a paginated event listing. Zero values mean "any".
type Filter struct {
	UserID    uint
	EventType entities.AuditEventType
	Limit     int
	Offset    int
}

// List returns events newest first along with the total matching count.
func (r *Repository) List(filter Filter) ([]entities.AuditEvent, int64, error) {
	query := r.db.Model(&entities.AuditEvent{})
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.EventType != "" {
		query = query.Where("event_type = ?", filter.EventType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, database.TranslateError(err, "audit event")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var events []entities.AuditEvent
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, database.TranslateError(err, "audit event")
}

// Recent returns events since a specific time, newest first.
func (r *Repository) Recent(since time.Time) ([]entities.AuditEvent, error) {
	var events []entities.AuditEvent
	err := r.db.Where("created_at > ?", since).
		Order("created_at DESC").Find(&events).Error
	return events, database.TranslateError(err, "audit event")
}
