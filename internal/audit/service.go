// Package audit records catalog, circulation and authentication activity
// for the admin dashboard. Logging is fire-and-forget so a slow or broken
// audit write never delays a request.
package audit

import (
	"fmt"
	"log"

	"github.com/yahayabawa/maktaba/internal/database/audit"
	"github.com/yahayabawa/maktaba/internal/entities"
)

type Service struct {
	repo *audit.Repository
}

func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records an event synchronously.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an event in the background.
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if s == nil {
		return
	}
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("failed to log audit event %q: %v", event.Action, err)
		}
	}()
}

// List returns a filtered page of events plus the total matching count.
func (s *Service) List(filter audit.Filter) ([]entities.AuditEvent, int64, error) {
	return s.repo.List(filter)
}

// LogCatalog records a create, update or delete on a catalog entity.
func (s *Service) LogCatalog(userID uint, action, entityType string, entityID uint, name string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventCatalog,
		Action:      action,
		Description: fmt.Sprintf("%s %q", action, name),
		EntityType:  entityType,
		EntityID:    &entityID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogCirculation records a borrow or return, successful or not.
func (s *Service) LogCirculation(userID uint, action string, bookID uint, err error) {
	event := &entities.AuditEvent{
		UserID:     userID,
		EventType:  entities.AuditEventCirculation,
		Action:     action,
		EntityType: "book",
		EntityID:   &bookID,
		Status:     entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	s.LogAsync(event)
}

// LogAuth records a login or registration attempt.
func (s *Service) LogAuth(userID uint, action, ipAddr string, err error) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		Status:    entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	s.LogAsync(event)
}

// LogUser records an administrative change to a member account.
func (s *Service) LogUser(adminID uint, action string, targetID uint, description string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      adminID,
		EventType:   entities.AuditEventUser,
		Action:      action,
		Description: description,
		EntityType:  "user",
		EntityID:    &targetID,
		Status:      entities.AuditStatusSuccess,
	})
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
