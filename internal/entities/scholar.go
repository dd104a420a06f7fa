package entities

import (
	"strings"
	"time"

	"github.com/yahayabawa/maktaba/internal/apperror"
)

// TimelineEvent is one entry in a scholar's biographical timeline.
type TimelineEvent struct {
	Year        int    `json:"year"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Scholar is a biographical entity referenced, never owned, by books.
type Scholar struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"index;size:256" json:"name"`
	ArabicName  string          `gorm:"size:256" json:"arabicName,omitempty"`
	Initial     string          `gorm:"size:8" json:"initial"`
	Era         string          `gorm:"size:128" json:"era"`
	Description string          `gorm:"type:text" json:"description"`
	Biography   string          `gorm:"type:text" json:"biography"`
	Specialties []string        `gorm:"serializer:json" json:"specialties,omitempty"`
	BirthYear   int             `json:"birthYear,omitempty"`
	DeathYear   int             `json:"deathYear,omitempty"`
	BirthPlace  string          `gorm:"size:256" json:"birthPlace,omitempty"`
	Image       string          `gorm:"size:1024" json:"image,omitempty"`
	Timeline    []TimelineEvent `gorm:"serializer:json" json:"timeline,omitempty"`
	Students    int             `gorm:"default:0" json:"students"`
	ActiveYears string          `gorm:"size:64" json:"activeYears,omitempty"`
	Featured    bool            `gorm:"default:false" json:"featured"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Normalize trims string fields, including each specialty.
func (s *Scholar) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.ArabicName = strings.TrimSpace(s.ArabicName)
	s.Initial = strings.TrimSpace(s.Initial)
	s.Era = strings.TrimSpace(s.Era)
	s.Description = strings.TrimSpace(s.Description)
	s.Biography = strings.TrimSpace(s.Biography)
	s.BirthPlace = strings.TrimSpace(s.BirthPlace)
	s.ActiveYears = strings.TrimSpace(s.ActiveYears)
	for i, sp := range s.Specialties {
		s.Specialties[i] = strings.TrimSpace(sp)
	}
}

// Validate checks required fields and timeline entries.
func (s *Scholar) Validate() error {
	var fields, msgs []string
	if s.Name == "" {
		fields = append(fields, "name")
		msgs = append(msgs, "please provide the scholar name")
	}
	if s.Initial == "" {
		fields = append(fields, "initial")
		msgs = append(msgs, "please provide an initial")
	}
	if s.Era == "" {
		fields = append(fields, "era")
		msgs = append(msgs, "please provide the scholar's era")
	}
	if s.Description == "" {
		fields = append(fields, "description")
		msgs = append(msgs, "please provide a description about the scholar")
	}
	if s.Biography == "" {
		fields = append(fields, "biography")
		msgs = append(msgs, "please provide a biography")
	}
	for _, ev := range s.Timeline {
		if ev.Year == 0 || strings.TrimSpace(ev.Title) == "" || strings.TrimSpace(ev.Description) == "" {
			fields = append(fields, "timeline")
			msgs = append(msgs, "timeline entries require year, title and description")
			break
		}
	}
	if len(fields) > 0 {
		return apperror.NewValidation(fields, msgs)
	}
	return nil
}
