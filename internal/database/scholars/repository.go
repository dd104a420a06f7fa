// Package scholars provides database operations for scholar records.
// Deletion is guarded by the catalog service, which blocks it while any
// book still references the scholar.
package scholars

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yahayabawa/maktaba/internal/database"
	"github.com/yahayabawa/maktaba/internal/entities"
)

// Repository handles scholar database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new scholars repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create validates and persists a new scholar.
func (r *Repository) Create(scholar *entities.Scholar) error {
	scholar.Normalize()
	if err := scholar.Validate(); err != nil {
		return err
	}
	return database.TranslateError(r.db.Create(scholar).Error, "scholar")
}

// GetByID retrieves a scholar by ID.
func (r *Repository) GetByID(id uint) (*entities.Scholar, error) {
	var scholar entities.Scholar
	if err := r.db.First(&scholar, id).Error; err != nil {
		return nil, database.TranslateError(err, "scholar")
	}
	return &scholar, nil
}

// List returns scholars, optionally filtered by a search term or the
// featured flag, sorted by name.
func (r *Repository) List(search string, featured bool) ([]entities.Scholar, error) {
	q := r.db.Model(&entities.Scholar{})
	if featured {
		q = q.Where("featured = ?", true)
	}
	if search != "" {
		pattern := "%" + strings.TrimSpace(search) + "%"
		q = q.Where(
			"name LIKE ? OR arabic_name LIKE ? OR description LIKE ? OR biography LIKE ?",
			pattern, pattern, pattern, pattern)
	}

	var scholars []entities.Scholar
	err := q.Order("name ASC").Find(&scholars).Error
	return scholars, database.TranslateError(err, "scholar")
}

// Featured returns up to limit featured scholars.
func (r *Repository) Featured(limit int) ([]entities.Scholar, error) {
	var scholars []entities.Scholar
	err := r.db.Where("featured = ?", true).Limit(limit).Find(&scholars).Error
	return scholars, database.TranslateError(err, "scholar")
}

// Update validates and persists changes to an existing scholar.
func (r *Repository) Update(scholar *entities.Scholar) error {
	scholar.Normalize()
	if err := scholar.Validate(); err != nil {
		return err
	}
	return database.TranslateError(r.db.Save(scholar).Error, "scholar")
}

// UpdateTimeline replaces a scholar's timeline.
func (r *Repository) UpdateTimeline(id uint, timeline []entities.TimelineEvent) (*entities.Scholar, error) {
	scholar, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	scholar.Timeline = timeline
	if err := r.Update(scholar); err != nil {
		return nil, err
	}
	return scholar, nil
}

// Count returns the total number of scholars.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Scholar{}).Count(&count).Error
	return count, database.TranslateError(err, "scholar")
}
