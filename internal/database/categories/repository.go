// Package categories provides database operations for category records.
// The cached book count and the delete guard are adjusted by the catalog
// service inside book transactions; this package only reads and writes the
// rows themselves.
package categories

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yahayabawa/maktaba/internal/database"
	"github.com/yahayabawa/maktaba/internal/entities"
)

var sortColumns = map[string]string{
	"name":      "name",
	"bookCount": "book_count",
	"createdAt": "created_at",
}

// Repository handles category database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new categories repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create validates and persists a new category.
func (r *Repository) Create(category *entities.Category) error {
	category.Normalize()
	if err := category.Validate(); err != nil {
		return err
	}
	return database.TranslateError(r.db.Create(category).Error, "category")
}

// GetByID retrieves a category by ID.
func (r *Repository) GetByID(id uint) (*entities.Category, error) {
	var category entities.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, database.TranslateError(err, "category")
	}
	return &category, nil
}

// List returns categories, optionally filtered by a search term or the
// featured flag, sorted by the given key ("-" prefix for descending).
func (r *Repository) List(search string, featured bool, sort string) ([]entities.Category, error) {
	q := r.db.Model(&entities.Category{})
	if featured {
		q = q.Where("featured = ?", true)
	}
	if search != "" {
		pattern := "%" + strings.TrimSpace(search) + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var categories []entities.Category
	err := q.Order(orderClause(sort)).Find(&categories).Error
	return categories, database.TranslateError(err, "category")
}

// Featured returns all featured categories sorted by name.
func (r *Repository) Featured() ([]entities.Category, error) {
	return r.List("", true, "name")
}

// Update validates and persists changes to an existing category.
func (r *Repository) Update(category *entities.Category) error {
	category.Normalize()
	if err := category.Validate(); err != nil {
		return err
	}
	return database.TranslateError(r.db.Save(category).Error, "category")
}

// Count returns the total number of categories.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Category{}).Count(&count).Error
	return count, database.TranslateError(err, "category")
}

func orderClause(sort string) string {
	if sort == "" {
		sort = "name"
	}
	desc := strings.HasPrefix(sort, "-")
	key := strings.TrimPrefix(sort, "-")
	col, ok := sortColumns[key]
	if !ok {
		col = "name"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}
