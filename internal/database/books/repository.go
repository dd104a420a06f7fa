// Package books provides read and lookup operations for the catalog's book
// records. Mutations with cross-entity side effects (category counts,
// chapter cascades, artifact cleanup) live in the catalog service, which
// runs them inside a single transaction.
package books

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yahayabawa/maktaba/internal/database"
	"github.com/yahayabawa/maktaba/internal/entities"
)

// Filter narrows and pages List queries. Zero values mean "no filter".
type Filter struct {
	CategoryID uint
	ScholarID  uint
	Language   entities.Language
	Available  bool
	Featured   bool
	Search     string
	Sort       string // JSON field name, "-" prefix for descending
	Page       int
	Limit      int
}

// sortColumns maps exposed sort keys to database columns. Unknown keys fall
// back to title.
var sortColumns = map[string]string{
	"title":         "title",
	"author":        "author",
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"downloads":     "downloads",
	"publishedYear": "published_year",
}

// Repository handles book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a book with its scholar and category.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Scholar").Preload("Category").First(&book, id).Error
	if err != nil {
		return nil, database.TranslateError(err, "book")
	}
	return &book, nil
}

// List returns a page of books matching the filter plus the total match
// count for pagination.
func (r *Repository) List(f Filter) ([]entities.Book, int64, error) {
	q := r.db.Model(&entities.Book{})
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.ScholarID != 0 {
		q = q.Where("scholar_id = ?", f.ScholarID)
	}
	if f.Language != "" {
		q = q.Where("language = ?", f.Language)
	}
	if f.Available {
		q = q.Where("available_copies > 0")
	}
	if f.Featured {
		q = q.Where("featured = ?", true)
	}
	if f.Search != "" {
		q = applySearch(q, f.Search)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, database.TranslateError(err, "book")
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}

	var books []entities.Book
	err := q.Preload("Scholar").Preload("Category").
		Order(orderClause(f.Sort)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&books).Error
	if err != nil {
		return nil, 0, database.TranslateError(err, "book")
	}
	return books, total, nil
}

// Featured returns up to limit featured books.
func (r *Repository) Featured(limit int) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Scholar").Preload("Category").
		Where("featured = ?", true).Limit(limit).Find(&books).Error
	return books, database.TranslateError(err, "book")
}

// Search matches query against title, arabic title, author and description.
func (r *Repository) Search(query string, limit int) ([]entities.Book, error) {
	var books []entities.Book
	err := applySearch(r.db.Model(&entities.Book{}), query).
		Preload("Scholar").Preload("Category").
		Limit(limit).Find(&books).Error
	return books, database.TranslateError(err, "book")
}

// ByCategory returns all books in a category.
func (r *Repository) ByCategory(categoryID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Scholar").
		Where("category_id = ?", categoryID).Find(&books).Error
	return books, database.TranslateError(err, "book")
}

// ByScholar returns all books authored by a scholar.
func (r *Repository) ByScholar(scholarID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Category").
		Where("scholar_id = ?", scholarID).Find(&books).Error
	return books, database.TranslateError(err, "book")
}

// All returns every book with its relations, newest first (admin listing).
func (r *Repository) All() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Scholar").Preload("Category").
		Order("created_at DESC").Find(&books).Error
	return books, database.TranslateError(err, "book")
}

// Count returns the total number of books.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, database.TranslateError(err, "book")
}

// CountByCategory returns the authoritative number of books referencing a
// category, bypassing the cached aggregate.
func (r *Repository) CountByCategory(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).
		Where("category_id = ?", categoryID).Count(&count).Error
	return count, database.TranslateError(err, "book")
}

// CountByScholar returns the number of books referencing a scholar.
func (r *Repository) CountByScholar(scholarID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).
		Where("scholar_id = ?", scholarID).Count(&count).Error
	return count, database.TranslateError(err, "book")
}

// TopDownloaded returns the most downloaded books.
func (r *Repository) TopDownloaded(limit int) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("downloads DESC").Limit(limit).Find(&books).Error
	return books, database.TranslateError(err, "book")
}

// Recent returns the most recently added books.
func (r *Repository) Recent(limit int) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("created_at DESC").Limit(limit).Find(&books).Error
	return books, database.TranslateError(err, "book")
}

func applySearch(q *gorm.DB, query string) *gorm.DB {
	pattern := "%" + strings.TrimSpace(query) + "%"
	return q.Where(
		"title LIKE ? OR arabic_title LIKE ? OR author LIKE ? OR description LIKE ?",
		pattern, pattern, pattern, pattern)
}

func orderClause(sort string) string {
	if sort == "" {
		sort = "title"
	}
	desc := strings.HasPrefix(sort, "-")
	key := strings.TrimPrefix(sort, "-")
	col, ok := sortColumns[key]
	if !ok {
		col = "title"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}
