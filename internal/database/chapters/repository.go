// Package chapters provides database operations for book chapters.
package chapters

import (
	"gorm.io/gorm"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/database"
	"github.com/yahayabawa/maktaba/internal/entities"
)

// Repository handles chapter database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new chapters repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create validates and persists a new chapter. The parent book must exist.
func (r *Repository) Create(chapter *entities.Chapter) error {
	chapter.Normalize()
	if err := chapter.Validate(); err != nil {
		return err
	}
	var count int64
	if err := r.db.Model(&entities.Book{}).
		Where("id = ?", chapter.BookID).Count(&count).Error; err != nil {
		return database.TranslateError(err, "book")
	}
	if count == 0 {
		return apperror.NewNotFound("book")
	}
	if err := r.db.Create(chapter).Error; err != nil {
		if dup, ok := database.TranslateError(err, "chapter").(*apperror.Error); ok &&
			dup.Kind == apperror.KindDuplicate {
			return apperror.NewValidation(
				[]string{"orderNumber"},
				[]string{"a chapter with this order number already exists for the book"})
		}
		return database.TranslateError(err, "chapter")
	}
	return nil
}

// ListByBook returns a book's chapters in reading order.
func (r *Repository) ListByBook(bookID uint) ([]entities.Chapter, error) {
	var chapters []entities.Chapter
	err := r.db.Where("book_id = ?", bookID).
		Order("order_number ASC").Find(&chapters).Error
	return chapters, database.TranslateError(err, "chapter")
}

// Get retrieves one chapter, scoped to its book so chapter IDs cannot be
// reached through the wrong book.
func (r *Repository) Get(bookID, chapterID uint) (*entities.Chapter, error) {
	var chapter entities.Chapter
	err := r.db.Where("book_id = ? AND id = ?", bookID, chapterID).
		First(&chapter).Error
	if err != nil {
		return nil, database.TranslateError(err, "chapter")
	}
	return &chapter, nil
}

// Update validates and persists changes to an existing chapter.
func (r *Repository) Update(chapter *entities.Chapter) error {
	chapter.Normalize()
	if err := chapter.Validate(); err != nil {
		return err
	}
	return database.TranslateError(r.db.Save(chapter).Error, "chapter")
}

// Delete removes one chapter of a book.
func (r *Repository) Delete(bookID, chapterID uint) error {
	res := r.db.Where("book_id = ? AND id = ?", bookID, chapterID).
		Delete(&entities.Chapter{})
	if res.Error != nil {
		return database.TranslateError(res.Error, "chapter")
	}
	if res.RowsAffected == 0 {
		return apperror.NewNotFound("chapter")
	}
	return nil
}
