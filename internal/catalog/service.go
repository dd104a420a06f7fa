// Package catalog keeps the denormalized pieces of the catalog consistent:
// category book counts move with every book mutation inside the same
// transaction, chapters are cascade-deleted with their book, destructive
// deletes are blocked while dependents exist, and orphaned upload artifacts
// are removed once the surrounding write has committed.
package catalog

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/database"
	"github.com/yahayabawa/maktaba/internal/entities"
)

// ArtifactCleaner removes stored upload artifacts. Removal is best-effort
// compensation, never part of the transaction; implementations log and
// retry failures without surfacing them.
type ArtifactCleaner interface {
	Remove(path string)
}

// noopCleaner is used when no artifact storage is configured (tests).
type noopCleaner struct{}

func (noopCleaner) Remove(string) {}

// Service coordinates multi-entity catalog mutations.
type Service struct {
	db        *gorm.DB
	artifacts ArtifactCleaner
}

// NewService creates a catalog service. cleaner may be nil.
func NewService(db *database.Database, cleaner ArtifactCleaner) *Service {
	if cleaner == nil {
		cleaner = noopCleaner{}
	}
	return &Service{db: db.DB, artifacts: cleaner}
}

// CreateBook validates and persists a book, incrementing the target
// category's book count in the same transaction. The referenced scholar and
// category must exist.
func (s *Service) CreateBook(book *entities.Book) error {
	book.Normalize()
	if book.Language == "" {
		book.Language = entities.LanguageArabic
	}
	if book.TotalCopies == 0 {
		book.TotalCopies = 1
		book.AvailableCopies = 1
	}
	if err := book.Validate(); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := requireExists(tx, &entities.Scholar{}, book.ScholarID, "scholar"); err != nil {
			return err
		}
		if err := requireExists(tx, &entities.Category{}, book.CategoryID, "category"); err != nil {
			return err
		}
		if err := tx.Create(book).Error; err != nil {
			return database.TranslateError(err, "book")
		}
		return adjustBookCount(tx, book.CategoryID, +1)
	})
}

// UpdateBook validates and persists changes to a book. When the category
// reference changed from oldCategoryID, both counters are adjusted in the
// same transaction; an unknown new category fails the whole update.
func (s *Service) UpdateBook(book *entities.Book, oldCategoryID uint) error {
	book.Normalize()
	if err := book.Validate(); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := requireExists(tx, &entities.Scholar{}, book.ScholarID, "scholar"); err != nil {
			return err
		}
		if book.CategoryID != oldCategoryID {
			if err := requireExists(tx, &entities.Category{}, book.CategoryID, "category"); err != nil {
				return err
			}
			if err := adjustBookCount(tx, oldCategoryID, -1); err != nil {
				return err
			}
			if err := adjustBookCount(tx, book.CategoryID, +1); err != nil {
				return err
			}
		}
		return database.TranslateError(tx.Save(book).Error, "book")
	})
}

// DeleteBook removes a book, cascade-deletes its chapters and decrements
// its category's book count in one transaction. Artifact files are removed
// only after the transaction commits, so a failed delete loses nothing.
func (s *Service) DeleteBook(id uint) error {
	var book entities.Book
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&book, id).Error; err != nil {
			return database.TranslateError(err, "book")
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.Chapter{}).Error; err != nil {
			return database.TranslateError(err, "chapter")
		}
		if err := adjustBookCount(tx, book.CategoryID, -1); err != nil {
			return err
		}
		return database.TranslateError(tx.Delete(&entities.Book{}, id).Error, "book")
	})
	if err != nil {
		return err
	}

	if book.CoverImage != "" {
		s.artifacts.Remove(book.CoverImage)
	}
	if book.FileURL != "" {
		s.artifacts.Remove(book.FileURL)
	}
	return nil
}

// DeleteCategory removes a category unless books still reference it. The
// dependent count is recomputed from the books table, not read from the
// cached aggregate, so counter drift can never permit a wrong delete.
func (s *Service) DeleteCategory(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var category entities.Category
		if err := tx.First(&category, id).Error; err != nil {
			return database.TranslateError(err, "category")
		}
		var dependents int64
		if err := tx.Model(&entities.Book{}).
			Where("category_id = ?", id).Count(&dependents).Error; err != nil {
			return database.TranslateError(err, "book")
		}
		if dependents > 0 {
			return apperror.NewHasDependents("category", dependents)
		}
		return database.TranslateError(tx.Delete(&entities.Category{}, id).Error, "category")
	})
}

// DeleteScholar removes a scholar unless books still reference them. The
// scholar's image artifact is removed after the delete commits.
func (s *Service) DeleteScholar(id uint) error {
	var scholar entities.Scholar
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&scholar, id).Error; err != nil {
			return database.TranslateError(err, "scholar")
		}
		var dependents int64
		if err := tx.Model(&entities.Book{}).
			Where("scholar_id = ?", id).Count(&dependents).Error; err != nil {
			return database.TranslateError(err, "book")
		}
		if dependents > 0 {
			return apperror.NewHasDependents("scholar", dependents)
		}
		return database.TranslateError(tx.Delete(&entities.Scholar{}, id).Error, "scholar")
	})
	if err != nil {
		return err
	}

	if scholar.Image != "" {
		s.artifacts.Remove(scholar.Image)
	}
	return nil
}

// SetFeaturedBook points a category at a featured book, caching the book's
// title. The snapshot is deliberately not refreshed if the book is renamed
// later.
func (s *Service) SetFeaturedBook(categoryID, bookID uint) (*entities.Category, error) {
	var category entities.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			return database.TranslateError(err, "book")
		}
		if err := tx.First(&category, categoryID).Error; err != nil {
			return database.TranslateError(err, "category")
		}
		category.FeaturedBookID = &book.ID
		category.FeaturedBookTitle = book.Title
		return database.TranslateError(tx.Save(&category).Error, "category")
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// SetFeatured toggles the featured flag on a book, scholar or category.
func (s *Service) SetFeatured(kind string, id uint, featured bool) error {
	var model any
	switch kind {
	case "book":
		model = &entities.Book{}
	case "scholar":
		model = &entities.Scholar{}
	case "category":
		model = &entities.Category{}
	default:
		return apperror.NewValidation(
			[]string{"type"},
			[]string{"invalid type, must be book, scholar, or category"})
	}
	res := s.db.Model(model).Where("id = ?", id).Update("featured", featured)
	if res.Error != nil {
		return database.TranslateError(res.Error, kind)
	}
	if res.RowsAffected == 0 {
		return apperror.NewNotFound(kind)
	}
	return nil
}

// RecordDownload atomically increments a book's download counter and
// returns the book so the caller can stream its file.
func (s *Service) RecordDownload(id uint) (*entities.Book, error) {
	var book entities.Book
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&book, id).Error; err != nil {
			return database.TranslateError(err, "book")
		}
		if book.FileURL == "" {
			return apperror.NewNotFound("downloadable file for this book")
		}
		res := tx.Model(&entities.Book{}).Where("id = ?", id).
			Update("downloads", gorm.Expr("downloads + 1"))
		if res.Error != nil {
			return database.TranslateError(res.Error, "book")
		}
		book.Downloads++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func requireExists(tx *gorm.DB, model any, id uint, resource string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return database.TranslateError(err, resource)
	}
	if count == 0 {
		return apperror.NewNotFound(resource)
	}
	return nil
}

func adjustBookCount(tx *gorm.DB, categoryID uint, delta int) error {
	res := tx.Model(&entities.Category{}).Where("id = ?", categoryID).
		Update("book_count", gorm.Expr("MAX(book_count + ?, 0)", delta))
	if res.Error != nil {
		return database.TranslateError(res.Error, "category")
	}
	if res.RowsAffected == 0 {
		return apperror.NewNotFound(fmt.Sprintf("category %d", categoryID))
	}
	return nil
}
