package catalog

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/database"
	"github.com/yahayabawa/maktaba/internal/entities"
)

func setupCatalogTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()

	dbPath := "./test_catalog_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

// recordingCleaner captures compensating deletes for assertions.
type recordingCleaner struct {
	removed []string
}

func (r *recordingCleaner) Remove(path string) {
	r.removed = append(r.removed, path)
}

func seedTaxonomy(t *testing.T, db *database.Database) (scholarID uint, fiqhID uint, aqeedahID uint) {
	t.Helper()

	scholar := entities.Scholar{Name: "Ibn Kathir", Initial: "K", Era: "8th century AH", Description: "exegete", Biography: "bio"}
	require.NoError(t, db.DB.Create(&scholar).Error)

	fiqh := entities.Category{Name: "Fiqh", Description: "jurisprudence", Icon: "scale"}
	require.NoError(t, db.DB.Create(&fiqh).Error)
	aqeedah := entities.Category{Name: "Aqeedah", Description: "creed", Icon: "heart"}
	require.NoError(t, db.DB.Create(&aqeedah).Error)

	return scholar.ID, fiqh.ID, aqeedah.ID
}

func bookCount(t *testing.T, db *database.Database, categoryID uint) int64 {
	t.Helper()
	var category entities.Category
	require.NoError(t, db.DB.First(&category, categoryID).Error)
	return category.BookCount
}

func newBook(scholarID, categoryID uint, title string) entities.Book {
	return entities.Book{
		Title:       title,
		Author:      "Ibn Kathir",
		ScholarID:   scholarID,
		CategoryID:  categoryID,
		Description: "a test volume",
	}
}

func TestCreateBook(t *testing.T) {
	t.Run("increments the category book count", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		scholarID, fiqhID, _ := seedTaxonomy(t, db)

		svc := NewService(db, nil)
		book := newBook(scholarID, fiqhID, "Umdat al-Fiqh")
		require.NoError(t, svc.CreateBook(&book))

		assert.Equal(t, int64(1), bookCount(t, db, fiqhID))
		assert.Equal(t, 1, book.TotalCopies, "copies default to one")
		assert.Equal(t, entities.LanguageArabic, book.Language)
	})

	t.Run("stores zero available copies as given", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		scholarID, fiqhID, _ := seedTaxonomy(t, db)

		svc := NewService(db, nil)
		book := newBook(scholarID, fiqhID, "All Lent Out")
		book.TotalCopies = 5
		book.AvailableCopies = 0
		require.NoError(t, svc.CreateBook(&book))

		var reloaded entities.Book
		require.NoError(t, db.DB.First(&reloaded, book.ID).Error)
		assert.Equal(t, 5, reloaded.TotalCopies)
		assert.Equal(t, 0, reloaded.AvailableCopies)
	})

	t.Run("rejects unknown scholar without touching counts", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		_, fiqhID, _ := seedTaxonomy(t, db)

		svc := NewService(db, nil)
		book := newBook(9999, fiqhID, "Orphan Book")
		err := svc.CreateBook(&book)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
		assert.Equal(t, int64(0), bookCount(t, db, fiqhID))
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		scholarID, _, _ := seedTaxonomy(t, db)

		svc := NewService(db, nil)
		book := newBook(scholarID, 9999, "Nowhere Book")
		err := svc.CreateBook(&book)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})

	t.Run("maps duplicate isbn to a field error", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		scholarID, fiqhID, _ := seedTaxonomy(t, db)

		svc := NewService(db, nil)
		isbn := "978-0-0000-0000-1"
		first := newBook(scholarID, fiqhID, "First")
		first.ISBN = &isbn
		require.NoError(t, svc.CreateBook(&first))

		second := newBook(scholarID, fiqhID, "Second")
		second.ISBN = &isbn
		err := svc.CreateBook(&second)
		require.Error(t, err)

		appErr := apperror.From(err)
		assert.Equal(t, apperror.KindDuplicate, appErr.Kind)
		assert.Contains(t, appErr.Fields, "isbn")
		assert.Equal(t, int64(1), bookCount(t, db, fiqhID), "failed create must not bump the count")
	})
}

func TestUpdateBook(t *testing.T) {
	t.Run("moving categories adjusts both counts", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		scholarID, fiqhID, aqeedahID := seedTaxonomy(t, db)

		svc := NewService(db, nil)
		book := newBook(scholarID, fiqhID, "Wandering Volume")
		require.NoError(t, svc.CreateBook(&book))
		require.Equal(t, int64(1), bookCount(t, db, fiqhID))

		book.CategoryID = aqeedahID
		require.NoError(t, svc.UpdateBook(&book, fiqhID))

		assert.Equal(t, int64(0), bookCount(t, db, fiqhID))
		assert.Equal(t, int64(1), bookCount(t, db, aqeedahID))
	})

	t.Run("unknown target category fails atomically", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		scholarID, fiqhID, _ := seedTaxonomy(t, db)

		svc := NewService(db, nil)
		book := newBook(scholarID, fiqhID, "Stuck Volume")
		require.NoError(t, svc.CreateBook(&book))

		book.CategoryID = 9999
		err := svc.UpdateBook(&book, fiqhID)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
		assert.Equal(t, int64(1), bookCount(t, db, fiqhID), "failed move must leave both counts alone")
	})

	t.Run("books without isbn update independently", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		scholarID, fiqhID, _ := seedTaxonomy(t, db)

		svc := NewService(db, nil)
		first := newBook(scholarID, fiqhID, "Unnumbered One")
		require.NoError(t, svc.CreateBook(&first))
		second := newBook(scholarID, fiqhID, "Unnumbered Two")
		require.NoError(t, svc.CreateBook(&second))

		first.Description = "revised"
		require.NoError(t, svc.UpdateBook(&first, fiqhID))
		second.Description = "also revised"
		require.NoError(t, svc.UpdateBook(&second, fiqhID))

		var reloaded entities.Book
		require.NoError(t, db.DB.First(&reloaded, second.ID).Error)
		assert.Nil(t, reloaded.ISBN, "a missing isbn stays NULL across updates")
	})

	t.Run("same-category update leaves counts alone", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		scholarID, fiqhID, _ := seedTaxonomy(t, db)

		svc := NewService(db, nil)
		book := newBook(scholarID, fiqhID, "Stable Volume")
		require.NoError(t, svc.CreateBook(&book))

		book.Description = "revised description"
		require.NoError(t, svc.UpdateBook(&book, fiqhID))
		assert.Equal(t, int64(1), bookCount(t, db, fiqhID))
	})
}

func TestDeleteBook(t *testing.T) {
	t.Run("cascades chapters, decrements count, removes artifacts", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		scholarID, fiqhID, _ := seedTaxonomy(t, db)

		cleaner := &recordingCleaner{}
		svc := NewService(db, cleaner)
		book := newBook(scholarID, fiqhID, "Doomed Volume")
		book.CoverImage = "/uploads/images/image-1-aaaa.jpg"
		book.FileURL = "/uploads/books/book-1-bbbb.pdf"
		require.NoError(t, svc.CreateBook(&book))

		chapter := entities.Chapter{BookID: book.ID, OrderNumber: 1, Title: "One", Content: "text"}
		require.NoError(t, db.DB.Create(&chapter).Error)

		require.NoError(t, svc.DeleteBook(book.ID))

		assert.Equal(t, int64(0), bookCount(t, db, fiqhID))
		var chapterRows int64
		require.NoError(t, db.DB.Model(&entities.Chapter{}).Where("book_id = ?", book.ID).Count(&chapterRows).Error)
		assert.Zero(t, chapterRows)
		assert.ElementsMatch(t, []string{book.CoverImage, book.FileURL}, cleaner.removed)
	})

	t.Run("missing book keeps artifacts untouched", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		seedTaxonomy(t, db)

		cleaner := &recordingCleaner{}
		svc := NewService(db, cleaner)
		err := svc.DeleteBook(9999)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
		assert.Empty(t, cleaner.removed)
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("rejects while books remain, reporting the true count", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		scholarID, fiqhID, _ := seedTaxonomy(t, db)

		svc := NewService(db, nil)
		book := newBook(scholarID, fiqhID, "Anchor Volume")
		require.NoError(t, svc.CreateBook(&book))

		// Drift the cached count; the guard must recompute from the books table
		require.NoError(t, db.DB.Model(&entities.Category{}).
			Where("id = ?", fiqhID).Update("book_count", 0).Error)

		err := svc.DeleteCategory(fiqhID)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindHasDependents))
	})

	t.Run("deletes an empty category", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		_, fiqhID, _ := seedTaxonomy(t, db)

		svc := NewService(db, nil)
		require.NoError(t, svc.DeleteCategory(fiqhID))

		var rows int64
		require.NoError(t, db.DB.Model(&entities.Category{}).Where("id = ?", fiqhID).Count(&rows).Error)
		assert.Zero(t, rows)
	})
}

func TestDeleteScholar(t *testing.T) {
	t.Run("rejects while attributed books remain", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		scholarID, fiqhID, _ := seedTaxonomy(t, db)

		svc := NewService(db, nil)
		book := newBook(scholarID, fiqhID, "Attributed Volume")
		require.NoError(t, svc.CreateBook(&book))

		err := svc.DeleteScholar(scholarID)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindHasDependents))
	})

	t.Run("removes the portrait artifact after delete", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()

		scholar := entities.Scholar{Name: "Lonely Scholar", Initial: "L", Era: "modern", Description: "d", Biography: "b", Image: "/uploads/images/image-2-cccc.png"}
		require.NoError(t, db.DB.Create(&scholar).Error)

		cleaner := &recordingCleaner{}
		svc := NewService(db, cleaner)
		require.NoError(t, svc.DeleteScholar(scholar.ID))
		assert.Equal(t, []string{scholar.Image}, cleaner.removed)
	})
}

func TestSetFeaturedBook(t *testing.T) {
	t.Run("snapshots the current title", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		scholarID, fiqhID, _ := seedTaxonomy(t, db)

		svc := NewService(db, nil)
		book := newBook(scholarID, fiqhID, "Featured Volume")
		require.NoError(t, svc.CreateBook(&book))

		category, err := svc.SetFeaturedBook(fiqhID, book.ID)
		require.NoError(t, err)
		require.NotNil(t, category.FeaturedBookID)
		assert.Equal(t, book.ID, *category.FeaturedBookID)
		assert.Equal(t, "Featured Volume", category.FeaturedBookTitle)

		// A later rename does not refresh the snapshot
		require.NoError(t, db.DB.Model(&book).Update("title", "Renamed Volume").Error)
		var reloaded entities.Category
		require.NoError(t, db.DB.First(&reloaded, fiqhID).Error)
		assert.Equal(t, "Featured Volume", reloaded.FeaturedBookTitle)
	})

	t.Run("unknown book fails", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		_, fiqhID, _ := seedTaxonomy(t, db)

		svc := NewService(db, nil)
		_, err := svc.SetFeaturedBook(fiqhID, 9999)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})
}

func TestSetFeatured(t *testing.T) {
	db, cleanup := setupCatalogTestDB(t)
	defer cleanup()
	scholarID, fiqhID, _ := seedTaxonomy(t, db)

	svc := NewService(db, nil)

	require.NoError(t, svc.SetFeatured("scholar", scholarID, true))
	var scholar entities.Scholar
	require.NoError(t, db.DB.First(&scholar, scholarID).Error)
	assert.True(t, scholar.Featured)

	require.NoError(t, svc.SetFeatured("category", fiqhID, true))

	err := svc.SetFeatured("magazine", 1, true)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	err = svc.SetFeatured("book", 9999, true)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestRecordDownload(t *testing.T) {
	t.Run("increments the counter", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		scholarID, fiqhID, _ := seedTaxonomy(t, db)

		svc := NewService(db, nil)
		book := newBook(scholarID, fiqhID, "Popular Volume")
		book.FileURL = "/uploads/books/book-3-dddd.pdf"
		require.NoError(t, svc.CreateBook(&book))

		got, err := svc.RecordDownload(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Downloads)

		got, err = svc.RecordDownload(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Downloads)
	})

	t.Run("rejects books without a file", func(t *testing.T) {
		db, cleanup := setupCatalogTestDB(t)
		defer cleanup()
		scholarID, fiqhID, _ := seedTaxonomy(t, db)

		svc := NewService(db, nil)
		book := newBook(scholarID, fiqhID, "Shelf-Only Volume")
		require.NoError(t, svc.CreateBook(&book))

		_, err := svc.RecordDownload(book.ID)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

		var reloaded entities.Book
		require.NoError(t, db.DB.First(&reloaded, book.ID).Error)
		assert.Zero(t, reloaded.Downloads)
	})
}
