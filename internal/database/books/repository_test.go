package books

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yahayabawa/maktaba/internal/database"
	"github.com/yahayabawa/maktaba/internal/entities"
)

func setupBooksTestDB(t *testing.T) (*Repository, *database.Database, func()) {
	t.Helper()

	dbPath := "./test_books_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), db, cleanup
}

func seedCatalog(t *testing.T, db *database.Database) {
	t.Helper()

	scholarA := entities.Scholar{Name: "Imam An-Nawawi", Initial: "N", Era: "7th century AH", Description: "d", Biography: "b"}
	scholarB := entities.Scholar{Name: "Ibn Kathir", Initial: "K", Era: "8th century AH", Description: "d", Biography: "b"}
	require.NoError(t, db.DB.Create(&scholarA).Error)
	require.NoError(t, db.DB.Create(&scholarB).Error)

	hadith := entities.Category{Name: "Hadith", Description: "d", Icon: "book"}
	tafsir := entities.Category{Name: "Tafsir", Description: "d", Icon: "book"}
	require.NoError(t, db.DB.Create(&hadith).Error)
	require.NoError(t, db.DB.Create(&tafsir).Error)

	seedBooks := []entities.Book{
		{Title: "The Forty Hadith", ArabicTitle: "الأربعون النووية", Author: "Imam An-Nawawi", ScholarID: scholarA.ID, CategoryID: hadith.ID, Description: "foundational hadith", Language: entities.LanguageArabic, TotalCopies: 2, AvailableCopies: 2, Featured: true, Downloads: 10},
		{Title: "Riyadh as-Salihin", Author: "Imam An-Nawawi", ScholarID: scholarA.ID, CategoryID: hadith.ID, Description: "gardens of the righteous", Language: entities.LanguageEnglish, TotalCopies: 1, AvailableCopies: 0, Downloads: 25},
		{Title: "Tafsir Ibn Kathir", Author: "Ibn Kathir", ScholarID: scholarB.ID, CategoryID: tafsir.ID, Description: "exegesis of the Quran", Language: entities.LanguageArabic, TotalCopies: 3, AvailableCopies: 3, Downloads: 5},
	}
	for i := range seedBooks {
		require.NoError(t, db.DB.Create(&seedBooks[i]).Error)
	}
}

func TestList(t *testing.T) {
	t.Run("filters by language", func(t *testing.T) {
		repo, db, cleanup := setupBooksTestDB(t)
		defer cleanup()
		seedCatalog(t, db)

		books, total, err := repo.List(Filter{Language: entities.LanguageArabic})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, books, 2)
	})

	t.Run("filters by availability", func(t *testing.T) {
		repo, db, cleanup := setupBooksTestDB(t)
		defer cleanup()
		seedCatalog(t, db)

		books, total, err := repo.List(Filter{Available: true})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, b := range books {
			assert.Positive(t, b.AvailableCopies)
		}
	})

	t.Run("pages results and reports the full total", func(t *testing.T) {
		repo, db, cleanup := setupBooksTestDB(t)
		defer cleanup()
		seedCatalog(t, db)

		page1, total, err := repo.List(Filter{Limit: 2, Page: 1, Sort: "title"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, page1, 2)

		page2, total, err := repo.List(Filter{Limit: 2, Page: 2, Sort: "title"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, page2, 1)
		assert.NotEqual(t, page1[0].ID, page2[0].ID)
	})

	t.Run("sorts descending with a dash prefix", func(t *testing.T) {
		repo, db, cleanup := setupBooksTestDB(t)
		defer cleanup()
		seedCatalog(t, db)

		books, _, err := repo.List(Filter{Sort: "-downloads"})
		require.NoError(t, err)
		require.Len(t, books, 3)
		assert.Equal(t, "Riyadh as-Salihin", books[0].Title)
	})

	t.Run("ignores unknown sort keys", func(t *testing.T) {
		repo, db, cleanup := setupBooksTestDB(t)
		defer cleanup()
		seedCatalog(t, db)

		books, _, err := repo.List(Filter{Sort: "downloads; DROP TABLE books"})
		require.NoError(t, err)
		require.Len(t, books, 3)
		assert.Equal(t, "Riyadh as-Salihin", books[0].Title, "fallback sort is by title")
	})

	t.Run("search matches across text fields", func(t *testing.T) {
		repo, db, cleanup := setupBooksTestDB(t)
		defer cleanup()
		seedCatalog(t, db)

		books, total, err := repo.List(Filter{Search: "exegesis"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, books, 1)
		assert.Equal(t, "Tafsir Ibn Kathir", books[0].Title)
	})

	t.Run("preloads scholar and category", func(t *testing.T) {
		repo, db, cleanup := setupBooksTestDB(t)
		defer cleanup()
		seedCatalog(t, db)

		books, _, err := repo.List(Filter{})
		require.NoError(t, err)
		require.NotEmpty(t, books)
		require.NotNil(t, books[0].Scholar)
		require.NotNil(t, books[0].Category)
	})
}

func TestSearch(t *testing.T) {
	repo, db, cleanup := setupBooksTestDB(t)
	defer cleanup()
	seedCatalog(t, db)

	t.Run("matches arabic titles", func(t *testing.T) {
		books, err := repo.Search("الأربعون", 20)
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "The Forty Hadith", books[0].Title)
	})

	t.Run("matches authors", func(t *testing.T) {
		books, err := repo.Search("Nawawi", 20)
		require.NoError(t, err)
		assert.Len(t, books, 2)
	})

	t.Run("respects the limit", func(t *testing.T) {
		books, err := repo.Search("a", 1)
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})
}

func TestCounts(t *testing.T) {
	repo, db, cleanup := setupBooksTestDB(t)
	defer cleanup()
	seedCatalog(t, db)

	total, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	var hadith entities.Category
	require.NoError(t, db.DB.Where("name = ?", "Hadith").First(&hadith).Error)
	byCategory, err := repo.CountByCategory(hadith.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byCategory)

	var nawawi entities.Scholar
	require.NoError(t, db.DB.Where("name = ?", "Imam An-Nawawi").First(&nawawi).Error)
	byScholar, err := repo.CountByScholar(nawawi.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byScholar)
}

func TestTopDownloaded(t *testing.T) {
	repo, db, cleanup := setupBooksTestDB(t)
	defer cleanup()
	seedCatalog(t, db)

	top, err := repo.TopDownloaded(2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Riyadh as-Salihin", top[0].Title)
	assert.Equal(t, "The Forty Hadith", top[1].Title)
}

func TestFeatured(t *testing.T) {
	repo, db, cleanup := setupBooksTestDB(t)
	defer cleanup()
	seedCatalog(t, db)

	featured, err := repo.Featured(6)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "The Forty Hadith", featured[0].Title)
}
