package http

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/audit"
	"github.com/yahayabawa/maktaba/internal/catalog"
	"github.com/yahayabawa/maktaba/internal/covers"
	"github.com/yahayabawa/maktaba/internal/database/books"
	"github.com/yahayabawa/maktaba/internal/database/loans"
	"github.com/yahayabawa/maktaba/internal/entities"
	"github.com/yahayabawa/maktaba/internal/metadata"
	"github.com/yahayabawa/maktaba/internal/uploads"
	"github.com/yahayabawa/maktaba/internal/utils"
)

const (
	featuredBooksLimit = 6
	searchResultsLimit = 20
	defaultPageSize    = 10
	maxPageSize        = 100
)

// MetadataLookup resolves bibliographic data from an external source.
type MetadataLookup interface {
	ByISBN(ctx context.Context, isbn string) (*metadata.Lookup, error)
	ByTitle(ctx context.Context, title, author string) (*metadata.Lookup, error)
}

type BooksController struct {
	books    *books.Repository
	loans    *loans.Repository
	catalog  *catalog.Service
	store    *uploads.Store
	cleaner  *uploads.Cleaner
	audit    *audit.Service
	metadata MetadataLookup
	covers   *covers.Fetcher
}

func NewBooksController(booksRepo *books.Repository, loansRepo *loans.Repository, catalogSvc *catalog.Service, store *uploads.Store, cleaner *uploads.Cleaner, auditSvc *audit.Service, metadataClient MetadataLookup) *BooksController {
	return &BooksController{
		books:    booksRepo,
		loans:    loansRepo,
		catalog:  catalogSvc,
		store:    store,
		cleaner:  cleaner,
		audit:    auditSvc,
		metadata: metadataClient,
		covers:   covers.NewFetcher(store),
	}
}

// List returns a filtered, paginated page of the catalog.
func (controller *BooksController) List(c *gin.Context) {
	filter := books.Filter{
		Language:  entities.Language(c.Query("language")),
		Available: parseBoolQuery(c, "available"),
		Featured:  parseBoolQuery(c, "featured"),
		Search:    strings.TrimSpace(c.Query("search")),
		Sort:      c.Query("sort"),
		Page:      parseIntQuery(c, "page", 1),
		Limit:     parseIntQuery(c, "limit", defaultPageSize),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > maxPageSize {
		filter.Limit = defaultPageSize
	}
	if raw := c.Query("category"); raw != "" {
		id := parseIntQuery(c, "category", 0)
		if id == 0 {
			respondError(c, apperror.NewBadID("category"), "list books")
			return
		}
		filter.CategoryID = uint(id)
	}
	if raw := c.Query("scholar"); raw != "" {
		id := parseIntQuery(c, "scholar", 0)
		if id == 0 {
			respondError(c, apperror.NewBadID("scholar"), "list books")
			return
		}
		filter.ScholarID = uint(id)
	}

	result, total, err := controller.books.List(filter)
	if err != nil {
		respondError(c, err, "list books")
		return
	}
	respondPage(c, result, len(result), total, filter.Page, filter.Limit)
}

// Featured returns the featured shelf.
func (controller *BooksController) Featured(c *gin.Context) {
	result, err := controller.books.Featured(featuredBooksLimit)
	if err != nil {
		respondError(c, err, "featured books")
		return
	}
	respondList(c, result, len(result))
}

// Search matches the query against title, arabic title, author and
// description.
func (controller *BooksController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		respondError(c, apperror.New(apperror.KindValidation, "please provide a search query"), "search books")
		return
	}
	result, err := controller.books.Search(query, searchResultsLimit)
	if err != nil {
		respondError(c, err, "search books")
		return
	}
	respondList(c, result, len(result))
}

// ByCategory returns all books in a category.
func (controller *BooksController) ByCategory(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "books by category")
		return
	}
	result, err := controller.books.ByCategory(id)
	if err != nil {
		respondError(c, err, "books by category")
		return
	}
	respondList(c, result, len(result))
}

// ByScholar returns all books attributed to a scholar.
func (controller *BooksController) ByScholar(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "books by scholar")
		return
	}
	result, err := controller.books.ByScholar(id)
	if err != nil {
		respondError(c, err, "books by scholar")
		return
	}
	respondList(c, result, len(result))
}

// Get returns a single book with its open loans projected as borrowers.
func (controller *BooksController) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "get book")
		return
	}
	book, err := controller.books.GetByID(id)
	if err != nil {
		respondError(c, err, "get book")
		return
	}
	borrowers, err := controller.loans.ListByBook(id)
	if err != nil {
		respondError(c, err, "get book")
		return
	}
	book.Borrowers = borrowers
	respondData(c, book)
}

// Create adds a book from a multipart form with optional coverImage and
// bookFile parts. Staged uploads are removed again when the catalog write
// fails.
func (controller *BooksController) Create(c *gin.Context) {
	var book entities.Book
	if err := bindBookForm(c, &book); err != nil {
		respondError(c, err, "create book")
		return
	}

	staged, err := controller.stageBookFiles(c, &book)
	if err != nil {
		respondError(c, err, "create book")
		return
	}

	if err := controller.catalog.CreateBook(&book); err != nil {
		for _, path := range staged {
			controller.cleaner.Remove(path)
		}
		respondError(c, err, "create book")
		return
	}
	controller.audit.LogCatalog(currentUserID(c), "book_create", "book", book.ID, book.Title)
	respondCreated(c, "book created successfully", book)
}

// Update replaces a book's fields and optionally its artifacts. Replaced
// artifacts are deleted only after the database write succeeds.
func (controller *BooksController) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "update book")
		return
	}
	existing, err := controller.books.GetByID(id)
	if err != nil {
		respondError(c, err, "update book")
		return
	}

	book := *existing
	if err := bindBookForm(c, &book); err != nil {
		respondError(c, err, "update book")
		return
	}
	book.ID = existing.ID
	book.Downloads = existing.Downloads
	book.CreatedAt = existing.CreatedAt

	staged, err := controller.stageBookFiles(c, &book)
	if err != nil {
		respondError(c, err, "update book")
		return
	}

	if err := controller.catalog.UpdateBook(&book, existing.CategoryID); err != nil {
		for _, path := range staged {
			controller.cleaner.Remove(path)
		}
		respondError(c, err, "update book")
		return
	}

	if book.CoverImage != existing.CoverImage && existing.CoverImage != "" {
		controller.cleaner.Remove(existing.CoverImage)
	}
	if book.FileURL != existing.FileURL && existing.FileURL != "" {
		controller.cleaner.Remove(existing.FileURL)
	}
	controller.audit.LogCatalog(currentUserID(c), "book_update", "book", book.ID, book.Title)
	respondMessage(c, "book updated successfully", book)
}

// Delete removes a book, its chapters and its artifacts. Loans stay in
// place as borrowing history.
func (controller *BooksController) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "delete book")
		return
	}
	book, err := controller.books.GetByID(id)
	if err != nil {
		respondError(c, err, "delete book")
		return
	}
	if err := controller.catalog.DeleteBook(id); err != nil {
		respondError(c, err, "delete book")
		return
	}
	controller.audit.LogCatalog(currentUserID(c), "book_delete", "book", id, book.Title)
	respondMessage(c, "book deleted successfully", nil)
}

// Download increments the download counter and streams the book file.
func (controller *BooksController) Download(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "download book")
		return
	}
	book, err := controller.catalog.RecordDownload(id)
	if err != nil {
		respondError(c, err, "download book")
		return
	}
	fullPath, err := controller.store.Resolve(book.FileURL)
	if err != nil {
		respondError(c, err, "download book")
		return
	}
	c.FileAttachment(fullPath, utils.SanitizeFilename(book.Title)+filepathExt(book.FileURL))
}

// Lookup prefills the book form from OpenLibrary, by ISBN or by title.
func (controller *BooksController) Lookup(c *gin.Context) {
	if controller.metadata == nil {
		respondError(c, apperror.New(apperror.KindInternal, "metadata lookup is not configured"), "book lookup")
		return
	}

	ctx := c.Request.Context()
	if isbn := strings.TrimSpace(c.Query("isbn")); isbn != "" {
		lookup, err := controller.metadata.ByISBN(ctx, isbn)
		if err != nil {
			respondError(c, err, "book lookup")
			return
		}
		respondData(c, lookup)
		return
	}
	if title := strings.TrimSpace(c.Query("title")); title != "" {
		lookup, err := controller.metadata.ByTitle(ctx, title, strings.TrimSpace(c.Query("author")))
		if err != nil {
			respondError(c, err, "book lookup")
			return
		}
		respondData(c, lookup)
		return
	}
	respondError(c, apperror.New(apperror.KindValidation, "please provide an isbn or a title"), "book lookup")
}

// stageBookFiles saves any uploaded artifacts and records their public
// paths on the book. It returns the staged paths so a failed catalog write
// can compensate.
func (controller *BooksController) stageBookFiles(c *gin.Context, book *entities.Book) ([]string, error) {
	var staged []string

	if header, err := c.FormFile("coverImage"); err == nil {
		path, err := controller.store.SaveMultipart(uploads.KindImage, header)
		if err != nil {
			return staged, err
		}
		staged = append(staged, path)
		book.CoverImage = path
	}
	if header, err := c.FormFile("bookFile"); err == nil {
		path, err := controller.store.SaveMultipart(uploads.KindBook, header)
		if err != nil {
			for _, p := range staged {
				controller.cleaner.Remove(p)
			}
			return nil, err
		}
		staged = append(staged, path)
		book.FileURL = path
	}

	// A remote cover URL, typically carried over from a metadata lookup,
	// is mirrored into the local store.
	if strings.HasPrefix(book.CoverImage, "http://") || strings.HasPrefix(book.CoverImage, "https://") {
		path, err := controller.covers.Fetch(c.Request.Context(), book.CoverImage)
		if err != nil {
			for _, p := range staged {
				controller.cleaner.Remove(p)
			}
			return nil, err
		}
		staged = append(staged, path)
		book.CoverImage = path
	}
	return staged, nil
}

// bindBookForm populates a book from either a JSON body or a multipart
// form, depending on the request content type.
func bindBookForm(c *gin.Context, book *entities.Book) error {
	contentType := c.ContentType()
	if contentType == "application/json" {
		if err := c.ShouldBindJSON(book); err != nil {
			return apperror.Wrap(apperror.KindValidation, "invalid book payload", err)
		}
		return nil
	}

	book.Title = c.PostForm("title")
	book.ArabicTitle = c.PostForm("arabicTitle")
	book.Author = c.PostForm("author")
	if v := c.PostForm("isbn"); v != "" {
		book.ISBN = &v
	} else {
		book.ISBN = nil
	}
	book.Publisher = c.PostForm("publisher")
	book.Description = c.PostForm("description")
	book.Shelf = c.PostForm("shelf")
	book.Section = c.PostForm("section")
	if v := c.PostForm("language"); v != "" {
		book.Language = entities.Language(v)
	}
	if v := c.PostForm("scholarId"); v != "" {
		book.ScholarID = uint(parseFormInt(v))
	}
	if v := c.PostForm("categoryId"); v != "" {
		book.CategoryID = uint(parseFormInt(v))
	}
	if v := c.PostForm("publishedYear"); v != "" {
		book.PublishedYear = parseFormInt(v)
	}
	if v := c.PostForm("totalCopies"); v != "" {
		book.TotalCopies = parseFormInt(v)
		if c.PostForm("availableCopies") == "" {
			book.AvailableCopies = book.TotalCopies
		}
	}
	if v := c.PostForm("availableCopies"); v != "" {
		book.AvailableCopies = parseFormInt(v)
	}
	if v := c.PostForm("featured"); v != "" {
		book.Featured = v == "true" || v == "1"
	}
	if v := c.PostForm("coverUrl"); v != "" {
		book.CoverImage = v
	}
	return nil
}
