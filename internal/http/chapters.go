package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/database/books"
	"github.com/yahayabawa/maktaba/internal/database/chapters"
	"github.com/yahayabawa/maktaba/internal/entities"
)

type ChaptersController struct {
	chapters *chapters.Repository
	books    *books.Repository
}

func NewChaptersController(chaptersRepo *chapters.Repository, booksRepo *books.Repository) *ChaptersController {
	return &ChaptersController{
		chapters: chaptersRepo,
		books:    booksRepo,
	}
}

// List returns a book's chapters in reading order.
func (controller *ChaptersController) List(c *gin.Context) {
	bookID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "list chapters")
		return
	}
	if _, err := controller.books.GetByID(bookID); err != nil {
		respondError(c, err, "list chapters")
		return
	}
	result, err := controller.chapters.ListByBook(bookID)
	if err != nil {
		respondError(c, err, "list chapters")
		return
	}
	respondList(c, result, len(result))
}

// Get returns one chapter of a book.
func (controller *ChaptersController) Get(c *gin.Context) {
	bookID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "get chapter")
		return
	}
	chapterID, err := parseIDParam(c, "chapterId")
	if err != nil {
		respondError(c, err, "get chapter")
		return
	}
	chapter, err := controller.chapters.Get(bookID, chapterID)
	if err != nil {
		respondError(c, err, "get chapter")
		return
	}
	respondData(c, chapter)
}

// Create adds a chapter to a book. The order number must be unused within
// the book.
func (controller *ChaptersController) Create(c *gin.Context) {
	bookID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "create chapter")
		return
	}
	if _, err := controller.books.GetByID(bookID); err != nil {
		respondError(c, err, "create chapter")
		return
	}

	var chapter entities.Chapter
	if err := c.ShouldBindJSON(&chapter); err != nil {
		respondError(c, apperror.Wrap(apperror.KindValidation, "invalid chapter payload", err), "create chapter")
		return
	}
	chapter.BookID = bookID

	if err := controller.chapters.Create(&chapter); err != nil {
		respondError(c, err, "create chapter")
		return
	}
	respondCreated(c, "chapter created successfully", chapter)
}

// Update modifies a chapter in place.
func (controller *ChaptersController) Update(c *gin.Context) {
	bookID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "update chapter")
		return
	}
	chapterID, err := parseIDParam(c, "chapterId")
	if err != nil {
		respondError(c, err, "update chapter")
		return
	}
	existing, err := controller.chapters.Get(bookID, chapterID)
	if err != nil {
		respondError(c, err, "update chapter")
		return
	}

	chapter := *existing
	if err := c.ShouldBindJSON(&chapter); err != nil {
		respondError(c, apperror.Wrap(apperror.KindValidation, "invalid chapter payload", err), "update chapter")
		return
	}
	chapter.ID = existing.ID
	chapter.BookID = existing.BookID
	chapter.CreatedAt = existing.CreatedAt

	if err := controller.chapters.Update(&chapter); err != nil {
		respondError(c, err, "update chapter")
		return
	}
	respondMessage(c, "chapter updated successfully", chapter)
}

// Delete removes a chapter.
func (controller *ChaptersController) Delete(c *gin.Context) {
	bookID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "delete chapter")
		return
	}
	chapterID, err := parseIDParam(c, "chapterId")
	if err != nil {
		respondError(c, err, "delete chapter")
		return
	}
	if err := controller.chapters.Delete(bookID, chapterID); err != nil {
		respondError(c, err, "delete chapter")
		return
	}
	respondMessage(c, "chapter deleted successfully", nil)
}
