package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/audit"
	"github.com/yahayabawa/maktaba/internal/catalog"
	"github.com/yahayabawa/maktaba/internal/database/books"
	"github.com/yahayabawa/maktaba/internal/database/categories"
	"github.com/yahayabawa/maktaba/internal/entities"
)

type CategoriesController struct {
	categories *categories.Repository
	books      *books.Repository
	catalog    *catalog.Service
	audit      *audit.Service
}

func NewCategoriesController(categoriesRepo *categories.Repository, booksRepo *books.Repository, catalogSvc *catalog.Service, auditSvc *audit.Service) *CategoriesController {
	return &CategoriesController{
		categories: categoriesRepo,
		books:      booksRepo,
		catalog:    catalogSvc,
		audit:      auditSvc,
	}
}

// List returns categories, optionally filtered by search or featured flag.
func (controller *CategoriesController) List(c *gin.Context) {
	result, err := controller.categories.List(c.Query("search"), parseBoolQuery(c, "featured"), c.Query("sort"))
	if err != nil {
		respondError(c, err, "list categories")
		return
	}
	respondList(c, result, len(result))
}

// Featured returns every featured category.
func (controller *CategoriesController) Featured(c *gin.Context) {
	result, err := controller.categories.Featured()
	if err != nil {
		respondError(c, err, "featured categories")
		return
	}
	respondList(c, result, len(result))
}

// Get returns a single category.
func (controller *CategoriesController) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "get category")
		return
	}
	category, err := controller.categories.GetByID(id)
	if err != nil {
		respondError(c, err, "get category")
		return
	}
	respondData(c, category)
}

// Books returns all books filed under a category.
func (controller *CategoriesController) Books(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "category books")
		return
	}
	if _, err := controller.categories.GetByID(id); err != nil {
		respondError(c, err, "category books")
		return
	}
	result, err := controller.books.ByCategory(id)
	if err != nil {
		respondError(c, err, "category books")
		return
	}
	respondList(c, result, len(result))
}

// Create adds a category.
func (controller *CategoriesController) Create(c *gin.Context) {
	var category entities.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		respondError(c, apperror.Wrap(apperror.KindValidation, "invalid category payload", err), "create category")
		return
	}
	if err := controller.categories.Create(&category); err != nil {
		respondError(c, err, "create category")
		return
	}
	controller.audit.LogCatalog(currentUserID(c), "category_create", "category", category.ID, category.Name)
	respondCreated(c, "category created successfully", category)
}

// Update modifies a category. The cached book count and the featured-book
// pointer are not writable through this endpoint.
func (controller *CategoriesController) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "update category")
		return
	}
	existing, err := controller.categories.GetByID(id)
	if err != nil {
		respondError(c, err, "update category")
		return
	}

	category := *existing
	if err := c.ShouldBindJSON(&category); err != nil {
		respondError(c, apperror.Wrap(apperror.KindValidation, "invalid category payload", err), "update category")
		return
	}
	category.ID = existing.ID
	category.BookCount = existing.BookCount
	category.FeaturedBookID = existing.FeaturedBookID
	category.FeaturedBookTitle = existing.FeaturedBookTitle
	category.CreatedAt = existing.CreatedAt

	if err := controller.categories.Update(&category); err != nil {
		respondError(c, err, "update category")
		return
	}
	controller.audit.LogCatalog(currentUserID(c), "category_update", "category", category.ID, category.Name)
	respondMessage(c, "category updated successfully", category)
}

// Delete removes an empty category. Categories that still hold books are
// rejected with the authoritative book count.
func (controller *CategoriesController) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "delete category")
		return
	}
	category, err := controller.categories.GetByID(id)
	if err != nil {
		respondError(c, err, "delete category")
		return
	}
	if err := controller.catalog.DeleteCategory(id); err != nil {
		respondError(c, err, "delete category")
		return
	}
	controller.audit.LogCatalog(currentUserID(c), "category_delete", "category", id, category.Name)
	respondMessage(c, "category deleted successfully", nil)
}

// SetFeaturedBook points the category at one of its books and snapshots
// the book's title.
func (controller *CategoriesController) SetFeaturedBook(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "set featured book")
		return
	}

	var payload struct {
		BookID uint `json:"bookId"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.BookID == 0 {
		respondError(c, apperror.New(apperror.KindValidation, "please provide a bookId"), "set featured book")
		return
	}

	category, err := controller.catalog.SetFeaturedBook(id, payload.BookID)
	if err != nil {
		respondError(c, err, "set featured book")
		return
	}
	respondMessage(c, "featured book updated successfully", category)
}
