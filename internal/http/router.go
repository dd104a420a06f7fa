package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yahayabawa/maktaba/internal/auth"
	"github.com/yahayabawa/maktaba/internal/entities"
	"github.com/yahayabawa/maktaba/internal/uploads"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Reads are public; catalog mutations require the librarian or admin role;
// user management and dashboards are admin only.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Books, cfg.Loans, cfg.Catalog, cfg.UploadStore, cfg.UploadCleaner, cfg.Audit, cfg.Metadata)
	chaptersController := NewChaptersController(cfg.Chapters, cfg.Books)
	categoriesController := NewCategoriesController(cfg.Categories, cfg.Books, cfg.Catalog, cfg.Audit)
	scholarsController := NewScholarsController(cfg.Scholars, cfg.Books, cfg.Catalog, cfg.UploadStore, cfg.UploadCleaner, cfg.Audit)
	usersController := NewUsersController(cfg.Users, cfg.Loans, cfg.Auth, cfg.Circulation, cfg.Audit)
	adminController := NewAdminController(cfg.Books, cfg.Categories, cfg.Scholars, cfg.Users, cfg.Loans, cfg.Catalog, cfg.Audit)
	uploadsController := NewUploadsController(cfg.UploadStore, cfg.UploadCleaner)

	authenticated := auth.RequireAuth(cfg.Auth)
	staff := auth.RequireRole(entities.RoleLibrarian, entities.RoleAdmin)
	adminOnly := auth.RequireRole(entities.RoleAdmin)

	router.GET("/health", health.Status)
	router.Static(uploads.URLPrefix, cfg.UploadStore.Root())

	api := router.Group("/api")

	// Public catalog reads
	apiBooks := api.Group("/books")
	{
		apiBooks.GET("", booksController.List)
		apiBooks.GET("/featured", booksController.Featured)
		apiBooks.GET("/search", booksController.Search)
		apiBooks.GET("/category/:id", booksController.ByCategory)
		apiBooks.GET("/scholar/:id", booksController.ByScholar)
		apiBooks.GET("/:id", booksController.Get)
		apiBooks.GET("/:id/download", booksController.Download)
		apiBooks.GET("/:id/chapters", chaptersController.List)
		apiBooks.GET("/:id/chapters/:chapterId", chaptersController.Get)
	}

	apiCategories := api.Group("/categories")
	{
		apiCategories.GET("", categoriesController.List)
		apiCategories.GET("/featured", categoriesController.Featured)
		apiCategories.GET("/:id", categoriesController.Get)
		apiCategories.GET("/:id/books", categoriesController.Books)
	}

	apiScholars := api.Group("/scholars")
	{
		apiScholars.GET("", scholarsController.List)
		apiScholars.GET("/featured", scholarsController.Featured)
		apiScholars.GET("/:id", scholarsController.Get)
		apiScholars.GET("/:id/works", scholarsController.Works)
		apiScholars.GET("/:id/timeline", scholarsController.Timeline)
	}

	// Account endpoints
	api.POST("/users/register", usersController.Register)
	api.POST("/users/login", usersController.Login)

	apiUsers := api.Group("/users", authenticated)
	{
		apiUsers.GET("/profile", usersController.Profile)
		apiUsers.PUT("/profile", usersController.UpdateProfile)
		apiUsers.PUT("/password", usersController.ChangePassword)
		apiUsers.POST("/borrow/:bookId", usersController.Borrow)
		apiUsers.POST("/return/:bookId", usersController.Return)
	}

	// Catalog mutations, librarian or admin
	apiStaff := api.Group("", authenticated, staff)
	{
		apiStaff.GET("/books/lookup", booksController.Lookup)
		apiStaff.POST("/books", booksController.Create)
		apiStaff.PUT("/books/:id", booksController.Update)
		apiStaff.DELETE("/books/:id", booksController.Delete)
		apiStaff.POST("/books/:id/chapters", chaptersController.Create)
		apiStaff.PUT("/books/:id/chapters/:chapterId", chaptersController.Update)
		apiStaff.DELETE("/books/:id/chapters/:chapterId", chaptersController.Delete)

		apiStaff.POST("/categories", categoriesController.Create)
		apiStaff.PUT("/categories/:id", categoriesController.Update)
		apiStaff.DELETE("/categories/:id", categoriesController.Delete)
		apiStaff.PUT("/categories/:id/featured-book", categoriesController.SetFeaturedBook)

		apiStaff.POST("/scholars", scholarsController.Create)
		apiStaff.PUT("/scholars/:id", scholarsController.Update)
		apiStaff.DELETE("/scholars/:id", scholarsController.Delete)
		apiStaff.PUT("/scholars/:id/timeline", scholarsController.UpdateTimeline)

		apiStaff.POST("/upload/book", uploadsController.UploadBook)
		apiStaff.POST("/upload/image", uploadsController.UploadImage)
		apiStaff.DELETE("/upload/:type/:filename", uploadsController.Delete)
		apiStaff.GET("/upload/config", uploadsController.Config)
	}

	// User management and dashboards, admin only
	apiAdmin := api.Group("", authenticated, adminOnly)
	{
		apiAdmin.GET("/users", usersController.List)
		apiAdmin.GET("/users/:id", usersController.Get)
		apiAdmin.PUT("/users/:id", usersController.Update)
		apiAdmin.DELETE("/users/:id", usersController.Delete)

		apiAdmin.GET("/admin/stats", adminController.Stats)
		apiAdmin.GET("/admin/scholars", adminController.Scholars)
		apiAdmin.GET("/admin/scholars/:id/books", adminController.ScholarBooks)
		apiAdmin.GET("/admin/categories", adminController.Categories)
		apiAdmin.GET("/admin/users", adminController.Users)
		apiAdmin.GET("/admin/books", adminController.Books)
		apiAdmin.GET("/admin/borrowings", adminController.Borrowings)
		apiAdmin.GET("/admin/audit", adminController.Audit)
		apiAdmin.PUT("/admin/featured/:type/:id", adminController.SetFeatured)
	}

	return router
}
