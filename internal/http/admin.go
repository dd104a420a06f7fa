package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/audit"
	"github.com/yahayabawa/maktaba/internal/catalog"
	auditrepo "github.com/yahayabawa/maktaba/internal/database/audit"
	"github.com/yahayabawa/maktaba/internal/database/books"
	"github.com/yahayabawa/maktaba/internal/database/categories"
	"github.com/yahayabawa/maktaba/internal/database/loans"
	"github.com/yahayabawa/maktaba/internal/database/scholars"
	"github.com/yahayabawa/maktaba/internal/database/users"
	"github.com/yahayabawa/maktaba/internal/entities"
)

const (
	recentUsersLimit  = 5
	topDownloadsLimit = 5
	recentBooksLimit  = 5
	auditPageSize     = 50
)

// AdminController serves the dashboard aggregates. Counts are read fresh
// from the source tables, not from cached aggregates.
type AdminController struct {
	books      *books.Repository
	categories *categories.Repository
	scholars   *scholars.Repository
	users      *users.Repository
	loans      *loans.Repository
	catalog    *catalog.Service
	audit      *audit.Service
}

func NewAdminController(booksRepo *books.Repository, categoriesRepo *categories.Repository, scholarsRepo *scholars.Repository, usersRepo *users.Repository, loansRepo *loans.Repository, catalogSvc *catalog.Service, auditSvc *audit.Service) *AdminController {
	return &AdminController{
		books:      booksRepo,
		categories: categoriesRepo,
		scholars:   scholarsRepo,
		users:      usersRepo,
		loans:      loansRepo,
		catalog:    catalogSvc,
		audit:      auditSvc,
	}
}

// Stats returns the dashboard headline numbers plus recent activity.
func (controller *AdminController) Stats(c *gin.Context) {
	bookCount, err := controller.books.Count()
	if err != nil {
		respondError(c, err, "admin stats")
		return
	}
	categoryCount, err := controller.categories.Count()
	if err != nil {
		respondError(c, err, "admin stats")
		return
	}
	scholarCount, err := controller.scholars.Count()
	if err != nil {
		respondError(c, err, "admin stats")
		return
	}
	userCount, err := controller.users.Count()
	if err != nil {
		respondError(c, err, "admin stats")
		return
	}
	recentUsers, err := controller.users.Recent(recentUsersLimit)
	if err != nil {
		respondError(c, err, "admin stats")
		return
	}
	topDownloads, err := controller.books.TopDownloaded(topDownloadsLimit)
	if err != nil {
		respondError(c, err, "admin stats")
		return
	}
	recentBooks, err := controller.books.Recent(recentBooksLimit)
	if err != nil {
		respondError(c, err, "admin stats")
		return
	}

	respondData(c, gin.H{
		"totalBooks":      bookCount,
		"totalCategories": categoryCount,
		"totalScholars":   scholarCount,
		"totalUsers":      userCount,
		"recentUsers":     recentUsers,
		"topDownloads":    topDownloads,
		"recentBooks":     recentBooks,
	})
}

// Scholars returns every scholar with an authoritative per-scholar book
// count.
func (controller *AdminController) Scholars(c *gin.Context) {
	result, err := controller.scholars.List("", false)
	if err != nil {
		respondError(c, err, "admin scholars")
		return
	}

	type scholarRow struct {
		entities.Scholar
		BookCount int64 `json:"bookCount"`
	}
	rows := make([]scholarRow, 0, len(result))
	for _, scholar := range result {
		count, err := controller.books.CountByScholar(scholar.ID)
		if err != nil {
			respondError(c, err, "admin scholars")
			return
		}
		rows = append(rows, scholarRow{Scholar: scholar, BookCount: count})
	}
	respondList(c, rows, len(rows))
}

// ScholarBooks returns one scholar's books for the dashboard drill-down.
func (controller *AdminController) ScholarBooks(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "admin scholar books")
		return
	}
	if _, err := controller.scholars.GetByID(id); err != nil {
		respondError(c, err, "admin scholar books")
		return
	}
	result, err := controller.books.ByScholar(id)
	if err != nil {
		respondError(c, err, "admin scholar books")
		return
	}
	respondList(c, result, len(result))
}

// Categories returns every category with both the cached and the actual
// book count, so drift is visible in the dashboard.
func (controller *AdminController) Categories(c *gin.Context) {
	result, err := controller.categories.List("", false, "")
	if err != nil {
		respondError(c, err, "admin categories")
		return
	}

	type categoryRow struct {
		entities.Category
		ActualBookCount int64 `json:"actualBookCount"`
	}
	rows := make([]categoryRow, 0, len(result))
	for _, category := range result {
		count, err := controller.books.CountByCategory(category.ID)
		if err != nil {
			respondError(c, err, "admin categories")
			return
		}
		rows = append(rows, categoryRow{Category: category, ActualBookCount: count})
	}
	respondList(c, rows, len(rows))
}

// Users returns every user with how many copies they currently hold.
func (controller *AdminController) Users(c *gin.Context) {
	result, err := controller.users.List()
	if err != nil {
		respondError(c, err, "admin users")
		return
	}

	type userRow struct {
		entities.User
		OpenLoans int64 `json:"openLoans"`
	}
	rows := make([]userRow, 0, len(result))
	for _, user := range result {
		count, err := controller.loans.CountOpenByUser(user.ID)
		if err != nil {
			respondError(c, err, "admin users")
			return
		}
		rows = append(rows, userRow{User: user, OpenLoans: count})
	}
	respondList(c, rows, len(rows))
}

// Books returns the full catalog for the dashboard table.
func (controller *AdminController) Books(c *gin.Context) {
	result, err := controller.books.All()
	if err != nil {
		respondError(c, err, "admin books")
		return
	}
	respondList(c, result, len(result))
}

// Borrowings returns every loan record with both sides resolved.
func (controller *AdminController) Borrowings(c *gin.Context) {
	result, err := controller.loans.All()
	if err != nil {
		respondError(c, err, "admin borrowings")
		return
	}
	respondList(c, result, len(result))
}

// Audit returns a page of the activity log, newest first. Filterable by
// event type and acting user.
func (controller *AdminController) Audit(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := parseIntQuery(c, "limit", auditPageSize)
	if limit < 1 || limit > maxPageSize {
		limit = auditPageSize
	}

	filter := auditrepo.Filter{
		EventType: entities.AuditEventType(c.Query("type")),
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}
	if raw := c.Query("user"); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, apperror.NewBadID("user"), "admin audit")
			return
		}
		filter.UserID = uint(userID)
	}

	events, total, err := controller.audit.List(filter)
	if err != nil {
		respondError(c, err, "admin audit")
		return
	}
	respondPage(c, events, len(events), total, page, limit)
}

// SetFeatured toggles the featured flag on a book, category or scholar.
func (controller *AdminController) SetFeatured(c *gin.Context) {
	kind := c.Param("type")
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "set featured")
		return
	}

	var payload struct {
		Featured *bool `json:"featured"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Featured == nil {
		respondError(c, apperror.New(apperror.KindValidation, "please provide a featured flag"), "set featured")
		return
	}

	if err := controller.catalog.SetFeatured(kind, id, *payload.Featured); err != nil {
		respondError(c, err, "set featured")
		return
	}
	respondMessage(c, "featured flag updated successfully", nil)
}
