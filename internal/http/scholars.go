package http

import (
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/audit"
	"github.com/yahayabawa/maktaba/internal/catalog"
	"github.com/yahayabawa/maktaba/internal/database/books"
	"github.com/yahayabawa/maktaba/internal/database/scholars"
	"github.com/yahayabawa/maktaba/internal/entities"
	"github.com/yahayabawa/maktaba/internal/uploads"
)

const featuredScholarsLimit = 3

type ScholarsController struct {
	scholars *scholars.Repository
	books    *books.Repository
	catalog  *catalog.Service
	store    *uploads.Store
	cleaner  *uploads.Cleaner
	audit    *audit.Service
}

func NewScholarsController(scholarsRepo *scholars.Repository, booksRepo *books.Repository, catalogSvc *catalog.Service, store *uploads.Store, cleaner *uploads.Cleaner, auditSvc *audit.Service) *ScholarsController {
	return &ScholarsController{
		scholars: scholarsRepo,
		books:    booksRepo,
		catalog:  catalogSvc,
		store:    store,
		cleaner:  cleaner,
		audit:    auditSvc,
	}
}

// List returns scholars, optionally filtered by search or featured flag.
func (controller *ScholarsController) List(c *gin.Context) {
	result, err := controller.scholars.List(c.Query("search"), parseBoolQuery(c, "featured"))
	if err != nil {
		respondError(c, err, "list scholars")
		return
	}
	respondList(c, result, len(result))
}

// Featured returns the featured scholars shelf.
func (controller *ScholarsController) Featured(c *gin.Context) {
	result, err := controller.scholars.Featured(featuredScholarsLimit)
	if err != nil {
		respondError(c, err, "featured scholars")
		return
	}
	respondList(c, result, len(result))
}

// Get returns a single scholar.
func (controller *ScholarsController) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "get scholar")
		return
	}
	scholar, err := controller.scholars.GetByID(id)
	if err != nil {
		respondError(c, err, "get scholar")
		return
	}
	respondData(c, scholar)
}

// Works returns all books attributed to a scholar.
func (controller *ScholarsController) Works(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "scholar works")
		return
	}
	if _, err := controller.scholars.GetByID(id); err != nil {
		respondError(c, err, "scholar works")
		return
	}
	result, err := controller.books.ByScholar(id)
	if err != nil {
		respondError(c, err, "scholar works")
		return
	}
	respondList(c, result, len(result))
}

// Timeline returns a scholar's biographical timeline.
func (controller *ScholarsController) Timeline(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "scholar timeline")
		return
	}
	scholar, err := controller.scholars.GetByID(id)
	if err != nil {
		respondError(c, err, "scholar timeline")
		return
	}
	respondData(c, scholar.Timeline)
}

// UpdateTimeline replaces a scholar's timeline wholesale.
func (controller *ScholarsController) UpdateTimeline(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "update scholar timeline")
		return
	}

	var payload struct {
		Timeline []entities.TimelineEvent `json:"timeline"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, apperror.Wrap(apperror.KindValidation, "invalid timeline payload", err), "update scholar timeline")
		return
	}

	scholar, err := controller.scholars.UpdateTimeline(id, payload.Timeline)
	if err != nil {
		respondError(c, err, "update scholar timeline")
		return
	}
	respondMessage(c, "timeline updated successfully", scholar)
}

// Create adds a scholar from a multipart form with an optional image part.
func (controller *ScholarsController) Create(c *gin.Context) {
	var scholar entities.Scholar
	if err := bindScholarForm(c, &scholar); err != nil {
		respondError(c, err, "create scholar")
		return
	}

	staged, err := controller.stageImage(c, &scholar)
	if err != nil {
		respondError(c, err, "create scholar")
		return
	}

	if err := controller.scholars.Create(&scholar); err != nil {
		if staged != "" {
			controller.cleaner.Remove(staged)
		}
		respondError(c, err, "create scholar")
		return
	}
	controller.audit.LogCatalog(currentUserID(c), "scholar_create", "scholar", scholar.ID, scholar.Name)
	respondCreated(c, "scholar created successfully", scholar)
}

// Update modifies a scholar and optionally replaces the portrait image.
func (controller *ScholarsController) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "update scholar")
		return
	}
	existing, err := controller.scholars.GetByID(id)
	if err != nil {
		respondError(c, err, "update scholar")
		return
	}

	scholar := *existing
	if err := bindScholarForm(c, &scholar); err != nil {
		respondError(c, err, "update scholar")
		return
	}
	scholar.ID = existing.ID
	scholar.CreatedAt = existing.CreatedAt

	staged, err := controller.stageImage(c, &scholar)
	if err != nil {
		respondError(c, err, "update scholar")
		return
	}

	if err := controller.scholars.Update(&scholar); err != nil {
		if staged != "" {
			controller.cleaner.Remove(staged)
		}
		respondError(c, err, "update scholar")
		return
	}

	if scholar.Image != existing.Image && existing.Image != "" {
		controller.cleaner.Remove(existing.Image)
	}
	controller.audit.LogCatalog(currentUserID(c), "scholar_update", "scholar", scholar.ID, scholar.Name)
	respondMessage(c, "scholar updated successfully", scholar)
}

// Delete removes a scholar with no attributed books.
func (controller *ScholarsController) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err, "delete scholar")
		return
	}
	scholar, err := controller.scholars.GetByID(id)
	if err != nil {
		respondError(c, err, "delete scholar")
		return
	}
	if err := controller.catalog.DeleteScholar(id); err != nil {
		respondError(c, err, "delete scholar")
		return
	}
	controller.audit.LogCatalog(currentUserID(c), "scholar_delete", "scholar", id, scholar.Name)
	respondMessage(c, "scholar deleted successfully", nil)
}

func (controller *ScholarsController) stageImage(c *gin.Context, scholar *entities.Scholar) (string, error) {
	header, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}
	path, err := controller.store.SaveMultipart(uploads.KindImage, header)
	if err != nil {
		return "", err
	}
	scholar.Image = path
	return path, nil
}

// bindScholarForm populates a scholar from either a JSON body or a
// multipart form. Specialties and timeline arrive JSON-encoded in form
// mode.
func bindScholarForm(c *gin.Context, scholar *entities.Scholar) error {
	if c.ContentType() == "application/json" {
		if err := c.ShouldBindJSON(scholar); err != nil {
			return apperror.Wrap(apperror.KindValidation, "invalid scholar payload", err)
		}
		return nil
	}

	scholar.Name = c.PostForm("name")
	scholar.ArabicName = c.PostForm("arabicName")
	scholar.Initial = c.PostForm("initial")
	scholar.Era = c.PostForm("era")
	scholar.Description = c.PostForm("description")
	scholar.Biography = c.PostForm("biography")
	scholar.BirthPlace = c.PostForm("birthPlace")
	scholar.ActiveYears = c.PostForm("activeYears")
	if v := c.PostForm("birthYear"); v != "" {
		scholar.BirthYear = parseFormInt(v)
	}
	if v := c.PostForm("deathYear"); v != "" {
		scholar.DeathYear = parseFormInt(v)
	}
	if v := c.PostForm("students"); v != "" {
		scholar.Students = parseFormInt(v)
	}
	if v := c.PostForm("featured"); v != "" {
		scholar.Featured = v == "true" || v == "1"
	}
	if v := c.PostForm("specialties"); v != "" {
		if err := json.Unmarshal([]byte(v), &scholar.Specialties); err != nil {
			scholar.Specialties = splitCSV(v)
		}
	}
	if v := c.PostForm("timeline"); v != "" {
		if err := json.Unmarshal([]byte(v), &scholar.Timeline); err != nil {
			return apperror.Wrap(apperror.KindValidation, "invalid timeline payload", err)
		}
	}
	return nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
