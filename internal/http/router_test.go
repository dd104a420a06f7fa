package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/audit"
	"github.com/yahayabawa/maktaba/internal/auth"
	"github.com/yahayabawa/maktaba/internal/catalog"
	"github.com/yahayabawa/maktaba/internal/circulation"
	"github.com/yahayabawa/maktaba/internal/config"
	"github.com/yahayabawa/maktaba/internal/database"
	auditrepo "github.com/yahayabawa/maktaba/internal/database/audit"
	"github.com/yahayabawa/maktaba/internal/database/books"
	"github.com/yahayabawa/maktaba/internal/database/categories"
	"github.com/yahayabawa/maktaba/internal/database/chapters"
	"github.com/yahayabawa/maktaba/internal/database/loans"
	"github.com/yahayabawa/maktaba/internal/database/scholars"
	"github.com/yahayabawa/maktaba/internal/database/users"
	"github.com/yahayabawa/maktaba/internal/entities"
	"github.com/yahayabawa/maktaba/internal/metadata"
	"github.com/yahayabawa/maktaba/internal/uploads"
)

// fakeMetadata serves canned lookups without touching the network.
type fakeMetadata struct {
	byISBN  map[string]*metadata.Lookup
	byTitle map[string]*metadata.Lookup
}

func (f *fakeMetadata) ByISBN(_ context.Context, isbn string) (*metadata.Lookup, error) {
	isbn = metadata.NormalizeISBN(isbn)
	if isbn == "" {
		return nil, apperror.New(apperror.KindValidation, "please provide a valid 10 or 13 digit ISBN")
	}
	if lookup, ok := f.byISBN[isbn]; ok {
		return lookup, nil
	}
	return nil, apperror.NewNotFound("isbn " + isbn)
}

func (f *fakeMetadata) ByTitle(_ context.Context, title, _ string) (*metadata.Lookup, error) {
	if lookup, ok := f.byTitle[title]; ok {
		return lookup, nil
	}
	return nil, apperror.NewNotFound("book matching " + title)
}

// testServer bundles a fully wired router with direct handles on the
// database for seeding and inspection.
type testServer struct {
	router *gin.Engine
	db     *database.Database
	auth   *auth.Service
}

func setupServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	store, err := uploads.NewStore(t.TempDir(), 25<<20, 5<<20)
	require.NoError(t, err)
	cleaner := uploads.NewCleaner(store, nil)

	authService := auth.NewService(db, config.Auth{
		JWTSecret: "test-secret", JWTExpiry: time.Hour, BcryptCost: 4,
	})

	cfg := RouterConfig{
		Database:      db,
		Books:         books.NewRepository(db.DB),
		Categories:    categories.NewRepository(db.DB),
		Scholars:      scholars.NewRepository(db.DB),
		Chapters:      chapters.NewRepository(db.DB),
		Users:         users.NewRepository(db.DB),
		Loans:         loans.NewRepository(db.DB),
		Auth:          authService,
		Catalog:       catalog.NewService(db, cleaner),
		Circulation:   circulation.NewService(db, 14),
		Audit:         audit.NewService(auditrepo.NewRepository(db.DB)),
		UploadStore:   store,
		UploadCleaner: cleaner,
		Metadata: &fakeMetadata{
			byISBN: map[string]*metadata.Lookup{
				"9780946621668": {Title: "The Forty Hadith", Author: "Imam An-Nawawi", ISBN: "9780946621668"},
			},
			byTitle: map[string]*metadata.Lookup{
				"Riyadh as-Salihin": {Title: "Riyadh as-Salihin", Author: "Imam An-Nawawi"},
			},
		},
		Version: "test",
	}

	srv := &testServer{router: NewRouter(cfg), db: db, auth: authService}
	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return srv, cleanup
}

// tokenFor registers a user with the given role and returns a bearer token.
func (s *testServer) tokenFor(t *testing.T, email string, role entities.Role) string {
	t.Helper()

	user := entities.User{Name: "Test Member", Email: email}
	require.NoError(t, s.auth.Register(&user, "secret123"))
	if role != entities.RoleUser {
		require.NoError(t, s.db.DB.Model(&entities.User{}).
			Where("id = ?", user.ID).Update("role", role).Error)
	}
	token, _, err := s.auth.Login(email, "secret123")
	require.NoError(t, err)
	return token
}

func (s *testServer) seedCatalog(t *testing.T) (scholarID, categoryID, bookID uint) {
	t.Helper()

	scholar := entities.Scholar{Name: "Imam An-Nawawi", Initial: "N", Era: "7th century AH", Description: "d", Biography: "b"}
	require.NoError(t, s.db.DB.Create(&scholar).Error)
	category := entities.Category{Name: "Hadith", Description: "d", Icon: "book", BookCount: 1}
	require.NoError(t, s.db.DB.Create(&category).Error)
	book := entities.Book{
		Title: "The Forty Hadith", Author: "Imam An-Nawawi",
		ScholarID: scholar.ID, CategoryID: category.ID,
		Description: "d", TotalCopies: 2, AvailableCopies: 2,
	}
	require.NoError(t, s.db.DB.Create(&book).Error)
	return scholar.ID, category.ID, book.ID
}

// do performs a request and decodes the envelope.
func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var envelope Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), "body: %s", w.Body.String())
	}
	return w, envelope
}

// doMultipart performs a multipart request with form fields and one file.
func (s *testServer) doMultipart(t *testing.T, method, path, token string, fields map[string]string, fileField, filename string, content []byte) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var envelope Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), "body: %s", w.Body.String())
	}
	return w, envelope
}
