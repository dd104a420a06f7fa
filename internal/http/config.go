package http

import (
	"github.com/yahayabawa/maktaba/internal/audit"
	"github.com/yahayabawa/maktaba/internal/auth"
	"github.com/yahayabawa/maktaba/internal/catalog"
	"github.com/yahayabawa/maktaba/internal/circulation"
	"github.com/yahayabawa/maktaba/internal/database"
	"github.com/yahayabawa/maktaba/internal/database/books"
	"github.com/yahayabawa/maktaba/internal/database/categories"
	"github.com/yahayabawa/maktaba/internal/database/chapters"
	"github.com/yahayabawa/maktaba/internal/database/loans"
	"github.com/yahayabawa/maktaba/internal/database/scholars"
	"github.com/yahayabawa/maktaba/internal/database/users"
	"github.com/yahayabawa/maktaba/internal/uploads"
)

// RouterConfig carries every dependency the router needs. A single struct
// keeps NewRouter's signature stable as the surface grows.
type RouterConfig struct {
	Database *database.Database

	Books      *books.Repository
	Categories *categories.Repository
	Scholars   *scholars.Repository
	Chapters   *chapters.Repository
	Users      *users.Repository
	Loans      *loans.Repository

	Auth        *auth.Service
	Catalog     *catalog.Service
	Circulation *circulation.Service
	Audit       *audit.Service

	UploadStore   *uploads.Store
	UploadCleaner *uploads.Cleaner
	Metadata      MetadataLookup

	Version string
}
