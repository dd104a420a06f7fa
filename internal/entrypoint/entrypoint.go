// Package entrypoint wires configuration, storage, services and the HTTP
// surface together and owns the server lifecycle.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

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
	http_controllers "github.com/yahayabawa/maktaba/internal/http"
	"github.com/yahayabawa/maktaba/internal/metadata"
	"github.com/yahayabawa/maktaba/internal/scheduler"
	"github.com/yahayabawa/maktaba/internal/tasks"
	"github.com/yahayabawa/maktaba/internal/uploads"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then drains it
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background workers before draining connections
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run builds the full dependency graph and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Maktaba v%s", version)

	if cfg.Global.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	uploadStore, err := uploads.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxBookSize, cfg.Uploads.MaxImageSize)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	// Task queue for retrying failed artifact deletions
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewCleanupArtifactQueue(uploadStore, uploadStore.Exists),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	cleaner := uploads.NewCleaner(uploadStore, taskClient)

	booksRepo := books.NewRepository(db.DB)
	categoriesRepo := categories.NewRepository(db.DB)
	scholarsRepo := scholars.NewRepository(db.DB)
	chaptersRepo := chapters.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)
	loansRepo := loans.NewRepository(db.DB)
	auditRepo := auditrepo.NewRepository(db.DB)

	authService := auth.NewService(db, cfg.Auth)
	auditService := audit.NewService(auditRepo)
	catalogService := catalog.NewService(db, cleaner)
	circulationService := circulation.NewService(db, cfg.Circulation.LoanDays)

	var sweeper *scheduler.OverdueSweeper
	if cfg.Circulation.SweepEnabled {
		sweeper = scheduler.NewOverdueSweeper(circulationService, cfg.Circulation.SweepSchedule)
		if err := sweeper.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start overdue sweeper: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:      db,
		Books:         booksRepo,
		Categories:    categoriesRepo,
		Scholars:      scholarsRepo,
		Chapters:      chaptersRepo,
		Users:         usersRepo,
		Loans:         loansRepo,
		Auth:          authService,
		Catalog:       catalogService,
		Circulation:   circulationService,
		Audit:         auditService,
		UploadStore:   uploadStore,
		UploadCleaner: cleaner,
		Metadata:      metadata.NewOpenLibraryClient(),
		Version:       version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if sweeper != nil {
			sweeper.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
