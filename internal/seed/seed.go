// Package seed loads a demo catalog and an administrator account for local
// development.
package seed

import (
	"fmt"
	"log"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/auth"
	"github.com/yahayabawa/maktaba/internal/catalog"
	"github.com/yahayabawa/maktaba/internal/config"
	"github.com/yahayabawa/maktaba/internal/database"
	"github.com/yahayabawa/maktaba/internal/database/categories"
	"github.com/yahayabawa/maktaba/internal/database/chapters"
	"github.com/yahayabawa/maktaba/internal/database/scholars"
	"github.com/yahayabawa/maktaba/internal/entities"
)

// AdminEmail is the seeded administrator login.
const AdminEmail = "admin@maktaba.local"

// AdminPassword is the seeded administrator password, for local use only.
const AdminPassword = "admin123"

// Run populates the configured database with demo data. Seeding is
// idempotent: records that already exist are left alone.
func Run(cfg *config.Config) error {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return Populate(db, cfg.Auth)
}

// Populate writes the demo records through the same services the server
// uses, so every invariant (counts, uniqueness, cascades) holds for seeded
// data too.
func Populate(db *database.Database, authCfg config.Auth) error {
	authService := auth.NewService(db, authCfg)
	catalogService := catalog.NewService(db, nil)
	categoriesRepo := categories.NewRepository(db.DB)
	scholarsRepo := scholars.NewRepository(db.DB)
	chaptersRepo := chapters.NewRepository(db.DB)

	admin := entities.User{
		Name:  "Administrator",
		Email: AdminEmail,
		Role:  entities.RoleAdmin,
	}
	if err := authService.Register(&admin, AdminPassword); err != nil {
		if !apperror.IsKind(err, apperror.KindDuplicate) {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
		log.Printf("Admin user already exists, skipping")
	} else {
		// Registration always creates plain members; promote explicitly
		if err := db.DB.Model(&entities.User{}).
			Where("id = ?", admin.ID).Update("role", entities.RoleAdmin).Error; err != nil {
			return fmt.Errorf("failed to promote admin user: %w", err)
		}
		log.Printf("Seeded admin user %s (membership %s)", admin.Email, admin.MembershipID)
	}

	categoryIDs := make(map[string]uint)
	for _, category := range demoCategories() {
		c := category
		if err := categoriesRepo.Create(&c); err != nil {
			if !apperror.IsKind(err, apperror.KindDuplicate) {
				return fmt.Errorf("failed to seed category %s: %w", c.Name, err)
			}
			existing, err := findCategory(categoriesRepo, c.Name)
			if err != nil {
				return err
			}
			categoryIDs[c.Name] = existing.ID
			continue
		}
		categoryIDs[c.Name] = c.ID
		log.Printf("Seeded category: %s", c.Name)
	}

	scholarIDs := make(map[string]uint)
	for _, scholar := range demoScholars() {
		s := scholar
		existing, err := findScholar(scholarsRepo, s.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			scholarIDs[s.Name] = existing.ID
			continue
		}
		if err := scholarsRepo.Create(&s); err != nil {
			return fmt.Errorf("failed to seed scholar %s: %w", s.Name, err)
		}
		scholarIDs[s.Name] = s.ID
		log.Printf("Seeded scholar: %s", s.Name)
	}

	for _, demo := range demoBooks() {
		book := demo.book
		book.CategoryID = categoryIDs[demo.category]
		book.ScholarID = scholarIDs[demo.scholar]

		if err := catalogService.CreateBook(&book); err != nil {
			if apperror.IsKind(err, apperror.KindDuplicate) {
				log.Printf("Book %s already exists, skipping", book.Title)
				continue
			}
			return fmt.Errorf("failed to seed book %s: %w", book.Title, err)
		}
		log.Printf("Seeded book: %s", book.Title)

		for _, chapter := range demo.chapters {
			ch := chapter
			ch.BookID = book.ID
			if err := chaptersRepo.Create(&ch); err != nil {
				return fmt.Errorf("failed to seed chapter %s: %w", ch.Title, err)
			}
		}
	}

	log.Println("Demo data loaded successfully")
	return nil
}

func findCategory(repo *categories.Repository, name string) (*entities.Category, error) {
	all, err := repo.List("", false, "")
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Name == name {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("category %s not found after duplicate error", name)
}

func findScholar(repo *scholars.Repository, name string) (*entities.Scholar, error) {
	all, err := repo.List("", false)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Name == name {
			return &all[i], nil
		}
	}
	return nil, nil
}
