// Package users provides database operations for member management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail("reader@example.com")
package users

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"gorm.io/gorm"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/database"
	"github.com/yahayabawa/maktaba/internal/entities"
)

// membershipAttempts bounds the retry loop for membership ID collisions.
const membershipAttempts = 10

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create validates and persists a new user. The membership ID is generated
// here, exactly once; a collision with an existing member retries with a
// fresh ID. The caller must already have hashed the password.
func (r *Repository) Create(user *entities.User) error {
	user.Normalize()
	if user.Role == "" {
		user.Role = entities.RoleUser
	}
	if err := user.Validate(); err != nil {
		return err
	}

	for attempt := 0; attempt < membershipAttempts; attempt++ {
		id, err := generateMembershipID()
		if err != nil {
			return fmt.Errorf("failed to generate membership ID: %w", err)
		}
		user.MembershipID = id

		err = database.TranslateError(r.db.Create(user).Error, "user")
		if err == nil {
			return nil
		}
		if dup, ok := err.(*apperror.Error); ok && dup.Kind == apperror.KindDuplicate &&
			len(dup.Fields) == 1 && dup.Fields[0] == "membership_id" {
			continue
		}
		return err
	}
	return apperror.NewDuplicate("membership_id")
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, database.TranslateError(err, "user")
	}
	return &user, nil
}

// GetByEmail retrieves a user by email, including the password hash, for
// credential checks.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, database.TranslateError(err, "user")
	}
	return &user, nil
}

// List retrieves all users, newest first.
func (r *Repository) List() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("created_at DESC").Find(&users).Error
	return users, database.TranslateError(err, "user")
}

// Update validates and persists changes to an existing user.
func (r *Repository) Update(user *entities.User) error {
	user.Normalize()
	if err := user.Validate(); err != nil {
		return err
	}
	return database.TranslateError(r.db.Save(user).Error, "user")
}

// UpdatePassword replaces the stored password hash.
func (r *Repository) UpdatePassword(id uint, hash string) error {
	res := r.db.Model(&entities.User{}).Where("id = ?", id).
		Update("password_hash", hash)
	if res.Error != nil {
		return database.TranslateError(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return apperror.NewNotFound("user")
	}
	return nil
}

// Delete removes a user.
func (r *Repository) Delete(id uint) error {
	res := r.db.Delete(&entities.User{}, id)
	if res.Error != nil {
		return database.TranslateError(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return apperror.NewNotFound("user")
	}
	return nil
}

// Count returns the total number of users.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, database.TranslateError(err, "user")
}

// Recent returns the most recently registered users.
func (r *Repository) Recent(limit int) ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("created_at DESC").Limit(limit).Find(&users).Error
	return users, database.TranslateError(err, "user")
}

// generateMembershipID produces a membership identifier with the "YB"
// prefix and five random digits.
func generateMembershipID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("YB%05d", 10000+n.Int64()), nil
}
