// Package loans provides database operations for borrow records. Borrow and
// return transitions, which must also adjust a book's copy counter, live in
// the circulation service; this package covers lookups and the overdue
// reclassification.
package loans

import (
	"time"

	"gorm.io/gorm"

	"github.com/yahayabawa/maktaba/internal/database"
	"github.com/yahayabawa/maktaba/internal/entities"
)

// Repository handles loan database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Active retrieves the open loan for a (book, user) pair, if any. Overdue
// loans still hold a copy and count as open.
func (r *Repository) Active(bookID, userID uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.Where(
		"book_id = ? AND user_id = ? AND status IN ?",
		bookID, userID,
		[]entities.LoanStatus{entities.LoanStatusActive, entities.LoanStatusOverdue}).
		First(&loan).Error
	if err != nil {
		return nil, database.TranslateError(err, "loan")
	}
	return &loan, nil
}

// ListByUser returns a user's loans with book details, newest first.
func (r *Repository) ListByUser(userID uint) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Preload("Book").Where("user_id = ?", userID).
		Order("borrow_date DESC").Find(&loans).Error
	return loans, database.TranslateError(err, "loan")
}

// ListByBook returns a book's borrow records with user details.
func (r *Repository) ListByBook(bookID uint) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Preload("User").Where("book_id = ?", bookID).
		Order("borrow_date DESC").Find(&loans).Error
	return loans, database.TranslateError(err, "loan")
}

// All returns every borrow record with both sides resolved, newest first.
func (r *Repository) All() ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Preload("Book").Preload("User").
		Order("borrow_date DESC").Find(&loans).Error
	return loans, database.TranslateError(err, "loan")
}

// CountOpenByUser returns how many copies a user currently holds.
func (r *Repository) CountOpenByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Loan{}).
		Where("user_id = ? AND status IN ?", userID,
			[]entities.LoanStatus{entities.LoanStatusActive, entities.LoanStatusOverdue}).
		Count(&count).Error
	return count, database.TranslateError(err, "loan")
}

// MarkOverdue reclassifies active loans whose due date has passed. Copy
// counters are untouched; an overdue loan still holds its copy.
func (r *Repository) MarkOverdue(now time.Time) (int64, error) {
	res := r.db.Model(&entities.Loan{}).
		Where("status = ? AND due_date < ?", entities.LoanStatusActive, now).
		Update("status", entities.LoanStatusOverdue)
	return res.RowsAffected, database.TranslateError(res.Error, "loan")
}
