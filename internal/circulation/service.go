// Package circulation governs the borrow/return lifecycle of books against
// users. Every transition runs inside a single database transaction: the
// loan row and the book's copy counter either both change or neither does.
package circulation

import (
	"time"

	"gorm.io/gorm"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/database"
	"github.com/yahayabawa/maktaba/internal/entities"
)

// Service manages loan transitions.
type Service struct {
	db       *gorm.DB
	loanDays int
}

// NewService creates a circulation service. loanDays is the default loan
// period in days; zero or negative falls back to the standard 14.
func NewService(db *database.Database, loanDays int) *Service {
	if loanDays <= 0 {
		loanDays = entities.DefaultLoanDays
	}
	return &Service{db: db.DB, loanDays: loanDays}
}

// Borrow checks out one copy of a book to a user. It fails with
// AlreadyBorrowed if the user still holds this book, and with Unavailable
// if no copies remain. The copy decrement is guarded in SQL so concurrent
// borrows can never drive availableCopies below zero.
func (s *Service) Borrow(bookID, userID uint) (*entities.Loan, error) {
	var loan *entities.Loan
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user entities.User
		if err := tx.First(&user, userID).Error; err != nil {
			return database.TranslateError(err, "user")
		}

		var open int64
		err := tx.Model(&entities.Loan{}).
			Where("book_id = ? AND user_id = ? AND status IN ?", bookID, userID,
				[]entities.LoanStatus{entities.LoanStatusActive, entities.LoanStatusOverdue}).
			Count(&open).Error
		if err != nil {
			return database.TranslateError(err, "loan")
		}
		if open > 0 {
			return apperror.New(apperror.KindAlreadyBorrowed,
				"user already has an active loan for this book")
		}

		res := tx.Model(&entities.Book{}).
			Where("id = ? AND available_copies > 0", bookID).
			Update("available_copies", gorm.Expr("available_copies - 1"))
		if res.Error != nil {
			return database.TranslateError(res.Error, "book")
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&entities.Book{}).
				Where("id = ?", bookID).Count(&exists).Error; err != nil {
				return database.TranslateError(err, "book")
			}
			if exists == 0 {
				return apperror.NewNotFound("book")
			}
			return apperror.New(apperror.KindUnavailable,
				"no copies of this book are currently available")
		}

		now := time.Now()
		loan = &entities.Loan{
			BookID:     bookID,
			UserID:     userID,
			BorrowDate: now,
			DueDate:    now.AddDate(0, 0, s.loanDays),
			Status:     entities.LoanStatusActive,
		}
		return database.TranslateError(tx.Create(loan).Error, "loan")
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Return checks a copy back in. It fails with NoActiveLoan when the pair
// has no open loan. The copy increment is capped at totalCopies so a stray
// double return cannot inflate availability.
func (s *Service) Return(bookID, userID uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where(
			"book_id = ? AND user_id = ? AND status IN ?", bookID, userID,
			[]entities.LoanStatus{entities.LoanStatusActive, entities.LoanStatusOverdue}).
			First(&loan).Error
		if err != nil {
			if apperror.IsKind(database.TranslateError(err, "loan"), apperror.KindNotFound) {
				return apperror.New(apperror.KindNoActiveLoan,
					"no active loan found for this book and user")
			}
			return database.TranslateError(err, "loan")
		}

		now := time.Now()
		loan.ReturnDate = &now
		loan.Status = entities.LoanStatusReturned
		if err := tx.Save(&loan).Error; err != nil {
			return database.TranslateError(err, "loan")
		}

		res := tx.Model(&entities.Book{}).
			Where("id = ?", bookID).
			Update("available_copies", gorm.Expr("MIN(available_copies + 1, total_copies)"))
		if res.Error != nil {
			return database.TranslateError(res.Error, "book")
		}
		if res.RowsAffected == 0 {
			return apperror.NewNotFound("book")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// SweepOverdue reclassifies active loans past their due date. Returns the
// number of loans transitioned.
func (s *Service) SweepOverdue(now time.Time) (int64, error) {
	res := s.db.Model(&entities.Loan{}).
		Where("status = ? AND due_date < ?", entities.LoanStatusActive, now).
		Update("status", entities.LoanStatusOverdue)
	return res.RowsAffected, database.TranslateError(res.Error, "loan")
}
