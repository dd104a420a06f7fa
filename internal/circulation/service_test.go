package circulation

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yahayabawa/maktaba/internal/apperror"
	"github.com/yahayabawa/maktaba/internal/database"
	"github.com/yahayabawa/maktaba/internal/entities"
)

func setupCirculationTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()

	dbPath := "./test_circulation_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func seedBookAndUsers(t *testing.T, db *database.Database, copies int) (bookID, userID, otherUserID uint) {
	t.Helper()

	scholar := entities.Scholar{Name: "Imam An-Nawawi", Initial: "N", Era: "7th century AH", Description: "jurist", Biography: "bio"}
	require.NoError(t, db.DB.Create(&scholar).Error)
	category := entities.Category{Name: "Hadith", Description: "traditions", Icon: "book"}
	require.NoError(t, db.DB.Create(&category).Error)

	book := entities.Book{
		Title: "Riyadh as-Salihin", Author: "Imam An-Nawawi",
		ScholarID: scholar.ID, CategoryID: category.ID,
		Description: "gardens of the righteous",
		TotalCopies: copies, AvailableCopies: copies,
	}
	require.NoError(t, db.DB.Create(&book).Error)

	user := entities.User{Name: "Aisha", Email: "aisha@example.com", MembershipID: "YB00001", Role: entities.RoleUser}
	require.NoError(t, db.DB.Create(&user).Error)
	other := entities.User{Name: "Musa", Email: "musa@example.com", MembershipID: "YB00002", Role: entities.RoleUser}
	require.NoError(t, db.DB.Create(&other).Error)

	return book.ID, user.ID, other.ID
}

func availableCopies(t *testing.T, db *database.Database, bookID uint) int {
	t.Helper()
	var book entities.Book
	require.NoError(t, db.DB.First(&book, bookID).Error)
	return book.AvailableCopies
}

func TestBorrow(t *testing.T) {
	t.Run("decrements available copies and opens a loan", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()
		bookID, userID, _ := seedBookAndUsers(t, db, 1)

		svc := NewService(db, 14)
		loan, err := svc.Borrow(bookID, userID)
		require.NoError(t, err)

		assert.Equal(t, entities.LoanStatusActive, loan.Status)
		assert.Equal(t, 0, availableCopies(t, db, bookID))
		assert.WithinDuration(t, loan.BorrowDate.AddDate(0, 0, 14), loan.DueDate, time.Second)
	})

	t.Run("rejects second borrow of the same book by the same user", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()
		bookID, userID, _ := seedBookAndUsers(t, db, 5)

		svc := NewService(db, 14)
		_, err := svc.Borrow(bookID, userID)
		require.NoError(t, err)

		_, err = svc.Borrow(bookID, userID)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindAlreadyBorrowed))
		assert.Equal(t, 4, availableCopies(t, db, bookID))
	})

	t.Run("rejects borrow when no copies remain", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()
		bookID, userID, otherID := seedBookAndUsers(t, db, 1)

		svc := NewService(db, 14)
		_, err := svc.Borrow(bookID, userID)
		require.NoError(t, err)

		_, err = svc.Borrow(bookID, otherID)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindUnavailable))
		assert.Equal(t, 0, availableCopies(t, db, bookID))
	})

	t.Run("missing book yields not found", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()
		_, userID, _ := seedBookAndUsers(t, db, 1)

		svc := NewService(db, 14)
		_, err := svc.Borrow(9999, userID)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})

	t.Run("missing user yields not found", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()
		bookID, _, _ := seedBookAndUsers(t, db, 1)

		svc := NewService(db, 14)
		_, err := svc.Borrow(bookID, 9999)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
		assert.Equal(t, 1, availableCopies(t, db, bookID), "failed borrow must not consume a copy")
	})
}

func TestReturn(t *testing.T) {
	t.Run("frees the copy for the next borrower", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()
		bookID, userID, otherID := seedBookAndUsers(t, db, 1)

		svc := NewService(db, 14)
		_, err := svc.Borrow(bookID, userID)
		require.NoError(t, err)

		loan, err := svc.Return(bookID, userID)
		require.NoError(t, err)
		assert.Equal(t, entities.LoanStatusReturned, loan.Status)
		require.NotNil(t, loan.ReturnDate)
		assert.Equal(t, 1, availableCopies(t, db, bookID))

		// Previously blocked borrower can now check out
		_, err = svc.Borrow(bookID, otherID)
		require.NoError(t, err)
		assert.Equal(t, 0, availableCopies(t, db, bookID))
	})

	t.Run("rejects return without an open loan", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()
		bookID, userID, _ := seedBookAndUsers(t, db, 1)

		svc := NewService(db, 14)
		_, err := svc.Return(bookID, userID)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindNoActiveLoan))
	})

	t.Run("rejects a double return", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()
		bookID, userID, _ := seedBookAndUsers(t, db, 2)

		svc := NewService(db, 14)
		_, err := svc.Borrow(bookID, userID)
		require.NoError(t, err)
		_, err = svc.Return(bookID, userID)
		require.NoError(t, err)

		_, err = svc.Return(bookID, userID)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindNoActiveLoan))
		assert.Equal(t, 2, availableCopies(t, db, bookID), "availability must never exceed total copies")
	})

	t.Run("returning an overdue loan still frees the copy", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()
		bookID, userID, _ := seedBookAndUsers(t, db, 1)

		svc := NewService(db, 14)
		loan, err := svc.Borrow(bookID, userID)
		require.NoError(t, err)

		require.NoError(t, db.DB.Model(loan).Update("status", entities.LoanStatusOverdue).Error)

		returned, err := svc.Return(bookID, userID)
		require.NoError(t, err)
		assert.Equal(t, entities.LoanStatusReturned, returned.Status)
		assert.Equal(t, 1, availableCopies(t, db, bookID))
	})
}

func TestSweepOverdue(t *testing.T) {
	t.Run("marks only past-due active loans", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()
		bookID, userID, otherID := seedBookAndUsers(t, db, 5)

		svc := NewService(db, 14)
		pastDue, err := svc.Borrow(bookID, userID)
		require.NoError(t, err)
		current, err := svc.Borrow(bookID, otherID)
		require.NoError(t, err)

		// Push one loan's due date into the past
		require.NoError(t, db.DB.Model(pastDue).
			Update("due_date", time.Now().AddDate(0, 0, -1)).Error)

		count, err := svc.SweepOverdue(time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		var sweptLoan entities.Loan
		require.NoError(t, db.DB.First(&sweptLoan, pastDue.ID).Error)
		assert.Equal(t, entities.LoanStatusOverdue, sweptLoan.Status)

		var untouchedLoan entities.Loan
		require.NoError(t, db.DB.First(&untouchedLoan, current.ID).Error)
		assert.Equal(t, entities.LoanStatusActive, untouchedLoan.Status)

		// Sweeping never touches copy counters
		assert.Equal(t, 3, availableCopies(t, db, bookID))
	})

	t.Run("is idempotent", func(t *testing.T) {
		db, cleanup := setupCirculationTestDB(t)
		defer cleanup()
		bookID, userID, _ := seedBookAndUsers(t, db, 1)

		svc := NewService(db, 14)
		loan, err := svc.Borrow(bookID, userID)
		require.NoError(t, err)
		require.NoError(t, db.DB.Model(loan).
			Update("due_date", time.Now().AddDate(0, 0, -1)).Error)

		count, err := svc.SweepOverdue(time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		count, err = svc.SweepOverdue(time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}
