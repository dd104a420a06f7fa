package entities

import "time"

type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "active"
	LoanStatusReturned LoanStatus = "returned"
	LoanStatusOverdue  LoanStatus = "overdue"
)

// DefaultLoanDays is the default loan period.
const DefaultLoanDays = 14

// Loan is the borrow relationship between a user and a book. It is a
// first-class record indexed by both sides, so "a user's loans" and "a
// book's borrowers" are single-index queries and every circulation mutation
// touches exactly one row plus the book's copy counter.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	BookID     uint       `gorm:"index" json:"bookId"`
	UserID     uint       `gorm:"index" json:"userId"`
	BorrowDate time.Time  `json:"borrowDate"`
	DueDate    time.Time  `json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
	Status     LoanStatus `gorm:"index;size:20;default:'active'" json:"status"`

	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Open reports whether the loan still holds a copy (active or overdue).
func (l *Loan) Open() bool {
	return l.Status == LoanStatusActive || l.Status == LoanStatusOverdue
}
