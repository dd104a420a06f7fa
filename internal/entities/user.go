package entities

import (
	"regexp"
	"strings"
	"time"

	"github.com/yahayabawa/maktaba/internal/apperror"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleLibrarian, RoleAdmin:
		return true
	}
	return false
}

var emailPattern = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,})+$`)

// User is a library member. PasswordHash is never serialized; MembershipID
// is assigned exactly once, at creation.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:256" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"size:128" json:"-"`
	MembershipID string    `gorm:"uniqueIndex;size:16" json:"membershipId"`
	Role         Role      `gorm:"size:20;default:'user'" json:"role"`
	PhoneNumber  string    `gorm:"size:32" json:"phoneNumber,omitempty"`
	Address      string    `gorm:"size:512" json:"address,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Populated on demand from the loans table, not stored on the row.
	BorrowedBooks []Loan `gorm:"-" json:"borrowedBooks,omitempty"`
}

// Normalize trims whitespace and lowercases the email.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.PhoneNumber = strings.TrimSpace(u.PhoneNumber)
	u.Address = strings.TrimSpace(u.Address)
}

// Validate checks required fields and enum membership, collecting every
// violation into a single validation error.
func (u *User) Validate() error {
	var fields, msgs []string
	if u.Name == "" {
		fields = append(fields, "name")
		msgs = append(msgs, "please provide a name")
	}
	if u.Email == "" {
		fields = append(fields, "email")
		msgs = append(msgs, "please provide an email")
	} else if !emailPattern.MatchString(u.Email) {
		fields = append(fields, "email")
		msgs = append(msgs, "please provide a valid email")
	}
	if u.Role != "" && !ValidRole(u.Role) {
		fields = append(fields, "role")
		msgs = append(msgs, "role must be one of user, librarian, admin")
	}
	if len(fields) > 0 {
		return apperror.NewValidation(fields, msgs)
	}
	return nil
}
